package cli

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/nexus/internal/infra/zoho"
)

var (
	projectsPortal string
	projectsLimit  int
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List the projects of a Zoho portal",
	Run:   runProjects,
}

func init() {
	projectsCmd.Flags().StringVar(&projectsPortal, "portal", "", "portal id (default ZOHO_PORTAL_ID)")
	projectsCmd.Flags().IntVar(&projectsLimit, "limit", 50, "maximum number of projects")
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(cmd *cobra.Command, args []string) {
	portal := projectsPortal
	if portal == "" {
		portal = appCfg.Agent.PortalID
	}
	if portal == "" {
		slog.Error("No portal given; use --portal or ZOHO_PORTAL_ID")
		os.Exit(1)
	}
	if err := appCfg.RequireCredentials(); err != nil {
		slog.Error("Cannot reach Zoho", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signalContext()
	defer cancel()

	client := zoho.NewClient(appCfg.Zoho)
	if _, err := client.RefreshAccessToken(ctx); err != nil {
		slog.Error("Failed to refresh access token", "error", err)
		os.Exit(1)
	}

	projects, err := zoho.NewProjects(client).ListPortalProjects(ctx, portal, projectsLimit)
	if err != nil {
		slog.Error("Failed to list projects", "portal", portal, "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME")
	for _, p := range projects {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", p.ID, p.Name)
	}
	_ = w.Flush()
}
