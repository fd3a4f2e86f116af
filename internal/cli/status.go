package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/nexus/internal/core/domain"
	"github.com/vietddude/nexus/internal/infra/storage/postgres"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent runs from the run history",
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "number of runs to show")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	if appCfg.Database.URL == "" {
		slog.Error("Run history needs a database; set DATABASE_URL")
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, appCfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	runs, err := postgres.NewRunRepo(db).Recent(ctx, statusLimit)
	if err != nil {
		slog.Error("Failed to query runs", "error", err)
		os.Exit(1)
	}
	printRuns(os.Stdout, runs)
}

func printRuns(out io.Writer, runs []*domain.RunRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "RUN\tSOURCE\tSTARTED\tITEMS\tFLAGGED\tCREATED\tSKIPPED\tFAILED\tRETRIES")

	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			r.ID, r.Source, r.StartedAt.Format(time.RFC3339), len(r.Outcomes), r.Flagged(),
			r.Counters.TasksCreated, r.Counters.TasksSkippedDedupe,
			r.Count(domain.ActionTaskFailed), r.Counters.Retries)
	}
	_ = w.Flush()
}
