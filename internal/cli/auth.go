package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vietddude/nexus/internal/infra/zoho"
)

var (
	authScopes string
	authPreset string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Obtain a Zoho refresh token",
}

var authURLCmd = &cobra.Command{
	Use:   "url",
	Short: "Print the Zoho authorization URL",
	Run:   runAuthURL,
}

var authExchangeCmd = &cobra.Command{
	Use:   "exchange CODE",
	Short: "Exchange an authorization code for tokens",
	Args:  cobra.ExactArgs(1),
	Run:   runAuthExchange,
}

func init() {
	authURLCmd.Flags().StringVar(&authScopes, "scopes", "", "comma separated scopes (highest precedence)")
	authURLCmd.Flags().StringVar(&authPreset, "preset", "",
		"predefined scope set: "+strings.Join(zoho.PresetNames(), ", "))

	authCmd.AddCommand(authURLCmd, authExchangeCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthURL(cmd *cobra.Command, args []string) {
	scopes, err := zoho.ResolveScopes(authScopes, authPreset, appCfg.Zoho.Scopes)
	if err != nil {
		slog.Error("Invalid scopes", "error", err)
		os.Exit(1)
	}

	url, err := zoho.NewClient(appCfg.Zoho).AuthURL(scopes)
	if err != nil {
		slog.Error("Cannot build authorization URL", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Open this URL in your browser to authorize the app:\n\n%s\n\n", url)
	fmt.Println("After authorization, copy the `code` param from your redirect URI and run:")
	fmt.Println("nexus auth exchange '<CODE>'")
}

func runAuthExchange(cmd *cobra.Command, args []string) {
	ctx, cancel := signalContext()
	defer cancel()

	res, err := zoho.NewClient(appCfg.Zoho).ExchangeCode(ctx, args[0])
	if err != nil {
		slog.Error("Code exchange failed", "error", err)
		os.Exit(1)
	}
	printExchange(os.Stdout, res)
}

func printExchange(out io.Writer, res zoho.ExchangeResult) {
	if res.RefreshToken == "" {
		_, _ = fmt.Fprintln(out, "No refresh_token returned. Ensure you used access_type=offline and prompt=consent,")
		_, _ = fmt.Fprintln(out, "and that the app is not already authorized without forcing consent.")
		return
	}
	_, _ = fmt.Fprintf(out, "Your ZOHO_REFRESH_TOKEN (add this to your .env):\n\nZOHO_REFRESH_TOKEN=%q\n", res.RefreshToken)
	if res.AccessToken != "" {
		_, _ = fmt.Fprintf(out, "\nAccess token expires in %ds; use the refresh token for long-term access.\n", res.ExpiresIn)
	}
}
