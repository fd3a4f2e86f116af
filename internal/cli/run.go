package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/nexus/internal/control"
	"github.com/vietddude/nexus/internal/core/domain"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single review iteration",
	Run:   runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) {
	ctx, cancel := signalContext()
	defer cancel()

	app, err := control.NewApp(ctx, appCfg)
	if err != nil {
		slog.Error("Failed to initialize agent", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	run, err := app.RunOnce(ctx)
	if run != nil {
		printRunSummary(os.Stdout, run)
	}
	if err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(1)
	}
}

func printRunSummary(out io.Writer, run *domain.RunRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "ITEM\tACTION\tISSUES\tTASK")
	for _, o := range run.Outcomes {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", o.Name, o.Action, strings.Join(o.Issues, "; "), o.TaskID)
	}
	_ = w.Flush()

	c := run.Counters
	_, _ = fmt.Fprintf(out,
		"\nrun %s: %d items, %d flagged, %d tasks created, %d skipped, %d failed, %d retries, %.2fs rate limited\n",
		run.ID, len(run.Outcomes), run.Flagged(), c.TasksCreated, c.TasksSkippedDedupe,
		run.Count(domain.ActionTaskFailed), c.Retries, c.RateLimitWait.Seconds())
}
