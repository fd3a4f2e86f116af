package cli

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/nexus/internal/control"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the agent repeatedly and serve /health and /metrics",
	Run:   runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "time between runs (default from config)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	ctx, cancel := signalContext()
	defer cancel()

	interval := watchInterval
	if interval <= 0 {
		interval = appCfg.Agent.WatchInterval
	}

	app, err := control.NewApp(ctx, appCfg)
	if err != nil {
		slog.Error("Failed to initialize agent", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	slog.Info("Agent watching", "interval", interval, "config", cfgPath)
	if err := app.Watch(ctx, interval); err != nil {
		slog.Error("Watch stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("Received signal, shut down")
}
