package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/nexus/internal/core/config"
)

var (
	cfgPath string
	isDebug bool
	appCfg  *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "nexus",
	Short: "Nexus document review agent",
	Long: `Nexus scans documents from Zoho WorkDrive (or a demo set), flags quality issues,
drafts a review email for each flagged document and optionally files a Zoho Projects task.`,
	PersistentPreRun: setup,
	Run:              runOnce,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

// setup loads .env and the config, then initialises logging.
func setup(cmd *cobra.Command, args []string) {
	if err := config.LoadDotEnv(); err != nil {
		stylelog.InitDefault()
		slog.Warn("Failed to load .env", "error", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	appCfg = cfg

	stylelog.InitDefault(&tint.Options{
		Level:      cfg.Logging.LogLevel(isDebug),
		TimeFormat: time.RFC3339,
	})
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
