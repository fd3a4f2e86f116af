package config

import (
	"log/slog"
	"strings"
	"time"

	redisclient "github.com/vietddude/nexus/internal/infra/redis"
	"github.com/vietddude/nexus/internal/infra/storage/postgres"
	"github.com/vietddude/nexus/internal/infra/zoho"
	"github.com/vietddude/nexus/internal/resilience/retry"
	"github.com/vietddude/nexus/internal/resilience/throttle"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Logging  LoggingConfig      `yaml:"logging"`
	Agent    AgentConfig        `yaml:"agent"`
	Retry    RetryConfig        `yaml:"retry"`
	Throttle throttle.Config    `yaml:"throttle"`
	Zoho     zoho.Config        `yaml:"zoho"`
	Redis    redisclient.Config `yaml:"redis"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// AgentConfig controls what a run reads and whether it files tasks.
type AgentConfig struct {
	UseLiveAPIs      bool          `yaml:"use_live_apis"`
	FolderID         string        `yaml:"workdrive_folder_id"`
	ListLimit        int           `yaml:"list_limit"`
	CreateTasks      bool          `yaml:"create_tasks"`
	PortalID         string        `yaml:"portal_id"`
	ProjectID        string        `yaml:"project_id"`
	DefaultRecipient string        `yaml:"default_recipient"`
	WatchInterval    time.Duration `yaml:"watch_interval"`
}

// RetryConfig holds the task creation retry policy.
type RetryConfig struct {
	MaxAttempts int     `yaml:"max_attempts"`
	BaseDelayMS int     `yaml:"base_delay_ms"`
	Factor      float64 `yaml:"factor"`
}

// Policy converts the config into a retry policy.
func (r RetryConfig) Policy() retry.Policy {
	return retry.Policy{
		MaxAttempts: r.MaxAttempts,
		BaseDelay:   time.Duration(r.BaseDelayMS) * time.Millisecond,
		Factor:      r.Factor,
	}
}

// Default returns the configuration used when no file is present.
func Default() AppConfig {
	policy := retry.DefaultPolicy()
	return AppConfig{
		Server:  ServerConfig{Port: 8080},
		Logging: LoggingConfig{Level: "info"},
		Agent: AgentConfig{
			ListLimit:        50,
			DefaultRecipient: "project-docs@example.com",
			WatchInterval:    5 * time.Minute,
		},
		Retry: RetryConfig{
			MaxAttempts: policy.MaxAttempts,
			BaseDelayMS: int(policy.BaseDelay / time.Millisecond),
			Factor:      policy.Factor,
		},
		Throttle: throttle.DefaultConfig(),
		Zoho: zoho.Config{
			AccountsBase:      zoho.DefaultAccountsBase,
			APIDomainFallback: zoho.DefaultAPIDomain,
			Timeout:           30 * time.Second,
		},
		Redis: redisclient.Config{Prefix: "nexus"},
	}
}

// LogLevel resolves the slog level; debug forces slog.LevelDebug.
func (l LoggingConfig) LogLevel(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
