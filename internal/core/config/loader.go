package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/vietddude/nexus/internal/resilience/retry"
	"github.com/vietddude/nexus/internal/resilience/throttle"
)

// ErrInvalid is returned when a value is out of its documented bounds.
var ErrInvalid = errors.New("invalid configuration")

// LoadDotEnv loads .env files into the process environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from a YAML file, then applies environment
// overrides. A missing file yields defaults plus environment.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults + environment
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			// Expand environment variables in the YAML content
			expandedData := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *AppConfig, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("ZOHO_CLIENT_ID", &cfg.Zoho.ClientID)
	str("ZOHO_CLIENT_SECRET", &cfg.Zoho.ClientSecret)
	str("ZOHO_REFRESH_TOKEN", &cfg.Zoho.RefreshToken)
	str("ZOHO_ACCOUNTS_BASE", &cfg.Zoho.AccountsBase)
	str("ZOHO_REDIRECT_URI", &cfg.Zoho.RedirectURI)
	str("ZOHO_SCOPES", &cfg.Zoho.Scopes)
	str("ZOHO_PORTAL_ID", &cfg.Agent.PortalID)
	str("ZOHO_PROJECT_ID", &cfg.Agent.ProjectID)
	str("WORKDRIVE_FOLDER_ID", &cfg.Agent.FolderID)
	str("DATABASE_URL", &cfg.Database.URL)
	str("REDIS_URL", &cfg.Redis.URL)

	var errs []error
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = parseBool(v)
		}
	}
	integer := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, key, v))
			return
		}
		*dst = n
	}
	float := func(key string, dst *float64) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, key, v))
			return
		}
		*dst = f
	}

	boolean("NEXUS_USE_LIVE_APIS", &cfg.Agent.UseLiveAPIs)
	boolean("NEXUS_CREATE_TASKS", &cfg.Agent.CreateTasks)
	integer("NEXUS_MAX_RETRY_ATTEMPTS", &cfg.Retry.MaxAttempts)
	integer("NEXUS_RETRY_BASE_DELAY_MS", &cfg.Retry.BaseDelayMS)
	float("NEXUS_TASK_RATE_LIMIT", &cfg.Throttle.Rate)

	return errors.Join(errs...)
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Validate checks the documented bounds.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Retry.MaxAttempts < retry.MinAttempts || c.Retry.MaxAttempts > retry.MaxAttempts {
		errs = append(errs, fmt.Errorf("retry max attempts must be in [%d,%d], got %d",
			retry.MinAttempts, retry.MaxAttempts, c.Retry.MaxAttempts))
	}
	if ms := int(retry.MinBaseDelay.Milliseconds()); c.Retry.BaseDelayMS < ms {
		errs = append(errs, fmt.Errorf("retry base delay must be >= %dms, got %dms", ms, c.Retry.BaseDelayMS))
	}
	if c.Retry.Factor < 1 {
		errs = append(errs, fmt.Errorf("retry factor must be >= 1, got %g", c.Retry.Factor))
	}
	if c.Throttle.Rate < throttle.MinRate {
		errs = append(errs, fmt.Errorf("task rate limit must be >= %g req/s, got %g", throttle.MinRate, c.Throttle.Rate))
	}
	if c.Throttle.Burst < throttle.MinCapacity {
		errs = append(errs, fmt.Errorf("task burst must be >= %d, got %d", throttle.MinCapacity, c.Throttle.Burst))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port out of range: %d", c.Server.Port))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// RequireZoho reports missing credentials when live APIs or task creation are enabled.
func (c *AppConfig) RequireZoho() error {
	if !c.Agent.UseLiveAPIs && !c.Agent.CreateTasks {
		return nil
	}
	return c.requireCredentials()
}

func (c *AppConfig) requireCredentials() error {
	var missing []string
	if c.Zoho.ClientID == "" {
		missing = append(missing, "ZOHO_CLIENT_ID")
	}
	if c.Zoho.ClientSecret == "" {
		missing = append(missing, "ZOHO_CLIENT_SECRET")
	}
	if c.Zoho.RefreshToken == "" {
		missing = append(missing, "ZOHO_REFRESH_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// RequireCredentials reports missing credentials regardless of feature flags.
func (c *AppConfig) RequireCredentials() error {
	return c.requireCredentials()
}
