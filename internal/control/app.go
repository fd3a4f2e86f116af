// Package control wires configuration into a running agent.
package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/vietddude/nexus/internal/agent"
	"github.com/vietddude/nexus/internal/analyzer"
	"github.com/vietddude/nexus/internal/core/config"
	"github.com/vietddude/nexus/internal/core/domain"
	"github.com/vietddude/nexus/internal/health"
	redisclient "github.com/vietddude/nexus/internal/infra/redis"
	"github.com/vietddude/nexus/internal/infra/storage"
	"github.com/vietddude/nexus/internal/infra/storage/memory"
	"github.com/vietddude/nexus/internal/infra/storage/postgres"
	"github.com/vietddude/nexus/internal/infra/zoho"
	"github.com/vietddude/nexus/internal/metrics"
	"github.com/vietddude/nexus/internal/notify"
	"github.com/vietddude/nexus/internal/resilience/retry"
)

// refresh the access token this long before Zoho expires it
const tokenRefreshMargin = time.Minute

// App is the agent with all of its collaborators.
type App struct {
	cfg        *config.AppConfig
	loop       *agent.Loop
	source     agent.Source
	collection string

	registry *prometheus.Registry
	recorder metrics.Recorder
	monitor  *health.Monitor
	runs     storage.RunRepository

	zoho        *zoho.Client
	tokenMu     sync.Mutex
	tokenExpiry time.Time

	db          *postgres.DB
	redisClient *redisclient.Client
	log         *slog.Logger
}

type options struct {
	out        io.Writer
	log        *slog.Logger
	httpClient *http.Client
}

// Option customises NewApp.
type Option func(*options)

// WithOutput sets where console drafts are printed.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithLogger sets the application logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithHTTPClient sets the client used for Zoho calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// NewApp creates the agent. Zoho credentials are only needed when live APIs
// or task creation are enabled.
func NewApp(ctx context.Context, cfg *config.AppConfig, opts ...Option) (*App, error) {
	o := options{out: os.Stdout, log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.RequireZoho(); err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		registry: prometheus.NewRegistry(),
		monitor:  health.NewMonitor(),
		log:      o.log,
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.recorder = metrics.NewPrometheus(a.registry)

	// 1. Initialize Storage
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		a.db = db
		a.runs = postgres.NewRunRepo(db)
		a.monitor.Register("postgres", db.Health)
		a.log.Info("Using PostgreSQL run history")
	} else {
		a.runs = memory.NewRunRepo()
		a.log.Info("Using in-memory run history")
	}

	// 2. Notification sinks
	sinks := notify.Fanout{notify.NewConsoleSink(o.out)}
	if cfg.Redis.URL != "" {
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		a.redisClient = client
		sinks = append(sinks, redisclient.NewOutbox(client, cfg.Redis.Prefix))
		a.monitor.Register("redis", client.Ping)
		a.log.Info("Queuing drafts to Redis outbox")
	}

	// 3. Zoho
	var tracker agent.Tracker
	if cfg.Agent.UseLiveAPIs || cfg.Agent.CreateTasks {
		zopts := []zoho.Option{zoho.WithLogger(a.log)}
		if o.httpClient != nil {
			zopts = append(zopts, zoho.WithHTTPClient(o.httpClient))
		}
		a.zoho = zoho.NewClient(cfg.Zoho, zopts...)
		if err := a.refreshToken(ctx, true); err != nil {
			a.Close()
			return nil, err
		}
		a.log.Info("Zoho API base resolved", "api_base", a.zoho.APIBase())
		if cfg.Agent.CreateTasks {
			tracker = zoho.NewProjects(a.zoho)
		}
	}

	// 4. Source and analyzer
	var an analyzer.Analyzer = analyzer.NameAnalyzer{}
	a.source = agent.DemoSource{}
	switch {
	case cfg.Agent.UseLiveAPIs && cfg.Agent.FolderID != "":
		a.source = zoho.NewWorkDrive(a.zoho, cfg.Agent.ListLimit)
		a.collection = cfg.Agent.FolderID
		an = analyzer.MIMEAnalyzer{}
	case cfg.Agent.UseLiveAPIs:
		a.log.Warn("Live APIs enabled but WORKDRIVE_FOLDER_ID not set; falling back to demo documents")
	}

	loop, err := agent.New(agent.Deps{
		Analyzer: an,
		Sink:     sinks,
		Tracker:  tracker,
		Runs:     a.runs,
		Recorder: a.recorder,
		Logger:   a.log,
	}, agent.Config{
		CreateTasks:      cfg.Agent.CreateTasks,
		PortalID:         cfg.Agent.PortalID,
		ProjectID:        cfg.Agent.ProjectID,
		DefaultRecipient: cfg.Agent.DefaultRecipient,
		Retry:            cfg.Retry.Policy(),
		Throttle:         cfg.Throttle,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.loop = loop
	return a, nil
}

// refreshToken refreshes the Zoho access token through the retry executor
// when forced or when the cached token is about to expire.
func (a *App) refreshToken(ctx context.Context, force bool) error {
	if a.zoho == nil {
		return nil
	}
	a.tokenMu.Lock()
	defer a.tokenMu.Unlock()

	if !force && time.Now().Before(a.tokenExpiry) {
		return nil
	}
	exec := retry.NewExecutor(a.recorder, retry.WithLogger(a.log))
	tokens, err := retry.Do(ctx, exec, a.cfg.Retry.Policy(), a.zoho.RefreshAccessToken)
	if err != nil {
		return fmt.Errorf("failed to refresh zoho token: %w", err)
	}
	a.tokenExpiry = time.Now().Add(time.Duration(tokens.ExpiresIn)*time.Second - tokenRefreshMargin)
	return nil
}

// RunOnce performs a single orchestration run.
func (a *App) RunOnce(ctx context.Context) (*domain.RunRecord, error) {
	if err := a.refreshToken(ctx, false); err != nil {
		a.monitor.ObserveRun(nil, err)
		return nil, err
	}
	run, err := a.loop.RunSource(ctx, a.source, a.collection)
	a.monitor.ObserveRun(run, err)
	return run, err
}

// Watch serves /health and /metrics and runs the agent every interval until ctx is done.
func (a *App) Watch(ctx context.Context, interval time.Duration) error {
	server := health.NewServer(a.monitor, a.cfg.Server.Port, a.registry)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("Health server listening", "port", a.cfg.Server.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Stop(shutdownCtx)
	})

	g.Go(func() error {
		return agent.Watch(gctx, interval, a.log, func(ctx context.Context) error {
			_, err := a.RunOnce(ctx)
			return err
		})
	})

	return g.Wait()
}

// Runs exposes the run history.
func (a *App) Runs() storage.RunRepository {
	return a.runs
}

// Monitor exposes the health monitor.
func (a *App) Monitor() *health.Monitor {
	return a.monitor
}

// Registry exposes the metrics registry.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

// Close releases database and Redis connections.
func (a *App) Close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}
}
