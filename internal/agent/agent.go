// Package agent runs the document review loop: assess each item, draft a
// notification for flagged ones and optionally file a tracking task.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/nexus/internal/analyzer"
	"github.com/vietddude/nexus/internal/core/domain"
	"github.com/vietddude/nexus/internal/infra/storage"
	"github.com/vietddude/nexus/internal/metrics"
	"github.com/vietddude/nexus/internal/notify"
	"github.com/vietddude/nexus/internal/resilience/classify"
	"github.com/vietddude/nexus/internal/resilience/dedupe"
	"github.com/vietddude/nexus/internal/resilience/retry"
	"github.com/vietddude/nexus/internal/resilience/throttle"
)

const DefaultRecipient = "project-docs@example.com"

var errEmptyTaskID = errors.New("tracker returned an empty task id")

// Config holds the loop settings.
type Config struct {
	CreateTasks      bool
	PortalID         string
	ProjectID        string
	DefaultRecipient string
	Retry            retry.Policy
	Throttle         throttle.Config
}

// DefaultConfig returns a config with task creation disabled.
func DefaultConfig() Config {
	return Config{
		DefaultRecipient: DefaultRecipient,
		Retry:            retry.DefaultPolicy(),
		Throttle:         throttle.DefaultConfig(),
	}
}

// Deps are the collaborators of a Loop. Only Tracker is required, and only
// when task creation is enabled.
type Deps struct {
	Analyzer analyzer.Analyzer
	Sink     notify.Sink
	Tracker  Tracker
	Runs     storage.RunRepository
	Recorder metrics.Recorder
	Logger   *slog.Logger

	RetryOptions    []retry.Option
	ThrottleOptions []throttle.Option
	Now             func() time.Time
}

// Loop is the orchestration loop. Runs on the same Loop are serialised.
type Loop struct {
	cfg      Config
	analyzer analyzer.Analyzer
	sink     notify.Sink
	tracker  Tracker
	runs     storage.RunRepository
	log      *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	counters *metrics.Counters
	recorder metrics.Recorder
	executor *retry.Executor
	bucket   *throttle.TokenBucket
}

// New wires a Loop. The token bucket lives as long as the Loop, so the rate
// limit holds across consecutive runs.
func New(deps Deps, cfg Config) (*Loop, error) {
	if err := cfg.Retry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry policy: %w", err)
	}
	if cfg.CreateTasks && deps.Tracker == nil {
		return nil, errors.New("task creation enabled without a tracker")
	}
	if cfg.DefaultRecipient == "" {
		cfg.DefaultRecipient = DefaultRecipient
	}

	l := &Loop{
		cfg:      cfg,
		analyzer: deps.Analyzer,
		sink:     deps.Sink,
		tracker:  deps.Tracker,
		runs:     deps.Runs,
		log:      deps.Logger,
		now:      deps.Now,
		counters: metrics.NewCounters(),
	}
	if l.analyzer == nil {
		l.analyzer = analyzer.NameAnalyzer{}
	}
	if l.sink == nil {
		l.sink = notify.NewConsoleSink(nil)
	}
	if l.log == nil {
		l.log = slog.Default()
	}
	if l.now == nil {
		l.now = time.Now
	}

	l.recorder = metrics.Multi(deps.Recorder, l.counters)
	retryOpts := append([]retry.Option{retry.WithLogger(l.log)}, deps.RetryOptions...)
	l.executor = retry.NewExecutor(l.recorder, retryOpts...)
	l.bucket = throttle.NewFromConfig(cfg.Throttle, l.recorder, deps.ThrottleOptions...)

	if cfg.CreateTasks && !l.tasksEnabled() {
		l.log.Warn("Task creation enabled but portal or project not set; tasks will be skipped",
			"portal", cfg.PortalID, "project", cfg.ProjectID)
	}
	return l, nil
}

func (l *Loop) tasksEnabled() bool {
	return l.cfg.CreateTasks && l.cfg.PortalID != "" && l.cfg.ProjectID != ""
}

// Run processes items in order and returns the run record. A cancelled
// context stops the run early; the partial record is returned with ctx.Err().
func (l *Loop) Run(ctx context.Context, source string, items []domain.WorkItem) (*domain.RunRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counters.Reset()
	return l.process(ctx, source, items)
}

// RunSource lists the collection through the retry executor, then runs the loop over it.
func (l *Loop) RunSource(ctx context.Context, src Source, collection string) (*domain.RunRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counters.Reset()
	items, err := retry.Do(ctx, l.executor, l.cfg.Retry, func(ctx context.Context) ([]domain.WorkItem, error) {
		return src.ListItems(ctx, collection)
	})
	if err != nil {
		return nil, fmt.Errorf("list items from %s: %w", src.Name(), err)
	}
	l.log.Info("Listed items", "source", src.Name(), "collection", collection, "count", len(items))

	name := src.Name()
	if collection != "" {
		name += ":" + collection
	}
	return l.process(ctx, name, items)
}

func (l *Loop) process(ctx context.Context, source string, items []domain.WorkItem) (*domain.RunRecord, error) {
	run := &domain.RunRecord{
		ID:        uuid.NewString(),
		Source:    source,
		StartedAt: l.now(),
		Outcomes:  make([]domain.ItemOutcome, 0, len(items)),
	}
	guard := dedupe.NewGuard()

	var runErr error
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		run.Outcomes = append(run.Outcomes, l.processItem(ctx, guard, item))
	}

	run.FinishedAt = l.now()
	run.Counters = l.counters.Snapshot()
	l.save(ctx, run)

	l.log.Info("Run finished",
		"run", run.ID,
		"source", source,
		"items", len(run.Outcomes),
		"flagged", run.Flagged(),
		"tasks_created", run.Counters.TasksCreated,
		"tasks_skipped", run.Counters.TasksSkippedDedupe,
		"tasks_failed", run.Count(domain.ActionTaskFailed),
		"retries", run.Counters.Retries,
	)
	return run, runErr
}

// processItem never returns an error: every failure ends up in the outcome.
func (l *Loop) processItem(ctx context.Context, guard *dedupe.Guard, item domain.WorkItem) domain.ItemOutcome {
	out := domain.ItemOutcome{ItemID: item.ID, Name: item.Name}

	issues := l.analyzer.Assess(item)
	if len(issues) == 0 {
		l.log.Info("No issues found", "item", item.Name)
		out.Action = domain.ActionNone
		return out
	}
	out.Issues = issues
	out.Action = domain.ActionDrafted

	to := item.Owner
	if to == "" {
		to = l.cfg.DefaultRecipient
	}
	l.log.Info("Drafting email", "item", item.Name, "issues", len(issues), "to", to)
	if err := l.sink.Send(ctx, notify.NewDraft(to, item.Name, issues)); err != nil {
		l.log.Warn("Failed to emit draft", "item", item.Name, "error", err)
		out.Action = domain.ActionDraftFailed
		out.Error = "draft: " + err.Error()
	}

	if !l.tasksEnabled() {
		return out
	}

	title := TaskTitle(item.Name)
	key := dedupe.Key{PortalID: l.cfg.PortalID, ProjectID: l.cfg.ProjectID, Title: title}
	if guard.IsDuplicate(key) {
		l.recorder.IncTasksSkippedDedupe()
		l.log.Info("Skipping duplicate task", "item", item.Name, "title", title)
		out.Action = domain.ActionTaskSkipped
		return out
	}

	if err := l.bucket.Consume(ctx, 1); err != nil {
		l.log.Warn("Rate limiter wait interrupted", "item", item.Name, "error", err)
		out.Action = domain.ActionTaskFailed
		out.Error = err.Error()
		return out
	}

	description := TaskDescription(item.Name, issues)
	taskID, err := retry.Do(ctx, l.executor, l.cfg.Retry, func(ctx context.Context) (string, error) {
		id, err := l.tracker.CreateTask(ctx, l.cfg.PortalID, l.cfg.ProjectID, title, description)
		if err != nil {
			return "", err
		}
		if id == "" {
			return "", classify.Permanent("create task", errEmptyTaskID)
		}
		return id, nil
	})
	if err != nil {
		l.log.Error("Task creation failed", "item", item.Name, "title", title, "error", err)
		out.Action = domain.ActionTaskFailed
		out.Error = err.Error()
		return out
	}

	l.recorder.IncTasksCreated()
	guard.Record(key)
	l.log.Info("Task created", "item", item.Name, "task", taskID)
	out.Action = domain.ActionTaskCreated
	out.TaskID = taskID
	return out
}

func (l *Loop) save(ctx context.Context, run *domain.RunRecord) {
	if l.runs == nil {
		return
	}
	// a cancelled run is still worth recording
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := l.runs.Save(ctx, run); err != nil {
		l.log.Warn("Failed to save run", "run", run.ID, "error", err)
	}
}

// Counters returns the counters of the most recent run.
func (l *Loop) Counters() domain.RunCounters {
	return l.counters.Snapshot()
}

// TaskTitle is the tracking task title for a document.
func TaskTitle(name string) string {
	return "Review: " + name
}

// TaskDescription lists the issues found in a document.
func TaskDescription(name string, issues []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Automated review of %s found:\n", name)
	for _, issue := range issues {
		b.WriteString("- ")
		b.WriteString(issue)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
