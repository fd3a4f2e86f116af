package health

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/nexus/internal/core/domain"
)

// CheckFunc probes a dependency; a non-nil error marks it critical.
type CheckFunc func(ctx context.Context) error

// Monitor aggregates dependency checks and the outcome of the last run.
type Monitor struct {
	mu      sync.RWMutex
	checks  map[string]CheckFunc
	lastRun *RunSummary
	timeout time.Duration
}

// NewMonitor creates a monitor with no checks.
func NewMonitor() *Monitor {
	return &Monitor{
		checks:  make(map[string]CheckFunc),
		timeout: 2 * time.Second,
	}
}

// Register adds a named dependency check.
func (m *Monitor) Register(name string, check CheckFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[name] = check
}

// ObserveRun remembers the outcome of a run. run may be nil when listing failed.
func (m *Monitor) ObserveRun(run *domain.RunRecord, err error) {
	summary := &RunSummary{FinishedAt: time.Now()}
	if run != nil {
		summary.ID = run.ID
		summary.Source = run.Source
		summary.FinishedAt = run.FinishedAt
		summary.Items = len(run.Outcomes)
		summary.Flagged = run.Flagged()
		summary.TasksFailed = run.Count(domain.ActionTaskFailed)
	}
	if err != nil {
		summary.Error = err.Error()
	}

	m.mu.Lock()
	m.lastRun = summary
	m.mu.Unlock()
}

// CheckHealth runs every check and derives the overall status (worst case wins).
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.RLock()
	checks := make(map[string]CheckFunc, len(m.checks))
	for name, check := range m.checks {
		checks[name] = check
	}
	var lastRun *RunSummary
	if m.lastRun != nil {
		cp := *m.lastRun
		lastRun = &cp
	}
	m.mu.RUnlock()

	report := HealthReport{
		SystemStatus: StatusHealthy,
		Components:   make(map[string]ComponentHealth, len(checks)),
		LastRun:      lastRun,
	}

	for name, check := range checks {
		cctx, cancel := context.WithTimeout(ctx, m.timeout)
		err := check(cctx)
		cancel()

		c := ComponentHealth{Name: name, Status: StatusHealthy}
		if err != nil {
			c.Status = StatusCritical
			c.Error = err.Error()
			report.SystemStatus = StatusCritical
		}
		report.Components[name] = c
	}

	if report.SystemStatus == StatusHealthy && lastRun != nil &&
		(lastRun.Error != "" || lastRun.TasksFailed > 0) {
		report.SystemStatus = StatusDegraded
	}
	return report
}
