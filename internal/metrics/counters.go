package metrics

import (
	"sync"
	"time"

	"github.com/vietddude/nexus/internal/core/domain"
)

// Counters is an in-memory Recorder used for run reports and test assertions.
type Counters struct {
	mu   sync.Mutex
	snap domain.RunCounters
}

// NewCounters returns zeroed counters.
func NewCounters() *Counters {
	return &Counters{}
}

func (c *Counters) IncRetries() {
	c.mu.Lock()
	c.snap.Retries++
	c.mu.Unlock()
}

func (c *Counters) IncRetryExhausted() {
	c.mu.Lock()
	c.snap.RetryExhausted++
	c.mu.Unlock()
}

func (c *Counters) IncTasksCreated() {
	c.mu.Lock()
	c.snap.TasksCreated++
	c.mu.Unlock()
}

func (c *Counters) IncTasksSkippedDedupe() {
	c.mu.Lock()
	c.snap.TasksSkippedDedupe++
	c.mu.Unlock()
}

// AddRateLimitWait accumulates d; negative durations are ignored.
func (c *Counters) AddRateLimitWait(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.snap.RateLimitWait += d
	c.mu.Unlock()
}

// Snapshot returns a copy of the current values.
func (c *Counters) Snapshot() domain.RunCounters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Reset zeroes every counter.
func (c *Counters) Reset() {
	c.mu.Lock()
	c.snap = domain.RunCounters{}
	c.mu.Unlock()
}
