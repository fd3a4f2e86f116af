package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	c := NewCounters()
	c.IncTasksCreated()
	c.IncTasksCreated()
	c.IncTasksSkippedDedupe()
	c.IncRetries()
	c.IncRetryExhausted()
	c.AddRateLimitWait(500 * time.Millisecond)
	c.AddRateLimitWait(-time.Second)

	snap := c.Snapshot()
	if snap.TasksCreated != 2 {
		t.Errorf("TasksCreated = %d, want 2", snap.TasksCreated)
	}
	if snap.TasksSkippedDedupe != 1 {
		t.Errorf("TasksSkippedDedupe = %d, want 1", snap.TasksSkippedDedupe)
	}
	if snap.Retries != 1 || snap.RetryExhausted != 1 {
		t.Errorf("retries = %d/%d, want 1/1", snap.Retries, snap.RetryExhausted)
	}
	if snap.RateLimitWait != 500*time.Millisecond {
		t.Errorf("RateLimitWait = %v, want 500ms", snap.RateLimitWait)
	}

	c.Reset()
	if c.Snapshot().TasksCreated != 0 {
		t.Error("expected Reset to zero counters")
	}
}

func TestMulti_FansOut(t *testing.T) {
	a, b := NewCounters(), NewCounters()
	rec := Multi(a, nil, b)

	rec.IncRetries()
	rec.AddRateLimitWait(time.Second)

	for _, c := range []*Counters{a, b} {
		snap := c.Snapshot()
		if snap.Retries != 1 || snap.RateLimitWait != time.Second {
			t.Errorf("snapshot = %+v, want one retry and 1s wait", snap)
		}
	}
}

func TestPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.IncRetries()
	p.IncRetries()
	p.IncTasksCreated()
	p.AddRateLimitWait(1500 * time.Millisecond)

	if got := testutil.ToFloat64(p.Retries); got != 2 {
		t.Errorf("retries = %v, want 2", got)
	}
	if got := testutil.ToFloat64(p.TasksCreated); got != 1 {
		t.Errorf("tasks created = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.RateLimitSleep); got != 1.5 {
		t.Errorf("rate limit sleep = %v, want 1.5", got)
	}
	if n := testutil.CollectAndCount(p.RetryExhausted); n != 1 {
		t.Errorf("expected 1 exhausted series, got %d", n)
	}
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(Noop); !ok {
		t.Error("expected Noop for nil recorder")
	}
}
