// Package metrics records the resilience counters of the agent.
package metrics

import "time"

// Recorder receives counter updates from the retry executor, the token bucket and the orchestration loop.
type Recorder interface {
	IncRetries()
	IncRetryExhausted()
	IncTasksCreated()
	IncTasksSkippedDedupe()
	AddRateLimitWait(d time.Duration)
}

// Noop discards every update.
type Noop struct{}

func (Noop) IncRetries()                    {}
func (Noop) IncRetryExhausted()             {}
func (Noop) IncTasksCreated()               {}
func (Noop) IncTasksSkippedDedupe()         {}
func (Noop) AddRateLimitWait(time.Duration) {}

// Multi fans updates out to every non-nil recorder.
func Multi(recs ...Recorder) Recorder {
	out := make(multi, 0, len(recs))
	for _, r := range recs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

type multi []Recorder

func (m multi) IncRetries() {
	for _, r := range m {
		r.IncRetries()
	}
}

func (m multi) IncRetryExhausted() {
	for _, r := range m {
		r.IncRetryExhausted()
	}
}

func (m multi) IncTasksCreated() {
	for _, r := range m {
		r.IncTasksCreated()
	}
}

func (m multi) IncTasksSkippedDedupe() {
	for _, r := range m {
		r.IncTasksSkippedDedupe()
	}
}

func (m multi) AddRateLimitWait(d time.Duration) {
	for _, r := range m {
		r.AddRateLimitWait(d)
	}
}

// OrNoop returns rec, or Noop when rec is nil.
func OrNoop(rec Recorder) Recorder {
	if rec == nil {
		return Noop{}
	}
	return rec
}
