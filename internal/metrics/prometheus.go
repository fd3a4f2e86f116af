package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus exports the counters on a prometheus registry.
type Prometheus struct {
	Retries            prometheus.Counter
	RetryExhausted     prometheus.Counter
	TasksCreated       prometheus.Counter
	TasksSkippedDedupe prometheus.Counter
	RateLimitSleep     prometheus.Counter
}

// NewPrometheus registers the agent counters on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)
	return &Prometheus{
		// Retries tracks backoff sleeps taken before a new attempt
		Retries: factory.NewCounter(prometheus.CounterOpts{
			Name: "nexus_retries_total",
			Help: "Total number of retried attempts",
		}),
		// RetryExhausted tracks terminal failures, by attempt count or non-retryable error
		RetryExhausted: factory.NewCounter(prometheus.CounterOpts{
			Name: "nexus_retry_exhausted_total",
			Help: "Total number of calls that failed terminally",
		}),
		TasksCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "nexus_tasks_created_total",
			Help: "Total number of tracking tasks created",
		}),
		TasksSkippedDedupe: factory.NewCounter(prometheus.CounterOpts{
			Name: "nexus_tasks_skipped_dedupe_total",
			Help: "Total number of task creations skipped as duplicates",
		}),
		RateLimitSleep: factory.NewCounter(prometheus.CounterOpts{
			Name: "nexus_rate_limit_sleep_seconds_total",
			Help: "Cumulative time spent waiting on the task creation rate limiter",
		}),
	}
}

func (p *Prometheus) IncRetries()            { p.Retries.Inc() }
func (p *Prometheus) IncRetryExhausted()     { p.RetryExhausted.Inc() }
func (p *Prometheus) IncTasksCreated()       { p.TasksCreated.Inc() }
func (p *Prometheus) IncTasksSkippedDedupe() { p.TasksSkippedDedupe.Inc() }

func (p *Prometheus) AddRateLimitWait(d time.Duration) {
	if d <= 0 {
		return
	}
	p.RateLimitSleep.Add(d.Seconds())
}
