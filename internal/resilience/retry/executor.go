package retry

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/vietddude/nexus/internal/metrics"
	"github.com/vietddude/nexus/internal/resilience/classify"
)

// Executor runs operations with retries and records the outcome counters.
type Executor struct {
	recorder metrics.Recorder
	classify classify.Func
	jitter   func() float64
	sleep    func(ctx context.Context, d time.Duration) error
	log      *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithClassifier replaces classify.Classify.
func WithClassifier(fn classify.Func) Option {
	return func(e *Executor) {
		if fn != nil {
			e.classify = fn
		}
	}
}

// WithJitter replaces the uniform [0.5, 1.5) jitter source.
func WithJitter(fn func() float64) Option {
	return func(e *Executor) {
		if fn != nil {
			e.jitter = fn
		}
	}
}

// WithSleep replaces the context-aware sleep, mostly for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Executor) {
		if fn != nil {
			e.sleep = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Executor) {
		if log != nil {
			e.log = log
		}
	}
}

// NewExecutor creates an Executor reporting to rec.
func NewExecutor(rec metrics.Recorder, opts ...Option) *Executor {
	e := &Executor{
		recorder: metrics.OrNoop(rec),
		classify: classify.Classify,
		jitter:   Jitter,
		sleep:    Sleep,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Jitter returns a multiplier drawn uniformly from [0.5, 1.5).
func Jitter() float64 {
	return 0.5 + rand.Float64()
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do runs op until it succeeds, the classifier rejects the error, or the policy runs out of attempts.
// The final error is returned exactly as op produced it.
func Do[T any](ctx context.Context, e *Executor, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts < MinAttempts {
		attempts = MinAttempts
	}
	if attempts > MaxAttempts {
		attempts = MaxAttempts
	}

	for attempt := 0; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		if attempt == attempts-1 || e.classify(err) == classify.NonRetryable {
			e.recorder.IncRetryExhausted()
			e.log.Debug("Retry exhausted",
				"attempt", attempt+1,
				"max_attempts", attempts,
				"kind", classify.KindOf(err).String(),
				"error", err)
			return result, err
		}

		e.recorder.IncRetries()
		delay := p.Backoff(attempt, e.jitter())
		e.log.Debug("Retrying after failure",
			"attempt", attempt+1,
			"delay", delay,
			"error", err)

		if sleepErr := e.sleep(ctx, delay); sleepErr != nil {
			e.recorder.IncRetryExhausted()
			e.log.Debug("Retry aborted", "attempt", attempt+1, "reason", sleepErr)
			return result, err
		}
	}
}

// Run is Do for operations without a result value.
func Run(ctx context.Context, e *Executor, p Policy, op func(ctx context.Context) error) error {
	_, err := Do(ctx, e, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
