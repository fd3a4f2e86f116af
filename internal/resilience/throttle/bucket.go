package throttle

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/vietddude/nexus/internal/metrics"
)

// TokenBucket refills continuously at rate tokens/second up to capacity.
// It starts full. Consume blocks until enough tokens are available.
type TokenBucket struct {
	mu sync.Mutex

	capacity float64
	rate     float64
	tokens   float64
	last     time.Time

	recorder metrics.Recorder
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option configures a TokenBucket.
type Option func(*TokenBucket)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *TokenBucket) {
		if now != nil {
			b.now = now
		}
	}
}

// WithSleep replaces the context-aware timer wait.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(b *TokenBucket) {
		if sleep != nil {
			b.sleep = sleep
		}
	}
}

// NewTokenBucket creates a full bucket. Capacity and rate are raised to their minimums.
func NewTokenBucket(capacity int, rate float64, rec metrics.Recorder, opts ...Option) *TokenBucket {
	if capacity < MinCapacity {
		capacity = MinCapacity
	}
	if rate < MinRate || math.IsNaN(rate) || math.IsInf(rate, 0) {
		rate = MinRate
	}
	b := &TokenBucket{
		capacity: float64(capacity),
		rate:     rate,
		tokens:   float64(capacity),
		recorder: metrics.OrNoop(rec),
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.last = b.now()
	return b
}

// NewFromConfig creates a bucket from cfg.
func NewFromConfig(cfg Config, rec metrics.Recorder, opts ...Option) *TokenBucket {
	return NewTokenBucket(cfg.Burst, cfg.Rate, rec, opts...)
}

// Consume blocks until amount tokens are available, then debits them.
// Amounts <= 0 count as one token; amounts above capacity are clamped to capacity.
// The only error is ctx's, when it ends during a wait.
func (b *TokenBucket) Consume(ctx context.Context, amount float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if amount <= 0 || math.IsNaN(amount) {
		amount = 1
	}
	if amount > b.capacity {
		amount = b.capacity
	}

	for {
		b.refill()
		if b.tokens >= amount {
			b.tokens -= amount
			return nil
		}

		wait := time.Duration((amount - b.tokens) / b.rate * float64(time.Second))
		b.recorder.AddRateLimitWait(wait)
		if err := b.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Tokens returns the current token count after refill.
func (b *TokenBucket) Tokens() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill()
	return b.tokens
}

// refill tops up tokens for the time elapsed since the last check. Caller holds mu.
func (b *TokenBucket) refill() {
	now := b.now()
	if now.After(b.last) {
		b.tokens += now.Sub(b.last).Seconds() * b.rate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
	}
	// Advance on clock skew too, never refilling backwards.
	b.last = now
}

func sleepContext(ctx context.Context, d time.Duration) error {
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
