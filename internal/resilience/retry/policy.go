// Package retry runs operations under a classifier-aware exponential backoff policy.
package retry

import (
	"fmt"
	"math"
	"time"
)

const (
	MinAttempts  = 1
	MaxAttempts  = 10
	MinBaseDelay = 10 * time.Millisecond
)

// Policy defines retry behavior.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Factor      float64
}

// DefaultPolicy provides the documented defaults: 3 attempts, 500ms base, doubling.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Factor:      2.0,
	}
}

// Validate checks the policy bounds.
func (p Policy) Validate() error {
	if p.MaxAttempts < MinAttempts || p.MaxAttempts > MaxAttempts {
		return fmt.Errorf("max attempts must be in [%d,%d], got %d", MinAttempts, MaxAttempts, p.MaxAttempts)
	}
	if p.BaseDelay < MinBaseDelay {
		return fmt.Errorf("base delay must be >= %v, got %v", MinBaseDelay, p.BaseDelay)
	}
	if p.Factor < 1 || math.IsNaN(p.Factor) || math.IsInf(p.Factor, 0) {
		return fmt.Errorf("backoff factor must be >= 1, got %v", p.Factor)
	}
	return nil
}

// Backoff returns BaseDelay * Factor^attempt * jitter for a 0-indexed attempt.
func (p Policy) Backoff(attempt int, jitter float64) time.Duration {
	factor := p.Factor
	if factor <= 0 {
		factor = 1
	}
	delay := float64(p.BaseDelay) * math.Pow(factor, float64(attempt)) * jitter
	if delay < 0 || math.IsNaN(delay) {
		return 0
	}
	if delay > float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(delay)
}
