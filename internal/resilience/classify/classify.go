package classify

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"
)

// Disposition is the retry decision for an error.
type Disposition int

const (
	NonRetryable Disposition = iota
	Retryable
)

func (d Disposition) String() string {
	if d == Retryable {
		return "retryable"
	}
	return "non_retryable"
}

// Func maps an error to a Disposition. Implementations must not panic.
type Func func(err error) Disposition

// Classify is the default classifier.
//
// Priority:
//   - permanent failures (tagged, permission denied, caller cancellation): NonRetryable
//   - transient failures (tagged, deadlines, network timeouts, refused/reset connections): Retryable
//   - the operational marker kind: Retryable
//   - anything else: NonRetryable
func Classify(err error) Disposition {
	if err == nil {
		return NonRetryable
	}
	if isPermanent(err) {
		return NonRetryable
	}
	if isTransient(err) {
		return Retryable
	}
	if hasKind(err, KindOperational) {
		return Retryable
	}
	return NonRetryable
}

func isPermanent(err error) bool {
	return hasKind(err, KindPermanent) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, context.Canceled)
}

func isTransient(err error) bool {
	if hasKind(err, KindTransient) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
