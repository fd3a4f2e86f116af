package classify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name   string
		err    error
		expect Disposition
	}{
		{"nil", nil, NonRetryable},
		{"plain error", base, NonRetryable},
		{"transient", Transient("create task", base), Retryable},
		{"permanent", Permanent("create task", base), NonRetryable},
		{"operational", Operational("create task", base), Retryable},
		{"wrapped transient", fmt.Errorf("outer: %w", Transient("op", base)), Retryable},
		{"permanent beats transient", Transient("op", Permanent("inner", base)), NonRetryable},
		{"permanent beats operational", Operational("op", Permanent("inner", base)), NonRetryable},
		{"transient beats operational", Operational("op", Transient("inner", base)), Retryable},
		{"deadline exceeded", context.DeadlineExceeded, Retryable},
		{"canceled", context.Canceled, NonRetryable},
		{"permission", fmt.Errorf("open: %w", os.ErrPermission), NonRetryable},
		{"connection refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), Retryable},
		{"net op error", &net.OpError{Op: "dial", Net: "tcp", Err: base}, Retryable},
		{"net timeout", timeoutErr{}, Retryable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.expect {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.expect)
			}
		})
	}
}

func TestError_PreservesCause(t *testing.T) {
	cause := errors.New("bad request")
	err := Permanent("create task", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected tagged error to unwrap to its cause")
	}
	if KindOf(err) != KindPermanent {
		t.Errorf("KindOf = %v, want permanent", KindOf(err))
	}
	if KindOf(cause) != KindUnclassified {
		t.Errorf("KindOf(untagged) = %v, want unclassified", KindOf(cause))
	}
	if got := err.Error(); got != "create task: permanent: bad request" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrap_NilStaysNil(t *testing.T) {
	if Transient("op", nil) != nil {
		t.Error("expected nil when wrapping nil")
	}
}
