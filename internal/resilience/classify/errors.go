// Package classify decides whether a failed call is worth retrying.
package classify

import (
	"errors"
	"fmt"
)

// Kind tags an error with its retry disposition category.
type Kind int

const (
	KindUnclassified Kind = iota
	KindTransient         // timeouts, connectivity
	KindPermanent         // invalid input, permission denied
	KindOperational       // generic operational failure, retried by default
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindPermanent:
		return "permanent"
	case KindOperational:
		return "operational"
	default:
		return "unclassified"
	}
}

// Error carries a Kind alongside the underlying failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transient tags err as a timeout or connectivity failure.
func Transient(op string, err error) error {
	return wrap(KindTransient, op, err)
}

// Permanent tags err as invalid input or a permission failure.
func Permanent(op string, err error) error {
	return wrap(KindPermanent, op, err)
}

// Operational tags err as a generic operational failure.
func Operational(op string, err error) error {
	return wrap(KindOperational, op, err)
}

func wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the outermost Kind tag in err's chain.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnclassified
}

// hasKind walks every tagged layer of err looking for kind.
func hasKind(err error, kind Kind) bool {
	for err != nil {
		var ce *Error
		if !errors.As(err, &ce) {
			return false
		}
		if ce.Kind == kind {
			return true
		}
		err = ce.Err
	}
	return false
}
