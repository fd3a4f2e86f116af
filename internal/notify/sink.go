package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// Sink receives drafts.
type Sink interface {
	Send(ctx context.Context, d Draft) error
}

// ConsoleSink prints drafts in a fixed human-readable layout.
type ConsoleSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleSink writes to w, or stdout when w is nil.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleSink{w: w}
}

func (s *ConsoleSink) Send(_ context.Context, d Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.w, Render(d))
	return err
}

// Render formats d the way ConsoleSink prints it.
func Render(d Draft) string {
	return fmt.Sprintf("--- New Email Draft ---\nTo: %s\nSubject: %s\nBody:\n%s\n-----------------------\n",
		d.To, d.Subject, d.Body)
}

// Fanout sends to every sink and joins their errors.
type Fanout []Sink

func (f Fanout) Send(ctx context.Context, d Draft) error {
	var errs []error
	for _, s := range f {
		if s == nil {
			continue
		}
		if err := s.Send(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
