package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNewDraft(t *testing.T) {
	issues := []string{"Missing file extension", "Document title is too short"}
	d := NewDraft("a@x.com", "Doc.pdf", issues)

	if d.To != "a@x.com" {
		t.Errorf("To = %q", d.To)
	}
	if d.Subject != "Review of your document: Doc.pdf" {
		t.Errorf("Subject = %q", d.Subject)
	}
	if !strings.HasPrefix(d.Body, "Hello,") {
		t.Errorf("Body should open with a greeting: %q", d.Body)
	}
	for _, issue := range issues {
		if !strings.Contains(d.Body, "- "+issue) {
			t.Errorf("Body missing bullet for %q", issue)
		}
	}
	if !strings.HasSuffix(d.Body, "Thanks,\nNexus Agent") {
		t.Errorf("Body should end with signature: %q", d.Body)
	}

	// Mutating the caller's slice must not reach the draft.
	issues[0] = "changed"
	if d.Issues[0] != "Missing file extension" {
		t.Errorf("draft issues aliased caller slice: %v", d.Issues)
	}
}

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf)

	d := NewDraft("author3@example.com", "Notes", []string{"Missing file extension"})
	if err := sink.Send(context.Background(), d); err != nil {
		t.Fatalf("Send: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"--- New Email Draft ---",
		"To: author3@example.com",
		"Subject: Review of your document: Notes",
		"Body:\nHello,",
		"- Missing file extension",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

type failingSink struct{ err error }

func (f failingSink) Send(context.Context, Draft) error { return f.err }

type captureSink struct{ drafts []Draft }

func (c *captureSink) Send(_ context.Context, d Draft) error {
	c.drafts = append(c.drafts, d)
	return nil
}

func TestFanout(t *testing.T) {
	boom := errors.New("boom")
	capture := &captureSink{}
	f := Fanout{failingSink{err: boom}, nil, capture}

	err := f.Send(context.Background(), NewDraft("a", "b", nil))
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if len(capture.drafts) != 1 {
		t.Errorf("expected later sinks to still receive the draft")
	}
}
