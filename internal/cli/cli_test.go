package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/vietddude/nexus/internal/core/domain"
	"github.com/vietddude/nexus/internal/infra/zoho"
)

func sampleRun() *domain.RunRecord {
	return &domain.RunRecord{
		ID:        "run-1",
		Source:    "demo",
		StartedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Outcomes: []domain.ItemOutcome{
			{Name: "Design Document.pdf", Action: domain.ActionNone},
			{Name: "Notes", Action: domain.ActionTaskCreated, Issues: []string{"Missing file extension"}, TaskID: "T-1"},
		},
		Counters: domain.RunCounters{TasksCreated: 1, RateLimitWait: 1500 * time.Millisecond},
	}
}

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	printRunSummary(&buf, sampleRun())
	out := buf.String()

	for _, want := range []string{"ITEM", "Notes", "task_created", "Missing file extension", "T-1",
		"2 items, 1 flagged, 1 tasks created", "1.50s rate limited"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestPrintRuns(t *testing.T) {
	var buf bytes.Buffer
	printRuns(&buf, []*domain.RunRecord{sampleRun()})
	out := buf.String()

	if !strings.Contains(out, "run-1") || !strings.Contains(out, "2024-05-01T09:00:00Z") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestPrintExchange(t *testing.T) {
	var buf bytes.Buffer
	printExchange(&buf, zoho.ExchangeResult{RefreshToken: "rtk"})
	if !strings.Contains(buf.String(), `ZOHO_REFRESH_TOKEN="rtk"`) {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	buf.Reset()
	printExchange(&buf, zoho.ExchangeResult{})
	if !strings.Contains(buf.String(), "No refresh_token returned") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, path := range [][]string{{"run"}, {"watch"}, {"status"}, {"projects"}, {"auth", "url"}, {"auth", "exchange"}} {
		cmd, _, err := rootCmd.Find(path)
		if err != nil || cmd == rootCmd {
			t.Errorf("command %v not registered", path)
		}
	}
}
