package postgres

import (
	"io/fs"
	"testing"
	"time"

	"github.com/vietddude/nexus/internal/core/domain"
)

func TestRowMapping(t *testing.T) {
	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	run := &domain.RunRecord{
		ID:         "7d4c0f8e-3a55-4c43-9d7b-0a3f2b1c9e10",
		Source:     "workdrive:folder",
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Outcomes: []domain.ItemOutcome{
			{ItemID: "1", Name: "Project_Plan.pdf", Action: domain.ActionNone},
			{ItemID: "3", Name: "Notes", Issues: []string{"Missing file extension"}, Action: domain.ActionTaskCreated, TaskID: "T-1"},
		},
		Counters: domain.RunCounters{Retries: 2, TasksCreated: 1, RateLimitWait: 1500 * time.Millisecond},
	}

	row := toRunRow(run)
	if row.RateLimitWaitMS != 1500 {
		t.Errorf("RateLimitWaitMS = %d, want 1500", row.RateLimitWaitMS)
	}

	items := toItemRows(run)
	if len(items) != 2 {
		t.Fatalf("expected 2 item rows, got %d", len(items))
	}
	if items[0].Issues == nil {
		t.Error("empty issues should map to an empty array, not NULL")
	}
	if items[1].Position != 1 || items[1].RunID != run.ID {
		t.Errorf("unexpected item row: %+v", items[1])
	}

	got := fromRows([]runRow{row}, items)
	if len(got) != 1 {
		t.Fatalf("expected 1 run, got %d", len(got))
	}
	rec := got[0]
	if rec.Counters != run.Counters {
		t.Errorf("counters = %+v, want %+v", rec.Counters, run.Counters)
	}
	if len(rec.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(rec.Outcomes))
	}
	if rec.Outcomes[0].Issues != nil {
		t.Errorf("expected nil issues for clean item, got %v", rec.Outcomes[0].Issues)
	}
	if rec.Outcomes[1].TaskID != "T-1" || rec.Outcomes[1].Action != domain.ActionTaskCreated {
		t.Errorf("unexpected outcome: %+v", rec.Outcomes[1])
	}
}

func TestFromRows_IgnoresOrphans(t *testing.T) {
	got := fromRows([]runRow{{ID: "a"}}, []itemRow{{RunID: "b", Name: "x"}})
	if len(got[0].Outcomes) != 0 {
		t.Errorf("orphan item attached: %+v", got[0].Outcomes)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no migrations embedded")
	}
}
