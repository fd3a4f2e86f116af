package domain

import "time"

// OutcomeAction describes what the agent did with an item.
type OutcomeAction string

const (
	ActionNone        OutcomeAction = "no_action"
	ActionDrafted     OutcomeAction = "drafted"
	ActionDraftFailed OutcomeAction = "draft_failed"
	ActionTaskCreated OutcomeAction = "task_created"
	ActionTaskSkipped OutcomeAction = "task_skipped_duplicate"
	ActionTaskFailed  OutcomeAction = "task_failed"
)

// ItemOutcome is the per-item result of a run.
type ItemOutcome struct {
	ItemID string        `json:"item_id"`
	Name   string        `json:"name"`
	Issues []string      `json:"issues,omitempty"`
	Action OutcomeAction `json:"action"`
	TaskID string        `json:"task_id,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// RunCounters is a snapshot of the resilience counters for one run.
type RunCounters struct {
	Retries            int64         `json:"retries"`
	RetryExhausted     int64         `json:"retry_exhausted"`
	TasksCreated       int64         `json:"tasks_created"`
	TasksSkippedDedupe int64         `json:"tasks_skipped_dedupe"`
	RateLimitWait      time.Duration `json:"rate_limit_wait"`
}

// RunRecord is the audit trail of a single orchestration run.
type RunRecord struct {
	ID         string        `json:"id"`
	Source     string        `json:"source"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Outcomes   []ItemOutcome `json:"outcomes"`
	Counters   RunCounters   `json:"counters"`
}

// Count returns how many outcomes ended with the given action.
func (r *RunRecord) Count(action OutcomeAction) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Action == action {
			n++
		}
	}
	return n
}

// Flagged returns how many items had at least one quality issue.
func (r *RunRecord) Flagged() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Action != ActionNone {
			n++
		}
	}
	return n
}
