package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vietddude/nexus/internal/core/domain"
	"github.com/vietddude/nexus/internal/infra/storage"
)

type runRow struct {
	ID                 string    `db:"id"`
	Source             string    `db:"source"`
	StartedAt          time.Time `db:"started_at"`
	FinishedAt         time.Time `db:"finished_at"`
	Retries            int64     `db:"retries"`
	RetryExhausted     int64     `db:"retry_exhausted"`
	TasksCreated       int64     `db:"tasks_created"`
	TasksSkippedDedupe int64     `db:"tasks_skipped_dedupe"`
	RateLimitWaitMS    int64     `db:"rate_limit_wait_ms"`
}

type itemRow struct {
	RunID    string         `db:"run_id"`
	Position int            `db:"position"`
	ItemID   string         `db:"item_id"`
	Name     string         `db:"name"`
	Issues   pq.StringArray `db:"issues"`
	Action   string         `db:"action"`
	TaskID   string         `db:"task_id"`
	Error    string         `db:"error"`
}

const (
	insertRunQuery = `
		INSERT INTO runs (id, source, started_at, finished_at, retries, retry_exhausted,
			tasks_created, tasks_skipped_dedupe, rate_limit_wait_ms)
		VALUES (:id, :source, :started_at, :finished_at, :retries, :retry_exhausted,
			:tasks_created, :tasks_skipped_dedupe, :rate_limit_wait_ms)
		ON CONFLICT (id) DO NOTHING`

	insertItemQuery = `
		INSERT INTO run_items (run_id, position, item_id, name, issues, action, task_id, error)
		VALUES (:run_id, :position, :item_id, :name, :issues, :action, :task_id, :error)
		ON CONFLICT (run_id, position) DO NOTHING`

	selectRunColumns = `id, source, started_at, finished_at, retries, retry_exhausted,
		tasks_created, tasks_skipped_dedupe, rate_limit_wait_ms`
)

// RunRepo implements storage.RunRepository using PostgreSQL.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a new PostgreSQL run repository.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Save writes the run and its outcomes in one transaction.
func (r *RunRepo) Save(ctx context.Context, run *domain.RunRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.NamedExecContext(ctx, insertRunQuery, toRunRow(run)); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	for _, item := range toItemRows(run) {
		if _, err := tx.NamedExecContext(ctx, insertItemQuery, item); err != nil {
			return fmt.Errorf("failed to save run item %s: %w", item.ItemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// Get retrieves a run by id.
func (r *RunRepo) Get(ctx context.Context, id string) (*domain.RunRecord, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, `SELECT `+selectRunColumns+` FROM runs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	runs, err := r.attachItems(ctx, []runRow{row})
	if err != nil {
		return nil, err
	}
	return runs[0], nil
}

// Recent lists the newest runs first.
func (r *RunRepo) Recent(ctx context.Context, limit int) ([]*domain.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []runRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+selectRunColumns+` FROM runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return r.attachItems(ctx, rows)
}

func (r *RunRepo) attachItems(ctx context.Context, rows []runRow) ([]*domain.RunRecord, error) {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	query, args, err := sqlx.In(
		`SELECT run_id, position, item_id, name, issues, action, task_id, error
		 FROM run_items WHERE run_id IN (?) ORDER BY run_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build item query: %w", err)
	}

	var items []itemRow
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list run items: %w", err)
	}
	return fromRows(rows, items), nil
}

func toRunRow(run *domain.RunRecord) runRow {
	return runRow{
		ID:                 run.ID,
		Source:             run.Source,
		StartedAt:          run.StartedAt,
		FinishedAt:         run.FinishedAt,
		Retries:            run.Counters.Retries,
		RetryExhausted:     run.Counters.RetryExhausted,
		TasksCreated:       run.Counters.TasksCreated,
		TasksSkippedDedupe: run.Counters.TasksSkippedDedupe,
		RateLimitWaitMS:    run.Counters.RateLimitWait.Milliseconds(),
	}
}

func toItemRows(run *domain.RunRecord) []itemRow {
	rows := make([]itemRow, len(run.Outcomes))
	for i, o := range run.Outcomes {
		issues := pq.StringArray(o.Issues)
		if issues == nil {
			issues = pq.StringArray{}
		}
		rows[i] = itemRow{
			RunID:    run.ID,
			Position: i,
			ItemID:   o.ItemID,
			Name:     o.Name,
			Issues:   issues,
			Action:   string(o.Action),
			TaskID:   o.TaskID,
			Error:    o.Error,
		}
	}
	return rows
}

// fromRows stitches item rows onto their runs, preserving the order of runs.
func fromRows(runs []runRow, items []itemRow) []*domain.RunRecord {
	byID := make(map[string]*domain.RunRecord, len(runs))
	out := make([]*domain.RunRecord, len(runs))
	for i, row := range runs {
		rec := &domain.RunRecord{
			ID:         row.ID,
			Source:     row.Source,
			StartedAt:  row.StartedAt,
			FinishedAt: row.FinishedAt,
			Counters: domain.RunCounters{
				Retries:            row.Retries,
				RetryExhausted:     row.RetryExhausted,
				TasksCreated:       row.TasksCreated,
				TasksSkippedDedupe: row.TasksSkippedDedupe,
				RateLimitWait:      time.Duration(row.RateLimitWaitMS) * time.Millisecond,
			},
		}
		byID[row.ID] = rec
		out[i] = rec
	}

	for _, item := range items {
		rec, ok := byID[item.RunID]
		if !ok {
			continue
		}
		var issues []string
		if len(item.Issues) > 0 {
			issues = []string(item.Issues)
		}
		rec.Outcomes = append(rec.Outcomes, domain.ItemOutcome{
			ItemID: item.ItemID,
			Name:   item.Name,
			Issues: issues,
			Action: domain.OutcomeAction(item.Action),
			TaskID: item.TaskID,
			Error:  item.Error,
		})
	}
	return out
}
