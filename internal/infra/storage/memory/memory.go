package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vietddude/nexus/internal/core/domain"
	"github.com/vietddude/nexus/internal/infra/storage"
)

// RunRepo keeps run records in process memory.
type RunRepo struct {
	mu   sync.RWMutex
	runs map[string]*domain.RunRecord
}

func NewRunRepo() *RunRepo {
	return &RunRepo{runs: make(map[string]*domain.RunRecord)}
}

func (r *RunRepo) Save(ctx context.Context, run *domain.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = clone(run)
	return nil
}

func (r *RunRepo) Get(ctx context.Context, id string) (*domain.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, storage.ErrRunNotFound
	}
	return clone(run), nil
}

func (r *RunRepo) Recent(ctx context.Context, limit int) ([]*domain.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.RunRecord, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, clone(run))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func clone(run *domain.RunRecord) *domain.RunRecord {
	c := *run
	c.Outcomes = make([]domain.ItemOutcome, len(run.Outcomes))
	for i, o := range run.Outcomes {
		o.Issues = append([]string(nil), o.Issues...)
		c.Outcomes[i] = o
	}
	return &c
}
