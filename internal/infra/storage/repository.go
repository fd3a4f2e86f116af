package storage

import (
	"context"
	"errors"

	"github.com/vietddude/nexus/internal/core/domain"
)

var (
	// ErrRunNotFound is returned when a run id is unknown
	ErrRunNotFound = errors.New("run not found")
)

// RunRepository stores the audit trail of orchestration runs.
// It is never consulted for task deduplication.
type RunRepository interface {
	// Save persists a finished run with its outcomes
	Save(ctx context.Context, run *domain.RunRecord) error

	// Get retrieves a run by id
	Get(ctx context.Context, id string) (*domain.RunRecord, error)

	// Recent lists the newest runs first
	Recent(ctx context.Context, limit int) ([]*domain.RunRecord, error)
}
