package agent

import (
	"context"

	"github.com/vietddude/nexus/internal/core/domain"
)

// Source lists the work items of a collection.
type Source interface {
	Name() string
	ListItems(ctx context.Context, collection string) ([]domain.WorkItem, error)
}

// Tracker files tracking tasks and returns the new task id.
type Tracker interface {
	CreateTask(ctx context.Context, portalID, projectID, title, description string) (string, error)
}

// DemoSource serves a fixed set of documents, used when live APIs are off.
type DemoSource struct{}

func (DemoSource) Name() string { return "demo" }

func (DemoSource) ListItems(_ context.Context, _ string) ([]domain.WorkItem, error) {
	return DemoItems(), nil
}

// DemoItems returns the demo documents. Only "Notes" is flagged.
func DemoItems() []domain.WorkItem {
	return []domain.WorkItem{
		{ID: "doc1", Name: "Requirement Specification.docx", Owner: "author1@example.com"},
		{ID: "doc2", Name: "Design Document.pdf", Owner: "author2@example.com"},
		{ID: "doc3", Name: "Notes", Owner: "author3@example.com"},
	}
}
