// Package analyzer runs heuristic quality checks on document names and metadata.
package analyzer

import (
	"strings"
	"unicode/utf8"

	"github.com/vietddude/nexus/internal/core/domain"
)

// Issue messages.
const (
	IssueMissingExtension = "Missing file extension"
	IssueShortTitle       = "Document title is too short"
	IssueMissingMIME      = "Missing MIME type"
)

// MaxShortTitle is the longest title (the name before its first dot) still
// reported as too short. "Notes" must be flagged.
const MaxShortTitle = 5

// Analyzer produces an ordered list of issues for an item. An empty list means no action.
type Analyzer interface {
	Assess(item domain.WorkItem) []string
}

// Func adapts a plain function to Analyzer.
type Func func(item domain.WorkItem) []string

func (f Func) Assess(item domain.WorkItem) []string {
	return f(item)
}

// NameAnalyzer checks the item name only.
type NameAnalyzer struct{}

func (NameAnalyzer) Assess(item domain.WorkItem) []string {
	return assessName(item.Name)
}

func assessName(name string) []string {
	var issues []string
	if !strings.Contains(name, ".") {
		issues = append(issues, IssueMissingExtension)
	}
	title, _, _ := strings.Cut(name, ".")
	if utf8.RuneCountInString(title) <= MaxShortTitle {
		issues = append(issues, IssueShortTitle)
	}
	return issues
}
