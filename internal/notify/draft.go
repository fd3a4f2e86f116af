// Package notify builds review drafts for flagged documents and hands them to sinks.
package notify

import (
	"fmt"
	"strings"
)

const signature = "Nexus Agent"

// Draft is a notification addressed to a document's owner.
type Draft struct {
	To      string   `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	Issues  []string `json:"issues"`
}

// NewDraft renders the review template for itemName. Issues are copied.
func NewDraft(to, itemName string, issues []string) Draft {
	copied := make([]string, len(issues))
	copy(copied, issues)

	return Draft{
		To:      to,
		Subject: Subject(itemName),
		Body:    renderBody(copied),
		Issues:  copied,
	}
}

// Subject returns the subject line for itemName.
func Subject(itemName string) string {
	return fmt.Sprintf("Review of your document: %s", itemName)
}

func renderBody(issues []string) string {
	var b strings.Builder
	b.WriteString("Hello,\n\nI reviewed your document and found:\n")
	for _, issue := range issues {
		b.WriteString("- ")
		b.WriteString(issue)
		b.WriteString("\n")
	}
	b.WriteString("\nThanks,\n")
	b.WriteString(signature)
	return b.String()
}
