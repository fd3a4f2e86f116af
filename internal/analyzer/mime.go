package analyzer

import (
	"fmt"
	"strings"

	"github.com/vietddude/nexus/internal/core/domain"
)

// mimeRule maps an extension to the MIME prefix it must declare.
type mimeRule struct {
	ext    string
	prefix string
	label  string
}

var mimeRules = []mimeRule{
	{ext: ".pdf", prefix: "application/pdf", label: "application/pdf"},
	{
		ext:    ".docx",
		prefix: "application/vnd.openxmlformats-officedocument.wordprocessingml",
		label:  "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	},
	{ext: ".txt", prefix: "text/", label: "text/*"},
}

// MIMEAnalyzer applies the name checks and cross-checks the declared MIME type against the extension.
// Use it for sources that report MIME metadata.
type MIMEAnalyzer struct{}

func (MIMEAnalyzer) Assess(item domain.WorkItem) []string {
	issues := assessName(item.Name)

	if !item.HasMIME() {
		return append(issues, IssueMissingMIME)
	}

	lower := strings.ToLower(item.Name)
	mime := strings.ToLower(strings.TrimSpace(item.MIMEType))
	for _, rule := range mimeRules {
		if !strings.HasSuffix(lower, rule.ext) {
			continue
		}
		if !strings.HasPrefix(mime, rule.prefix) {
			issues = append(issues, MismatchIssue(rule.ext, rule.label))
		}
		break
	}
	return issues
}

// MismatchIssue formats an extension/MIME mismatch message.
func MismatchIssue(ext, expected string) string {
	return fmt.Sprintf("Extension %s but MIME is not %s", ext, expected)
}
