package domain

// WorkItem is a named document pulled from a content source.
type WorkItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MIMEType string `json:"mime_type,omitempty"` // empty = no metadata
	Owner    string `json:"owner,omitempty"`     // recipient for drafts, may be empty
}

// HasMIME reports whether the source declared a MIME type.
func (w WorkItem) HasMIME() bool {
	return w.MIMEType != ""
}
