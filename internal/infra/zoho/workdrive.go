package zoho

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vietddude/nexus/internal/core/domain"
)

const defaultListLimit = 50

// File is a WorkDrive file entry. MIMEType is empty when WorkDrive omits it.
type File struct {
	ID       string
	Name     string
	MIMEType string
}

// WorkDrive lists folder contents.
type WorkDrive struct {
	client *Client
	limit  int
}

// NewWorkDrive creates a WorkDrive service; limit <= 0 uses the default page size.
func NewWorkDrive(client *Client, limit int) *WorkDrive {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return &WorkDrive{client: client, limit: limit}
}

// Name identifies WorkDrive as an item source.
func (w *WorkDrive) Name() string { return "workdrive" }

type filesResponse struct {
	Data []struct {
		ID       flexString  `json:"id"`
		Name     flexString  `json:"name"`
		MIMEType *flexString `json:"mime_type"`
	} `json:"data"`
}

// ListFiles lists up to limit files inside folderID.
func (w *WorkDrive) ListFiles(ctx context.Context, folderID string, limit int) ([]File, error) {
	if limit <= 0 {
		limit = w.limit
	}
	path := fmt.Sprintf("/workdrive/api/v1/folders/%s/files", url.PathEscape(folderID))
	query := url.Values{"limit": {strconv.Itoa(limit)}}

	var resp filesResponse
	if err := w.client.do(ctx, "list workdrive files", http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, err
	}

	files := make([]File, 0, len(resp.Data))
	for _, it := range resp.Data {
		f := File{ID: string(it.ID), Name: string(it.Name)}
		if it.MIMEType != nil {
			f.MIMEType = string(*it.MIMEType)
		}
		files = append(files, f)
	}
	return files, nil
}

// ListItems lists a folder as work items.
func (w *WorkDrive) ListItems(ctx context.Context, folderID string) ([]domain.WorkItem, error) {
	files, err := w.ListFiles(ctx, folderID, w.limit)
	if err != nil {
		return nil, err
	}
	items := make([]domain.WorkItem, len(files))
	for i, f := range files {
		items[i] = domain.WorkItem{ID: f.ID, Name: f.Name, MIMEType: f.MIMEType}
	}
	return items, nil
}
