package zoho

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vietddude/nexus/internal/resilience/classify"
)

// Project is a Zoho Projects project.
type Project struct {
	ID   string
	Name string
}

// Projects wraps the Zoho Projects endpoints.
type Projects struct {
	client *Client
}

func NewProjects(client *Client) *Projects {
	return &Projects{client: client}
}

type projectsResponse struct {
	Projects []struct {
		ID   flexString `json:"id"`
		Name flexString `json:"name"`
	} `json:"projects"`
}

// ListPortalProjects lists up to limit projects of a portal.
func (p *Projects) ListPortalProjects(ctx context.Context, portalID string, limit int) ([]Project, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	path := fmt.Sprintf("/projects/v1/portals/%s/projects/", url.PathEscape(portalID))
	query := url.Values{
		"index": {"1"},
		"range": {strconv.Itoa(limit)},
	}

	var resp projectsResponse
	if err := p.client.do(ctx, "list projects", http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, err
	}

	projects := make([]Project, 0, len(resp.Projects))
	for _, it := range resp.Projects {
		projects = append(projects, Project{ID: string(it.ID), Name: string(it.Name)})
	}
	return projects, nil
}

type createTaskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type taskRef struct {
	ID flexString `json:"id"`
}

type createTaskResponse struct {
	Task  *taskRef  `json:"task"`
	Tasks []taskRef `json:"tasks"`
}

func (r createTaskResponse) id() string {
	if r.Task != nil && r.Task.ID != "" {
		return string(r.Task.ID)
	}
	if len(r.Tasks) > 0 {
		return string(r.Tasks[0].ID)
	}
	return ""
}

// CreateTask creates a task and returns its id. A response without an id is a
// permanent failure.
func (p *Projects) CreateTask(ctx context.Context, portalID, projectID, title, description string) (string, error) {
	const op = "create task"
	path := fmt.Sprintf("/projects/v1/portals/%s/projects/%s/tasks/",
		url.PathEscape(portalID), url.PathEscape(projectID))

	var resp createTaskResponse
	req := createTaskRequest{Name: title, Description: description}
	if err := p.client.do(ctx, op, http.MethodPost, path, nil, req, &resp); err != nil {
		return "", err
	}

	id := resp.id()
	if id == "" {
		return "", classify.Permanent(op, errors.New("task id missing in response"))
	}
	return id, nil
}
