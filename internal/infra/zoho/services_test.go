package zoho

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vietddude/nexus/internal/resilience/classify"
)

func TestWorkDrive_ListFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/workdrive/api/v1/folders/f1/files" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("limit = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer atk" {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = w.Write([]byte(`{"data":[
			{"id":"a1","name":"Plan.pdf","mime_type":"application/pdf"},
			{"id":2,"name":"Notes","mime_type":null}
		]}`))
	}))
	defer server.Close()

	wd := NewWorkDrive(newTestClient(server), 5)
	files, err := wd.ListFiles(context.Background(), "f1", 0)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].MIMEType != "application/pdf" {
		t.Errorf("MIMEType = %q", files[0].MIMEType)
	}
	if files[1].ID != "2" || files[1].MIMEType != "" {
		t.Errorf("unexpected second file: %+v", files[1])
	}

	items, err := wd.ListItems(context.Background(), "f1")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if items[1].HasMIME() {
		t.Error("null mime_type should map to an absent MIME type")
	}
}

func TestProjects_ListPortalProjects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/v1/portals/p1/projects/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("index") != "1" || q.Get("range") != "10" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"projects":[{"id":1700000000001,"name":"Docs"}]}`))
	}))
	defer server.Close()

	projects, err := NewProjects(newTestClient(server)).ListPortalProjects(context.Background(), "p1", 10)
	if err != nil {
		t.Fatalf("ListPortalProjects: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != "1700000000001" || projects[0].Name != "Docs" {
		t.Errorf("unexpected projects: %+v", projects)
	}
}

func TestProjects_CreateTask(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantID  string
		wantErr classify.Kind
	}{
		{name: "task object", status: 201, body: `{"task":{"id":"999"}}`, wantID: "999"},
		{name: "tasks array", status: 200, body: `{"tasks":[{"id":42}]}`, wantID: "42"},
		{name: "missing id", status: 200, body: `{"task":{}}`, wantErr: classify.KindPermanent},
		{name: "rate limited", status: 429, body: `slow down`, wantErr: classify.KindTransient},
		{name: "not found", status: 404, body: `nope`, wantErr: classify.KindPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("method = %s", r.Method)
				}
				if r.URL.Path != "/projects/v1/portals/p1/projects/proj1/tasks/" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				var req map[string]string
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Errorf("decode body: %v", err)
				}
				if req["name"] != "Review: Notes" {
					t.Errorf("name = %q", req["name"])
				}
				if _, ok := req["description"]; !ok {
					t.Error("description missing")
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			id, err := NewProjects(newTestClient(server)).CreateTask(
				context.Background(), "p1", "proj1", "Review: Notes", "desc")
			if tt.wantErr != classify.KindUnclassified {
				if err == nil {
					t.Fatalf("expected error, got id %q", id)
				}
				if got := classify.KindOf(err); got != tt.wantErr {
					t.Errorf("kind = %v, want %v", got, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateTask: %v", err)
			}
			if id != tt.wantID {
				t.Errorf("id = %q, want %q", id, tt.wantID)
			}
		})
	}
}

func TestProjects_RequiresToken(t *testing.T) {
	c := NewClient(Config{})
	_, err := NewProjects(c).CreateTask(context.Background(), "p", "q", "t", "d")
	if classify.KindOf(err) != classify.KindPermanent {
		t.Errorf("expected permanent auth error, got %v", err)
	}
}
