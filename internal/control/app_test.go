package control

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vietddude/nexus/internal/core/config"
	"github.com/vietddude/nexus/internal/core/domain"
	"github.com/vietddude/nexus/internal/health"
	"github.com/vietddude/nexus/internal/metrics"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestApp_DemoRun(t *testing.T) {
	cfg := config.Default()
	var out bytes.Buffer

	app, err := NewApp(context.Background(), &cfg, WithOutput(&out), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	defer app.Close()

	run, err := app.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if run.Source != "demo" || run.Flagged() != 1 {
		t.Errorf("run = %+v", run)
	}

	if got := strings.Count(out.String(), "--- New Email Draft ---"); got != 1 {
		t.Errorf("expected 1 draft printed, got %d:\n%s", got, out.String())
	}
	if !strings.Contains(out.String(), "To: author3@example.com") {
		t.Errorf("draft not addressed to author3:\n%s", out.String())
	}

	runs, err := app.Runs().Recent(context.Background(), 10)
	if err != nil || len(runs) != 1 {
		t.Errorf("history = %v, %v", runs, err)
	}
	if report := app.Monitor().CheckHealth(context.Background()); report.SystemStatus != health.StatusHealthy {
		t.Errorf("status = %s", report.SystemStatus)
	}
}

func TestApp_RequiresCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.Agent.CreateTasks = true

	_, err := NewApp(context.Background(), &cfg, WithLogger(quietLogger()))
	if err == nil || !strings.Contains(err.Error(), "missing required environment variables") {
		t.Errorf("expected missing credentials error, got %v", err)
	}
}

// fakeZoho serves the token, WorkDrive and Projects endpoints.
func fakeZoho(t *testing.T, tasks *atomic.Int32) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v2/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "atk",
			"expires_in":   3600,
			"api_domain":   srv.URL,
		})
	})
	mux.HandleFunc("/workdrive/api/v1/folders/folder123/files", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[
			{"id":"1","name":"Good Document.pdf","mime_type":"application/pdf"},
			{"id":"2","name":"Bad","mime_type":null},
			{"id":"3","name":"Quarterly Report.pdf","mime_type":"text/plain"}
		]}`))
	})
	mux.HandleFunc("/projects/v1/portals/p1/projects/proj1/tasks/", func(w http.ResponseWriter, r *http.Request) {
		n := tasks.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"task": map[string]any{"id": n}})
	})
	srv = httptest.NewServer(mux)
	return srv
}

func TestApp_LiveRun(t *testing.T) {
	var tasks atomic.Int32
	srv := fakeZoho(t, &tasks)
	defer srv.Close()

	cfg := config.Default()
	cfg.Agent.UseLiveAPIs = true
	cfg.Agent.FolderID = "folder123"
	cfg.Agent.CreateTasks = true
	cfg.Agent.PortalID = "p1"
	cfg.Agent.ProjectID = "proj1"
	cfg.Throttle.Burst = 5
	cfg.Zoho.ClientID = "id"
	cfg.Zoho.ClientSecret = "secret"
	cfg.Zoho.RefreshToken = "refresh"
	cfg.Zoho.AccountsBase = srv.URL

	var out bytes.Buffer
	app, err := NewApp(context.Background(), &cfg, WithOutput(&out), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	defer app.Close()

	run, err := app.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if run.Source != "workdrive:folder123" {
		t.Errorf("Source = %q", run.Source)
	}
	if got := run.Count(domain.ActionTaskCreated); got != 2 {
		t.Errorf("tasks created = %d, want 2 (outcomes %+v)", got, run.Outcomes)
	}
	if tasks.Load() != 2 {
		t.Errorf("tracker hits = %d", tasks.Load())
	}
	if !strings.Contains(out.String(), "To: project-docs@example.com") {
		t.Errorf("WorkDrive drafts should use the default recipient:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Extension .pdf but MIME is not application/pdf") {
		t.Errorf("MIME mismatch not reported:\n%s", out.String())
	}

	prom, ok := app.recorder.(*metrics.Prometheus)
	if !ok {
		t.Fatalf("recorder is %T", app.recorder)
	}
	if got := testutil.ToFloat64(prom.TasksCreated); got != 2 {
		t.Errorf("nexus_tasks_created_total = %v", got)
	}
}
