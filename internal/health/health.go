// Package health provides agent health monitoring and status reporting.
package health

import "time"

// SystemStatus represents the overall health state of the agent or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// ComponentHealth is the result of one dependency check.
type ComponentHealth struct {
	Name   string       `json:"name"`
	Status SystemStatus `json:"status"`
	Error  string       `json:"error,omitempty"`
}

// RunSummary describes the most recent orchestration run.
type RunSummary struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	FinishedAt  time.Time `json:"finished_at"`
	Items       int       `json:"items"`
	Flagged     int       `json:"flagged"`
	TasksFailed int       `json:"tasks_failed"`
	Error       string    `json:"error,omitempty"`
}

// HealthReport contains the full health report.
type HealthReport struct {
	SystemStatus SystemStatus               `json:"system_status"`
	Components   map[string]ComponentHealth `json:"components"`
	LastRun      *RunSummary                `json:"last_run,omitempty"`
}
