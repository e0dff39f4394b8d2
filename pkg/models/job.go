// Package models contains shared data models used across the portrait server codebase.
package models

import "time"

const (
	JobStatusQueued  = "queued"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// TerminalStatus reports whether a job status admits no further transitions.
func TerminalStatus(status string) bool {
	return status == JobStatusDone || status == JobStatusFailed
}

// GenerationJob tracks one portrait generation request from submission to a
// terminal state. The API returns the job id on POST /api/v1/generate; the
// kiosk polls GET /api/v1/generate/{jobID} until status is done or failed.
type GenerationJob struct {
	ID             string    `json:"jobId"`
	IdempotencyKey string    `json:"-"`
	StyleID        string    `json:"styleId"`
	Status         string    `json:"status"`
	Progress       int       `json:"progress"`
	ImageURL       *string   `json:"imageUrl"`
	ResultURL      *string   `json:"resultUrl"`
	Error          *JobError `json:"error"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// JobError is the structured error recorded on a failed job.
type JobError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}
