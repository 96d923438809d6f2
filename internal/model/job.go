package model

import "time"

// JobStatus is the lifecycle state of a processing job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobError      JobStatus = "error"
)

// Terminal reports whether the status ends a run. Terminal jobs are never
// mutated again by the pipeline.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobError
}

// ProcessingJob tracks one pipeline execution against one universe.
// Progress is an integer percentage in [0,100] and only moves forward while
// the job is running; it resets to 0 when the job fails.
type ProcessingJob struct {
	ID           string    `json:"id"`
	UniverseID   string    `json:"universe_id"`
	Status       JobStatus `json:"status"`
	Progress     int       `json:"progress"`
	CurrentStep  string    `json:"current_step"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
