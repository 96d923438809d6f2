// Package job owns the processing-job state machine: pending → processing →
// completed or error, each terminal state reachable exactly once. Progress
// only moves forward during a run; every transition is recorded as an event
// and pushed to the job store so external observers can poll.
package job

import (
	"context"
	"sync"
	"time"

	"github.com/lorehaven/loregraph/internal/model"
	"github.com/lorehaven/loregraph/internal/runlog"
)

// FailedStepLabel is the generic current_step shown on failed jobs. The
// detailed cause goes to error_message, never to the step label.
const FailedStepLabel = "processing failed"

// Store is the slice of the repository the tracker needs.
type Store interface {
	UpdateJob(ctx context.Context, jobID string, status model.JobStatus, progress int, step, errorMessage string) error
}

// Event is one recorded progress transition.
type Event struct {
	At      time.Time `json:"at"`
	Step    string    `json:"step"`
	Percent int       `json:"percent"`
}

// Snapshot is a pull-based view of the tracker for external observers.
type Snapshot struct {
	JobID        string          `json:"job_id"`
	Status       model.JobStatus `json:"status"`
	Progress     int             `json:"progress"`
	CurrentStep  string          `json:"current_step"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Events       []Event         `json:"events,omitempty"`
}

// Tracker mutates one job record for the duration of one run.
type Tracker struct {
	store Store
	jobID string
	log   *runlog.Logger

	mu       sync.Mutex
	status   model.JobStatus
	progress int
	step     string
	errMsg   string
	events   []Event
}

// NewTracker starts tracking a job in the processing state.
func NewTracker(store Store, jobID string, log *runlog.Logger) *Tracker {
	return &Tracker{
		store:  store,
		jobID:  jobID,
		log:    log,
		status: model.JobProcessing,
		step:   "starting",
	}
}

// Advance moves the job to a new step and percentage. Progress is clamped
// monotonic: a percent below the current value keeps the current value.
// Store write failures are logged, not surfaced; a missed progress update
// must not fail the run.
func (t *Tracker) Advance(ctx context.Context, step string, percent int) {
	t.mu.Lock()
	if t.status.Terminal() {
		t.mu.Unlock()
		return
	}
	if percent > 100 {
		percent = 100
	}
	if percent < t.progress {
		percent = t.progress
	}
	t.progress = percent
	t.step = step
	t.events = append(t.events, Event{At: time.Now().UTC(), Step: step, Percent: percent})
	t.mu.Unlock()

	if err := t.store.UpdateJob(ctx, t.jobID, model.JobProcessing, percent, step, ""); err != nil {
		t.log.Warnf("failed to update job progress at %q: %v", step, err)
	}
}

// Complete moves the job to its completed terminal state. No-op if the job
// already terminated. The in-memory state latches only after the store write
// lands: a failed write leaves the job non-terminal so the run can still
// mark it as failed.
func (t *Tracker) Complete(ctx context.Context) error {
	t.mu.Lock()
	if t.status.Terminal() {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	if err := t.store.UpdateJob(ctx, t.jobID, model.JobCompleted, 100, "completed", ""); err != nil {
		return err
	}

	t.mu.Lock()
	t.status = model.JobCompleted
	t.progress = 100
	t.step = "completed"
	t.events = append(t.events, Event{At: time.Now().UTC(), Step: "completed", Percent: 100})
	t.mu.Unlock()
	return nil
}

// Fail moves the job to its error terminal state, resetting progress to 0
// with a generic failure label. No-op if the job already terminated.
func (t *Tracker) Fail(ctx context.Context, message string) error {
	t.mu.Lock()
	if t.status.Terminal() {
		t.mu.Unlock()
		return nil
	}
	t.status = model.JobError
	t.progress = 0
	t.step = FailedStepLabel
	t.errMsg = message
	t.events = append(t.events, Event{At: time.Now().UTC(), Step: FailedStepLabel, Percent: 0})
	t.mu.Unlock()

	return t.store.UpdateJob(ctx, t.jobID, model.JobError, 0, FailedStepLabel, message)
}

// Snapshot returns the tracker's current state with a copy of the recorded
// events.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	events := make([]Event, len(t.events))
	copy(events, t.events)
	return Snapshot{
		JobID:        t.jobID,
		Status:       t.status,
		Progress:     t.progress,
		CurrentStep:  t.step,
		ErrorMessage: t.errMsg,
		Events:       events,
	}
}
