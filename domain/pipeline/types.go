package pipeline

import (
	"time"
)

// StepStatus is the lifecycle state of a pipeline step
type StepStatus string

const (
	StatusRunning StepStatus = "running"
	StatusOK      StepStatus = "ok"
	StatusError   StepStatus = "error"
)

// Predefined step names, in execution order
const (
	StepPrepareOutput = "prepare-output-dir"
	StepProfile       = "profile-dataset"
	StepNarrative     = "synthesize-narrative"
	StepRender        = "render-deck"
)

// StepLog records one step of a pipeline run.
// INVARIANT: at most one step is "running" at any time, and none
// remains "running" once the run has terminated.
type StepLog struct {
	Name      string     `json:"name"`
	Status    StepStatus `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Detail    string     `json:"details,omitempty"`
}

// Finish closes the step with a terminal status
func (s *StepLog) Finish(status StepStatus, detail string) {
	now := time.Now()
	s.Status = status
	s.EndedAt = &now
	if detail != "" {
		s.Detail = detail
	}
}

// Duration returns the elapsed time, or zero while still running
func (s *StepLog) Duration() time.Duration {
	if s.EndedAt == nil {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// RunError carries diagnostics for a failed run. The trace is for
// humans; callers must never parse it.
type RunError struct {
	Message string `json:"message"`
	Trace   string `json:"traceback"`
}

// Result is the terminal outcome of a pipeline run. Exactly one of
// DeckPath or Error is set.
type Result struct {
	DeckPath string    `json:"deck_path,omitempty"`
	Logs     []StepLog `json:"logs"`
	Error    *RunError `json:"error,omitempty"`
}

// Succeeded reports whether the run produced a deck
func (r *Result) Succeeded() bool {
	return r.Error == nil && r.DeckPath != ""
}

// JobStatus is the lifecycle state of an asynchronous pipeline job
type JobStatus string

const (
	JobQueued   JobStatus = "queued"
	JobRunning  JobStatus = "running"
	JobFinished JobStatus = "finished"
)

// Job wraps an asynchronous pipeline run keyed by its identifier
type Job struct {
	ID        string    `json:"id"`
	DatasetID string    `json:"dataset_id"`
	Status    JobStatus `json:"status"`
	Result    *Result   `json:"result,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
