package domain

import "time"

// JobKind distinguishes what triggered an extraction job.
type JobKind string

const (
	JobScheduled JobKind = "scheduled"
	JobManual    JobKind = "manual"
	JobBackfill  JobKind = "backfill"
)

// JobStatus is the lifecycle state of an extraction job.
// Valid transitions: pending -> running -> completed|failed.
// Completed and failed are terminal.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// ExtractionJob is one invocation of the pipeline against one data source.
// Terminal jobs are immutable; a re-run creates a new job.
type ExtractionJob struct {
	// ID is the unique identifier for the job.
	ID string

	// DataSourceID is the source this job extracts.
	DataSourceID string

	// Kind is what triggered the job.
	Kind JobKind

	// Status is the lifecycle state.
	Status JobStatus

	// RangeStart and RangeEnd bound the requested extraction window.
	RangeStart time.Time
	RangeEnd   time.Time

	// StartedAt is when the job transitioned to running.
	StartedAt *time.Time

	// CompletedAt is when the job reached a terminal state.
	CompletedAt *time.Time

	// RecordsProcessed is the number of rows stored by a completed job.
	RecordsProcessed int

	// ErrorMessage carries failure detail for failed jobs.
	ErrorMessage string

	// CreatedAt is when the job was dispatched.
	CreatedAt time.Time
}

// Start marks the job as running and records the start timestamp.
func (j *ExtractionJob) Start() {
	now := time.Now().UTC()
	j.Status = JobRunning
	j.StartedAt = &now
}

// Complete marks the job as completed with the stored record count.
func (j *ExtractionJob) Complete(records int) {
	now := time.Now().UTC()
	j.Status = JobCompleted
	j.CompletedAt = &now
	j.RecordsProcessed = records
}

// Fail marks the job as failed with error detail.
func (j *ExtractionJob) Fail(msg string) {
	now := time.Now().UTC()
	j.Status = JobFailed
	j.CompletedAt = &now
	j.ErrorMessage = msg
}

// Duration returns the job runtime, or zero if it never ran to a
// terminal state.
func (j *ExtractionJob) Duration() time.Duration {
	if j.StartedAt == nil || j.CompletedAt == nil {
		return 0
	}
	return j.CompletedAt.Sub(*j.StartedAt)
}

// Terminal reports whether the job reached completed or failed.
func (j *ExtractionJob) Terminal() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}
