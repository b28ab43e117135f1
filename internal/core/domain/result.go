package domain

import "time"

// SourceResult is the structured outcome of one ExtractForSource call.
// All failures inside the pipeline are folded into this shape; they are
// never propagated as errors past the orchestrator boundary.
type SourceResult struct {
	// Success is true when the extraction completed (or was skipped
	// because data already exists for the range).
	Success bool

	// DataSourceID is the extracted source.
	DataSourceID string

	// SourceName is the human-readable source name.
	SourceName string

	// Platform is the platform identifier, or "unknown" when the
	// credential could not be resolved.
	Platform string

	// JobID is the extraction job this run created, if any.
	JobID string

	// RecordsStored is the number of new rows committed.
	RecordsStored int

	// Skipped is true when existing data satisfied the request and no
	// extraction ran.
	Skipped bool

	// ExistingDataID references the pre-existing row when Skipped.
	ExistingDataID string

	// Message is a human-readable summary.
	Message string

	// Error carries failure detail when Success is false.
	Error string
}

// ProjectResult aggregates per-source outcomes for one project-wide
// extraction. A failed source never aborts the others.
type ProjectResult struct {
	// ProjectID is the extracted project.
	ProjectID string

	// TotalSources is the number of active sources attempted.
	TotalSources int

	// Successful is the number of sources that succeeded.
	Successful int

	// TotalRecords is the sum of stored rows across successful sources.
	TotalRecords int

	// Results holds the per-source outcomes in extraction order.
	Results []SourceResult

	// Message is a human-readable summary.
	Message string
}

// SourceStatusSnapshot is the per-source view returned by status
// queries. Reading it never triggers extraction.
type SourceStatusSnapshot struct {
	// DataSourceID is the source.
	DataSourceID string

	// SourceName is the human-readable source name.
	SourceName string

	// Platform is the platform identifier.
	Platform string

	// Active is the source's active flag.
	Active bool

	// Status summarises extraction history: "never_extracted" or the
	// latest job status.
	Status string

	// LastExtraction is when the latest job reached a terminal state.
	LastExtraction *time.Time

	// LastRecords is the row count of the latest completed job.
	LastRecords int

	// LastError carries the latest job's failure detail, if any.
	LastError string
}

// ProjectStatus is the project-level status snapshot.
type ProjectStatus struct {
	// ProjectID is the queried project.
	ProjectID string

	// Sources holds per-source snapshots for active sources.
	Sources []SourceStatusSnapshot

	// TotalSources counts the project's active sources.
	TotalSources int
}

// DataFilter selects extracted rows for queries.
type DataFilter struct {
	// DataSourceID filters to one source when set.
	DataSourceID string

	// ProjectID filters to all sources of a project when set.
	ProjectID string

	// Start and End bound the data date range when set.
	Start *time.Time
	End   *time.Time

	// DataTypes filters by record granularity when non-empty.
	DataTypes []string

	// Limit caps the result set. Zero applies DefaultQueryLimit.
	Limit int
}

// DefaultQueryLimit caps data queries that do not specify a limit.
const DefaultQueryLimit = 1000
