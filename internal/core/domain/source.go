package domain

import "time"

// SourceStatus tracks the outcome of the most recent extraction attempt.
type SourceStatus string

const (
	SourcePending   SourceStatus = "pending"
	SourceRunning   SourceStatus = "running"
	SourceCompleted SourceStatus = "completed"
	SourceFailed    SourceStatus = "failed"
)

// ExtractionConfig describes what a data source pulls from its platform.
type ExtractionConfig struct {
	// Metrics are the metric names to request (e.g. "clicks", "cost").
	Metrics []string `json:"metrics"`

	// Dimensions are the dimension names to group by (e.g. "date").
	Dimensions []string `json:"dimensions"`

	// Filters are platform-specific filter expressions.
	Filters map[string]any `json:"filters"`
}

// ScheduleFrequency is how often a scheduled source extracts.
type ScheduleFrequency string

const (
	ScheduleHourly ScheduleFrequency = "hourly"
	ScheduleDaily  ScheduleFrequency = "daily"
	ScheduleWeekly ScheduleFrequency = "weekly"
)

// ScheduleConfig describes when a data source extracts automatically.
type ScheduleConfig struct {
	// Frequency is the extraction cadence. Empty disables scheduling.
	Frequency ScheduleFrequency `json:"frequency"`

	// Hour is the UTC hour of day for daily and weekly schedules.
	Hour int `json:"hour"`
}

// Interval returns the wall-clock gap between scheduled runs.
// Zero means the source is not scheduled.
func (s ScheduleConfig) Interval() time.Duration {
	switch s.Frequency {
	case ScheduleHourly:
		return time.Hour
	case ScheduleDaily:
		return 24 * time.Hour
	case ScheduleWeekly:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

// DataSource is a configured binding of one credential to one platform
// within a project. It owns its extraction jobs and extracted rows;
// deleting it cascades to both.
type DataSource struct {
	// ID is the unique identifier for the data source.
	ID string

	// ProjectID is the owning project.
	ProjectID string

	// CredentialID references the credential used for authentication.
	CredentialID string

	// Platform is the platform identifier (e.g. "google_ads").
	Platform string

	// Name is the human-readable source name.
	Name string

	// Extraction is the requested metrics/dimensions/filters.
	Extraction ExtractionConfig

	// Schedule is the automatic extraction cadence.
	Schedule ScheduleConfig

	// Active soft-disables the source without deleting its data.
	Active bool

	// LastExtractionAt is when the last extraction completed successfully.
	LastExtractionAt *time.Time

	// NextExtractionAt is when the scheduler should run this source next.
	NextExtractionAt *time.Time

	// Status reflects the most recent extraction attempt.
	Status SourceStatus

	// CreatedAt is when the source was created.
	CreatedAt time.Time

	// UpdatedAt is when the source was last updated.
	UpdatedAt time.Time
}
