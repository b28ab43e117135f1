package driven

import (
	"context"
	"time"

	"github.com/metryx-io/metryx/internal/core/domain"
)

// ProjectStore persists projects.
type ProjectStore interface {
	// Save stores or updates a project.
	Save(ctx context.Context, project domain.Project) error

	// Get retrieves a project by ID. Returns domain.ErrNotFound if missing.
	Get(ctx context.Context, id string) (*domain.Project, error)

	// List returns all projects.
	List(ctx context.Context) ([]domain.Project, error)

	// Delete removes a project and, by cascade, everything it owns.
	Delete(ctx context.Context, id string) error
}

// CredentialStore persists encrypted credentials.
type CredentialStore interface {
	// Save stores or updates a credential.
	Save(ctx context.Context, cred domain.Credential) error

	// Get retrieves a credential by ID. Returns domain.ErrNotFound if missing.
	Get(ctx context.Context, id string) (*domain.Credential, error)

	// ListByProject returns all credentials for a project.
	ListByProject(ctx context.Context, projectID string) ([]domain.Credential, error)

	// Delete removes a credential.
	Delete(ctx context.Context, id string) error
}

// SourceStore persists data sources.
type SourceStore interface {
	// Save stores or updates a data source.
	Save(ctx context.Context, source domain.DataSource) error

	// Get retrieves a data source by ID. Returns domain.ErrNotFound if missing.
	Get(ctx context.Context, id string) (*domain.DataSource, error)

	// ListActiveByProject returns a project's active data sources.
	ListActiveByProject(ctx context.Context, projectID string) ([]domain.DataSource, error)

	// ListDue returns active scheduled sources whose next extraction
	// time is at or before now.
	ListDue(ctx context.Context, now time.Time) ([]domain.DataSource, error)

	// Delete removes a data source and cascades to its jobs and rows.
	Delete(ctx context.Context, id string) error
}

// JobStore persists extraction jobs.
type JobStore interface {
	// Save stores or updates a job.
	Save(ctx context.Context, job domain.ExtractionJob) error

	// Get retrieves a job by ID. Returns domain.ErrNotFound if missing.
	Get(ctx context.Context, id string) (*domain.ExtractionJob, error)

	// ListBySource returns a source's jobs, newest first, capped at limit.
	ListBySource(ctx context.Context, dataSourceID string, limit int) ([]domain.ExtractionJob, error)

	// LatestBySource returns a source's most recent job, or
	// domain.ErrNotFound when the source has never run.
	LatestBySource(ctx context.Context, dataSourceID string) (*domain.ExtractionJob, error)
}

// DataStore is the deduplication and persistence engine for extracted
// rows.
type DataStore interface {
	// StoreBatch commits a job's records and its terminal bookkeeping
	// as a single transaction: either all new rows and the completed
	// job land, or none do. A record whose (source, type, date,
	// fingerprint) tuple already exists is absorbed as already-current,
	// not an error. Returns the number of rows actually inserted and
	// finalizes the job with that count.
	StoreBatch(ctx context.Context, job *domain.ExtractionJob, records []domain.ExtractedRecord) (int, error)

	// ExistsForRange reports whether any row exists for the source with
	// a data date inside [start, end].
	ExistsForRange(ctx context.Context, dataSourceID string, start, end time.Time) (bool, error)

	// Query returns rows matching the filter, newest extraction first.
	Query(ctx context.Context, filter domain.DataFilter) ([]domain.ExtractedRecord, error)
}

// WebhookStore persists webhook configurations.
type WebhookStore interface {
	// Save stores or updates a webhook.
	Save(ctx context.Context, hook domain.WebhookConfig) error

	// GetByKey retrieves a webhook by its URL key.
	// Returns domain.ErrNotFound if missing.
	GetByKey(ctx context.Context, key string) (*domain.WebhookConfig, error)

	// ListByProject returns a project's webhooks.
	ListByProject(ctx context.Context, projectID string) ([]domain.WebhookConfig, error)

	// Delete removes a webhook.
	Delete(ctx context.Context, id string) error
}
