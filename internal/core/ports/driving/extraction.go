package driving

import (
	"context"
	"time"

	"github.com/metryx-io/metryx/internal/core/domain"
)

// ExtractOptions tune one extraction request.
type ExtractOptions struct {
	// Force bypasses the existing-data short-circuit.
	Force bool

	// Kind records what triggered the job. Defaults to manual.
	Kind domain.JobKind
}

// ExtractionService drives the extraction pipeline. Failures inside a
// single source are always folded into the returned SourceResult; only
// project-level configuration errors (missing or inactive project) are
// returned as errors.
type ExtractionService interface {
	// ExtractForSource runs the pipeline for one data source over
	// [start, end]. When the range already has data and Force is not
	// set, it short-circuits with a successful zero-record result
	// referencing the pre-existing row.
	ExtractForSource(ctx context.Context, dataSourceID string, start, end time.Time, opts ExtractOptions) *domain.SourceResult

	// ExtractForProject runs ExtractForSource over every active data
	// source of the project sequentially, isolating per-source failures.
	ExtractForProject(ctx context.Context, projectID string, start, end time.Time, opts ExtractOptions) (*domain.ProjectResult, error)

	// Status returns the per-source extraction snapshot for a project.
	// It never triggers extraction.
	Status(ctx context.Context, projectID string) (*domain.ProjectStatus, error)

	// Data returns extracted rows matching the filter, newest first,
	// capped at the filter limit (default domain.DefaultQueryLimit).
	Data(ctx context.Context, filter domain.DataFilter) ([]domain.ExtractedRecord, error)
}
