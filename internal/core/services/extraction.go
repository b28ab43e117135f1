package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
	"github.com/metryx-io/metryx/internal/core/ports/driving"
	"github.com/metryx-io/metryx/internal/logger"
	"github.com/metryx-io/metryx/internal/normalizer"
)

var _ driving.ExtractionService = (*ExtractionService)(nil)

// ExtractionService orchestrates the extraction pipeline: resolve the
// source and credential, build the platform integration, extract,
// normalize, and hand the batch to the deduplicating store. Every
// per-source failure is folded into the SourceResult; callers iterating
// many sources are never aborted by one bad source.
type ExtractionService struct {
	projects    driven.ProjectStore
	sources     driven.SourceStore
	credentials driven.CredentialStore
	jobs        driven.JobStore
	data        driven.DataStore
	cipher      driven.CredentialCipher
	registry    driving.PlatformRegistry
}

// NewExtractionService wires the orchestrator to its stores, the
// credential cipher and the platform registry.
func NewExtractionService(
	projects driven.ProjectStore,
	sources driven.SourceStore,
	credentials driven.CredentialStore,
	jobs driven.JobStore,
	data driven.DataStore,
	cipher driven.CredentialCipher,
	registry driving.PlatformRegistry,
) *ExtractionService {
	return &ExtractionService{
		projects:    projects,
		sources:     sources,
		credentials: credentials,
		jobs:        jobs,
		data:        data,
		cipher:      cipher,
		registry:    registry,
	}
}

// ExtractForSource runs the pipeline for one data source over
// [start, end].
func (s *ExtractionService) ExtractForSource(ctx context.Context, dataSourceID string, start, end time.Time, opts driving.ExtractOptions) *domain.SourceResult {
	result := &domain.SourceResult{
		DataSourceID: dataSourceID,
		Platform:     "unknown",
	}

	source, err := s.sources.Get(ctx, dataSourceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			result.Error = "data source not found"
		} else {
			result.Error = fmt.Sprintf("loading data source: %v", err)
		}
		return result
	}
	result.SourceName = source.Name
	result.Platform = source.Platform

	if !source.Active {
		result.Error = "data source is not active"
		return result
	}

	if start.After(end) {
		result.Error = fmt.Sprintf("invalid date range: %s is after %s",
			start.Format(domain.DateFormat), end.Format(domain.DateFormat))
		return result
	}

	// Dedup short-circuit: a range that already has data is reported
	// as success without running a job, unless the caller forces a
	// refresh.
	if !opts.Force {
		exists, err := s.data.ExistsForRange(ctx, dataSourceID, start, end)
		if err != nil {
			result.Error = fmt.Sprintf("checking existing data: %v", err)
			return result
		}
		if exists {
			result.Success = true
			result.Skipped = true
			result.ExistingDataID = s.existingDataID(ctx, dataSourceID, start, end)
			result.Message = "data already exists for this date range"
			logger.Debug("skipping %s: data already present for %s..%s",
				source.Name, start.Format(domain.DateFormat), end.Format(domain.DateFormat))
			return result
		}
	}

	kind := opts.Kind
	if kind == "" {
		kind = domain.JobManual
	}
	job := domain.ExtractionJob{
		ID:           uuid.NewString(),
		DataSourceID: dataSourceID,
		Kind:         kind,
		Status:       domain.JobPending,
		RangeStart:   start,
		RangeEnd:     end,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		result.Error = fmt.Sprintf("creating extraction job: %v", err)
		return result
	}
	result.JobID = job.ID

	job.Start()
	if err := s.jobs.Save(ctx, job); err != nil {
		result.Error = fmt.Sprintf("starting extraction job: %v", err)
		return result
	}
	s.markSource(ctx, source, domain.SourceRunning)

	records, err := s.runExtraction(ctx, source, &job, start, end)
	if err != nil {
		return s.failJob(ctx, source, &job, result, err)
	}

	stored, err := s.data.StoreBatch(ctx, &job, records)
	if err != nil {
		return s.failJob(ctx, source, &job, result, fmt.Errorf("storing records: %w", err))
	}

	s.completeSource(ctx, source)

	result.Success = true
	result.RecordsStored = stored
	result.Message = fmt.Sprintf("extracted %d records (%d new)", len(records), stored)
	logger.Info("extraction completed for %s: %d records, %d new", source.Name, len(records), stored)
	return result
}

// runExtraction performs the credential, integration and normalization
// stages, returning the storable batch.
func (s *ExtractionService) runExtraction(ctx context.Context, source *domain.DataSource, job *domain.ExtractionJob, start, end time.Time) ([]domain.ExtractedRecord, error) {
	cred, err := s.credentials.Get(ctx, source.CredentialID)
	if err != nil {
		return nil, fmt.Errorf("loading credential: %w", err)
	}
	if !cred.Active {
		return nil, fmt.Errorf("credential for %s: %w", source.Platform, domain.ErrInactive)
	}

	payload, err := s.cipher.Decrypt(cred.Encrypted)
	if err != nil {
		return nil, fmt.Errorf("decrypting credential: %w", err)
	}

	integ, err := s.registry.Resolve(source.Platform, payload, source.Extraction)
	if err != nil {
		return nil, err
	}

	if !integ.ValidateCredentials(ctx) {
		return nil, fmt.Errorf("%w for %s", domain.ErrCredentialValidation, source.Platform)
	}

	raw, err := integ.ExtractData(ctx, start, end,
		source.Extraction.Metrics, source.Extraction.Dimensions, source.Extraction.Filters)
	if err != nil {
		return nil, fmt.Errorf("extracting from %s: %w", source.Platform, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no data returned from platform", domain.ErrNoData)
	}

	records := make([]domain.ExtractedRecord, 0, len(raw))
	for _, r := range raw {
		rec := normalizer.Normalize(source.Platform, r,
			source.Extraction.Metrics, source.Extraction.Dimensions)
		records = append(records, domain.NewExtractedRecord(
			uuid.NewString(), source.ID, job.ID, r, &rec))
	}
	return records, nil
}

// ExtractForProject runs the pipeline over every active data source of
// the project sequentially. Per-source failures are isolated into their
// SourceResult; only project-level configuration errors are returned.
func (s *ExtractionService) ExtractForProject(ctx context.Context, projectID string, start, end time.Time, opts driving.ExtractOptions) (*domain.ProjectResult, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	if !project.Active {
		return nil, fmt.Errorf("project %s: %w", projectID, domain.ErrInactive)
	}

	sources, err := s.sources.ListActiveByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing data sources: %w", err)
	}

	result := &domain.ProjectResult{
		ProjectID:    projectID,
		TotalSources: len(sources),
	}
	for _, source := range sources {
		sr := s.ExtractForSource(ctx, source.ID, start, end, opts)
		result.Results = append(result.Results, *sr)
		if sr.Success {
			result.Successful++
			result.TotalRecords += sr.RecordsStored
		} else {
			logger.Warn("extraction failed for %s: %s", source.Name, sr.Error)
		}
	}
	result.Message = fmt.Sprintf("extracted %d/%d sources, %d new records",
		result.Successful, result.TotalSources, result.TotalRecords)
	return result, nil
}

// Status returns the per-source extraction snapshot for a project. It
// reads job history only and never triggers extraction.
func (s *ExtractionService) Status(ctx context.Context, projectID string) (*domain.ProjectStatus, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}

	sources, err := s.sources.ListActiveByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing data sources: %w", err)
	}

	status := &domain.ProjectStatus{
		ProjectID:    projectID,
		TotalSources: len(sources),
	}
	for _, source := range sources {
		snap := domain.SourceStatusSnapshot{
			DataSourceID: source.ID,
			SourceName:   source.Name,
			Platform:     source.Platform,
			Active:       source.Active,
			Status:       "never_extracted",
		}
		job, err := s.jobs.LatestBySource(ctx, source.ID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			// keep never_extracted
		case err != nil:
			return nil, fmt.Errorf("loading latest job for %s: %w", source.ID, err)
		default:
			snap.Status = string(job.Status)
			snap.LastExtraction = job.CompletedAt
			snap.LastRecords = job.RecordsProcessed
			snap.LastError = job.ErrorMessage
		}
		status.Sources = append(status.Sources, snap)
	}
	return status, nil
}

// Data returns extracted rows matching the filter, newest first.
func (s *ExtractionService) Data(ctx context.Context, filter domain.DataFilter) ([]domain.ExtractedRecord, error) {
	if filter.Limit <= 0 {
		filter.Limit = domain.DefaultQueryLimit
	}
	return s.data.Query(ctx, filter)
}

// existingDataID looks up the row backing a dedup skip, for reporting.
func (s *ExtractionService) existingDataID(ctx context.Context, dataSourceID string, start, end time.Time) string {
	rows, err := s.data.Query(ctx, domain.DataFilter{
		DataSourceID: dataSourceID,
		Start:        &start,
		End:          &end,
		Limit:        1,
	})
	if err != nil || len(rows) == 0 {
		return ""
	}
	return rows[0].ID
}

// failJob records a terminal failure on the job and the source and
// folds the error into the result.
func (s *ExtractionService) failJob(ctx context.Context, source *domain.DataSource, job *domain.ExtractionJob, result *domain.SourceResult, cause error) *domain.SourceResult {
	job.Fail(cause.Error())
	if err := s.jobs.Save(ctx, *job); err != nil {
		logger.Error("recording job failure for %s: %v", job.ID, err)
	}
	s.markSource(ctx, source, domain.SourceFailed)

	result.Error = cause.Error()
	logger.Warn("extraction failed for %s: %v", source.Name, cause)
	return result
}

// markSource updates the source status flag, best effort.
func (s *ExtractionService) markSource(ctx context.Context, source *domain.DataSource, status domain.SourceStatus) {
	source.Status = status
	source.UpdatedAt = time.Now().UTC()
	if err := s.sources.Save(ctx, *source); err != nil {
		logger.Error("updating source %s status: %v", source.ID, err)
	}
}

// completeSource stamps a successful extraction and advances the
// schedule.
func (s *ExtractionService) completeSource(ctx context.Context, source *domain.DataSource) {
	now := time.Now().UTC()
	source.Status = domain.SourceCompleted
	source.LastExtractionAt = &now
	if interval := source.Schedule.Interval(); interval > 0 {
		next := now.Add(interval)
		source.NextExtractionAt = &next
	}
	source.UpdatedAt = now
	if err := s.sources.Save(ctx, *source); err != nil {
		logger.Error("updating source %s after extraction: %v", source.ID, err)
	}
}
