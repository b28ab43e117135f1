package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
)

var _ driven.JobStore = (*JobStore)(nil)

// JobStore persists extraction jobs.
type JobStore struct {
	db *sql.DB
}

const jobColumns = `id, data_source_id, kind, status, range_start, range_end,
	started_at, completed_at, records_processed, error_message, created_at`

// Save stores or updates a job.
func (s *JobStore) Save(ctx context.Context, job domain.ExtractionJob) error {
	_, err := s.db.ExecContext(ctx, insertJobSQL, jobArgs(job)...)
	if err != nil {
		return fmt.Errorf("saving job: %w", err)
	}
	return nil
}

const insertJobSQL = `
	INSERT INTO extraction_jobs (` + jobColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		status = excluded.status,
		started_at = excluded.started_at,
		completed_at = excluded.completed_at,
		records_processed = excluded.records_processed,
		error_message = excluded.error_message`

func jobArgs(job domain.ExtractionJob) []any {
	return []any{
		job.ID, job.DataSourceID, string(job.Kind), string(job.Status),
		job.RangeStart.Format(domain.DateFormat), job.RangeEnd.Format(domain.DateFormat),
		nullTime(job.StartedAt), nullTime(job.CompletedAt),
		job.RecordsProcessed, job.ErrorMessage, formatTime(job.CreatedAt),
	}
}

// Get retrieves a job by ID.
func (s *JobStore) Get(ctx context.Context, id string) (*domain.ExtractionJob, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+jobColumns+" FROM extraction_jobs WHERE id = ?", id)
	return scanJob(row)
}

// ListBySource returns a source's jobs, newest first.
func (s *JobStore) ListBySource(ctx context.Context, dataSourceID string, limit int) ([]domain.ExtractionJob, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM extraction_jobs
		 WHERE data_source_id = ?
		 ORDER BY created_at DESC LIMIT ?`,
		dataSourceID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.ExtractionJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// LatestBySource returns a source's most recent job.
func (s *JobStore) LatestBySource(ctx context.Context, dataSourceID string) (*domain.ExtractionJob, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM extraction_jobs
		 WHERE data_source_id = ?
		 ORDER BY created_at DESC LIMIT 1`,
		dataSourceID)
	return scanJob(row)
}

func scanJob(row rowScanner) (*domain.ExtractionJob, error) {
	var job domain.ExtractionJob
	var kind, status, rangeStart, rangeEnd, created string
	var started, completed sql.NullString
	if err := row.Scan(&job.ID, &job.DataSourceID, &kind, &status, &rangeStart, &rangeEnd,
		&started, &completed, &job.RecordsProcessed, &job.ErrorMessage, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning job: %w", err)
	}
	job.Kind = domain.JobKind(kind)
	job.Status = domain.JobStatus(status)
	job.RangeStart, _ = parseDate(rangeStart)
	job.RangeEnd, _ = parseDate(rangeEnd)
	job.StartedAt = timePtr(started)
	job.CompletedAt = timePtr(completed)
	job.CreatedAt = parseTime(created)
	return &job, nil
}
