package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
)

var _ driven.SourceStore = (*SourceStore)(nil)

// SourceStore persists data sources. Extraction and schedule
// configuration are stored as JSON columns.
type SourceStore struct {
	db *sql.DB
}

const sourceColumns = `id, project_id, credential_id, platform, name,
	extraction_config, schedule_config, active,
	last_extraction_at, next_extraction_at, status, created_at, updated_at`

// Save stores or updates a data source.
func (s *SourceStore) Save(ctx context.Context, source domain.DataSource) error {
	extraction, err := json.Marshal(source.Extraction)
	if err != nil {
		return fmt.Errorf("encoding extraction config: %w", err)
	}
	schedule, err := json.Marshal(source.Schedule)
	if err != nil {
		return fmt.Errorf("encoding schedule config: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO data_sources (`+sourceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			credential_id = excluded.credential_id,
			platform = excluded.platform,
			name = excluded.name,
			extraction_config = excluded.extraction_config,
			schedule_config = excluded.schedule_config,
			active = excluded.active,
			last_extraction_at = excluded.last_extraction_at,
			next_extraction_at = excluded.next_extraction_at,
			status = excluded.status,
			updated_at = excluded.updated_at`,
		source.ID, source.ProjectID, source.CredentialID, source.Platform, source.Name,
		string(extraction), string(schedule), boolInt(source.Active),
		nullTime(source.LastExtractionAt), nullTime(source.NextExtractionAt),
		string(source.Status), formatTime(source.CreatedAt), formatTime(source.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving data source: %w", err)
	}
	return nil
}

// Get retrieves a data source by ID.
func (s *SourceStore) Get(ctx context.Context, id string) (*domain.DataSource, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+sourceColumns+" FROM data_sources WHERE id = ?", id)
	return scanSource(row)
}

// ListActiveByProject returns a project's active sources in creation
// order.
func (s *SourceStore) ListActiveByProject(ctx context.Context, projectID string) ([]domain.DataSource, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+sourceColumns+" FROM data_sources WHERE project_id = ? AND active = 1 ORDER BY created_at",
		projectID)
	if err != nil {
		return nil, fmt.Errorf("listing data sources: %w", err)
	}
	return collectSources(rows)
}

// ListDue returns active scheduled sources due at or before now.
func (s *SourceStore) ListDue(ctx context.Context, now time.Time) ([]domain.DataSource, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sourceColumns+` FROM data_sources
		 WHERE active = 1 AND next_extraction_at IS NOT NULL AND next_extraction_at <= ?
		 ORDER BY next_extraction_at`,
		formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("listing due sources: %w", err)
	}
	return collectSources(rows)
}

// Delete removes a data source; foreign keys cascade to its jobs and
// rows.
func (s *SourceStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM data_sources WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting data source: %w", err)
	}
	return requireAffected(res)
}

func collectSources(rows *sql.Rows) ([]domain.DataSource, error) {
	defer rows.Close()
	var sources []domain.DataSource
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *src)
	}
	return sources, rows.Err()
}

func scanSource(row rowScanner) (*domain.DataSource, error) {
	var src domain.DataSource
	var extraction, schedule, status, created, updated string
	var active int
	var lastAt, nextAt sql.NullString
	if err := row.Scan(&src.ID, &src.ProjectID, &src.CredentialID, &src.Platform, &src.Name,
		&extraction, &schedule, &active, &lastAt, &nextAt, &status, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning data source: %w", err)
	}
	// Malformed config JSON degrades to an empty config so one bad row
	// cannot make the whole source unreadable.
	if err := json.Unmarshal([]byte(extraction), &src.Extraction); err != nil {
		src.Extraction = domain.ExtractionConfig{}
	}
	if err := json.Unmarshal([]byte(schedule), &src.Schedule); err != nil {
		src.Schedule = domain.ScheduleConfig{}
	}
	src.Active = active != 0
	src.LastExtractionAt = timePtr(lastAt)
	src.NextExtractionAt = timePtr(nextAt)
	src.Status = domain.SourceStatus(status)
	src.CreatedAt = parseTime(created)
	src.UpdatedAt = parseTime(updated)
	return &src, nil
}
