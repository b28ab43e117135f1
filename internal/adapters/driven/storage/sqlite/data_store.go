package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
)

var _ driven.DataStore = (*DataStore)(nil)

// DataStore is the deduplication and persistence engine. The unique
// constraint on (data_source_id, data_type, data_date, fingerprint)
// does the deduplication; inserts use ON CONFLICT DO NOTHING so a
// duplicate row is absorbed, not an error.
type DataStore struct {
	db *sql.DB
}

const dataColumns = `id, data_source_id, job_id, data_type, data_date,
	raw_data, processed_data, metrics, fingerprint, created_at`

// StoreBatch commits the records and the job's terminal bookkeeping in
// one transaction. Either every new row and the completed job land, or
// none do.
func (s *DataStore) StoreBatch(ctx context.Context, job *domain.ExtractionJob, records []domain.ExtractedRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO extracted_data (`+dataColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(data_source_id, data_type, data_date, fingerprint) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, rec := range records {
		raw, err := json.Marshal(rec.Raw)
		if err != nil {
			return 0, fmt.Errorf("encoding raw record: %w", err)
		}
		processed, err := json.Marshal(rec.Processed)
		if err != nil {
			return 0, fmt.Errorf("encoding processed record: %w", err)
		}
		metrics, err := json.Marshal(rec.Metrics)
		if err != nil {
			return 0, fmt.Errorf("encoding metrics: %w", err)
		}

		res, err := stmt.ExecContext(ctx,
			rec.ID, rec.DataSourceID, rec.JobID, rec.DataType, rec.Date,
			string(raw), string(processed), string(metrics), rec.Fingerprint,
			formatTime(rec.CreatedAt))
		if err != nil {
			return 0, fmt.Errorf("inserting record: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}

	job.Complete(inserted)
	if _, err := tx.ExecContext(ctx, insertJobSQL, jobArgs(*job)...); err != nil {
		return 0, fmt.Errorf("finalizing job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing batch: %w", err)
	}
	return inserted, nil
}

// ExistsForRange reports whether the source has any row dated inside
// [start, end].
func (s *DataStore) ExistsForRange(ctx context.Context, dataSourceID string, start, end time.Time) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM extracted_data
		 WHERE data_source_id = ? AND data_date >= ? AND data_date <= ?
		 LIMIT 1`,
		dataSourceID, start.Format(domain.DateFormat), end.Format(domain.DateFormat)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking existing data: %w", err)
	}
	return true, nil
}

const dataColumnsQualified = `ed.id, ed.data_source_id, ed.job_id, ed.data_type, ed.data_date,
	ed.raw_data, ed.processed_data, ed.metrics, ed.fingerprint, ed.created_at`

// Query returns rows matching the filter, newest extraction first.
func (s *DataStore) Query(ctx context.Context, filter domain.DataFilter) ([]domain.ExtractedRecord, error) {
	query := "SELECT " + dataColumnsQualified + " FROM extracted_data ed"
	var conds []string
	var args []any

	if filter.ProjectID != "" {
		query += " JOIN data_sources ds ON ds.id = ed.data_source_id"
		conds = append(conds, "ds.project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.DataSourceID != "" {
		conds = append(conds, "ed.data_source_id = ?")
		args = append(args, filter.DataSourceID)
	}
	if filter.Start != nil {
		conds = append(conds, "ed.data_date >= ?")
		args = append(args, filter.Start.Format(domain.DateFormat))
	}
	if filter.End != nil {
		conds = append(conds, "ed.data_date <= ?")
		args = append(args, filter.End.Format(domain.DateFormat))
	}
	if len(filter.DataTypes) > 0 {
		placeholders := strings.Repeat("?,", len(filter.DataTypes))
		conds = append(conds, "ed.data_type IN ("+placeholders[:len(placeholders)-1]+")")
		for _, dt := range filter.DataTypes {
			args = append(args, dt)
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultQueryLimit
	}
	query += " ORDER BY ed.created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying data: %w", err)
	}
	defer rows.Close()

	var records []domain.ExtractedRecord
	for rows.Next() {
		rec, err := scanData(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func scanData(row rowScanner) (*domain.ExtractedRecord, error) {
	var rec domain.ExtractedRecord
	var raw, processed, metrics, created string
	if err := row.Scan(&rec.ID, &rec.DataSourceID, &rec.JobID, &rec.DataType, &rec.Date,
		&raw, &processed, &metrics, &rec.Fingerprint, &created); err != nil {
		return nil, fmt.Errorf("scanning record: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &rec.Raw); err != nil {
		return nil, fmt.Errorf("decoding raw record: %w", err)
	}
	if err := json.Unmarshal([]byte(processed), &rec.Processed); err != nil {
		return nil, fmt.Errorf("decoding processed record: %w", err)
	}
	if err := json.Unmarshal([]byte(metrics), &rec.Metrics); err != nil {
		return nil, fmt.Errorf("decoding metrics: %w", err)
	}
	rec.CreatedAt = parseTime(created)
	return &rec, nil
}
