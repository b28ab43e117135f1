package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
)

var _ driven.DataStore = (*DataStore)(nil)

// tupleKey is the deduplication identity of a row.
type tupleKey struct {
	dataSourceID string
	dataType     string
	date         string
	fingerprint  string
}

// DataStore keeps extracted rows in memory, enforcing the same
// uniqueness the SQLite store gets from its constraint. It needs the
// job store to finalize jobs the way the transactional store does.
type DataStore struct {
	mu       sync.RWMutex
	rows     map[string]domain.ExtractedRecord
	tuples   map[tupleKey]string
	jobs     *JobStore
	projects map[string]string // dataSourceID -> projectID, for project filters
}

// NewDataStore creates an empty data store finalizing jobs in the
// given job store.
func NewDataStore(jobs *JobStore) *DataStore {
	return &DataStore{
		rows:     make(map[string]domain.ExtractedRecord),
		tuples:   make(map[tupleKey]string),
		jobs:     jobs,
		projects: make(map[string]string),
	}
}

// BindProject registers a source's owning project so ProjectID filters
// work. The SQLite store resolves this through a join.
func (s *DataStore) BindProject(dataSourceID, projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[dataSourceID] = projectID
}

// StoreBatch inserts the records, absorbing duplicates, and completes
// the job with the inserted count.
func (s *DataStore) StoreBatch(ctx context.Context, job *domain.ExtractionJob, records []domain.ExtractedRecord) (int, error) {
	s.mu.Lock()
	inserted := 0
	for _, rec := range records {
		key := tupleKey{rec.DataSourceID, rec.DataType, rec.Date, rec.Fingerprint}
		if _, exists := s.tuples[key]; exists {
			continue
		}
		s.tuples[key] = rec.ID
		s.rows[rec.ID] = rec
		inserted++
	}
	s.mu.Unlock()

	job.Complete(inserted)
	if err := s.jobs.Save(ctx, *job); err != nil {
		return inserted, err
	}
	return inserted, nil
}

// ExistsForRange reports whether the source has any row dated inside
// [start, end].
func (s *DataStore) ExistsForRange(_ context.Context, dataSourceID string, start, end time.Time) (bool, error) {
	from := start.Format(domain.DateFormat)
	to := end.Format(domain.DateFormat)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.rows {
		if rec.DataSourceID == dataSourceID && rec.Date >= from && rec.Date <= to {
			return true, nil
		}
	}
	return false, nil
}

// Query returns rows matching the filter, newest extraction first.
func (s *DataStore) Query(_ context.Context, filter domain.DataFilter) ([]domain.ExtractedRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultQueryLimit
	}

	s.mu.RLock()
	var matched []domain.ExtractedRecord
	for _, rec := range s.rows {
		if s.matches(rec, filter) {
			matched = append(matched, rec)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *DataStore) matches(rec domain.ExtractedRecord, filter domain.DataFilter) bool {
	if filter.DataSourceID != "" && rec.DataSourceID != filter.DataSourceID {
		return false
	}
	if filter.ProjectID != "" && s.projects[rec.DataSourceID] != filter.ProjectID {
		return false
	}
	if filter.Start != nil && rec.Date < filter.Start.Format(domain.DateFormat) {
		return false
	}
	if filter.End != nil && rec.Date > filter.End.Format(domain.DateFormat) {
		return false
	}
	if len(filter.DataTypes) > 0 {
		found := false
		for _, dt := range filter.DataTypes {
			if rec.DataType == dt {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
