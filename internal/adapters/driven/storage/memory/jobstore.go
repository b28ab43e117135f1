package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
)

var _ driven.JobStore = (*JobStore)(nil)

// JobStore keeps extraction jobs in a map.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]domain.ExtractionJob
}

// NewJobStore creates an empty job store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]domain.ExtractionJob)}
}

// Save stores or updates a job.
func (s *JobStore) Save(_ context.Context, job domain.ExtractionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

// Get retrieves a job by ID.
func (s *JobStore) Get(_ context.Context, id string) (*domain.ExtractionJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &job, nil
}

// ListBySource returns a source's jobs, newest first.
func (s *JobStore) ListBySource(_ context.Context, dataSourceID string, limit int) ([]domain.ExtractionJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var jobs []domain.ExtractionJob
	for _, j := range s.jobs {
		if j.DataSourceID == dataSourceID {
			jobs = append(jobs, j)
		}
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

// LatestBySource returns the most recent job for a source.
func (s *JobStore) LatestBySource(ctx context.Context, dataSourceID string) (*domain.ExtractionJob, error) {
	jobs, err := s.ListBySource(ctx, dataSourceID, 1)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, domain.ErrNotFound
	}
	return &jobs[0], nil
}
