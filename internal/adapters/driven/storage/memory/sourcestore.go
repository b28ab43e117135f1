package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
)

var _ driven.SourceStore = (*SourceStore)(nil)

// SourceStore keeps data sources in a map.
type SourceStore struct {
	mu      sync.RWMutex
	sources map[string]domain.DataSource
}

// NewSourceStore creates an empty source store.
func NewSourceStore() *SourceStore {
	return &SourceStore{sources: make(map[string]domain.DataSource)}
}

// Save stores or updates a data source.
func (s *SourceStore) Save(_ context.Context, source domain.DataSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[source.ID] = source
	return nil
}

// Get retrieves a data source by ID.
func (s *SourceStore) Get(_ context.Context, id string) (*domain.DataSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	source, ok := s.sources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &source, nil
}

// ListActiveByProject returns a project's active sources, ordered by
// creation time for stable iteration.
func (s *SourceStore) ListActiveByProject(_ context.Context, projectID string) ([]domain.DataSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sources []domain.DataSource
	for _, src := range s.sources {
		if src.ProjectID == projectID && src.Active {
			sources = append(sources, src)
		}
	}
	sort.Slice(sources, func(i, j int) bool {
		return sources[i].CreatedAt.Before(sources[j].CreatedAt)
	})
	return sources, nil
}

// ListDue returns active scheduled sources due at or before now.
func (s *SourceStore) ListDue(_ context.Context, now time.Time) ([]domain.DataSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var due []domain.DataSource
	for _, src := range s.sources {
		if !src.Active || src.NextExtractionAt == nil {
			continue
		}
		if !src.NextExtractionAt.After(now) {
			due = append(due, src)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].NextExtractionAt.Before(*due[j].NextExtractionAt)
	})
	return due, nil
}

// Delete removes a data source.
func (s *SourceStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sources[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.sources, id)
	return nil
}
