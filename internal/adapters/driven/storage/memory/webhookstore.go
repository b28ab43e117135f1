package memory

import (
	"context"
	"sync"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
)

var _ driven.WebhookStore = (*WebhookStore)(nil)

// WebhookStore keeps webhook configurations in a map, indexed by both
// ID and URL key.
type WebhookStore struct {
	mu    sync.RWMutex
	hooks map[string]domain.WebhookConfig
	byKey map[string]string
}

// NewWebhookStore creates an empty webhook store.
func NewWebhookStore() *WebhookStore {
	return &WebhookStore{
		hooks: make(map[string]domain.WebhookConfig),
		byKey: make(map[string]string),
	}
}

// Save stores or updates a webhook.
func (s *WebhookStore) Save(_ context.Context, hook domain.WebhookConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.hooks[hook.ID]; ok {
		delete(s.byKey, old.Key)
	}
	s.hooks[hook.ID] = hook
	s.byKey[hook.Key] = hook.ID
	return nil
}

// GetByKey retrieves a webhook by its URL key.
func (s *WebhookStore) GetByKey(_ context.Context, key string) (*domain.WebhookConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	hook := s.hooks[id]
	return &hook, nil
}

// ListByProject returns a project's webhooks.
func (s *WebhookStore) ListByProject(_ context.Context, projectID string) ([]domain.WebhookConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var hooks []domain.WebhookConfig
	for _, h := range s.hooks {
		if h.ProjectID == projectID {
			hooks = append(hooks, h)
		}
	}
	return hooks, nil
}

// Delete removes a webhook.
func (s *WebhookStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hook, ok := s.hooks[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(s.byKey, hook.Key)
	delete(s.hooks, id)
	return nil
}
