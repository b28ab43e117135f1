package memory

import (
	"context"
	"sync"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
)

var _ driven.CredentialStore = (*CredentialStore)(nil)

// CredentialStore keeps encrypted credentials in a map.
type CredentialStore struct {
	mu    sync.RWMutex
	creds map[string]domain.Credential
}

// NewCredentialStore creates an empty credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{creds: make(map[string]domain.Credential)}
}

// Save stores or updates a credential.
func (s *CredentialStore) Save(_ context.Context, cred domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[cred.ID] = cred
	return nil
}

// Get retrieves a credential by ID.
func (s *CredentialStore) Get(_ context.Context, id string) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &cred, nil
}

// ListByProject returns all credentials for a project.
func (s *CredentialStore) ListByProject(_ context.Context, projectID string) ([]domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var creds []domain.Credential
	for _, c := range s.creds {
		if c.ProjectID == projectID {
			creds = append(creds, c)
		}
	}
	return creds, nil
}

// Delete removes a credential.
func (s *CredentialStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.creds[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.creds, id)
	return nil
}
