package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
	"github.com/metryx-io/metryx/internal/core/ports/driving"
	"github.com/metryx-io/metryx/internal/logger"
)

// CredentialService manages platform credentials: shape and live
// validation through the registry, encryption at rest through the
// cipher. One credential per (project, platform) pair; saving again
// replaces the secret in place.
type CredentialService struct {
	store    driven.CredentialStore
	cipher   driven.CredentialCipher
	registry driving.PlatformRegistry
}

// NewCredentialService wires the credential lifecycle.
func NewCredentialService(store driven.CredentialStore, cipher driven.CredentialCipher, registry driving.PlatformRegistry) *CredentialService {
	return &CredentialService{store: store, cipher: cipher, registry: registry}
}

// Save validates, encrypts and persists a credential payload. A payload
// failing the shape check is rejected; one failing only the live check
// is stored with validation status invalid so it can be inspected and
// replaced.
func (c *CredentialService) Save(ctx context.Context, projectID, platform string, payload domain.CredentialPayload) (*domain.Credential, domain.ValidationResult, error) {
	platform = strings.ToLower(platform)

	validation := c.registry.ValidatePayload(ctx, platform, payload)
	if len(validation.MissingFields) > 0 {
		return nil, validation, fmt.Errorf("%w: %s", domain.ErrMissingFields,
			strings.Join(validation.MissingFields, ", "))
	}

	encrypted, err := c.cipher.Encrypt(payload)
	if err != nil {
		return nil, validation, fmt.Errorf("encrypting credential: %w", err)
	}

	now := time.Now().UTC()
	cred := domain.Credential{
		ID:              uuid.NewString(),
		ProjectID:       projectID,
		Platform:        platform,
		Kind:            c.registry.Requirements(platform).AuthKind,
		Encrypted:       encrypted,
		Active:          true,
		LastValidatedAt: &now,
		Validation:      domain.ValidationInvalid,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if validation.Valid {
		cred.Validation = domain.ValidationValid
	}

	// Replace an existing credential for the pair instead of stacking
	// a second one.
	if existing := c.find(ctx, projectID, platform); existing != nil {
		cred.ID = existing.ID
		cred.CreatedAt = existing.CreatedAt
	}

	if err := c.store.Save(ctx, cred); err != nil {
		return nil, validation, fmt.Errorf("saving credential: %w", err)
	}
	logger.Info("credential saved for %s/%s (validation: %s)", projectID, platform, cred.Validation)
	return &cred, validation, nil
}

// Revalidate re-runs the live check for a stored credential and
// updates its validation status.
func (c *CredentialService) Revalidate(ctx context.Context, credentialID string) (domain.ValidationResult, error) {
	cred, err := c.store.Get(ctx, credentialID)
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("loading credential: %w", err)
	}

	payload, err := c.cipher.Decrypt(cred.Encrypted)
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("decrypting credential: %w", err)
	}

	validation := c.registry.ValidatePayload(ctx, cred.Platform, payload)
	now := time.Now().UTC()
	cred.LastValidatedAt = &now
	cred.UpdatedAt = now
	if validation.Valid {
		cred.Validation = domain.ValidationValid
	} else {
		cred.Validation = domain.ValidationInvalid
	}
	if err := c.store.Save(ctx, *cred); err != nil {
		return validation, fmt.Errorf("saving credential: %w", err)
	}
	return validation, nil
}

func (c *CredentialService) find(ctx context.Context, projectID, platform string) *domain.Credential {
	creds, err := c.store.ListByProject(ctx, projectID)
	if err != nil {
		return nil
	}
	for i := range creds {
		if creds[i].Platform == platform {
			return &creds[i]
		}
	}
	return nil
}
