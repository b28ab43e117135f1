package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
)

var _ driven.CredentialStore = (*CredentialStore)(nil)

// CredentialStore persists encrypted credentials. The table enforces
// one credential per (project, platform) pair.
type CredentialStore struct {
	db *sql.DB
}

const credentialColumns = `id, project_id, platform, kind, encrypted, active,
	expires_at, last_validated_at, validation, created_at, updated_at`

// Save stores or updates a credential.
func (s *CredentialStore) Save(ctx context.Context, cred domain.Credential) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (`+credentialColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			platform = excluded.platform,
			kind = excluded.kind,
			encrypted = excluded.encrypted,
			active = excluded.active,
			expires_at = excluded.expires_at,
			last_validated_at = excluded.last_validated_at,
			validation = excluded.validation,
			updated_at = excluded.updated_at`,
		cred.ID, cred.ProjectID, cred.Platform, string(cred.Kind), cred.Encrypted,
		boolInt(cred.Active), nullTime(cred.ExpiresAt), nullTime(cred.LastValidatedAt),
		string(cred.Validation), formatTime(cred.CreatedAt), formatTime(cred.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}
	return nil
}

// Get retrieves a credential by ID.
func (s *CredentialStore) Get(ctx context.Context, id string) (*domain.Credential, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+credentialColumns+" FROM credentials WHERE id = ?", id)
	return scanCredential(row)
}

// ListByProject returns all credentials for a project.
func (s *CredentialStore) ListByProject(ctx context.Context, projectID string) ([]domain.Credential, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+credentialColumns+" FROM credentials WHERE project_id = ? ORDER BY platform", projectID)
	if err != nil {
		return nil, fmt.Errorf("listing credentials: %w", err)
	}
	defer rows.Close()

	var creds []domain.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		creds = append(creds, *c)
	}
	return creds, rows.Err()
}

// Delete removes a credential.
func (s *CredentialStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM credentials WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting credential: %w", err)
	}
	return requireAffected(res)
}

func scanCredential(row rowScanner) (*domain.Credential, error) {
	var c domain.Credential
	var kind, validation, created, updated string
	var active int
	var expires, validated sql.NullString
	if err := row.Scan(&c.ID, &c.ProjectID, &c.Platform, &kind, &c.Encrypted,
		&active, &expires, &validated, &validation, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning credential: %w", err)
	}
	c.Kind = domain.CredentialKind(kind)
	c.Active = active != 0
	c.ExpiresAt = timePtr(expires)
	c.LastValidatedAt = timePtr(validated)
	c.Validation = domain.ValidationStatus(validation)
	c.CreatedAt = parseTime(created)
	c.UpdatedAt = parseTime(updated)
	return &c, nil
}
