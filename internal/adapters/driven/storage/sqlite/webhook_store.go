package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
)

var _ driven.WebhookStore = (*WebhookStore)(nil)

// WebhookStore persists webhook configurations. Keys are unique across
// all projects.
type WebhookStore struct {
	db *sql.DB
}

const webhookColumns = `id, project_id, name, key, active, allowed_sources,
	format, rate_limit_per_hour, expires_at, created_at, updated_at`

// Save stores or updates a webhook.
func (s *WebhookStore) Save(ctx context.Context, hook domain.WebhookConfig) error {
	allowed, err := json.Marshal(hook.AllowedSources)
	if err != nil {
		return fmt.Errorf("encoding allowed sources: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO webhook_configs (`+webhookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			key = excluded.key,
			active = excluded.active,
			allowed_sources = excluded.allowed_sources,
			format = excluded.format,
			rate_limit_per_hour = excluded.rate_limit_per_hour,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
		hook.ID, hook.ProjectID, hook.Name, hook.Key, boolInt(hook.Active),
		string(allowed), hook.Format, hook.RateLimitPerHour,
		nullTime(hook.ExpiresAt), formatTime(hook.CreatedAt), formatTime(hook.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving webhook: %w", err)
	}
	return nil
}

// GetByKey retrieves a webhook by its URL key.
func (s *WebhookStore) GetByKey(ctx context.Context, key string) (*domain.WebhookConfig, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+webhookColumns+" FROM webhook_configs WHERE key = ?", key)
	return scanWebhook(row)
}

// ListByProject returns a project's webhooks.
func (s *WebhookStore) ListByProject(ctx context.Context, projectID string) ([]domain.WebhookConfig, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+webhookColumns+" FROM webhook_configs WHERE project_id = ? ORDER BY created_at", projectID)
	if err != nil {
		return nil, fmt.Errorf("listing webhooks: %w", err)
	}
	defer rows.Close()

	var hooks []domain.WebhookConfig
	for rows.Next() {
		h, err := scanWebhook(rows)
		if err != nil {
			return nil, err
		}
		hooks = append(hooks, *h)
	}
	return hooks, rows.Err()
}

// Delete removes a webhook.
func (s *WebhookStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM webhook_configs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting webhook: %w", err)
	}
	return requireAffected(res)
}

func scanWebhook(row rowScanner) (*domain.WebhookConfig, error) {
	var h domain.WebhookConfig
	var active int
	var allowed, created, updated string
	var expires sql.NullString
	if err := row.Scan(&h.ID, &h.ProjectID, &h.Name, &h.Key, &active, &allowed,
		&h.Format, &h.RateLimitPerHour, &expires, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning webhook: %w", err)
	}
	if err := json.Unmarshal([]byte(allowed), &h.AllowedSources); err != nil {
		return nil, fmt.Errorf("decoding allowed sources: %w", err)
	}
	h.Active = active != 0
	h.ExpiresAt = timePtr(expires)
	h.CreatedAt = parseTime(created)
	h.UpdatedAt = parseTime(updated)
	return &h, nil
}
