package domain

import (
	"crypto/rand"
	"math/big"
	"time"
)

// Webhook output formats.
const (
	WebhookFormatJSON = "json"
	WebhookFormatCSV  = "csv"
)

const webhookKeyLength = 32

const webhookKeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// WebhookConfig is a per-project keyed URL that re-exposes extracted
// data to external consumers without authentication beyond the key.
type WebhookConfig struct {
	// ID is the unique identifier for the webhook.
	ID string

	// ProjectID is the owning project.
	ProjectID string

	// Name is the human-readable webhook name.
	Name string

	// Key is the 32-character alphanumeric URL key. Unique across all
	// projects.
	Key string

	// Active gates the webhook.
	Active bool

	// AllowedSources restricts served data to these data source IDs.
	// Empty means all sources in the project.
	AllowedSources []string

	// Format is the response encoding (json or csv).
	Format string

	// RateLimitPerHour caps requests per hour. Zero means uncapped.
	RateLimitPerHour int

	// ExpiresAt disables the webhook after this time, if set.
	ExpiresAt *time.Time

	// CreatedAt is when the webhook was created.
	CreatedAt time.Time

	// UpdatedAt is when the webhook was last updated.
	UpdatedAt time.Time
}

// Expired reports whether the webhook is past its expiry.
func (w *WebhookConfig) Expired(now time.Time) bool {
	return w.ExpiresAt != nil && now.After(*w.ExpiresAt)
}

// AllowsSource reports whether the webhook may serve data for the
// given data source.
func (w *WebhookConfig) AllowsSource(dataSourceID string) bool {
	if len(w.AllowedSources) == 0 {
		return true
	}
	for _, id := range w.AllowedSources {
		if id == dataSourceID {
			return true
		}
	}
	return false
}

// NewWebhookKey generates a cryptographically random 32-character
// alphanumeric key.
func NewWebhookKey() string {
	key := make([]byte, webhookKeyLength)
	max := big.NewInt(int64(len(webhookKeyAlphabet)))
	for i := range key {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken.
			panic(err)
		}
		key[i] = webhookKeyAlphabet[n.Int64()]
	}
	return string(key)
}
