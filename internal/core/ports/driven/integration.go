package driven

import (
	"context"
	"time"

	"github.com/metryx-io/metryx/internal/core/domain"
)

// Integration extracts records from one marketing platform.
// Each platform (google_ads, meta_ads, mock, ...) implements this
// interface; implementations hold credentials and configuration but no
// other local state.
type Integration interface {
	// PlatformName returns the stable platform identifier. It is used
	// as the registry key and stored on persisted rows.
	PlatformName() string

	// ValidateCredentials performs a live round trip against the
	// platform. It returns false on any authentication or network
	// failure and never panics for those cases.
	ValidateCredentials(ctx context.Context) bool

	// AvailableMetrics advertises the platform's metric names.
	AvailableMetrics() []string

	// AvailableDimensions advertises the platform's dimension names.
	AvailableDimensions() []string

	// ExtractData fetches raw records for the date range, one record
	// per (entity, date) at the platform's granularity. A degenerate
	// range (start after end) yields an empty slice, not an error.
	// Transport and platform errors are wrapped with platform context
	// and returned; there is no retry inside the integration.
	ExtractData(ctx context.Context, start, end time.Time, metrics, dimensions []string, filters map[string]any) ([]domain.RawRecord, error)

	// AccountInfo returns basic platform account detail for display.
	AccountInfo(ctx context.Context) map[string]any
}

// IntegrationBuilder constructs an Integration from a decrypted
// credential payload and the source's extraction configuration.
type IntegrationBuilder func(creds domain.CredentialPayload, cfg domain.ExtractionConfig) (Integration, error)

// IntegrationFactory creates integrations from platform identifiers.
// It maintains the registry of platform builders; new platforms
// register here without touching the orchestrator.
type IntegrationFactory interface {
	// Create returns an Integration for the platform.
	// Returns domain.ErrUnsupportedPlatform for unknown identifiers.
	// Lookup is case-insensitive.
	Create(platform string, creds domain.CredentialPayload, cfg domain.ExtractionConfig) (Integration, error)

	// Register adds a builder for the given platform identifier.
	Register(platform string, builder IntegrationBuilder)

	// SupportedPlatforms returns all registered platform identifiers.
	SupportedPlatforms() []string
}
