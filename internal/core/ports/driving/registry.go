package driving

import (
	"context"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
)

// PlatformRegistry maps platform identifiers to integration
// implementations and their credential-requirement schemas. It is the
// central point for adding new platforms without touching callers.
type PlatformRegistry interface {
	// Resolve builds an Integration for the platform. Lookup is
	// case-insensitive; unknown platforms yield
	// domain.ErrUnsupportedPlatform, never a panic.
	Resolve(platform string, creds domain.CredentialPayload, cfg domain.ExtractionConfig) (driven.Integration, error)

	// Requirements returns the static credential-requirement schema
	// for the platform.
	Requirements(platform string) domain.Requirements

	// ValidatePayload checks a credential payload's shape against the
	// platform requirements, then delegates to the integration's live
	// check. A failed shape check short-circuits with the missing
	// fields and makes no network call.
	ValidatePayload(ctx context.Context, platform string, payload domain.CredentialPayload) domain.ValidationResult

	// Supported returns all registered platform identifiers.
	Supported() []string
}
