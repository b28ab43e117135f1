package services

import (
	"context"
	"strings"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
	"github.com/metryx-io/metryx/internal/core/ports/driving"
	"github.com/metryx-io/metryx/internal/integrations"
	"github.com/metryx-io/metryx/internal/logger"
)

var _ driving.PlatformRegistry = (*PlatformRegistry)(nil)

// PlatformRegistry fronts the integration factory with the static
// credential-requirement schemas, so callers can pre-validate payloads
// without constructing an integration.
type PlatformRegistry struct {
	factory driven.IntegrationFactory
}

// NewPlatformRegistry creates a registry backed by the given factory.
func NewPlatformRegistry(factory driven.IntegrationFactory) *PlatformRegistry {
	return &PlatformRegistry{factory: factory}
}

// Resolve builds an Integration for the platform.
func (r *PlatformRegistry) Resolve(platform string, creds domain.CredentialPayload, cfg domain.ExtractionConfig) (driven.Integration, error) {
	return r.factory.Create(platform, creds, cfg)
}

// Requirements returns the platform's credential-requirement schema.
func (r *PlatformRegistry) Requirements(platform string) domain.Requirements {
	return integrations.RequirementsFor(strings.ToLower(platform))
}

// Supported returns all registered platform identifiers.
func (r *PlatformRegistry) Supported() []string {
	return r.factory.SupportedPlatforms()
}

// ValidatePayload shape-checks the payload against the platform
// requirements and, when the shape passes, runs the integration's live
// credential check. Missing fields short-circuit without any network
// call.
func (r *PlatformRegistry) ValidatePayload(ctx context.Context, platform string, payload domain.CredentialPayload) domain.ValidationResult {
	platform = strings.ToLower(platform)
	result := domain.ValidationResult{Platform: platform}

	req := r.Requirements(platform)
	for _, field := range req.RequiredFields {
		if payload[field] == "" {
			result.MissingFields = append(result.MissingFields, field)
		}
	}
	if len(result.MissingFields) > 0 {
		result.Error = "missing required fields: " + strings.Join(result.MissingFields, ", ")
		return result
	}

	integ, err := r.factory.Create(platform, payload, domain.ExtractionConfig{})
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if !integ.ValidateCredentials(ctx) {
		logger.Debug("live credential check failed for %s", platform)
		result.Error = "credential validation failed against " + platform
		return result
	}

	result.Valid = true
	result.AccountInfo = integ.AccountInfo(ctx)
	return result
}
