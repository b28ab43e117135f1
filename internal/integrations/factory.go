package integrations

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
	"github.com/metryx-io/metryx/internal/integrations/googleads"
	"github.com/metryx-io/metryx/internal/integrations/metaads"
	"github.com/metryx-io/metryx/internal/integrations/mock"
)

// Ensure Factory implements the interface.
var _ driven.IntegrationFactory = (*Factory)(nil)

// Factory builds platform integrations from registered builders.
// Lookup is case-insensitive.
type Factory struct {
	mu       sync.RWMutex
	builders map[string]driven.IntegrationBuilder
}

// NewFactory creates a factory with the built-in platforms registered.
func NewFactory() *Factory {
	f := &Factory{builders: make(map[string]driven.IntegrationBuilder)}
	f.registerBuiltins()
	return f
}

func (f *Factory) registerBuiltins() {
	f.Register("google_ads", func(creds domain.CredentialPayload, cfg domain.ExtractionConfig) (driven.Integration, error) {
		return googleads.New(creds, cfg)
	})

	metaBuilder := func(creds domain.CredentialPayload, cfg domain.ExtractionConfig) (driven.Integration, error) {
		return metaads.New(creds, cfg)
	}
	f.Register("facebook_ads", metaBuilder)
	// meta_ads is an alias kept for configurations created before the
	// platform rename.
	f.Register("meta_ads", metaBuilder)

	// Platforms without a native implementation yet run against the
	// development stub.
	for _, platform := range []string{
		"ga4", "google_analytics", "instagram_insights",
		"facebook_insights", "shopify", "amazon_ads",
		"metricool", "klaviyo",
	} {
		f.Register(platform, mockBuilder(platform))
	}
}

func mockBuilder(platform string) driven.IntegrationBuilder {
	return func(creds domain.CredentialPayload, cfg domain.ExtractionConfig) (driven.Integration, error) {
		return mock.New(platform, creds, RequirementsFor(platform).RequiredFields), nil
	}
}

// Create returns an Integration for the platform.
func (f *Factory) Create(platform string, creds domain.CredentialPayload, cfg domain.ExtractionConfig) (driven.Integration, error) {
	f.mu.RLock()
	builder, ok := f.builders[strings.ToLower(platform)]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedPlatform, platform)
	}
	return builder(creds, cfg)
}

// Register adds a builder for the given platform identifier.
func (f *Factory) Register(platform string, builder driven.IntegrationBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[strings.ToLower(platform)] = builder
}

// SupportedPlatforms returns all registered platform identifiers,
// sorted for stable output.
func (f *Factory) SupportedPlatforms() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	platforms := make([]string, 0, len(f.builders))
	for p := range f.builders {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)
	return platforms
}
