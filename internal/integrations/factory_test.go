package integrations

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
	"github.com/metryx-io/metryx/internal/integrations/mock"
)

func TestCreateKnownPlatforms(t *testing.T) {
	factory := NewFactory()

	google, err := factory.Create("google_ads", domain.CredentialPayload{"client_id": "c"}, domain.ExtractionConfig{})
	require.NoError(t, err)
	assert.Equal(t, "google_ads", google.PlatformName())

	meta, err := factory.Create("facebook_ads", domain.CredentialPayload{"access_token": "t"}, domain.ExtractionConfig{})
	require.NoError(t, err)
	assert.Equal(t, "facebook_ads", meta.PlatformName())

	mockIntegration, err := factory.Create("metricool", domain.CredentialPayload{"api_key": "k"}, domain.ExtractionConfig{})
	require.NoError(t, err)
	assert.Equal(t, "metricool", mockIntegration.PlatformName())
}

func TestCreateCaseInsensitive(t *testing.T) {
	factory := NewFactory()

	integ, err := factory.Create("Google_Ads", domain.CredentialPayload{}, domain.ExtractionConfig{})
	require.NoError(t, err)
	assert.Equal(t, "google_ads", integ.PlatformName())
}

func TestCreateUnsupportedPlatform(t *testing.T) {
	factory := NewFactory()

	_, err := factory.Create("myspace_ads", domain.CredentialPayload{}, domain.ExtractionConfig{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedPlatform))
	assert.Contains(t, err.Error(), "myspace_ads")
}

func TestRegisterCustomBuilder(t *testing.T) {
	factory := NewFactory()

	factory.Register("custom_platform", func(creds domain.CredentialPayload, cfg domain.ExtractionConfig) (driven.Integration, error) {
		return mock.New("custom_platform", creds, nil), nil
	})

	integ, err := factory.Create("custom_platform", domain.CredentialPayload{}, domain.ExtractionConfig{})
	require.NoError(t, err)
	assert.Equal(t, "custom_platform", integ.PlatformName())
	assert.Contains(t, factory.SupportedPlatforms(), "custom_platform")
}

func TestSupportedPlatformsSorted(t *testing.T) {
	platforms := NewFactory().SupportedPlatforms()
	require.NotEmpty(t, platforms)
	assert.IsIncreasing(t, platforms)
	assert.Contains(t, platforms, "google_ads")
	assert.Contains(t, platforms, "facebook_ads")
	assert.Contains(t, platforms, "shopify")
}

func TestRequirementsFor(t *testing.T) {
	google := RequirementsFor("google_ads")
	assert.Equal(t, domain.CredentialOAuth2, google.AuthKind)
	assert.Contains(t, google.RequiredFields, "refresh_token")
	assert.Contains(t, google.RequiredFields, "developer_token")

	unknown := RequirementsFor("never_heard_of_it")
	assert.Equal(t, domain.CredentialAPIKey, unknown.AuthKind)
	assert.Contains(t, unknown.RequiredFields, "api_key")
}
