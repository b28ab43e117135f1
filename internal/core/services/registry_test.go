package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/integrations"
)

func TestValidatePayloadShapeCheckShortCircuits(t *testing.T) {
	registry := NewPlatformRegistry(integrations.NewFactory())

	result := registry.ValidatePayload(context.Background(), "google_ads", domain.CredentialPayload{
		"client_id": "c",
	})
	assert.False(t, result.Valid)
	assert.Contains(t, result.MissingFields, "client_secret")
	assert.Contains(t, result.MissingFields, "refresh_token")
	assert.Contains(t, result.MissingFields, "developer_token")
	assert.Contains(t, result.Error, "missing required fields")
}

func TestValidatePayloadMockPlatform(t *testing.T) {
	registry := NewPlatformRegistry(integrations.NewFactory())

	result := registry.ValidatePayload(context.Background(), "Metricool", domain.CredentialPayload{
		"api_key": "k",
	})
	require.True(t, result.Valid, result.Error)
	assert.Equal(t, "metricool", result.Platform)
	assert.Empty(t, result.MissingFields)
	assert.NotNil(t, result.AccountInfo)
}

func TestValidatePayloadUnsupportedPlatform(t *testing.T) {
	registry := NewPlatformRegistry(integrations.NewFactory())

	// Unknown platforms hit the generic api_key schema, then fail at
	// factory resolution rather than panicking.
	result := registry.ValidatePayload(context.Background(), "myspace_ads", domain.CredentialPayload{
		"api_key": "k",
	})
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "myspace_ads")
}

func TestSupportedIncludesBuiltins(t *testing.T) {
	registry := NewPlatformRegistry(integrations.NewFactory())

	supported := registry.Supported()
	assert.Contains(t, supported, "google_ads")
	assert.Contains(t, supported, "facebook_ads")
	assert.Contains(t, supported, "shopify")
}
