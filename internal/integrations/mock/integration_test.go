package mock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metryx-io/metryx/internal/core/domain"
)

func date(s string) time.Time {
	t, _ := time.Parse(domain.DateFormat, s)
	return t
}

func TestExtractDataDeterministic(t *testing.T) {
	integ := New("metricool", domain.CredentialPayload{"api_key": "k"}, []string{"api_key"})

	first, err := integ.ExtractData(context.Background(), date("2026-01-01"), date("2026-01-03"), nil, nil, nil)
	require.NoError(t, err)
	second, err := integ.ExtractData(context.Background(), date("2026-01-01"), date("2026-01-03"), nil, nil, nil)
	require.NoError(t, err)

	// 3 days x 4 campaigns
	assert.Len(t, first, 12)
	assert.Equal(t, first, second)
}

func TestExtractDataInvertedRange(t *testing.T) {
	integ := New("shopify", nil, nil)

	records, err := integ.ExtractData(context.Background(), date("2026-02-10"), date("2026-02-01"), nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExtractDataRecordShape(t *testing.T) {
	integ := New("klaviyo", nil, nil)

	records, err := integ.ExtractData(context.Background(), date("2026-03-05"), date("2026-03-05"), nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, records, 4)

	rec := records[0]
	assert.Equal(t, "2026-03-05", rec[domain.FieldDate])
	assert.Equal(t, "campaign", rec[domain.FieldDataType])
	assert.Equal(t, "Summer Sale", rec["campaign_name"])
	for _, metric := range []string{"impressions", "clicks", "cost", "conversions", "revenue"} {
		v, ok := rec[metric].(float64)
		require.True(t, ok, metric)
		assert.Positive(t, v, metric)
	}
}

func TestValidateCredentials(t *testing.T) {
	required := []string{"api_key", "account_id"}

	valid := New("metricool", domain.CredentialPayload{"api_key": "k", "account_id": "a"}, required)
	assert.True(t, valid.ValidateCredentials(context.Background()))

	missing := New("metricool", domain.CredentialPayload{"api_key": "k"}, required)
	assert.False(t, missing.ValidateCredentials(context.Background()))
}
