package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metryx-io/metryx/internal/core/domain"
)

func TestNormalize_DerivedMetrics(t *testing.T) {
	raw := domain.RawRecord{
		"date":          "2025-06-01",
		"campaign_name": "Summer Sale",
		"impressions":   10000.0,
		"clicks":        500.0,
		"cost":          200.0,
		"revenue":       800.0,
	}

	rec := Normalize("mock", raw,
		[]string{"impressions", "clicks", "cost", "revenue", "ctr", "cpc", "cpm", "roas"},
		[]string{"date", "campaign_name"})

	assert.Equal(t, 5.0, rec.Metrics["ctr"])
	assert.Equal(t, 0.4, rec.Metrics["cpc"])
	assert.Equal(t, 20.0, rec.Metrics["cpm"])
	assert.Equal(t, 4.0, rec.Metrics["roas"])
}

func TestNormalize_DivisionByZeroYieldsZero(t *testing.T) {
	raw := domain.RawRecord{
		"impressions": 0.0,
		"clicks":      0.0,
		"cost":        100.0,
		"revenue":     50.0,
	}

	rec := Normalize("mock", raw, []string{"ctr", "cpc", "cpm"}, nil)

	assert.Equal(t, 0.0, rec.Metrics["ctr"])
	assert.Equal(t, 0.0, rec.Metrics["cpc"])
	assert.Equal(t, 0.0, rec.Metrics["cpm"])
}

func TestNormalize_RoasZeroCost(t *testing.T) {
	raw := domain.RawRecord{"cost": 0.0, "revenue": 500.0}

	rec := Normalize("mock", raw, []string{"roas"}, nil)

	assert.Equal(t, 0.0, rec.Metrics["roas"])
}

func TestNormalize_PlatformSuppliedRatioWins(t *testing.T) {
	// The platform already reports ctr; the normalizer must not
	// recompute it.
	raw := domain.RawRecord{
		"impressions": 10000.0,
		"clicks":      500.0,
		"ctr":         4.2,
	}

	rec := Normalize("google_ads", raw, []string{"ctr"}, nil)

	assert.Equal(t, 4.2, rec.Metrics["ctr"])
}

func TestNormalize_UnknownRequestedNamesOmitted(t *testing.T) {
	raw := domain.RawRecord{"clicks": 10.0, "device": "mobile"}

	rec := Normalize("mock", raw,
		[]string{"clicks", "quality_score"},
		[]string{"device", "geo_target_city"})

	assert.Equal(t, map[string]float64{"clicks": 10}, rec.Metrics)
	assert.Equal(t, map[string]any{"device": "mobile"}, rec.Dimensions)
	_, ok := rec.Metrics["quality_score"]
	assert.False(t, ok)
}

func TestNormalize_RestrictsToRequested(t *testing.T) {
	raw := domain.RawRecord{
		"clicks":      10.0,
		"impressions": 100.0,
		"device":      "mobile",
		"gender":      "f",
	}

	rec := Normalize("mock", raw, []string{"clicks"}, []string{"device"})

	assert.Len(t, rec.Metrics, 1)
	assert.Len(t, rec.Dimensions, 1)
}

func TestNormalize_NumericStringCoercion(t *testing.T) {
	raw := domain.RawRecord{"clicks": "500", "impressions": 10000}

	rec := Normalize("meta_ads", raw, []string{"clicks", "impressions", "ctr"}, nil)

	assert.Equal(t, 500.0, rec.Metrics["clicks"])
	assert.Equal(t, 10000.0, rec.Metrics["impressions"])
	assert.Equal(t, 5.0, rec.Metrics["ctr"])
}

func TestNormalize_DateAndTypeDefaults(t *testing.T) {
	rec := Normalize("mock", domain.RawRecord{"date": "2025-06-01", "data_type": "keyword"}, nil, nil)
	assert.Equal(t, "keyword", rec.DataType)
	assert.Equal(t, "2025-06-01", rec.Date)

	rec = Normalize("mock", domain.RawRecord{"date": "not-a-date"}, nil, nil)
	require.Equal(t, domain.DefaultDataType, rec.DataType)
	_, err := time.Parse(domain.DateFormat, rec.Date)
	assert.NoError(t, err)
}
