// Package mock provides a deterministic stand-in integration for
// platforms without a native API client yet, and for development and
// testing without live credentials.
package mock

import (
	"context"
	"hash/fnv"
	"math"
	"time"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
)

var _ driven.Integration = (*Integration)(nil)

// campaigns are the fixture campaign names every mock platform serves.
var campaigns = []string{
	"Summer Sale", "Brand Awareness", "Product Launch", "Holiday Special",
}

// Integration generates synthetic daily campaign records. Values are
// a pure function of (platform, date, campaign), so repeated
// extraction of the same range produces byte-identical records and
// deduplicates cleanly.
type Integration struct {
	platform       string
	creds          domain.CredentialPayload
	requiredFields []string
}

// New creates a mock integration claiming the given platform name.
func New(platform string, creds domain.CredentialPayload, requiredFields []string) *Integration {
	return &Integration{
		platform:       platform,
		creds:          creds,
		requiredFields: requiredFields,
	}
}

// PlatformName returns the platform this mock is standing in for.
func (m *Integration) PlatformName() string {
	return m.platform
}

// ValidateCredentials passes when every required field is present and
// non-empty. No network round trip is made.
func (m *Integration) ValidateCredentials(_ context.Context) bool {
	for _, field := range m.requiredFields {
		if m.creds[field] == "" {
			return false
		}
	}
	return true
}

// AvailableMetrics advertises the synthetic metric set.
func (m *Integration) AvailableMetrics() []string {
	return []string{
		"impressions", "clicks", "cost", "conversions", "revenue",
		"ctr", "cpc", "cpm", "roas",
	}
}

// AvailableDimensions advertises the synthetic dimension set.
func (m *Integration) AvailableDimensions() []string {
	return []string{"date", "campaign_name", "device", "country"}
}

// AccountInfo returns synthetic account detail.
func (m *Integration) AccountInfo(_ context.Context) map[string]any {
	return map[string]any{
		"platform":     m.platform,
		"status":       "connected",
		"account_name": "Demo Account (" + m.platform + ")",
	}
}

// ExtractData yields one record per campaign per day in the range,
// inclusive of both endpoints. A degenerate range yields an empty
// slice.
func (m *Integration) ExtractData(_ context.Context, start, end time.Time, metrics, dimensions []string, _ map[string]any) ([]domain.RawRecord, error) {
	if start.After(end) {
		return nil, nil
	}

	var records []domain.RawRecord
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		date := day.Format(domain.DateFormat)
		for _, campaign := range campaigns {
			records = append(records, m.record(date, campaign))
		}
	}
	return records, nil
}

func (m *Integration) record(date, campaign string) domain.RawRecord {
	seed := seedFor(m.platform, date, campaign)

	impressions := float64(1000 + seed%9000)
	clicks := float64(20 + seed%480)
	cost := round2(float64(10+seed%490) + float64(seed%100)/100)
	conversions := float64(1 + seed%49)
	revenue := round2(float64(50+seed%1950) + float64(seed%100)/100)

	return domain.RawRecord{
		domain.FieldDate:     date,
		domain.FieldDataType: "campaign",
		"campaign_name":      campaign,
		"impressions":        impressions,
		"clicks":             clicks,
		"cost":               cost,
		"conversions":        conversions,
		"revenue":            revenue,
	}
}

// seedFor hashes the record identity into a stable positive seed.
func seedFor(parts ...string) uint64 {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
