// Package googleads implements the Google Ads platform integration.
// It authenticates with OAuth2 refresh tokens and pulls campaign
// reports through the searchStream endpoint.
package googleads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
	"github.com/metryx-io/metryx/internal/logger"
)

// PlatformID is the stable platform identifier.
const PlatformID = "google_ads"

const (
	apiBase  = "https://googleads.googleapis.com/v16"
	tokenURL = "https://oauth2.googleapis.com/token"

	// requestsPerSecond throttles API calls proactively; Google Ads
	// enforces per-developer-token operation quotas.
	requestsPerSecond = 2

	requestTimeout = 30 * time.Second
)

// Ensure Integration implements the interface.
var _ driven.Integration = (*Integration)(nil)

// Integration extracts campaign reports from the Google Ads API.
type Integration struct {
	creds      domain.CredentialPayload
	cfg        domain.ExtractionConfig
	httpClient *http.Client
	tokens     oauth2.TokenSource
	limiter    *rate.Limiter
}

// New creates a Google Ads integration from a decrypted credential
// payload. Construction only fails on programmer error (missing
// payload); bad secrets surface later through ValidateCredentials.
func New(creds domain.CredentialPayload, cfg domain.ExtractionConfig) (*Integration, error) {
	if creds == nil {
		return nil, fmt.Errorf("google_ads: %w: nil credential payload", domain.ErrInvalidInput)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     creds["client_id"],
		ClientSecret: creds["client_secret"],
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}
	tokens := oauthCfg.TokenSource(context.Background(), &oauth2.Token{
		RefreshToken: creds["refresh_token"],
	})

	return &Integration{
		creds:      creds,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
		tokens:     tokens,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}, nil
}

// PlatformName returns the stable platform identifier.
func (g *Integration) PlatformName() string {
	return PlatformID
}

// ValidateCredentials performs a live round trip: refresh an access
// token, then hit the customer endpoint with the developer token.
// Returns false on any failure.
func (g *Integration) ValidateCredentials(ctx context.Context) bool {
	for _, field := range []string{"client_id", "client_secret", "refresh_token", "developer_token"} {
		if g.creds[field] == "" {
			logger.Debug("google_ads: missing credential field %s", field)
			return false
		}
	}

	token, err := g.tokens.Token()
	if err != nil {
		logger.Debug("google_ads: token refresh failed: %v", err)
		return false
	}

	customer := g.creds["customer_id"]
	if customer == "" {
		customer = "customers"
	} else {
		customer = "customers/" + customer
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+"/"+customer, nil)
	if err != nil {
		return false
	}
	g.authorize(req, token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		logger.Debug("google_ads: validation request failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// AvailableMetrics advertises the supported Google Ads metrics.
func (g *Integration) AvailableMetrics() []string {
	return []string{
		"impressions", "clicks", "cost", "conversions", "revenue",
		"ctr", "cpc", "cpm", "search_impression_share",
		"quality_score", "view_through_conversions",
	}
}

// AvailableDimensions advertises the supported Google Ads dimensions.
func (g *Integration) AvailableDimensions() []string {
	return []string{
		"date", "campaign_name", "ad_group_name", "keyword_text",
		"device", "geo_target_city", "geo_target_region",
		"age_range", "gender", "ad_network_type",
	}
}

// AccountInfo returns basic account detail for display.
func (g *Integration) AccountInfo(ctx context.Context) map[string]any {
	status := "error"
	if g.ValidateCredentials(ctx) {
		status = "connected"
	}
	return map[string]any{
		"platform":    PlatformID,
		"status":      status,
		"customer_id": g.creds["customer_id"],
	}
}

// ExtractData pulls one record per (campaign, date) via searchStream.
// A degenerate range yields an empty slice. Errors are wrapped with
// platform context and returned without retry.
func (g *Integration) ExtractData(ctx context.Context, start, end time.Time, metrics, dimensions []string, filters map[string]any) ([]domain.RawRecord, error) {
	if start.After(end) {
		return nil, nil
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("google_ads API error: %w", err)
	}

	token, err := g.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("google_ads API error: token refresh: %w", err)
	}

	query := buildQuery(start, end, metrics, dimensions)
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("google_ads API error: encoding query: %w", err)
	}

	url := fmt.Sprintf("%s/customers/%s/googleAds:searchStream", apiBase, g.creds["customer_id"])
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("google_ads API error: %w", err)
	}
	g.authorize(req, token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google_ads API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("google_ads API error: status %d: %s", resp.StatusCode, detail)
	}

	return decodeStream(resp.Body)
}

func (g *Integration) authorize(req *http.Request, token *oauth2.Token) {
	token.SetAuthHeader(req)
	req.Header.Set("developer-token", g.creds["developer_token"])
}

// gaqlFields maps canonical metric names to GAQL selectors.
var gaqlFields = map[string]string{
	"impressions":              "metrics.impressions",
	"clicks":                   "metrics.clicks",
	"cost":                     "metrics.cost_micros",
	"conversions":              "metrics.conversions",
	"revenue":                  "metrics.conversions_value",
	"ctr":                      "metrics.ctr",
	"cpc":                      "metrics.average_cpc",
	"cpm":                      "metrics.average_cpm",
	"view_through_conversions": "metrics.view_through_conversions",
}

// buildQuery assembles the GAQL report query for the requested names.
func buildQuery(start, end time.Time, metrics, dimensions []string) string {
	selectors := []string{"campaign.name", "segments.date"}
	for _, m := range metrics {
		if field, ok := gaqlFields[m]; ok {
			selectors = append(selectors, field)
		}
	}
	for _, d := range dimensions {
		switch d {
		case "device":
			selectors = append(selectors, "segments.device")
		case "ad_network_type":
			selectors = append(selectors, "segments.ad_network_type")
		}
	}

	return fmt.Sprintf(
		"SELECT %s FROM campaign WHERE segments.date BETWEEN '%s' AND '%s'",
		strings.Join(selectors, ", "),
		start.Format(domain.DateFormat),
		end.Format(domain.DateFormat),
	)
}

// streamChunk is one element of the searchStream response array.
type streamChunk struct {
	Results []struct {
		Campaign struct {
			Name string `json:"name"`
		} `json:"campaign"`
		Segments map[string]any `json:"segments"`
		// Metrics values follow the proto3 JSON mapping: int64 fields
		// (impressions, clicks, costMicros) arrive as strings, doubles
		// as numbers.
		Metrics map[string]any `json:"metrics"`
	} `json:"results"`
}

// responseFields maps API response keys back to canonical names.
// The response uses camelCase while our canon is snake_case.
var responseFields = map[string]string{
	"costMicros":             "cost",
	"conversionsValue":       "revenue",
	"averageCpc":             "cpc",
	"averageCpm":             "cpm",
	"viewThroughConversions": "view_through_conversions",
	"adNetworkType":          "ad_network_type",
}

// microsFields are reported in millionths of the account currency.
var microsFields = map[string]bool{
	"costMicros": true,
	"averageCpc": true,
	"averageCpm": true,
}

// metricValue coerces a proto3 JSON metric value to a float64 and
// rescales Google's units to the canonical ones: micros fields to
// currency units, ctr from a fraction to a percentage.
func metricValue(name string, raw any) (float64, bool) {
	var value float64
	switch n := raw.(type) {
	case float64:
		value = n
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		value = f
	default:
		return 0, false
	}

	switch {
	case microsFields[name]:
		value /= 1e6
	case name == "ctr":
		value *= 100
	}
	return value, true
}

// decodeStream flattens the searchStream response into raw records.
// Units are rescaled so downstream derived metrics work on comparable
// values across platforms.
func decodeStream(r io.Reader) ([]domain.RawRecord, error) {
	var chunks []streamChunk
	if err := json.NewDecoder(r).Decode(&chunks); err != nil {
		return nil, fmt.Errorf("google_ads API error: decoding response: %w", err)
	}

	var records []domain.RawRecord
	for _, chunk := range chunks {
		for _, res := range chunk.Results {
			record := domain.RawRecord{
				domain.FieldDataType: "campaign",
				"campaign_name":      res.Campaign.Name,
			}
			if date, ok := res.Segments["date"].(string); ok {
				record[domain.FieldDate] = date
			}
			for name, raw := range res.Metrics {
				value, ok := metricValue(name, raw)
				if !ok {
					continue
				}
				canon, ok := responseFields[name]
				if !ok {
					canon = name
				}
				record[canon] = value
			}
			for name, value := range res.Segments {
				if name == "date" {
					continue
				}
				if canon, ok := responseFields[name]; ok {
					name = canon
				}
				record[name] = value
			}
			records = append(records, record)
		}
	}
	return records, nil
}
