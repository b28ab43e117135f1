// Package metaads implements the Meta (Facebook) Ads platform
// integration against the Graph API insights endpoint.
package metaads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
	"github.com/metryx-io/metryx/internal/logger"
)

// PlatformID is the stable platform identifier.
const PlatformID = "facebook_ads"

const (
	apiBase = "https://graph.facebook.com/v18.0"

	// Graph API rate limits are account-scoped; one request per
	// second keeps sustained extraction well under the ceiling.
	requestsPerSecond = 1

	requestTimeout = 30 * time.Second
)

var _ driven.Integration = (*Integration)(nil)

// Integration extracts campaign-level insights from the Meta Ads API.
type Integration struct {
	creds      domain.CredentialPayload
	cfg        domain.ExtractionConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New creates a Meta Ads integration from a decrypted credential
// payload.
func New(creds domain.CredentialPayload, cfg domain.ExtractionConfig) (*Integration, error) {
	if creds == nil {
		return nil, fmt.Errorf("facebook_ads: %w: nil credential payload", domain.ErrInvalidInput)
	}
	return &Integration{
		creds:      creds,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}, nil
}

// PlatformName returns the stable platform identifier.
func (m *Integration) PlatformName() string {
	return PlatformID
}

// ValidateCredentials checks the access token against the ad account
// endpoint. Returns false on any failure.
func (m *Integration) ValidateCredentials(ctx context.Context) bool {
	if m.creds["access_token"] == "" || m.creds["ad_account_id"] == "" {
		return false
	}

	q := url.Values{}
	q.Set("access_token", m.creds["access_token"])
	q.Set("fields", "id,name,account_status")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/%s?%s", apiBase, m.accountPath(), q.Encode()), nil)
	if err != nil {
		return false
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		logger.Debug("facebook_ads: validation request failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// AvailableMetrics advertises the supported Meta Ads metrics.
func (m *Integration) AvailableMetrics() []string {
	return []string{
		"impressions", "clicks", "cost", "conversions", "revenue",
		"ctr", "cpc", "cpm", "reach", "frequency",
		"video_views", "engagement",
	}
}

// AvailableDimensions advertises the supported Meta Ads dimensions.
func (m *Integration) AvailableDimensions() []string {
	return []string{
		"date", "campaign_name", "adset_name", "ad_name",
		"age", "gender", "country", "region",
		"placement", "device_platform", "publisher_platform",
	}
}

// AccountInfo returns basic account detail for display.
func (m *Integration) AccountInfo(ctx context.Context) map[string]any {
	status := "error"
	if m.ValidateCredentials(ctx) {
		status = "connected"
	}
	return map[string]any{
		"platform":      PlatformID,
		"status":        status,
		"ad_account_id": m.creds["ad_account_id"],
	}
}

// insightsPage is one page of the Graph API insights response.
type insightsPage struct {
	Data   []map[string]any `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// ExtractData pulls daily campaign insights for the range, following
// pagination until exhausted. A degenerate range yields an empty
// slice.
func (m *Integration) ExtractData(ctx context.Context, start, end time.Time, metrics, dimensions []string, filters map[string]any) ([]domain.RawRecord, error) {
	if start.After(end) {
		return nil, nil
	}

	next := m.insightsURL(start, end, metrics, dimensions)
	var records []domain.RawRecord
	for next != "" {
		if err := m.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("facebook_ads API error: %w", err)
		}

		page, err := m.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		for _, row := range page.Data {
			records = append(records, normalizeRow(row))
		}
		next = page.Paging.Next
	}
	return records, nil
}

func (m *Integration) fetchPage(ctx context.Context, pageURL string) (*insightsPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("facebook_ads API error: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("facebook_ads API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("facebook_ads API error: status %d: %s", resp.StatusCode, detail)
	}

	var page insightsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("facebook_ads API error: decoding response: %w", err)
	}
	return &page, nil
}

// graphFields maps canonical metric names to Graph API field names.
var graphFields = map[string]string{
	"cost":        "spend",
	"revenue":     "action_values",
	"conversions": "actions",
	"engagement":  "inline_post_engagement",
	"video_views": "video_play_actions",
}

// graphBreakdowns lists dimensions served through the breakdowns
// parameter rather than as plain fields.
var graphBreakdowns = map[string]bool{
	"age": true, "gender": true, "country": true, "region": true,
	"placement": true, "device_platform": true, "publisher_platform": true,
}

func (m *Integration) insightsURL(start, end time.Time, metrics, dimensions []string) string {
	fields := []string{"campaign_name"}
	for _, name := range metrics {
		if field, ok := graphFields[name]; ok {
			fields = append(fields, field)
		} else {
			fields = append(fields, name)
		}
	}

	var breakdowns []string
	for _, d := range dimensions {
		if graphBreakdowns[d] {
			breakdowns = append(breakdowns, d)
		}
	}

	q := url.Values{}
	q.Set("access_token", m.creds["access_token"])
	q.Set("level", "campaign")
	q.Set("time_increment", "1")
	q.Set("fields", strings.Join(fields, ","))
	q.Set("time_range", fmt.Sprintf(`{"since":"%s","until":"%s"}`,
		start.Format(domain.DateFormat), end.Format(domain.DateFormat)))
	if len(breakdowns) > 0 {
		q.Set("breakdowns", strings.Join(breakdowns, ","))
	}

	return fmt.Sprintf("%s/%s/insights?%s", apiBase, m.accountPath(), q.Encode())
}

func (m *Integration) accountPath() string {
	id := m.creds["ad_account_id"]
	if strings.HasPrefix(id, "act_") {
		return id
	}
	return "act_" + id
}

// normalizeRow brings a Graph API row into canonical shape: the
// insights API keys its date as date_start, spend as strings, and
// conversions as action lists.
func normalizeRow(row map[string]any) domain.RawRecord {
	record := domain.RawRecord{domain.FieldDataType: "campaign"}
	for key, value := range row {
		switch key {
		case "date_start":
			record[domain.FieldDate] = value
		case "date_stop":
			// daily increment makes this redundant with date_start
		case "spend":
			record["cost"] = parseNumber(value)
		case "actions":
			record["conversions"] = sumActions(value)
		case "action_values":
			record["revenue"] = sumActions(value)
		case "video_play_actions":
			record["video_views"] = sumActions(value)
		case "inline_post_engagement":
			record["engagement"] = parseNumber(value)
		default:
			record[key] = parseNumber(value)
		}
	}
	return record
}

// parseNumber converts the Graph API's stringly-typed numbers; values
// that are not numeric pass through untouched.
func parseNumber(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return value
}

// sumActions totals an actions list ([{action_type, value}, ...]).
func sumActions(value any) float64 {
	list, ok := value.([]any)
	if !ok {
		return 0
	}
	var total float64
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if v, ok := parseNumber(entry["value"]).(float64); ok {
			total += v
		}
	}
	return total
}
