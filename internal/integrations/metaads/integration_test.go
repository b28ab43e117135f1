package metaads

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metryx-io/metryx/internal/core/domain"
)

func testCreds() domain.CredentialPayload {
	return domain.CredentialPayload{
		"access_token":  "token",
		"ad_account_id": "123456",
	}
}

func day(s string) time.Time {
	d, _ := time.Parse(domain.DateFormat, s)
	return d
}

func TestNew_NilPayload(t *testing.T) {
	_, err := New(nil, domain.ExtractionConfig{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPlatformName(t *testing.T) {
	m, err := New(testCreds(), domain.ExtractionConfig{})
	require.NoError(t, err)
	assert.Equal(t, "facebook_ads", m.PlatformName())
}

func TestValidateCredentials_MissingFields(t *testing.T) {
	m, err := New(domain.CredentialPayload{"access_token": "token"}, domain.ExtractionConfig{})
	require.NoError(t, err)
	assert.False(t, m.ValidateCredentials(context.Background()))
}

func TestExtractData_DegenerateRange(t *testing.T) {
	m, err := New(testCreds(), domain.ExtractionConfig{})
	require.NoError(t, err)

	records, extractErr := m.ExtractData(context.Background(),
		day("2026-01-07"), day("2026-01-01"), []string{"clicks"}, []string{"date"}, nil)
	assert.NoError(t, extractErr)
	assert.Empty(t, records)
}

func TestAccountPath(t *testing.T) {
	m, err := New(testCreds(), domain.ExtractionConfig{})
	require.NoError(t, err)
	assert.Equal(t, "act_123456", m.accountPath())

	prefixed, err := New(domain.CredentialPayload{
		"access_token": "token", "ad_account_id": "act_99",
	}, domain.ExtractionConfig{})
	require.NoError(t, err)
	assert.Equal(t, "act_99", prefixed.accountPath())
}

func TestInsightsURL(t *testing.T) {
	m, err := New(testCreds(), domain.ExtractionConfig{})
	require.NoError(t, err)

	raw := m.insightsURL(day("2026-01-01"), day("2026-01-07"),
		[]string{"impressions", "cost", "conversions"},
		[]string{"date", "campaign_name", "age", "country"})

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Contains(t, u.Path, "act_123456/insights")

	q := u.Query()
	assert.Equal(t, "campaign", q.Get("level"))
	assert.Equal(t, "1", q.Get("time_increment"))
	assert.Equal(t, "campaign_name,impressions,spend,actions", q.Get("fields"))
	assert.Equal(t, "age,country", q.Get("breakdowns"))
	assert.Equal(t, `{"since":"2026-01-01","until":"2026-01-07"}`, q.Get("time_range"))
}

func TestNormalizeRow(t *testing.T) {
	row := map[string]any{
		"campaign_name": "Holiday Special",
		"date_start":    "2026-01-03",
		"date_stop":     "2026-01-03",
		"impressions":   "18250",
		"clicks":        "411",
		"spend":         "96.41",
		"actions": []any{
			map[string]any{"action_type": "purchase", "value": "7"},
			map[string]any{"action_type": "lead", "value": "3"},
		},
		"action_values": []any{
			map[string]any{"action_type": "purchase", "value": "412.50"},
		},
	}

	rec := normalizeRow(row)

	assert.Equal(t, "campaign", rec[domain.FieldDataType])
	assert.Equal(t, "2026-01-03", rec[domain.FieldDate])
	assert.Equal(t, "Holiday Special", rec["campaign_name"])
	assert.Equal(t, 18250.0, rec["impressions"])
	assert.Equal(t, 411.0, rec["clicks"])
	assert.Equal(t, 96.41, rec["cost"])
	assert.Equal(t, 10.0, rec["conversions"])
	assert.Equal(t, 412.5, rec["revenue"])
	assert.NotContains(t, rec, "date_stop")
}

func TestSumActions(t *testing.T) {
	assert.Equal(t, 0.0, sumActions(nil))
	assert.Equal(t, 0.0, sumActions("not a list"))
	assert.Equal(t, 5.0, sumActions([]any{
		map[string]any{"action_type": "purchase", "value": "2"},
		map[string]any{"action_type": "lead", "value": 3.0},
		"garbage entry",
	}))
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 12.5, parseNumber("12.5"))
	assert.Equal(t, "MOBILE", parseNumber("MOBILE"))
	assert.Equal(t, 7.0, parseNumber(7.0))
}

func TestFetchPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/page2" {
			fmt.Fprint(w, `{"data": [{"campaign_name": "B", "date_start": "2026-01-02", "spend": "2.00"}]}`)
			return
		}
		fmt.Fprintf(w, `{"data": [{"campaign_name": "A", "date_start": "2026-01-01", "spend": "1.00"}],
			"paging": {"next": "%s/page2"}}`, "http://"+r.Host)
	}))
	defer server.Close()

	m, err := New(testCreds(), domain.ExtractionConfig{})
	require.NoError(t, err)
	ctx := context.Background()

	page, err := m.fetchPage(ctx, server.URL)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "A", page.Data[0]["campaign_name"])
	require.NotEmpty(t, page.Paging.Next)

	page2, err := m.fetchPage(ctx, page.Paging.Next)
	require.NoError(t, err)
	require.Len(t, page2.Data, 1)
	assert.Equal(t, "B", page2.Data[0]["campaign_name"])
	assert.Empty(t, page2.Paging.Next)
}

func TestFetchPage_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"message": "Invalid OAuth access token"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	m, err := New(testCreds(), domain.ExtractionConfig{})
	require.NoError(t, err)

	_, err = m.fetchPage(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "facebook_ads API error: status 400")
}
