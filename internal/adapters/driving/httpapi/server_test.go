package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metryx-io/metryx/internal/adapters/driven/storage/memory"
	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/services"
	"github.com/metryx-io/metryx/internal/integrations"
)

type jsonCipher struct{}

func (jsonCipher) Encrypt(p domain.CredentialPayload) ([]byte, error) { return json.Marshal(p) }
func (jsonCipher) Decrypt(b []byte) (domain.CredentialPayload, error) {
	var p domain.CredentialPayload
	err := json.Unmarshal(b, &p)
	return p, err
}

type env struct {
	server   *Server
	webhooks *memory.WebhookStore
	sources  *memory.SourceStore
	handler  http.Handler
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	projects := memory.NewProjectStore()
	sources := memory.NewSourceStore()
	creds := memory.NewCredentialStore()
	jobs := memory.NewJobStore()
	data := memory.NewDataStore(jobs)
	webhooks := memory.NewWebhookStore()

	registry := services.NewPlatformRegistry(integrations.NewFactory())
	extraction := services.NewExtractionService(projects, sources, creds, jobs, data, jsonCipher{}, registry)

	require.NoError(t, projects.Save(ctx, domain.Project{ID: "proj-1", Name: "Acme", Active: true, CreatedAt: now}))
	encrypted, err := jsonCipher{}.Encrypt(domain.CredentialPayload{"api_key": "k"})
	require.NoError(t, err)
	require.NoError(t, creds.Save(ctx, domain.Credential{
		ID: "cred-1", ProjectID: "proj-1", Platform: "metricool",
		Kind: domain.CredentialAPIKey, Encrypted: encrypted, Active: true, CreatedAt: now,
	}))
	require.NoError(t, sources.Save(ctx, domain.DataSource{
		ID: "src-1", ProjectID: "proj-1", CredentialID: "cred-1",
		Platform: "metricool", Name: "Metricool", Active: true,
		Extraction: domain.ExtractionConfig{
			Metrics:    []string{"impressions", "clicks", "cost", "ctr"},
			Dimensions: []string{"date", "campaign_name"},
		},
		CreatedAt: now, UpdatedAt: now,
	}))
	data.BindProject("src-1", "proj-1")

	server := NewServer(extraction, registry, webhooks)
	return &env{server: server, webhooks: webhooks, sources: sources, handler: server.Router()}
}

func (e *env) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *env) extract(t *testing.T) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/extract/source/src-1",
		`{"start_date":"2026-01-01","end_date":"2026-01-02"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestExtractSourceEndpoint(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/extract/source/src-1",
		`{"start_date":"2026-01-01","end_date":"2026-01-02"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result domain.SourceResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 8, result.RecordsStored)
}

func TestExtractSourceRejectsBadDates(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/extract/source/src-1",
		`{"start_date":"01/01/2026","end_date":"2026-01-02"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/v1/extract/source/src-1", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractSourceFailureIsUnprocessable(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/extract/source/missing",
		`{"start_date":"2026-01-01","end_date":"2026-01-02"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found")
}

func TestStatusEndpoint(t *testing.T) {
	e := newEnv(t)
	e.extract(t)

	rec := e.do(t, http.MethodGet, "/api/v1/projects/proj-1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status domain.ProjectStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Len(t, status.Sources, 1)
	assert.Equal(t, string(domain.JobCompleted), status.Sources[0].Status)

	rec = e.do(t, http.MethodGet, "/api/v1/projects/nope/status", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDataEndpoint(t *testing.T) {
	e := newEnv(t)
	e.extract(t)

	rec := e.do(t, http.MethodGet, "/api/v1/data?data_source_id=src-1&limit=3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count   int              `json:"count"`
		Records []map[string]any `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)
	require.NotEmpty(t, resp.Records)
	assert.Contains(t, resp.Records[0], "_metadata")

	rec = e.do(t, http.MethodGet, "/api/v1/data?limit=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlatformsEndpoint(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/v1/platforms", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "google_ads")
	assert.Contains(t, rec.Body.String(), "required_fields")
}

func saveHook(t *testing.T, e *env, hook domain.WebhookConfig) {
	t.Helper()
	if hook.Key == "" {
		hook.Key = domain.NewWebhookKey()
	}
	require.NoError(t, e.webhooks.Save(context.Background(), hook))
}

func TestWebhookServesData(t *testing.T) {
	e := newEnv(t)
	e.extract(t)

	key := domain.NewWebhookKey()
	saveHook(t, e, domain.WebhookConfig{
		ID: "hook-1", ProjectID: "proj-1", Name: "reporting",
		Key: key, Active: true, Format: domain.WebhookFormatJSON,
	})

	rec := e.do(t, http.MethodGet, "/webhook/v1/"+key+"/data", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":8`)
}

func TestWebhookUnknownKey(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/webhook/v1/nonexistent/data", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebhookExpiredAndDisabled(t *testing.T) {
	e := newEnv(t)
	past := time.Now().UTC().Add(-time.Hour)

	expiredKey := domain.NewWebhookKey()
	saveHook(t, e, domain.WebhookConfig{
		ID: "hook-1", ProjectID: "proj-1", Key: expiredKey,
		Active: true, ExpiresAt: &past, Format: domain.WebhookFormatJSON,
	})
	rec := e.do(t, http.MethodGet, "/webhook/v1/"+expiredKey+"/data", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	disabledKey := domain.NewWebhookKey()
	saveHook(t, e, domain.WebhookConfig{
		ID: "hook-2", ProjectID: "proj-1", Key: disabledKey,
		Active: false, Format: domain.WebhookFormatJSON,
	})
	rec = e.do(t, http.MethodGet, "/webhook/v1/"+disabledKey+"/data", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWebhookSourceAllowList(t *testing.T) {
	e := newEnv(t)
	e.extract(t)

	key := domain.NewWebhookKey()
	saveHook(t, e, domain.WebhookConfig{
		ID: "hook-1", ProjectID: "proj-1", Key: key, Active: true,
		AllowedSources: []string{"src-other"}, Format: domain.WebhookFormatJSON,
	})

	// Explicitly requesting a disallowed source is rejected.
	rec := e.do(t, http.MethodGet, "/webhook/v1/"+key+"/data?data_source_id=src-1", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// An unscoped request silently drops rows outside the allow list.
	rec = e.do(t, http.MethodGet, "/webhook/v1/"+key+"/data", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":0`)
}

func TestWebhookRateLimit(t *testing.T) {
	e := newEnv(t)
	e.extract(t)

	key := domain.NewWebhookKey()
	saveHook(t, e, domain.WebhookConfig{
		ID: "hook-1", ProjectID: "proj-1", Key: key, Active: true,
		RateLimitPerHour: 10, Format: domain.WebhookFormatJSON,
	})

	// Cap of 10/hour allows a burst of 1, so the second immediate
	// request must be rejected.
	rec := e.do(t, http.MethodGet, "/webhook/v1/"+key+"/data", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(t, http.MethodGet, "/webhook/v1/"+key+"/data", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestWebhookCSVFormat(t *testing.T) {
	e := newEnv(t)
	e.extract(t)

	key := domain.NewWebhookKey()
	saveHook(t, e, domain.WebhookConfig{
		ID: "hook-1", ProjectID: "proj-1", Key: key, Active: true,
		Format: domain.WebhookFormatCSV,
	})

	rec := e.do(t, http.MethodGet, "/webhook/v1/"+key+"/data", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Greater(t, len(lines), 1)
	assert.Contains(t, lines[0], "data_source_id")
	assert.Contains(t, lines[0], "clicks")
}
