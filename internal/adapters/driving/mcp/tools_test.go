package mcp

import (
	"context"
	"encoding/json"
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

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	projects := memory.NewProjectStore()
	sources := memory.NewSourceStore()
	creds := memory.NewCredentialStore()
	jobs := memory.NewJobStore()
	data := memory.NewDataStore(jobs)

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
			Metrics:    []string{"impressions", "clicks"},
			Dimensions: []string{"date", "campaign_name"},
		},
		CreatedAt: now, UpdatedAt: now,
	}))
	data.BindProject("src-1", "proj-1")

	server, err := NewServer(&Ports{Extraction: extraction, Registry: registry})
	require.NoError(t, err)
	return server
}

func TestNewServerRequiresPorts(t *testing.T) {
	_, err := NewServer(&Ports{})
	assert.Error(t, err)
}

func TestTriggerExtractionTool(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.handleExtract(context.Background(), nil, ExtractInput{
		DataSourceID: "src-1",
		StartDate:    "2026-01-01",
		EndDate:      "2026-01-02",
	})
	require.NoError(t, err)
	assert.True(t, out.Success, out.Error)
	assert.Equal(t, 8, out.RecordsStored)
}

func TestTriggerExtractionRequiresTarget(t *testing.T) {
	s := newTestServer(t)

	_, _, err := s.handleExtract(context.Background(), nil, ExtractInput{
		StartDate: "2026-01-01",
		EndDate:   "2026-01-02",
	})
	assert.Error(t, err)

	_, _, err = s.handleExtract(context.Background(), nil, ExtractInput{
		DataSourceID: "src-1",
		StartDate:    "not-a-date",
		EndDate:      "2026-01-02",
	})
	assert.Error(t, err)
}

func TestStatusAndQueryTools(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, extractOut, err := s.handleExtract(ctx, nil, ExtractInput{
		ProjectID: "proj-1",
		StartDate: "2026-01-01",
		EndDate:   "2026-01-01",
	})
	require.NoError(t, err)
	require.True(t, extractOut.Success)

	_, status, err := s.handleStatus(ctx, nil, StatusInput{ProjectID: "proj-1"})
	require.NoError(t, err)
	require.Len(t, status.Sources, 1)
	assert.Equal(t, string(domain.JobCompleted), status.Sources[0].Status)

	_, query, err := s.handleQuery(ctx, nil, QueryInput{ProjectID: "proj-1", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, query.Count)
}

func TestListPlatformsTool(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.handlePlatforms(context.Background(), nil, struct{}{})
	require.NoError(t, err)
	require.NotEmpty(t, out.Platforms)

	names := make([]string, len(out.Platforms))
	for i, p := range out.Platforms {
		names[i] = p.Platform
	}
	assert.Contains(t, names, "google_ads")
}
