package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metryx-io/metryx/internal/core/domain"
)

func record(id, sourceID, date string, metrics map[string]float64) domain.ExtractedRecord {
	processed := map[string]any{
		"dimensions": map[string]any{"campaign_name": "Test"},
		"metrics":    metrics,
	}
	return domain.ExtractedRecord{
		ID:           id,
		DataSourceID: sourceID,
		JobID:        "job-1",
		DataType:     "campaign",
		Date:         date,
		Processed:    processed,
		Metrics:      metrics,
		Fingerprint:  domain.Fingerprint(sourceID, "campaign", date, processed),
		CreatedAt:    time.Now().UTC(),
	}
}

func TestStoreBatchAbsorbsDuplicates(t *testing.T) {
	ctx := context.Background()
	jobs := NewJobStore()
	store := NewDataStore(jobs)

	metrics := map[string]float64{"clicks": 10}
	first := domain.ExtractionJob{ID: "job-1", DataSourceID: "src-1", Status: domain.JobRunning}
	inserted, err := store.StoreBatch(ctx, &first, []domain.ExtractedRecord{
		record("row-1", "src-1", "2026-01-01", metrics),
		record("row-2", "src-1", "2026-01-02", metrics),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
	assert.Equal(t, domain.JobCompleted, first.Status)
	assert.Equal(t, 2, first.RecordsProcessed)

	// Same content, new row IDs: identical fingerprints dedupe.
	second := domain.ExtractionJob{ID: "job-2", DataSourceID: "src-1", Status: domain.JobRunning}
	inserted, err = store.StoreBatch(ctx, &second, []domain.ExtractedRecord{
		record("row-3", "src-1", "2026-01-01", metrics),
		record("row-4", "src-1", "2026-01-03", metrics),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	rows, err := store.Query(ctx, domain.DataFilter{DataSourceID: "src-1"})
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	saved, err := jobs.Get(ctx, "job-2")
	require.NoError(t, err)
	assert.Equal(t, domain.JobCompleted, saved.Status)
	assert.Equal(t, 1, saved.RecordsProcessed)
}

func TestExistsForRange(t *testing.T) {
	ctx := context.Background()
	store := NewDataStore(NewJobStore())

	job := domain.ExtractionJob{ID: "job-1", Status: domain.JobRunning}
	_, err := store.StoreBatch(ctx, &job, []domain.ExtractedRecord{
		record("row-1", "src-1", "2026-01-15", map[string]float64{"clicks": 1}),
	})
	require.NoError(t, err)

	day := func(s string) time.Time {
		d, _ := time.Parse(domain.DateFormat, s)
		return d
	}

	exists, err := store.ExistsForRange(ctx, "src-1", day("2026-01-01"), day("2026-01-31"))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.ExistsForRange(ctx, "src-1", day("2026-02-01"), day("2026-02-28"))
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = store.ExistsForRange(ctx, "src-2", day("2026-01-01"), day("2026-01-31"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestQueryFilters(t *testing.T) {
	ctx := context.Background()
	store := NewDataStore(NewJobStore())
	store.BindProject("src-1", "proj-1")
	store.BindProject("src-2", "proj-2")

	job := domain.ExtractionJob{ID: "job-1", Status: domain.JobRunning}
	_, err := store.StoreBatch(ctx, &job, []domain.ExtractedRecord{
		record("row-1", "src-1", "2026-01-01", map[string]float64{"clicks": 1}),
		record("row-2", "src-1", "2026-01-10", map[string]float64{"clicks": 2}),
		record("row-3", "src-2", "2026-01-05", map[string]float64{"clicks": 3}),
	})
	require.NoError(t, err)

	day := func(s string) time.Time {
		d, _ := time.Parse(domain.DateFormat, s)
		return d
	}

	byProject, err := store.Query(ctx, domain.DataFilter{ProjectID: "proj-2"})
	require.NoError(t, err)
	require.Len(t, byProject, 1)
	assert.Equal(t, "row-3", byProject[0].ID)

	start, end := day("2026-01-05"), day("2026-01-31")
	byRange, err := store.Query(ctx, domain.DataFilter{DataSourceID: "src-1", Start: &start, End: &end})
	require.NoError(t, err)
	require.Len(t, byRange, 1)
	assert.Equal(t, "row-2", byRange[0].ID)

	limited, err := store.Query(ctx, domain.DataFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
