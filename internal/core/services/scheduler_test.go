package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driving"
)

func TestRunDueExtractsDueSources(t *testing.T) {
	f := newFixture(t)
	f.seedSource(t, "src-1", "metricool")
	f.seedSource(t, "src-2", "klaviyo")
	ctx := context.Background()

	now := time.Date(2026, 4, 10, 6, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	src1, err := f.sources.Get(ctx, "src-1")
	require.NoError(t, err)
	src1.Schedule = domain.ScheduleConfig{Frequency: domain.ScheduleDaily}
	src1.NextExtractionAt = &past
	require.NoError(t, f.sources.Save(ctx, *src1))

	src2, err := f.sources.Get(ctx, "src-2")
	require.NoError(t, err)
	src2.Schedule = domain.ScheduleConfig{Frequency: domain.ScheduleDaily}
	src2.NextExtractionAt = &future
	require.NoError(t, f.sources.Save(ctx, *src2))

	sched := NewScheduler(f.sources, f.svc, WithLookback(24*time.Hour))
	sched.now = func() time.Time { return now }
	sched.RunDue(ctx)

	// src-1 was due and ran; src-2 was not.
	job, err := f.jobs.LatestBySource(ctx, "src-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobScheduled, job.Kind)
	assert.Equal(t, domain.JobCompleted, job.Status)

	_, err = f.jobs.LatestBySource(ctx, "src-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// completion advanced the schedule past now
	after, err := f.sources.Get(ctx, "src-1")
	require.NoError(t, err)
	require.NotNil(t, after.NextExtractionAt)
	assert.True(t, after.NextExtractionAt.After(now))
}

func TestRunDueAdvancesSkippedSource(t *testing.T) {
	f := newFixture(t)
	f.seedSource(t, "src-1", "metricool")
	ctx := context.Background()

	now := time.Date(2026, 4, 10, 6, 0, 0, 0, time.UTC)

	// Fill the scheduler's window so the scheduled run hits the dedup
	// short-circuit.
	first := f.svc.ExtractForSource(ctx, "src-1", now.Add(-24*time.Hour), now, driving.ExtractOptions{})
	require.True(t, first.Success, first.Error)

	past := now.Add(-time.Minute)
	src, err := f.sources.Get(ctx, "src-1")
	require.NoError(t, err)
	src.Schedule = domain.ScheduleConfig{Frequency: domain.ScheduleHourly}
	src.NextExtractionAt = &past
	require.NoError(t, f.sources.Save(ctx, *src))

	sched := NewScheduler(f.sources, f.svc, WithLookback(24*time.Hour))
	sched.now = func() time.Time { return now }
	sched.RunDue(ctx)

	// The skip ran no scheduled job, but the next run still moved one
	// interval out so the source is not re-listed on the next poll.
	job, err := f.jobs.LatestBySource(ctx, "src-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobManual, job.Kind)

	after, err := f.sources.Get(ctx, "src-1")
	require.NoError(t, err)
	require.NotNil(t, after.NextExtractionAt)
	assert.True(t, after.NextExtractionAt.After(now))

	due, err := f.sources.ListDue(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestRunDueDefersFailedSource(t *testing.T) {
	f := newFixture(t)
	f.seedSource(t, "src-1", "metricool")
	ctx := context.Background()

	now := time.Date(2026, 4, 10, 6, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)

	src, err := f.sources.Get(ctx, "src-1")
	require.NoError(t, err)
	src.Schedule = domain.ScheduleConfig{Frequency: domain.ScheduleHourly}
	src.NextExtractionAt = &past
	require.NoError(t, f.sources.Save(ctx, *src))

	// Break the source's credential so the run fails.
	cred, err := f.creds.Get(ctx, "cred-src-1")
	require.NoError(t, err)
	cred.Active = false
	require.NoError(t, f.creds.Save(ctx, *cred))

	sched := NewScheduler(f.sources, f.svc)
	sched.now = func() time.Time { return now }
	sched.RunDue(ctx)

	job, err := f.jobs.LatestBySource(ctx, "src-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobFailed, job.Status)

	// The next run moved one interval out instead of staying due.
	after, err := f.sources.Get(ctx, "src-1")
	require.NoError(t, err)
	require.NotNil(t, after.NextExtractionAt)
	assert.True(t, after.NextExtractionAt.After(now))
}
