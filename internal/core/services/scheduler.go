package services

import (
	"context"
	"time"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
	"github.com/metryx-io/metryx/internal/core/ports/driving"
	"github.com/metryx-io/metryx/internal/logger"
)

const (
	// defaultPollInterval is how often the scheduler checks for due
	// sources.
	defaultPollInterval = time.Minute

	// defaultLookback is the extraction window for scheduled runs:
	// platforms restate recent days, so each run re-covers a small
	// trailing window and lets deduplication absorb the overlap.
	defaultLookback = 24 * time.Hour
)

// Scheduler triggers extraction for sources whose next run time has
// arrived. It owns no schedule state itself; due-ness lives on the
// sources and is advanced by the extraction service on completion.
type Scheduler struct {
	sources      driven.SourceStore
	extraction   driving.ExtractionService
	pollInterval time.Duration
	lookback     time.Duration
	now          func() time.Time
}

// SchedulerOption customises a Scheduler.
type SchedulerOption func(*Scheduler)

// WithPollInterval overrides how often due sources are checked.
func WithPollInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.pollInterval = d }
}

// WithLookback overrides the trailing extraction window.
func WithLookback(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.lookback = d }
}

// NewScheduler creates a scheduler over the given source store and
// extraction service.
func NewScheduler(sources driven.SourceStore, extraction driving.ExtractionService, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		sources:      sources,
		extraction:   extraction,
		pollInterval: defaultPollInterval,
		lookback:     defaultLookback,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run polls for due sources until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	logger.Info("scheduler started, polling every %s", s.pollInterval)
	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.RunDue(ctx)
		}
	}
}

// RunDue extracts every source whose next run time is at or before
// now. Failures are logged and isolated per source; the terminal job
// still advances the source off the due list via its status update.
func (s *Scheduler) RunDue(ctx context.Context) {
	now := s.now().UTC()
	due, err := s.sources.ListDue(ctx, now)
	if err != nil {
		logger.Error("listing due sources: %v", err)
		return
	}

	for _, source := range due {
		start := now.Add(-s.lookback)
		result := s.extraction.ExtractForSource(ctx, source.ID, start, now,
			driving.ExtractOptions{Kind: domain.JobScheduled})
		switch {
		case !result.Success:
			logger.Warn("scheduled extraction failed for %s: %s", source.Name, result.Error)
			s.advanceSource(ctx, source)
		case result.Skipped:
			// The dedup short-circuit ran no job, so nothing else
			// moved the source off the due list.
			logger.Debug("scheduled run skipped for %s: %s", source.Name, result.Message)
			s.advanceSource(ctx, source)
		}
	}
}

// advanceSource pushes a source's next run one interval out when the
// run itself did not (failure or dedup skip), so the source does not
// stay due and run hot on every poll.
func (s *Scheduler) advanceSource(ctx context.Context, source domain.DataSource) {
	interval := source.Schedule.Interval()
	if interval == 0 {
		return
	}
	next := s.now().UTC().Add(interval)
	source.NextExtractionAt = &next
	source.UpdatedAt = s.now().UTC()
	if err := s.sources.Save(ctx, source); err != nil {
		logger.Error("advancing source %s: %v", source.ID, err)
	}
}
