package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metryx-io/metryx/internal/core/domain"
)

func resetExtractFlags() {
	flagStart, flagEnd = "", ""
	flagForce, flagBackfill = false, false
}

func TestExtractRange_Defaults(t *testing.T) {
	resetExtractFlags()

	start, end, err := extractRange()
	require.NoError(t, err)

	assert.Equal(t, 7*24*time.Hour, end.Sub(start))
	assert.True(t, end.Before(time.Now().UTC().Add(time.Second)))
}

func TestExtractRange_ExplicitDates(t *testing.T) {
	resetExtractFlags()
	flagStart, flagEnd = "2024-01-01", "2024-01-07"
	defer resetExtractFlags()

	start, end, err := extractRange()
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01", start.Format(domain.DateFormat))
	assert.Equal(t, "2024-01-07", end.Format(domain.DateFormat))
}

func TestExtractRange_InvalidDate(t *testing.T) {
	resetExtractFlags()
	flagStart = "01/01/2024"
	defer resetExtractFlags()

	_, _, err := extractRange()
	assert.ErrorContains(t, err, "invalid --start")
}

func TestExtractOptions_BackfillImpliesForce(t *testing.T) {
	resetExtractFlags()
	flagBackfill = true
	defer resetExtractFlags()

	opts := extractOptions()
	assert.True(t, opts.Force)
	assert.Equal(t, domain.JobBackfill, opts.Kind)
}

func TestExtractOptions_ManualByDefault(t *testing.T) {
	resetExtractFlags()

	opts := extractOptions()
	assert.False(t, opts.Force)
	assert.Equal(t, domain.JobManual, opts.Kind)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"impressions", "clicks"}, splitList("impressions, clicks"))
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"date"}, splitList("date,,"))
}
