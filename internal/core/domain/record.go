package domain

import "time"

// DateFormat is the calendar-date layout used throughout the pipeline.
const DateFormat = "2006-01-02"

// Reserved raw record keys set by integrations.
const (
	// FieldDate carries the record's calendar date in DateFormat.
	FieldDate = "date"

	// FieldDataType carries the record granularity (campaign, ad_group, ...).
	FieldDataType = "data_type"
)

// DefaultDataType is assumed when a platform does not tag record granularity.
const DefaultDataType = "campaign"

// RawRecord is one record as received from a platform API: a flat
// mapping of field name to value, before normalization.
type RawRecord map[string]any

// NormalizedRecord is the canonical record shape produced by the
// normalizer: platform identity plus the requested dimensions and
// metrics that were present in the raw record.
type NormalizedRecord struct {
	// Platform is the stable platform identifier.
	Platform string

	// DataType is the record granularity (campaign, ad_group, keyword, ...).
	DataType string

	// Date is the calendar date in DateFormat.
	Date string

	// ExtractedAt is when normalization happened.
	ExtractedAt time.Time

	// Dimensions holds the requested dimension values found in the raw record.
	Dimensions map[string]any

	// Metrics holds the requested metric values, including derived ratios.
	Metrics map[string]float64
}

// Processed returns the deterministic payload that feeds the content
// fingerprint. Volatile fields (ExtractedAt) are deliberately excluded
// so re-extracting unchanged data hashes identically.
func (r *NormalizedRecord) Processed() map[string]any {
	dims := make(map[string]any, len(r.Dimensions))
	for k, v := range r.Dimensions {
		dims[k] = v
	}
	metrics := make(map[string]any, len(r.Metrics))
	for k, v := range r.Metrics {
		metrics[k] = v
	}
	return map[string]any{
		"dimensions": dims,
		"metrics":    metrics,
	}
}
