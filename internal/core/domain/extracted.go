package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// ExtractedRecord is one normalized, deduplicated unit of platform data
// for a specific (data source, data type, calendar date). Rows are never
// mutated after creation; corrections arrive as new rows with a new
// fingerprint.
//
// Invariant: (DataSourceID, DataType, Date, Fingerprint) is unique.
// The storage engine enforces this, so concurrent duplicate inserts
// resolve to a single row.
type ExtractedRecord struct {
	// ID is the unique identifier for the row.
	ID string

	// DataSourceID is the owning data source.
	DataSourceID string

	// JobID is the extraction job that produced this row.
	JobID string

	// DataType is the record granularity (campaign, ad_group, keyword, ...).
	DataType string

	// Date is the calendar date in DateFormat.
	Date string

	// Raw is the record as received from the platform.
	Raw RawRecord

	// Processed is the canonical payload (dimensions + metrics).
	Processed map[string]any

	// Metrics holds the computed metric values for quick access.
	Metrics map[string]float64

	// Fingerprint is the content hash used as the deduplication key.
	Fingerprint string

	// CreatedAt is when the row was stored.
	CreatedAt time.Time
}

// Fingerprint computes the 64-hex-char deduplication digest for a
// record: SHA-256 over dataSourceID, dataType, date and the processed
// payload serialized with sort-stable keys. encoding/json marshals map
// keys in sorted order, so identical logical content always hashes
// identically regardless of insertion order.
func Fingerprint(dataSourceID, dataType, date string, processed map[string]any) string {
	payload, err := json.Marshal(processed)
	if err != nil {
		// Maps of JSON-safe values cannot fail to marshal; anything else
		// is a programmer error upstream. Hash the error text so the
		// digest is still stable for the broken input.
		payload = []byte(err.Error())
	}
	sum := sha256.Sum256(fmt.Appendf(nil, "%s:%s:%s:%s", dataSourceID, dataType, date, payload))
	return hex.EncodeToString(sum[:])
}

// NewExtractedRecord builds a storable row from a normalized record,
// computing its fingerprint.
func NewExtractedRecord(id, dataSourceID, jobID string, raw RawRecord, rec *NormalizedRecord) ExtractedRecord {
	processed := rec.Processed()
	return ExtractedRecord{
		ID:           id,
		DataSourceID: dataSourceID,
		JobID:        jobID,
		DataType:     rec.DataType,
		Date:         rec.Date,
		Raw:          raw,
		Processed:    processed,
		Metrics:      rec.Metrics,
		Fingerprint:  Fingerprint(dataSourceID, rec.DataType, rec.Date, processed),
		CreatedAt:    time.Now().UTC(),
	}
}
