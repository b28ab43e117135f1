// Package sqlite provides the SQLite-backed implementations of the
// driven store ports.
//
// The adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. One Store owns
// the connection and hands out per-entity stores sharing it:
//
//   - ProjectStore: project persistence
//   - CredentialStore: encrypted credential persistence
//   - SourceStore: data source configuration persistence
//   - JobStore: extraction job persistence
//   - DataStore: deduplicated extracted rows
//   - WebhookStore: webhook configuration persistence
//
// # Deduplication
//
// DataStore relies on the unique constraint over (data_source_id,
// data_type, data_date, fingerprint): batch inserts use ON CONFLICT DO
// NOTHING, so re-extracting unchanged data is a no-op and concurrent
// duplicate inserts resolve to a single row.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory and applied on Open.
package sqlite
