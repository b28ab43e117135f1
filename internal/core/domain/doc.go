// Package domain contains the core business entities and errors for
// the extraction pipeline: projects, credentials, data sources,
// extraction jobs, normalized records and deduplicated rows.
// It has no dependencies on adapters or infrastructure.
package domain
