// Package services holds the application core: the extraction
// orchestrator, the platform registry, credential management and the
// scheduler. Services depend only on domain types and ports; adapters
// are injected at wiring time.
package services
