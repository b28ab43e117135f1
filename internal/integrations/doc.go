// Package integrations contains the per-platform capability
// implementations and the factory that builds them. Each platform
// package implements driven.Integration; the factory maps platform
// identifiers to builders so new platforms register without touching
// the orchestrator.
package integrations
