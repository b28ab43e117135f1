// Package driven defines the driven ports: interfaces the core depends
// on and adapters implement (platform integrations, stores, the
// credential cipher).
package driven
