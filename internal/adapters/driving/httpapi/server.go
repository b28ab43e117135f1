// Package httpapi exposes the extraction pipeline over HTTP: a JSON
// API for triggering and querying extractions, and keyed webhook URLs
// that re-expose extracted data to external consumers.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/metryx-io/metryx/internal/core/ports/driven"
	"github.com/metryx-io/metryx/internal/core/ports/driving"
)

// Server bundles the HTTP handlers over the driving ports.
type Server struct {
	extraction driving.ExtractionService
	registry   driving.PlatformRegistry
	webhooks   driven.WebhookStore
	validate   *validator.Validate
	limiters   *keyLimiters
}

// NewServer creates the HTTP surface over the given services.
func NewServer(extraction driving.ExtractionService, registry driving.PlatformRegistry, webhooks driven.WebhookStore) *Server {
	return &Server{
		extraction: extraction,
		registry:   registry,
		webhooks:   webhooks,
		validate:   validator.New(),
		limiters:   newKeyLimiters(),
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/platforms", s.handlePlatforms)
		r.Post("/extract/source/{dataSourceID}", s.handleExtractSource)
		r.Post("/extract/project/{projectID}", s.handleExtractProject)
		r.Get("/projects/{projectID}/status", s.handleStatus)
		r.Get("/data", s.handleData)
	})

	r.Get("/webhook/v1/{key}/data", s.handleWebhookData)

	return r
}
