package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driving"
)

// extractRequest is the body for both extraction endpoints.
type extractRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Force     bool   `json:"force"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePlatforms(w http.ResponseWriter, r *http.Request) {
	platforms := s.registry.Supported()
	out := make([]map[string]any, 0, len(platforms))
	for _, p := range platforms {
		req := s.registry.Requirements(p)
		out = append(out, map[string]any{
			"platform":        p,
			"auth_kind":       req.AuthKind,
			"required_fields": req.RequiredFields,
			"optional_fields": req.OptionalFields,
			"description":     req.Description,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"platforms": out})
}

func (s *Server) handleExtractSource(w http.ResponseWriter, r *http.Request) {
	start, end, force, err := s.decodeExtract(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result := s.extraction.ExtractForSource(r.Context(), chi.URLParam(r, "dataSourceID"),
		start, end, driving.ExtractOptions{Force: force, Kind: domain.JobManual})

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

func (s *Server) handleExtractProject(w http.ResponseWriter, r *http.Request) {
	start, end, force, err := s.decodeExtract(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.extraction.ExtractForProject(r.Context(), chi.URLParam(r, "projectID"),
		start, end, driving.ExtractOptions{Force: force, Kind: domain.JobManual})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.extraction.Status(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	records, err := s.extraction.Data(r.Context(), filter)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse(records))
}

func (s *Server) decodeExtract(r *http.Request) (start, end time.Time, force bool, err error) {
	var req extractRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		return start, end, false, fmt.Errorf("decoding request body: %w", err)
	}
	if err = s.validate.Struct(req); err != nil {
		return start, end, false, fmt.Errorf("invalid request: %w", err)
	}
	start, _ = time.Parse(domain.DateFormat, req.StartDate)
	end, _ = time.Parse(domain.DateFormat, req.EndDate)
	return start, end, req.Force, nil
}

func filterFromQuery(r *http.Request) (domain.DataFilter, error) {
	q := r.URL.Query()
	filter := domain.DataFilter{
		DataSourceID: q.Get("data_source_id"),
		ProjectID:    q.Get("project_id"),
	}
	if v := q.Get("data_type"); v != "" {
		filter.DataTypes = []string{v}
	}
	if v := q.Get("start_date"); v != "" {
		t, err := time.Parse(domain.DateFormat, v)
		if err != nil {
			return filter, fmt.Errorf("invalid start_date: %w", err)
		}
		filter.Start = &t
	}
	if v := q.Get("end_date"); v != "" {
		t, err := time.Parse(domain.DateFormat, v)
		if err != nil {
			return filter, fmt.Errorf("invalid end_date: %w", err)
		}
		filter.End = &t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, fmt.Errorf("invalid limit: %q", v)
		}
		filter.Limit = n
	}
	return filter, nil
}

// dataResponse shapes extracted rows for API consumers: the canonical
// payload plus a metadata envelope.
func dataResponse(records []domain.ExtractedRecord) map[string]any {
	rows := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, map[string]any{
			"id":             rec.ID,
			"data_source_id": rec.DataSourceID,
			"job_id":         rec.JobID,
			"data_type":      rec.DataType,
			"date":           rec.Date,
			"data":           rec.Processed,
			"_metadata": map[string]any{
				"fingerprint": rec.Fingerprint,
				"created_at":  rec.CreatedAt,
			},
		})
	}
	return map[string]any{"count": len(rows), "records": rows}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInactive), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
