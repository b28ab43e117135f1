package httpapi

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/logger"
)

// handleWebhookData serves extracted data through a keyed URL. The key
// is the only authentication; expiry, source allow-lists and per-key
// rate caps are enforced here.
func (s *Server) handleWebhookData(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	hook, err := s.webhooks.GetByKey(r.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New("unknown webhook key"))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if !hook.Active {
		writeError(w, http.StatusForbidden, errors.New("webhook is disabled"))
		return
	}
	if hook.Expired(time.Now().UTC()) {
		writeError(w, http.StatusForbidden, domain.ErrWebhookExpired)
		return
	}
	if !s.limiters.allow(hook.Key, hook.RateLimitPerHour) {
		writeError(w, http.StatusTooManyRequests, domain.ErrRateLimited)
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	filter.ProjectID = hook.ProjectID

	if filter.DataSourceID != "" && !hook.AllowsSource(filter.DataSourceID) {
		writeError(w, http.StatusForbidden, errors.New("data source not allowed for this webhook"))
		return
	}

	records, err := s.extraction.Data(r.Context(), filter)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	// A webhook restricted to specific sources never leaks the rest of
	// the project.
	if len(hook.AllowedSources) > 0 && filter.DataSourceID == "" {
		filtered := records[:0]
		for _, rec := range records {
			if hook.AllowsSource(rec.DataSourceID) {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	logger.Debug("webhook %s served %d records", hook.Name, len(records))
	if hook.Format == domain.WebhookFormatCSV {
		writeCSV(w, records)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse(records))
}

// writeCSV flattens records to one row per record: fixed identity
// columns plus a sorted union of metric names.
func writeCSV(w http.ResponseWriter, records []domain.ExtractedRecord) {
	metricSet := map[string]bool{}
	for _, rec := range records {
		for name := range rec.Metrics {
			metricSet[name] = true
		}
	}
	metricNames := make([]string, 0, len(metricSet))
	for name := range metricSet {
		metricNames = append(metricNames, name)
	}
	sort.Strings(metricNames)

	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := append([]string{"data_source_id", "data_type", "date", "dimensions"}, metricNames...)
	cw.Write(header)

	for _, rec := range records {
		dims, _ := json.Marshal(rec.Processed["dimensions"])
		row := []string{rec.DataSourceID, rec.DataType, rec.Date, string(dims)}
		for _, name := range metricNames {
			if v, ok := rec.Metrics[name]; ok {
				row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		cw.Write(row)
	}
}
