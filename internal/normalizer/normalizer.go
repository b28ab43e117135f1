// Package normalizer converts raw platform records into the canonical
// record shape and computes derived ratio metrics.
package normalizer

import (
	"math"
	"strconv"
	"time"

	"github.com/metryx-io/metryx/internal/core/domain"
)

// Derived ratio metric names.
const (
	MetricCTR  = "ctr"
	MetricCPC  = "cpc"
	MetricCPM  = "cpm"
	MetricROAS = "roas"
)

// Normalize converts one raw record into the canonical shape,
// restricted to exactly the requested metric and dimension names that
// are present in the raw record. Requested names absent from the raw
// record are silently omitted. Derived ratios (ctr, cpc, cpm, roas) are
// computed when requested and not already supplied by the platform.
func Normalize(platform string, raw domain.RawRecord, metrics, dimensions []string) domain.NormalizedRecord {
	rec := domain.NormalizedRecord{
		Platform:    platform,
		DataType:    dataType(raw),
		Date:        recordDate(raw),
		ExtractedAt: time.Now().UTC(),
		Dimensions:  make(map[string]any),
		Metrics:     make(map[string]float64),
	}

	for _, dim := range dimensions {
		if v, ok := raw[dim]; ok {
			rec.Dimensions[dim] = v
		}
	}

	for _, metric := range metrics {
		if v, ok := toFloat(raw[metric]); ok {
			rec.Metrics[metric] = v
			continue
		}
		if derived, ok := derive(metric, raw); ok {
			rec.Metrics[metric] = derived
		}
	}

	return rec
}

// derive computes a ratio metric from the raw record's base values.
// Division by zero never raises; it yields 0.
func derive(metric string, raw domain.RawRecord) (float64, bool) {
	impressions, hasImpressions := toFloat(raw["impressions"])
	clicks, hasClicks := toFloat(raw["clicks"])
	cost, hasCost := toFloat(raw["cost"])
	revenue, hasRevenue := toFloat(raw["revenue"])

	switch metric {
	case MetricCTR:
		if !hasClicks || !hasImpressions {
			return 0, false
		}
		return round2(safeDiv(clicks, impressions) * 100), true
	case MetricCPC:
		if !hasCost || !hasClicks {
			return 0, false
		}
		return round2(safeDiv(cost, clicks)), true
	case MetricCPM:
		if !hasCost || !hasImpressions {
			return 0, false
		}
		return round2(safeDiv(cost, impressions) * 1000), true
	case MetricROAS:
		if !hasRevenue || !hasCost {
			return 0, false
		}
		return round2(safeDiv(revenue, cost)), true
	default:
		return 0, false
	}
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// toFloat coerces the numeric representations platform APIs actually
// send: JSON numbers, integers and numeric strings.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func dataType(raw domain.RawRecord) string {
	if dt, ok := raw[domain.FieldDataType].(string); ok && dt != "" {
		return dt
	}
	return domain.DefaultDataType
}

func recordDate(raw domain.RawRecord) string {
	if d, ok := raw[domain.FieldDate].(string); ok && d != "" {
		if _, err := time.Parse(domain.DateFormat, d); err == nil {
			return d
		}
	}
	return time.Now().UTC().Format(domain.DateFormat)
}
