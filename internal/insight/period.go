package insight

import (
	"sort"
	"time"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
)

// Granularity selects how records are bucketed in time.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// truncateDay drops the clock part while keeping the calendar date of t.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole calendar days from a to b.
func daysBetween(a, b time.Time) int {
	return int(truncateDay(b).Sub(truncateDay(a)).Hours() / 24)
}

// weekStart returns the Monday of the ISO week containing t.
func weekStart(t time.Time) time.Time {
	d := truncateDay(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// PeriodKey returns the bucket key of t: YYYY-MM-DD for days, the Monday's
// YYYY-MM-DD for weeks and YYYY-MM for months.
func PeriodKey(t time.Time, g Granularity) string {
	switch g {
	case Weekly:
		return weekStart(t).Format(dayLayout)
	case Monthly:
		return t.Format(monthLayout)
	default:
		return truncateDay(t).Format(dayLayout)
	}
}

// AggregateBy sums value(r) per key(r). Sums keep full precision; no zero buckets are inserted.
func AggregateBy[T any](records []T, key func(T) string, value func(T) float64) map[string]float64 {
	out := make(map[string]float64)
	for _, r := range records {
		out[key(r)] += value(r)
	}
	return out
}

// AggregateByPeriod buckets records by their date at the given granularity.
func AggregateByPeriod[T any](records []T, g Granularity, date func(T) time.Time, value func(T) float64) map[string]float64 {
	return AggregateBy(records, func(r T) string { return PeriodKey(date(r), g) }, value)
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DailySeries sums value(r) per day over [from, to] inclusive and fills days without
// records with explicit zeros, so variability reflects zero-demand days.
func DailySeries[T any](records []T, from, to time.Time, date func(T) time.Time, value func(T) float64) []float64 {
	from, to = truncateDay(from), truncateDay(to)
	if to.Before(from) {
		return nil
	}
	series := make([]float64, daysBetween(from, to)+1)
	for _, r := range records {
		idx := daysBetween(from, date(r))
		if idx < 0 || idx >= len(series) {
			continue
		}
		series[idx] += value(r)
	}
	return series
}

// dateSpan returns the earliest and latest dates of records; ok is false for no records.
func dateSpan[T any](records []T, date func(T) time.Time) (first, last time.Time, ok bool) {
	for i, r := range records {
		d := truncateDay(date(r))
		if i == 0 || d.Before(first) {
			first = d
		}
		if i == 0 || d.After(last) {
			last = d
		}
	}
	return first, last, len(records) > 0
}

// spanDays is the inclusive number of calendar days between first and last, at least 1.
func spanDays(first, last time.Time) int {
	return max(1, daysBetween(first, last)+1)
}

func purchaseDate(p domain.PurchaseRecord) time.Time { return p.Date }
func purchaseQty(p domain.PurchaseRecord) float64 { return p.Quantity }
func purchaseTotal(p domain.PurchaseRecord) float64 { return p.Total }
func productionDate(p domain.ProductionRecord) time.Time { return p.Date }
func salesDate(s domain.DailySalesRecord) time.Time { return s.Date }
func utilityDate(u domain.UtilityRecord) time.Time { return u.Date }
func snapshotDate(s domain.InventorySnapshotData) time.Time { return s.SnapshotDate }
