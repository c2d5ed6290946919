package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joshsymonds/tally/internal/model"
)

// HeatmapCell is one expense bucket: a weekday within a labeled week.
type HeatmapCell struct {
	Weekday string
	Week    string
	Heat    decimal.Decimal
}

// DayNames returns the fixed weekday sequence used by heatmap consumers.
// ISO weeks start on Monday, so Monday leads regardless of locale.
func DayNames() []string {
	return []string{
		"Monday", "Tuesday", "Wednesday", "Thursday",
		"Friday", "Saturday", "Sunday",
	}
}

// weekdayIndex maps a weekday to its Monday-first position (Monday=0 ..
// Sunday=6), used for stable sorting within a week.
func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// weekBounds returns the Monday and Sunday of the ISO week containing the
// given date.
func weekBounds(date time.Time) (time.Time, time.Time) {
	monday := date.AddDate(0, 0, -weekdayIndex(date.Weekday()))
	return monday, monday.AddDate(0, 0, 6)
}

// weekLabel builds the human-readable week range, e.g. "3Jun-9Jun".
func weekLabel(date time.Time) string {
	monday, sunday := weekBounds(date)
	return fmt.Sprintf("%d%s-%d%s",
		monday.Day(), monday.Month().String()[:3],
		sunday.Day(), sunday.Month().String()[:3])
}

type heatmapKey struct {
	year    int
	week    int
	weekday int
}

// computeHeatmap buckets outcome transactions by (ISO year, ISO week,
// weekday), summing amounts, and returns the cells in chronological order
// together with the distinct week labels. Empty input yields empty slices.
func computeHeatmap(txns []model.Transaction) ([]HeatmapCell, []string) {
	cells := []HeatmapCell{}
	weekNames := []string{}

	buckets := make(map[heatmapKey]decimal.Decimal)
	labels := make(map[heatmapKey]string)
	days := make(map[heatmapKey]string)

	for i := range txns {
		txn := &txns[i]
		if txn.Type != model.TypeOutcome {
			continue
		}

		date := model.NormalizeDate(txn.Date)
		year, week := date.ISOWeek()
		key := heatmapKey{year: year, week: week, weekday: weekdayIndex(date.Weekday())}

		buckets[key] = buckets[key].Add(txn.Amount)
		if _, ok := labels[key]; !ok {
			labels[key] = weekLabel(date)
			days[key] = date.Weekday().String()
		}
	}

	keys := make([]heatmapKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		if keys[i].week != keys[j].week {
			return keys[i].week < keys[j].week
		}
		return keys[i].weekday < keys[j].weekday
	})

	lastLabel := ""
	for _, key := range keys {
		cells = append(cells, HeatmapCell{
			Weekday: days[key],
			Week:    labels[key],
			Heat:    buckets[key],
		})
		if labels[key] != lastLabel {
			weekNames = append(weekNames, labels[key])
			lastLabel = labels[key]
		}
	}

	return cells, weekNames
}
