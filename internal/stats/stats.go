// Package stats implements the reporting aggregation engine. All functions
// are pure: they take a filtered transaction collection and produce
// time-bucketed series, per-category breakdowns, and heatmap data without
// touching storage. Monetary math is exact decimal throughout; any float
// conversion belongs to the serialization boundary, not here.
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/joshsymonds/tally/internal/model"
)

// OtherCategory labels transactions that have no category reference.
const OtherCategory = "Other"

// CategoryAmount is one per-category aggregation row.
type CategoryAmount struct {
	Category string
	Total    decimal.Decimal
}

// PeriodStats holds the basic aggregation of a transaction collection:
// overall totals plus a sparse daily income/expense series. Labels are ISO
// dates in ascending order; the data slices align positionally with them,
// with zero filled in for a date that has only one of the two types.
type PeriodStats struct {
	TotalIncome       decimal.Decimal
	TotalExpense      decimal.Decimal
	Balance           decimal.Decimal
	Labels            []string
	IncomeData        []decimal.Decimal
	ExpenseData       []decimal.Decimal
	ExpenseCategories []CategoryAmount
}

// Compute aggregates a filtered transaction collection. An empty collection
// yields zero totals and empty slices, never an error. The result is
// independent of the input's ordering.
func Compute(txns []model.Transaction, categoryNames map[int64]string) PeriodStats {
	stats := PeriodStats{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Balance:      decimal.Zero,
		Labels:       []string{},
		IncomeData:   []decimal.Decimal{},
		ExpenseData:  []decimal.Decimal{},
	}

	dailyIncome := make(map[string]decimal.Decimal)
	dailyExpense := make(map[string]decimal.Decimal)
	categoryTotals := make(map[string]decimal.Decimal)

	for i := range txns {
		txn := &txns[i]
		day := txn.DateKey()

		switch txn.Type {
		case model.TypeIncome:
			stats.TotalIncome = stats.TotalIncome.Add(txn.Amount)
			dailyIncome[day] = dailyIncome[day].Add(txn.Amount)
		case model.TypeOutcome:
			stats.TotalExpense = stats.TotalExpense.Add(txn.Amount)
			dailyExpense[day] = dailyExpense[day].Add(txn.Amount)

			name := displayName(txn.CategoryID, categoryNames)
			categoryTotals[name] = categoryTotals[name].Add(txn.Amount)
		}
	}

	stats.Balance = stats.TotalIncome.Sub(stats.TotalExpense)

	// Sparse series: only dates that actually have transactions appear.
	// Lexicographic order of ISO dates is chronological order.
	seen := make(map[string]struct{}, len(dailyIncome)+len(dailyExpense))
	for day := range dailyIncome {
		seen[day] = struct{}{}
	}
	for day := range dailyExpense {
		seen[day] = struct{}{}
	}
	labels := make([]string, 0, len(seen))
	for day := range seen {
		labels = append(labels, day)
	}
	sort.Strings(labels)

	stats.Labels = labels
	stats.IncomeData = make([]decimal.Decimal, len(labels))
	stats.ExpenseData = make([]decimal.Decimal, len(labels))
	for i, day := range labels {
		stats.IncomeData[i] = dailyIncome[day]
		stats.ExpenseData[i] = dailyExpense[day]
		if stats.IncomeData[i].IsZero() {
			stats.IncomeData[i] = decimal.Zero
		}
		if stats.ExpenseData[i].IsZero() {
			stats.ExpenseData[i] = decimal.Zero
		}
	}

	stats.ExpenseCategories = sortedCategoryAmounts(categoryTotals)
	return stats
}

// ExtendedPeriodStats adds the expense heatmap and frequency breakdown to
// the basic period aggregation.
type ExtendedPeriodStats struct {
	PeriodStats
	Heatmap                    []HeatmapCell
	WeekNames                  []string
	DayNames                   []string
	ExpenseFrequencyCategories []string
	ExpenseFrequencyValues     []int
}

// ComputeExtended aggregates a transaction collection including heatmap and
// expense-frequency data.
func ComputeExtended(txns []model.Transaction, categoryNames map[int64]string) ExtendedPeriodStats {
	extended := ExtendedPeriodStats{
		PeriodStats: Compute(txns, categoryNames),
	}
	extended.Heatmap, extended.WeekNames = computeHeatmap(txns)
	extended.DayNames = DayNames()
	extended.ExpenseFrequencyCategories, extended.ExpenseFrequencyValues =
		expenseFrequency(txns, categoryNames)
	return extended
}

// expenseFrequency counts outcome transactions per category. The parallel
// slices share index positions and are ordered by category name so the
// output is deterministic.
func expenseFrequency(txns []model.Transaction, categoryNames map[int64]string) ([]string, []int) {
	counts := make(map[string]int)
	for i := range txns {
		txn := &txns[i]
		if txn.Type != model.TypeOutcome {
			continue
		}
		counts[displayName(txn.CategoryID, categoryNames)]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]int, len(names))
	for i, name := range names {
		values[i] = counts[name]
	}
	return names, values
}

func displayName(categoryID *int64, categoryNames map[int64]string) string {
	if categoryID == nil {
		return OtherCategory
	}
	if name, ok := categoryNames[*categoryID]; ok && name != "" {
		return name
	}
	return OtherCategory
}

func sortedCategoryAmounts(totals map[string]decimal.Decimal) []CategoryAmount {
	amounts := make([]CategoryAmount, 0, len(totals))
	for name, total := range totals {
		amounts = append(amounts, CategoryAmount{Category: name, Total: total})
	}
	sort.Slice(amounts, func(i, j int) bool {
		return amounts[i].Category < amounts[j].Category
	})
	return amounts
}
