// Package budget implements budget execution reporting: how much of a
// budget's overall and per-category limits a set of transactions has
// consumed.
package budget

import (
	"github.com/shopspring/decimal"

	"github.com/joshsymonds/tally/internal/model"
)

var hundred = decimal.NewFromInt(100)

// CategoryReport is the execution state of one budget category limit.
// Remaining goes negative when the category is over budget; PercentUsed is
// the raw unclamped ratio while PercentDisplay is capped at 100 for
// presentation.
type CategoryReport struct {
	Category       string
	Limit          decimal.Decimal
	Spent          decimal.Decimal
	Remaining      decimal.Decimal
	PercentUsed    decimal.Decimal
	PercentDisplay decimal.Decimal
	CategoryID     int64
	OverBudget     bool
}

// Report is the execution state of a whole budget. Remaining and
// PercentUsed are nil when the budget has no total expense limit; "no
// limit" is not the same as "zero remaining".
type Report struct {
	Spent        decimal.Decimal
	Income       decimal.Decimal
	ExpenseLimit *decimal.Decimal
	IncomeLimit  *decimal.Decimal
	Remaining    *decimal.Decimal
	PercentUsed  *decimal.Decimal
	Categories   []CategoryReport
}

// Evaluate computes the budget report for the given transactions. Only
// transactions dated within the budget period count; both ends of the range
// are inclusive. The transaction set may be wider than the period; the
// evaluator filters for itself.
func Evaluate(b *model.Budget, limits []model.BudgetCategoryLimit, categoryNames map[int64]string, txns []model.Transaction) Report {
	report := Report{
		Spent:        decimal.Zero,
		Income:       decimal.Zero,
		ExpenseLimit: b.TotalExpenseLimit,
		IncomeLimit:  b.TotalIncomeLimit,
	}

	spentByCategory := make(map[int64]decimal.Decimal, len(limits))

	for i := range txns {
		txn := &txns[i]
		if !b.Contains(txn.Date) {
			continue
		}

		switch txn.Type {
		case model.TypeIncome:
			report.Income = report.Income.Add(txn.Amount)
		case model.TypeOutcome:
			report.Spent = report.Spent.Add(txn.Amount)
			if txn.CategoryID != nil {
				spentByCategory[*txn.CategoryID] = spentByCategory[*txn.CategoryID].Add(txn.Amount)
			}
		}
	}

	if b.TotalExpenseLimit != nil {
		remaining := b.TotalExpenseLimit.Sub(report.Spent)
		report.Remaining = &remaining

		if b.TotalExpenseLimit.IsPositive() {
			percent := report.Spent.Div(*b.TotalExpenseLimit).Mul(hundred)
			report.PercentUsed = &percent
		}
	}

	report.Categories = make([]CategoryReport, 0, len(limits))
	for _, limit := range limits {
		spent := spentByCategory[limit.CategoryID]
		if spent.IsZero() {
			spent = decimal.Zero
		}

		row := CategoryReport{
			CategoryID: limit.CategoryID,
			Category:   categoryNames[limit.CategoryID],
			Limit:      limit.LimitAmount,
			Spent:      spent,
			Remaining:  limit.LimitAmount.Sub(spent),
			OverBudget: spent.GreaterThan(limit.LimitAmount),
		}
		if limit.LimitAmount.IsPositive() {
			row.PercentUsed = spent.Div(limit.LimitAmount).Mul(hundred)
			row.PercentDisplay = decimal.Min(row.PercentUsed, hundred)
		}
		report.Categories = append(report.Categories, row)
	}

	return report
}
