package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidBudgetPeriod indicates a budget whose start date is not before
// its end date.
var ErrInvalidBudgetPeriod = errors.New("budget start date must be before end date")

// Budget defines spending limits over a date range. The income and expense
// limits are optional; a nil limit means "no limit", which is distinct from
// a limit of zero.
type Budget struct {
	StartDate         time.Time
	EndDate           time.Time
	CreatedAt         time.Time
	Name              string
	PeriodType        string
	TotalIncomeLimit  *decimal.Decimal
	TotalExpenseLimit *decimal.Decimal
	ID                int64
	OwnerID           int64
	IsActive          bool
}

// Validate checks the budget's date range.
func (b *Budget) Validate() error {
	if !NormalizeDate(b.StartDate).Before(NormalizeDate(b.EndDate)) {
		return ErrInvalidBudgetPeriod
	}
	return nil
}

// Contains reports whether the given date falls within the budget period.
// Both ends of the range are inclusive.
func (b *Budget) Contains(date time.Time) bool {
	d := NormalizeDate(date)
	return !d.Before(NormalizeDate(b.StartDate)) && !d.After(NormalizeDate(b.EndDate))
}

// BudgetCategoryLimit caps spending for one category within a budget.
// Each (budget, category) pair appears at most once.
type BudgetCategoryLimit struct {
	LimitAmount decimal.Decimal
	ID          int64
	BudgetID    int64
	CategoryID  int64
}
