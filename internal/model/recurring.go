package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency controls how often a recurring transaction materializes.
type Frequency string

const (
	// FrequencyDaily materializes every day.
	FrequencyDaily Frequency = "daily"
	// FrequencyWeekly materializes each Monday.
	FrequencyWeekly Frequency = "weekly"
	// FrequencyMonthly materializes on the start date's day of month.
	FrequencyMonthly Frequency = "monthly"
	// FrequencyYearly materializes on the start date's month and day.
	FrequencyYearly Frequency = "yearly"
)

// IsValid reports whether the frequency is a known value.
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// RecurringTransaction is a template the scheduler turns into real
// transactions. At most one transaction per occurrence per day is created;
// the materializer dedups on (owner, account, amount, type, category, date).
type RecurringTransaction struct {
	StartDate   time.Time
	CreatedAt   time.Time
	EndDate     *time.Time
	Description string
	Type        TransactionType
	Frequency   Frequency
	Amount      decimal.Decimal
	ID          int64
	OwnerID     int64
	AccountID   *int64
	CategoryID  *int64
}

// DueOn reports whether the template produces an occurrence on the given
// day. The start date must have been reached and the end date, when set,
// not passed; beyond that each frequency has its own match rule.
func (r *RecurringTransaction) DueOn(asOf time.Time) bool {
	asOf = NormalizeDate(asOf)
	start := NormalizeDate(r.StartDate)
	if asOf.Before(start) {
		return false
	}
	if r.EndDate != nil && asOf.After(NormalizeDate(*r.EndDate)) {
		return false
	}

	switch r.Frequency {
	case FrequencyDaily:
		return true
	case FrequencyWeekly:
		return asOf.Weekday() == time.Monday
	case FrequencyMonthly:
		return asOf.Day() == start.Day()
	case FrequencyYearly:
		return asOf.Month() == start.Month() && asOf.Day() == start.Day()
	}
	return false
}
