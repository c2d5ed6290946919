// Package model defines the core domain types for the tally ledger.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether money flows into or out of an account.
type TransactionType string

const (
	// TypeIncome represents money flowing in.
	TypeIncome TransactionType = "income"
	// TypeOutcome represents money flowing out.
	TypeOutcome TransactionType = "outcome"
)

// IsValid reports whether the transaction type is a known value.
func (t TransactionType) IsValid() bool {
	return t == TypeIncome || t == TypeOutcome
}

// Transaction represents a single ledger entry for a user.
// Account and category references are optional; a transaction without a
// category is grouped under the "Other" label in reports.
type Transaction struct {
	Date        time.Time
	CreatedAt   time.Time
	Description string
	Type        TransactionType
	Amount      decimal.Decimal
	ID          int64
	OwnerID     int64
	AccountID   *int64
	CategoryID  *int64
}

// DateKey returns the transaction's calendar date as an ISO string.
// ISO dates sort lexicographically in chronological order, which the
// aggregation engine relies on for its daily series labels.
func (t *Transaction) DateKey() string {
	return t.Date.Format("2006-01-02")
}

// NormalizeDate strips the time-of-day component from a date.
// Transactions carry calendar dates only; everything in storage and
// aggregation works on midnight-UTC values.
func NormalizeDate(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}
