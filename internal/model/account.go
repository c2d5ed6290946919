package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType categorizes the kind of account a transaction settles against.
type AccountType string

const (
	// AccountTypeBank is a checking or current bank account.
	AccountTypeBank AccountType = "bank"
	// AccountTypeCash is physical cash.
	AccountTypeCash AccountType = "cash"
	// AccountTypeCreditCard is a revolving credit card account.
	AccountTypeCreditCard AccountType = "credit_card"
	// AccountTypeInvestment is a brokerage or investment account.
	AccountTypeInvestment AccountType = "investment"
	// AccountTypeSavings is a savings account.
	AccountTypeSavings AccountType = "savings"
	// AccountTypeWallet is an electronic wallet.
	AccountTypeWallet AccountType = "wallet"
)

// IsValid reports whether the account type is a known value.
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeBank, AccountTypeCash, AccountTypeCreditCard,
		AccountTypeInvestment, AccountTypeSavings, AccountTypeWallet:
		return true
	}
	return false
}

// Account represents a money container owned by a user.
//
// Balance is derived state: it always equals InitialBalance plus the sum of
// income transactions minus the sum of outcome transactions referencing this
// account. It is recomputed from the full transaction history on every write,
// never patched incrementally.
type Account struct {
	CreatedAt      time.Time
	Name           string
	Currency       string
	Type           AccountType
	InitialBalance decimal.Decimal
	Balance        decimal.Decimal
	ID             int64
	OwnerID        int64
	IsActive       bool
}
