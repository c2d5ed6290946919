// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joshsymonds/tally/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
// All fields are optional; the zero value selects every transaction the
// owner has.
type TransactionFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	AccountID  *int64
	CategoryID *int64
	Type       model.TransactionType
	Limit      int
	Offset     int
}

// AccountSums holds per-type transaction totals for one account.
type AccountSums struct {
	Income  decimal.Decimal
	Outcome decimal.Decimal
}

// Store defines the entity operations of the persistence layer. It is
// implemented both by the storage itself and by an open database
// transaction, so the write path can run derived-state updates in the same
// atomic scope as the triggering write.
type Store interface {
	// Account operations
	CreateAccount(ctx context.Context, account *model.Account) (*model.Account, error)
	GetAccountByID(ctx context.Context, id, ownerID int64) (*model.Account, error)
	GetAccounts(ctx context.Context, ownerID int64) ([]model.Account, error)
	UpdateAccountBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error
	SetAccountActive(ctx context.Context, id, ownerID int64, active bool) error
	DeleteAccount(ctx context.Context, id, ownerID int64) error
	SumAccountTransactions(ctx context.Context, accountID int64) (AccountSums, error)
	CountTransactionsByAccount(ctx context.Context, accountID int64) (int, error)

	// Category operations
	CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	GetCategories(ctx context.Context, ownerID int64) ([]model.Category, error)
	GetCategoriesByType(ctx context.Context, ownerID int64, categoryType model.TransactionType) ([]model.Category, error)
	UpdateCategory(ctx context.Context, id, ownerID int64, name string, categoryType model.TransactionType) error
	DeleteCategory(ctx context.Context, id, ownerID int64) error
	CountTransactionsByCategory(ctx context.Context, categoryID int64) (int, error)
	SeedSystemCategories(ctx context.Context, categories []model.Category) (int, error)

	// Transaction operations
	SaveTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	GetTransactionByID(ctx context.Context, id, ownerID int64) (*model.Transaction, error)
	GetTransactions(ctx context.Context, ownerID int64, filter TransactionFilter) ([]model.Transaction, error)
	DeleteTransaction(ctx context.Context, id, ownerID int64) error
	MatchingTransactionExists(ctx context.Context, txn *model.Transaction) (bool, error)

	// Recurring template operations
	CreateRecurringTransaction(ctx context.Context, template *model.RecurringTransaction) (*model.RecurringTransaction, error)
	GetRecurringTransactions(ctx context.Context, ownerID int64) ([]model.RecurringTransaction, error)
	GetRecurringTransactionsStartedBy(ctx context.Context, asOf time.Time) ([]model.RecurringTransaction, error)
	DeleteRecurringTransaction(ctx context.Context, id, ownerID int64) error

	// Budget operations
	CreateBudget(ctx context.Context, budget *model.Budget) (*model.Budget, error)
	GetBudgetByID(ctx context.Context, id, ownerID int64) (*model.Budget, error)
	GetBudgets(ctx context.Context, ownerID int64) ([]model.Budget, error)
	DeleteBudget(ctx context.Context, id, ownerID int64) error
	SetBudgetCategoryLimit(ctx context.Context, limit *model.BudgetCategoryLimit) (*model.BudgetCategoryLimit, error)
	GetBudgetCategoryLimits(ctx context.Context, budgetID int64) ([]model.BudgetCategoryLimit, error)
}

// Storage defines the full contract for the persistence layer.
type Storage interface {
	Store

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents an open database transaction. All Store methods
// called through it see the transaction's own uncommitted writes.
type Transaction interface {
	Commit() error
	Rollback() error
	Store
}
