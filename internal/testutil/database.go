// Package testutil provides test fixtures for the tally project.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joshsymonds/tally/internal/model"
	"github.com/joshsymonds/tally/internal/service"
	"github.com/joshsymonds/tally/internal/storage"
)

// TestOwner is the owner id used by test fixtures.
const TestOwner int64 = 1

// TestDB wraps an in-memory migrated store with helpers for seeding data.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database. It automatically runs
// migrations and registers cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// MustCreateAccount seeds an account for the test owner.
func (db *TestDB) MustCreateAccount(name string, initialBalance string) *model.Account {
	db.t.Helper()

	account, err := db.Storage.CreateAccount(context.Background(), &model.Account{
		OwnerID:        TestOwner,
		Name:           name,
		Type:           model.AccountTypeBank,
		InitialBalance: mustDecimal(db.t, initialBalance),
	})
	if err != nil {
		db.t.Fatalf("failed to seed account %q: %v", name, err)
	}
	return account
}

// MustCreateCategory seeds a user category for the test owner.
func (db *TestDB) MustCreateCategory(name string, categoryType model.TransactionType) *model.Category {
	db.t.Helper()

	owner := TestOwner
	category, err := db.Storage.CreateCategory(context.Background(), &model.Category{
		OwnerID: &owner,
		Name:    name,
		Type:    categoryType,
	})
	if err != nil {
		db.t.Fatalf("failed to seed category %q: %v", name, err)
	}
	return category
}

// MustSaveTransaction seeds a raw transaction row, bypassing the ledger
// service's balance maintenance.
func (db *TestDB) MustSaveTransaction(txn model.Transaction) *model.Transaction {
	db.t.Helper()

	if txn.OwnerID == 0 {
		txn.OwnerID = TestOwner
	}
	saved, err := db.Storage.SaveTransaction(context.Background(), &txn)
	if err != nil {
		db.t.Fatalf("failed to seed transaction: %v", err)
	}
	return saved
}

// Date builds a normalized calendar date for fixtures.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Amount parses a decimal amount literal, failing the test on bad input.
func Amount(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	return mustDecimal(t, value)
}

func mustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", value, err)
	}
	return d
}
