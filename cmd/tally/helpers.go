package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/joshsymonds/tally/internal/common"
	"github.com/joshsymonds/tally/internal/config"
	"github.com/joshsymonds/tally/internal/ledger"
	"github.com/joshsymonds/tally/internal/model"
	"github.com/joshsymonds/tally/internal/reports"
	"github.com/joshsymonds/tally/internal/storage"
)

// initStorage opens the ledger database from config and migrates it.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}

	store, err := storage.NewSQLiteStorage(config.ExpandPath(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate ledger database: %w", err)
	}
	return store, nil
}

// initServices wires the reporting and write-path services over one store.
// The reports service doubles as the ledger's cache invalidator.
func initServices(store *storage.SQLiteStorage) (*ledger.Service, *reports.Service) {
	reportsSvc := reports.New(store,
		viper.GetInt("cache.max_entries"),
		viper.GetDuration("cache.ttl"),
	)
	return ledger.New(store, reportsSvc), reportsSvc
}

// currentOwner resolves the owner id all core operations are scoped to.
func currentOwner() (int64, error) {
	owner := viper.GetInt64("owner")
	if owner <= 0 {
		return 0, common.NewUserError(
			"no owner configured; pass --owner or set owner in the config file",
			common.ErrMissingConfig)
	}
	return owner, nil
}

// parseDateArg parses a required YYYY-MM-DD argument.
func parseDateArg(value, name string) (time.Time, error) {
	ts, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return time.Time{}, common.NewUserError(
			fmt.Sprintf("%s must be a YYYY-MM-DD date, got %q", name, value), err)
	}
	return ts, nil
}

// parseOptionalDate parses an optional YYYY-MM-DD flag value.
func parseOptionalDate(value, name string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	ts, err := parseDateArg(value, name)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

// parseAmountArg parses a decimal money argument.
func parseAmountArg(value, name string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, common.NewUserError(
			fmt.Sprintf("%s must be a decimal amount, got %q", name, value), err)
	}
	return d, nil
}

// optionalID converts a flag value into a nullable reference.
func optionalID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func parseTransactionType(value string) (model.TransactionType, error) {
	t := model.TransactionType(value)
	if !t.IsValid() {
		return "", common.NewUserError(
			fmt.Sprintf("type must be %q or %q, got %q", model.TypeIncome, model.TypeOutcome, value),
			common.ErrValidation)
	}
	return t, nil
}
