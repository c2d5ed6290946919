// Package ledger implements the transaction write path. Every create or
// delete that touches an account recomputes that account's balance inside
// the same database transaction, so the ledger and the derived balance can
// never diverge: either both changes commit or neither does.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/joshsymonds/tally/internal/common"
	"github.com/joshsymonds/tally/internal/model"
	"github.com/joshsymonds/tally/internal/service"
)

// Invalidator drops cached reports for an owner after a committed write.
type Invalidator interface {
	InvalidateOwner(ownerID int64)
}

// Service coordinates ledger writes and balance maintenance.
type Service struct {
	storage     service.Storage
	invalidator Invalidator
}

// New creates a ledger service. The invalidator may be nil when no report
// cache is wired in (e.g. one-shot CLI invocations).
func New(storage service.Storage, invalidator Invalidator) *Service {
	return &Service{
		storage:     storage,
		invalidator: invalidator,
	}
}

// CreateTransaction validates and persists a transaction. Validation
// happens before any write: a bad amount or a category whose type does not
// match is rejected with nothing persisted. On success the row insert and
// the account balance update commit as one unit.
func (s *Service) CreateTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	if txn == nil {
		return nil, fmt.Errorf("%w: transaction is nil", common.ErrValidation)
	}
	if !txn.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", common.ErrValidation, txn.Type)
	}
	if !txn.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", common.ErrNonPositiveAmount, txn.Amount)
	}
	txn.Date = model.NormalizeDate(txn.Date)

	if txn.CategoryID != nil {
		category, err := s.storage.GetCategoryByID(ctx, *txn.CategoryID)
		if err != nil {
			return nil, err
		}
		if !category.VisibleTo(txn.OwnerID) {
			return nil, fmt.Errorf("category %d: %w", *txn.CategoryID, common.ErrNotFound)
		}
		if category.Type != txn.Type {
			return nil, fmt.Errorf("category %q is %s, transaction is %s: %w",
				category.Name, category.Type, txn.Type, common.ErrTypeMismatch)
		}
	}

	if txn.AccountID != nil {
		if _, err := s.storage.GetAccountByID(ctx, *txn.AccountID, txn.OwnerID); err != nil {
			return nil, err
		}
	}

	tx, err := s.storage.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	saved, err := tx.SaveTransaction(ctx, txn)
	if err != nil {
		return nil, err
	}

	if saved.AccountID != nil {
		if _, err := recomputeBalance(ctx, tx, *saved.AccountID, saved.OwnerID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction write: %w", err)
	}

	s.invalidate(saved.OwnerID)
	slog.Info("created transaction",
		"id", saved.ID, "owner", saved.OwnerID, "type", saved.Type, "amount", saved.Amount)
	return saved, nil
}

// DeleteTransaction removes a transaction and restores the invariant on
// the affected account in the same atomic scope.
func (s *Service) DeleteTransaction(ctx context.Context, id, ownerID int64) error {
	existing, err := s.storage.GetTransactionByID(ctx, id, ownerID)
	if err != nil {
		return err
	}

	tx, err := s.storage.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.DeleteTransaction(ctx, id, ownerID); err != nil {
		return err
	}

	if existing.AccountID != nil {
		if _, err := recomputeBalance(ctx, tx, *existing.AccountID, ownerID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction delete: %w", err)
	}

	s.invalidate(ownerID)
	slog.Info("deleted transaction", "id", id, "owner", ownerID)
	return nil
}

// RecomputeBalance rebuilds an account's balance from its full transaction
// history and persists it. Exposed for repair tooling; the write path runs
// the same computation inside its own transaction scope.
func (s *Service) RecomputeBalance(ctx context.Context, accountID, ownerID int64) (decimal.Decimal, error) {
	return recomputeBalance(ctx, s.storage, accountID, ownerID)
}

// recomputeBalance sets balance = initial_balance + Σincome − Σoutcome over
// exactly the transactions currently referencing the account. A full
// re-scan rather than an incremental patch: immune to double-application
// from retries, and per-account transaction counts stay small enough that
// the O(n) scan does not matter.
func recomputeBalance(ctx context.Context, store service.Store, accountID, ownerID int64) (decimal.Decimal, error) {
	account, err := store.GetAccountByID(ctx, accountID, ownerID)
	if err != nil {
		// A missing account here is a caller bug, not a user error.
		return decimal.Zero, fmt.Errorf("recompute balance: %w", err)
	}

	sums, err := store.SumAccountTransactions(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("recompute balance: %w", err)
	}

	balance := account.InitialBalance.Add(sums.Income).Sub(sums.Outcome)
	if err := store.UpdateAccountBalance(ctx, accountID, balance); err != nil {
		return decimal.Zero, fmt.Errorf("recompute balance: %w", err)
	}

	slog.Debug("recomputed balance",
		"account", accountID, "balance", balance,
		"income", sums.Income, "outcome", sums.Outcome)
	return balance, nil
}

func (s *Service) invalidate(ownerID int64) {
	if s.invalidator != nil {
		s.invalidator.InvalidateOwner(ownerID)
	}
}
