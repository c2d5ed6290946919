package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/joshsymonds/tally/internal/common"
	"github.com/joshsymonds/tally/internal/model"
	"github.com/joshsymonds/tally/internal/service"
)

const accountColumns = `id, owner_id, name, type, currency, initial_balance, balance, is_active, created_at`

func scanAccount(row interface{ Scan(...any) error }) (*model.Account, error) {
	var account model.Account
	var initialBalance, balance string

	err := row.Scan(
		&account.ID, &account.OwnerID, &account.Name, &account.Type,
		&account.Currency, &initialBalance, &balance,
		&account.IsActive, &account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if account.InitialBalance, err = parseAmount(initialBalance); err != nil {
		return nil, err
	}
	if account.Balance, err = parseAmount(balance); err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateAccount persists a new account. The derived balance starts equal to
// the initial balance since no transactions reference the account yet.
func (q *queries) CreateAccount(ctx context.Context, account *model.Account) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account", ErrNilParameter)
	}
	if err := validateOwner(account.OwnerID); err != nil {
		return nil, err
	}
	if err := validateString(account.Name, "name"); err != nil {
		return nil, err
	}
	if !account.Type.IsValid() {
		return nil, fmt.Errorf("invalid account type: %q", account.Type)
	}

	currency := account.Currency
	if currency == "" {
		currency = "USD"
	}

	result, err := q.db.ExecContext(ctx, `
		INSERT INTO accounts (owner_id, name, type, currency, initial_balance, balance, is_active)
		VALUES (?, ?, ?, ?, ?, ?, 1)`,
		account.OwnerID, account.Name, account.Type, currency,
		account.InitialBalance.String(), account.InitialBalance.String(),
	)
	if err != nil {
		return nil, wrapWriteError(err, "account")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get account id: %w", err)
	}

	created, err := q.getAccountByIDOnly(ctx, id)
	if err != nil {
		return nil, err
	}

	slog.Debug("created account", "id", id, "owner", account.OwnerID, "name", account.Name)
	return created, nil
}

func (q *queries) getAccountByIDOnly(ctx context.Context, id int64) (*model.Account, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)

	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return account, nil
}

// GetAccountByID returns an account owned by the given user.
func (q *queries) GetAccountByID(ctx context.Context, id, ownerID int64) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}

	row := q.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ? AND owner_id = ?`,
		id, ownerID)

	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return account, nil
}

// GetAccounts returns all accounts owned by the given user, active first.
func (q *queries) GetAccounts(ctx context.Context, ownerID int64) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE owner_id = ?
		 ORDER BY is_active DESC, name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		account, scanErr := scanAccount(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan account: %w", scanErr)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccountBalance persists only the derived balance column.
func (q *queries) UpdateAccountBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(accountID, "accountID"); err != nil {
		return err
	}

	result, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET balance = ? WHERE id = ?`,
		balance.String(), accountID)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check balance update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("account %d: %w", accountID, common.ErrNotFound)
	}
	return nil
}

// SetAccountActive soft-enables or soft-disables an account. Accounts with
// transaction history are disabled rather than deleted.
func (q *queries) SetAccountActive(ctx context.Context, id, ownerID int64, active bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if err := validateOwner(ownerID); err != nil {
		return err
	}

	result, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET is_active = ? WHERE id = ? AND owner_id = ?`,
		active, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check account update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("account %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// DeleteAccount hard-deletes an account. Only permitted when no
// transactions reference it; otherwise callers should disable it instead.
func (q *queries) DeleteAccount(ctx context.Context, id, ownerID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if err := validateOwner(ownerID); err != nil {
		return err
	}

	count, err := q.CountTransactionsByAccount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("account %d has %d transactions: %w", id, count, common.ErrAccountInUse)
	}

	result, err := q.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check account delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("account %d: %w", id, common.ErrNotFound)
	}

	slog.Debug("deleted account", "id", id, "owner", ownerID)
	return nil
}

// SumAccountTransactions scans every transaction referencing the account
// and totals amounts per type using exact decimal arithmetic. Summing in Go
// rather than SQL keeps float rounding out of monetary values.
func (q *queries) SumAccountTransactions(ctx context.Context, accountID int64) (service.AccountSums, error) {
	sums := service.AccountSums{Income: decimal.Zero, Outcome: decimal.Zero}

	if err := validateContext(ctx); err != nil {
		return sums, err
	}
	if err := validateID(accountID, "accountID"); err != nil {
		return sums, err
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT type, amount FROM transactions WHERE account_id = ?`, accountID)
	if err != nil {
		return sums, fmt.Errorf("failed to query account transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var txnType model.TransactionType
		var amountStr string
		if scanErr := rows.Scan(&txnType, &amountStr); scanErr != nil {
			return sums, fmt.Errorf("failed to scan transaction amount: %w", scanErr)
		}

		amount, parseErr := parseAmount(amountStr)
		if parseErr != nil {
			return sums, parseErr
		}

		switch txnType {
		case model.TypeIncome:
			sums.Income = sums.Income.Add(amount)
		case model.TypeOutcome:
			sums.Outcome = sums.Outcome.Add(amount)
		}
	}
	if err := rows.Err(); err != nil {
		return sums, fmt.Errorf("error iterating account transactions: %w", err)
	}
	return sums, nil
}

// CountTransactionsByAccount returns how many transactions reference the account.
func (q *queries) CountTransactionsByAccount(ctx context.Context, accountID int64) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateID(accountID, "accountID"); err != nil {
		return 0, err
	}

	var count int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account_id = ?`, accountID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count account transactions: %w", err)
	}
	return count, nil
}
