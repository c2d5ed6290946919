package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joshsymonds/tally/internal/common"
	"github.com/joshsymonds/tally/internal/model"
	"github.com/joshsymonds/tally/internal/service"
)

// maxDescriptionLength bounds transaction descriptions, matching the column
// limit of the relational schema this store replaces.
const maxDescriptionLength = 255

const transactionColumns = `id, owner_id, account_id, category_id, type, amount, date, description, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (*model.Transaction, error) {
	var txn model.Transaction
	var accountID, categoryID sql.NullInt64
	var amountStr, dateStr string

	err := row.Scan(
		&txn.ID, &txn.OwnerID, &accountID, &categoryID, &txn.Type,
		&amountStr, &dateStr, &txn.Description, &txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if accountID.Valid {
		txn.AccountID = &accountID.Int64
	}
	if categoryID.Valid {
		txn.CategoryID = &categoryID.Int64
	}
	if txn.Amount, err = parseAmount(amountStr); err != nil {
		return nil, err
	}
	if txn.Date, err = parseDate(dateStr); err != nil {
		return nil, err
	}
	return &txn, nil
}

func validateTransactionWrite(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if err := validateOwner(txn.OwnerID); err != nil {
		return err
	}
	if err := validateTransactionType(txn.Type); err != nil {
		return err
	}
	if !txn.Amount.IsPositive() {
		return fmt.Errorf("%w: got %s", common.ErrNonPositiveAmount, txn.Amount)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: date", ErrNilParameter)
	}
	if len(txn.Description) > maxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters",
			common.ErrValidation, maxDescriptionLength)
	}
	return nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

// SaveTransaction inserts a ledger entry and returns it with its assigned
// id. Referential validation (account/category existence, type match)
// belongs to the ledger service; this is the raw row write.
func (q *queries) SaveTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTransactionWrite(txn); err != nil {
		return nil, err
	}

	result, err := q.db.ExecContext(ctx, `
		INSERT INTO transactions (owner_id, account_id, category_id, type, amount, date, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		txn.OwnerID, nullableID(txn.AccountID), nullableID(txn.CategoryID),
		txn.Type, txn.Amount.String(), formatDate(txn.Date), txn.Description,
	)
	if err != nil {
		return nil, wrapWriteError(err, "transaction")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction id: %w", err)
	}

	saved, err := q.GetTransactionByID(ctx, id, txn.OwnerID)
	if err != nil {
		return nil, err
	}

	slog.Debug("saved transaction",
		"id", id, "owner", txn.OwnerID, "type", txn.Type, "amount", txn.Amount)
	return saved, nil
}

// GetTransactionByID returns a transaction owned by the given user.
func (q *queries) GetTransactionByID(ctx context.Context, id, ownerID int64) (*model.Transaction, error) {
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
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND owner_id = ?`,
		id, ownerID)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return txn, nil
}

// GetTransactions returns the owner's transactions matching the filter,
// newest first.
func (q *queries) GetTransactions(ctx context.Context, ownerID int64, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}
	if filter.Type != "" {
		if err := validateTransactionType(filter.Type); err != nil {
			return nil, err
		}
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + transactionColumns + ` FROM transactions WHERE owner_id = ?`)
	args := []any{ownerID}

	if filter.StartDate != nil {
		sb.WriteString(` AND date >= ?`)
		args = append(args, formatDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		sb.WriteString(` AND date <= ?`)
		args = append(args, formatDate(*filter.EndDate))
	}
	if filter.AccountID != nil {
		sb.WriteString(` AND account_id = ?`)
		args = append(args, *filter.AccountID)
	}
	if filter.CategoryID != nil {
		sb.WriteString(` AND category_id = ?`)
		args = append(args, *filter.CategoryID)
	}
	if filter.Type != "" {
		sb.WriteString(` AND type = ?`)
		args = append(args, filter.Type)
	}

	sb.WriteString(` ORDER BY date DESC, id DESC`)
	if filter.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			sb.WriteString(` OFFSET ?`)
			args = append(args, filter.Offset)
		}
	}

	rows, err := q.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", scanErr)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	slog.Debug("retrieved transactions", "owner", ownerID, "count", len(transactions))
	return transactions, nil
}

// DeleteTransaction removes a transaction owned by the given user.
func (q *queries) DeleteTransaction(ctx context.Context, id, ownerID int64) error {
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
		`DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check transaction delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %d: %w", id, common.ErrNotFound)
	}

	slog.Debug("deleted transaction", "id", id, "owner", ownerID)
	return nil
}

// MatchingTransactionExists reports whether a transaction identical in
// (owner, account, amount, type, category, date) already exists. The
// recurring materializer uses it to stay idempotent across re-runs.
func (q *queries) MatchingTransactionExists(ctx context.Context, txn *model.Transaction) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateTransactionWrite(txn); err != nil {
		return false, err
	}

	query := `SELECT COUNT(*) FROM transactions
		WHERE owner_id = ? AND type = ? AND amount = ? AND date = ?`
	args := []any{txn.OwnerID, txn.Type, txn.Amount.String(), formatDate(txn.Date)}

	if txn.AccountID != nil {
		query += ` AND account_id = ?`
		args = append(args, *txn.AccountID)
	} else {
		query += ` AND account_id IS NULL`
	}
	if txn.CategoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, *txn.CategoryID)
	} else {
		query += ` AND category_id IS NULL`
	}

	var count int
	if err := q.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check for matching transaction: %w", err)
	}
	return count > 0, nil
}
