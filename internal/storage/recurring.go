package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshsymonds/tally/internal/common"
	"github.com/joshsymonds/tally/internal/model"
)

const recurringColumns = `id, owner_id, account_id, category_id, type, amount, description, start_date, end_date, frequency, created_at`

func scanRecurring(row interface{ Scan(...any) error }) (*model.RecurringTransaction, error) {
	var template model.RecurringTransaction
	var accountID, categoryID sql.NullInt64
	var amountStr, startStr string
	var endStr sql.NullString

	err := row.Scan(
		&template.ID, &template.OwnerID, &accountID, &categoryID,
		&template.Type, &amountStr, &template.Description,
		&startStr, &endStr, &template.Frequency, &template.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if accountID.Valid {
		template.AccountID = &accountID.Int64
	}
	if categoryID.Valid {
		template.CategoryID = &categoryID.Int64
	}
	if template.Amount, err = parseAmount(amountStr); err != nil {
		return nil, err
	}
	if template.StartDate, err = parseDate(startStr); err != nil {
		return nil, err
	}
	if endStr.Valid {
		end, parseErr := parseDate(endStr.String)
		if parseErr != nil {
			return nil, parseErr
		}
		template.EndDate = &end
	}
	return &template, nil
}

// CreateRecurringTransaction persists a new recurring template.
func (q *queries) CreateRecurringTransaction(ctx context.Context, template *model.RecurringTransaction) (*model.RecurringTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if template == nil {
		return nil, fmt.Errorf("%w: template", ErrNilParameter)
	}
	if err := validateOwner(template.OwnerID); err != nil {
		return nil, err
	}
	if err := validateTransactionType(template.Type); err != nil {
		return nil, err
	}
	if !template.Frequency.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFrequency, template.Frequency)
	}
	if !template.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", common.ErrNonPositiveAmount, template.Amount)
	}
	if template.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: startDate", ErrNilParameter)
	}
	if template.EndDate != nil && !template.StartDate.Before(*template.EndDate) {
		return nil, ErrInvalidDateRange
	}

	var end any
	if template.EndDate != nil {
		end = formatDate(*template.EndDate)
	}

	result, err := q.db.ExecContext(ctx, `
		INSERT INTO recurring_transactions
			(owner_id, account_id, category_id, type, amount, description, start_date, end_date, frequency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		template.OwnerID, nullableID(template.AccountID), nullableID(template.CategoryID),
		template.Type, template.Amount.String(), template.Description,
		formatDate(template.StartDate), end, template.Frequency,
	)
	if err != nil {
		return nil, wrapWriteError(err, "recurring transaction")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get recurring transaction id: %w", err)
	}

	row := q.db.QueryRowContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions WHERE id = ?`, id)
	created, err := scanRecurring(row)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read recurring transaction: %w", err)
	}

	slog.Debug("created recurring transaction",
		"id", id, "owner", template.OwnerID, "frequency", template.Frequency)
	return created, nil
}

// GetRecurringTransactions returns all templates owned by the given user.
func (q *queries) GetRecurringTransactions(ctx context.Context, ownerID int64) ([]model.RecurringTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions
		 WHERE owner_id = ? ORDER BY id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring transactions: %w", err)
	}
	defer rows.Close()

	return collectRecurring(rows)
}

// GetRecurringTransactionsStartedBy returns every template, across all
// owners, whose start date has been reached by the given day. The scheduler
// applies the per-frequency dueness rules on top of this set.
func (q *queries) GetRecurringTransactionsStartedBy(ctx context.Context, asOf time.Time) ([]model.RecurringTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions
		 WHERE start_date <= ? ORDER BY id`, formatDate(asOf))
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring transactions: %w", err)
	}
	defer rows.Close()

	return collectRecurring(rows)
}

func collectRecurring(rows *sql.Rows) ([]model.RecurringTransaction, error) {
	var templates []model.RecurringTransaction
	for rows.Next() {
		template, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring transaction: %w", err)
		}
		templates = append(templates, *template)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recurring transactions: %w", err)
	}
	return templates, nil
}

// DeleteRecurringTransaction removes a template owned by the given user.
func (q *queries) DeleteRecurringTransaction(ctx context.Context, id, ownerID int64) error {
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
		`DELETE FROM recurring_transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete recurring transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check recurring transaction delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("recurring transaction %d: %w", id, common.ErrNotFound)
	}
	return nil
}
