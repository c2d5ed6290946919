package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshsymonds/tally/internal/common"
	"github.com/joshsymonds/tally/internal/model"
)

const budgetColumns = `id, owner_id, name, period_type, start_date, end_date, total_income_limit, total_expense_limit, is_active, created_at`

func scanBudget(row interface{ Scan(...any) error }) (*model.Budget, error) {
	var budget model.Budget
	var startStr, endStr string
	var incomeLimit, expenseLimit sql.NullString

	err := row.Scan(
		&budget.ID, &budget.OwnerID, &budget.Name, &budget.PeriodType,
		&startStr, &endStr, &incomeLimit, &expenseLimit,
		&budget.IsActive, &budget.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if budget.StartDate, err = parseDate(startStr); err != nil {
		return nil, err
	}
	if budget.EndDate, err = parseDate(endStr); err != nil {
		return nil, err
	}
	if incomeLimit.Valid {
		limit, parseErr := parseAmount(incomeLimit.String)
		if parseErr != nil {
			return nil, parseErr
		}
		budget.TotalIncomeLimit = &limit
	}
	if expenseLimit.Valid {
		limit, parseErr := parseAmount(expenseLimit.String)
		if parseErr != nil {
			return nil, parseErr
		}
		budget.TotalExpenseLimit = &limit
	}
	return &budget, nil
}

// CreateBudget persists a new budget after validating its date range.
func (q *queries) CreateBudget(ctx context.Context, budget *model.Budget) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, fmt.Errorf("%w: budget", ErrNilParameter)
	}
	if err := validateOwner(budget.OwnerID); err != nil {
		return nil, err
	}
	if err := validateString(budget.Name, "name"); err != nil {
		return nil, err
	}
	if err := budget.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	periodType := budget.PeriodType
	if periodType == "" {
		periodType = "custom"
	}

	var incomeLimit, expenseLimit any
	if budget.TotalIncomeLimit != nil {
		incomeLimit = budget.TotalIncomeLimit.String()
	}
	if budget.TotalExpenseLimit != nil {
		expenseLimit = budget.TotalExpenseLimit.String()
	}

	result, err := q.db.ExecContext(ctx, `
		INSERT INTO budgets
			(owner_id, name, period_type, start_date, end_date, total_income_limit, total_expense_limit, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1)`,
		budget.OwnerID, budget.Name, periodType,
		formatDate(budget.StartDate), formatDate(budget.EndDate),
		incomeLimit, expenseLimit,
	)
	if err != nil {
		return nil, wrapWriteError(err, "budget")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get budget id: %w", err)
	}

	created, err := q.GetBudgetByID(ctx, id, budget.OwnerID)
	if err != nil {
		return nil, err
	}

	slog.Debug("created budget", "id", id, "owner", budget.OwnerID, "name", budget.Name)
	return created, nil
}

// GetBudgetByID returns a budget owned by the given user.
func (q *queries) GetBudgetByID(ctx context.Context, id, ownerID int64) (*model.Budget, error) {
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
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ? AND owner_id = ?`,
		id, ownerID)

	budget, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("budget %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query budget: %w", err)
	}
	return budget, nil
}

// GetBudgets returns all budgets owned by the given user, active first.
func (q *queries) GetBudgets(ctx context.Context, ownerID int64) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets
		 WHERE owner_id = ?
		 ORDER BY is_active DESC, start_date DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []model.Budget
	for rows.Next() {
		budget, scanErr := scanBudget(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", scanErr)
		}
		budgets = append(budgets, *budget)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	return budgets, nil
}

// DeleteBudget removes a budget and, via cascade, its category limits.
func (q *queries) DeleteBudget(ctx context.Context, id, ownerID int64) error {
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
		`DELETE FROM budgets WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check budget delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("budget %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// SetBudgetCategoryLimit inserts or replaces the per-category limit of a
// budget. Each (budget, category) pair holds at most one limit.
func (q *queries) SetBudgetCategoryLimit(ctx context.Context, limit *model.BudgetCategoryLimit) (*model.BudgetCategoryLimit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit == nil {
		return nil, fmt.Errorf("%w: limit", ErrNilParameter)
	}
	if err := validateID(limit.BudgetID, "budgetID"); err != nil {
		return nil, err
	}
	if err := validateID(limit.CategoryID, "categoryID"); err != nil {
		return nil, err
	}
	if !limit.LimitAmount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", common.ErrNonPositiveAmount, limit.LimitAmount)
	}

	result, err := q.db.ExecContext(ctx, `
		INSERT INTO budget_category_limits (budget_id, category_id, limit_amount)
		VALUES (?, ?, ?)
		ON CONFLICT(budget_id, category_id) DO UPDATE SET limit_amount = excluded.limit_amount`,
		limit.BudgetID, limit.CategoryID, limit.LimitAmount.String(),
	)
	if err != nil {
		return nil, wrapWriteError(err, "budget category limit")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get limit id: %w", err)
	}

	saved := *limit
	saved.ID = id
	return &saved, nil
}

// GetBudgetCategoryLimits returns all per-category limits of a budget.
func (q *queries) GetBudgetCategoryLimits(ctx context.Context, budgetID int64) ([]model.BudgetCategoryLimit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(budgetID, "budgetID"); err != nil {
		return nil, err
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT id, budget_id, category_id, limit_amount
		 FROM budget_category_limits WHERE budget_id = ? ORDER BY id`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget category limits: %w", err)
	}
	defer rows.Close()

	var limits []model.BudgetCategoryLimit
	for rows.Next() {
		var limit model.BudgetCategoryLimit
		var amountStr string
		if scanErr := rows.Scan(&limit.ID, &limit.BudgetID, &limit.CategoryID, &amountStr); scanErr != nil {
			return nil, fmt.Errorf("failed to scan budget category limit: %w", scanErr)
		}
		amount, parseErr := parseAmount(amountStr)
		if parseErr != nil {
			return nil, parseErr
		}
		limit.LimitAmount = amount
		limits = append(limits, limit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget category limits: %w", err)
	}
	return limits, nil
}
