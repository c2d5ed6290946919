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

const categoryColumns = `id, owner_id, name, type, is_system, translation_key, created_at`

func scanCategory(row interface{ Scan(...any) error }) (*model.Category, error) {
	var category model.Category
	var ownerID sql.NullInt64

	err := row.Scan(
		&category.ID, &ownerID, &category.Name, &category.Type,
		&category.IsSystem, &category.TranslationKey, &category.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if ownerID.Valid {
		category.OwnerID = &ownerID.Int64
	}
	return &category, nil
}

// CreateCategory persists a new category. User categories must carry an
// owner; system categories (no owner) are reserved for seed tooling.
func (q *queries) CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("%w: category", ErrNilParameter)
	}
	if err := validateString(category.Name, "name"); err != nil {
		return nil, err
	}
	if err := validateTransactionType(category.Type); err != nil {
		return nil, err
	}
	if !category.IsSystem {
		if category.OwnerID == nil {
			return nil, fmt.Errorf("%w: ownerID", ErrNilParameter)
		}
		if err := validateOwner(*category.OwnerID); err != nil {
			return nil, err
		}
	}

	var owner any
	if category.OwnerID != nil {
		owner = *category.OwnerID
	}

	result, err := q.db.ExecContext(ctx, `
		INSERT INTO categories (owner_id, name, type, is_system, translation_key)
		VALUES (?, ?, ?, ?, ?)`,
		owner, category.Name, category.Type, category.IsSystem, category.TranslationKey,
	)
	if err != nil {
		return nil, wrapWriteError(err, "category")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category id: %w", err)
	}

	created, err := q.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	slog.Debug("created category", "id", id, "name", category.Name, "system", category.IsSystem)
	return created, nil
}

// GetCategoryByID returns a category by id. Visibility is the caller's
// concern; the write path checks VisibleTo before accepting a reference.
func (q *queries) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	row := q.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)

	category, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return category, nil
}

// GetCategories returns the categories visible to the owner: system
// categories plus the owner's own.
func (q *queries) GetCategories(ctx context.Context, ownerID int64) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE owner_id = ? OR owner_id IS NULL
		 ORDER BY is_system DESC, name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	return collectCategories(rows)
}

// GetCategoriesByType returns visible categories restricted to one
// transaction type, e.g. the outcome categories offered when building a
// budget.
func (q *queries) GetCategoriesByType(ctx context.Context, ownerID int64, categoryType model.TransactionType) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}
	if err := validateTransactionType(categoryType); err != nil {
		return nil, err
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE (owner_id = ? OR owner_id IS NULL) AND type = ?
		 ORDER BY is_system DESC, name`, ownerID, categoryType)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	return collectCategories(rows)
}

func collectCategories(rows *sql.Rows) ([]model.Category, error) {
	var categories []model.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// UpdateCategory renames or retypes a user category. System categories are
// immutable, and the type cannot change once transactions reference the
// category, since reports assume a category's transactions all match its type.
func (q *queries) UpdateCategory(ctx context.Context, id, ownerID int64, name string, categoryType model.TransactionType) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if err := validateOwner(ownerID); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}
	if err := validateTransactionType(categoryType); err != nil {
		return err
	}

	existing, err := q.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsSystem {
		return fmt.Errorf("category %d: %w", id, common.ErrSystemCategory)
	}
	if existing.OwnerID == nil || *existing.OwnerID != ownerID {
		return fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}

	if existing.Type != categoryType {
		count, countErr := q.CountTransactionsByCategory(ctx, id)
		if countErr != nil {
			return countErr
		}
		if count > 0 {
			return fmt.Errorf("category %d has %d transactions, type is frozen: %w",
				id, count, common.ErrCategoryInUse)
		}
	}

	_, err = q.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, type = ? WHERE id = ? AND owner_id = ?`,
		name, categoryType, id, ownerID)
	if err != nil {
		return wrapWriteError(err, "category")
	}
	return nil
}

// DeleteCategory removes a user category. System categories are protected,
// and a category still referenced by transactions cannot be removed.
func (q *queries) DeleteCategory(ctx context.Context, id, ownerID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if err := validateOwner(ownerID); err != nil {
		return err
	}

	existing, err := q.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsSystem {
		return fmt.Errorf("category %d: %w", id, common.ErrSystemCategory)
	}
	if existing.OwnerID == nil || *existing.OwnerID != ownerID {
		return fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}

	count, err := q.CountTransactionsByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("category %d has %d transactions: %w", id, count, common.ErrCategoryInUse)
	}

	if _, err := q.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND owner_id = ?`, id, ownerID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	slog.Debug("deleted category", "id", id, "owner", ownerID)
	return nil
}

// CountTransactionsByCategory returns how many transactions reference the category.
func (q *queries) CountTransactionsByCategory(ctx context.Context, categoryID int64) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateID(categoryID, "categoryID"); err != nil {
		return 0, err
	}

	var count int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count category transactions: %w", err)
	}
	return count, nil
}

// SeedSystemCategories inserts system categories that do not exist yet and
// returns how many were created. Re-running the seed is a no-op for
// categories already present.
func (q *queries) SeedSystemCategories(ctx context.Context, categories []model.Category) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	created := 0
	for _, category := range categories {
		if err := validateString(category.Name, "name"); err != nil {
			return created, err
		}
		if err := validateTransactionType(category.Type); err != nil {
			return created, err
		}

		result, err := q.db.ExecContext(ctx, `
			INSERT INTO categories (owner_id, name, type, is_system, translation_key)
			SELECT NULL, ?, ?, 1, ?
			WHERE NOT EXISTS (
				SELECT 1 FROM categories WHERE owner_id IS NULL AND name = ?
			)`,
			category.Name, category.Type, category.TranslationKey, category.Name,
		)
		if err != nil {
			return created, fmt.Errorf("failed to seed category %q: %w", category.Name, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return created, fmt.Errorf("failed to check seed insert: %w", err)
		}
		created += int(affected)
	}

	slog.Info("seeded system categories", "created", created, "total", len(categories))
	return created, nil
}
