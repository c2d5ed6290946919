package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/joshsymonds/tally/internal/common"
	"github.com/joshsymonds/tally/internal/model"
)

func createTestCategory(t *testing.T, store *SQLiteStorage, ownerID int64, name string, categoryType model.TransactionType) *model.Category {
	t.Helper()

	category, err := store.CreateCategory(context.Background(), &model.Category{
		OwnerID: &ownerID,
		Name:    name,
		Type:    categoryType,
	})
	if err != nil {
		t.Fatalf("CreateCategory(%s) failed: %v", name, err)
	}
	return category
}

func TestCreateCategory_DuplicateName(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	owner := int64(1)

	createTestCategory(t, store, owner, "Food", model.TypeOutcome)

	_, err := store.CreateCategory(ctx, &model.Category{
		OwnerID: &owner,
		Name:    "Food",
		Type:    model.TypeOutcome,
	})
	if !errors.Is(err, common.ErrDuplicateEntry) {
		t.Errorf("duplicate create error = %v, want ErrDuplicateEntry", err)
	}

	// The same name under a different owner is fine.
	other := int64(2)
	if _, err := store.CreateCategory(ctx, &model.Category{
		OwnerID: &other,
		Name:    "Food",
		Type:    model.TypeOutcome,
	}); err != nil {
		t.Errorf("same name for other owner failed: %v", err)
	}
}

func TestGetCategories_SystemAndOwn(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	if _, err := store.SeedSystemCategories(ctx, []model.Category{
		{Name: "Food", Type: model.TypeOutcome, TranslationKey: "food"},
		{Name: "Salary", Type: model.TypeIncome, TranslationKey: "salary"},
	}); err != nil {
		t.Fatalf("SeedSystemCategories failed: %v", err)
	}
	createTestCategory(t, store, 1, "Hobby", model.TypeOutcome)
	createTestCategory(t, store, 2, "Private", model.TypeOutcome)

	categories, err := store.GetCategories(ctx, 1)
	if err != nil {
		t.Fatalf("GetCategories failed: %v", err)
	}

	byName := make(map[string]model.Category, len(categories))
	for _, c := range categories {
		byName[c.Name] = c
	}
	if len(categories) != 3 {
		t.Errorf("got %d categories, want 3 (two system + own)", len(categories))
	}
	if _, ok := byName["Private"]; ok {
		t.Error("another owner's category must not be visible")
	}
	if c, ok := byName["Food"]; !ok || !c.IsSystem {
		t.Error("system category missing or not flagged as system")
	}
}

func TestGetCategoriesByType(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	createTestCategory(t, store, 1, "Food", model.TypeOutcome)
	createTestCategory(t, store, 1, "Salary", model.TypeIncome)

	expense, err := store.GetCategoriesByType(ctx, 1, model.TypeOutcome)
	if err != nil {
		t.Fatalf("GetCategoriesByType failed: %v", err)
	}
	if len(expense) != 1 || expense[0].Name != "Food" {
		t.Errorf("expense categories = %v, want only Food", expense)
	}
}

func TestUpdateCategory(t *testing.T) {
	t.Run("rename", func(t *testing.T) {
		store := createTestStorage(t)
		ctx := context.Background()

		category := createTestCategory(t, store, 1, "Fod", model.TypeOutcome)
		if err := store.UpdateCategory(ctx, category.ID, 1, "Food", model.TypeOutcome); err != nil {
			t.Fatalf("UpdateCategory failed: %v", err)
		}

		got, err := store.GetCategoryByID(ctx, category.ID)
		if err != nil {
			t.Fatalf("GetCategoryByID failed: %v", err)
		}
		if got.Name != "Food" {
			t.Errorf("name = %q, want Food", got.Name)
		}
	})

	t.Run("type change allowed while unreferenced", func(t *testing.T) {
		store := createTestStorage(t)
		ctx := context.Background()

		category := createTestCategory(t, store, 1, "Misc", model.TypeOutcome)
		if err := store.UpdateCategory(ctx, category.ID, 1, "Misc", model.TypeIncome); err != nil {
			t.Errorf("type change on unreferenced category failed: %v", err)
		}
	})

	t.Run("type frozen once referenced", func(t *testing.T) {
		store := createTestStorage(t)
		ctx := context.Background()

		category := createTestCategory(t, store, 1, "Food", model.TypeOutcome)
		if _, err := store.SaveTransaction(ctx, &model.Transaction{
			OwnerID:    1,
			CategoryID: &category.ID,
			Type:       model.TypeOutcome,
			Amount:     decimal.NewFromInt(10),
			Date:       testDate(2024, 6, 1),
		}); err != nil {
			t.Fatalf("SaveTransaction failed: %v", err)
		}

		err := store.UpdateCategory(ctx, category.ID, 1, "Food", model.TypeIncome)
		if !errors.Is(err, common.ErrCategoryInUse) {
			t.Errorf("type change error = %v, want ErrCategoryInUse", err)
		}

		// Renaming stays possible while the type is frozen.
		if err := store.UpdateCategory(ctx, category.ID, 1, "Groceries", model.TypeOutcome); err != nil {
			t.Errorf("rename of referenced category failed: %v", err)
		}
	})

	t.Run("system categories are immutable", func(t *testing.T) {
		store := createTestStorage(t)
		ctx := context.Background()

		if _, err := store.SeedSystemCategories(ctx, []model.Category{
			{Name: "Food", Type: model.TypeOutcome},
		}); err != nil {
			t.Fatalf("SeedSystemCategories failed: %v", err)
		}
		categories, err := store.GetCategories(ctx, 1)
		if err != nil {
			t.Fatalf("GetCategories failed: %v", err)
		}

		err = store.UpdateCategory(ctx, categories[0].ID, 1, "Renamed", model.TypeOutcome)
		if !errors.Is(err, common.ErrSystemCategory) {
			t.Errorf("system update error = %v, want ErrSystemCategory", err)
		}
	})
}

func TestDeleteCategory(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	t.Run("referenced category is protected", func(t *testing.T) {
		category := createTestCategory(t, store, 1, "Food", model.TypeOutcome)
		if _, err := store.SaveTransaction(ctx, &model.Transaction{
			OwnerID:    1,
			CategoryID: &category.ID,
			Type:       model.TypeOutcome,
			Amount:     decimal.NewFromInt(10),
			Date:       testDate(2024, 6, 1),
		}); err != nil {
			t.Fatalf("SaveTransaction failed: %v", err)
		}

		err := store.DeleteCategory(ctx, category.ID, 1)
		if !errors.Is(err, common.ErrCategoryInUse) {
			t.Errorf("delete error = %v, want ErrCategoryInUse", err)
		}
	})

	t.Run("foreign category looks like not found", func(t *testing.T) {
		category := createTestCategory(t, store, 2, "Foreign", model.TypeOutcome)

		err := store.DeleteCategory(ctx, category.ID, 1)
		if !errors.Is(err, common.ErrNotFound) {
			t.Errorf("cross-owner delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("unreferenced category deletes", func(t *testing.T) {
		category := createTestCategory(t, store, 1, "Fleeting", model.TypeOutcome)
		if err := store.DeleteCategory(ctx, category.ID, 1); err != nil {
			t.Fatalf("DeleteCategory failed: %v", err)
		}
	})
}

func TestSeedSystemCategories_Idempotent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	seed := model.DefaultSystemCategories()

	created, err := store.SeedSystemCategories(ctx, seed)
	if err != nil {
		t.Fatalf("first seed failed: %v", err)
	}
	if created != len(seed) {
		t.Errorf("first seed created %d, want %d", created, len(seed))
	}

	created, err = store.SeedSystemCategories(ctx, seed)
	if err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	if created != 0 {
		t.Errorf("second seed created %d, want 0", created)
	}
}
