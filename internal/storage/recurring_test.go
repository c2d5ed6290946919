package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/joshsymonds/tally/internal/common"
	"github.com/joshsymonds/tally/internal/model"
)

func TestCreateRecurringTransaction(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	t.Run("valid template", func(t *testing.T) {
		end := testDate(2025, 1, 1)
		template, err := store.CreateRecurringTransaction(ctx, &model.RecurringTransaction{
			OwnerID:     1,
			Type:        model.TypeOutcome,
			Frequency:   model.FrequencyMonthly,
			Amount:      dec(t, "1200"),
			StartDate:   testDate(2024, 1, 15),
			EndDate:     &end,
			Description: "rent",
		})
		if err != nil {
			t.Fatalf("CreateRecurringTransaction failed: %v", err)
		}
		if template.ID == 0 {
			t.Error("expected assigned id")
		}
		if template.EndDate == nil || !template.EndDate.Equal(end) {
			t.Errorf("end date = %v, want %s", template.EndDate, end)
		}
	})

	t.Run("open ended template", func(t *testing.T) {
		template, err := store.CreateRecurringTransaction(ctx, &model.RecurringTransaction{
			OwnerID:   1,
			Type:      model.TypeIncome,
			Frequency: model.FrequencyMonthly,
			Amount:    dec(t, "3000"),
			StartDate: testDate(2024, 1, 1),
		})
		if err != nil {
			t.Fatalf("CreateRecurringTransaction failed: %v", err)
		}
		if template.EndDate != nil {
			t.Errorf("end date = %v, want nil", template.EndDate)
		}
	})

	t.Run("end before start", func(t *testing.T) {
		end := testDate(2023, 1, 1)
		_, err := store.CreateRecurringTransaction(ctx, &model.RecurringTransaction{
			OwnerID:   1,
			Type:      model.TypeOutcome,
			Frequency: model.FrequencyDaily,
			Amount:    dec(t, "5"),
			StartDate: testDate(2024, 1, 1),
			EndDate:   &end,
		})
		if !errors.Is(err, ErrInvalidDateRange) {
			t.Errorf("error = %v, want ErrInvalidDateRange", err)
		}
	})

	t.Run("invalid frequency", func(t *testing.T) {
		_, err := store.CreateRecurringTransaction(ctx, &model.RecurringTransaction{
			OwnerID:   1,
			Type:      model.TypeOutcome,
			Frequency: model.Frequency("fortnightly"),
			Amount:    dec(t, "5"),
			StartDate: testDate(2024, 1, 1),
		})
		if !errors.Is(err, ErrInvalidFrequency) {
			t.Errorf("error = %v, want ErrInvalidFrequency", err)
		}
	})
}

func TestGetRecurringTransactionsStartedBy(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	mustCreate := func(ownerID int64, start string) {
		t.Helper()
		startDate, err := parseDate(start)
		if err != nil {
			t.Fatalf("bad date %q: %v", start, err)
		}
		if _, err := store.CreateRecurringTransaction(ctx, &model.RecurringTransaction{
			OwnerID:   ownerID,
			Type:      model.TypeOutcome,
			Frequency: model.FrequencyDaily,
			Amount:    dec(t, "1"),
			StartDate: startDate,
		}); err != nil {
			t.Fatalf("CreateRecurringTransaction failed: %v", err)
		}
	}

	mustCreate(1, "2024-01-01")
	mustCreate(2, "2024-03-01")
	mustCreate(1, "2024-12-01")

	// The scheduler sweep crosses owner boundaries and excludes templates
	// that have not started yet.
	templates, err := store.GetRecurringTransactionsStartedBy(ctx, testDate(2024, 6, 1))
	if err != nil {
		t.Fatalf("GetRecurringTransactionsStartedBy failed: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("got %d templates, want 2", len(templates))
	}
	owners := map[int64]bool{}
	for i := range templates {
		owners[templates[i].OwnerID] = true
	}
	if !owners[1] || !owners[2] {
		t.Errorf("expected templates from both owners, got %v", owners)
	}
}

func TestDeleteRecurringTransaction(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	template, err := store.CreateRecurringTransaction(ctx, &model.RecurringTransaction{
		OwnerID:   1,
		Type:      model.TypeOutcome,
		Frequency: model.FrequencyWeekly,
		Amount:    dec(t, "15"),
		StartDate: testDate(2024, 1, 1),
	})
	if err != nil {
		t.Fatalf("CreateRecurringTransaction failed: %v", err)
	}

	if err := store.DeleteRecurringTransaction(ctx, template.ID, 2); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("cross-owner delete error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteRecurringTransaction(ctx, template.ID, 1); err != nil {
		t.Fatalf("DeleteRecurringTransaction failed: %v", err)
	}

	templates, err := store.GetRecurringTransactions(ctx, 1)
	if err != nil {
		t.Fatalf("GetRecurringTransactions failed: %v", err)
	}
	if len(templates) != 0 {
		t.Errorf("got %d templates after delete, want 0", len(templates))
	}
}
