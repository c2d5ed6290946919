package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/joshsymonds/tally/internal/common"
	"github.com/joshsymonds/tally/internal/model"
	"github.com/joshsymonds/tally/internal/service"
	"github.com/joshsymonds/tally/internal/testutil"
)

type recordingInvalidator struct {
	owners []int64
}

func (r *recordingInvalidator) InvalidateOwner(ownerID int64) {
	r.owners = append(r.owners, ownerID)
}

func TestCreateTransaction_BalanceMaintenance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db.Storage, nil)
	ctx := context.Background()

	account := db.MustCreateAccount("Checking", "100")

	steps := []struct {
		amount      string
		txType      model.TransactionType
		wantBalance string
	}{
		{"50", model.TypeIncome, "150"},
		{"30", model.TypeOutcome, "120"},
		{"50", model.TypeOutcome, "70"},
	}

	for _, step := range steps {
		if _, err := svc.CreateTransaction(ctx, &model.Transaction{
			OwnerID:   testutil.TestOwner,
			AccountID: &account.ID,
			Type:      step.txType,
			Amount:    testutil.Amount(t, step.amount),
			Date:      testutil.Date(2024, 6, 1),
		}); err != nil {
			t.Fatalf("CreateTransaction(%s %s) failed: %v", step.txType, step.amount, err)
		}

		got, err := db.Storage.GetAccountByID(ctx, account.ID, testutil.TestOwner)
		if err != nil {
			t.Fatalf("GetAccountByID failed: %v", err)
		}
		if !got.Balance.Equal(testutil.Amount(t, step.wantBalance)) {
			t.Errorf("after %s %s: balance = %s, want %s",
				step.txType, step.amount, got.Balance, step.wantBalance)
		}
	}
}

func TestDeleteTransaction_RestoresBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db.Storage, nil)
	ctx := context.Background()

	account := db.MustCreateAccount("Checking", "100")

	saved, err := svc.CreateTransaction(ctx, &model.Transaction{
		OwnerID:   testutil.TestOwner,
		AccountID: &account.ID,
		Type:      model.TypeOutcome,
		Amount:    testutil.Amount(t, "40"),
		Date:      testutil.Date(2024, 6, 1),
	})
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}

	if err := svc.DeleteTransaction(ctx, saved.ID, testutil.TestOwner); err != nil {
		t.Fatalf("DeleteTransaction failed: %v", err)
	}

	got, err := db.Storage.GetAccountByID(ctx, account.ID, testutil.TestOwner)
	if err != nil {
		t.Fatalf("GetAccountByID failed: %v", err)
	}
	if !got.Balance.Equal(testutil.Amount(t, "100")) {
		t.Errorf("balance = %s, want 100 after delete", got.Balance)
	}
}

func TestCreateTransaction_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db.Storage, nil)
	ctx := context.Background()

	account := db.MustCreateAccount("Checking", "100")
	salary := db.MustCreateCategory("Salary", model.TypeIncome)

	tests := []struct {
		name    string
		txn     model.Transaction
		wantErr error
	}{
		{
			name: "zero amount",
			txn: model.Transaction{
				OwnerID: testutil.TestOwner,
				Type:    model.TypeOutcome,
				Date:    testutil.Date(2024, 6, 1),
			},
			wantErr: common.ErrNonPositiveAmount,
		},
		{
			name: "category type mismatch",
			txn: model.Transaction{
				OwnerID:    testutil.TestOwner,
				CategoryID: &salary.ID,
				Type:       model.TypeOutcome,
				Amount:     testutil.Amount(t, "10"),
				Date:       testutil.Date(2024, 6, 1),
			},
			wantErr: common.ErrTypeMismatch,
		},
		{
			name: "unknown category",
			txn: model.Transaction{
				OwnerID:    testutil.TestOwner,
				CategoryID: ptr(int64(9999)),
				Type:       model.TypeOutcome,
				Amount:     testutil.Amount(t, "10"),
				Date:       testutil.Date(2024, 6, 1),
			},
			wantErr: common.ErrNotFound,
		},
		{
			name: "foreign account",
			txn: model.Transaction{
				OwnerID:   2,
				AccountID: &account.ID,
				Type:      model.TypeOutcome,
				Amount:    testutil.Amount(t, "10"),
				Date:      testutil.Date(2024, 6, 1),
			},
			wantErr: common.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(ctx, &tt.txn)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Nothing was persisted and the balance is untouched.
	txns, err := db.Storage.GetTransactions(ctx, testutil.TestOwner, service.TransactionFilter{})
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if len(txns) != 0 {
		t.Errorf("got %d transactions after rejected writes, want 0", len(txns))
	}
	got, err := db.Storage.GetAccountByID(ctx, account.ID, testutil.TestOwner)
	if err != nil {
		t.Fatalf("GetAccountByID failed: %v", err)
	}
	if !got.Balance.Equal(testutil.Amount(t, "100")) {
		t.Errorf("balance = %s, want untouched 100", got.Balance)
	}
}

func TestCreateTransaction_ForeignCategoryHiddenNotMismatched(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db.Storage, nil)
	ctx := context.Background()

	// A category owned by someone else must read as not-found, without
	// leaking whether it exists.
	other := int64(2)
	foreign, err := db.Storage.CreateCategory(ctx, &model.Category{
		OwnerID: &other,
		Name:    "Private",
		Type:    model.TypeOutcome,
	})
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}

	_, err = svc.CreateTransaction(ctx, &model.Transaction{
		OwnerID:    testutil.TestOwner,
		CategoryID: &foreign.ID,
		Type:       model.TypeOutcome,
		Amount:     testutil.Amount(t, "10"),
		Date:       testutil.Date(2024, 6, 1),
	})
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCreateTransaction_WithoutAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db.Storage, nil)
	ctx := context.Background()

	saved, err := svc.CreateTransaction(ctx, &model.Transaction{
		OwnerID: testutil.TestOwner,
		Type:    model.TypeOutcome,
		Amount:  testutil.Amount(t, "12"),
		Date:    testutil.Date(2024, 6, 1),
	})
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if saved.AccountID != nil {
		t.Errorf("account id = %v, want nil", saved.AccountID)
	}
}

func TestWrites_InvalidateReportCache(t *testing.T) {
	db := testutil.SetupTestDB(t)
	inv := &recordingInvalidator{}
	svc := New(db.Storage, inv)
	ctx := context.Background()

	saved, err := svc.CreateTransaction(ctx, &model.Transaction{
		OwnerID: testutil.TestOwner,
		Type:    model.TypeOutcome,
		Amount:  testutil.Amount(t, "5"),
		Date:    testutil.Date(2024, 6, 1),
	})
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if err := svc.DeleteTransaction(ctx, saved.ID, testutil.TestOwner); err != nil {
		t.Fatalf("DeleteTransaction failed: %v", err)
	}

	if len(inv.owners) != 2 {
		t.Fatalf("invalidations = %v, want one per committed write", inv.owners)
	}
	for _, owner := range inv.owners {
		if owner != testutil.TestOwner {
			t.Errorf("invalidated owner %d, want %d", owner, testutil.TestOwner)
		}
	}

	// A rejected write must not invalidate anything.
	if _, err := svc.CreateTransaction(ctx, &model.Transaction{
		OwnerID: testutil.TestOwner,
		Type:    model.TypeOutcome,
		Date:    testutil.Date(2024, 6, 1),
	}); err == nil {
		t.Fatal("expected validation error")
	}
	if len(inv.owners) != 2 {
		t.Errorf("invalidations = %v, rejected write must not add one", inv.owners)
	}
}

func TestRecomputeBalance_RepairsDrift(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db.Storage, nil)
	ctx := context.Background()

	account := db.MustCreateAccount("Checking", "100")
	db.MustSaveTransaction(model.Transaction{
		AccountID: &account.ID,
		Type:      model.TypeIncome,
		Amount:    testutil.Amount(t, "25"),
		Date:      testutil.Date(2024, 6, 1),
	})

	// The raw save bypassed balance maintenance; repair converges it.
	balance, err := svc.RecomputeBalance(ctx, account.ID, testutil.TestOwner)
	if err != nil {
		t.Fatalf("RecomputeBalance failed: %v", err)
	}
	if !balance.Equal(testutil.Amount(t, "125")) {
		t.Errorf("balance = %s, want 125", balance)
	}
}

func ptr[T any](v T) *T {
	return &v
}
