package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/joshsymonds/tally/internal/common"
	"github.com/joshsymonds/tally/internal/model"
)

func TestCreateAccount(t *testing.T) {
	tests := []struct {
		name    string
		account *model.Account
		wantErr bool
	}{
		{
			name: "valid bank account",
			account: &model.Account{
				OwnerID:        1,
				Name:           "Checking",
				Type:           model.AccountTypeBank,
				InitialBalance: decimal.NewFromInt(100),
			},
		},
		{
			name: "defaults currency to USD",
			account: &model.Account{
				OwnerID: 1,
				Name:    "Wallet",
				Type:    model.AccountTypeWallet,
			},
		},
		{
			name: "negative initial balance is allowed",
			account: &model.Account{
				OwnerID:        1,
				Name:           "Credit Card",
				Type:           model.AccountTypeCreditCard,
				InitialBalance: decimal.NewFromInt(-250),
			},
		},
		{
			name: "missing name",
			account: &model.Account{
				OwnerID: 1,
				Type:    model.AccountTypeBank,
			},
			wantErr: true,
		},
		{
			name: "invalid type",
			account: &model.Account{
				OwnerID: 1,
				Name:    "Mystery",
				Type:    model.AccountType("mattress"),
			},
			wantErr: true,
		},
		{
			name: "missing owner",
			account: &model.Account{
				Name: "Orphan",
				Type: model.AccountTypeBank,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := createTestStorage(t)
			ctx := context.Background()

			created, err := store.CreateAccount(ctx, tt.account)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateAccount failed: %v", err)
			}

			if created.ID == 0 {
				t.Error("expected assigned id")
			}
			if !created.IsActive {
				t.Error("new accounts must start active")
			}
			if !created.Balance.Equal(tt.account.InitialBalance) {
				t.Errorf("balance = %s, want %s", created.Balance, tt.account.InitialBalance)
			}
			if tt.account.Currency == "" && created.Currency != "USD" {
				t.Errorf("currency = %q, want USD default", created.Currency)
			}
		})
	}
}

func TestGetAccountByID_OwnerScoped(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, &model.Account{
		OwnerID: 1,
		Name:    "Checking",
		Type:    model.AccountTypeBank,
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if _, err := store.GetAccountByID(ctx, account.ID, 1); err != nil {
		t.Errorf("owner lookup failed: %v", err)
	}

	// Another owner must not see the account.
	_, err = store.GetAccountByID(ctx, account.ID, 2)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("cross-owner lookup error = %v, want ErrNotFound", err)
	}
}

func TestGetAccounts_ActiveFirst(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		if _, err := store.CreateAccount(ctx, &model.Account{
			OwnerID: 1, Name: name, Type: model.AccountTypeBank,
		}); err != nil {
			t.Fatalf("CreateAccount(%s) failed: %v", name, err)
		}
	}

	accounts, err := store.GetAccounts(ctx, 1)
	if err != nil {
		t.Fatalf("GetAccounts failed: %v", err)
	}
	if len(accounts) != 3 {
		t.Fatalf("got %d accounts, want 3", len(accounts))
	}

	if err := store.SetAccountActive(ctx, accounts[0].ID, 1, false); err != nil {
		t.Fatalf("SetAccountActive failed: %v", err)
	}

	accounts, err = store.GetAccounts(ctx, 1)
	if err != nil {
		t.Fatalf("GetAccounts failed: %v", err)
	}
	if accounts[len(accounts)-1].IsActive {
		t.Error("disabled account should sort last")
	}
}

func TestUpdateAccountBalance(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, &model.Account{
		OwnerID:        1,
		Name:           "Checking",
		Type:           model.AccountTypeBank,
		InitialBalance: decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if err := store.UpdateAccountBalance(ctx, account.ID, dec(t, "42.50")); err != nil {
		t.Fatalf("UpdateAccountBalance failed: %v", err)
	}

	got, err := store.GetAccountByID(ctx, account.ID, 1)
	if err != nil {
		t.Fatalf("GetAccountByID failed: %v", err)
	}
	if !got.Balance.Equal(dec(t, "42.50")) {
		t.Errorf("balance = %s, want 42.50", got.Balance)
	}
	// The initial balance column must stay untouched.
	if !got.InitialBalance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("initial balance = %s, want 100", got.InitialBalance)
	}

	err = store.UpdateAccountBalance(ctx, 9999, decimal.Zero)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("missing account error = %v, want ErrNotFound", err)
	}
}

func TestDeleteAccount_RefusesWithHistory(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, &model.Account{
		OwnerID: 1, Name: "Checking", Type: model.AccountTypeBank,
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if _, err := store.SaveTransaction(ctx, &model.Transaction{
		OwnerID:   1,
		AccountID: &account.ID,
		Type:      model.TypeOutcome,
		Amount:    decimal.NewFromInt(5),
		Date:      testDate(2024, 6, 1),
	}); err != nil {
		t.Fatalf("SaveTransaction failed: %v", err)
	}

	err = store.DeleteAccount(ctx, account.ID, 1)
	if !errors.Is(err, common.ErrAccountInUse) {
		t.Errorf("delete error = %v, want ErrAccountInUse", err)
	}

	// Disabling remains available for accounts with history.
	if err := store.SetAccountActive(ctx, account.ID, 1, false); err != nil {
		t.Errorf("SetAccountActive failed: %v", err)
	}
}

func TestDeleteAccount_WithoutHistory(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, &model.Account{
		OwnerID: 1, Name: "Empty", Type: model.AccountTypeCash,
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if err := store.DeleteAccount(ctx, account.ID, 1); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
	if _, err := store.GetAccountByID(ctx, account.ID, 1); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("lookup after delete = %v, want ErrNotFound", err)
	}
}

func TestSumAccountTransactions_ExactDecimals(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, &model.Account{
		OwnerID: 1, Name: "Checking", Type: model.AccountTypeBank,
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	// 0.1 + 0.2 style values catch any float arithmetic in the sum path.
	amounts := []struct {
		amount string
		txType model.TransactionType
	}{
		{"0.10", model.TypeOutcome},
		{"0.20", model.TypeOutcome},
		{"1000000.01", model.TypeIncome},
		{"0.99", model.TypeIncome},
	}
	for _, a := range amounts {
		if _, err := store.SaveTransaction(ctx, &model.Transaction{
			OwnerID:   1,
			AccountID: &account.ID,
			Type:      a.txType,
			Amount:    dec(t, a.amount),
			Date:      testDate(2024, 6, 1),
		}); err != nil {
			t.Fatalf("SaveTransaction(%s) failed: %v", a.amount, err)
		}
	}

	sums, err := store.SumAccountTransactions(ctx, account.ID)
	if err != nil {
		t.Fatalf("SumAccountTransactions failed: %v", err)
	}
	if !sums.Outcome.Equal(dec(t, "0.30")) {
		t.Errorf("outcome sum = %s, want 0.30", sums.Outcome)
	}
	if !sums.Income.Equal(dec(t, "1000001.00")) {
		t.Errorf("income sum = %s, want 1000001.00", sums.Income)
	}
}
