package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/joshsymonds/tally/internal/model"
	"github.com/joshsymonds/tally/internal/service"
	"github.com/joshsymonds/tally/internal/testutil"
)

func createTemplate(t *testing.T, db *testutil.TestDB, template model.RecurringTransaction) *model.RecurringTransaction {
	t.Helper()

	if template.OwnerID == 0 {
		template.OwnerID = testutil.TestOwner
	}
	created, err := db.Storage.CreateRecurringTransaction(context.Background(), &template)
	if err != nil {
		t.Fatalf("CreateRecurringTransaction failed: %v", err)
	}
	return created
}

func TestMaterialize_CreatesDueOccurrences(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db.Storage, nil)
	ctx := context.Background()

	account := db.MustCreateAccount("Checking", "1000")

	createTemplate(t, db, model.RecurringTransaction{
		AccountID: &account.ID,
		Type:      model.TypeOutcome,
		Frequency: model.FrequencyDaily,
		Amount:    testutil.Amount(t, "5"),
		StartDate: testutil.Date(2024, 6, 1),
	})
	// Monthly on the 15th: not due on the 3rd.
	createTemplate(t, db, model.RecurringTransaction{
		Type:      model.TypeOutcome,
		Frequency: model.FrequencyMonthly,
		Amount:    testutil.Amount(t, "1200"),
		StartDate: testutil.Date(2024, 1, 15),
	})

	result, err := svc.MaterializeDueOccurrences(ctx, testutil.Date(2024, 6, 3))
	if err != nil {
		t.Fatalf("MaterializeDueOccurrences failed: %v", err)
	}
	if result.Created != 1 || result.Skipped != 0 || result.Failed != 0 {
		t.Errorf("result = %+v, want 1 created", result)
	}

	// The daily occurrence went through the full write path, balance included.
	got, err := db.Storage.GetAccountByID(ctx, account.ID, testutil.TestOwner)
	if err != nil {
		t.Fatalf("GetAccountByID failed: %v", err)
	}
	if !got.Balance.Equal(testutil.Amount(t, "995")) {
		t.Errorf("balance = %s, want 995", got.Balance)
	}
}

func TestMaterialize_RerunIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db.Storage, nil)
	ctx := context.Background()

	createTemplate(t, db, model.RecurringTransaction{
		Type:      model.TypeOutcome,
		Frequency: model.FrequencyDaily,
		Amount:    testutil.Amount(t, "5"),
		StartDate: testutil.Date(2024, 6, 1),
	})

	day := testutil.Date(2024, 6, 3)
	first, err := svc.MaterializeDueOccurrences(ctx, day)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := svc.MaterializeDueOccurrences(ctx, day)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if first.Created != 1 {
		t.Errorf("first run created %d, want 1", first.Created)
	}
	if second.Created != 0 || second.Skipped != 1 {
		t.Errorf("second run = %+v, want 0 created 1 skipped", second)
	}

	txns, err := db.Storage.GetTransactions(ctx, testutil.TestOwner, service.TransactionFilter{})
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if len(txns) != 1 {
		t.Errorf("got %d transactions after two runs, want 1", len(txns))
	}

	// A different day creates a fresh occurrence.
	third, err := svc.MaterializeDueOccurrences(ctx, testutil.Date(2024, 6, 4))
	if err != nil {
		t.Fatalf("third run failed: %v", err)
	}
	if third.Created != 1 {
		t.Errorf("third run created %d, want 1", third.Created)
	}
}

func TestMaterialize_FrequencyRules(t *testing.T) {
	tests := []struct {
		name        string
		frequency   model.Frequency
		start       []int // year, month, day
		asOf        []int
		wantCreated int
	}{
		{"weekly due on monday", model.FrequencyWeekly, []int{2024, 6, 1}, []int{2024, 6, 3}, 1},
		{"weekly not due midweek", model.FrequencyWeekly, []int{2024, 6, 1}, []int{2024, 6, 5}, 0},
		{"monthly due on start day", model.FrequencyMonthly, []int{2024, 1, 15}, []int{2024, 6, 15}, 1},
		{"monthly not due on other days", model.FrequencyMonthly, []int{2024, 1, 15}, []int{2024, 6, 16}, 0},
		{"yearly due on anniversary", model.FrequencyYearly, []int{2020, 3, 10}, []int{2024, 3, 10}, 1},
		{"yearly not due otherwise", model.FrequencyYearly, []int{2020, 3, 10}, []int{2024, 3, 11}, 0},
		{"not due before start", model.FrequencyDaily, []int{2024, 7, 1}, []int{2024, 6, 30}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			svc := New(db.Storage, nil)

			createTemplate(t, db, model.RecurringTransaction{
				Type:      model.TypeOutcome,
				Frequency: tt.frequency,
				Amount:    testutil.Amount(t, "10"),
				StartDate: testutil.Date(tt.start[0], time.Month(tt.start[1]), tt.start[2]),
			})

			result, err := svc.MaterializeDueOccurrences(context.Background(),
				testutil.Date(tt.asOf[0], time.Month(tt.asOf[1]), tt.asOf[2]))
			if err != nil {
				t.Fatalf("MaterializeDueOccurrences failed: %v", err)
			}
			if result.Created != tt.wantCreated {
				t.Errorf("created = %d, want %d", result.Created, tt.wantCreated)
			}
		})
	}
}

func TestMaterialize_EndDateWindow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db.Storage, nil)
	ctx := context.Background()

	end := testutil.Date(2024, 6, 10)
	createTemplate(t, db, model.RecurringTransaction{
		Type:      model.TypeOutcome,
		Frequency: model.FrequencyDaily,
		Amount:    testutil.Amount(t, "5"),
		StartDate: testutil.Date(2024, 6, 1),
		EndDate:   &end,
	})

	// Due on the final day of the window.
	result, err := svc.MaterializeDueOccurrences(ctx, end)
	if err != nil {
		t.Fatalf("MaterializeDueOccurrences failed: %v", err)
	}
	if result.Created != 1 {
		t.Errorf("on end date: created = %d, want 1", result.Created)
	}

	// Past the end date nothing materializes.
	result, err = svc.MaterializeDueOccurrences(ctx, testutil.Date(2024, 6, 11))
	if err != nil {
		t.Fatalf("MaterializeDueOccurrences failed: %v", err)
	}
	if result.Created != 0 {
		t.Errorf("past end date: created = %d, want 0", result.Created)
	}
}

func TestMaterialize_FailureIsolation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db.Storage, nil)
	ctx := context.Background()

	// The income category makes the outcome template fail validation at
	// materialization time.
	salary := db.MustCreateCategory("Salary", model.TypeIncome)
	createTemplate(t, db, model.RecurringTransaction{
		CategoryID: &salary.ID,
		Type:       model.TypeOutcome,
		Frequency:  model.FrequencyDaily,
		Amount:     testutil.Amount(t, "5"),
		StartDate:  testutil.Date(2024, 6, 1),
	})
	createTemplate(t, db, model.RecurringTransaction{
		Type:      model.TypeOutcome,
		Frequency: model.FrequencyDaily,
		Amount:    testutil.Amount(t, "7"),
		StartDate: testutil.Date(2024, 6, 1),
	})

	result, err := svc.MaterializeDueOccurrences(ctx, testutil.Date(2024, 6, 3))
	if err != nil {
		t.Fatalf("MaterializeDueOccurrences failed: %v", err)
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
	if result.Created != 1 {
		t.Errorf("created = %d, want 1 (healthy template still runs)", result.Created)
	}
}
