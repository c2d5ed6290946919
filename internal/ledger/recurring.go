package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshsymonds/tally/internal/model"
)

// MaterializeResult summarizes one scheduler run.
type MaterializeResult struct {
	Created int
	Skipped int
	Failed  int
}

// MaterializeDueOccurrences turns recurring templates into real
// transactions for the given day. A template produces at most one
// transaction per day: before creating, the run checks whether an identical
// (owner, account, amount, type, category, date) transaction already
// exists, which makes re-running the job for the same day a no-op.
//
// Failures are isolated per template: one bad template is logged and
// counted, the rest of the batch still runs.
func (s *Service) MaterializeDueOccurrences(ctx context.Context, asOf time.Time) (MaterializeResult, error) {
	var result MaterializeResult

	asOf = model.NormalizeDate(asOf)
	templates, err := s.storage.GetRecurringTransactionsStartedBy(ctx, asOf)
	if err != nil {
		return result, fmt.Errorf("failed to load recurring templates: %w", err)
	}

	slog.Info("materializing recurring transactions",
		"as_of", asOf.Format("2006-01-02"), "candidates", len(templates))

	for i := range templates {
		template := &templates[i]
		if !template.DueOn(asOf) {
			continue
		}

		txn := model.Transaction{
			OwnerID:     template.OwnerID,
			AccountID:   template.AccountID,
			CategoryID:  template.CategoryID,
			Type:        template.Type,
			Amount:      template.Amount,
			Date:        asOf,
			Description: template.Description,
		}

		exists, checkErr := s.storage.MatchingTransactionExists(ctx, &txn)
		if checkErr != nil {
			result.Failed++
			slog.Error("failed to check for existing occurrence",
				"template", template.ID, "error", checkErr)
			continue
		}
		if exists {
			result.Skipped++
			continue
		}

		if _, createErr := s.CreateTransaction(ctx, &txn); createErr != nil {
			result.Failed++
			slog.Error("failed to materialize occurrence",
				"template", template.ID, "owner", template.OwnerID, "error", createErr)
			continue
		}
		result.Created++
	}

	slog.Info("recurring materialization complete",
		"created", result.Created, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}
