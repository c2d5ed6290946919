package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/joshsymonds/tally/internal/cli"
	"github.com/joshsymonds/tally/internal/model"
)

// generateTxCmd fills the ledger with random sample transactions. Useful
// for trying out the stats and budget reports against a fresh database.
func generateTxCmd() *cobra.Command {
	var (
		count     int
		days      int
		accountID int64
		seed      int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate random sample transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			owner, err := currentOwner()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			expense, err := store.GetCategoriesByType(ctx, owner, model.TypeOutcome)
			if err != nil {
				return fmt.Errorf("failed to load expense categories: %w", err)
			}
			income, err := store.GetCategoriesByType(ctx, owner, model.TypeIncome)
			if err != nil {
				return fmt.Errorf("failed to load income categories: %w", err)
			}

			rng := rand.New(rand.NewSource(seed))
			if seed == 0 {
				rng = rand.New(rand.NewSource(time.Now().UnixNano()))
			}
			if days < 1 {
				days = 1
			}

			ledgerSvc, _ := initServices(store)
			today := time.Now().UTC()

			for i := 0; i < count; i++ {
				txn := &model.Transaction{
					OwnerID:     owner,
					AccountID:   optionalID(accountID),
					Type:        model.TypeOutcome,
					Date:        today.AddDate(0, 0, -rng.Intn(days)),
					Description: fmt.Sprintf("sample #%d", i+1),
				}

				// Roughly one income per five expenses keeps the sample
				// data looking like a real month.
				if rng.Intn(5) == 0 {
					txn.Type = model.TypeIncome
					txn.Amount = decimal.NewFromInt(int64(500 + rng.Intn(2500)))
					if len(income) > 0 {
						txn.CategoryID = &income[rng.Intn(len(income))].ID
					}
				} else {
					cents := int64(100 + rng.Intn(15000))
					txn.Amount = decimal.New(cents, -2)
					if len(expense) > 0 {
						txn.CategoryID = &expense[rng.Intn(len(expense))].ID
					}
				}

				if _, err := ledgerSvc.CreateTransaction(ctx, txn); err != nil {
					return fmt.Errorf("failed to generate transaction %d: %w", i+1, err)
				}
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Generated %d transactions over the last %d days", count, days)))
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 50, "number of transactions to create")
	cmd.Flags().IntVar(&days, "days", 30, "spread transactions over this many past days")
	cmd.Flags().Int64Var(&accountID, "account", 0, "account id to attach transactions to")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")
	return cmd
}
