package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshsymonds/tally/internal/cli"
	"github.com/joshsymonds/tally/internal/model"
	"github.com/joshsymonds/tally/internal/service"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Manage transactions",
		Long:  `Record, list, and delete ledger transactions. Writes keep account balances consistent automatically.`,
	}

	cmd.AddCommand(addTxCmd())
	cmd.AddCommand(listTxCmd())
	cmd.AddCommand(deleteTxCmd())
	cmd.AddCommand(generateTxCmd())

	return cmd
}

// filterFlags holds the shared transaction filter flag set used by the
// list and stats commands.
type filterFlags struct {
	from       string
	to         string
	txType     string
	accountID  int64
	categoryID int64
	limit      int
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "only transactions on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "only transactions on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.txType, "type", "", "only one type (income, outcome)")
	cmd.Flags().Int64Var(&f.accountID, "account", 0, "only transactions of this account")
	cmd.Flags().Int64Var(&f.categoryID, "category", 0, "only transactions of this category")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum number of rows (0 = all)")
}

func (f *filterFlags) build() (service.TransactionFilter, error) {
	filter := service.TransactionFilter{
		AccountID:  optionalID(f.accountID),
		CategoryID: optionalID(f.categoryID),
		Limit:      f.limit,
	}

	start, err := parseOptionalDate(f.from, "--from")
	if err != nil {
		return filter, err
	}
	filter.StartDate = start

	end, err := parseOptionalDate(f.to, "--to")
	if err != nil {
		return filter, err
	}
	filter.EndDate = end

	if f.txType != "" {
		txType, typeErr := parseTransactionType(f.txType)
		if typeErr != nil {
			return filter, typeErr
		}
		filter.Type = txType
	}
	return filter, nil
}

func addTxCmd() *cobra.Command {
	var (
		amount      string
		txType      string
		date        string
		accountID   int64
		categoryID  int64
		description string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			owner, err := currentOwner()
			if err != nil {
				return err
			}

			parsedAmount, err := parseAmountArg(amount, "--amount")
			if err != nil {
				return err
			}
			parsedType, err := parseTransactionType(txType)
			if err != nil {
				return err
			}

			when := time.Now().UTC()
			if date != "" {
				when, err = parseDateArg(date, "--date")
				if err != nil {
					return err
				}
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			ledgerSvc, _ := initServices(store)
			txn, err := ledgerSvc.CreateTransaction(ctx, &model.Transaction{
				OwnerID:     owner,
				AccountID:   optionalID(accountID),
				CategoryID:  optionalID(categoryID),
				Type:        parsedType,
				Amount:      parsedAmount,
				Date:        when,
				Description: description,
			})
			if err != nil {
				return fmt.Errorf("failed to record transaction: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Recorded %s of %s on %s (id %d)",
				txn.Type, formatMoney(txn.Amount), txn.DateKey(), txn.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "transaction amount (required)")
	cmd.Flags().StringVar(&txType, "type", string(model.TypeOutcome), "transaction type (income, outcome)")
	cmd.Flags().StringVar(&date, "date", "", "calendar date (YYYY-MM-DD, default today)")
	cmd.Flags().Int64Var(&accountID, "account", 0, "account id")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "category id")
	cmd.Flags().StringVar(&description, "description", "", "free-form description")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func listTxCmd() *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			owner, err := currentOwner()
			if err != nil {
				return err
			}

			filter, err := flags.build()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			txns, err := store.GetTransactions(ctx, owner, filter)
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}

			if len(txns) == 0 {
				fmt.Println(cli.InfoStyle.Render("No transactions match."))
				return nil
			}

			categories, err := store.GetCategories(ctx, owner)
			if err != nil {
				return fmt.Errorf("failed to load categories: %w", err)
			}
			names := make(map[int64]string, len(categories))
			for _, category := range categories {
				names[category.ID] = category.Name
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("ID"),
				cli.HeaderStyle.Render("Date"),
				cli.HeaderStyle.Render("Type"),
				cli.HeaderStyle.Render("Amount"),
				cli.HeaderStyle.Render("Category"),
				cli.HeaderStyle.Render("Description"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4), strings.Repeat("-", 10), strings.Repeat("-", 8),
				strings.Repeat("-", 12), strings.Repeat("-", 16), strings.Repeat("-", 24))

			for i := range txns {
				txn := &txns[i]
				category := ""
				if txn.CategoryID != nil {
					category = names[*txn.CategoryID]
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					txn.ID, txn.DateKey(), txn.Type, formatMoney(txn.Amount),
					category, txn.Description)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func deleteTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			owner, err := currentOwner()
			if err != nil {
				return err
			}

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid transaction id %q: %w", args[0], err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			ledgerSvc, _ := initServices(store)
			if err := ledgerSvc.DeleteTransaction(ctx, id, owner); err != nil {
				return fmt.Errorf("failed to delete transaction: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted transaction %d", id)))
			return nil
		},
	}
}
