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
)

func recurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Manage recurring transactions",
		Long: `Manage recurring transaction templates and materialize the occurrences
that are due. Running "recurring run" more than once on the same day is safe;
occurrences that already exist are skipped.`,
	}

	cmd.AddCommand(addRecurringCmd())
	cmd.AddCommand(listRecurringCmd())
	cmd.AddCommand(deleteRecurringCmd())
	cmd.AddCommand(runRecurringCmd())

	return cmd
}

func parseFrequency(value string) (model.Frequency, error) {
	freq := model.Frequency(strings.ToLower(strings.TrimSpace(value)))
	if !freq.IsValid() {
		return "", fmt.Errorf("invalid frequency %q (want daily, weekly, monthly, or yearly)", value)
	}
	return freq, nil
}

func addRecurringCmd() *cobra.Command {
	var (
		amount      string
		txType      string
		frequency   string
		startDate   string
		endDate     string
		accountID   int64
		categoryID  int64
		description string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a recurring transaction template",
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
			parsedFreq, err := parseFrequency(frequency)
			if err != nil {
				return err
			}

			start := time.Now().UTC()
			if startDate != "" {
				start, err = parseDateArg(startDate, "--start")
				if err != nil {
					return err
				}
			}
			end, err := parseOptionalDate(endDate, "--end")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			recurring, err := store.CreateRecurringTransaction(ctx, &model.RecurringTransaction{
				OwnerID:     owner,
				AccountID:   optionalID(accountID),
				CategoryID:  optionalID(categoryID),
				Type:        parsedType,
				Frequency:   parsedFreq,
				Amount:      parsedAmount,
				StartDate:   start,
				EndDate:     end,
				Description: description,
			})
			if err != nil {
				return fmt.Errorf("failed to create recurring transaction: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Added %s %s of %s starting %s (id %d)",
				recurring.Frequency, recurring.Type, formatMoney(recurring.Amount),
				recurring.StartDate.Format("2006-01-02"), recurring.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "transaction amount (required)")
	cmd.Flags().StringVar(&txType, "type", string(model.TypeOutcome), "transaction type (income, outcome)")
	cmd.Flags().StringVar(&frequency, "frequency", "", "daily, weekly, monthly, or yearly (required)")
	cmd.Flags().StringVar(&startDate, "start", "", "first eligible date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&endDate, "end", "", "last eligible date (YYYY-MM-DD, optional)")
	cmd.Flags().Int64Var(&accountID, "account", 0, "account id")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "category id")
	cmd.Flags().StringVar(&description, "description", "", "free-form description")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("frequency")
	return cmd
}

func listRecurringCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recurring transaction templates",
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

			templates, err := store.GetRecurringTransactions(ctx, owner)
			if err != nil {
				return fmt.Errorf("failed to list recurring transactions: %w", err)
			}

			if len(templates) == 0 {
				fmt.Println(cli.InfoStyle.Render("No recurring transactions."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("ID"),
				cli.HeaderStyle.Render("Frequency"),
				cli.HeaderStyle.Render("Type"),
				cli.HeaderStyle.Render("Amount"),
				cli.HeaderStyle.Render("Start"),
				cli.HeaderStyle.Render("End"),
				cli.HeaderStyle.Render("Description"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4), strings.Repeat("-", 9), strings.Repeat("-", 8),
				strings.Repeat("-", 12), strings.Repeat("-", 10), strings.Repeat("-", 10),
				strings.Repeat("-", 24))

			for i := range templates {
				tmpl := &templates[i]
				end := "-"
				if tmpl.EndDate != nil {
					end = tmpl.EndDate.Format("2006-01-02")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					tmpl.ID, tmpl.Frequency, tmpl.Type, formatMoney(tmpl.Amount),
					tmpl.StartDate.Format("2006-01-02"), end, tmpl.Description)
			}
			return nil
		},
	}
}

func deleteRecurringCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recurring transaction template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			owner, err := currentOwner()
			if err != nil {
				return err
			}

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid recurring transaction id %q: %w", args[0], err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteRecurringTransaction(ctx, id, owner); err != nil {
				return fmt.Errorf("failed to delete recurring transaction: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted recurring transaction %d", id)))
			return nil
		},
	}
}

func runRecurringCmd() *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Materialize recurring occurrences that are due",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			when := time.Now().UTC()
			if asOf != "" {
				var err error
				when, err = parseDateArg(asOf, "--as-of")
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
			result, err := ledgerSvc.MaterializeDueOccurrences(ctx, when)
			if err != nil {
				return fmt.Errorf("failed to materialize recurring transactions: %w", err)
			}

			msg := fmt.Sprintf("Created %d, skipped %d already present", result.Created, result.Skipped)
			if result.Failed > 0 {
				fmt.Println(cli.FormatWarning(fmt.Sprintf("%s, %d failed (see log)", msg, result.Failed)))
				return nil
			}
			fmt.Println(cli.FormatSuccess(msg))
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "materialize as of this date (YYYY-MM-DD, default today)")
	return cmd
}
