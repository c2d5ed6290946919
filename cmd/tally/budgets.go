package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/joshsymonds/tally/internal/budget"
	"github.com/joshsymonds/tally/internal/cli"
	"github.com/joshsymonds/tally/internal/common"
	"github.com/joshsymonds/tally/internal/model"
)

func budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Manage budgets",
		Long: `Define budgets over a date range, set per-category spending limits, and
report on how execution compares against them.`,
	}

	cmd.AddCommand(addBudgetCmd())
	cmd.AddCommand(listBudgetsCmd())
	cmd.AddCommand(deleteBudgetCmd())
	cmd.AddCommand(setLimitCmd())
	cmd.AddCommand(budgetReportCmd())
	cmd.AddCommand(budgetCategoriesCmd())

	return cmd
}

func addBudgetCmd() *cobra.Command {
	var (
		name         string
		startDate    string
		endDate      string
		periodType   string
		expenseLimit string
		incomeLimit  string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a budget",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			owner, err := currentOwner()
			if err != nil {
				return err
			}

			start, err := parseDateArg(startDate, "--start")
			if err != nil {
				return err
			}
			end, err := parseDateArg(endDate, "--end")
			if err != nil {
				return err
			}

			b := &model.Budget{
				OwnerID:    owner,
				Name:       name,
				StartDate:  start,
				EndDate:    end,
				PeriodType: periodType,
				IsActive:   true,
			}
			if expenseLimit != "" {
				limit, limitErr := parseAmountArg(expenseLimit, "--expense-limit")
				if limitErr != nil {
					return limitErr
				}
				b.TotalExpenseLimit = &limit
			}
			if incomeLimit != "" {
				limit, limitErr := parseAmountArg(incomeLimit, "--income-limit")
				if limitErr != nil {
					return limitErr
				}
				b.TotalIncomeLimit = &limit
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			created, err := store.CreateBudget(ctx, b)
			if err != nil {
				return fmt.Errorf("failed to create budget: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Created budget %q for %s to %s (id %d)",
				created.Name, created.StartDate.Format("2006-01-02"),
				created.EndDate.Format("2006-01-02"), created.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "budget name (required)")
	cmd.Flags().StringVar(&startDate, "start", "", "period start date (YYYY-MM-DD, required)")
	cmd.Flags().StringVar(&endDate, "end", "", "period end date (YYYY-MM-DD, required)")
	cmd.Flags().StringVar(&periodType, "period-type", "custom", "descriptive period label (monthly, custom, ...)")
	cmd.Flags().StringVar(&expenseLimit, "expense-limit", "", "total expense limit (optional)")
	cmd.Flags().StringVar(&incomeLimit, "income-limit", "", "total income target (optional)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func listBudgetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List budgets",
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

			budgets, err := store.GetBudgets(ctx, owner)
			if err != nil {
				return fmt.Errorf("failed to list budgets: %w", err)
			}

			if len(budgets) == 0 {
				fmt.Println(cli.InfoStyle.Render("No budgets."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("ID"),
				cli.HeaderStyle.Render("Name"),
				cli.HeaderStyle.Render("Start"),
				cli.HeaderStyle.Render("End"),
				cli.HeaderStyle.Render("Expense Limit"),
				cli.HeaderStyle.Render("Income Target"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4), strings.Repeat("-", 16), strings.Repeat("-", 10),
				strings.Repeat("-", 10), strings.Repeat("-", 13), strings.Repeat("-", 13))

			for i := range budgets {
				b := &budgets[i]
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					b.ID, b.Name, b.StartDate.Format("2006-01-02"),
					b.EndDate.Format("2006-01-02"),
					formatOptionalMoney(b.TotalExpenseLimit),
					formatOptionalMoney(b.TotalIncomeLimit))
			}
			return nil
		},
	}
}

func deleteBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a budget and its category limits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			owner, err := currentOwner()
			if err != nil {
				return err
			}

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid budget id %q: %w", args[0], err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteBudget(ctx, id, owner); err != nil {
				return fmt.Errorf("failed to delete budget: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted budget %d", id)))
			return nil
		},
	}
}

func setLimitCmd() *cobra.Command {
	var (
		budgetID   int64
		categoryID int64
		amount     string
	)

	cmd := &cobra.Command{
		Use:   "set-limit",
		Short: "Set or replace a per-category spending limit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			owner, err := currentOwner()
			if err != nil {
				return err
			}

			limit, err := parseAmountArg(amount, "--amount")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if _, err := store.GetBudgetByID(ctx, budgetID, owner); err != nil {
				return fmt.Errorf("failed to load budget: %w", err)
			}

			// Only expense categories may carry a limit.
			category, err := store.GetCategoryByID(ctx, categoryID)
			if err != nil {
				return fmt.Errorf("failed to load category: %w", err)
			}
			if !category.VisibleTo(owner) {
				return fmt.Errorf("category %d: %w", categoryID, common.ErrNotFound)
			}
			if category.Type != model.TypeOutcome {
				return fmt.Errorf("category %q is an income category and cannot have a spending limit", category.Name)
			}

			if _, err := store.SetBudgetCategoryLimit(ctx, &model.BudgetCategoryLimit{
				BudgetID:    budgetID,
				CategoryID:  categoryID,
				LimitAmount: limit,
			}); err != nil {
				return fmt.Errorf("failed to set category limit: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Limit for %q set to %s", category.Name, formatMoney(limit))))
			return nil
		},
	}

	cmd.Flags().Int64Var(&budgetID, "budget", 0, "budget id (required)")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "expense category id (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "limit amount (required)")
	_ = cmd.MarkFlagRequired("budget")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func budgetReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <id>",
		Short: "Show budget execution against its limits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			owner, err := currentOwner()
			if err != nil {
				return err
			}

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid budget id %q: %w", args[0], err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			_, reportsSvc := initServices(store)
			report, err := reportsSvc.BudgetReport(ctx, owner, id)
			if err != nil {
				return fmt.Errorf("failed to build budget report: %w", err)
			}

			fmt.Println(cli.FormatTitle("Budget Report"))
			fmt.Printf("Spent:  %s\n", formatMoney(report.Spent))
			fmt.Printf("Income: %s\n", formatMoney(report.Income))
			if report.Remaining != nil {
				line := budgetRemainingLine(report)
				if report.Remaining.IsNegative() {
					fmt.Println(cli.FormatWarning(line))
				} else {
					fmt.Println(line)
				}
			} else {
				fmt.Println(cli.SubtleStyle.Render("No total expense limit set."))
			}

			if len(report.Categories) == 0 {
				return nil
			}

			fmt.Println()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Category"),
				cli.HeaderStyle.Render("Limit"),
				cli.HeaderStyle.Render("Spent"),
				cli.HeaderStyle.Render("Remaining"),
				cli.HeaderStyle.Render("Used"),
				cli.HeaderStyle.Render(""))

			for _, c := range report.Categories {
				marker := ""
				if c.OverBudget {
					marker = cli.ErrorStyle.Render("over budget")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s%%\t%s\n",
					c.Category, formatMoney(c.Limit), formatMoney(c.Spent),
					formatMoney(c.Remaining), c.PercentDisplay.StringFixed(1), marker)
			}
			return nil
		},
	}
}

func budgetCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories eligible for budget limits",
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

			_, reportsSvc := initServices(store)
			categories, err := reportsSvc.EligibleBudgetCategories(ctx, owner)
			if err != nil {
				return fmt.Errorf("failed to list eligible categories: %w", err)
			}

			for _, category := range categories {
				fmt.Printf("%d\t%s\n", category.ID, category.Name)
			}
			return nil
		},
	}
}

func formatOptionalMoney(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return formatMoney(*d)
}

// budgetRemainingLine formats the overall limit line of a budget report.
// Only called when Remaining is set; PercentUsed can still be nil for a
// zero expense limit.
func budgetRemainingLine(r budget.Report) string {
	used := "n/a"
	if r.PercentUsed != nil {
		used = r.PercentUsed.StringFixed(1) + "%"
	}
	return fmt.Sprintf("Remaining: %s of %s (%s used)",
		formatMoney(*r.Remaining), formatMoney(*r.ExpenseLimit), used)
}
