package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joshsymonds/tally/internal/cli"
	"github.com/joshsymonds/tally/internal/stats"
)

func statsCmd() *cobra.Command {
	var (
		flags    filterFlags
		extended bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregated statistics for a period",
		Long: `Summarize income, expenses, and balance for the filtered period, with a
per-day series and expense breakdown by category. With --extended the report
adds category frequency counts and a weekday-by-week spending heatmap.`,
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

			_, reportsSvc := initServices(store)

			if extended {
				result, statsErr := reportsSvc.ExtendedPeriodStats(ctx, owner, filter)
				if statsErr != nil {
					return fmt.Errorf("failed to compute statistics: %w", statsErr)
				}
				renderPeriodStats(result.PeriodStats)
				renderExtendedStats(result)
				return nil
			}

			result, err := reportsSvc.PeriodStats(ctx, owner, filter)
			if err != nil {
				return fmt.Errorf("failed to compute statistics: %w", err)
			}
			renderPeriodStats(result)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&extended, "extended", false, "include frequency counts and the spending heatmap")
	return cmd
}

func renderPeriodStats(s stats.PeriodStats) {
	fmt.Println(cli.FormatTitle("Period Statistics"))
	fmt.Printf("Income:  %s\n", formatMoney(s.TotalIncome))
	fmt.Printf("Expense: %s\n", formatMoney(s.TotalExpense))
	if s.Balance.IsNegative() {
		fmt.Printf("Balance: %s\n", cli.ErrorStyle.Render(formatMoney(s.Balance)))
	} else {
		fmt.Printf("Balance: %s\n", formatMoney(s.Balance))
	}

	if len(s.Labels) > 0 {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			cli.HeaderStyle.Render("Day"),
			cli.HeaderStyle.Render("Income"),
			cli.HeaderStyle.Render("Expense"))
		for i, label := range s.Labels {
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				label, formatMoney(s.IncomeData[i]), formatMoney(s.ExpenseData[i]))
		}
		w.Flush()
	}

	if len(s.ExpenseCategories) > 0 {
		fmt.Println()
		fmt.Println(cli.HeaderStyle.Render("Expenses by category"))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, c := range s.ExpenseCategories {
			fmt.Fprintf(w, "%s\t%s\n", c.Category, formatMoney(c.Total))
		}
		w.Flush()
	}
}

func renderExtendedStats(s stats.ExtendedPeriodStats) {
	if len(s.ExpenseFrequencyCategories) > 0 {
		fmt.Println()
		fmt.Println(cli.HeaderStyle.Render("Expense frequency"))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for i, category := range s.ExpenseFrequencyCategories {
			fmt.Fprintf(w, "%s\t%d\n", category, s.ExpenseFrequencyValues[i])
		}
		w.Flush()
	}

	if len(s.Heatmap) == 0 {
		return
	}

	// Pivot the sparse cell list into a weekday-by-week grid.
	heat := make(map[string]map[string]string, len(s.WeekNames))
	for _, cell := range s.Heatmap {
		row, ok := heat[cell.Weekday]
		if !ok {
			row = make(map[string]string)
			heat[cell.Weekday] = row
		}
		row[cell.Week] = formatMoney(cell.Heat)
	}

	fmt.Println()
	fmt.Println(cli.HeaderStyle.Render(cli.ChartIcon + " Spending heatmap"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "\t%s\n", strings.Join(s.WeekNames, "\t"))
	for _, day := range s.DayNames {
		cells := make([]string, 0, len(s.WeekNames))
		for _, week := range s.WeekNames {
			value := "."
			if row, ok := heat[day]; ok {
				if v, cellOK := row[week]; cellOK {
					value = v
				}
			}
			cells = append(cells, value)
		}
		fmt.Fprintf(w, "%s\t%s\n", day, strings.Join(cells, "\t"))
	}
}
