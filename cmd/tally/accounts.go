package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joshsymonds/tally/internal/cli"
	"github.com/joshsymonds/tally/internal/model"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
		Long:  `Create, list, disable, and delete the accounts transactions settle against.`,
	}

	cmd.AddCommand(addAccountCmd())
	cmd.AddCommand(listAccountsCmd())
	cmd.AddCommand(disableAccountCmd())
	cmd.AddCommand(deleteAccountCmd())

	return cmd
}

func addAccountCmd() *cobra.Command {
	var (
		accountType    string
		currency       string
		initialBalance string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			owner, err := currentOwner()
			if err != nil {
				return err
			}

			balance, err := parseAmountArg(initialBalance, "--initial-balance")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			account, err := store.CreateAccount(ctx, &model.Account{
				OwnerID:        owner,
				Name:           args[0],
				Type:           model.AccountType(accountType),
				Currency:       currency,
				InitialBalance: balance,
			})
			if err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Created account %q (id %d) with balance %s %s",
				account.Name, account.ID, formatMoney(account.Balance), account.Currency)))
			return nil
		},
	}

	cmd.Flags().StringVar(&accountType, "type", string(model.AccountTypeBank),
		"account type (bank, cash, credit_card, investment, savings, wallet)")
	cmd.Flags().StringVar(&currency, "currency", "USD", "currency code")
	cmd.Flags().StringVar(&initialBalance, "initial-balance", "0", "starting balance")
	return cmd
}

func listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
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

			accounts, err := store.GetAccounts(ctx, owner)
			if err != nil {
				return fmt.Errorf("failed to get accounts: %w", err)
			}

			if len(accounts) == 0 {
				fmt.Println(cli.InfoStyle.Render("No accounts found. Use 'tally accounts add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("ID"),
				cli.HeaderStyle.Render("Name"),
				cli.HeaderStyle.Render("Type"),
				cli.HeaderStyle.Render("Currency"),
				cli.HeaderStyle.Render("Balance"),
				cli.HeaderStyle.Render("Active"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4), strings.Repeat("-", 20), strings.Repeat("-", 12),
				strings.Repeat("-", 8), strings.Repeat("-", 12), strings.Repeat("-", 6))

			for _, account := range accounts {
				active := "yes"
				if !account.IsActive {
					active = cli.SubtleStyle.Render("no")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					account.ID, account.Name, account.Type, account.Currency,
					formatMoney(account.Balance), active)
			}
			return nil
		},
	}
}

func disableAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <id>",
		Short: "Soft-disable an account",
		Long:  `Mark an account inactive. Accounts with transaction history cannot be deleted; disable them instead.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			owner, err := currentOwner()
			if err != nil {
				return err
			}

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid account id %q: %w", args[0], err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SetAccountActive(ctx, id, owner, false); err != nil {
				return fmt.Errorf("failed to disable account: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Disabled account %d", id)))
			return nil
		},
	}
}

func deleteAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account with no transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			owner, err := currentOwner()
			if err != nil {
				return err
			}

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid account id %q: %w", args[0], err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteAccount(ctx, id, owner); err != nil {
				return fmt.Errorf("failed to delete account: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted account %d", id)))
			return nil
		},
	}
}
