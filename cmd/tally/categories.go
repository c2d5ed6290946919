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

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage transaction categories",
		Long:  `List, add, and delete categories. System categories are shared across users and read-only.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())
	cmd.AddCommand(seedCategoriesCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	var typeFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List visible categories",
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

			var categories []model.Category
			if typeFilter != "" {
				categoryType, typeErr := parseTransactionType(typeFilter)
				if typeErr != nil {
					return typeErr
				}
				categories, err = store.GetCategoriesByType(ctx, owner, categoryType)
			} else {
				categories, err = store.GetCategories(ctx, owner)
			}
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			if len(categories) == 0 {
				fmt.Println(cli.InfoStyle.Render("No categories found. Use 'tally categories add' or 'tally categories seed'."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("ID"),
				cli.HeaderStyle.Render("Name"),
				cli.HeaderStyle.Render("Type"),
				cli.HeaderStyle.Render("System"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4), strings.Repeat("-", 20),
				strings.Repeat("-", 8), strings.Repeat("-", 6))

			for _, category := range categories {
				system := ""
				if category.IsSystem {
					system = cli.SubtleStyle.Render("yes")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", category.ID, category.Name, category.Type, system)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&typeFilter, "type", "", "restrict to one type (income, outcome)")
	return cmd
}

func addCategoryCmd() *cobra.Command {
	var categoryType string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			owner, err := currentOwner()
			if err != nil {
				return err
			}

			parsedType, err := parseTransactionType(categoryType)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			category, err := store.CreateCategory(ctx, &model.Category{
				OwnerID: &owner,
				Name:    args[0],
				Type:    parsedType,
			})
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Created %s category %q (id %d)", category.Type, category.Name, category.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&categoryType, "type", string(model.TypeOutcome), "category type (income, outcome)")
	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			owner, err := currentOwner()
			if err != nil {
				return err
			}

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid category id %q: %w", args[0], err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteCategory(ctx, id, owner); err != nil {
				return fmt.Errorf("failed to delete category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted category %d", id)))
			return nil
		},
	}
}

func seedCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the default system categories",
		Long:  `Insert the built-in system category set. Already-present categories are left untouched, so re-running is safe.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			created, err := store.SeedSystemCategories(ctx, model.DefaultSystemCategories())
			if err != nil {
				return fmt.Errorf("failed to seed categories: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Seeded %d system categories", created)))
			return nil
		},
	}
}
