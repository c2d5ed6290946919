package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joshsymonds/tally/internal/cli"
	"github.com/joshsymonds/tally/internal/config"
	"github.com/joshsymonds/tally/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := viper.GetString("database.path")
			if path == "" {
				path = config.DefaultDatabasePath()
			}
			path = config.ExpandPath(path)

			store, err := storage.NewSQLiteStorage(path)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer store.Close()

			if err := store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Database at %s is at schema version %d", path, storage.ExpectedSchemaVersion)))
			return nil
		},
	}
}
