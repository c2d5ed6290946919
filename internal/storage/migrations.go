package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS accounts (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					owner_id INTEGER NOT NULL,
					name TEXT NOT NULL,
					type TEXT NOT NULL,
					currency TEXT NOT NULL DEFAULT 'USD',
					initial_balance TEXT NOT NULL DEFAULT '0',
					balance TEXT NOT NULL DEFAULT '0',
					is_active BOOLEAN DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_accounts_owner ON accounts(owner_id)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					owner_id INTEGER,
					name TEXT NOT NULL,
					type TEXT NOT NULL,
					is_system BOOLEAN DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(owner_id, name)
				)`,
				// UNIQUE treats NULLs as distinct; system categories need
				// their own global name uniqueness.
				`CREATE UNIQUE INDEX idx_categories_system_name ON categories(name) WHERE owner_id IS NULL`,
				`CREATE INDEX idx_categories_owner ON categories(owner_id)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					owner_id INTEGER NOT NULL,
					account_id INTEGER REFERENCES accounts(id),
					category_id INTEGER REFERENCES categories(id),
					type TEXT NOT NULL,
					amount TEXT NOT NULL CHECK (CAST(amount AS NUMERIC) > 0),
					date TEXT NOT NULL,
					description TEXT DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_owner ON transactions(owner_id)`,
				`CREATE INDEX idx_transactions_account ON transactions(account_id)`,
				`CREATE INDEX idx_transactions_category ON transactions(category_id)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,

				`CREATE TABLE IF NOT EXISTS recurring_transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					owner_id INTEGER NOT NULL,
					account_id INTEGER REFERENCES accounts(id),
					category_id INTEGER REFERENCES categories(id),
					type TEXT NOT NULL,
					amount TEXT NOT NULL,
					description TEXT DEFAULT '',
					start_date TEXT NOT NULL,
					end_date TEXT,
					frequency TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_recurring_owner ON recurring_transactions(owner_id)`,
				`CREATE INDEX idx_recurring_start ON recurring_transactions(start_date)`,

				`CREATE TABLE IF NOT EXISTS budgets (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					owner_id INTEGER NOT NULL,
					name TEXT NOT NULL,
					period_type TEXT NOT NULL DEFAULT 'custom',
					start_date TEXT NOT NULL,
					end_date TEXT NOT NULL,
					total_income_limit TEXT,
					total_expense_limit TEXT,
					is_active BOOLEAN DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_budgets_owner ON budgets(owner_id)`,

				`CREATE TABLE IF NOT EXISTS budget_category_limits (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					budget_id INTEGER NOT NULL REFERENCES budgets(id) ON DELETE CASCADE,
					category_id INTEGER NOT NULL REFERENCES categories(id),
					limit_amount TEXT NOT NULL,
					UNIQUE(budget_id, category_id)
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add translation keys to categories",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				ALTER TABLE categories
				ADD COLUMN translation_key TEXT DEFAULT ''
			`)
			if err != nil {
				return fmt.Errorf("failed to add translation_key column: %w", err)
			}
			return nil
		},
	},
}

// Migrate applies any pending schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.conn.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.conn.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.conn.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
