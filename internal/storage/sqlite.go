package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/joshsymonds/tally/internal/common"
	"github.com/joshsymonds/tally/internal/service"
)

// executor abstracts over *sql.DB and *sql.Tx so every query can run either
// standalone or inside an open transaction.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements every entity operation against an executor. Both the
// storage and its transactions embed it, so the write path sees its own
// uncommitted writes when recomputing balances.
type queries struct {
	db executor
}

// SQLiteStorage implements the service.Storage interface using SQLite.
type SQLiteStorage struct {
	conn   *sql.DB
	dbPath string
	queries
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		conn:    db,
		dbPath:  dbPath,
		queries: queries{db: db},
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.conn.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		queries: queries{db: tx},
	}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx *sql.Tx
	queries
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// dateLayout is how calendar dates are stored. Text ISO dates compare
// lexicographically in chronological order, so range filters work with
// plain string comparison.
const dateLayout = "2006-01-02"

func formatDate(ts time.Time) string {
	return ts.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	ts, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed date %q: %w", s, err)
	}
	return ts, nil
}

// Monetary amounts are stored as exact decimal strings, never floats.
func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed amount %q: %w", s, err)
	}
	return d, nil
}

// isUniqueViolation reports whether the error is a SQLite uniqueness
// constraint failure, surfaced to callers as common.ErrDuplicateEntry.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func wrapWriteError(err error, what string) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", what, common.ErrDuplicateEntry)
	}
	return fmt.Errorf("failed to save %s: %w", what, err)
}
