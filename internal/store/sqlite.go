package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"clr-site/internal/core"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteStore is the single-node RemoteStore backend
type SQLiteStore struct {
	*sqlStore
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore wraps an open sqlite database
func NewSQLiteStore(db *core.Database, logger *core.Logger) *SQLiteStore {
	return &SQLiteStore{sqlStore: &sqlStore{
		db:       db,
		dialect:  sqliteDialect,
		classify: classifySQLiteError,
		logger:   logger,
	}}
}

func openSQLite(ctx context.Context, path string, logger *core.Logger) (*core.Database, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection serializes writers and keeps an in-memory database alive
	// for the lifetime of the handle.
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	db := core.NewDatabase(conn, sqliteDialect.name, logger)
	if err := db.PingWithTimeout(5 * time.Second); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	logger.InfoContext(ctx, "Opened sqlite database", "path", path)
	return db, nil
}

func classifySQLiteError(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
		}
	}

	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}
	return err
}
