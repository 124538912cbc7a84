package core

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const queryTimeout = 30 * time.Second

// Database wraps sql.DB with timeouts and transactions
type Database struct {
	*sql.DB
	driver string
	logger *Logger
}

// NewDatabase creates a new database wrapper
func NewDatabase(db *sql.DB, driver string, logger *Logger) *Database {
	return &Database{
		DB:     db,
		driver: driver,
		logger: logger,
	}
}

// Driver returns the database/sql driver name the handle was opened with
func (db *Database) Driver() string {
	return db.driver
}

// Transaction executes fn within a database transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
func (db *Database) Transaction(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	err = fn(tx)
	return err
}

// PingWithTimeout pings the database with a timeout
func (db *Database) PingWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return db.PingContext(ctx)
}

// ExecWithTimeout executes a command with a timeout
func (db *Database) ExecWithTimeout(ctx context.Context, query string, args ...any) (sql.Result, error) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return db.ExecContext(queryCtx, query, args...)
}

// Close logs the final pool stats and closes the database connection
func (db *Database) Close() error {
	db.logStats()
	return db.DB.Close()
}

func (db *Database) logStats() {
	stats := db.Stats()
	db.logger.Info("Closing database connection",
		"driver", db.driver,
		"open_connections", stats.OpenConnections,
		"in_use", stats.InUse,
		"idle", stats.Idle,
		"wait_count", stats.WaitCount,
		"wait_duration", stats.WaitDuration,
	)
}
