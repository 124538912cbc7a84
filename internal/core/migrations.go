package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Migrator applies embedded SQL migrations to a Database.
//
// The underlying migrate instance is never closed here: closing it would
// close the shared *sql.DB owned by the caller.
type Migrator struct {
	m      *migrate.Migrate
	logger *Logger
}

// MigrationStatus represents the current schema version
type MigrationStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

// NewMigrator creates a migrator reading <dir>/*.sql from files
func NewMigrator(db *Database, files fs.FS, dir string, logger *Logger) (*Migrator, error) {
	src, err := iofs.New(files, dir)
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}

	var driver database.Driver
	switch db.Driver() {
	case "sqlite":
		driver, err = sqlite.WithInstance(db.DB, &sqlite.Config{})
	case "postgres":
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	default:
		return nil, fmt.Errorf("no migration driver for %q", db.Driver())
	}
	if err != nil {
		return nil, fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, db.Driver(), driver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}

	return &Migrator{m: m, logger: logger}, nil
}

// Up applies all pending migrations
func (m *Migrator) Up(ctx context.Context) error {
	err := m.m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	status, statusErr := m.Status()
	if statusErr != nil {
		m.logger.WarnContext(ctx, "Failed to fetch migration version", "error", statusErr)
		return nil
	}

	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.InfoContext(ctx, "No migrations to apply", "version", status.Version, "dirty", status.Dirty)
	} else {
		m.logger.InfoContext(ctx, "Database is migrated", "version", status.Version, "dirty", status.Dirty)
	}
	return nil
}

// Down rolls back the most recent migration
func (m *Migrator) Down(ctx context.Context) error {
	if err := m.m.Steps(-1); err != nil {
		return fmt.Errorf("roll back migration: %w", err)
	}

	status, err := m.Status()
	if err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "Rolled back migration", "version", status.Version)
	return nil
}

// Status returns the applied schema version. A fresh database reports 0.
func (m *Migrator) Status() (MigrationStatus, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return MigrationStatus{}, nil
	}
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("read migration version: %w", err)
	}
	return MigrationStatus{Version: version, Dirty: dirty}, nil
}
