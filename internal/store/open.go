package store

import (
	"context"
	"embed"
	"fmt"

	"clr-site/internal/core"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// OpenDatabase opens the database selected by cfg without migrating it
func OpenDatabase(ctx context.Context, cfg core.DatabaseConfig, logger *core.Logger) (*core.Database, error) {
	switch cfg.Driver {
	case sqliteDialect.name:
		return openSQLite(ctx, cfg.Path, logger)
	case postgresDialect.name:
		return openPostgres(ctx, cfg.DSN, logger)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// NewMigrator returns a migrator for the schema matching db's driver
func NewMigrator(db *core.Database, logger *core.Logger) (*core.Migrator, error) {
	return core.NewMigrator(db, migrationsFS, "migrations/"+db.Driver(), logger)
}

// New wraps an open database in the matching Store backend
func New(db *core.Database, logger *core.Logger) (Store, error) {
	switch db.Driver() {
	case sqliteDialect.name:
		return NewSQLiteStore(db, logger), nil
	case postgresDialect.name:
		return NewPostgresStore(db, logger), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", db.Driver())
	}
}

// Open opens, migrates and wraps the configured database
func Open(ctx context.Context, cfg core.DatabaseConfig, logger *core.Logger) (Store, error) {
	db, err := OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	migrator, err := NewMigrator(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return New(db, logger)
}
