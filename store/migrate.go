package store

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/goliatone/go-staff/config"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *bun.DB, dir string) error {
	return goose.UpContext(ctx, db.DB, dir)
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, db *bun.DB) error {
	goose.SetBaseFS(GetMigrationsFS())
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(gooseDialect(db)); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// MigrationVersion returns the current schema version.
func MigrationVersion(ctx context.Context, db *bun.DB) (int64, error) {
	goose.SetBaseFS(GetMigrationsFS())
	if err := goose.SetDialect(gooseDialect(db)); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db.DB)
}

func gooseDialect(db *bun.DB) string {
	if db.Dialect().Name() == dialect.PG {
		return "pgx"
	}
	return "sqlite3"
}

// DriverName reports the config driver matching the handle's dialect.
func DriverName(db *bun.DB) string {
	if db.Dialect().Name() == dialect.PG {
		return config.DriverPostgres
	}
	return config.DriverSQLite
}
