// Package store opens the relational database behind the service, applies
// the embedded goose migrations and exposes transaction and pagination
// helpers shared by the repositories.
package store

import (
	"database/sql"
	"fmt"
	"io"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/goliatone/go-staff/config"
)

// Option customizes Open.
type Option func(*openOptions)

type openOptions struct {
	queryLog io.Writer
}

// WithQueryLog sends bundebug output to w when query debugging is enabled.
func WithQueryLog(w io.Writer) Option {
	return func(o *openOptions) {
		o.queryLog = w
	}
}

// Open connects to the configured database and returns a bun handle. The
// caller owns the handle and must Close it at shutdown.
func Open(cfg config.Database, opts ...Option) (*bun.DB, error) {
	o := &openOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	var db *bun.DB
	switch cfg.Driver {
	case config.DriverSQLite:
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// sqlite serializes writers, a single connection avoids SQLITE_BUSY
		// and keeps in-memory databases alive across queries.
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case config.DriverPostgres:
		sqldb, err := sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	if cfg.Debug {
		hookOpts := []bundebug.Option{bundebug.WithVerbose(true)}
		if o.queryLog != nil {
			hookOpts = append(hookOpts, bundebug.WithWriter(o.queryLog))
		}
		db.AddQueryHook(bundebug.NewQueryHook(hookOpts...))
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
