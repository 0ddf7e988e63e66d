package store

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
)

// TxManager runs work inside a database transaction.
type TxManager interface {
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
}

// Manager owns the bun handle shared by every repository.
type Manager struct {
	db *bun.DB
}

var _ TxManager = (*Manager)(nil)

func NewManager(db *bun.DB) *Manager {
	return &Manager{db: db}
}

func (m *Manager) DB() *bun.DB {
	return m.db
}

func (m *Manager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m *Manager) Close() error {
	return m.db.Close()
}
