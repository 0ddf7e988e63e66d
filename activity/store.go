package activity

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-staff/apperr"
	"github.com/goliatone/go-staff/store"
)

// Query selects a window of entries, newest first. A positive Since limits
// the result to entries created at or after it.
type Query struct {
	Page  store.Page
	Since time.Time
}

// Store persists entries.
type Store interface {
	Insert(ctx context.Context, entry *Entry) error
	List(ctx context.Context, q Query) ([]*Entry, int, error)
}

// SQLStore keeps entries in the activity_logs table.
type SQLStore struct {
	db bun.IDB
}

var _ Store = (*SQLStore)(nil)

func NewSQLStore(db bun.IDB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Insert(ctx context.Context, entry *Entry) error {
	prepare(entry)
	if _, err := s.db.NewInsert().Model(entry).Exec(ctx); err != nil {
		return apperr.Store(err, "failed to write activity log")
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, q Query) ([]*Entry, int, error) {
	var entries []*Entry
	sel := s.db.NewSelect().Model(&entries)
	if !q.Since.IsZero() {
		sel = sel.Where("?TableAlias.created_at >= ?", q.Since)
	}
	sel = q.Page.Apply(sel.Order("created_at DESC"))

	total, err := sel.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, apperr.Store(err, "failed to list activity logs")
	}
	return entries, total, nil
}

func prepare(entry *Entry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
}

// Validate checks an entry before it is stored.
func (e *Entry) Validate() error {
	return apperr.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(e,
			validation.Field(&e.ActionType, validation.Required, validation.RuneLength(1, MaxActionTypeLength)),
			validation.Field(&e.UserID, validation.Required),
			validation.Field(&e.Description, validation.Required, validation.RuneLength(1, MaxDescriptionLength)),
		)
	}, "invalid activity log")
}
