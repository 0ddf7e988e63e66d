package purchases

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-staff/apperr"
	"github.com/goliatone/go-staff/store"
)

var ErrNotFound = goerrors.New("purchase item not found", goerrors.CategoryNotFound).
	WithTextCode("PURCHASE_ITEM_NOT_FOUND")

// Filter narrows List. Name matches case insensitively as a substring.
type Filter struct {
	Name     string
	Status   Status
	Category Category
	Page     store.Page
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	List(ctx context.Context, filter Filter) ([]*Item, int, error)
	Create(ctx context.Context, record *Item) (*Item, error)
	Update(ctx context.Context, record *Item) (*Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db  bun.IDB
	now func() time.Time
}

func NewRepository(db bun.IDB) Repository {
	return &repository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	record := &Item{}
	if err := r.db.NewSelect().Model(record).Where("?TableAlias.id = ?", id).Limit(1).Scan(ctx); err != nil {
		if store.IsRecordNotFound(err) {
			return nil, apperr.WithMetadata(ErrNotFound, map[string]any{"id": id.String()})
		}
		return nil, apperr.Store(err, "failed to load purchase item")
	}
	return record, nil
}

func (r *repository) List(ctx context.Context, filter Filter) ([]*Item, int, error) {
	var records []*Item
	q := r.db.NewSelect().Model(&records)
	if name := strings.TrimSpace(filter.Name); name != "" {
		q = q.Where("LOWER(?TableAlias.name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if filter.Status != "" {
		q = q.Where("?TableAlias.status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("?TableAlias.category = ?", filter.Category)
	}
	q = filter.Page.Apply(q.Order("created_at DESC", "id ASC"))

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, apperr.Store(err, "failed to list purchase items")
	}
	return records, total, nil
}

func (r *repository) Create(ctx context.Context, record *Item) (*Item, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := r.now()
	record.CreatedAt = now
	record.UpdatedAt = now
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, apperr.Store(err, "failed to create purchase item")
	}
	return record, nil
}

func (r *repository) Update(ctx context.Context, record *Item) (*Item, error) {
	record.UpdatedAt = r.now()
	res, err := r.db.NewUpdate().
		Model(record).
		Column("name", "quantity", "priority", "status", "category", "notes", "description", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, apperr.Store(err, "failed to update purchase item")
	}
	if store.RowsAffected(res) == 0 {
		return nil, apperr.WithMetadata(ErrNotFound, map[string]any{"id": record.ID.String()})
	}
	return record, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().Model((*Item)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return apperr.Store(err, "failed to delete purchase item")
	}
	if store.RowsAffected(res) == 0 {
		return apperr.WithMetadata(ErrNotFound, map[string]any{"id": id.String()})
	}
	return nil
}
