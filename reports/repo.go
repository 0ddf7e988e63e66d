package reports

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-staff/apperr"
	"github.com/goliatone/go-staff/store"
)

var (
	ErrNotFound = goerrors.New("report not found", goerrors.CategoryNotFound).
			WithTextCode("REPORT_NOT_FOUND")

	ErrNotPending = goerrors.New("report is no longer pending", goerrors.CategoryConflict).
			WithTextCode("REPORT_NOT_PENDING")
)

type Filter struct {
	UserID string
	Status Status
	Page   store.Page
}

// Repository persists reports. Writes that require a pending report are
// conditioned on it.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Report, error)
	List(ctx context.Context, filter Filter) ([]*Report, int, error)
	Create(ctx context.Context, record *Report) (*Report, error)
	UpdatePending(ctx context.Context, record *Report) (*Report, error)
	Approve(ctx context.Context, id uuid.UUID, by string) (*Report, error)
	Delete(ctx context.Context, id uuid.UUID, onlyPending bool) error
	CountByStatus(ctx context.Context, userID string) (map[Status]int, error)
}

type RepositoryOption func(*repository)

func WithRepositoryClock(now func() time.Time) RepositoryOption {
	return func(r *repository) {
		if now != nil {
			r.now = now
		}
	}
}

type repository struct {
	db  bun.IDB
	now func() time.Time
}

func NewRepository(db bun.IDB, opts ...RepositoryOption) Repository {
	r := &repository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Report, error) {
	record := &Report{}
	if err := r.db.NewSelect().Model(record).Where("?TableAlias.id = ?", id).Limit(1).Scan(ctx); err != nil {
		if store.IsRecordNotFound(err) {
			return nil, apperr.WithMetadata(ErrNotFound, map[string]any{"id": id.String()})
		}
		return nil, apperr.Store(err, "failed to load report")
	}
	return record, nil
}

func (r *repository) List(ctx context.Context, filter Filter) ([]*Report, int, error) {
	var records []*Report
	q := r.db.NewSelect().Model(&records)
	if filter.UserID != "" {
		q = q.Where("?TableAlias.user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("?TableAlias.status = ?", filter.Status)
	}
	q = filter.Page.Apply(q.Order("report_date DESC", "created_at DESC"))

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, apperr.Store(err, "failed to list reports")
	}
	return records, total, nil
}

func (r *repository) Create(ctx context.Context, record *Report) (*Report, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Status == "" {
		record.Status = StatusPending
	}
	now := r.now()
	record.CreatedAt = now
	record.UpdatedAt = now
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, apperr.Store(err, "failed to create report")
	}
	return record, nil
}

func (r *repository) UpdatePending(ctx context.Context, record *Report) (*Report, error) {
	record.UpdatedAt = r.now()
	res, err := r.db.NewUpdate().
		Model(record).
		Column("report_date", "description", "hours_worked", "updated_at").
		WherePK().
		Where("status = ?", StatusPending).
		Exec(ctx)
	if err != nil {
		return nil, apperr.Store(err, "failed to update report")
	}
	if store.RowsAffected(res) == 0 {
		return nil, r.missedWrite(ctx, record.ID)
	}
	return r.GetByID(ctx, record.ID)
}

func (r *repository) Approve(ctx context.Context, id uuid.UUID, by string) (*Report, error) {
	now := r.now()
	res, err := r.db.NewUpdate().
		Model((*Report)(nil)).
		Set("status = ?", StatusApproved).
		Set("approved_by = ?", by).
		Set("approved_at = ?", now).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Where("status = ?", StatusPending).
		Exec(ctx)
	if err != nil {
		return nil, apperr.Store(err, "failed to approve report")
	}
	if store.RowsAffected(res) == 0 {
		return nil, r.missedWrite(ctx, id)
	}
	return r.GetByID(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID, onlyPending bool) error {
	q := r.db.NewDelete().Model((*Report)(nil)).Where("id = ?", id)
	if onlyPending {
		q = q.Where("status = ?", StatusPending)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return apperr.Store(err, "failed to delete report")
	}
	if store.RowsAffected(res) == 0 {
		return r.missedWrite(ctx, id)
	}
	return nil
}

type statusCount struct {
	Status Status `bun:"status"`
	Count  int    `bun:"count"`
}

func (r *repository) CountByStatus(ctx context.Context, userID string) (map[Status]int, error) {
	var rows []statusCount
	q := r.db.NewSelect().
		Model((*Report)(nil)).
		Column("status").
		ColumnExpr("COUNT(*) AS count").
		GroupExpr("status")
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, apperr.Store(err, "failed to count reports")
	}
	out := make(map[Status]int, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *repository) missedWrite(ctx context.Context, id uuid.UUID) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return apperr.WithMetadata(ErrNotPending, map[string]any{"id": id.String(), "status": string(current.Status)})
}
