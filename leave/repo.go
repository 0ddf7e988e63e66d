package leave

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-staff/apperr"
	"github.com/goliatone/go-staff/store"
)

// Filter narrows List. An empty UserID lists every owner.
type Filter struct {
	UserID string
	Status Status
	Page   store.Page
}

// Change describes the columns written by a status transition.
type Change struct {
	To     Status
	By     string
	At     time.Time
	Reason string
}

// Repository persists leave requests. Every write that depends on the
// current status is conditioned on it.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	List(ctx context.Context, filter Filter) ([]*Request, int, error)
	Create(ctx context.Context, record *Request) (*Request, error)
	// UpdateDetails writes dates and reason while the request is pending.
	UpdateDetails(ctx context.Context, record *Request) (*Request, error)
	// UpdateStatus moves a request from one status to change.To.
	UpdateStatus(ctx context.Context, id uuid.UUID, from Status, change Change) (*Request, error)
	// Delete removes the request. When statuses are given the request must
	// currently be in one of them.
	Delete(ctx context.Context, id uuid.UUID, statuses ...Status) error
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

var _ Repository = (*repository)(nil)

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

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	record := &Request{}
	err := r.db.NewSelect().Model(record).Where("?TableAlias.id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if store.IsRecordNotFound(err) {
			return nil, apperr.WithMetadata(ErrNotFound, map[string]any{"id": id.String()})
		}
		return nil, apperr.Store(err, "failed to load leave request").WithMetadata(map[string]any{"id": id.String()})
	}
	return record, nil
}

func (r *repository) List(ctx context.Context, filter Filter) ([]*Request, int, error) {
	var records []*Request
	q := r.db.NewSelect().Model(&records)
	if filter.UserID != "" {
		q = q.Where("?TableAlias.user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("?TableAlias.status = ?", filter.Status)
	}
	q = filter.Page.Apply(q.Order("created_at DESC", "id ASC"))

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, apperr.Store(err, "failed to list leave requests")
	}
	return records, total, nil
}

func (r *repository) Create(ctx context.Context, record *Request) (*Request, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Status == "" {
		record.Status = StatusPendingPhase1
	}
	now := r.now()
	record.CreatedAt = now
	record.UpdatedAt = now

	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, apperr.Store(err, "failed to create leave request")
	}
	return record, nil
}

func (r *repository) UpdateDetails(ctx context.Context, record *Request) (*Request, error) {
	record.UpdatedAt = r.now()
	res, err := r.db.NewUpdate().
		Model(record).
		Column("start_date", "end_date", "reason", "updated_at").
		WherePK().
		Where("status IN (?)", bun.In(PendingStatuses)).
		Exec(ctx)
	if err != nil {
		return nil, apperr.Store(err, "failed to update leave request")
	}
	if store.RowsAffected(res) == 0 {
		return nil, r.missedWrite(ctx, record.ID, "")
	}
	return r.GetByID(ctx, record.ID)
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from Status, change Change) (*Request, error) {
	at := change.At
	if at.IsZero() {
		at = r.now()
	}

	q := r.db.NewUpdate().
		Model((*Request)(nil)).
		Set("status = ?", change.To).
		Set("updated_at = ?", at)

	switch change.To {
	case StatusPendingPhase2:
		q = q.Set("approval_phase1_by = ?", change.By).Set("approval_phase1_at = ?", at)
	case StatusApproved:
		q = q.Set("approval_phase2_by = ?", change.By).Set("approval_phase2_at = ?", at)
	case StatusRejected:
		var reason any
		if change.Reason != "" {
			reason = change.Reason
		}
		q = q.Set("rejected_by = ?", change.By).
			Set("rejected_at = ?", at).
			Set("rejection_reason = ?", reason)
	}

	res, err := q.Where("id = ?", id).Where("status = ?", from).Exec(ctx)
	if err != nil {
		return nil, apperr.Store(err, "failed to update leave request status")
	}
	if store.RowsAffected(res) == 0 {
		return nil, r.missedWrite(ctx, id, from)
	}
	return r.GetByID(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID, statuses ...Status) error {
	q := r.db.NewDelete().Model((*Request)(nil)).Where("id = ?", id)
	if len(statuses) > 0 {
		q = q.Where("status IN (?)", bun.In(statuses))
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return apperr.Store(err, "failed to delete leave request")
	}
	if store.RowsAffected(res) == 0 {
		return r.missedWrite(ctx, id, "")
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
		Model((*Request)(nil)).
		Column("status").
		ColumnExpr("COUNT(*) AS count").
		GroupExpr("status")
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, apperr.Store(err, "failed to count leave requests")
	}

	out := make(map[Status]int, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// missedWrite explains a conditioned write that matched no rows: either the
// request is gone or its status moved on.
func (r *repository) missedWrite(ctx context.Context, id uuid.UUID, expected Status) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	meta := map[string]any{"id": id.String(), "status": string(current.Status)}
	if expected != "" {
		meta["expected"] = string(expected)
	}
	return apperr.WithMetadata(ErrStateConflict, meta)
}
