package auth

import (
	"context"
	"strconv"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-staff/apperr"
	"github.com/goliatone/go-staff/store"
)

// EmployeeFilter narrows List.
type EmployeeFilter struct {
	Role   Role
	Status EmployeeStatus
	Page   store.Page
}

// Employees is the credential store.
type Employees interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Employee, error)
	GetByNumber(ctx context.Context, number int) (*Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]*Employee, int, error)
	Create(ctx context.Context, record *Employee) (*Employee, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Employee) (*Employee, error)
	Update(ctx context.Context, record *Employee) (*Employee, error)
	UpdateTx(ctx context.Context, tx bun.IDB, record *Employee) (*Employee, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
	TrackAttemptedLogin(ctx context.Context, record *Employee) error
	TrackSuccessfulLogin(ctx context.Context, record *Employee) error
}

type employees struct {
	db  bun.IDB
	now func() time.Time
}

var _ Employees = (*employees)(nil)

// EmployeesOption configures the employees repository.
type EmployeesOption func(*employees)

// WithEmployeesClock sets the clock used for timestamps and login tracking.
func WithEmployeesClock(now func() time.Time) EmployeesOption {
	return func(r *employees) {
		if now != nil {
			r.now = now
		}
	}
}

func NewEmployeesRepository(db bun.IDB, opts ...EmployeesOption) Employees {
	r := &employees{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewEmployeeID derives the record id from the employee number so the same
// number always maps to the same id.
func NewEmployeeID(number int) (uuid.UUID, error) {
	id, err := hashid.NewUUID(strconv.Itoa(number))
	if err != nil {
		return uuid.Nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to derive employee id")
	}
	return id, nil
}

func (r *employees) GetByID(ctx context.Context, id uuid.UUID) (*Employee, error) {
	return r.GetByIDTx(ctx, r.db, id)
}

func (r *employees) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Employee, error) {
	record := &Employee{}
	err := tx.NewSelect().Model(record).Where("?TableAlias.id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, r.readError(err, map[string]any{"id": id.String()})
	}
	return record, nil
}

func (r *employees) GetByNumber(ctx context.Context, number int) (*Employee, error) {
	record := &Employee{}
	err := r.db.NewSelect().Model(record).Where("?TableAlias.employee_number = ?", number).Limit(1).Scan(ctx)
	if err != nil {
		return nil, r.readError(err, map[string]any{"employee_id": number})
	}
	return record, nil
}

func (r *employees) List(ctx context.Context, filter EmployeeFilter) ([]*Employee, int, error) {
	var records []*Employee
	q := r.db.NewSelect().Model(&records)
	if filter.Role != "" {
		q = q.Where("?TableAlias.role = ?", filter.Role)
	}
	if filter.Status != "" {
		q = q.Where("?TableAlias.status = ?", filter.Status)
	}
	q = filter.Page.Apply(q.Order("employee_number ASC"))

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, apperr.Store(err, "failed to list employees")
	}
	return records, total, nil
}

func (r *employees) Create(ctx context.Context, record *Employee) (*Employee, error) {
	return r.CreateTx(ctx, r.db, record)
}

func (r *employees) CreateTx(ctx context.Context, tx bun.IDB, record *Employee) (*Employee, error) {
	if record.ID == uuid.Nil {
		id, err := NewEmployeeID(record.EmployeeNumber)
		if err != nil {
			return nil, err
		}
		record.ID = id
	}
	if record.Status == "" {
		record.Status = EmployeeActive
	}
	now := r.now()
	record.CreatedAt = now
	record.UpdatedAt = now

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, apperr.WithMetadata(ErrDuplicateEmployee, map[string]any{"employee_id": record.EmployeeNumber})
		}
		return nil, apperr.Store(err, "failed to create employee")
	}
	return record, nil
}

func (r *employees) Update(ctx context.Context, record *Employee) (*Employee, error) {
	return r.UpdateTx(ctx, r.db, record)
}

// UpdateTx writes the editable columns of record.
func (r *employees) UpdateTx(ctx context.Context, tx bun.IDB, record *Employee) (*Employee, error) {
	record.UpdatedAt = r.now()
	res, err := tx.NewUpdate().
		Model(record).
		Column("full_name", "phone", "role", "status", "password_hash", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, apperr.Store(err, "failed to update employee")
	}
	if store.RowsAffected(res) == 0 {
		return nil, apperr.WithMetadata(ErrEmployeeNotFound, map[string]any{"id": record.ID.String()})
	}
	return record, nil
}

func (r *employees) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DeleteTx(ctx, r.db, id)
}

func (r *employees) DeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	res, err := tx.NewDelete().Model((*Employee)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return apperr.Store(err, "failed to delete employee")
	}
	if store.RowsAffected(res) == 0 {
		return apperr.WithMetadata(ErrEmployeeNotFound, map[string]any{"id": id.String()})
	}
	return nil
}

func (r *employees) TrackAttemptedLogin(ctx context.Context, record *Employee) error {
	now := r.now()
	_, err := r.db.NewUpdate().
		Model((*Employee)(nil)).
		Set("login_attempts = ?", record.LoginAttempts+1).
		Set("login_attempt_at = ?", now).
		Where("id = ?", record.ID).
		Exec(ctx)
	if err != nil {
		return apperr.Store(err, "failed to track login attempt")
	}
	record.LoginAttempts++
	record.LoginAttemptAt = &now
	return nil
}

func (r *employees) TrackSuccessfulLogin(ctx context.Context, record *Employee) error {
	now := r.now()
	_, err := r.db.NewUpdate().
		Model((*Employee)(nil)).
		Set("logged_in_at = ?", now).
		Set("login_attempt_at = NULL").
		Set("login_attempts = 0").
		Where("id = ?", record.ID).
		Exec(ctx)
	if err != nil {
		return apperr.Store(err, "failed to track successful login")
	}
	record.LoggedInAt = &now
	record.LoginAttempts = 0
	record.LoginAttemptAt = nil
	return nil
}

func (r *employees) readError(err error, meta map[string]any) error {
	if store.IsRecordNotFound(err) {
		return apperr.WithMetadata(ErrEmployeeNotFound, meta)
	}
	return apperr.Store(err, "failed to load employee").WithMetadata(meta)
}
