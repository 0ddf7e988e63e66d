package staff

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-staff/activity"
	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/checklists"
	"github.com/goliatone/go-staff/leave"
	"github.com/goliatone/go-staff/purchases"
	"github.com/goliatone/go-staff/reports"
	"github.com/goliatone/go-staff/store"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	store.TxManager
	Validate() error
	MustValidate()
	DB() *bun.DB
	Employees() auth.Employees
	Registry() *auth.Registry
	LeaveRequests() leave.Repository
	Reports() reports.Repository
	Purchases() purchases.Repository
	Checklists() checklists.Repository
	ActivityLogs() *activity.SQLStore
}

type mngr struct {
	*store.Manager
	employees    auth.Employees
	registry     *auth.Registry
	leave        leave.Repository
	reports      reports.Repository
	purchases    purchases.Repository
	checklists   checklists.Repository
	activityLogs *activity.SQLStore
}

// NewRepositoryManager builds every repository on db. registrySalt keys the
// token digests kept by the registry.
func NewRepositoryManager(db *bun.DB, registrySalt string, opts ...auth.RegistryOption) RepositoryManager {
	return &mngr{
		Manager:      store.NewManager(db),
		employees:    auth.NewEmployeesRepository(db),
		registry:     auth.NewRegistry(db, registrySalt, opts...),
		leave:        leave.NewRepository(db),
		reports:      reports.NewRepository(db),
		purchases:    purchases.NewRepository(db),
		checklists:   checklists.NewRepository(db),
		activityLogs: activity.NewSQLStore(db),
	}
}

func (m *mngr) Validate() error {
	var errs []error
	if m.Manager == nil || m.Manager.DB() == nil {
		errs = append(errs, errors.New("database handle should be initialized"))
	}
	if m.employees == nil {
		errs = append(errs, errors.New("repository employees should be initialized"))
	}
	if m.registry == nil {
		errs = append(errs, errors.New("token registry should be initialized"))
	}
	if m.leave == nil {
		errs = append(errs, errors.New("repository leave requests should be initialized"))
	}
	if m.reports == nil || m.purchases == nil || m.checklists == nil {
		errs = append(errs, errors.New("resource repositories should be initialized"))
	}
	return errors.Join(errs...)
}

func (m *mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m *mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return m.Manager.RunInTx(ctx, opts, f)
}

func (m *mngr) Employees() auth.Employees {
	return m.employees
}

func (m *mngr) Registry() *auth.Registry {
	return m.registry
}

func (m *mngr) LeaveRequests() leave.Repository {
	return m.leave
}

func (m *mngr) Reports() reports.Repository {
	return m.reports
}

func (m *mngr) Purchases() purchases.Repository {
	return m.purchases
}

func (m *mngr) Checklists() checklists.Repository {
	return m.checklists
}

func (m *mngr) ActivityLogs() *activity.SQLStore {
	return m.activityLogs
}
