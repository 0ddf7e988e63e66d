package api

import (
	staff "github.com/goliatone/go-staff"
	"github.com/goliatone/go-staff/activity"
	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/checklists"
	"github.com/goliatone/go-staff/config"
	"github.com/goliatone/go-staff/dashboard"
	"github.com/goliatone/go-staff/employees"
	"github.com/goliatone/go-staff/leave"
	"github.com/goliatone/go-staff/logging"
	"github.com/goliatone/go-staff/purchases"
	"github.com/goliatone/go-staff/reports"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Guard         *auth.Guard
	Authenticator *auth.Authenticator
	Employees     *employees.Service
	Leave         *leave.Service
	Reports       *reports.Service
	Purchases     *purchases.Service
	Checklists    *checklists.Service
	Activity      *activity.Service
	Dashboard     *dashboard.Service
}

// NewServices builds the services over repos. Activity events are written
// to logs, which also backs the log listing.
func NewServices(cfg *config.Config, repos staff.RepositoryManager, logs activity.Store, logger *logging.BaseLogger) (*Services, error) {
	policy, err := leave.PolicyFromConfig(cfg.Auth)
	if err != nil {
		return nil, err
	}

	sink := activity.NewSink(logs)
	registry := repos.Registry()

	tokens := auth.NewTokenService(cfg.Auth, logger.GetLogger("auth:tokens"))
	provider := auth.NewEmployeeProvider(repos.Employees()).
		WithLogger(logger.GetLogger("auth:provider"))
	auther := auth.NewAuthenticator(provider, tokens, registry).
		WithLogger(logger.GetLogger("auth")).
		WithActivitySink(sink)

	return &Services{
		Guard:         auth.NewGuard(tokens, registry, logger.GetLogger("auth:guard")),
		Authenticator: auther,
		Employees: employees.NewService(repos.Employees(), registry,
			employees.WithLogger(logger.GetLogger("employees")),
			employees.WithActivitySink(sink),
			employees.WithPhoneRegion(cfg.Auth.PhoneRegion),
		),
		Leave: leave.NewService(repos.LeaveRequests(),
			leave.WithPolicy(policy),
			leave.WithLogger(logger.GetLogger("leave")),
			leave.WithActivitySink(sink),
		),
		Reports: reports.NewService(repos.Reports(),
			reports.WithLogger(logger.GetLogger("reports")),
			reports.WithActivitySink(sink),
		),
		Purchases:  purchases.NewService(repos.Purchases()),
		Checklists: checklists.NewService(repos.Checklists(), repos.Employees()),
		Activity:   activity.NewService(logs),
		Dashboard:  dashboard.NewService(repos.Reports(), repos.LeaveRequests()),
	}, nil
}
