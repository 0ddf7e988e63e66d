package auth

import (
	"context"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-staff/apperr"
)

// CredentialStore is the part of the employee store login needs.
type CredentialStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	GetByNumber(ctx context.Context, number int) (*Employee, error)
	TrackAttemptedLogin(ctx context.Context, record *Employee) error
	TrackSuccessfulLogin(ctx context.Context, record *Employee) error
}

// MaxLoginAttempts is the maximun number of failed attempts an employee
// gets within CoolDownPeriod.
var MaxLoginAttempts = 5

// CoolDownPeriod is the window failed attempts are counted in.
var CoolDownPeriod = 15 * time.Minute

// EmployeeProvider verifies employee credentials.
type EmployeeProvider struct {
	store  CredentialStore
	now    func() time.Time
	logger Logger
}

func NewEmployeeProvider(store CredentialStore) *EmployeeProvider {
	return &EmployeeProvider{
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		logger: defLogger{},
	}
}

func (p *EmployeeProvider) WithLogger(logger Logger) *EmployeeProvider {
	if logger != nil {
		p.logger = logger
	}
	return p
}

func (p *EmployeeProvider) WithClock(now func() time.Time) *EmployeeProvider {
	if now != nil {
		p.now = now
	}
	return p
}

// VerifyCredentials finds the employee by number and checks the password.
// Unknown numbers and wrong passwords produce the same error.
func (p *EmployeeProvider) VerifyCredentials(ctx context.Context, number int, password string) (*Employee, error) {
	employee, err := p.store.GetByNumber(ctx, number)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if employee.Status != EmployeeActive {
		return nil, apperr.WithMetadata(ErrAccountInactive, map[string]any{"status": string(employee.Status)})
	}

	if !employee.HasPassword() {
		return nil, ErrInvalidCredentials
	}

	if employee.LoginAttemptAt != nil && IsOutsideThresholdPeriod(*employee.LoginAttemptAt, p.now(), CoolDownPeriod) {
		employee.LoginAttempts = 0
	}

	if employee.LoginAttempts >= MaxLoginAttempts {
		return nil, ErrTooManyAttempts
	}

	if err := ComparePasswordAndHash(password, employee.PasswordHash); err != nil {
		if err2 := p.store.TrackAttemptedLogin(ctx, employee); err2 != nil {
			p.logger.Error("failed to track login attempt for %d: %v", number, err2)
		}
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to compare password")
	}

	if err := p.store.TrackSuccessfulLogin(ctx, employee); err != nil {
		p.logger.Error("failed to track successful login for %d: %v", number, err)
	}

	return employee, nil
}

// ActiveEmployee loads an employee by record id and requires it to be active.
func (p *EmployeeProvider) ActiveEmployee(ctx context.Context, userID string) (*Employee, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.WithMessage(ErrTokenPayload, "token subject is not a valid id")
	}
	employee, err := p.store.GetByID(ctx, id)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if employee.Status != EmployeeActive {
		return nil, ErrAccountInactive
	}
	return employee, nil
}
