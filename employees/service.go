// Package employees manages employee records on behalf of an authenticated
// caller. Every write is checked against the role assignment matrix.
package employees

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-staff/apperr"
	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/logging"
)

var ErrSelfDelete = goerrors.New("employees cannot delete their own record", goerrors.CategoryAuthz).
	WithTextCode("FORBIDDEN")

type Option func(*Service)

func WithLogger(logger auth.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithActivitySink(sink auth.ActivitySink) Option {
	return func(s *Service) {
		s.activity = auth.NormalizeActivitySink(sink)
	}
}

// WithPhoneRegion sets the region used to parse phone numbers without a
// country prefix.
func WithPhoneRegion(region string) Option {
	return func(s *Service) {
		if region != "" {
			s.phoneRegion = region
		}
	}
}

type Service struct {
	repo        auth.Employees
	registry    auth.TokenRegistry
	phoneRegion string
	activity    auth.ActivitySink
	logger      auth.Logger
}

// NewService builds the service. registry may be nil, in which case
// deleting an employee leaves their tokens to expire.
func NewService(repo auth.Employees, registry auth.TokenRegistry, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		registry:    registry,
		phoneRegion: "IR",
		activity:    auth.NormalizeActivitySink(nil),
		logger:      logging.Default().GetLogger("employees"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) Create(ctx context.Context, identity *auth.Identity, in CreateInput) (*auth.Employee, error) {
	if _, err := auth.Authorize(identity, auth.AllRoles...); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !identity.Role.CanAssign(in.Role) {
		return nil, forbiddenAssignment(identity.Role, in.Role)
	}

	phone, err := NormalizePhone(in.Phone, s.phoneRegion)
	if err != nil {
		return nil, err
	}

	record := &auth.Employee{
		EmployeeNumber: in.EmployeeID,
		FullName:       in.FullName,
		Phone:          phone,
		Role:           in.Role,
		Status:         in.Status,
	}
	if in.Password != "" {
		if record.PasswordHash, err = auth.HashPassword(in.Password); err != nil {
			return nil, err
		}
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	s.record(ctx, identity, auth.ActivityEventEmployeeCreated, created, map[string]any{
		"employee_id": created.EmployeeNumber,
		"role":        string(created.Role),
	})
	return created, nil
}

// List is limited to elevated callers.
func (s *Service) List(ctx context.Context, identity *auth.Identity, filter auth.EmployeeFilter) ([]*auth.Employee, int, error) {
	if _, err := auth.Authorize(identity, auth.ElevatedRoles...); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, filter)
}

// Get returns the caller's own record, or any record to elevated callers.
func (s *Service) Get(ctx context.Context, identity *auth.Identity, id uuid.UUID) (*auth.Employee, error) {
	if _, err := auth.Authorize(identity, auth.AllRoles...); err != nil {
		return nil, err
	}
	if identity.UserID != id.String() && !identity.IsElevated() {
		return nil, apperr.WithMetadata(auth.ErrForbidden, map[string]any{"id": id.String()})
	}
	return s.repo.GetByID(ctx, id)
}

// Update requires the caller to be able to assign both the current and the
// new role of the target.
func (s *Service) Update(ctx context.Context, identity *auth.Identity, id uuid.UUID, in UpdateInput) (*auth.Employee, error) {
	if _, err := auth.Authorize(identity, auth.AllRoles...); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !identity.Role.CanAssign(record.Role) {
		return nil, forbiddenAssignment(identity.Role, record.Role)
	}
	if in.Role != nil && !identity.Role.CanAssign(*in.Role) {
		return nil, forbiddenAssignment(identity.Role, *in.Role)
	}

	changed := []string{}
	revoke := false
	if in.FullName != nil {
		record.FullName = *in.FullName
		changed = append(changed, "full_name")
	}
	if in.Phone != nil {
		if record.Phone, err = NormalizePhone(*in.Phone, s.phoneRegion); err != nil {
			return nil, err
		}
		changed = append(changed, "phone")
	}
	if in.Role != nil {
		revoke = revoke || record.Role != *in.Role
		record.Role = *in.Role
		changed = append(changed, "role")
	}
	if in.Status != nil {
		revoke = revoke || record.Status != *in.Status
		record.Status = *in.Status
		changed = append(changed, "status")
	}
	if in.Password != nil {
		if record.PasswordHash, err = auth.HashPassword(*in.Password); err != nil {
			return nil, err
		}
		revoke = true
		changed = append(changed, "password")
	}

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	// tokens carry the role, so they must not outlive a role, status or
	// password change
	if revoke {
		if err := s.revokeSessions(ctx, id, "updated"); err != nil {
			return nil, err
		}
	}

	s.record(ctx, identity, auth.ActivityEventEmployeeUpdated, updated, map[string]any{"fields": changed})
	return updated, nil
}

// Delete removes the target and revokes every token it holds. Callers
// never delete themselves.
func (s *Service) Delete(ctx context.Context, identity *auth.Identity, id uuid.UUID) error {
	if _, err := auth.Authorize(identity, auth.AllRoles...); err != nil {
		return err
	}
	if identity.UserID == id.String() {
		return ErrSelfDelete
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !identity.Role.CanAssign(record.Role) {
		return forbiddenAssignment(identity.Role, record.Role)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.revokeSessions(ctx, id, "deleted"); err != nil {
		s.logger.Error("%v", err)
	}

	s.record(ctx, identity, auth.ActivityEventEmployeeDeleted, record, map[string]any{
		"employee_id": record.EmployeeNumber,
	})
	return nil
}

func (s *Service) revokeSessions(ctx context.Context, id uuid.UUID, reason string) error {
	if s.registry == nil {
		return nil
	}
	n, err := s.registry.RevokeAllForUser(ctx, id.String())
	if err != nil {
		return apperr.Store(err, "failed to revoke tokens of "+reason+" employee "+id.String())
	}
	if n > 0 {
		s.logger.Info("revoked %d tokens of %s employee %s", n, reason, id)
	}
	return nil
}

func (s *Service) record(ctx context.Context, identity *auth.Identity, event auth.ActivityEventType, target *auth.Employee, meta map[string]any) {
	auth.RecordActivity(ctx, s.activity, s.logger, auth.ActivityEvent{
		EventType:  event,
		Actor:      identity.ActorRef(),
		UserID:     target.ID.String(),
		ObjectType: "employee",
		ObjectID:   target.ID.String(),
		Metadata:   meta,
	})
}

func forbiddenAssignment(actor, target auth.Role) error {
	return apperr.WithMetadata(auth.ErrForbidden, map[string]any{
		"role":        string(actor),
		"target_role": string(target),
	})
}
