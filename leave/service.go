package leave

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-staff/apperr"
	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/config"
	"github.com/goliatone/go-staff/logging"
)

// Policy names the roles allowed at each approval gate.
type Policy struct {
	Phase1 auth.RoleSet
	Phase2 auth.RoleSet
}

// DefaultPolicy lets managers approve phase one and admins phase two.
func DefaultPolicy() Policy {
	return Policy{
		Phase1: auth.NewRoleSet(auth.RoleManagerWomen, auth.RoleManagerMen),
		Phase2: auth.NewRoleSet(auth.RoleAdmin1, auth.RoleAdmin2),
	}
}

// PolicyFromConfig reads the approver role sets from cfg.
func PolicyFromConfig(cfg config.Auth) (Policy, error) {
	p1, err := auth.ParseRoles(cfg.Phase1Roles)
	if err != nil {
		return Policy{}, err
	}
	p2, err := auth.ParseRoles(cfg.Phase2Roles)
	if err != nil {
		return Policy{}, err
	}
	return Policy{Phase1: p1, Phase2: p2}, nil
}

// Approvers is every role that may reject a request.
func (p Policy) Approvers() auth.RoleSet {
	return p.Phase1.Union(p.Phase2)
}

type ServiceOption func(*Service)

func WithPolicy(p Policy) ServiceOption {
	return func(s *Service) {
		s.policy = p
	}
}

func WithLogger(logger auth.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithActivitySink(sink auth.ActivitySink) ServiceOption {
	return func(s *Service) {
		s.activity = auth.NormalizeActivitySink(sink)
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStateMachine replaces the state machine built by NewService.
func WithStateMachine(sm StateMachine) ServiceOption {
	return func(s *Service) {
		s.machine = sm
	}
}

// Service is the leave request workflow as seen by callers: every
// operation takes the resolved identity and checks it first.
type Service struct {
	repo     Repository
	machine  StateMachine
	policy   Policy
	activity auth.ActivitySink
	logger   auth.Logger
	now      func() time.Time
}

func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:     repo,
		policy:   DefaultPolicy(),
		activity: auth.NormalizeActivitySink(nil),
		logger:   logging.Default().GetLogger("leave"),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.machine == nil {
		s.machine = NewStateMachine(repo,
			WithStateMachineClock(s.now),
			WithStateMachineActivitySink(s.activity),
			WithStateMachineLogger(s.logger),
		)
	}
	return s
}

func (s *Service) Policy() Policy {
	return s.policy
}

// Create files a new request in pending_phase1 for the caller.
func (s *Service) Create(ctx context.Context, identity *auth.Identity, in CreateInput) (*Request, error) {
	if _, err := auth.Authorize(identity, auth.AllRoles...); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	record, err := s.repo.Create(ctx, &Request{
		UserID:      identity.UserID,
		RequestDate: s.now().Format(DateLayout),
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Reason:      in.Reason,
		Status:      StatusPendingPhase1,
	})
	if err != nil {
		return nil, err
	}

	auth.RecordActivity(ctx, s.activity, s.logger, auth.ActivityEvent{
		EventType:  auth.ActivityEventLeaveCreated,
		Actor:      identity.ActorRef(),
		UserID:     identity.UserID,
		ObjectType: "leave_request",
		ObjectID:   record.ID.String(),
		ToStatus:   string(record.Status),
		OccurredAt: s.now(),
	})

	return record, nil
}

// Get returns a request to its owner or an elevated caller.
func (s *Service) Get(ctx context.Context, identity *auth.Identity, id uuid.UUID) (*Request, error) {
	if _, err := auth.Authorize(identity, auth.AllRoles...); err != nil {
		return nil, err
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !record.IsOwnedBy(identity.UserID) && !identity.IsElevated() {
		return nil, apperr.WithMetadata(auth.ErrForbidden, map[string]any{"id": id.String()})
	}
	return record, nil
}

// List shows employees their own requests. Elevated callers see every
// request and may filter by owner.
func (s *Service) List(ctx context.Context, identity *auth.Identity, filter Filter) ([]*Request, int, error) {
	if _, err := auth.Authorize(identity, auth.AllRoles...); err != nil {
		return nil, 0, err
	}
	if !identity.IsElevated() {
		filter.UserID = identity.UserID
	}
	return s.repo.List(ctx, filter)
}

// Update changes dates or reason. Only the owner may do so, and only
// while the request is pending.
func (s *Service) Update(ctx context.Context, identity *auth.Identity, id uuid.UUID, in UpdateInput) (*Request, error) {
	if _, err := auth.Authorize(identity, auth.AllRoles...); err != nil {
		return nil, err
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !record.IsOwnedBy(identity.UserID) {
		return nil, apperr.WithMetadata(ErrNotOwner, map[string]any{"id": id.String()})
	}
	if record.Status.IsTerminal() {
		return nil, apperr.WithMetadata(ErrTerminalState, map[string]any{"id": id.String(), "status": string(record.Status)})
	}
	if err := in.apply(record); err != nil {
		return nil, err
	}
	return s.repo.UpdateDetails(ctx, record)
}

// Delete removes a request. Elevated callers may always delete; the owner
// only while it is pending.
func (s *Service) Delete(ctx context.Context, identity *auth.Identity, id uuid.UUID) error {
	if _, err := auth.Authorize(identity, auth.AllRoles...); err != nil {
		return err
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	switch {
	case identity.IsElevated():
		err = s.repo.Delete(ctx, id)
	case record.IsOwnedBy(identity.UserID):
		err = s.repo.Delete(ctx, id, PendingStatuses...)
	default:
		return apperr.WithMetadata(auth.ErrForbidden, map[string]any{"id": id.String()})
	}
	if err != nil {
		return err
	}

	auth.RecordActivity(ctx, s.activity, s.logger, auth.ActivityEvent{
		EventType:  auth.ActivityEventLeaveDeleted,
		Actor:      identity.ActorRef(),
		UserID:     record.UserID,
		ObjectType: "leave_request",
		ObjectID:   id.String(),
		FromStatus: string(record.Status),
		OccurredAt: s.now(),
	})
	return nil
}

// ApprovePhase1 moves a pending_phase1 request to pending_phase2.
func (s *Service) ApprovePhase1(ctx context.Context, identity *auth.Identity, id uuid.UUID) (*Request, error) {
	return s.transition(ctx, identity, id, s.policy.Phase1, StatusPendingPhase2)
}

// ApprovePhase2 moves a pending_phase2 request to approved.
func (s *Service) ApprovePhase2(ctx context.Context, identity *auth.Identity, id uuid.UUID) (*Request, error) {
	return s.transition(ctx, identity, id, s.policy.Phase2, StatusApproved)
}

// Reject closes a pending request. Either approver group may reject.
func (s *Service) Reject(ctx context.Context, identity *auth.Identity, id uuid.UUID, in RejectInput) (*Request, error) {
	if _, err := auth.Authorize(identity, s.policy.Approvers().Roles()...); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.transition(ctx, identity, id, s.policy.Approvers(), StatusRejected, WithTransitionReason(in.Reason))
}

// transition checks the role gate, loads the request and hands it to the
// state machine, in that order.
func (s *Service) transition(ctx context.Context, identity *auth.Identity, id uuid.UUID, allowed auth.RoleSet, target Status, opts ...TransitionOption) (*Request, error) {
	if _, err := auth.Authorize(identity, allowed.Roles()...); err != nil {
		return nil, err
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if record.IsOwnedBy(identity.UserID) {
		s.logger.Warn("self approval: %s moves own leave request %s to %s", identity.UserID, id, target)
		opts = append(opts, WithTransitionMetadata(map[string]any{"self_approval": true}))
	}

	return s.machine.Transition(ctx, identity.ActorRef(), record, target, opts...)
}
