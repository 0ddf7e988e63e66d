package reports

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-staff/apperr"
	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/logging"
)

const dateLayout = "2006-01-02"

type Input struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	HoursWorked float64 `json:"hours_worked"`
}

func (in Input) Validate() error {
	return apperr.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&in,
			validation.Field(&in.Date, validation.Required, validation.Date(dateLayout)),
			validation.Field(&in.Description, validation.Required, validation.RuneLength(1, 2000)),
			validation.Field(&in.HoursWorked, validation.Min(0.0), validation.Max(24.0)),
		)
	}, "invalid report")
}

// UpdateInput changes a pending report. Nil fields keep their value.
type UpdateInput struct {
	Date        *string  `json:"date"`
	Description *string  `json:"description"`
	HoursWorked *float64 `json:"hours_worked"`
}

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

type Service struct {
	repo     Repository
	activity auth.ActivitySink
	logger   auth.Logger
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		activity: auth.NormalizeActivitySink(nil),
		logger:   logging.Default().GetLogger("reports"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Create files a report. Only employees write reports.
func (s *Service) Create(ctx context.Context, identity *auth.Identity, in Input) (*Report, error) {
	if _, err := auth.Authorize(identity, auth.RoleEmployee); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, &Report{
		UserID:      identity.UserID,
		Date:        in.Date,
		Description: in.Description,
		HoursWorked: in.HoursWorked,
		Status:      StatusPending,
	})
}

// List shows employees their own reports; elevated callers see all.
func (s *Service) List(ctx context.Context, identity *auth.Identity, filter Filter) ([]*Report, int, error) {
	if _, err := auth.Authorize(identity, auth.AllRoles...); err != nil {
		return nil, 0, err
	}
	if !identity.IsElevated() {
		filter.UserID = identity.UserID
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, identity *auth.Identity, id uuid.UUID) (*Report, error) {
	if _, err := auth.Authorize(identity, auth.AllRoles...); err != nil {
		return nil, err
	}
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.UserID != identity.UserID && !identity.IsElevated() {
		return nil, apperr.WithMetadata(auth.ErrForbidden, map[string]any{"id": id.String()})
	}
	return report, nil
}

// Update is open to the owner while the report is pending.
func (s *Service) Update(ctx context.Context, identity *auth.Identity, id uuid.UUID, in UpdateInput) (*Report, error) {
	if _, err := auth.Authorize(identity, auth.AllRoles...); err != nil {
		return nil, err
	}
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.UserID != identity.UserID {
		return nil, apperr.WithMetadata(auth.ErrForbidden, map[string]any{"id": id.String()})
	}
	if report.Status != StatusPending {
		return nil, apperr.WithMetadata(ErrNotPending, map[string]any{"id": id.String(), "status": string(report.Status)})
	}

	merged := Input{Date: report.Date, Description: report.Description, HoursWorked: report.HoursWorked}
	if in.Date != nil {
		merged.Date = *in.Date
	}
	if in.Description != nil {
		merged.Description = *in.Description
	}
	if in.HoursWorked != nil {
		merged.HoursWorked = *in.HoursWorked
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	report.Date = merged.Date
	report.Description = merged.Description
	report.HoursWorked = merged.HoursWorked
	return s.repo.UpdatePending(ctx, report)
}

// Delete is open to the owner while pending and to elevated callers.
func (s *Service) Delete(ctx context.Context, identity *auth.Identity, id uuid.UUID) error {
	if _, err := auth.Authorize(identity, auth.AllRoles...); err != nil {
		return err
	}
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	switch {
	case identity.IsElevated():
		return s.repo.Delete(ctx, id, false)
	case report.UserID == identity.UserID:
		return s.repo.Delete(ctx, id, true)
	default:
		return apperr.WithMetadata(auth.ErrForbidden, map[string]any{"id": id.String()})
	}
}

// Approve marks a pending report approved.
func (s *Service) Approve(ctx context.Context, identity *auth.Identity, id uuid.UUID) (*Report, error) {
	if _, err := auth.Authorize(identity, auth.ElevatedRoles...); err != nil {
		return nil, err
	}
	report, err := s.repo.Approve(ctx, id, identity.UserID)
	if err != nil {
		return nil, err
	}

	auth.RecordActivity(ctx, s.activity, s.logger, auth.ActivityEvent{
		EventType:  auth.ActivityEventReportApproved,
		Actor:      identity.ActorRef(),
		UserID:     report.UserID,
		ObjectType: "report",
		ObjectID:   report.ID.String(),
		FromStatus: string(StatusPending),
		ToStatus:   string(StatusApproved),
	})
	return report, nil
}

// CountByStatus groups the reports of userID, or of everyone when empty.
func (s *Service) CountByStatus(ctx context.Context, userID string) (map[Status]int, error) {
	return s.repo.CountByStatus(ctx, userID)
}
