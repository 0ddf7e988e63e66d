package activity

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-staff/apperr"
	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/store"
)

// MaxRecentHours caps the look back window at ten years.
const MaxRecentHours = 24 * 365 * 10

// ListInput is the caller facing window. RecentHours of zero means no
// time bound.
type ListInput struct {
	Page        store.Page `json:"-"`
	RecentHours int        `json:"recent_hours"`
}

func (in ListInput) Validate() error {
	if err := in.Page.Validate(); err != nil {
		return err
	}
	return apperr.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&in,
			validation.Field(&in.RecentHours, validation.Min(0), validation.Max(MaxRecentHours)),
		)
	}, "invalid log query")
}

// CreateInput is a manual log entry. UserID defaults to the caller.
type CreateInput struct {
	ActionType  string         `json:"action_type"`
	UserID      string         `json:"user_id"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
}

type Service struct {
	store Store
	now   func() time.Time
}

type ServiceOption func(*Service)

func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// List returns entries newest first. Elevated roles only.
func (s *Service) List(ctx context.Context, identity *auth.Identity, in ListInput) ([]*Entry, int, error) {
	if _, err := auth.Authorize(identity, auth.ElevatedRoles...); err != nil {
		return nil, 0, err
	}
	if err := in.Validate(); err != nil {
		return nil, 0, err
	}

	q := Query{Page: in.Page}
	if in.RecentHours > 0 {
		q.Since = s.now().Add(-time.Duration(in.RecentHours) * time.Hour)
	}
	return s.store.List(ctx, q)
}

// Create stores a manual entry. Elevated roles only.
func (s *Service) Create(ctx context.Context, identity *auth.Identity, in CreateInput) (*Entry, error) {
	if _, err := auth.Authorize(identity, auth.ElevatedRoles...); err != nil {
		return nil, err
	}

	entry := &Entry{
		ActionType:  in.ActionType,
		UserID:      in.UserID,
		Description: in.Description,
		Metadata:    in.Metadata,
		CreatedAt:   s.now(),
	}
	if entry.UserID == "" {
		entry.UserID = identity.UserID
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
