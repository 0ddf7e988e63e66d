package purchases

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-staff/apperr"
	"github.com/goliatone/go-staff/auth"
)

// CreateInput is the payload for a new item. Empty enums take their
// defaults: medium, pending, other.
type CreateInput struct {
	Name        string   `json:"name"`
	Quantity    int      `json:"quantity"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	Category    Category `json:"category"`
	Notes       string   `json:"notes"`
	Description string   `json:"description"`
}

func (in CreateInput) Validate() error {
	return apperr.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&in,
			validation.Field(&in.Name, validation.Required, validation.RuneLength(1, 100)),
			validation.Field(&in.Quantity, validation.Required, validation.Min(1)),
			validation.Field(&in.Priority, validation.In(PriorityLow, PriorityMedium, PriorityHigh)),
			validation.Field(&in.Status, validation.In(StatusPending, StatusPurchased, StatusCanceled)),
			validation.Field(&in.Category, validation.In(CategoryOfficeSupplies, CategoryEquipment, CategoryOther)),
			validation.Field(&in.Notes, validation.RuneLength(0, 1000)),
			validation.Field(&in.Description, validation.RuneLength(0, 1000)),
		)
	}, "invalid purchase item")
}

// UpdateInput changes an item. Nil fields keep their value.
type UpdateInput struct {
	Name        *string   `json:"name"`
	Quantity    *int      `json:"quantity"`
	Priority    *Priority `json:"priority"`
	Status      *Status   `json:"status"`
	Category    *Category `json:"category"`
	Notes       *string   `json:"notes"`
	Description *string   `json:"description"`
}

func (in UpdateInput) apply(item *Item) error {
	merged := CreateInput{
		Name:        item.Name,
		Quantity:    item.Quantity,
		Priority:    item.Priority,
		Status:      item.Status,
		Category:    item.Category,
		Notes:       item.Notes,
		Description: item.Description,
	}
	if in.Name != nil {
		merged.Name = *in.Name
	}
	if in.Quantity != nil {
		merged.Quantity = *in.Quantity
	}
	if in.Priority != nil {
		merged.Priority = *in.Priority
	}
	if in.Status != nil {
		merged.Status = *in.Status
	}
	if in.Category != nil {
		merged.Category = *in.Category
	}
	if in.Notes != nil {
		merged.Notes = *in.Notes
	}
	if in.Description != nil {
		merged.Description = *in.Description
	}
	if err := merged.Validate(); err != nil {
		return err
	}
	merged.fill(item)
	return nil
}

func (in CreateInput) fill(item *Item) {
	item.Name = in.Name
	item.Quantity = in.Quantity
	item.Priority = in.Priority
	item.Status = in.Status
	item.Category = in.Category
	item.Notes = in.Notes
	item.Description = in.Description
	if item.Priority == "" {
		item.Priority = PriorityMedium
	}
	if item.Status == "" {
		item.Status = StatusPending
	}
	if item.Category == "" {
		item.Category = CategoryOther
	}
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create is limited to elevated callers.
func (s *Service) Create(ctx context.Context, identity *auth.Identity, in CreateInput) (*Item, error) {
	if _, err := auth.Authorize(identity, auth.ElevatedRoles...); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	item := &Item{CreatedBy: identity.UserID}
	in.fill(item)
	return s.repo.Create(ctx, item)
}

func (s *Service) List(ctx context.Context, identity *auth.Identity, filter Filter) ([]*Item, int, error) {
	if _, err := auth.Authorize(identity, auth.AllRoles...); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, identity *auth.Identity, id uuid.UUID) (*Item, error) {
	if _, err := auth.Authorize(identity, auth.AllRoles...); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, identity *auth.Identity, id uuid.UUID, in UpdateInput) (*Item, error) {
	item, err := s.loadForWrite(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(item); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, item)
}

func (s *Service) Delete(ctx context.Context, identity *auth.Identity, id uuid.UUID) error {
	if _, err := s.loadForWrite(ctx, identity, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// loadForWrite lets the creator or an elevated caller change an item.
func (s *Service) loadForWrite(ctx context.Context, identity *auth.Identity, id uuid.UUID) (*Item, error) {
	if _, err := auth.Authorize(identity, auth.AllRoles...); err != nil {
		return nil, err
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.CreatedBy != identity.UserID && !identity.IsElevated() {
		return nil, apperr.WithMetadata(auth.ErrForbidden, map[string]any{"id": id.String()})
	}
	return item, nil
}
