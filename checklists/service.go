package checklists

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-staff/apperr"
	"github.com/goliatone/go-staff/auth"
)

// EmployeeLookup resolves assignees. auth.Employees implements it.
type EmployeeLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*auth.Employee, error)
}

type Input struct {
	Title       string   `json:"title"`
	TaskID      string   `json:"task_id"`
	Description string   `json:"description"`
	IsCompleted bool     `json:"is_completed"`
	AssignedTo  string   `json:"assigned_to"`
	DueDate     string   `json:"due_date"`
	Priority    Priority `json:"priority"`
}

func (in Input) Validate() error {
	return apperr.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&in,
			validation.Field(&in.Title, validation.Required, validation.RuneLength(1, 100)),
			validation.Field(&in.TaskID, validation.Required, validation.RuneLength(1, 64)),
			validation.Field(&in.Description, validation.Required),
			validation.Field(&in.AssignedTo, validation.Required, is.UUID),
			validation.Field(&in.DueDate, validation.Required, validation.Date("2006-01-02")),
			validation.Field(&in.Priority, validation.In(PriorityLower, PriorityMedium, PriorityHigh)),
		)
	}, "invalid checklist item")
}

// UpdateInput changes an item. Nil fields keep their value.
type UpdateInput struct {
	Title       *string   `json:"title"`
	TaskID      *string   `json:"task_id"`
	Description *string   `json:"description"`
	IsCompleted *bool     `json:"is_completed"`
	AssignedTo  *string   `json:"assigned_to"`
	DueDate     *string   `json:"due_date"`
	Priority    *Priority `json:"priority"`
}

type Service struct {
	repo      Repository
	employees EmployeeLookup
}

func NewService(repo Repository, employees EmployeeLookup) *Service {
	return &Service{repo: repo, employees: employees}
}

// Create is open to any authenticated caller. The assignee must exist.
func (s *Service) Create(ctx context.Context, identity *auth.Identity, in Input) (*Item, error) {
	if _, err := auth.Authorize(identity, auth.AllRoles...); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, in.AssignedTo); err != nil {
		return nil, err
	}
	item := &Item{CreatedBy: identity.UserID}
	in.fill(item)
	return s.repo.Create(ctx, item)
}

// List shows employees the items assigned to them; other roles see all.
func (s *Service) List(ctx context.Context, identity *auth.Identity, filter Filter) ([]*Item, int, error) {
	if _, err := auth.Authorize(identity, auth.AllRoles...); err != nil {
		return nil, 0, err
	}
	if identity.Role == auth.RoleEmployee {
		filter.AssignedTo = identity.UserID
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, identity *auth.Identity, id uuid.UUID) (*Item, error) {
	return s.load(ctx, identity, id)
}

func (s *Service) Update(ctx context.Context, identity *auth.Identity, id uuid.UUID, in UpdateInput) (*Item, error) {
	item, err := s.load(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	merged := Input{
		Title:       item.Title,
		TaskID:      item.TaskID,
		Description: item.Description,
		IsCompleted: item.IsCompleted,
		AssignedTo:  item.AssignedTo,
		DueDate:     item.DueDate,
		Priority:    item.Priority,
	}
	if in.Title != nil {
		merged.Title = *in.Title
	}
	if in.TaskID != nil {
		merged.TaskID = *in.TaskID
	}
	if in.Description != nil {
		merged.Description = *in.Description
	}
	if in.IsCompleted != nil {
		merged.IsCompleted = *in.IsCompleted
	}
	if in.AssignedTo != nil {
		merged.AssignedTo = *in.AssignedTo
	}
	if in.DueDate != nil {
		merged.DueDate = *in.DueDate
	}
	if in.Priority != nil {
		merged.Priority = *in.Priority
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	if merged.AssignedTo != item.AssignedTo {
		if err := s.checkAssignee(ctx, merged.AssignedTo); err != nil {
			return nil, err
		}
	}

	merged.fill(item)
	return s.repo.Update(ctx, item)
}

func (s *Service) Delete(ctx context.Context, identity *auth.Identity, id uuid.UUID) error {
	if _, err := s.load(ctx, identity, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// load returns the item when the caller is its assignee, its creator or
// elevated.
func (s *Service) load(ctx context.Context, identity *auth.Identity, id uuid.UUID) (*Item, error) {
	if _, err := auth.Authorize(identity, auth.AllRoles...); err != nil {
		return nil, err
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.CanWrite(identity.UserID) && !identity.IsElevated() {
		return nil, apperr.WithMetadata(auth.ErrForbidden, map[string]any{"id": id.String()})
	}
	return item, nil
}

func (s *Service) checkAssignee(ctx context.Context, assignee string) error {
	invalid := apperr.Invalid("invalid checklist item", "assigned_to", "must reference an existing employee")

	id, err := uuid.Parse(assignee)
	if err != nil {
		return invalid
	}
	if _, err := s.employees.GetByID(ctx, id); err != nil {
		if goerrors.IsNotFound(err) {
			return invalid
		}
		return err
	}
	return nil
}

func (in Input) fill(item *Item) {
	item.Title = in.Title
	item.TaskID = in.TaskID
	item.Description = in.Description
	item.IsCompleted = in.IsCompleted
	item.AssignedTo = in.AssignedTo
	item.DueDate = in.DueDate
	item.Priority = in.Priority
	if item.Priority == "" {
		item.Priority = PriorityMedium
	}
}
