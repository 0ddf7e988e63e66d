package checklists_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-staff/apperr"
	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/checklists"
	"github.com/goliatone/go-staff/store"
	"github.com/goliatone/go-staff/store/storetest"
)

// MockEmployees implements checklists.EmployeeLookup
type MockEmployees struct {
	mock.Mock
}

func (m *MockEmployees) GetByID(ctx context.Context, id uuid.UUID) (*auth.Employee, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(*auth.Employee)
	return e, args.Error(1)
}

func TestChecklistRules(t *testing.T) {
	ctx := context.Background()
	assignee := &auth.Identity{UserID: uuid.NewString(), Role: auth.RoleEmployee}
	other := &auth.Identity{UserID: uuid.NewString(), Role: auth.RoleEmployee}
	manager := &auth.Identity{UserID: uuid.NewString(), Role: auth.RoleManagerWomen}

	lookup := &MockEmployees{}
	lookup.On("GetByID", mock.Anything, uuid.MustParse(assignee.UserID)).Return(&auth.Employee{}, nil)
	lookup.On("GetByID", mock.Anything, mock.Anything).Return(nil, auth.ErrEmployeeNotFound)

	svc := checklists.NewService(checklists.NewRepository(storetest.NewDB(t)), lookup)

	in := checklists.Input{
		Title:       "Open the store",
		TaskID:      "T-1",
		Description: "Lights, alarm, register",
		AssignedTo:  assignee.UserID,
		DueDate:     "2024-01-11",
	}
	item, err := svc.Create(ctx, manager, in)
	require.NoError(t, err)
	assert.Equal(t, checklists.PriorityMedium, item.Priority)
	assert.Equal(t, manager.UserID, item.CreatedBy)

	bad := in
	bad.AssignedTo = uuid.NewString()
	_, err = svc.Create(ctx, manager, bad)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	bad = in
	bad.Priority = "urgent"
	_, err = svc.Create(ctx, manager, bad)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, total, err := svc.List(ctx, assignee, checklists.Filter{Page: store.DefaultPage()})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = svc.List(ctx, other, checklists.Filter{Page: store.DefaultPage()})
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	_, total, err = svc.List(ctx, manager, checklists.Filter{Title: "store", Page: store.DefaultPage()})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	done := true
	updated, err := svc.Update(ctx, assignee, item.ID, checklists.UpdateInput{IsCompleted: &done})
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)

	_, err = svc.Update(ctx, other, item.ID, checklists.UpdateInput{IsCompleted: &done})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	assert.ErrorIs(t, svc.Delete(ctx, other, item.ID), auth.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, assignee, item.ID))
	_, err = svc.Get(ctx, manager, item.ID)
	assert.ErrorIs(t, err, checklists.ErrNotFound)
}
