package leave_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/leave"
)

// MockRepository implements leave.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*leave.Request, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*leave.Request)
	return r, args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter leave.Filter) ([]*leave.Request, int, error) {
	args := m.Called(ctx, filter)
	r, _ := args.Get(0).([]*leave.Request)
	return r, args.Int(1), args.Error(2)
}

func (m *MockRepository) Create(ctx context.Context, record *leave.Request) (*leave.Request, error) {
	args := m.Called(ctx, record)
	r, _ := args.Get(0).(*leave.Request)
	return r, args.Error(1)
}

func (m *MockRepository) UpdateDetails(ctx context.Context, record *leave.Request) (*leave.Request, error) {
	args := m.Called(ctx, record)
	r, _ := args.Get(0).(*leave.Request)
	return r, args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from leave.Status, change leave.Change) (*leave.Request, error) {
	args := m.Called(ctx, id, from, change)
	r, _ := args.Get(0).(*leave.Request)
	return r, args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID, statuses ...leave.Status) error {
	args := m.Called(ctx, id, statuses)
	return args.Error(0)
}

func (m *MockRepository) CountByStatus(ctx context.Context, userID string) (map[leave.Status]int, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).(map[leave.Status]int)
	return r, args.Error(1)
}

type recordingSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, event auth.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) last() auth.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return auth.ActivityEvent{}
	}
	return s.events[len(s.events)-1]
}

func fixedClock() func() time.Time {
	t := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func identity(role auth.Role) *auth.Identity {
	return &auth.Identity{UserID: uuid.NewString(), Role: role}
}
