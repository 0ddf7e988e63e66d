package auth_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/config"
)

// MockCredentialStore implements auth.CredentialStore
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) GetByID(ctx context.Context, id uuid.UUID) (*auth.Employee, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(*auth.Employee)
	return e, args.Error(1)
}

func (m *MockCredentialStore) GetByNumber(ctx context.Context, number int) (*auth.Employee, error) {
	args := m.Called(ctx, number)
	e, _ := args.Get(0).(*auth.Employee)
	return e, args.Error(1)
}

func (m *MockCredentialStore) TrackAttemptedLogin(ctx context.Context, record *auth.Employee) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockCredentialStore) TrackSuccessfulLogin(ctx context.Context, record *auth.Employee) error {
	return m.Called(ctx, record).Error(0)
}

// MockRegistry implements auth.TokenRegistry
type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) Register(ctx context.Context, userID, rawToken string, ttl time.Duration) bool {
	return m.Called(ctx, userID, rawToken, ttl).Bool(0)
}

func (m *MockRegistry) IsValid(ctx context.Context, rawToken, userID string) bool {
	return m.Called(ctx, rawToken, userID).Bool(0)
}

func (m *MockRegistry) Revoke(ctx context.Context, rawToken, userID string) bool {
	return m.Called(ctx, rawToken, userID).Bool(0)
}

func (m *MockRegistry) RevokeAllForUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockRegistry) SweepExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockLogger implements auth.Logger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
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

func (s *recordingSink) types() []auth.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]auth.ActivityEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}

type quietLogger struct{}

func (quietLogger) Debug(string, ...any) {}
func (quietLogger) Info(string, ...any)  {}
func (quietLogger) Warn(string, ...any)  {}
func (quietLogger) Error(string, ...any) {}

// testClock is a settable clock aligned to whole seconds, which is the
// precision of token timestamps.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func testAuthConfig() config.Auth {
	var c config.Config
	c.LoadDefaults()
	c.Auth.SigningKey = "unit-test-signing-key-0123456789"
	return c.Auth
}

func newTokenService(clock *testClock) *auth.TokenService {
	return auth.NewTokenService(testAuthConfig(), quietLogger{}).WithClock(clock.Now)
}

func TestMain(m *testing.M) {
	auth.PasswordHashCost = bcrypt.MinCost
	os.Exit(m.Run())
}
