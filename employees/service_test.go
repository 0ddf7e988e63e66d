package employees_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-staff/apperr"
	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/employees"
	"github.com/goliatone/go-staff/logging"
	"github.com/goliatone/go-staff/store"
	"github.com/goliatone/go-staff/store/storetest"
)

type recordingSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, e auth.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

type fixture struct {
	svc      *employees.Service
	repo     auth.Employees
	registry *auth.Registry
	sink     *recordingSink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	auth.PasswordHashCost = bcrypt.MinCost
	db := storetest.NewDB(t)
	f := &fixture{
		repo:     auth.NewEmployeesRepository(db),
		registry: auth.NewRegistry(db, "salt", auth.WithRegistryLogger(logging.Nop{})),
		sink:     &recordingSink{},
	}
	f.svc = employees.NewService(f.repo, f.registry,
		employees.WithLogger(logging.Nop{}),
		employees.WithActivitySink(f.sink),
		employees.WithPhoneRegion("IR"),
	)
	return f
}

func (f *fixture) actor(t *testing.T, number int, role auth.Role) *auth.Identity {
	t.Helper()
	e, err := f.repo.Create(context.Background(), &auth.Employee{EmployeeNumber: number, FullName: "actor", Role: role})
	require.NoError(t, err)
	return &auth.Identity{UserID: e.ID.String(), Role: role}
}

func TestCreateFollowsAssignmentMatrix(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin1 := f.actor(t, 10, auth.RoleAdmin1)
	admin2 := f.actor(t, 11, auth.RoleAdmin2)
	manager := f.actor(t, 12, auth.RoleManagerMen)
	employee := f.actor(t, 13, auth.RoleEmployee)

	tests := []struct {
		name   string
		actor  *auth.Identity
		role   auth.Role
		expect error
	}{
		{"admin1 creates admin1", admin1, auth.RoleAdmin1, nil},
		{"admin2 creates manager", admin2, auth.RoleManagerWomen, nil},
		{"admin2 cannot create admin1", admin2, auth.RoleAdmin1, auth.ErrForbidden},
		{"manager creates employee", manager, auth.RoleEmployee, nil},
		{"manager cannot create manager", manager, auth.RoleManagerMen, auth.ErrForbidden},
		{"employee creates nothing", employee, auth.RoleEmployee, auth.ErrForbidden},
	}

	number := 100
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			number++
			_, err := f.svc.Create(ctx, tt.actor, employees.CreateInput{
				EmployeeID: number,
				FullName:   "New Person",
				Role:       tt.role,
				Password:   "secret",
			})
			if tt.expect == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expect)
		})
	}
}

func TestCreateNormalizesPhoneAndHashesPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.actor(t, 10, auth.RoleAdmin1)

	e, err := f.svc.Create(ctx, admin, employees.CreateInput{
		EmployeeID: 42,
		FullName:   "Sara",
		Phone:      "0912 345 6789",
		Role:       auth.RoleEmployee,
		Password:   "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "+989123456789", e.Phone)
	assert.Equal(t, auth.EmployeeActive, e.Status)
	assert.NoError(t, auth.ComparePasswordAndHash("secret", e.PasswordHash))
	assert.Len(t, f.sink.events, 1)

	_, err = f.svc.Create(ctx, admin, employees.CreateInput{EmployeeID: 42, FullName: "Dup", Role: auth.RoleEmployee})
	assert.ErrorIs(t, err, auth.ErrDuplicateEmployee)

	_, err = f.svc.Create(ctx, admin, employees.CreateInput{EmployeeID: 43, FullName: "Bad", Role: auth.RoleEmployee, Phone: "12"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Create(ctx, admin, employees.CreateInput{EmployeeID: 5, FullName: "Short", Role: "boss"})
	require.ErrorIs(t, err, apperr.ErrValidation)
	verr, _ := apperr.As(err)
	fields := verr.ValidationMap()
	assert.Contains(t, fields, "employee_id")
	assert.Contains(t, fields, "role")
}

func TestUpdateNeedsBothRoles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin2 := f.actor(t, 10, auth.RoleAdmin2)
	target := f.actor(t, 20, auth.RoleEmployee)
	targetID := uuid.MustParse(target.UserID)

	promote := auth.RoleManagerMen
	updated, err := f.svc.Update(ctx, admin2, targetID, employees.UpdateInput{Role: &promote})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleManagerMen, updated.Role)

	tooHigh := auth.RoleAdmin1
	_, err = f.svc.Update(ctx, admin2, targetID, employees.UpdateInput{Role: &tooHigh})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	manager := f.actor(t, 30, auth.RoleManagerWomen)
	name := "Renamed"
	_, err = f.svc.Update(ctx, manager, targetID, employees.UpdateInput{FullName: &name})
	assert.ErrorIs(t, err, auth.ErrForbidden, "managers cannot edit other managers")

	password := "new-secret"
	updated, err = f.svc.Update(ctx, admin2, targetID, employees.UpdateInput{Password: &password})
	require.NoError(t, err)
	assert.NoError(t, auth.ComparePasswordAndHash("new-secret", updated.PasswordHash))

	_, err = f.svc.Update(ctx, admin2, uuid.New(), employees.UpdateInput{FullName: &name})
	assert.ErrorIs(t, err, auth.ErrEmployeeNotFound)
}

func TestUpdateRevokesTokensWhenAccessChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.actor(t, 10, auth.RoleAdmin1)
	target := f.actor(t, 20, auth.RoleAdmin2)
	targetID := uuid.MustParse(target.UserID)

	name := "Renamed"
	sameRole := auth.RoleAdmin2
	demote := auth.RoleEmployee
	inactive := auth.EmployeeInactive
	password := "rotated"

	tests := []struct {
		name    string
		in      employees.UpdateInput
		revoked bool
	}{
		{"name only", employees.UpdateInput{FullName: &name}, false},
		{"unchanged role", employees.UpdateInput{Role: &sameRole}, false},
		{"role change", employees.UpdateInput{Role: &demote}, true},
		{"status change", employees.UpdateInput{Status: &inactive}, true},
		{"password change", employees.UpdateInput{Password: &password}, true},
	}

	for i, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			token := "tok." + tc.name
			require.True(t, f.registry.Register(ctx, target.UserID, token, time.Hour))

			_, err := f.svc.Update(ctx, admin, targetID, tc.in)
			require.NoError(t, err)
			assert.Equal(t, !tc.revoked, f.registry.IsValid(ctx, token, target.UserID), "case %d", i)
		})
	}
}

func TestDeleteRevokesTokens(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.actor(t, 10, auth.RoleAdmin1)
	target := f.actor(t, 20, auth.RoleEmployee)

	require.True(t, f.registry.Register(ctx, target.UserID, "a.b.c", time.Hour))
	require.True(t, f.registry.IsValid(ctx, "a.b.c", target.UserID))

	assert.ErrorIs(t, f.svc.Delete(ctx, admin, uuid.MustParse(admin.UserID)), employees.ErrSelfDelete)
	assert.ErrorIs(t, f.svc.Delete(ctx, target, uuid.MustParse(admin.UserID)), auth.ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, admin, uuid.MustParse(target.UserID)))
	assert.False(t, f.registry.IsValid(ctx, "a.b.c", target.UserID))

	_, err := f.repo.GetByID(ctx, uuid.MustParse(target.UserID))
	assert.ErrorIs(t, err, auth.ErrEmployeeNotFound)
}

func TestListAndGetVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.actor(t, 10, auth.RoleAdmin2)
	employee := f.actor(t, 20, auth.RoleEmployee)

	items, total, err := f.svc.List(ctx, admin, auth.EmployeeFilter{Page: store.DefaultPage()})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)

	_, _, err = f.svc.List(ctx, employee, auth.EmployeeFilter{Page: store.DefaultPage()})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	self, err := f.svc.Get(ctx, employee, uuid.MustParse(employee.UserID))
	require.NoError(t, err)
	assert.Equal(t, 20, self.EmployeeNumber)

	_, err = f.svc.Get(ctx, employee, uuid.MustParse(admin.UserID))
	assert.ErrorIs(t, err, auth.ErrForbidden)
}

func TestNormalizePhone(t *testing.T) {
	got, err := employees.NormalizePhone("+1 650 253 0000", "IR")
	require.NoError(t, err)
	assert.Equal(t, "+16502530000", got)

	got, err = employees.NormalizePhone("  ", "IR")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = employees.NormalizePhone("not a number", "IR")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
