package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	staff "github.com/goliatone/go-staff"
	"github.com/goliatone/go-staff/api"
	"github.com/goliatone/go-staff/apperr"
	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/config"
	"github.com/goliatone/go-staff/logging"
	"github.com/goliatone/go-staff/store/storetest"
)

func TestMain(m *testing.M) {
	auth.PasswordHashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type fixture struct {
	app   *fiber.App
	repos staff.RepositoryManager
	cfg   *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.Auth.SigningKey = "api-test-signing-key-0123456789ab"

	repos := staff.NewRepositoryManager(storetest.NewDB(t), cfg.Auth.GetRegistrySalt())
	svc, err := api.NewServices(cfg, repos, repos.ActivityLogs(), logging.New(logging.Options{Output: io.Discard}))
	require.NoError(t, err)

	return &fixture{
		app:   api.New(cfg, svc, logging.Nop{}),
		repos: repos,
		cfg:   cfg,
	}
}

func (f *fixture) seed(t *testing.T, number int, role auth.Role) *auth.Employee {
	t.Helper()
	hash, err := auth.HashPassword("secret")
	require.NoError(t, err)
	e, err := f.repos.Employees().Create(context.Background(), &auth.Employee{
		EmployeeNumber: number,
		FullName:       "Employee " + string(role),
		Role:           role,
		PasswordHash:   hash,
	})
	require.NoError(t, err)
	return e
}

func (f *fixture) do(t *testing.T, method, path string, body any, token string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	res, err := f.app.Test(req, -1)
	require.NoError(t, err)

	out := map[string]any{}
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return res, out
}

func (f *fixture) login(t *testing.T, number int) string {
	t.Helper()
	res, body := f.do(t, http.MethodPost, "/auth/login", map[string]any{"employee_id": number, "password": "secret"}, "")
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	return body["access_token"].(string)
}

func errorOf(body map[string]any) map[string]any {
	e, _ := body["error"].(map[string]any)
	return e
}

func TestLoginSetsCookieAndResolvesMe(t *testing.T) {
	f := newFixture(t)
	emp := f.seed(t, 42, auth.RoleEmployee)

	res, body := f.do(t, http.MethodPost, "/auth/login", map[string]any{"employee_id": 42, "password": "secret"}, "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "bearer", body["token_type"])
	assert.Equal(t, emp.ID.String(), body["user_id"])
	assert.EqualValues(t, 1800, body["expires_in"])

	var cookie *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == f.cfg.Auth.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, body["access_token"], cookie.Value)

	res, me := f.do(t, http.MethodGet, "/auth/me", nil, body["access_token"].(string))
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Employee employee", me["employee"].(map[string]any)["full_name"])

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(cookie)
	res, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestCookieSessionsRequireCSRFToken(t *testing.T) {
	f := newFixture(t)
	emp := f.seed(t, 42, auth.RoleEmployee)

	res, _ := f.do(t, http.MethodPost, "/auth/login", map[string]any{"employee_id": 42, "password": "secret"}, "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var cookie *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == f.cfg.Auth.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	send := func(method, path string, body any, csrfToken string) (*http.Response, map[string]any) {
		var reader io.Reader
		if body != nil {
			raw, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
		req := httptest.NewRequest(method, path, reader)
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.AddCookie(cookie)
		if csrfToken != "" {
			req.Header.Set("X-CSRF-Token", csrfToken)
		}
		res, err := f.app.Test(req, -1)
		require.NoError(t, err)
		out := map[string]any{}
		require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
		return res, out
	}

	item := map[string]any{
		"title":       "Badge",
		"task_id":     "T-1",
		"description": "collect badge",
		"assigned_to": emp.ID.String(),
	}

	res, body := send(http.MethodPost, "/checklists", item, "")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "CSRF_TOKEN_MISSING", errorOf(body)["text_code"])

	res, body = send(http.MethodGet, "/auth/csrf", nil, "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	token, _ := body["csrf_token"].(string)
	require.NotEmpty(t, token)

	res, body = send(http.MethodPost, "/checklists", item, token+"x")
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Equal(t, "CSRF_TOKEN_MISMATCH", errorOf(body)["text_code"])

	res, _ = send(http.MethodPost, "/checklists", item, token)
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	// bearer clients are not subject to the check
	res, _ = f.do(t, http.MethodPost, "/checklists", item, cookie.Value)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 42, auth.RoleEmployee)

	res, body := f.do(t, http.MethodPost, "/auth/login", map[string]any{"employee_id": 42, "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.NotEmpty(t, errorOf(body)["text_code"])

	res, body = f.do(t, http.MethodPost, "/auth/login", map[string]any{"employee_id": 5, "password": "secret"}, "")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorOf(body)["text_code"])
	assert.Contains(t, errorOf(body)["metadata"].(map[string]any)["fields"], "employee_id")

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("{not json"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	res, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newFixture(t)

	res, body := f.do(t, http.MethodGet, "/leave-requests", nil, "")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.EqualValues(t, http.StatusUnauthorized, errorOf(body)["code"])

	res, _ = f.do(t, http.MethodGet, "/leave-requests", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 42, auth.RoleEmployee)
	token := f.login(t, 42)

	res, _ := f.do(t, http.MethodPost, "/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, body := f.do(t, http.MethodGet, "/auth/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, auth.ErrTokenRevoked.TextCode, errorOf(body)["text_code"])
}

func TestRefreshRotatesPair(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 42, auth.RoleEmployee)

	_, login := f.do(t, http.MethodPost, "/auth/login", map[string]any{"employee_id": 42, "password": "secret"}, "")
	refresh := login["refresh_token"].(string)

	res, body := f.do(t, http.MethodPost, "/auth/refresh", map[string]any{"refresh_token": refresh}, "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, body["access_token"])

	res, _ = f.do(t, http.MethodPost, "/auth/refresh", map[string]any{"refresh_token": refresh}, "")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = f.do(t, http.MethodPost, "/auth/refresh", map[string]any{}, "")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestLeaveWorkflowOverHTTP(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 11, auth.RoleEmployee)
	f.seed(t, 21, auth.RoleManagerWomen)
	f.seed(t, 31, auth.RoleAdmin1)
	employee, manager, admin := f.login(t, 11), f.login(t, 21), f.login(t, 31)

	res, created := f.do(t, http.MethodPost, "/leave-requests", map[string]any{
		"start_date": "2024-02-01",
		"end_date":   "2024-02-03",
		"reason":     "family",
	}, employee)
	require.Equal(t, http.StatusCreated, res.StatusCode, created)
	id := created["id"].(string)
	assert.Equal(t, "pending_phase1", created["status"])

	res, _ = f.do(t, http.MethodPost, "/leave-requests/"+id+"/approve-phase1", nil, employee)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, _ = f.do(t, http.MethodPost, "/leave-requests/"+id+"/approve-phase2", nil, admin)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, body := f.do(t, http.MethodPost, "/leave-requests/"+id+"/approve-phase1", nil, manager)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Equal(t, "pending_phase2", body["status"])

	res, body = f.do(t, http.MethodPost, "/leave-requests/"+id+"/approve-phase2", nil, admin)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Equal(t, "approved", body["status"])

	res, body = f.do(t, http.MethodPost, "/leave-requests/"+id+"/reject", map[string]any{"reason": "late"}, admin)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "TERMINAL_LEAVE_STATE", errorOf(body)["text_code"])

	res, body = f.do(t, http.MethodGet, "/leave-requests?status=approved", nil, employee)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.EqualValues(t, 1, body["total"])

	res, body = f.do(t, http.MethodGet, "/logs?recent_hours=1", nil, admin)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var actions []string
	for _, item := range body["items"].([]any) {
		actions = append(actions, item.(map[string]any)["action_type"].(string))
	}
	assert.Contains(t, actions, string(auth.ActivityEventLeaveStatus))
	assert.Contains(t, actions, string(auth.ActivityEventLoginSuccess))

	res, _ = f.do(t, http.MethodGet, "/logs", nil, employee)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, body = f.do(t, http.MethodGet, "/dashboard", nil, manager)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.EqualValues(t, 1, body["total_leave_requests"])
	assert.EqualValues(t, 1, body["leave_requests_by_status"].(map[string]any)["approved"])
}

func TestRequestValidation(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 31, auth.RoleAdmin1)
	admin := f.login(t, 31)

	res, body := f.do(t, http.MethodGet, "/employees?limit=0", nil, admin)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, errorOf(body)["metadata"].(map[string]any)["fields"], "limit")

	res, body = f.do(t, http.MethodGet, "/employees/not-a-uuid", nil, admin)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, errorOf(body)["metadata"].(map[string]any)["fields"], "id")

	res, _ = f.do(t, http.MethodGet, "/employees?role=owner", nil, admin)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = f.do(t, http.MethodGet, "/logs?recent_hours=abc", nil, admin)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, body = f.do(t, http.MethodGet, "/nowhere", nil, "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorOf(body)["text_code"])
}

func TestEmployeesOverHTTP(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 31, auth.RoleAdmin2)
	admin := f.login(t, 31)

	res, body := f.do(t, http.MethodPost, "/employees", map[string]any{
		"employee_id": 55,
		"full_name":   "New Hire",
		"role":        "employee",
		"password":    "secret",
	}, admin)
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	assert.NotContains(t, body, "password_hash")

	res, _ = f.do(t, http.MethodPost, "/employees", map[string]any{
		"employee_id": 56,
		"full_name":   "Another Admin",
		"role":        "admin1",
		"password":    "secret",
	}, admin)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, body = f.do(t, http.MethodGet, "/employees?role=employee", nil, admin)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.EqualValues(t, 1, body["total"])

	hire := f.login(t, 55)
	res, _ = f.do(t, http.MethodGet, "/employees", nil, hire)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: api.ErrorHandler(logging.Nop{})})
	app.Use(recover.New())
	app.Get("/store", func(c *fiber.Ctx) error {
		return apperr.Store(errors.New("connection refused at 10.0.0.3"), "failed to load")
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return errors.New("secret detail")
	})
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return goerrors.New("moved on", goerrors.CategoryConflict).WithTextCode("MOVED")
	})

	tests := []struct {
		path     string
		status   int
		textCode string
		message  string
	}{
		{"/store", 500, "STORE_FAILURE", "internal server error"},
		{"/panic", 500, "INTERNAL_ERROR", "internal server error"},
		{"/plain", 500, "INTERNAL_ERROR", "internal server error"},
		{"/conflict", 400, "MOVED", "moved on"},
		{"/nowhere", 404, "NOT_FOUND", "Cannot GET /nowhere"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			res, err := app.Test(httptest.NewRequest(http.MethodGet, tc.path, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tc.status, res.StatusCode)

			var body api.ErrorBody
			require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
			assert.Equal(t, tc.textCode, body.Error.TextCode)
			assert.Equal(t, tc.message, body.Error.Message)
			assert.Nil(t, body.Error.Metadata)
		})
	}
}

func TestDemotedEmployeeLosesSessions(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 11, auth.RoleAdmin1)
	target := f.seed(t, 22, auth.RoleAdmin2)
	root := f.login(t, 11)
	demoted := f.login(t, 22)

	res, _ := f.do(t, http.MethodGet, "/dashboard", nil, demoted)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, body := f.do(t, http.MethodPut, "/employees/"+target.ID.String(), map[string]any{
		"role":   "employee",
		"status": "inactive",
	}, root)
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	for _, path := range []string{"/dashboard", "/logs", "/auth/me"} {
		res, body = f.do(t, http.MethodGet, path, nil, demoted)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode, path)
		assert.Equal(t, "TOKEN_REVOKED", errorOf(body)["text_code"], path)
	}

	res, _ = f.do(t, http.MethodGet, "/dashboard", nil, root)
	assert.Equal(t, http.StatusOK, res.StatusCode, "the caller keeps their own session")
}

func TestLogsRejectOversizedWindow(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 11, auth.RoleAdmin1)
	root := f.login(t, 11)

	res, body := f.do(t, http.MethodGet, "/logs?recent_hours=1", nil, root)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.GreaterOrEqual(t, body["total"], float64(1), "the login event")

	res, body = f.do(t, http.MethodGet, "/logs?recent_hours=3000000", nil, root)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, errorOf(body)["metadata"].(map[string]any)["fields"], "recent_hours")
}
