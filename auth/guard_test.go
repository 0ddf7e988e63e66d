package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-staff/apperr"
	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/config"
)

func TestGuardAuthenticate(t *testing.T) {
	clock := newTestClock()
	ts := newTokenService(clock)
	ctx := context.Background()

	token, err := ts.Issue("user-1", auth.RoleManagerWomen, time.Minute)
	require.NoError(t, err)

	t.Run("valid and registered", func(t *testing.T) {
		reg := &MockRegistry{}
		reg.On("IsValid", ctx, token, "user-1").Return(true).Once()

		g := auth.NewGuard(ts, reg, quietLogger{})
		id, err := g.Authenticate(ctx, "Bearer "+token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", id.UserID)
		assert.Equal(t, auth.RoleManagerWomen, id.Role)
		assert.Equal(t, token, id.Token)
		assert.Equal(t, clock.Now().Add(time.Minute), id.ExpiresAt.UTC())
		reg.AssertExpectations(t)
	})

	t.Run("revoked", func(t *testing.T) {
		reg := &MockRegistry{}
		reg.On("IsValid", ctx, token, "user-1").Return(false).Once()

		g := auth.NewGuard(ts, reg, quietLogger{})
		_, err := g.Authenticate(ctx, token)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrTokenRevoked)
		assert.Equal(t, 401, apperr.StatusCode(apperr.CategoryOf(err)))
	})

	t.Run("missing", func(t *testing.T) {
		reg := &MockRegistry{}
		g := auth.NewGuard(ts, reg, quietLogger{})
		_, err := g.Authenticate(ctx, "  ")
		assert.ErrorIs(t, err, auth.ErrMissingCredentials)
		reg.AssertNotCalled(t, "IsValid", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("expired never reaches the registry", func(t *testing.T) {
		reg := &MockRegistry{}
		g := auth.NewGuard(ts, reg, quietLogger{})

		clock.Advance(2 * time.Minute)
		defer clock.Advance(-2 * time.Minute)

		_, err := g.Authenticate(ctx, token)
		assert.ErrorIs(t, err, auth.ErrTokenExpired)
		reg.AssertNotCalled(t, "IsValid", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed", func(t *testing.T) {
		g := auth.NewGuard(ts, &MockRegistry{}, quietLogger{})
		_, err := g.Authenticate(ctx, "Bearer abc")
		assert.ErrorIs(t, err, auth.ErrTokenMalformed)
		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_FORMAT", e.Metadata["reason"])
	})

	t.Run("bad signature", func(t *testing.T) {
		other := auth.NewTokenService(otherKeyConfig(), quietLogger{}).WithClock(clock.Now)
		forged, err := other.Issue("user-1", auth.RoleAdmin1, time.Minute)
		require.NoError(t, err)

		g := auth.NewGuard(ts, &MockRegistry{}, quietLogger{})
		_, err = g.Authenticate(ctx, forged)
		assert.ErrorIs(t, err, auth.ErrTokenSignature)
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		refresh, err := ts.IssueRefresh("user-1", time.Hour)
		require.NoError(t, err)

		g := auth.NewGuard(ts, &MockRegistry{}, quietLogger{})
		_, err = g.Authenticate(ctx, refresh)
		assert.ErrorIs(t, err, auth.ErrTokenPayload)
	})
}

func otherKeyConfig() config.Auth {
	c := testAuthConfig()
	c.SigningKey = "another-signing-key-entirely-000"
	return c
}

func TestGuardAuthenticateMissingIdentityFieldsIs401(t *testing.T) {
	clock := newTestClock()
	ts := newTokenService(clock)
	cfg := testAuthConfig()

	sign := func(uid, role string) string {
		c := &auth.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    cfg.Issuer,
				IssuedAt:  jwt.NewNumericDate(clock.Now()),
				ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Minute)),
			},
			UID:      uid,
			UserRole: role,
			Type:     auth.TokenTypeAccess,
		}
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(cfg.SigningKey))
		require.NoError(t, err)
		return s
	}

	g := auth.NewGuard(ts, &MockRegistry{}, quietLogger{})

	for name, token := range map[string]string{
		"no role":      sign("user-1", ""),
		"no user id":   sign("", "employee"),
		"unknown role": sign("user-1", "superuser"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := g.Authenticate(context.Background(), token)
			require.Error(t, err)
			assert.True(t, goerrors.IsAuth(err))
			assert.ErrorIs(t, err, auth.ErrTokenPayload)
		})
	}
}

func TestAuthorize(t *testing.T) {
	g := auth.NewGuard(nil, nil, quietLogger{})
	employee := &auth.Identity{UserID: "u", Role: auth.RoleEmployee}

	id, err := g.Authorize(employee, auth.RoleEmployee, auth.RoleAdmin1)
	require.NoError(t, err)
	assert.Same(t, employee, id)

	_, err = g.Authorize(employee, auth.RoleManagerWomen, auth.RoleManagerMen)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrForbidden)
	assert.Equal(t, 403, apperr.StatusCode(apperr.CategoryOf(err)))

	_, err = g.Authorize(nil, auth.RoleEmployee)
	assert.ErrorIs(t, err, auth.ErrMissingCredentials)

	_, err = g.Authorize(&auth.Identity{UserID: "u"}, auth.RoleEmployee)
	assert.ErrorIs(t, err, auth.ErrMissingCredentials)

	_, err = g.Authorize(employee)
	assert.ErrorIs(t, err, auth.ErrForbidden)
}
