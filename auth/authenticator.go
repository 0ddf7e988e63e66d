package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-staff/apperr"
)

// LoginRequest is the login payload.
type LoginRequest struct {
	EmployeeID int    `json:"employee_id"`
	Password   string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return apperr.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.EmployeeID, validation.Required, validation.Min(10), validation.Max(999)),
			validation.Field(&r.Password, validation.Required, validation.Length(4, 0)),
		)
	}, "invalid login payload")
}

// LoginResult is returned by Login and Refresh.
type LoginResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Role         Role   `json:"role"`
	UserID       string `json:"user_id"`
	ExpiresIn    int    `json:"expires_in"`
}

// Authenticator runs the login, refresh and logout flows.
type Authenticator struct {
	provider *EmployeeProvider
	tokens   *TokenService
	registry TokenRegistry
	activity ActivitySink
	logger   Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider *EmployeeProvider, tokens *TokenService, registry TokenRegistry) *Authenticator {
	return &Authenticator{
		provider: provider,
		tokens:   tokens,
		registry: registry,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

func (a *Authenticator) WithLogger(logger Logger) *Authenticator {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (a *Authenticator) WithActivitySink(sink ActivitySink) *Authenticator {
	a.activity = NormalizeActivitySink(sink)
	return a
}

func (a *Authenticator) TokenService() *TokenService {
	return a.tokens
}

// Login verifies the credentials, ends any previous session of the
// employee and issues a new access and refresh token pair. Registry
// failures are logged and do not fail the login.
func (a *Authenticator) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	employee, err := a.provider.VerifyCredentials(ctx, req.EmployeeID, req.Password)
	if err != nil {
		a.logger.Info("login failed for employee %d: %v", req.EmployeeID, err)
		RecordActivity(ctx, a.activity, a.logger, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			Actor:     ActorRef{Type: "unknown"},
			Metadata: map[string]any{
				"employee_id": req.EmployeeID,
				"error":       err.Error(),
			},
		})
		return nil, err
	}

	userID := employee.ID.String()
	if n, err := a.registry.RevokeAllForUser(ctx, userID); err != nil {
		a.logger.Error("failed to revoke previous sessions for %s: %v", userID, err)
	} else if n > 0 {
		a.logger.Debug("revoked %d previous tokens for %s", n, userID)
	}

	result, err := a.issuePair(ctx, userID, employee.Role)
	if err != nil {
		return nil, err
	}

	RecordActivity(ctx, a.activity, a.logger, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		Actor:     ActorRef{ID: userID, Type: "employee", Role: string(employee.Role)},
		UserID:    userID,
		Metadata:  map[string]any{"employee_id": employee.EmployeeNumber},
	})

	return result, nil
}

// Refresh exchanges an active refresh token for a new pair. The presented
// token is consumed before anything else happens, so concurrent refreshes
// with the same token yield exactly one pair. Any other session of the
// employee is revoked afterwards.
func (a *Authenticator) Refresh(ctx context.Context, rawRefresh string) (*LoginResult, error) {
	token, err := NormalizeToken(rawRefresh)
	if err != nil {
		return nil, tokenFailure(err)
	}

	claims, err := a.tokens.VerifyRefresh(token)
	if err != nil {
		return nil, tokenFailure(err)
	}

	userID := claims.UserID()
	// the conditioned revoke is the single use check, only one caller can
	// flip a given refresh token
	if !a.registry.Revoke(ctx, token, userID) {
		return nil, ErrTokenRevoked
	}

	employee, err := a.provider.ActiveEmployee(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := a.registry.RevokeAllForUser(ctx, userID); err != nil {
		a.logger.Error("failed to revoke sessions during refresh for %s: %v", userID, err)
	}

	result, err := a.issuePair(ctx, userID, employee.Role)
	if err != nil {
		return nil, err
	}

	RecordActivity(ctx, a.activity, a.logger, ActivityEvent{
		EventType: ActivityEventTokenRefreshed,
		Actor:     ActorRef{ID: userID, Type: "employee", Role: string(employee.Role)},
		UserID:    userID,
	})

	return result, nil
}

// Logout revokes the presented access token and, when given, the refresh
// token of the same session.
func (a *Authenticator) Logout(ctx context.Context, identity *Identity, rawRefresh string) error {
	if identity == nil || identity.UserID == "" {
		return ErrMissingCredentials
	}

	if !a.registry.Revoke(ctx, identity.Token, identity.UserID) {
		a.logger.Warn("logout found no active access token for %s", identity.UserID)
	}

	if rawRefresh != "" {
		if token, err := NormalizeToken(rawRefresh); err == nil {
			a.registry.Revoke(ctx, token, identity.UserID)
		}
	}

	RecordActivity(ctx, a.activity, a.logger, ActivityEvent{
		EventType: ActivityEventLogout,
		Actor:     identity.ActorRef(),
		UserID:    identity.UserID,
	})

	return nil
}

func (a *Authenticator) issuePair(ctx context.Context, userID string, role Role) (*LoginResult, error) {
	accessTTL := a.tokens.AccessTTL()
	access, err := a.tokens.Issue(userID, role, accessTTL)
	if err != nil {
		return nil, err
	}
	if !a.registry.Register(ctx, userID, access, accessTTL) {
		a.logger.Warn("access token for %s not registered, revocation unavailable", userID)
	}

	refreshTTL := a.tokens.RefreshTTL()
	refresh, err := a.tokens.IssueRefresh(userID, refreshTTL)
	if err != nil {
		return nil, err
	}
	if !a.registry.Register(ctx, userID, refresh, refreshTTL) {
		a.logger.Warn("refresh token for %s not registered", userID)
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		Role:         role,
		UserID:       userID,
		ExpiresIn:    int(accessTTL / time.Second),
	}, nil
}
