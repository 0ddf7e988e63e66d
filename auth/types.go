package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-staff/logging"
)

type Logger = logging.Logger

// Identity is the resolved caller of a request.
type Identity struct {
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsElevated reports whether the caller holds a non employee role.
func (i Identity) IsElevated() bool {
	return i.Role.IsElevated()
}

// ActorRef builds the activity actor for this identity.
func (i Identity) ActorRef() ActorRef {
	return ActorRef{ID: i.UserID, Type: "employee", Role: string(i.Role)}
}

// TokenIssuer issues signed session tokens.
type TokenIssuer interface {
	Issue(subject string, role Role, ttl time.Duration) (string, error)
	IssueRefresh(subject string, ttl time.Duration) (string, error)
}

// TokenVerifier validates raw tokens. Expected failures are *TokenError.
type TokenVerifier interface {
	Verify(raw string) (*Claims, error)
	VerifyRefresh(raw string) (*Claims, error)
}

// TokenRegistry is the persisted allow list of issued tokens.
type TokenRegistry interface {
	Register(ctx context.Context, userID, rawToken string, ttl time.Duration) bool
	IsValid(ctx context.Context, rawToken, userID string) bool
	Revoke(ctx context.Context, rawToken, userID string) bool
	RevokeAllForUser(ctx context.Context, userID string) (int, error)
	SweepExpired(ctx context.Context) (int, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
