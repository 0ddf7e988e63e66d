package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the payload carried by every session token.
type Claims struct {
	jwt.RegisteredClaims
	UID      string `json:"user_id"`
	UserRole string `json:"role,omitempty"`
	Type     string `json:"type"`
}

func (c *Claims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject
}

func (c *Claims) Role() Role {
	return Role(c.UserRole)
}

// Identity converts access claims into the resolved caller.
func (c *Claims) Identity(raw string) *Identity {
	id := &Identity{
		UserID: c.UserID(),
		Role:   c.Role(),
		Token:  raw,
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id
}
