package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// EmployeeStatus is the account status of an employee record.
type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
)

func (s EmployeeStatus) IsValid() bool {
	return s == EmployeeActive || s == EmployeeInactive
}

// Employee is the credential store record.
type Employee struct {
	bun.BaseModel  `bun:"table:employees,alias:emp"`
	ID             uuid.UUID      `bun:"id,pk,type:uuid" json:"id"`
	EmployeeNumber int            `bun:"employee_number,notnull,unique" json:"employee_id"`
	FullName       string         `bun:"full_name,notnull" json:"full_name"`
	Phone          string         `bun:"phone,nullzero" json:"phone,omitempty"`
	Role           Role           `bun:"role,notnull" json:"role"`
	Status         EmployeeStatus `bun:"status,notnull" json:"status"`
	PasswordHash   string         `bun:"password_hash,nullzero" json:"-"`
	LoginAttempts  int            `bun:"login_attempts,notnull" json:"-"`
	LoginAttemptAt *time.Time     `bun:"login_attempt_at,nullzero" json:"-"`
	LoggedInAt     *time.Time     `bun:"logged_in_at,nullzero" json:"logged_in_at,omitempty"`
	CreatedAt      time.Time      `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt      time.Time      `bun:"updated_at,notnull" json:"updated_at"`
}

// HasPassword reports whether the employee can log in with a password.
func (e *Employee) HasPassword() bool {
	return e != nil && e.PasswordHash != ""
}

// SessionToken is a Token Registry entry. Only the keyed hash of the token
// is stored.
type SessionToken struct {
	bun.BaseModel `bun:"table:session_tokens,alias:stk"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid"`
	UserID        string     `bun:"user_id,notnull"`
	TokenHash     string     `bun:"token_hash,notnull,unique"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull"`
	IsActive      bool       `bun:"is_active,notnull"`
	CreatedAt     time.Time  `bun:"created_at,notnull"`
	DeactivatedAt *time.Time `bun:"deactivated_at,nullzero"`
}
