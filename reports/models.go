// Package reports handles daily work reports and their approval.
package reports

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

// Report is one day of work logged by an employee.
type Report struct {
	bun.BaseModel `bun:"table:reports,alias:rp"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	UserID        string     `bun:"user_id,notnull" json:"user_id"`
	Date          string     `bun:"report_date,notnull" json:"date"`
	Description   string     `bun:"description,notnull" json:"description"`
	HoursWorked   float64    `bun:"hours_worked,notnull" json:"hours_worked"`
	Status        Status     `bun:"status,notnull" json:"status"`
	ApprovedBy    string     `bun:"approved_by,nullzero" json:"approved_by,omitempty"`
	ApprovedAt    *time.Time `bun:"approved_at,nullzero" json:"approved_at,omitempty"`
	CreatedAt     time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at,notnull" json:"updated_at"`
}
