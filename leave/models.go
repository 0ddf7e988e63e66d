package leave

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Status is the workflow state of a leave request.
type Status string

const (
	StatusPendingPhase1 Status = "pending_phase1"
	StatusPendingPhase2 Status = "pending_phase2"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
)

// PendingStatuses are the non terminal states.
var PendingStatuses = []Status{StatusPendingPhase1, StatusPendingPhase2}

func (s Status) IsValid() bool {
	switch s {
	case StatusPendingPhase1, StatusPendingPhase2, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (s Status) IsPending() bool {
	return s == StatusPendingPhase1 || s == StatusPendingPhase2
}

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// DateLayout is the wire and storage format of leave dates.
const DateLayout = "2006-01-02"

// Request is a leave request record.
type Request struct {
	bun.BaseModel    `bun:"table:leave_requests,alias:lr"`
	ID               uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	UserID           string     `bun:"user_id,notnull" json:"user_id"`
	RequestDate      string     `bun:"request_date,notnull" json:"request_date"`
	StartDate        string     `bun:"start_date,notnull" json:"start_date"`
	EndDate          string     `bun:"end_date,notnull" json:"end_date"`
	Reason           string     `bun:"reason,notnull" json:"reason"`
	Status           Status     `bun:"status,notnull" json:"status"`
	ApprovalPhase1By string     `bun:"approval_phase1_by,nullzero" json:"approval_phase1_by,omitempty"`
	ApprovalPhase1At *time.Time `bun:"approval_phase1_at,nullzero" json:"approval_phase1_at,omitempty"`
	ApprovalPhase2By string     `bun:"approval_phase2_by,nullzero" json:"approval_phase2_by,omitempty"`
	ApprovalPhase2At *time.Time `bun:"approval_phase2_at,nullzero" json:"approval_phase2_at,omitempty"`
	RejectedBy       string     `bun:"rejected_by,nullzero" json:"rejected_by,omitempty"`
	RejectedAt       *time.Time `bun:"rejected_at,nullzero" json:"rejected_at,omitempty"`
	RejectionReason  string     `bun:"rejection_reason,nullzero" json:"rejection_reason,omitempty"`
	CreatedAt        time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt        time.Time  `bun:"updated_at,notnull" json:"updated_at"`
}

// IsOwnedBy reports whether userID created the request.
func (r *Request) IsOwnedBy(userID string) bool {
	return r != nil && userID != "" && r.UserID == userID
}
