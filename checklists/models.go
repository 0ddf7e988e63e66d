// Package checklists holds task checklist items assigned to employees.
package checklists

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Priority string

const (
	PriorityLower  Priority = "lower"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Item is a single checklist entry.
type Item struct {
	bun.BaseModel `bun:"table:checklists,alias:cl"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Title         string    `bun:"title,notnull" json:"title"`
	TaskID        string    `bun:"task_id,notnull" json:"task_id"`
	Description   string    `bun:"description,notnull" json:"description"`
	IsCompleted   bool      `bun:"is_completed,notnull" json:"is_completed"`
	AssignedTo    string    `bun:"assigned_to,notnull" json:"assigned_to"`
	CreatedBy     string    `bun:"created_by,notnull" json:"created_by"`
	DueDate       string    `bun:"due_date,notnull" json:"due_date"`
	Priority      Priority  `bun:"priority,notnull" json:"priority"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// CanWrite reports whether userID is the assignee or the creator.
func (i *Item) CanWrite(userID string) bool {
	return userID != "" && (i.AssignedTo == userID || i.CreatedBy == userID)
}
