// Package purchases tracks items the office needs to buy.
package purchases

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPurchased Status = "purchased"
	StatusCanceled  Status = "canceled"
)

type Category string

const (
	CategoryOfficeSupplies Category = "office_supplies"
	CategoryEquipment      Category = "equipment"
	CategoryOther          Category = "other"
)

// Item is a purchase list entry.
type Item struct {
	bun.BaseModel `bun:"table:purchase_items,alias:pi"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Quantity      int       `bun:"quantity,notnull" json:"quantity"`
	Priority      Priority  `bun:"priority,notnull" json:"priority"`
	Status        Status    `bun:"status,notnull" json:"status"`
	Category      Category  `bun:"category,notnull" json:"category"`
	Notes         string    `bun:"notes,nullzero" json:"notes,omitempty"`
	Description   string    `bun:"description,nullzero" json:"description,omitempty"`
	CreatedBy     string    `bun:"created_by,notnull" json:"created_by"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,notnull" json:"updated_at"`
}
