// Package activity stores the audit log. Entries are written by the
// services through auth.ActivitySink and by elevated callers directly, and
// live either in the relational database or in a MongoDB collection.
package activity

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	MaxActionTypeLength  = 100
	MaxDescriptionLength = 500
)

// Entry is one audit log record.
type Entry struct {
	bun.BaseModel `bun:"table:activity_logs,alias:al" bson:"-" json:"-"`
	ID            string         `bun:"id,pk" bson:"_id" json:"id"`
	ActionType    string         `bun:"action_type,notnull" bson:"action_type" json:"action_type"`
	UserID        string         `bun:"user_id,notnull" bson:"user_id" json:"user_id"`
	Description   string         `bun:"description,notnull" bson:"description" json:"description"`
	Metadata      map[string]any `bun:"metadata" bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt     time.Time      `bun:"created_at,notnull" bson:"created_at" json:"created_at"`
}
