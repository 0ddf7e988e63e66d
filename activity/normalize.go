package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-staff/auth"
)

const (
	MetadataKeyActorRole  = "actor_role"
	MetadataKeyActorType  = "actor_type"
	MetadataKeyObjectType = "object_type"
	MetadataKeyObjectID   = "object_id"
	MetadataKeyFromStatus = "from_status"
	MetadataKeyToStatus   = "to_status"

	defaultActorID = "system"
)

// Option customizes FromEvent.
type Option func(*normalizeOptions)

type normalizeOptions struct {
	actorFallback string
	describe      func(auth.ActivityEvent) string
	now           func() time.Time
}

// WithActorFallback sets the user id recorded when the event names no actor.
func WithActorFallback(actorID string) Option {
	return func(o *normalizeOptions) {
		o.actorFallback = strings.TrimSpace(actorID)
	}
}

// WithDescriber overrides how the description line is built.
func WithDescriber(fn func(auth.ActivityEvent) string) Option {
	return func(o *normalizeOptions) {
		if fn != nil {
			o.describe = fn
		}
	}
}

// WithClock sets the time used for events without OccurredAt.
func WithClock(now func() time.Time) Option {
	return func(o *normalizeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// FromEvent maps an auth.ActivityEvent onto a log entry. The event metadata
// is copied, never shared.
func FromEvent(event auth.ActivityEvent, opts ...Option) *Entry {
	o := normalizeOptions{
		actorFallback: defaultActorID,
		describe:      Describe,
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	createdAt := event.OccurredAt
	if createdAt.IsZero() {
		createdAt = o.now()
	}

	return &Entry{
		ActionType:  truncate(string(event.EventType), MaxActionTypeLength),
		UserID:      firstNonEmpty(strings.TrimSpace(event.Actor.ID), strings.TrimSpace(event.UserID), o.actorFallback),
		Description: truncate(o.describe(event), MaxDescriptionLength),
		Metadata:    eventMetadata(event),
		CreatedAt:   createdAt,
	}
}

// Describe renders a one line summary such as
// "leave.status.changed leave_request 42: pending_phase1 -> pending_phase2".
func Describe(event auth.ActivityEvent) string {
	var b strings.Builder
	b.WriteString(string(event.EventType))
	if event.ObjectType != "" {
		b.WriteString(" ")
		b.WriteString(event.ObjectType)
	}
	if event.ObjectID != "" {
		b.WriteString(" ")
		b.WriteString(event.ObjectID)
	}
	if event.FromStatus != "" || event.ToStatus != "" {
		fmt.Fprintf(&b, ": %s -> %s", orDash(event.FromStatus), orDash(event.ToStatus))
	}
	return b.String()
}

func eventMetadata(event auth.ActivityEvent) map[string]any {
	out := make(map[string]any, len(event.Metadata)+6)
	for k, v := range event.Metadata {
		out[k] = v
	}

	setIfMissing := func(key, value string) {
		if value == "" {
			return
		}
		if _, ok := out[key]; !ok {
			out[key] = value
		}
	}
	setIfMissing(MetadataKeyActorType, strings.TrimSpace(event.Actor.Type))
	setIfMissing(MetadataKeyActorRole, strings.TrimSpace(event.Actor.Role))
	setIfMissing(MetadataKeyObjectType, event.ObjectType)
	setIfMissing(MetadataKeyObjectID, event.ObjectID)

	if event.FromStatus != "" {
		out[MetadataKeyFromStatus] = event.FromStatus
	}
	if event.ToStatus != "" {
		out[MetadataKeyToStatus] = event.ToStatus
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
