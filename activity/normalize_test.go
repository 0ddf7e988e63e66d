package activity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/goliatone/go-staff/activity"
	"github.com/goliatone/go-staff/auth"
)

func TestFromEvent(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)
	event := auth.ActivityEvent{
		EventType:  auth.ActivityEventLeaveStatus,
		Actor:      auth.ActorRef{ID: "mgr-1", Type: "employee", Role: "manager_men"},
		UserID:     "emp-7",
		ObjectType: "leave_request",
		ObjectID:   "42",
		FromStatus: "pending_phase1",
		ToStatus:   "pending_phase2",
		Metadata:   map[string]any{"reason": "ok"},
		OccurredAt: ts,
	}

	out := activity.FromEvent(event)

	assert.Equal(t, "leave.status.changed", out.ActionType)
	assert.Equal(t, "mgr-1", out.UserID)
	assert.Equal(t, "leave.status.changed leave_request 42: pending_phase1 -> pending_phase2", out.Description)
	assert.Equal(t, ts, out.CreatedAt)
	assert.Equal(t, "ok", out.Metadata["reason"])
	assert.Equal(t, "manager_men", out.Metadata[activity.MetadataKeyActorRole])
	assert.Equal(t, "pending_phase2", out.Metadata[activity.MetadataKeyToStatus])
	assert.Len(t, event.Metadata, 1, "source metadata must not change")
}

func TestFromEventActorFallbackChain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		event  auth.ActivityEvent
		opts   []activity.Option
		expect string
	}{
		{"actor id", auth.ActivityEvent{Actor: auth.ActorRef{ID: "a-1"}, UserID: "u-1"}, nil, "a-1"},
		{"user id", auth.ActivityEvent{UserID: "u-2"}, nil, "u-2"},
		{"default fallback", auth.ActivityEvent{}, nil, "system"},
		{"configured fallback", auth.ActivityEvent{}, []activity.Option{activity.WithActorFallback("sweeper")}, "sweeper"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expect, activity.FromEvent(tc.event, tc.opts...).UserID)
		})
	}
}

func TestFromEventOptions(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	long := make([]rune, activity.MaxDescriptionLength+50)
	for i := range long {
		long[i] = 'x'
	}

	out := activity.FromEvent(
		auth.ActivityEvent{EventType: auth.ActivityEventLogout},
		activity.WithClock(func() time.Time { return now }),
		activity.WithDescriber(func(auth.ActivityEvent) string { return string(long) }),
	)

	assert.Equal(t, now, out.CreatedAt)
	assert.Len(t, []rune(out.Description), activity.MaxDescriptionLength)
	assert.Nil(t, out.Metadata)
}
