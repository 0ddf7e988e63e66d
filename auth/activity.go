package auth

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventLoginSuccess    ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure    ActivityEventType = "auth.login.failure"
	ActivityEventLogout          ActivityEventType = "auth.logout"
	ActivityEventTokenRefreshed  ActivityEventType = "auth.token.refreshed"
	ActivityEventEmployeeCreated ActivityEventType = "employee.created"
	ActivityEventEmployeeUpdated ActivityEventType = "employee.updated"
	ActivityEventEmployeeDeleted ActivityEventType = "employee.deleted"
	ActivityEventLeaveCreated    ActivityEventType = "leave.created"
	ActivityEventLeaveStatus     ActivityEventType = "leave.status.changed"
	ActivityEventLeaveDeleted    ActivityEventType = "leave.deleted"
	ActivityEventReportApproved  ActivityEventType = "report.approved"
)

// ActorRef identifies who triggered an event.
type ActorRef struct {
	ID   string
	Type string
	Role string
}

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	Actor      ActorRef
	UserID     string
	ObjectType string
	ObjectID   string
	FromStatus string
	ToStatus   string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

// NormalizeActivitySink returns a sink that is safe to call.
func NormalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

// RecordActivity sends event to sink, stamping the time, and logs failures
// instead of returning them. Sinks are best effort.
func RecordActivity(ctx context.Context, sink ActivitySink, logger Logger, event ActivityEvent) {
	if sink == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := sink.Record(ctx, event); err != nil && logger != nil {
		logger.Warn("activity sink failed for %s: %v", event.EventType, err)
	}
}
