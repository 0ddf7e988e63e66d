package leave

import (
	"context"
	"time"

	"github.com/goliatone/go-staff/apperr"
	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/logging"
)

// TransitionMetadata captures extra context for a transition.
type TransitionMetadata struct {
	Reason   string
	Metadata map[string]any
}

// TransitionContext is passed into hooks.
type TransitionContext struct {
	Actor   auth.ActorRef
	Request *Request
	From    Status
	To      Status
	Meta    TransitionMetadata
}

// TransitionHook is executed before or after a transition.
type TransitionHook func(ctx context.Context, tc TransitionContext) error

type TransitionHookPhase string

const (
	HookPhaseBefore TransitionHookPhase = "before_transition"
	HookPhaseAfter  TransitionHookPhase = "after_transition"
)

// TransitionOption customizes a single transition.
type TransitionOption func(*transitionOptions)

// StateMachine moves leave requests through the approval workflow.
type StateMachine interface {
	Transition(ctx context.Context, actor auth.ActorRef, req *Request, target Status, opts ...TransitionOption) (*Request, error)
	CanTransition(from, to Status) bool
}

// HookErrorHandler handles errors surfaced by transition hooks.
type HookErrorHandler func(ctx context.Context, phase TransitionHookPhase, err error, tc TransitionContext) error

type StateMachineOption func(*stateMachine)

func WithStateMachineClock(clock func() time.Time) StateMachineOption {
	return func(sm *stateMachine) {
		if clock != nil {
			sm.now = clock
		}
	}
}

// WithStateMachineActivitySink sets the sink that receives leave.status.changed.
func WithStateMachineActivitySink(sink auth.ActivitySink) StateMachineOption {
	return func(sm *stateMachine) {
		sm.activitySink = auth.NormalizeActivitySink(sink)
	}
}

// WithStateMachineHookErrorHandler overrides how hook failures are
// propagated. By default the hook error is returned as is.
func WithStateMachineHookErrorHandler(handler HookErrorHandler) StateMachineOption {
	return func(sm *stateMachine) {
		if handler != nil {
			sm.hookErrorHandler = handler
		}
	}
}

func WithStateMachineLogger(logger auth.Logger) StateMachineOption {
	return func(sm *stateMachine) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// WithTransitionReason sets the reason stored with a rejection and sent
// along with the activity event.
func WithTransitionReason(reason string) TransitionOption {
	return func(opts *transitionOptions) {
		opts.metadata.Reason = reason
	}
}

// WithTransitionMetadata merges metadata into the transition context.
func WithTransitionMetadata(metadata map[string]any) TransitionOption {
	return func(opts *transitionOptions) {
		if len(metadata) == 0 {
			return
		}
		if opts.metadata.Metadata == nil {
			opts.metadata.Metadata = make(map[string]any, len(metadata))
		}
		for k, v := range metadata {
			opts.metadata.Metadata[k] = v
		}
	}
}

// WithBeforeTransitionHook adds a hook executed before the status update.
func WithBeforeTransitionHook(h TransitionHook) TransitionOption {
	return func(opts *transitionOptions) {
		if h != nil {
			opts.beforeHooks = append(opts.beforeHooks, h)
		}
	}
}

// WithAfterTransitionHook adds a hook executed after the status update is
// committed. Its error does not roll the update back.
func WithAfterTransitionHook(h TransitionHook) TransitionOption {
	return func(opts *transitionOptions) {
		if h != nil {
			opts.afterHooks = append(opts.afterHooks, h)
		}
	}
}

// NewStateMachine returns the workflow backed by repo.
func NewStateMachine(repo Repository, opts ...StateMachineOption) StateMachine {
	sm := &stateMachine{
		repo: repo,
		transitions: map[Status]map[Status]struct{}{
			StatusPendingPhase1: {
				StatusPendingPhase2: {},
				StatusRejected:      {},
			},
			StatusPendingPhase2: {
				StatusApproved: {},
				StatusRejected: {},
			},
		},
		now:          func() time.Time { return time.Now().UTC() },
		activitySink: auth.NormalizeActivitySink(nil),
		logger:       logging.Default().GetLogger("leave"),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

type stateMachine struct {
	repo             Repository
	transitions      map[Status]map[Status]struct{}
	now              func() time.Time
	activitySink     auth.ActivitySink
	logger           auth.Logger
	hookErrorHandler HookErrorHandler
}

type transitionOptions struct {
	metadata    TransitionMetadata
	beforeHooks []TransitionHook
	afterHooks  []TransitionHook
}

func (o *transitionOptions) cloneMetadata() TransitionMetadata {
	var cloned map[string]any
	if len(o.metadata.Metadata) > 0 {
		cloned = make(map[string]any, len(o.metadata.Metadata))
		for k, v := range o.metadata.Metadata {
			cloned[k] = v
		}
	}
	return TransitionMetadata{
		Reason:   o.metadata.Reason,
		Metadata: cloned,
	}
}

// Transition validates from -> target against the transition table and
// persists it with an update conditioned on the status req was loaded
// with. A request that moved on in the meantime yields ErrStateConflict.
//
// Before hooks can veto the write. After hooks run once the new status is
// committed and the activity event is recorded, so an after hook error is
// reported alongside the updated request and does not undo the transition.
func (sm *stateMachine) Transition(ctx context.Context, actor auth.ActorRef, req *Request, target Status, opts ...TransitionOption) (*Request, error) {
	if req == nil {
		return nil, apperr.WithMetadata(ErrStateConflict, map[string]any{
			"target": string(target),
			"reason": "leave request is nil",
		})
	}

	from := req.Status
	if from.IsTerminal() {
		return nil, apperr.WithMetadata(ErrTerminalState, map[string]any{
			"id":   req.ID.String(),
			"from": string(from),
			"to":   string(target),
		})
	}

	if !sm.CanTransition(from, target) {
		return nil, apperr.WithMetadata(ErrStateConflict, map[string]any{
			"id":   req.ID.String(),
			"from": string(from),
			"to":   string(target),
		})
	}

	options := &transitionOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	tc := TransitionContext{
		Actor:   actor,
		Request: req,
		From:    from,
		To:      target,
		Meta:    options.cloneMetadata(),
	}

	if err := sm.runHooks(ctx, options.beforeHooks, tc, HookPhaseBefore); err != nil {
		return nil, err
	}

	updated, err := sm.repo.UpdateStatus(ctx, req.ID, from, Change{
		To:     target,
		By:     actor.ID,
		At:     sm.now(),
		Reason: tc.Meta.Reason,
	})
	if err != nil {
		return nil, err
	}

	tc.Request = updated
	auth.RecordActivity(ctx, sm.activitySink, sm.logger, auth.ActivityEvent{
		EventType:  auth.ActivityEventLeaveStatus,
		Actor:      actor,
		UserID:     updated.UserID,
		ObjectType: "leave_request",
		ObjectID:   updated.ID.String(),
		FromStatus: string(from),
		ToStatus:   string(target),
		Metadata:   transitionMetadata(tc.Meta),
		OccurredAt: sm.now(),
	})

	if err := sm.runHooks(ctx, options.afterHooks, tc, HookPhaseAfter); err != nil {
		return updated, err
	}

	return updated, nil
}

func (sm *stateMachine) CanTransition(from, to Status) bool {
	if allowed, ok := sm.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

func (sm *stateMachine) runHooks(ctx context.Context, hooks []TransitionHook, data TransitionContext, phase TransitionHookPhase) error {
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, data); err != nil {
			if sm.hookErrorHandler == nil {
				return err
			}
			return sm.hookErrorHandler(ctx, phase, err, data)
		}
	}
	return nil
}

func transitionMetadata(meta TransitionMetadata) map[string]any {
	if meta.Reason == "" && len(meta.Metadata) == 0 {
		return nil
	}

	result := map[string]any{}
	if meta.Reason != "" {
		result["reason"] = meta.Reason
	}
	for k, v := range meta.Metadata {
		result[k] = v
	}
	return result
}
