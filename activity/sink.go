package activity

import (
	"context"

	"github.com/goliatone/go-staff/auth"
)

// Sink writes auth activity events to a Store.
type Sink struct {
	store Store
	opts  []Option
}

var _ auth.ActivitySink = (*Sink)(nil)

func NewSink(store Store, opts ...Option) *Sink {
	return &Sink{store: store, opts: opts}
}

// Record implements auth.ActivitySink.
func (s *Sink) Record(ctx context.Context, event auth.ActivityEvent) error {
	return s.store.Insert(ctx, FromEvent(event, s.opts...))
}
