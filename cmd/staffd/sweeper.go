package main

import (
	"context"
	"time"

	"github.com/goliatone/go-staff/logging"
)

type sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// RunSweeper deletes expired registry entries every interval until ctx is
// done. A non-positive interval disables it.
func RunSweeper(ctx context.Context, registry sweeper, interval time.Duration, logger logging.Logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := registry.SweepExpired(ctx)
			if err != nil {
				logger.Error("token sweep failed: %v", err)
				continue
			}
			if n > 0 {
				logger.Info("swept %d expired tokens", n)
			}
		}
	}
}
