package memsync

import (
	"context"
	"time"
)

// Sleeper abstracts the retry delay so tests run without wall-clock waits.
type Sleeper interface {
	// Sleep blocks for the given duration or until ctx is canceled.
	// Returns ctx.Err() when the context ends the wait early.
	Sleep(ctx context.Context, d time.Duration) error
}

// realSleeper is the default Sleeper backed by a timer.
type realSleeper struct{}

func (realSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
