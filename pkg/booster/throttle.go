package booster

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// throttle enforces a minimum delay between consecutive classifier calls.
type throttle struct {
	last     time.Time
	mu       sync.Mutex
	minDelay time.Duration
}

func newThrottle(minDelay time.Duration) *throttle {
	return &throttle{minDelay: minDelay}
}

// Wait blocks until minDelay has passed since the previous call, or ctx is done.
func (t *throttle) Wait(ctx context.Context, logger *slog.Logger) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.minDelay > 0 && !t.last.IsZero() {
		if elapsed := time.Since(t.last); elapsed < t.minDelay {
			wait := t.minDelay - elapsed
			if logger != nil {
				logger.Debug("classifier throttle pause", "wait", wait)
			}
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}

	t.last = time.Now()
	return nil
}
