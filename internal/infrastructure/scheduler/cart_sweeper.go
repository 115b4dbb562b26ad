package scheduler

import (
	"context"
	"time"
)

// DefaultSweepInterval is used when the configured interval is not positive
const DefaultSweepInterval = 5 * time.Minute

// CartSweeper evicts idle cart sessions
type CartSweeper interface {
	Sweep(ctx context.Context) int
}

// CartSweepTask wraps a sweeper as a scheduler task
func CartSweepTask(sweeper CartSweeper, interval time.Duration) Task {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return Task{
		Name:     "cart-sweep",
		Interval: interval,
		Run: func(ctx context.Context) error {
			sweeper.Sweep(ctx)
			return nil
		},
	}
}
