package app

import (
	"context"
	"time"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// StartPoller refreshes the offline queue depth at a fixed cadence so requests
// enqueued by other clients of a shared store (postgres, redis) show up in the
// header. Read failures back off exponentially up to maxBackoff. It returns
// immediately.
func StartPoller(ctx context.Context, c *Controller, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			if err := c.RefreshQueue(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				failures++
				c.log.Debug().Err(err).Int("failures", failures).Msg("queue poll failed")
			} else {
				failures = 0
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
}

// calculateBackoff doubles base for every consecutive failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
