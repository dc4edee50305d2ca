package services

import (
	"context"
	"time"
)

// poll calls operation up to attempts times with a fixed delay between calls
// until it reports done. It returns the last value seen; errors from single
// attempts are kept but do not stop polling.
func poll[T any](ctx context.Context, attempts int, delay time.Duration, operation func(ctx context.Context) (T, bool, error)) (T, error) {
	var (
		last    T
		lastErr error
	)
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		default:
		}

		v, done, err := operation(ctx)
		if err == nil {
			last = v
			lastErr = nil
			if done {
				return last, nil
			}
		} else {
			lastErr = err
		}

		if attempt < attempts-1 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return last, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return last, lastErr
}
