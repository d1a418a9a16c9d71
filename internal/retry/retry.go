// Package retry masks transient read failures against the store. Writes
// are never retried anywhere in the system: without idempotency keys a
// retried write risks duplicate side effects, so the asymmetry is
// deliberate.
package retry

import (
	"context"
	"time"
)

// Policy bounds the retry loop. Delay before attempt n+1 is
// BaseDelay << n (exponential, no jitter).
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
}

// Default matches the read paths: 3 attempts total, 1s/2s waits.
func Default() Policy {
	return Policy{Attempts: 3, BaseDelay: time.Second}
}

// Do runs op until it succeeds or the attempt budget is spent, returning
// the last error. The backoff sleep respects ctx cancellation.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		delay := p.BaseDelay << attempt
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
