// Package retry runs an action under a caller-supplied back-off policy. The
// helper owns only the sleep/loop plumbing; the policy decides how long to
// wait before the next attempt, and when to give up.
package retry

import (
	"context"
	"time"
)

// DecideFunc inspects the number of retries performed so far and the error of
// the last attempt, and returns how long to wait before retrying. A zero or
// negative duration stops retrying and surfaces the error.
type DecideFunc func(retries int, err error) time.Duration

// Do invokes action, consulting decide after every failure. There is no
// internal bound on attempts; termination belongs to the policy, or to the
// context.
func Do(ctx context.Context, action func() error, decide DecideFunc) error {
	for retries := 0; ; retries++ {
		err := action()
		if err == nil {
			return nil
		}

		wait := decide(retries, err)
		if wait <= 0 {
			return err
		}

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Times is a convenience policy: up to n retries, waiting a fixed interval
// between attempts.
func Times(n int, interval time.Duration) DecideFunc {
	return func(retries int, err error) time.Duration {
		if retries >= n {
			return 0
		}
		return interval
	}
}
