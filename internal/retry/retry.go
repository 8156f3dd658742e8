// Package retry provides a bounded-attempt execution wrapper with a
// fixed delay between attempts.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Defaults applied to upload submission.
const (
	DefaultMaxAttempts = 3
	DefaultDelay       = 1000 * time.Millisecond
)

// Retryable is implemented by errors that may succeed on a later attempt.
type Retryable interface {
	Retryable() bool
}

// Policy executes an operation up to MaxAttempts times, sleeping Delay
// between attempts. The bound is an explicit loop so it is structurally
// visible and testable.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultPolicy returns the fixed upload retry discipline.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Delay: DefaultDelay}
}

// ExhaustedError wraps the last failure after the attempt budget is
// spent. The message is attempt-count-qualified.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Do runs op until it succeeds, fails permanently, or the budget is
// spent. Attempts are strictly sequential; the attempt number passed to
// op starts at 1. An error is retried only if it implements Retryable
// and reports true. On exhaustion the last error is returned wrapped in
// an ExhaustedError.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) error {
	max := p.MaxAttempts
	if max < 1 {
		max = 1
	}

	var last error
	for attempt := 1; attempt <= max; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		last = op(ctx, attempt)
		if last == nil {
			return nil
		}

		r, ok := last.(Retryable)
		if !ok || !r.Retryable() {
			return last
		}

		if attempt < max {
			if err := sleep(ctx, p.Delay); err != nil {
				return err
			}
		}
	}

	return &ExhaustedError{Attempts: max, Last: last}
}

// sleep waits for d unless the context is cancelled first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
