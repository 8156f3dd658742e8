package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

type tempErr struct{ msg string }

func (e *tempErr) Error() string   { return e.msg }
func (e *tempErr) Retryable() bool { return true }

type fatalErr struct{ msg string }

func (e *fatalErr) Error() string { return e.msg }

func TestDoSucceedsFirstAttempt(t *testing.T) {
	p := Policy{MaxAttempts: 3, Delay: 0}

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoExhaustsBudget(t *testing.T) {
	p := Policy{MaxAttempts: 3, Delay: 0}

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		if attempt != calls {
			t.Errorf("attempt number %d does not match call count %d", attempt, calls)
		}
		return &tempErr{msg: "connection refused"}
	})

	if calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", calls)
	}

	var ex *ExhaustedError
	if !errors.As(err, &ex) {
		t.Fatalf("expected ExhaustedError, got %T: %v", err, err)
	}
	if ex.Attempts != 3 {
		t.Errorf("expected 3 recorded attempts, got %d", ex.Attempts)
	}
	var last *tempErr
	if !errors.As(err, &last) {
		t.Error("exhausted error should wrap the last failure")
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	p := Policy{MaxAttempts: 3, Delay: 0}

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		return &fatalErr{msg: "invalid server response"}
	})

	if calls != 1 {
		t.Errorf("permanent error must not be retried, got %d calls", calls)
	}
	var fe *fatalErr
	if !errors.As(err, &fe) {
		t.Errorf("expected the permanent error back, got %v", err)
	}
}

func TestDoRecoversMidway(t *testing.T) {
	p := Policy{MaxAttempts: 3, Delay: time.Millisecond}

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		if calls < 2 {
			return &tempErr{msg: "reset"}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestDoHonorsCancellation(t *testing.T) {
	p := Policy{MaxAttempts: 3, Delay: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- p.Do(ctx, func(ctx context.Context, attempt int) error {
			calls++
			return &tempErr{msg: "reset"}
		})
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.MaxAttempts != 3 {
		t.Errorf("expected 3 max attempts, got %d", p.MaxAttempts)
	}
	if p.Delay != time.Second {
		t.Errorf("expected 1s delay, got %v", p.Delay)
	}
}
