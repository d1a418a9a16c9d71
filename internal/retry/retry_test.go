package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy() Policy {
	return Policy{Attempts: 3, BaseDelay: time.Millisecond}
}

func TestSucceedsOnThirdAttempt(t *testing.T) {
	attempts := 0
	err := fastPolicy().Do(context.Background(), func(_ context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestSurfacesLastErrorAfterBudget(t *testing.T) {
	attempts := 0
	lastErr := errors.New("still down")
	err := fastPolicy().Do(context.Background(), func(_ context.Context) error {
		attempts++
		if attempts == 3 {
			return lastErr
		}
		return errors.New("earlier failure")
	})
	if !errors.Is(err, lastErr) {
		t.Fatalf("expected the final error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want exactly 3 (no further attempts)", attempts)
	}
}

func TestFirstAttemptSuccessSkipsBackoff(t *testing.T) {
	attempts := 0
	start := time.Now()
	err := Policy{Attempts: 3, BaseDelay: time.Hour}.Do(context.Background(), func(_ context.Context) error {
		attempts++
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
	if time.Since(start) > time.Second {
		t.Fatal("success must not sleep")
	}
}

func TestContextCancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := Policy{Attempts: 3, BaseDelay: time.Hour}.Do(ctx, func(_ context.Context) error {
		attempts++
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1 (cancelled during first backoff)", attempts)
	}
}

func TestZeroAttemptsStillRunsOnce(t *testing.T) {
	attempts := 0
	err := Policy{Attempts: 0, BaseDelay: time.Millisecond}.Do(context.Background(), func(_ context.Context) error {
		attempts++
		return errors.New("boom")
	})
	if err == nil || attempts != 1 {
		t.Fatalf("expected one attempt and an error, got attempts=%d err=%v", attempts, err)
	}
}
