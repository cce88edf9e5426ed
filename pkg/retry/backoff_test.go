package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExponentialBackoffCaps(t *testing.T) {
	b := ExponentialBackoff{Base: 100 * time.Millisecond, Max: time.Second}
	cases := map[int]time.Duration{
		0:  100 * time.Millisecond,
		1:  100 * time.Millisecond,
		2:  200 * time.Millisecond,
		4:  800 * time.Millisecond,
		5:  time.Second,
		80: time.Second,
	}
	for attempt, want := range cases {
		if got := b.Next(attempt); got != want {
			t.Fatalf("Next(%d) = %s want %s", attempt, got, want)
		}
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	var waits []time.Duration
	calls := 0
	err := Do(context.Background(), Policy{
		Attempts: 3,
		Sleep: func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		},
	}, func(attempt int) error {
		calls++
		if attempt < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 || len(waits) != 2 {
		t.Fatalf("expected 3 calls and 2 waits, got %d %d", calls, len(waits))
	}
}

func TestDoReturnsLastError(t *testing.T) {
	boom := errors.New("boom")
	var observed []int
	err := Do(context.Background(), Policy{
		Attempts: 2,
		Sleep:    func(context.Context, time.Duration) error { return nil },
		OnError:  func(attempt int, _ error) { observed = append(observed, attempt) },
	}, func(int) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(observed) != 2 {
		t.Fatalf("expected OnError per attempt, got %v", observed)
	}
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Do(ctx, Policy{Attempts: 5, Backoff: ExponentialBackoff{Base: time.Hour}}, func(int) error {
		calls++
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected single call, got %d", calls)
	}
}
