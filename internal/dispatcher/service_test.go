package dispatcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-statuspage/pkg/interfaces/queue"
)

func newTestPool(t *testing.T, cfg Config) *Service {
	t.Helper()
	svc, err := New(Dependencies{Name: "test", Config: cfg})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = svc.Close(ctx)
	})
	return svc
}

func TestEnqueuePreservesOrderPerKey(t *testing.T) {
	svc := newTestPool(t, Config{Workers: 4, QueueSize: 64})

	var mu sync.Mutex
	var got []int
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		err := svc.Enqueue(context.Background(), queue.Job{
			Key: "org-a",
			Run: func(ctx context.Context) error {
				defer wg.Done()
				mu.Lock()
				got = append(got, i)
				mu.Unlock()
				return nil
			},
		})
		if err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	wg.Wait()

	for i, v := range got {
		if v != i {
			t.Fatalf("jobs for one key ran out of order: %v", got)
		}
	}
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	svc := newTestPool(t, Config{Workers: 1, QueueSize: 1})

	release := make(chan struct{})
	started := make(chan struct{})
	block := queue.Job{Key: "k", Run: func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}}
	if err := svc.Enqueue(context.Background(), block); err != nil {
		t.Fatalf("enqueue blocker: %v", err)
	}
	<-started

	noop := queue.Job{Key: "k", Run: func(ctx context.Context) error { return nil }}
	if err := svc.Enqueue(context.Background(), noop); err != nil {
		t.Fatalf("enqueue into free slot: %v", err)
	}
	if err := svc.Enqueue(context.Background(), noop); !errors.Is(err, queue.ErrFull) {
		t.Fatalf("expected ErrFull, got %v", err)
	}
	close(release)

	if stats := svc.Stats(); stats.Dropped != 1 {
		t.Fatalf("expected 1 dropped job, got %+v", stats)
	}
}

func TestPanickingJobDoesNotKillWorker(t *testing.T) {
	svc := newTestPool(t, Config{Workers: 1, QueueSize: 4})

	done := make(chan struct{})
	_ = svc.Enqueue(context.Background(), queue.Job{Name: "boom", Run: func(ctx context.Context) error {
		panic("boom")
	}})
	_ = svc.Enqueue(context.Background(), queue.Job{Name: "after", Run: func(ctx context.Context) error {
		close(done)
		return nil
	}})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("worker did not survive panic")
	}
	if stats := svc.Stats(); stats.Panicked != 1 {
		t.Fatalf("expected panic to be counted, got %+v", stats)
	}
}

func TestCloseDrainsAndRejects(t *testing.T) {
	svc, err := New(Dependencies{Config: Config{Workers: 2, QueueSize: 8}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	var mu sync.Mutex
	ran := 0
	for i := 0; i < 5; i++ {
		_ = svc.Enqueue(context.Background(), queue.Job{Run: func(ctx context.Context) error {
			mu.Lock()
			ran++
			mu.Unlock()
			return nil
		}})
	}
	if err := svc.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if ran != 5 {
		t.Fatalf("expected queued jobs to drain, ran %d", ran)
	}
	err = svc.Enqueue(context.Background(), queue.Job{Run: func(ctx context.Context) error { return nil }})
	if !errors.Is(err, queue.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := svc.Close(context.Background()); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}
}

func TestJobTimeoutCancelsContext(t *testing.T) {
	svc := newTestPool(t, Config{Workers: 1, JobTimeout: 20 * time.Millisecond})
	done := make(chan error, 1)
	_ = svc.Enqueue(context.Background(), queue.Job{Run: func(ctx context.Context) error {
		<-ctx.Done()
		done <- ctx.Err()
		return ctx.Err()
	}})
	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline exceeded, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("job timeout not applied")
	}
}
