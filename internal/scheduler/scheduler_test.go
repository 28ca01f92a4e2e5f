package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerRunsJobsAndStops(t *testing.T) {
	var runs atomic.Int64

	s := New()
	s.Register("counter", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	s.Start()

	time.Sleep(50 * time.Millisecond)
	s.Stop()

	got := runs.Load()
	if got < 2 {
		t.Fatalf("expected at least 2 runs (startup + ticks), got %d", got)
	}

	// No further runs after Stop.
	time.Sleep(30 * time.Millisecond)
	if runs.Load() != got {
		t.Fatal("job ran after Stop")
	}
}

func TestSchedulerStopIdempotent(t *testing.T) {
	s := New()
	s.Register("noop", 10*time.Millisecond, func(ctx context.Context) error {
		return nil
	})
	s.Start()

	s.Stop()
	s.Stop()
}

func TestSchedulerSurvivesFailingJob(t *testing.T) {
	var failing, healthy atomic.Int64

	s := New()
	s.Register("failing", 10*time.Millisecond, func(ctx context.Context) error {
		failing.Add(1)
		return errors.New("boom")
	})
	s.Register("healthy", 10*time.Millisecond, func(ctx context.Context) error {
		healthy.Add(1)
		return nil
	})
	s.Start()

	time.Sleep(50 * time.Millisecond)
	s.Stop()

	if failing.Load() < 2 {
		t.Fatalf("failing job should keep being retried, got %d runs", failing.Load())
	}
	if healthy.Load() < 2 {
		t.Fatalf("healthy job should keep running, got %d runs", healthy.Load())
	}
}
