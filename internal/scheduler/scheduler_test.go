package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNewLoopRejectsNonPositiveInterval(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("zero interval should panic")
		}
	}()
	NewLoop(Options{Name: "fx"}, zerolog.Nop())
}

func TestLoopRunsTicksUntilCancelled(t *testing.T) {
	loop := NewLoop(Options{Name: "fx", Interval: 10 * time.Millisecond}, zerolog.Nop())

	var ticks atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- loop.Run(ctx, func(ctx context.Context, bucket time.Time) error {
			if ticks.Add(1) >= 3 {
				cancel()
			}
			return nil
		})
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancellation")
	}

	if got := ticks.Load(); got < 3 {
		t.Fatalf("expected at least 3 ticks, got %d", got)
	}
}

func TestLoopContinuesAfterTickError(t *testing.T) {
	loop := NewLoop(Options{Name: "fx", Interval: 5 * time.Millisecond}, zerolog.Nop())

	var ticks atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- loop.Run(ctx, func(ctx context.Context, bucket time.Time) error {
			if ticks.Add(1) >= 2 {
				cancel()
			}
			return errors.New("transient")
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancellation")
	}

	if got := ticks.Load(); got < 2 {
		t.Fatalf("a failing tick should not stop the loop, got %d ticks", got)
	}
}

func TestNextTickAlignment(t *testing.T) {
	loop := NewLoop(Options{Name: "fx", Interval: 5 * time.Minute, AlignToStart: true}, zerolog.Nop())

	now := time.Date(2026, 3, 1, 12, 2, 30, 0, time.UTC)
	next := loop.nextTick(now)
	want := time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("expected %v, got %v", want, next)
	}

	// Exactly on a boundary schedules the following bucket.
	next = loop.nextTick(want)
	if !next.Equal(want.Add(5 * time.Minute)) {
		t.Fatalf("expected %v, got %v", want.Add(5*time.Minute), next)
	}

	unaligned := NewLoop(Options{Name: "fx", Interval: 5 * time.Minute}, zerolog.Nop())
	next = unaligned.nextTick(now)
	if !next.Equal(now.Add(5 * time.Minute)) {
		t.Fatalf("expected %v, got %v", now.Add(5*time.Minute), next)
	}
}

type countingJob struct {
	runs atomic.Int32
}

func (j *countingJob) Name() string { return "counting" }
func (j *countingJob) Run() error {
	j.runs.Add(1)
	return nil
}

func TestSweeperRejectsInvalidSpec(t *testing.T) {
	s := NewSweeper(zerolog.Nop())
	if err := s.AddJob("not a spec", &countingJob{}); err == nil {
		t.Fatal("invalid cron spec should error")
	}
	if err := s.AddJob("@every 1h", &countingJob{}); err != nil {
		t.Fatalf("valid spec should register: %v", err)
	}
}
