package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

// TestSchedulerCoalesces verifies a burst of signals fires once.
func TestSchedulerCoalesces(t *testing.T) {
	t.Parallel()

	fired := make(chan struct{}, 10)
	s := NewScheduler(20*time.Millisecond, func(context.Context) {
		fired <- struct{}{}
	}, WithSchedulerLogger(slog.New(slog.DiscardHandler)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	for range 5 {
		s.Signal()
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not fire")
	}

	time.Sleep(100 * time.Millisecond)
	if n := len(fired); n != 0 {
		t.Errorf("scheduler fired %d extra times", n)
	}
	if s.Pending() {
		t.Error("Pending() = true after firing")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

// TestSchedulerFlush verifies Flush serves a pending signal immediately.
func TestSchedulerFlush(t *testing.T) {
	t.Parallel()

	var count atomic.Int32
	s := NewScheduler(0, func(context.Context) {
		count.Add(1)
	})

	if s.Flush(context.Background()) {
		t.Error("Flush() without a signal should not fire")
	}

	s.Signal()
	s.Signal()
	if !s.Pending() {
		t.Error("Pending() = false after Signal()")
	}
	if !s.Flush(context.Background()) {
		t.Error("Flush() should fire for a pending signal")
	}
	if count.Load() != 1 {
		t.Errorf("fired %d times, want 1", count.Load())
	}
	if s.Flush(context.Background()) {
		t.Error("second Flush() should not fire")
	}
}

// TestWatch verifies document mutations schedule a reflow.
func TestWatch(t *testing.T) {
	t.Parallel()

	doc := buildDoc(t, []float64{1376}, []float64{100})
	e := newEngine(t, doc)
	s := e.Watch(time.Hour, nil)

	if s.Pending() {
		t.Fatal("no mutation happened yet")
	}

	removeBlock(t, doc, 2, 0)
	appendBlock(t, doc, 2, 100, "edited")
	if !s.Pending() {
		t.Fatal("mutations should mark the document dirty")
	}

	if !s.Flush(context.Background()) {
		t.Fatal("Flush() should run the reflow")
	}
	equalStrings(t, "page 1", markups(t, doc, 1), []string{"p1-0", "edited"})
}

func TestWatchReportsResult(t *testing.T) {
	t.Parallel()

	doc := buildDoc(t, []float64{1376}, []float64{100})
	e := newEngine(t, doc)

	var got []Result
	s := e.Watch(time.Hour, func(r Result, err error) {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		got = append(got, r)
	})

	appendBlock(t, doc, 1, 300, "late")
	s.Flush(context.Background())

	if len(got) != 1 {
		t.Fatalf("expected one result, got %d", len(got))
	}
	if got[0].Applied != 1 || !got[0].Converged() {
		t.Errorf("expected one converged move, got %+v", got[0])
	}
	equalStrings(t, "page 2", markups(t, doc, 2), []string{"late", "p2-0"})
}
