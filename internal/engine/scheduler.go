package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultDebounce is the quiet window after the last signal before a
// scheduled reflow fires.
const DefaultDebounce = 100 * time.Millisecond

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerLogger sets the logger.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// Scheduler coalesces dirty signals. Each Signal marks the document dirty
// and restarts the quiet window; when the window expires without another
// signal, the callback runs once.
type Scheduler struct {
	window time.Duration
	fire   func(ctx context.Context)
	logger *slog.Logger

	// dirty is set by Signal and cleared by whoever fires.
	dirty atomic.Bool

	// wake restarts the window in Run. Buffered so that Signal never blocks.
	wake chan struct{}

	// fireMu keeps Run and Flush from firing concurrently.
	fireMu sync.Mutex
}

// NewScheduler creates a scheduler. A non-positive window selects
// DefaultDebounce.
func NewScheduler(window time.Duration, fire func(ctx context.Context), opts ...SchedulerOption) *Scheduler {
	if window <= 0 {
		window = DefaultDebounce
	}
	s := &Scheduler{
		window: window,
		fire:   fire,
		wake:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Signal marks the document dirty. It never blocks and may be called from
// any goroutine, including from inside a mutation.
func (s *Scheduler) Signal() {
	s.dirty.Store(true)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Pending reports whether a signal has not been served yet.
func (s *Scheduler) Pending() bool {
	return s.dirty.Load()
}

// Run serves signals until ctx is canceled and returns ctx.Err().
func (s *Scheduler) Run(ctx context.Context) error {
	var (
		timer  *time.Timer
		expire <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-s.wake:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(s.window)
			expire = timer.C

		case <-expire:
			timer = nil
			expire = nil
			s.serve(ctx)
		}
	}
}

// Flush runs the callback now when a signal is pending and reports whether
// it did. It waits for the callback to return.
func (s *Scheduler) Flush(ctx context.Context) bool {
	return s.serve(ctx)
}

// serve fires once if the document is dirty.
func (s *Scheduler) serve(ctx context.Context) bool {
	s.fireMu.Lock()
	defer s.fireMu.Unlock()

	if !s.dirty.Swap(false) {
		return false
	}
	s.logger.Debug("scheduled reflow")
	s.fire(ctx)
	return true
}
