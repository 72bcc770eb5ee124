package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nao1215/pageflow/internal/analyzer"
	"github.com/nao1215/pageflow/internal/host"
	"github.com/nao1215/pageflow/internal/model"
	"github.com/nao1215/pageflow/internal/virtual"
)

const (
	// DefaultMaxCycles bounds the number of cycles of one reflow run.
	DefaultMaxCycles = 1000

	// DefaultHideablePage is the page that may be hidden when no hideable
	// pages are configured.
	DefaultHideablePage = 2
)

// PageState is the visibility of one page.
type PageState int

const (
	// PageVisible means the page's blocks live in its container.
	PageVisible PageState = iota

	// PageHidden means the container is empty and the blocks are tracked by
	// a virtual store.
	PageHidden
)

// String returns the state name.
func (s PageState) String() string {
	switch s {
	case PageVisible:
		return "visible"
	case PageHidden:
		return "hidden"
	default:
		return "unknown"
	}
}

// Persistence stores the latest snapshot of a document.
type Persistence interface {
	// Save stores the snapshot, replacing the previous backup.
	Save(ctx context.Context, snapshot model.Snapshot) error

	// Load returns the latest snapshot. The boolean is false when nothing
	// has been saved yet.
	Load(ctx context.Context) (model.Snapshot, bool, error)
}

// StopReason tells why a reflow run ended.
type StopReason int

const (
	// StopFixedPoint means no pass reported a violation.
	StopFixedPoint StopReason = iota

	// StopNoProgress means every reported operation was dropped.
	StopNoProgress

	// StopOscillation means an arrangement seen earlier in the run came back.
	StopOscillation

	// StopMaxCycles means the cycle limit was reached.
	StopMaxCycles
)

// String returns the reason name.
func (r StopReason) String() string {
	switch r {
	case StopFixedPoint:
		return "fixed point"
	case StopNoProgress:
		return "no progress"
	case StopOscillation:
		return "oscillation"
	case StopMaxCycles:
		return "max cycles"
	default:
		return "unknown"
	}
}

// Result summarizes a reflow run.
type Result struct {
	// Cycles is the number of snapshots analyzed.
	Cycles int

	// Applied is the number of blocks moved.
	Applied int

	// Dropped is the number of operations discarded.
	Dropped int

	// Reason tells why the run ended.
	Reason StopReason

	// Snapshot is the last snapshot taken.
	Snapshot model.Snapshot
}

// Converged reports whether the run ended at a fixed point.
func (r Result) Converged() bool {
	return r.Reason == StopFixedPoint
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithDispatcher sets how analyzer passes are executed.
func WithDispatcher(d analyzer.Dispatcher) Option {
	return func(e *Engine) {
		e.dispatcher = d
	}
}

// WithPersistence sets the persistence bridge. Without one, snapshots are
// not saved and Restore returns ErrNoBackup.
func WithPersistence(p Persistence) Option {
	return func(e *Engine) {
		e.persistence = p
	}
}

// WithSettleDelay sets the pause between two applied operations.
func WithSettleDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.settle = d
	}
}

// WithLimits sets the height limits shared by both passes.
func WithLimits(limits analyzer.Limits) Option {
	return func(e *Engine) {
		e.limits = limits
	}
}

// WithHideable sets the pages that may be hidden.
func WithHideable(pages ...int) Option {
	return func(e *Engine) {
		e.hideable = make(map[int]bool, len(pages))
		for _, p := range pages {
			e.hideable[p] = true
		}
	}
}

// WithMaxCycles bounds the number of cycles of one reflow run.
func WithMaxCycles(n int) Option {
	return func(e *Engine) {
		e.maxCycles = n
	}
}

// WithFallbackLayout sets the padding and gap assumed for a hidden page
// when its own padding or its reference page's gap cannot be measured.
func WithFallbackLayout(padding, gap float64) Option {
	return func(e *Engine) {
		if padding >= 0 {
			e.padding = padding
		}
		if gap >= 0 {
			e.gap = gap
		}
	}
}

// Engine reflows one host document.
// Every mutation of the document and the virtual stores happens while mu is
// held; analyzer passes only see snapshot copies.
type Engine struct {
	mu sync.Mutex

	doc    host.Document
	states map[int]PageState
	stores map[int]*virtual.Store

	hideable    map[int]bool
	queue       *Queue
	dispatcher  analyzer.Dispatcher
	persistence Persistence
	limits      analyzer.Limits
	settle      time.Duration
	maxCycles   int
	padding     float64
	gap         float64
	logger      *slog.Logger

	// snapshotRequested is set by the queue's idle hook.
	snapshotRequested atomic.Bool

	// lastSaved is the fingerprint of the last persisted snapshot.
	lastSaved string
}

// New creates an engine for doc. All pages start visible.
func New(doc host.Document, opts ...Option) (*Engine, error) {
	e := &Engine{
		doc:       doc,
		states:    make(map[int]PageState),
		stores:    make(map[int]*virtual.Store),
		hideable:  map[int]bool{DefaultHideablePage: true},
		limits:    analyzer.DefaultLimits(),
		settle:    DefaultSettleDelay,
		maxCycles: DefaultMaxCycles,
		padding:   virtual.DefaultPadding,
		gap:       virtual.DefaultGap,
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.limits.Validate(); err != nil {
		return nil, err
	}
	if e.maxCycles <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxCycles, e.maxCycles)
	}
	if e.settle < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettleDelay, e.settle)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.dispatcher == nil {
		e.dispatcher = analyzer.NewConcurrent(analyzer.WithLogger(e.logger))
	}
	for _, page := range doc.Pages() {
		e.states[page] = PageVisible
	}

	e.queue = NewQueue(e.apply,
		WithQueueSettleDelay(e.settle),
		WithQueueLogger(e.logger),
		WithIdleHook(func() { e.snapshotRequested.Store(true) }),
	)
	return e, nil
}

// State returns the visibility of page.
func (e *Engine) State(page int) PageState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state(page)
}

func (e *Engine) state(page int) PageState {
	return e.states[page]
}

// HiddenPages returns the hidden pages, ascending.
func (e *Engine) HiddenPages() []int {
	e.mu.Lock()
	defer e.mu.Unlock()

	var pages []int
	for page, s := range e.states {
		if s == PageHidden {
			pages = append(pages, page)
		}
	}
	slices.Sort(pages)
	return pages
}

// Hideable reports whether page may be hidden.
func (e *Engine) Hideable(page int) bool {
	return e.hideable[page]
}

// Reflow runs cycles until the document reaches a fixed point or a
// termination guard fires.
func (e *Engine) Reflow(ctx context.Context) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reflow(ctx)
}

// reflow runs one reflow. e.mu must be held.
func (e *Engine) reflow(ctx context.Context) (Result, error) {
	var result Result
	seen := make(map[string]bool)

	e.snapshotRequested.Store(true)
	for e.snapshotRequested.Swap(false) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if result.Cycles >= e.maxCycles {
			result.Reason = StopMaxCycles
			e.logger.Warn("reflow stopped", "reason", result.Reason.String(), "cycles", result.Cycles)
			return result, nil
		}

		snapshot, err := e.snapshot()
		if err != nil {
			return result, err
		}
		result.Snapshot = snapshot
		result.Cycles++

		fingerprint := snapshot.Fingerprint()
		if seen[fingerprint] {
			result.Reason = StopOscillation
			e.logger.Warn("reflow stopped", "reason", result.Reason.String(), "cycles", result.Cycles)
			return result, nil
		}
		seen[fingerprint] = true

		e.save(ctx, snapshot, fingerprint)

		reports, err := e.dispatcher.Dispatch(ctx, snapshot, e.limits)
		if err != nil {
			return result, fmt.Errorf("failed to analyze snapshot: %w", err)
		}
		if len(reports) == 0 {
			result.Reason = StopFixedPoint
			break
		}

		for _, r := range reports {
			e.queue.Enqueue(r.Operation)
		}
		drained, err := e.queue.Drain(ctx)
		result.Applied += drained.Applied
		result.Dropped += drained.Dropped
		if err != nil {
			return result, err
		}
		if drained.Applied == 0 {
			result.Reason = StopNoProgress
			e.logger.Debug("reflow stopped", "reason", result.Reason.String(), "cycles", result.Cycles)
			return result, nil
		}
	}

	e.logger.Debug("reflow complete",
		"cycles", result.Cycles,
		"applied", result.Applied,
		"dropped", result.Dropped,
	)
	return result, nil
}

// save persists the snapshot unless it matches the last saved one.
// Failures are logged and otherwise ignored.
func (e *Engine) save(ctx context.Context, snapshot model.Snapshot, fingerprint string) {
	if e.persistence == nil || fingerprint == e.lastSaved {
		return
	}
	if err := e.persistence.Save(ctx, snapshot); err != nil {
		e.logger.Warn("failed to save snapshot", "error", fmt.Errorf("%w: %w", ErrPersistence, err))
		return
	}
	e.lastSaved = fingerprint
}

// Watch registers the engine with the document's mutation observer and
// returns a scheduler that runs one reflow per quiet window. The caller
// runs the scheduler with Run. When onResult is not nil it receives the
// outcome of every scheduled reflow.
func (e *Engine) Watch(window time.Duration, onResult func(Result, error)) *Scheduler {
	s := NewScheduler(window, func(ctx context.Context) {
		result, err := e.Reflow(ctx)
		if err != nil {
			e.logger.Warn("scheduled reflow failed", "error", err)
		}
		if onResult != nil {
			onResult(result, err)
		}
	}, WithSchedulerLogger(e.logger))

	e.doc.Observe(func(int) {
		s.Signal()
	})
	return s
}
