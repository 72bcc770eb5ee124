package analyzer

import (
	"context"
	"log/slog"

	"github.com/nao1215/pageflow/internal/model"
	"golang.org/x/sync/errgroup"
)

// Report is a violation found by one pass.
type Report struct {
	// Pass is the name of the pass that found the violation.
	Pass string

	// Operation is the move that resolves it.
	Operation model.Operation
}

// Dispatcher runs every pass over the same snapshot and collects their
// reports. Reports are returned in pass order regardless of how the passes
// were scheduled.
type Dispatcher interface {
	Dispatch(ctx context.Context, snapshot model.Snapshot, limits Limits) ([]Report, error)
}

// Option configures a dispatcher.
type Option func(*dispatcher)

// WithPasses replaces the default passes.
func WithPasses(passes ...Pass) Option {
	return func(d *dispatcher) {
		d.passes = passes
	}
}

// WithLogger sets the logger used to trace pass results.
func WithLogger(logger *slog.Logger) Option {
	return func(d *dispatcher) {
		d.logger = logger
	}
}

// dispatcher holds what both execution strategies share.
type dispatcher struct {
	passes []Pass
	logger *slog.Logger
}

func newDispatcher(opts []Option) dispatcher {
	d := dispatcher{passes: DefaultPasses()}
	for _, opt := range opts {
		opt(&d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// collect turns per-pass results into reports, preserving pass order.
func (d dispatcher) collect(ops []model.Operation, found []bool) []Report {
	reports := make([]Report, 0, len(d.passes))
	for i, pass := range d.passes {
		if !found[i] {
			continue
		}
		d.logger.Debug("violation detected",
			"pass", pass.Name(),
			"operation", ops[i].String(),
		)
		reports = append(reports, Report{Pass: pass.Name(), Operation: ops[i]})
	}
	return reports
}

// Sequential runs passes one after another on the calling goroutine.
type Sequential struct {
	dispatcher
}

// NewSequential creates a Sequential dispatcher.
func NewSequential(opts ...Option) *Sequential {
	return &Sequential{dispatcher: newDispatcher(opts)}
}

// Dispatch implements Dispatcher.
func (s *Sequential) Dispatch(ctx context.Context, snapshot model.Snapshot, limits Limits) ([]Report, error) {
	ops := make([]model.Operation, len(s.passes))
	found := make([]bool, len(s.passes))

	for i, pass := range s.passes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ops[i], found[i] = pass.Check(snapshot, limits)
	}

	return s.collect(ops, found), nil
}

// Concurrent runs every pass on its own goroutine. Each pass receives its
// own deep copy of the snapshot, so no memory is shared between workers or
// with the caller.
type Concurrent struct {
	dispatcher
}

// NewConcurrent creates a Concurrent dispatcher.
func NewConcurrent(opts ...Option) *Concurrent {
	return &Concurrent{dispatcher: newDispatcher(opts)}
}

// Dispatch implements Dispatcher.
func (c *Concurrent) Dispatch(ctx context.Context, snapshot model.Snapshot, limits Limits) ([]Report, error) {
	ops := make([]model.Operation, len(c.passes))
	found := make([]bool, len(c.passes))

	g, ctx := errgroup.WithContext(ctx)
	for i, pass := range c.passes {
		input := snapshot.Clone()
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// Each goroutine writes only its own slot.
			ops[i], found[i] = pass.Check(input, limits)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return c.collect(ops, found), nil
}
