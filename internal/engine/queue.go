package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/pageflow/internal/host"
	"github.com/nao1215/pageflow/internal/model"
)

// DefaultSettleDelay is the pause between two applied operations.
const DefaultSettleDelay = 10 * time.Millisecond

// ApplyFunc applies one operation to the live or virtual state.
type ApplyFunc func(ctx context.Context, op model.Operation) error

// DrainResult summarizes one drain.
type DrainResult struct {
	// Applied is the number of operations that changed the document.
	Applied int

	// Dropped is the number of operations discarded because they no longer
	// matched the document or failed.
	Dropped int
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithQueueSettleDelay sets the pause between two applied operations.
func WithQueueSettleDelay(d time.Duration) QueueOption {
	return func(q *Queue) {
		if d >= 0 {
			q.settle = d
		}
	}
}

// WithIdleHook sets the function called each time a drain empties the queue.
func WithIdleHook(fn func()) QueueOption {
	return func(q *Queue) {
		q.onIdle = fn
	}
}

// WithQueueLogger sets the logger.
func WithQueueLogger(logger *slog.Logger) QueueOption {
	return func(q *Queue) {
		q.logger = logger
	}
}

// Queue is a FIFO of operations applied one at a time.
//
// The queue is Idle until Drain is called and Draining until it is empty
// again. Operations enqueued while draining are appended to the tail and
// applied by the running drain. Only one drain runs at a time.
type Queue struct {
	mu       sync.Mutex
	ops      []model.Operation
	draining bool

	apply  ApplyFunc
	settle time.Duration
	onIdle func()
	logger *slog.Logger
}

// NewQueue creates an idle queue that applies operations with apply.
func NewQueue(apply ApplyFunc, opts ...QueueOption) *Queue {
	q := &Queue{
		apply:  apply,
		settle: DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.logger == nil {
		q.logger = slog.Default()
	}
	return q
}

// Enqueue appends operations to the tail.
func (q *Queue) Enqueue(ops ...model.Operation) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ops = append(q.ops, ops...)
}

// Len returns the number of pending operations.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}

// Draining reports whether a drain is in progress.
func (q *Queue) Draining() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.draining
}

// Drain applies pending operations in FIFO order until the queue is empty,
// waiting the settle delay between two operations.
//
// A call made while another drain is running returns immediately with a
// zero result. Operations failing with ErrStaleReference or
// host.ErrMissingContainer are dropped silently; other failures are logged
// and dropped as well. The idle hook runs once the queue is empty. When ctx
// is canceled the remaining operations stay queued and ctx.Err() is
// returned.
func (q *Queue) Drain(ctx context.Context) (DrainResult, error) {
	var result DrainResult

	q.mu.Lock()
	if q.draining {
		q.mu.Unlock()
		return result, nil
	}
	q.draining = true
	q.mu.Unlock()

	first := true
	for {
		op, ok := q.pop()
		if !ok {
			break
		}

		if !first && q.settle > 0 {
			if err := q.wait(ctx); err != nil {
				q.requeue(op)
				q.stop()
				return result, err
			}
		}
		first = false

		if err := ctx.Err(); err != nil {
			q.requeue(op)
			q.stop()
			return result, err
		}

		err := q.apply(ctx, op)
		switch {
		case err == nil:
			result.Applied++
		case errors.Is(err, ErrStaleReference), errors.Is(err, host.ErrMissingContainer):
			result.Dropped++
			q.logger.Debug("operation dropped", "operation", op.String(), "reason", err.Error())
		default:
			result.Dropped++
			q.logger.Warn("operation failed", "operation", op.String(), "error", err)
		}
	}

	if q.onIdle != nil {
		q.onIdle()
	}
	return result, nil
}

// pop removes the head operation. When the queue is empty the drain ends
// under the same lock, so a concurrent Enqueue is never stranded.
func (q *Queue) pop() (model.Operation, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.ops) == 0 {
		q.draining = false
		return model.Operation{}, false
	}
	op := q.ops[0]
	q.ops = q.ops[1:]
	return op, true
}

// requeue puts op back at the head.
func (q *Queue) requeue(op model.Operation) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ops = append([]model.Operation{op}, q.ops...)
}

func (q *Queue) stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.draining = false
}

// wait sleeps for the settle delay or until ctx is done.
func (q *Queue) wait(ctx context.Context) error {
	timer := time.NewTimer(q.settle)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
