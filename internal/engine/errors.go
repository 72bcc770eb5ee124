package engine

import "errors"

var (
	// ErrStaleReference is returned when an operation targets a block that
	// no longer exists at the recorded index. The queue drops such
	// operations.
	ErrStaleReference = errors.New("stale block reference")

	// ErrPersistence wraps failures of the persistence bridge. Save failures
	// are logged and never stop a reflow.
	ErrPersistence = errors.New("persistence failure")

	// ErrQueueDraining is returned when a snapshot is requested while
	// operations are still being applied.
	ErrQueueDraining = errors.New("operation queue is draining")

	// ErrNotHideable is returned when toggling a page that is not configured
	// as hideable.
	ErrNotHideable = errors.New("page is not hideable")

	// ErrNoBackup is returned by Restore when nothing was persisted.
	ErrNoBackup = errors.New("no persisted snapshot")

	// ErrInvalidMaxCycles is returned when the cycle limit is not positive.
	ErrInvalidMaxCycles = errors.New("invalid max cycles: must be positive")

	// ErrInvalidSettleDelay is returned when the settle delay is negative.
	ErrInvalidSettleDelay = errors.New("invalid settle delay: must not be negative")
)
