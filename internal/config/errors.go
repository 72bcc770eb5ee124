package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoDocument is returned when no input document is given.
	ErrNoDocument = errors.New("no document specified: provide an HTML file")

	// ErrInvalidThreshold is returned when the page height budget is not
	// positive.
	ErrInvalidThreshold = errors.New("invalid threshold: must be positive")

	// ErrInvalidTolerance is returned when the overflow tolerance is negative
	// or not smaller than the threshold.
	ErrInvalidTolerance = errors.New("invalid tolerance: must be non-negative and smaller than the threshold")

	// ErrInvalidPadding is returned when a padding or spacing value is
	// negative.
	ErrInvalidPadding = errors.New("invalid padding: must be non-negative")

	// ErrInvalidSettleDelay is returned when the settle delay is negative.
	ErrInvalidSettleDelay = errors.New("invalid settle delay: must be non-negative")

	// ErrInvalidDebounce is returned when the debounce window is not
	// positive.
	ErrInvalidDebounce = errors.New("invalid debounce window: must be positive")

	// ErrInvalidMaxCycles is returned when the cycle limit is not positive.
	ErrInvalidMaxCycles = errors.New("invalid max cycles: must be positive")

	// ErrInvalidPage is returned when a page number is below 1.
	ErrInvalidPage = errors.New("invalid page number: must be at least 1")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
