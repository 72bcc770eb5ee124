package analyzer

import (
	"errors"
	"fmt"

	"github.com/nao1215/pageflow/internal/virtual"
)

const (
	// DefaultThreshold is the page height budget in the reference layout.
	DefaultThreshold = 1550.0

	// DefaultTolerance is the slack allowed above the threshold before a
	// page counts as overflowing. It absorbs measurement rounding so that a
	// page sitting exactly at the threshold is stable.
	DefaultTolerance = 2.0
)

var (
	// ErrInvalidThreshold is returned when the threshold is not positive.
	ErrInvalidThreshold = errors.New("invalid threshold: must be positive")

	// ErrInvalidTolerance is returned when the tolerance is negative or not
	// smaller than the threshold.
	ErrInvalidTolerance = errors.New("invalid tolerance: must be non-negative and smaller than the threshold")
)

// Limits are the height limits shared by every pass.
type Limits struct {
	// Threshold is the page height budget.
	Threshold float64

	// Tolerance is the overflow slack above Threshold.
	Tolerance float64

	// VirtualPadding is the top padding assumed when aggregating the height
	// of a virtual page whose descriptors carry no estimated positions.
	VirtualPadding float64
}

// DefaultLimits returns the reference configuration.
func DefaultLimits() Limits {
	return Limits{
		Threshold:      DefaultThreshold,
		Tolerance:      DefaultTolerance,
		VirtualPadding: virtual.DefaultPadding,
	}
}

// Validate checks threshold and tolerance together.
func (l Limits) Validate() error {
	if l.Threshold <= 0 {
		return ErrInvalidThreshold
	}
	if l.Tolerance < 0 || l.Tolerance >= l.Threshold {
		return fmt.Errorf("%w (tolerance %v, threshold %v)", ErrInvalidTolerance, l.Tolerance, l.Threshold)
	}
	return nil
}

// OverflowLimit is the bottom position above which a page overflows.
func (l Limits) OverflowLimit() float64 {
	return l.Threshold + l.Tolerance
}
