package analyzer

import (
	"github.com/nao1215/pageflow/internal/model"
)

// Pass is one flow analysis pass.
type Pass interface {
	// Check inspects the snapshot and returns at most one operation.
	// The second return value is false when the snapshot has no violation.
	Check(snapshot model.Snapshot, limits Limits) (model.Operation, bool)

	// Name returns the pass name for logging.
	Name() string
}

// DefaultPasses returns the overflow and underflow passes, in that order.
func DefaultPasses() []Pass {
	return []Pass{OverflowPass{}, UnderflowPass{}}
}

// OverflowPass detects a page whose content exceeds the height budget.
type OverflowPass struct{}

// Name implements Pass.
func (OverflowPass) Name() string {
	return "overflow"
}

// Check implements Pass. Pages are visited in ascending order and the first
// page whose effective bottom exceeds Threshold+Tolerance reports a move of
// its last block.
func (OverflowPass) Check(snapshot model.Snapshot, limits Limits) (model.Operation, bool) {
	for _, page := range snapshot.Pages() {
		if len(page.Descriptors) == 0 {
			continue
		}

		if Extent(page.Descriptors, limits) > limits.OverflowLimit() {
			return model.NewOverflow(len(page.Descriptors)-1, page.Number), true
		}
	}
	return model.Operation{}, false
}

// UnderflowPass detects a page with room for the next page's leading block.
type UnderflowPass struct{}

// Name implements Pass.
func (UnderflowPass) Name() string {
	return "underflow"
}

// Check implements Pass. Adjacent page pairs are visited in ascending order;
// the first pair where the next page's first block fits into
// Threshold - bottom(current) reports a move of that block.
func (UnderflowPass) Check(snapshot model.Snapshot, limits Limits) (model.Operation, bool) {
	pages := snapshot.Pages()
	for i := 0; i+1 < len(pages); i++ {
		current, next := pages[i], pages[i+1]
		if len(next.Descriptors) == 0 {
			continue
		}

		available := limits.Threshold - Extent(current.Descriptors, limits)
		if next.Descriptors[0].Height <= available {
			return model.NewUnderflow(0, next.Number, current.Number), true
		}
	}
	return model.Operation{}, false
}

// Extent returns how far a page's content reaches.
//
// A live page reaches the bottom position of its last block. A virtual page
// has no measured positions, so its extent is aggregated as the padding plus
// the sum of block heights. The padding is the top of the first estimated
// block, which the virtual store stacks from the padding it read from the
// container; limits.VirtualPadding applies when the descriptors carry no
// estimate. An empty page reaches 0. Both passes use this function so that
// they always agree on a page's extent.
func Extent(descs []model.ContentDescriptor, limits Limits) float64 {
	if len(descs) == 0 {
		return 0
	}

	last := descs[len(descs)-1]
	if !last.Virtual {
		return last.BottomPosition
	}

	total := virtualPadding(descs[0], limits)
	for _, d := range descs {
		total += d.Height
	}
	return total
}

// virtualPadding returns the top padding of a virtual page from its first
// descriptor.
func virtualPadding(first model.ContentDescriptor, limits Limits) float64 {
	top := first.BottomPosition - first.Height
	if first.BottomPosition <= 0 || top < 0 {
		return limits.VirtualPadding
	}
	return top
}
