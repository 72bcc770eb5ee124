package report

import (
	"maps"
	"slices"
	"time"

	"github.com/nao1215/pageflow/internal/analyzer"
	"github.com/nao1215/pageflow/internal/engine"
)

// Reflow is the data rendered by every writer.
type Reflow struct {
	// Document is the name of the document that was reflowed.
	Document string `json:"document"`

	// GeneratedAt is when the report was built.
	GeneratedAt time.Time `json:"generatedAt"`

	// Cycles is the number of snapshots analyzed.
	Cycles int `json:"cycles"`

	// Applied is the number of blocks moved.
	Applied int `json:"applied"`

	// Dropped is the number of operations discarded.
	Dropped int `json:"dropped"`

	// StopReason tells why the run ended.
	StopReason string `json:"stopReason"`

	// Converged is true when the run ended at a fixed point.
	Converged bool `json:"converged"`

	// Threshold is the page height budget used for the run.
	Threshold float64 `json:"threshold"`

	// Fingerprint identifies the final arrangement.
	Fingerprint string `json:"fingerprint"`

	// Pages holds one entry per page in ascending order.
	Pages []Page `json:"pages"`
}

// Page summarizes one page of the final arrangement.
type Page struct {
	Number      int            `json:"number"`
	State       string         `json:"state"`
	Blocks      int            `json:"blocks"`
	Extent      float64        `json:"extent"`
	Overflowing bool           `json:"overflowing"`
	Tags        map[string]int `json:"tags,omitempty"`
}

// StateFunc returns the visibility of a page.
type StateFunc func(page int) engine.PageState

// NewReflow builds a report from the result of a reflow run.
// A nil state function reports every page as visible.
func NewReflow(document string, result engine.Result, limits analyzer.Limits, state StateFunc) *Reflow {
	if state == nil {
		state = func(int) engine.PageState { return engine.PageVisible }
	}

	r := &Reflow{
		Document:    document,
		GeneratedAt: time.Now(),
		Cycles:      result.Cycles,
		Applied:     result.Applied,
		Dropped:     result.Dropped,
		StopReason:  result.Reason.String(),
		Converged:   result.Converged(),
		Threshold:   limits.Threshold,
		Fingerprint: result.Snapshot.Fingerprint(),
	}

	for _, group := range result.Snapshot.Pages() {
		extent := analyzer.Extent(group.Descriptors, limits)
		page := Page{
			Number:      group.Number,
			State:       state(group.Number).String(),
			Blocks:      len(group.Descriptors),
			Extent:      extent,
			Overflowing: extent > limits.OverflowLimit(),
		}
		if len(group.Descriptors) > 0 {
			page.Tags = make(map[string]int)
			for _, d := range group.Descriptors {
				page.Tags[d.TagName]++
			}
		}
		r.Pages = append(r.Pages, page)
	}
	return r
}

// TotalBlocks returns the number of blocks across all pages.
func (r *Reflow) TotalBlocks() int {
	total := 0
	for _, p := range r.Pages {
		total += p.Blocks
	}
	return total
}

// OverflowingPages returns the numbers of the pages whose content exceeds
// the overflow limit.
func (r *Reflow) OverflowingPages() []int {
	var pages []int
	for _, p := range r.Pages {
		if p.Overflowing {
			pages = append(pages, p.Number)
		}
	}
	return pages
}

// sortedTags returns the tag names of a page in lexical order.
func (p Page) sortedTags() []string {
	return slices.Sorted(maps.Keys(p.Tags))
}
