package model

import (
	"maps"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Height heuristics used when a block has no measured height.
const (
	// LineBreakHeight is the height assumed for an empty or line-break block.
	LineBreakHeight = 35.0

	// HeadingHeight is the height assumed for a heading block.
	HeadingHeight = 40.0

	// MinEstimatedHeight and MaxEstimatedHeight bound the length-based estimate.
	MinEstimatedHeight = 20.0
	MaxEstimatedHeight = 60.0

	// charsPerStep is how many markup characters add one estimation step.
	charsPerStep = 50.0

	// heightPerStep is the height added per estimation step.
	heightPerStep = 10.0
)

// tagFolder lower-cases tag names. Host documents and restored backups do
// not agree on case ("H2" vs "h2").
var tagFolder = cases.Lower(language.Und)

// ContentDescriptor is a snapshot of one content block.
// It carries enough information to recreate the block in any page container
// together with the geometry measured at snapshot time.
type ContentDescriptor struct {
	// TagName is the semantic element kind, always lower-case.
	TagName string `json:"tagName"`

	// Attributes maps attribute names to values. Order is irrelevant.
	Attributes map[string]string `json:"attr_and_vals"`

	// InnerMarkup is the serialized content payload. It is opaque to the
	// reflow engine.
	InnerMarkup string `json:"innerHTML"`

	// Height is the vertical extent of the block (>= 0).
	Height float64 `json:"height"`

	// BottomPosition is the distance from the top of the owning page to the
	// bottom edge of the block. Zero for blocks that are not placed yet.
	BottomPosition float64 `json:"bottomPosition"`

	// PageNumber is the owner page at snapshot time (>= 1).
	PageNumber int `json:"pagenum"`

	// ElementIndex is the position within the page at snapshot time.
	// Within one page the indices are dense, 0..n-1, in document order.
	ElementIndex int `json:"elementIndex"`

	// Virtual marks descriptors whose geometry was estimated by the virtual
	// page store rather than measured in the live document.
	Virtual bool `json:"virtual,omitempty"`
}

// NormalizeTag returns the canonical (lower-case, trimmed) form of a tag name.
func NormalizeTag(tag string) string {
	return tagFolder.String(strings.TrimSpace(tag))
}

// IsHeading reports whether the descriptor is a heading block (h1-h6).
func (d ContentDescriptor) IsHeading() bool {
	tag := NormalizeTag(d.TagName)
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}

// IsLineBreak reports whether the block carries no content other than a
// line break.
func (d ContentDescriptor) IsLineBreak() bool {
	markup := strings.TrimSpace(d.InnerMarkup)
	return markup == "" || strings.EqualFold(markup, "<br>") || strings.EqualFold(markup, "<br/>")
}

// EstimateHeight returns the stored height when it is non-zero, otherwise a
// best-effort estimate derived from the block kind and markup length.
func EstimateHeight(d ContentDescriptor) float64 {
	if d.Height > 0 {
		return d.Height
	}

	switch {
	case d.IsLineBreak():
		return LineBreakHeight
	case d.IsHeading():
		return HeadingHeight
	}

	estimate := MinEstimatedHeight + float64(len(d.InnerMarkup))/charsPerStep*heightPerStep
	return max(MinEstimatedHeight, min(MaxEstimatedHeight, estimate))
}

// Clone returns a deep copy of the descriptor.
// Attribute maps are copied so that snapshots never share mutable state.
func (d ContentDescriptor) Clone() ContentDescriptor {
	c := d
	if d.Attributes != nil {
		c.Attributes = maps.Clone(d.Attributes)
	}
	return c
}

// SameContent reports whether two descriptors describe the same block
// (tag, attributes, markup), ignoring geometry and placement.
func (d ContentDescriptor) SameContent(other ContentDescriptor) bool {
	if NormalizeTag(d.TagName) != NormalizeTag(other.TagName) {
		return false
	}
	if d.InnerMarkup != other.InnerMarkup {
		return false
	}
	if len(d.Attributes) != len(other.Attributes) {
		return false
	}
	for k, v := range d.Attributes {
		if ov, ok := other.Attributes[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
