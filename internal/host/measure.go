package host

import (
	"strconv"
	"strings"

	"github.com/nao1215/pageflow/internal/model"
)

// HeightAttribute carries a block's rendered height in documents produced by
// a layout engine.
const HeightAttribute = "data-height"

// Measurer supplies the rendered height of a block.
type Measurer interface {
	Measure(b Block) float64
}

// MeasureFunc adapts a function to Measurer.
type MeasureFunc func(b Block) float64

// Measure implements Measurer.
func (f MeasureFunc) Measure(b Block) float64 {
	return f(b)
}

// AttributeMeasurer reads heights from HeightAttribute and falls back to
// model.EstimateHeight for blocks without one.
type AttributeMeasurer struct{}

// Measure implements Measurer.
func (AttributeMeasurer) Measure(b Block) float64 {
	if v, ok := b.Attributes()[HeightAttribute]; ok {
		if h, err := parseLength(v); err == nil && h >= 0 {
			return h
		}
	}
	return model.EstimateHeight(Describe(b))
}

// parseLength parses "24", "24px" or "24.5 px".
func parseLength(v string) (float64, error) {
	v = strings.TrimSpace(v)
	v = strings.TrimSuffix(v, "px")
	return strconv.ParseFloat(strings.TrimSpace(v), 64)
}
