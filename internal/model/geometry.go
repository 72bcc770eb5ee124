package model

// Rect is the vertical extent of a block or container in host coordinates.
type Rect struct {
	// Top is the top edge.
	Top float64 `json:"top"`

	// Bottom is the bottom edge.
	Bottom float64 `json:"bottom"`
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}
