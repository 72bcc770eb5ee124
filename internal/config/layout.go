package config

import "time"

// Layout is the layout section of the configuration file. Pointer fields
// distinguish an explicit zero from an absent value.
type Layout struct {
	// Threshold is the page height budget.
	Threshold float64 `yaml:"threshold,omitempty"`

	// Tolerance is the overflow slack above Threshold.
	Tolerance *float64 `yaml:"tolerance,omitempty"`

	// Padding is the fallback top padding of a hidden page.
	Padding *float64 `yaml:"padding,omitempty"`

	// Gap is the fallback block gap of a hidden page.
	Gap *float64 `yaml:"gap,omitempty"`

	// Spacing is the gap the HTML host leaves between blocks.
	Spacing *float64 `yaml:"spacing,omitempty"`

	// Settle is the pause between two applied operations, e.g. "10ms".
	Settle *time.Duration `yaml:"settle,omitempty"`

	// Debounce is the quiet window before a scheduled reflow, e.g. "100ms".
	Debounce time.Duration `yaml:"debounce,omitempty"`

	// MaxCycles bounds one reflow run.
	MaxCycles int `yaml:"maxCycles,omitempty"`

	// Sequential runs the analyzer passes one after another.
	Sequential bool `yaml:"sequential,omitempty"`

	// Hideable lists the pages that may be hidden.
	Hideable []int `yaml:"hideable,omitempty"`

	// Hidden lists the pages hidden before reflowing.
	Hidden []int `yaml:"hidden,omitempty"`
}

// File is the structure of the .pageflow configuration file.
type File struct {
	// Defaults applies to every document.
	Defaults Layout `yaml:"defaults,omitempty"`

	// Documents maps document keys (file base names) to layouts that
	// override Defaults.
	Documents map[string]Layout `yaml:"documents,omitempty"`
}

// GetLayout returns the layout for a document, merging its own section
// over the defaults.
func (f *File) GetLayout(document string) Layout {
	result := f.Defaults

	doc, ok := f.Documents[document]
	if !ok {
		return result
	}
	if doc.Threshold != 0 {
		result.Threshold = doc.Threshold
	}
	if doc.Tolerance != nil {
		result.Tolerance = doc.Tolerance
	}
	if doc.Padding != nil {
		result.Padding = doc.Padding
	}
	if doc.Gap != nil {
		result.Gap = doc.Gap
	}
	if doc.Spacing != nil {
		result.Spacing = doc.Spacing
	}
	if doc.Settle != nil {
		result.Settle = doc.Settle
	}
	if doc.Debounce != 0 {
		result.Debounce = doc.Debounce
	}
	if doc.MaxCycles != 0 {
		result.MaxCycles = doc.MaxCycles
	}
	if doc.Sequential {
		result.Sequential = true
	}
	if len(doc.Hideable) > 0 {
		result.Hideable = doc.Hideable
	}
	if len(doc.Hidden) > 0 {
		result.Hidden = doc.Hidden
	}
	return result
}
