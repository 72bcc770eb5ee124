package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/pageflow/internal/analyzer"
	"github.com/nao1215/pageflow/internal/engine"
	"github.com/nao1215/pageflow/internal/host"
	"github.com/nao1215/pageflow/internal/virtual"
)

// Default configuration values. They reproduce the reference page layout.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "pageflow"

	// DefaultThreshold is the page height budget.
	DefaultThreshold = analyzer.DefaultThreshold

	// DefaultTolerance is the slack above the threshold before a page
	// overflows.
	DefaultTolerance = analyzer.DefaultTolerance

	// DefaultPadding is the top padding assumed for a hidden page whose
	// padding cannot be read.
	DefaultPadding = virtual.DefaultPadding

	// DefaultGap is the gap between blocks assumed when the reference page
	// has fewer than two blocks.
	DefaultGap = virtual.DefaultGap

	// DefaultSpacing is the gap the HTML host leaves between blocks.
	DefaultSpacing = host.DefaultSpacing

	// DefaultSettleDelay is the pause between two applied operations.
	DefaultSettleDelay = engine.DefaultSettleDelay

	// DefaultDebounce is the quiet window that coalesces edits into one
	// reflow.
	DefaultDebounce = engine.DefaultDebounce

	// DefaultMaxCycles bounds one reflow run.
	DefaultMaxCycles = engine.DefaultMaxCycles
)

// Config holds all configuration options of pageflow.
// It is populated from the configuration file and CLI flags and passed
// down explicitly.
type Config struct {
	// Document is the path of the HTML document to reflow.
	Document string

	// DocumentKey identifies the document in the snapshot database.
	// Defaults to the absolute path of Document.
	DocumentKey string

	// Threshold is the page height budget shared by both analyzer passes.
	Threshold float64

	// Tolerance is the overflow slack above Threshold.
	Tolerance float64

	// Padding is the top padding assumed for a hidden page whose own
	// padding cannot be read.
	Padding float64

	// Gap is the block gap assumed when the reference page of a hidden page
	// has fewer than two blocks.
	Gap float64

	// Spacing is the gap the HTML host leaves between consecutive blocks.
	Spacing float64

	// SettleDelay is the pause between two applied operations.
	SettleDelay time.Duration

	// Debounce is the quiet window that coalesces edits into one reflow.
	Debounce time.Duration

	// MaxCycles bounds the number of cycles of one reflow run.
	MaxCycles int

	// Sequential runs the analyzer passes one after another instead of
	// concurrently.
	Sequential bool

	// Hideable lists the pages that may be hidden.
	Hideable []int

	// Hidden lists the pages to hide before reflowing.
	Hidden []int

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path of the configuration file. When empty,
	// .pageflow is searched in the current and home directories.
	ConfigFilePath string

	// JSONReport selects the JSON report. Mutually exclusive with
	// MarkdownReport.
	JSONReport bool

	// MarkdownReport selects the Markdown report. Mutually exclusive with
	// JSONReport.
	MarkdownReport bool

	// ReportFile is the report destination. Stdout when empty.
	ReportFile string

	// OutputFile receives the reflowed document. When empty the document
	// is not written.
	OutputFile string

	// DBDir is the directory of the snapshot database.
	DBDir string

	// SaveToDB enables snapshot persistence.
	SaveToDB bool
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Threshold:   DefaultThreshold,
		Tolerance:   DefaultTolerance,
		Padding:     DefaultPadding,
		Gap:         DefaultGap,
		Spacing:     DefaultSpacing,
		SettleDelay: DefaultSettleDelay,
		Debounce:    DefaultDebounce,
		MaxCycles:   DefaultMaxCycles,
		Hideable:    []int{engine.DefaultHideablePage},
		DBDir:       XDGDataDir(),
		SaveToDB:    true,
	}
}

// XDGDataDir returns the XDG data directory for pageflow.
// On Linux: ~/.local/share/pageflow
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pageflow.
// On Linux: ~/.config/pageflow
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Limits returns the analyzer limits described by the configuration.
func (c *Config) Limits() analyzer.Limits {
	return analyzer.Limits{
		Threshold:      c.Threshold,
		Tolerance:      c.Tolerance,
		VirtualPadding: c.Padding,
	}
}

// ApplyLayout overrides the layout fields that are set in l.
func (c *Config) ApplyLayout(l Layout) {
	if l.Threshold != 0 {
		c.Threshold = l.Threshold
	}
	if l.Tolerance != nil {
		c.Tolerance = *l.Tolerance
	}
	if l.Padding != nil {
		c.Padding = *l.Padding
	}
	if l.Gap != nil {
		c.Gap = *l.Gap
	}
	if l.Spacing != nil {
		c.Spacing = *l.Spacing
	}
	if l.Settle != nil {
		c.SettleDelay = *l.Settle
	}
	if l.Debounce != 0 {
		c.Debounce = l.Debounce
	}
	if l.MaxCycles != 0 {
		c.MaxCycles = l.MaxCycles
	}
	if l.Sequential {
		c.Sequential = true
	}
	if len(l.Hideable) > 0 {
		c.Hideable = l.Hideable
	}
	if len(l.Hidden) > 0 {
		c.Hidden = l.Hidden
	}
}

// Validate checks the configuration and returns the first problem found.
// Threshold and tolerance are checked together, the way the analyzer
// passes use them.
func (c *Config) Validate() error {
	if c.Document == "" {
		return ErrNoDocument
	}
	if c.Threshold <= 0 {
		return ErrInvalidThreshold
	}
	if c.Tolerance < 0 || c.Tolerance >= c.Threshold {
		return ErrInvalidTolerance
	}
	if c.Padding < 0 || c.Gap < 0 || c.Spacing < 0 {
		return ErrInvalidPadding
	}
	if c.SettleDelay < 0 {
		return ErrInvalidSettleDelay
	}
	if c.Debounce <= 0 {
		return ErrInvalidDebounce
	}
	if c.MaxCycles <= 0 {
		return ErrInvalidMaxCycles
	}
	for _, pages := range [][]int{c.Hideable, c.Hidden} {
		for _, p := range pages {
			if p < 1 {
				return fmt.Errorf("%w: %d", ErrInvalidPage, p)
			}
		}
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
