package report

import (
	"fmt"
	"io"
	"strings"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display: plain ASCII sections that
// can be piped to files or other tools.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether pages without blocks are listed.
	showEmpty bool

	// verbose adds the fingerprint and the tag breakdown of each page.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to list empty pages.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *Reflow) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writePages(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *Reflow) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         PAGEFLOW REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Document:       %s\n", report.Document)
	fmt.Fprintf(sb, "Generated:      %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Threshold:      %g\n", report.Threshold)

	if report.Converged {
		sb.WriteString("Status:         Converged\n")
	} else {
		fmt.Fprintf(sb, "Status:         STOPPED (%s)\n", report.StopReason)
	}
	if w.verbose {
		fmt.Fprintf(sb, "Fingerprint:    %s\n", report.Fingerprint)
	}

	sb.WriteString("\n")
}

// writeSummary writes the run counters.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *Reflow) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "  CYCLES:   %d\n", report.Cycles)
	fmt.Fprintf(sb, "  MOVED:    %d\n", report.Applied)
	fmt.Fprintf(sb, "  DROPPED:  %d\n", report.Dropped)
	fmt.Fprintf(sb, "  PAGES:    %d\n", len(report.Pages))
	fmt.Fprintf(sb, "  BLOCKS:   %d\n", report.TotalBlocks())
	sb.WriteString("\n")
}

// writePages writes one line per page.
func (w *SimpleWriter) writePages(sb *strings.Builder, report *Reflow) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, p := range report.Pages {
		if p.Blocks == 0 && !w.showEmpty {
			continue
		}

		marker := " "
		if p.Overflowing {
			marker = "!"
		}
		fmt.Fprintf(sb, "[%s] page %-3d %-8s %3d blocks  extent %.1f\n",
			marker, p.Number, p.State, p.Blocks, p.Extent)

		if w.verbose {
			for _, tag := range p.sortedTags() {
				fmt.Fprintf(sb, "      %s: %d\n", tag, p.Tags[tag])
			}
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by pageflow\n")
	sb.WriteString("https://github.com/nao1215/pageflow\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
