package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *Reflow) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeAlert(md, report)
	w.writePages(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *Reflow) {
	md.H1("Pageflow Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Document", "`" + report.Document + "`"},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Threshold", strconv.FormatFloat(report.Threshold, 'g', -1, 64)},
			{"Cycles", strconv.Itoa(report.Cycles)},
			{"Blocks Moved", strconv.Itoa(report.Applied)},
			{"Operations Dropped", strconv.Itoa(report.Dropped)},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on the stop reason.
func (w *MarkdownWriter) getStatusText(report *Reflow) string {
	if report.Converged {
		return "✅ Converged"
	}
	return "⚠️ Stopped (" + report.StopReason + ")"
}

// writeAlert writes an alert describing how the run ended.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *Reflow) {
	overflowing := report.OverflowingPages()

	switch {
	case !report.Converged:
		md.Cautionf(
			"Reflow stopped before a fixed point was reached (%s after %d cycle(s)).",
			report.StopReason, report.Cycles,
		)
	case len(overflowing) > 0:
		md.Warningf(
			"Content still exceeds the threshold on page(s) %s.",
			joinInts(overflowing),
		)
	case report.Applied == 0:
		md.Note("The document was already balanced; no block was moved.")
	default:
		md.Tip("Every page fits within the threshold.")
	}
	md.PlainText("")
}

// writePages writes the per-page table and the fill chart.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *Reflow) {
	md.H2("Pages")
	md.PlainText("")

	if len(report.Pages) == 0 {
		md.PlainText("The document has no pages.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Pages))
	for i, p := range report.Pages {
		extent := strconv.FormatFloat(p.Extent, 'f', 1, 64)
		if p.Overflowing {
			extent = "**" + extent + "**"
		}
		rows[i] = []string{
			strconv.Itoa(p.Number),
			p.State,
			strconv.Itoa(p.Blocks),
			extent,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Page", "State", "Blocks", "Extent"},
		Rows:   rows,
	})
	md.PlainText("")

	if report.TotalBlocks() > 0 {
		w.writePieChart(md, report)
	}

	for _, p := range report.Pages {
		if len(p.Tags) == 0 {
			continue
		}
		lines := make([]string, 0, len(p.Tags))
		for _, tag := range p.sortedTags() {
			lines = append(lines, fmt.Sprintf("- `%s`: %d", tag, p.Tags[tag]))
		}
		md.Details("Page "+strconv.Itoa(p.Number)+" blocks", strings.Join(lines, "\n"))
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of blocks per page.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *Reflow) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Blocks per Page"),
		piechart.WithShowData(true),
	)

	for _, p := range report.Pages {
		if p.Blocks > 0 {
			chart.LabelAndIntValue("Page "+strconv.Itoa(p.Number), uint64(p.Blocks))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [pageflow](https://github.com/nao1215/pageflow)*")
}

// joinInts formats page numbers as a comma separated list.
func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
