package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/linkcheck/internal/model"
)

// kindOrder is the order in which finding groups are rendered.
var kindOrder = []model.Kind{
	model.KindAnchor,
	model.KindLocalFile,
	model.KindLocalFileWithAnchor,
	model.KindExternal,
}

// MarkdownWriter outputs reports in Markdown format.
// Findings are grouped by reference kind, each group in discovery order.
type MarkdownWriter struct {
	baseWriter

	title cases.Caser
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		title:      cases.Title(language.English),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeFindings(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("Linkcheck Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Root", "`" + report.Root + "`"},
			{"Documents Scanned", strconv.Itoa(report.DocumentCount)},
			{"External Links", strconv.Itoa(report.ExternalTotal)},
			{"External Links Probed", strconv.Itoa(report.ExternalProbed)},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.Report) string {
	if report.Interrupted {
		return "⚠️ Interrupted (partial external results)"
	}
	return "✅ Complete"
}

// writeSummary writes the broken link counts, a chart and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.Report) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Findings", "Count"},
		Rows: [][]string{
			{"Filesystem", strconv.Itoa(report.FilesystemCount())},
			{"Best-effort (network)", strconv.Itoa(report.BestEffortCount())},
			{"**Total**", "**" + strconv.Itoa(len(report.Findings)) + "**"},
		},
	})
	md.PlainText("")

	if !report.AllClear() {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of findings per kind.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.Report) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Broken Links by Kind"),
		piechart.WithShowData(true),
	)

	for _, kind := range kindOrder {
		if n := len(report.FindingsByKind(kind)); n > 0 {
			chart.LabelAndIntValue(w.title.String(kind.String()), uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert summarizing the verdict.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.Report) {
	switch {
	case report.FilesystemCount() > 0:
		md.Cautionf(
			"%d broken link(s) found in the document tree.",
			report.FilesystemCount(),
		)
	case report.BestEffortCount() > 0:
		md.Warningf(
			"%d external link(s) failed to respond. These may be transient network failures.",
			report.BestEffortCount(),
		)
	default:
		md.Tip("No broken links found.")
	}
	if report.Interrupted {
		md.PlainText("")
		md.Note("External probing was interrupted; only completed probes are reported.")
	}
	md.PlainText("")
}

// writeFindings writes the findings grouped by kind.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, report *model.Report) {
	md.H2("Findings")
	md.PlainText("")

	if report.AllClear() {
		md.PlainText("No broken links detected.")
		md.PlainText("")
		return
	}

	for _, kind := range kindOrder {
		findings := report.FindingsByKind(kind)
		if len(findings) == 0 {
			continue
		}

		md.H3(w.title.String(kind.String()))
		md.PlainText("")
		w.writeFindingsTable(md, findings)
	}
}

// writeFindingsTable writes a table of findings.
func (w *MarkdownWriter) writeFindingsTable(md *markdown.Markdown, findings []model.Finding) {
	rows := make([][]string, len(findings))
	for i, f := range findings {
		problem := f.Message()
		if f.BestEffort {
			problem += " (best-effort)"
		}
		rows[i] = []string{
			"`" + f.Source + "`",
			"`" + truncateString(f.Link, 60) + "`",
			truncateString(problem, 80),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Document", "Link", "Problem"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [linkcheck](https://github.com/nao1215/linkcheck)*")
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
