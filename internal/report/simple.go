package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/linkcheck/internal/model"
)

// ruleWidth is the width of the section separators.
const ruleWidth = 70

// SimpleWriter outputs human-readable text reports.
//
// The output depends only on the report: no timestamps, no map iteration,
// and findings in discovery order. Running twice over an unchanged tree gives
// byte-identical output.
type SimpleWriter struct {
	baseWriter

	// verbose adds the normalized target and anchor to each finding.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

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
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeFindings(&sb, report)
	w.writeFooter(&sb, report)

	return io.WriteString(w.output, sb.String())
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                         LINKCHECK REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Root:              %s\n", report.Root)
	fmt.Fprintf(sb, "Documents scanned: %d\n", report.DocumentCount)
	fmt.Fprintf(sb, "External links:    %d found, %d probed\n", report.ExternalTotal, report.ExternalProbed)

	if report.Interrupted {
		sb.WriteString("Status:            INTERRUPTED (partial external results)\n")
	} else {
		sb.WriteString("Status:            Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the broken link counts.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.Report) {
	writeSection(sb, "SUMMARY")

	fmt.Fprintf(sb, "  Broken links: %d\n", len(report.Findings))
	fmt.Fprintf(sb, "    filesystem:  %d\n", report.FilesystemCount())
	fmt.Fprintf(sb, "    best-effort: %d\n", report.BestEffortCount())
	sb.WriteString("\n")
}

// writeFindings writes one numbered block per finding.
func (w *SimpleWriter) writeFindings(sb *strings.Builder, report *model.Report) {
	if report.AllClear() {
		return
	}

	writeSection(sb, "FINDINGS")

	for i, f := range report.Findings {
		label := ""
		if f.BestEffort {
			label = " [best-effort]"
		}
		fmt.Fprintf(sb, "[%d]%s %s\n", i+1, label, f.Source)
		fmt.Fprintf(sb, "    Link:    %s\n", f.Link)
		fmt.Fprintf(sb, "    Kind:    %s\n", f.Kind)
		fmt.Fprintf(sb, "    Problem: %s\n", f.Message())
		if w.verbose {
			if f.Target != "" {
				fmt.Fprintf(sb, "    Target:  %s\n", f.Target)
			}
			if f.Anchor != "" {
				fmt.Fprintf(sb, "    Anchor:  %s\n", f.Anchor)
			}
			fmt.Fprintf(sb, "    Reason:  %s\n", f.Reason)
		}
		sb.WriteString("\n")
	}
}

// writeFooter writes the verdict line.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, report *model.Report) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	if report.AllClear() {
		sb.WriteString("All clear: no broken links found.\n")
	} else {
		fmt.Fprintf(sb, "%d broken link(s) found.\n", len(report.Findings))
	}
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}
