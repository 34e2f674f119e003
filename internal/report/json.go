package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/linkcheck/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in JSON format.
func (w *JSONWriter) Write(report *model.Report) (int, error) {
	return w.writeJSON(normalize(report))
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// normalize returns a copy of report whose findings encode as [] rather
// than null when empty.
func normalize(report *model.Report) *model.Report {
	if report.Findings != nil {
		return report
	}
	out := *report
	out.Findings = []model.Finding{}
	return &out
}

// Summary holds the counts a consumer needs to decide on the result
// without walking the findings.
type Summary struct {
	// AllClear is true iff there are no findings.
	AllClear bool `json:"allClear"`

	// Broken is the total number of findings.
	Broken int `json:"broken"`

	// Filesystem is the number of filesystem-backed findings.
	Filesystem int `json:"filesystem"`

	// BestEffort is the number of network-backed findings, which a
	// consumer may choose to ignore.
	BestEffort int `json:"bestEffort"`
}

// NewSummary computes the summary of report.
func NewSummary(report *model.Report) Summary {
	return Summary{
		AllClear:   report.AllClear(),
		Broken:     len(report.Findings),
		Filesystem: report.FilesystemCount(),
		BestEffort: report.BestEffortCount(),
	}
}

// JSONReport is a wrapper for the report with additional metadata.
type JSONReport struct {
	// Version is the linkcheck version that generated this report.
	Version string `json:"version"`

	// Summary is the result at a glance.
	Summary Summary `json:"summary"`

	// Report is the full report.
	Report *model.Report `json:"report"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(report *model.Report, version string) *JSONReport {
	return &JSONReport{
		Version: version,
		Summary: NewSummary(report),
		Report:  normalize(report),
	}
}

// FullJSONWriter outputs complete reports with metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the linkcheck version string.
	version string
}

// NewFullJSONWriter creates a writer for complete reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the report wrapped with metadata.
func (w *FullJSONWriter) Write(report *model.Report) (int, error) {
	return w.writeJSON(NewJSONReport(report, w.version))
}
