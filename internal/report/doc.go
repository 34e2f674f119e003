// Package report renders link check results.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter and FullJSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown output for pull request comments and wikis
//
// Report data structures live in the model package; writers only format
// them. Every writer is deterministic: the same report always renders to
// the same bytes.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
