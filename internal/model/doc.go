// Package model defines the core data structures used throughout linkcheck.
//
// This package contains the following main types:
//   - Document: A scanned hypertext document with its anchors and references
//   - AnchorSet: The merged structural and textual anchor set of one document
//   - Reference: A classified outbound pointer found in a document
//   - Finding: A single broken or unverifiable reference
//   - Report: The ordered findings of one run plus summary counters
//   - Run: Mutable state threaded through the pipeline steps
//
// Models live in their own package because the crawler, link, probe, report
// and pipeline packages all share them.
package model
