package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Reason explains why a reference could not be resolved.
type Reason int

const (
	// ReasonMissingAnchor means a same-document anchor is not defined.
	ReasonMissingAnchor Reason = iota

	// ReasonMissingFile means the target file does not exist.
	ReasonMissingFile

	// ReasonOutsideRoot means the target path escapes the root directory.
	ReasonOutsideRoot

	// ReasonMissingTargetAnchor means the target file exists but does not
	// define the anchor.
	ReasonMissingTargetAnchor

	// ReasonEmptyFragment means the reference is a bare "#". Only reported
	// in strict fragment mode.
	ReasonEmptyFragment

	// ReasonHTTPStatus means an external probe returned a 4xx or 5xx status.
	ReasonHTTPStatus

	// ReasonTransport means an external probe failed before a response
	// was received (timeout, DNS failure, refused connection).
	ReasonTransport
)

// String returns a short machine-friendly name for the reason.
func (r Reason) String() string {
	switch r {
	case ReasonMissingAnchor:
		return "missing_anchor"
	case ReasonMissingFile:
		return "missing_file"
	case ReasonOutsideRoot:
		return "outside_root"
	case ReasonMissingTargetAnchor:
		return "missing_target_anchor"
	case ReasonEmptyFragment:
		return "empty_fragment"
	case ReasonHTTPStatus:
		return "http_status"
	case ReasonTransport:
		return "transport_error"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the reason as its name.
func (r Reason) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// Finding is a single broken or unverifiable reference.
type Finding struct {
	// Source is the document the reference was found in.
	Source string `json:"source"`

	// Link is the raw reference text.
	Link string `json:"link"`

	// Kind is the classification of the reference.
	Kind Kind `json:"kind"`

	// Reason explains the failure.
	Reason Reason `json:"reason"`

	// Target is the normalized root-relative path or the external URL.
	Target string `json:"target,omitempty"`

	// Anchor is the identifier that could not be found.
	Anchor string `json:"anchor,omitempty"`

	// StatusCode is the HTTP status of a failed external probe.
	StatusCode int `json:"statusCode,omitempty"`

	// Error is the transport error of a failed external probe.
	Error string `json:"error,omitempty"`

	// BestEffort marks network-backed findings, which may be false
	// positives caused by transient outages.
	BestEffort bool `json:"bestEffort"`

	docIndex int
	refIndex int
}

// NewFinding creates a Finding for the given reference.
func NewFinding(ref Reference, reason Reason) Finding {
	return Finding{
		Source:     ref.Source,
		Link:       ref.Raw,
		Kind:       ref.Kind,
		Reason:     reason,
		Target:     ref.Target,
		Anchor:     ref.Anchor,
		BestEffort: reason == ReasonHTTPStatus || reason == ReasonTransport,
		docIndex:   ref.DocIndex,
		refIndex:   ref.Index,
	}
}

// Message returns a human-readable description of the problem.
func (f Finding) Message() string {
	switch f.Reason {
	case ReasonMissingAnchor:
		return fmt.Sprintf("anchor %q not found in the same document", f.Anchor)
	case ReasonMissingFile:
		return "file does not exist: " + f.Target
	case ReasonOutsideRoot:
		return "path resolves outside the root: " + f.Target
	case ReasonMissingTargetAnchor:
		return fmt.Sprintf("anchor %q not found in %s", f.Anchor, f.Target)
	case ReasonEmptyFragment:
		return "empty fragment"
	case ReasonHTTPStatus:
		return fmt.Sprintf("HTTP %d", f.StatusCode)
	case ReasonTransport:
		return "request failed: " + f.Error
	default:
		return "unknown problem"
	}
}

// SortFindings orders findings by discovery order: document scan order
// first, reference order within the document second.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].docIndex != findings[j].docIndex {
			return findings[i].docIndex < findings[j].docIndex
		}
		return findings[i].refIndex < findings[j].refIndex
	})
}
