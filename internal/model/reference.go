package model

import "encoding/json"

// Kind classifies a reference.
type Kind int

const (
	// KindIgnored is a reference with a scheme that is never checked
	// (mail, phone, script execution, embedded data).
	KindIgnored Kind = iota

	// KindExternal is an http or https URL.
	KindExternal

	// KindAnchor is a same-document fragment reference such as "#intro".
	KindAnchor

	// KindLocalFile is a path to another file under the root.
	KindLocalFile

	// KindLocalFileWithAnchor is a path to another file plus a fragment.
	KindLocalFileWithAnchor
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindIgnored:
		return "ignored"
	case KindExternal:
		return "external"
	case KindAnchor:
		return "anchor"
	case KindLocalFile:
		return "local file"
	case KindLocalFileWithAnchor:
		return "local file with anchor"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the kind as its name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Reference is an outbound pointer found in a document.
type Reference struct {
	// Source is the path of the document containing the reference.
	Source string

	// Raw is the reference text exactly as it appeared in the document.
	Raw string

	// Kind is the classification of the reference.
	Kind Kind

	// Target is the root-relative path for local references and the URL
	// for external references. Empty for anchor and ignored references.
	Target string

	// Anchor is the fragment identifier, if any.
	Anchor string

	// DocIndex is the position of the source document in scan order.
	DocIndex int

	// Index is the position of the reference within its document.
	Index int
}
