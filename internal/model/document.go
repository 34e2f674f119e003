package model

import "strings"

// Document is a hypertext document discovered under the root.
// It is created once during the scan phase and never modified afterwards.
type Document struct {
	// Path is the slash-separated path relative to the root.
	Path string `json:"path"`

	// Content is the decoded text of the document.
	Content string `json:"-"`

	// Anchors is the merged anchor set defined by the document.
	Anchors AnchorSet `json:"-"`

	// References are the raw reference strings in document order.
	References []string `json:"references,omitempty"`
}

// NewDocument creates a Document from its path, decoded content, the
// identifiers found by structural parsing, and the raw references.
func NewDocument(path, content string, ids, refs []string) *Document {
	return &Document{
		Path:       path,
		Content:    content,
		Anchors:    NewAnchorSet(ids, content),
		References: refs,
	}
}

// AnchorSet holds the identifiers a document defines.
//
// Membership is answered in two tiers: the identifiers recorded by the
// structural parser are consulted first, and the raw document text is searched
// for an identifier declaration second. An identifier whose declaration is
// textually present is always a member, even if the parser missed it.
type AnchorSet struct {
	ids map[string]struct{}
	raw string
}

// NewAnchorSet creates an AnchorSet from structurally extracted identifiers
// and the raw text used for the textual fallback.
func NewAnchorSet(ids []string, raw string) AnchorSet {
	set := AnchorSet{
		ids: make(map[string]struct{}, len(ids)),
		raw: raw,
	}
	for _, id := range ids {
		set.ids[id] = struct{}{}
	}
	return set
}

// Has reports whether id is defined by the document.
func (a AnchorSet) Has(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := a.ids[id]; ok {
		return true
	}
	return declaresIdentifier(a.raw, id)
}

// Len returns the number of structurally extracted identifiers.
func (a AnchorSet) Len() int {
	return len(a.ids)
}

// identifierAttributes are the attribute names that declare an anchor.
var identifierAttributes = []string{"id", "name"}

// declaresIdentifier searches raw text for an identifier declaration such as
// id="x", id='x', name="x", name='x' or the unquoted id=x.
func declaresIdentifier(raw, id string) bool {
	if raw == "" {
		return false
	}
	for _, attr := range identifierAttributes {
		if strings.Contains(raw, attr+`="`+id+`"`) || strings.Contains(raw, attr+`='`+id+`'`) {
			return true
		}
		if declaresUnquoted(raw, attr+"="+id) {
			return true
		}
	}
	return false
}

// declaresUnquoted finds decl followed by whitespace, '/' or '>'.
func declaresUnquoted(raw, decl string) bool {
	for offset := 0; ; {
		i := strings.Index(raw[offset:], decl)
		if i < 0 {
			return false
		}
		end := offset + i + len(decl)
		if end == len(raw) {
			return true
		}
		switch raw[end] {
		case ' ', '\t', '\n', '\r', '\f', '/', '>':
			return true
		}
		offset = end
	}
}

// AnchorTable maps a document path to the anchors it defines.
// It is built once after the scan phase and only read afterwards.
type AnchorTable map[string]AnchorSet

// NewAnchorTable builds the table for the given documents.
func NewAnchorTable(docs []*Document) AnchorTable {
	table := make(AnchorTable, len(docs))
	for _, doc := range docs {
		table[doc.Path] = doc.Anchors
	}
	return table
}
