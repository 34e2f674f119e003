package crawler

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Parser extracts references and anchor identifiers from document text.
//
// Structural parsing uses goquery on top of golang.org/x/net/html, which
// already tolerates most malformed markup. When the structural parser gives
// up entirely (for example on pathologically deep nesting), the parser
// recovers with a pattern scan of the raw text instead of failing.
type Parser struct {
	// resources also extracts stylesheet, script, image and frame references.
	resources bool
}

// ParseResult contains what was extracted from one document.
type ParseResult struct {
	// References are the raw reference strings in document order.
	References []string

	// IDs are the identifiers declared by id and name attributes,
	// deduplicated, in document order.
	IDs []string

	// Recovered is true when the structural parser failed and the result
	// came from the pattern scan.
	Recovered bool
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithResources enables extraction of resource references
// (link href, script/img/source/iframe src, img/source srcset).
func WithResources(enabled bool) ParserOption {
	return func(p *Parser) {
		p.resources = enabled
	}
}

// NewParser creates a new Parser.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// nameExempt lists elements whose name attribute names a form field or
// metadata rather than an anchor.
var nameExempt = map[string]bool{
	"meta":     true,
	"input":    true,
	"select":   true,
	"textarea": true,
	"button":   true,
	"param":    true,
	"form":     true,
	"output":   true,
	"fieldset": true,
}

// Parse extracts references and identifiers from decoded document text.
// It never fails: unparseable markup yields a recovered result.
func (p *Parser) Parse(content string) *ParseResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return p.scanPatterns(content)
	}

	result := &ParseResult{
		References: make([]string, 0),
		IDs:        make([]string, 0),
	}
	seen := make(map[string]bool)
	addID := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		result.IDs = append(result.IDs, id)
	}

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		tag := goquery.NodeName(s)

		result.References = append(result.References, p.references(tag, s)...)

		if id, ok := s.Attr("id"); ok {
			addID(strings.TrimSpace(id))
		}
		if !nameExempt[tag] {
			if name, ok := s.Attr("name"); ok {
				addID(strings.TrimSpace(name))
			}
		}
	})

	return result
}

// references returns the references carried by one element.
func (p *Parser) references(tag string, s *goquery.Selection) []string {
	switch tag {
	case "a", "area":
		return attrRef(s, "href")
	}

	if !p.resources {
		return nil
	}

	switch tag {
	case "link":
		return attrRef(s, "href")
	case "script", "iframe":
		return attrRef(s, "src")
	case "img", "source":
		refs := attrRef(s, "src")
		if srcset, ok := s.Attr("srcset"); ok {
			refs = append(refs, splitSrcset(srcset)...)
		}
		return refs
	}
	return nil
}

// attrRef returns the trimmed attribute value, or nothing when it is
// absent or blank.
func attrRef(s *goquery.Selection, name string) []string {
	v, ok := s.Attr(name)
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return []string{v}
}

// splitSrcset returns the URLs of a srcset attribute ("a.png 1x, b.png 2x").
func splitSrcset(srcset string) []string {
	var refs []string
	for _, candidate := range strings.Split(srcset, ",") {
		fields := strings.Fields(candidate)
		if len(fields) > 0 {
			refs = append(refs, fields[0])
		}
	}
	return refs
}

var (
	hrefPattern = regexp.MustCompile(`(?is)<(?:a|area)\b[^>]*?\bhref\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'>]+))`)
	idPattern   = regexp.MustCompile(`(?is)<[a-z][^>]*?\b(?:id|name)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'>]+))`)
)

// scanPatterns extracts references and identifiers with a pattern scan.
func (p *Parser) scanPatterns(content string) *ParseResult {
	result := &ParseResult{
		References: make([]string, 0),
		IDs:        make([]string, 0),
		Recovered:  true,
	}

	for _, m := range hrefPattern.FindAllStringSubmatch(content, -1) {
		if v := strings.TrimSpace(firstGroup(m)); v != "" {
			result.References = append(result.References, v)
		}
	}

	seen := make(map[string]bool)
	for _, m := range idPattern.FindAllStringSubmatch(content, -1) {
		v := strings.TrimSpace(firstGroup(m))
		if v != "" && !seen[v] {
			seen[v] = true
			result.IDs = append(result.IDs, v)
		}
	}

	return result
}

// firstGroup returns the first non-empty capture group of a match.
func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}
