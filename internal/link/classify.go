package link

import (
	"net/url"
	"path"
	"strings"

	"github.com/nao1215/linkcheck/internal/model"
)

// Classifier assigns exactly one Kind to each raw reference.
//
// Scheme and prefix checks run before any path interpretation, so a string
// that starts with an ignored scheme is ignored even if it looks like a path.
type Classifier struct {
	ignored map[string]bool
}

// NewClassifier creates a Classifier that ignores the given schemes.
// Scheme names are matched case-insensitively and without the trailing colon.
func NewClassifier(ignoreSchemes []string) *Classifier {
	c := &Classifier{ignored: make(map[string]bool, len(ignoreSchemes))}
	for _, s := range ignoreSchemes {
		s = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(s), ":"))
		if s != "" {
			c.ignored[s] = true
		}
	}
	return c
}

// ClassifyDocument classifies every reference of a document in order.
// docIndex is the position of the document in scan order.
func (c *Classifier) ClassifyDocument(docIndex int, doc *model.Document) []model.Reference {
	refs := make([]model.Reference, 0, len(doc.References))
	for i, raw := range doc.References {
		ref := c.Classify(doc.Path, raw)
		ref.DocIndex = docIndex
		ref.Index = i
		refs = append(refs, ref)
	}
	return refs
}

// Classify classifies one raw reference found in the document at source.
func (c *Classifier) Classify(source, raw string) model.Reference {
	ref := model.Reference{Source: source, Raw: raw}
	s := strings.TrimSpace(raw)

	if scheme, ok := schemeOf(s); ok {
		if c.ignored[scheme] {
			ref.Kind = model.KindIgnored
			return ref
		}
		if scheme == "http" || scheme == "https" {
			ref.Kind = model.KindExternal
			ref.Target = s
			return ref
		}
	}

	if strings.HasPrefix(s, "//") {
		ref.Kind = model.KindExternal
		ref.Target = "https:" + s
		return ref
	}

	if fragment, ok := strings.CutPrefix(s, "#"); ok {
		if isRoute(fragment) {
			ref.Kind = model.KindIgnored
			return ref
		}
		ref.Kind = model.KindAnchor
		ref.Target = source
		ref.Anchor = fragment
		return ref
	}

	pathPart, fragment, _ := strings.Cut(s, "#")
	ref.Target = resolvePath(source, pathPart)
	ref.Anchor = fragment
	ref.Kind = model.KindLocalFile
	if fragment != "" {
		ref.Kind = model.KindLocalFileWithAnchor
	}
	return ref
}

// OutsideRoot reports whether a resolved target escapes the root.
func OutsideRoot(target string) bool {
	return target == ".." || strings.HasPrefix(target, "../")
}

// resolvePath turns the path part of a local reference into a cleaned
// root-relative path. An empty path part refers to the source document.
func resolvePath(source, p string) string {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	p = strings.ReplaceAll(p, `\`, "/")

	if p == "" {
		return source
	}
	if strings.HasPrefix(p, "/") {
		if cleaned := strings.TrimPrefix(path.Clean(p), "/"); cleaned != "" {
			return cleaned
		}
		return "."
	}
	return path.Join(path.Dir(source), p)
}

// schemeOf returns the lower-cased URL scheme of s, if it has one.
func schemeOf(s string) (string, bool) {
	i := strings.IndexByte(s, ':')
	if i <= 0 {
		return "", false
	}
	for j := 0; j < i; j++ {
		b := s[j]
		switch {
		case 'a' <= b && b <= 'z', 'A' <= b && b <= 'Z':
		case j > 0 && ('0' <= b && b <= '9' || b == '+' || b == '-' || b == '.'):
		default:
			return "", false
		}
	}
	return strings.ToLower(s[:i]), true
}

// isRoute reports whether a fragment is a client-side route ("#/page",
// "#!/page") rather than an element identifier.
func isRoute(fragment string) bool {
	return strings.HasPrefix(fragment, "/") || strings.HasPrefix(fragment, "!/")
}
