package link

import (
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"path"

	"github.com/nao1215/linkcheck/internal/crawler"
	"github.com/nao1215/linkcheck/internal/model"
)

// indexDocument is the document served for a directory target.
const indexDocument = "index.html"

// Resolver checks local references against the scanned documents and the
// filesystem under the root.
//
// Resolution reads nothing beyond what the walk captured, except documents
// referenced with an anchor that were not part of the scanned set. Those are
// loaded on demand, parsed with the same parser, and cached for the run.
// A Resolver is not safe for concurrent use.
type Resolver struct {
	fsys    fs.FS
	anchors model.AnchorTable
	files   *model.FileIndex
	parser  *crawler.Parser
	strict  bool
	logger  *slog.Logger

	// loaded caches anchor sets of documents read on demand.
	// A nil entry marks a document that could not be read.
	loaded map[string]*model.AnchorSet
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithStrictFragments reports bare "#" references as findings.
func WithStrictFragments(strict bool) ResolverOption {
	return func(r *Resolver) {
		r.strict = strict
	}
}

// WithParser sets the parser used for on-demand documents.
func WithParser(p *crawler.Parser) ResolverOption {
	return func(r *Resolver) {
		r.parser = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver over the root filesystem, the anchor table
// of the scanned documents, and the index of paths seen during the walk.
func NewResolver(fsys fs.FS, anchors model.AnchorTable, files *model.FileIndex, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		fsys:    fsys,
		anchors: anchors,
		files:   files,
		parser:  crawler.NewParser(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		loaded:  make(map[string]*model.AnchorSet),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveAll resolves references in order and returns one finding per
// unresolved reference. External and ignored references are skipped.
func (r *Resolver) ResolveAll(refs []model.Reference) []model.Finding {
	var findings []model.Finding
	for _, ref := range refs {
		if f, broken := r.Resolve(ref); broken {
			findings = append(findings, f)
		}
	}
	return findings
}

// Resolve checks one reference. It returns the finding and true when the
// reference is broken. File existence is checked before anchor existence, so
// a reference never yields more than one finding.
func (r *Resolver) Resolve(ref model.Reference) (model.Finding, bool) {
	switch ref.Kind {
	case model.KindAnchor:
		return r.resolveAnchor(ref)
	case model.KindLocalFile, model.KindLocalFileWithAnchor:
		return r.resolveFile(ref)
	default:
		return model.Finding{}, false
	}
}

func (r *Resolver) resolveAnchor(ref model.Reference) (model.Finding, bool) {
	if ref.Anchor == "" {
		if r.strict {
			return model.NewFinding(ref, model.ReasonEmptyFragment), true
		}
		return model.Finding{}, false
	}
	if r.hasAnchor(ref.Source, ref.Anchor) {
		return model.Finding{}, false
	}
	return model.NewFinding(ref, model.ReasonMissingAnchor), true
}

func (r *Resolver) resolveFile(ref model.Reference) (model.Finding, bool) {
	if OutsideRoot(ref.Target) {
		return model.NewFinding(ref, model.ReasonOutsideRoot), true
	}

	dir, ok := r.stat(ref.Target)
	if !ok {
		return model.NewFinding(ref, model.ReasonMissingFile), true
	}
	if ref.Kind != model.KindLocalFileWithAnchor {
		return model.Finding{}, false
	}

	doc := ref.Target
	if dir {
		doc = path.Join(ref.Target, indexDocument)
		if isDir, ok := r.stat(doc); !ok || isDir {
			f := model.NewFinding(ref, model.ReasonMissingFile)
			f.Target = doc
			return f, true
		}
	}
	if r.hasAnchor(doc, ref.Anchor) {
		return model.Finding{}, false
	}

	f := model.NewFinding(ref, model.ReasonMissingTargetAnchor)
	f.Target = doc
	return f, true
}

// stat reports whether p exists and whether it is a directory. The walk
// index is consulted first; paths inside skipped directories fall back to
// the filesystem.
func (r *Resolver) stat(p string) (dir, ok bool) {
	if p == "." {
		return true, true
	}
	if dir, ok := r.files.Lookup(p); ok {
		return dir, true
	}
	info, err := fs.Stat(r.fsys, p)
	if err != nil {
		return false, false
	}
	return info.IsDir(), true
}

// hasAnchor reports whether the document at p defines id. The
// percent-decoded form of id is tried as well.
func (r *Resolver) hasAnchor(p, id string) bool {
	set := r.anchorSet(p)
	if set == nil {
		return false
	}
	if set.Has(id) {
		return true
	}
	if decoded, err := url.PathUnescape(id); err == nil && decoded != id {
		return set.Has(decoded)
	}
	return false
}

// anchorSet returns the anchors of the document at p, loading it on demand
// when it was not scanned.
func (r *Resolver) anchorSet(p string) *model.AnchorSet {
	if set, ok := r.anchors[p]; ok {
		return &set
	}
	if set, ok := r.loaded[p]; ok {
		return set
	}

	doc, err := crawler.ReadDocument(r.fsys, p, r.parser)
	if err != nil {
		r.logger.Warn("cannot read link target", "path", p, "error", err)
		r.loaded[p] = nil
		return nil
	}
	r.logger.Debug("loaded link target on demand", "path", p, "ids", doc.Anchors.Len())
	r.loaded[p] = &doc.Anchors
	return &doc.Anchors
}
