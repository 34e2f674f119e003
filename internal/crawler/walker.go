package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/nao1215/linkcheck/internal/model"
)

// Walker enumerates the documents under a root directory.
//
// The root is given as an fs.FS so the same walker serves the real
// filesystem (via OpenRoot) and in-memory trees in tests. Paths produced by
// the walker are slash-separated and relative to the root.
type Walker struct {
	fsys fs.FS

	// extensions are the recognized document extensions, lower case with
	// the leading dot.
	extensions map[string]bool

	// excludeDirs are directory names skipped wherever they appear.
	excludeDirs map[string]bool

	// excludePatterns are glob patterns matched against "/"-prefixed paths
	// (e.g., "/drafts/*", "*.tmp.html").
	excludePatterns []string

	parser *Parser
	logger *slog.Logger
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithExtensions sets the recognized document extensions.
func WithExtensions(exts []string) WalkerOption {
	return func(w *Walker) {
		w.extensions = make(map[string]bool, len(exts))
		for _, ext := range exts {
			w.extensions[strings.ToLower(ext)] = true
		}
	}
}

// WithExcludeDirs sets directory names to skip.
func WithExcludeDirs(dirs []string) WalkerOption {
	return func(w *Walker) {
		w.excludeDirs = make(map[string]bool, len(dirs))
		for _, d := range dirs {
			w.excludeDirs[d] = true
		}
	}
}

// WithExcludePatterns sets glob patterns for paths to skip.
func WithExcludePatterns(patterns []string) WalkerOption {
	return func(w *Walker) {
		w.excludePatterns = patterns
	}
}

// WithParser sets the parser used for discovered documents.
func WithParser(p *Parser) WalkerOption {
	return func(w *Walker) {
		w.parser = p
	}
}

// WithLogger sets the logger for skipped paths.
func WithLogger(logger *slog.Logger) WalkerOption {
	return func(w *Walker) {
		w.logger = logger
	}
}

// NewWalker creates a Walker over fsys.
func NewWalker(fsys fs.FS, opts ...WalkerOption) *Walker {
	w := &Walker{
		fsys:        fsys,
		extensions:  map[string]bool{".html": true, ".htm": true},
		excludeDirs: map[string]bool{},
		parser:      NewParser(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WalkResult is the outcome of one walk.
type WalkResult struct {
	// Documents are the parsed documents in lexical path order.
	Documents []*model.Document

	// Files indexes every file and directory visited.
	Files *model.FileIndex

	// Skipped lists paths that could not be read.
	Skipped []string
}

// OpenRoot validates the root directory and returns a filesystem rooted at it.
func OpenRoot(root string) (fs.FS, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return nil, fmt.Errorf("failed to stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotDirectory, root)
	}
	return os.DirFS(root), nil
}

// Walk enumerates and parses every recognized document under the root.
// Unreadable directories and files are logged and skipped. The walk stops
// early only when ctx is cancelled.
func (w *Walker) Walk(ctx context.Context) (*WalkResult, error) {
	result := &WalkResult{
		Files: model.NewFileIndex(),
	}

	err := fs.WalkDir(w.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == "." {
				return fmt.Errorf("failed to read root: %w", err)
			}
			w.logger.Warn("skipping unreadable path", "path", p, "error", err)
			result.Skipped = append(result.Skipped, p)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if p != "." && w.skipDir(p, d.Name()) {
				w.logger.Debug("skipping directory", "path", p)
				return fs.SkipDir
			}
			result.Files.Add(p, true)
			return nil
		}

		result.Files.Add(p, false)
		if !w.isDocument(p) || w.excluded(p) {
			return nil
		}

		doc, readErr := ReadDocument(w.fsys, p, w.parser)
		if readErr != nil {
			w.logger.Warn("skipping unreadable document", "path", p, "error", readErr)
			result.Skipped = append(result.Skipped, p)
			return nil
		}
		result.Documents = append(result.Documents, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.logger.Debug("walk complete",
		"documents", len(result.Documents),
		"paths", result.Files.Len(),
		"skipped", len(result.Skipped))
	return result, nil
}

// ReadDocument reads, decodes and parses one document from fsys.
func ReadDocument(fsys fs.FS, p string, parser *Parser) (*model.Document, error) {
	raw, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	content := Decode(raw)
	parsed := parser.Parse(content)
	return model.NewDocument(p, content, parsed.IDs, parsed.References), nil
}

// skipDir reports whether a directory is hidden, excluded by name, or
// excluded by pattern.
func (w *Walker) skipDir(p, name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if w.excludeDirs[name] {
		return true
	}
	return w.excluded(p)
}

func (w *Walker) isDocument(p string) bool {
	return w.extensions[strings.ToLower(path.Ext(p))]
}

func (w *Walker) excluded(p string) bool {
	slashed := "/" + p
	for _, pattern := range w.excludePatterns {
		if matchPattern(pattern, slashed) {
			return true
		}
	}
	return false
}

// matchPattern checks if a "/"-prefixed path matches a glob pattern.
// Supports "/dir/*" (everything below dir), "*.ext" (extension anywhere),
// standard path.Match globs, and base-name matching for slash-free patterns.
func matchPattern(pattern, p string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(p, prefix+"/") || p == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") && !strings.ContainsAny(pattern[1:], "*?[") {
		if strings.HasSuffix(p, pattern[1:]) {
			return true
		}
	}

	if matched, err := path.Match(pattern, p); err == nil && matched {
		return true
	}

	if !strings.Contains(pattern, "/") {
		if matched, err := path.Match(pattern, path.Base(p)); err == nil && matched {
			return true
		}
	}
	return false
}
