package model

// FileIndex records the files and directories seen while walking the root.
// Paths are slash-separated and relative to the root; the root itself is ".".
type FileIndex struct {
	entries map[string]bool
}

// NewFileIndex creates an empty FileIndex.
func NewFileIndex() *FileIndex {
	return &FileIndex{entries: make(map[string]bool)}
}

// Add records a path. dir is true for directories.
func (x *FileIndex) Add(path string, dir bool) {
	x.entries[path] = dir
}

// Lookup returns whether the path was seen and whether it is a directory.
func (x *FileIndex) Lookup(path string) (dir, ok bool) {
	if x == nil {
		return false, false
	}
	dir, ok = x.entries[path]
	return dir, ok
}

// Len returns the number of recorded paths.
func (x *FileIndex) Len() int {
	if x == nil {
		return 0
	}
	return len(x.entries)
}

// Run holds the state of one link check as it moves through the pipeline.
// Each step fills in its part; Documents and Files are read-only once the
// discovery step has finished.
type Run struct {
	// Root is the directory being checked, as given by the user.
	Root string

	// Documents are the scanned documents in walk order.
	Documents []*Document

	// Files indexes every file and directory seen during the walk.
	Files *FileIndex

	// References are the classified references in discovery order.
	References []Reference

	// Findings collects unresolved references. Order is restored by Report.
	Findings []Finding

	// ExternalTotal is the number of external references found.
	ExternalTotal int

	// ExternalProbed is the number of external references probed.
	ExternalProbed int

	// Interrupted is set when probing was cut short.
	Interrupted bool

	// PerformedSteps lists the names of completed pipeline steps.
	PerformedSteps []string
}

// NewRun creates a Run for the given root.
func NewRun(root string) *Run {
	return &Run{
		Root:  root,
		Files: NewFileIndex(),
	}
}

// AddFinding records a finding.
func (r *Run) AddFinding(f Finding) {
	r.Findings = append(r.Findings, f)
}

// AnchorTable builds the anchor table of the scanned documents.
func (r *Run) AnchorTable() AnchorTable {
	return NewAnchorTable(r.Documents)
}

// ExternalReferences returns the external references in discovery order.
func (r *Run) ExternalReferences() []Reference {
	var out []Reference
	for _, ref := range r.References {
		if ref.Kind == KindExternal {
			out = append(out, ref)
		}
	}
	return out
}

// Report builds the report. Findings are sorted into discovery order.
func (r *Run) Report() *Report {
	findings := make([]Finding, len(r.Findings))
	copy(findings, r.Findings)
	SortFindings(findings)

	return &Report{
		Root:           r.Root,
		DocumentCount:  len(r.Documents),
		ExternalTotal:  r.ExternalTotal,
		ExternalProbed: r.ExternalProbed,
		Interrupted:    r.Interrupted,
		Findings:       findings,
	}
}
