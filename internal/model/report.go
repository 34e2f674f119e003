package model

// Report is the result of one link check run.
// It is rendered by the writers in the report package.
type Report struct {
	// Root is the directory that was scanned, as given by the user.
	Root string `json:"root"`

	// DocumentCount is the number of documents scanned.
	DocumentCount int `json:"documentCount"`

	// ExternalTotal is the number of external references found.
	ExternalTotal int `json:"externalTotal"`

	// ExternalProbed is the number of external references actually probed.
	ExternalProbed int `json:"externalProbed"`

	// Interrupted is true when probing was abandoned by an interrupt.
	Interrupted bool `json:"interrupted,omitempty"`

	// Findings are the unresolved references in discovery order.
	Findings []Finding `json:"findings"`
}

// AllClear reports whether the run produced zero findings.
func (r *Report) AllClear() bool {
	return len(r.Findings) == 0
}

// FilesystemCount returns the number of findings backed by the filesystem.
func (r *Report) FilesystemCount() int {
	n := 0
	for _, f := range r.Findings {
		if !f.BestEffort {
			n++
		}
	}
	return n
}

// BestEffortCount returns the number of network-backed findings.
func (r *Report) BestEffortCount() int {
	return len(r.Findings) - r.FilesystemCount()
}

// FindingsByKind returns the findings of the given kind in report order.
func (r *Report) FindingsByKind(kind Kind) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}
