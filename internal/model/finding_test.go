package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNewFinding(t *testing.T) {
	t.Parallel()

	t.Run("filesystem finding", func(t *testing.T) {
		t.Parallel()

		ref := Reference{Source: "a.html", Raw: "b.html", Kind: KindLocalFile, Target: "b.html"}
		f := NewFinding(ref, ReasonMissingFile)

		if f.BestEffort {
			t.Error("filesystem findings must not be best-effort")
		}
		if got := f.Message(); got != "file does not exist: b.html" {
			t.Errorf("unexpected message %q", got)
		}
	})

	t.Run("network findings are best effort", func(t *testing.T) {
		t.Parallel()

		ref := Reference{Source: "a.html", Raw: "https://example.com", Kind: KindExternal, Target: "https://example.com"}

		status := NewFinding(ref, ReasonHTTPStatus)
		status.StatusCode = 404
		if !status.BestEffort {
			t.Error("expected HTTP status finding to be best-effort")
		}
		if got := status.Message(); got != "HTTP 404" {
			t.Errorf("unexpected message %q", got)
		}

		transport := NewFinding(ref, ReasonTransport)
		transport.Error = "connection refused"
		if !transport.BestEffort {
			t.Error("expected transport finding to be best-effort")
		}
		if got := transport.Message(); got != "request failed: connection refused" {
			t.Errorf("unexpected message %q", got)
		}
	})
}

func TestSortFindings(t *testing.T) {
	t.Parallel()

	findings := []Finding{
		NewFinding(Reference{Raw: "c", DocIndex: 1, Index: 0}, ReasonMissingFile),
		NewFinding(Reference{Raw: "b", DocIndex: 0, Index: 3}, ReasonTransport),
		NewFinding(Reference{Raw: "a", DocIndex: 0, Index: 1}, ReasonMissingAnchor),
	}

	SortFindings(findings)

	got := []string{findings[0].Link, findings[1].Link, findings[2].Link}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected order %v, got %v", want, got)
	}
}

func TestFindingJSON(t *testing.T) {
	t.Parallel()

	f := NewFinding(Reference{Source: "a.html", Raw: "#x", Kind: KindAnchor, Anchor: "x"}, ReasonMissingAnchor)
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["kind"] != "anchor" {
		t.Errorf("expected kind anchor, got %v", decoded["kind"])
	}
	if decoded["reason"] != "missing_anchor" {
		t.Errorf("expected reason missing_anchor, got %v", decoded["reason"])
	}
	if decoded["anchor"] != "x" {
		t.Errorf("expected anchor x, got %v", decoded["anchor"])
	}
	if _, ok := decoded["target"]; ok {
		t.Error("expected empty target to be omitted")
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		want string
	}{
		{KindIgnored, "ignored"},
		{KindExternal, "external"},
		{KindAnchor, "anchor"},
		{KindLocalFile, "local file"},
		{KindLocalFileWithAnchor, "local file with anchor"},
		{Kind(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}
