package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/linkcheck/internal/config"
)

// writeTree creates files under a new temporary root and returns it.
// An empty .linkcheck is added so that no user configuration is picked up.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	if _, ok := files[config.DefaultConfigFile]; !ok {
		files[config.DefaultConfigFile] = "{}\n"
	}
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return root
}

// runLinkcheck executes the root command with args and returns stdout,
// stderr and the exit code.
func runLinkcheck(t *testing.T, args ...string) (string, string, int) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	code := exitCode(cmd.Execute(), &stderr)
	return stdout.String(), stderr.String(), code
}

// TestNewCheckCmd tests the check command flags.
func TestNewCheckCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCheckCmd()

	flags := []struct {
		name      string
		shorthand string
	}{
		{name: "config", shorthand: "c"},
		{name: "exclude", shorthand: "x"},
		{name: "exclude-pattern"},
		{name: "ext"},
		{name: "ignore-scheme"},
		{name: "resources"},
		{name: "strict-fragments"},
		{name: "external", shorthand: "e"},
		{name: "sample", shorthand: "s"},
		{name: "timeout", shorthand: "t"},
		{name: "concurrency"},
		{name: "proxy"},
		{name: "user-agent"},
		{name: "json", shorthand: "j"},
		{name: "markdown", shorthand: "m"},
		{name: "output", shorthand: "o"},
	}

	for _, f := range flags {
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()

			flag := cmd.Flags().Lookup(f.name)
			if flag == nil {
				t.Fatalf("expected %s flag", f.name)
			}
			if flag.Shorthand != f.shorthand {
				t.Errorf("expected shorthand %q, got %q", f.shorthand, flag.Shorthand)
			}
		})
	}
}

// TestBuildConfig tests merging of defaults, config file and flags.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("uses defaults and the current directory", func(t *testing.T) {
		t.Parallel()

		cmd := NewCheckCmd()
		if err := cmd.ParseFlags([]string{"--config", writeConfig(t, "{}\n")}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Root != "." {
			t.Errorf("expected root '.', got %q", cfg.Root)
		}
		if cfg.SampleSize != config.DefaultSampleSize {
			t.Errorf("expected default sample size, got %d", cfg.SampleSize)
		}
	})

	t.Run("flags override the config file", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `exclude:
  dirs: [build]
external:
  enabled: true
  sampleSize: 3
  timeout: 2s
`)

		cmd := NewCheckCmd()
		args := []string{"--config", path, "--sample", "7", "-x", "tmp", "--ext", "xhtml"}
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"site"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Root != "site" {
			t.Errorf("expected root 'site', got %q", cfg.Root)
		}
		if !cfg.External {
			t.Error("expected external from the config file")
		}
		if cfg.SampleSize != 7 {
			t.Errorf("expected flag sample size 7, got %d", cfg.SampleSize)
		}
		if cfg.Timeout != 2*time.Second {
			t.Errorf("expected file timeout 2s, got %s", cfg.Timeout)
		}
		if !contains(cfg.ExcludeDirs, "build") || !contains(cfg.ExcludeDirs, "tmp") || !contains(cfg.ExcludeDirs, "vendor") {
			t.Errorf("expected defaults, file and flag excludes, got %v", cfg.ExcludeDirs)
		}
		if len(cfg.Extensions) != 1 || cfg.Extensions[0] != ".xhtml" {
			t.Errorf("expected extensions [.xhtml], got %v", cfg.Extensions)
		}
	})

	t.Run("unchanged flags keep file values", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "strictFragments: true\n")

		cmd := NewCheckCmd()
		if err := cmd.ParseFlags([]string{"--config", path}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.StrictFragments {
			t.Error("expected strict fragments from the config file")
		}
	})

	t.Run("fails for a missing explicit config file", func(t *testing.T) {
		t.Parallel()

		cmd := NewCheckCmd()
		missing := filepath.Join(t.TempDir(), "missing.yaml")
		if err := cmd.ParseFlags([]string{"--config", missing}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err := buildConfig(cmd, nil)
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "linkcheck.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// TestCheckCommand tests the check command end to end.
func TestCheckCommand(t *testing.T) {
	t.Parallel()

	t.Run("exits 0 for a clean tree", func(t *testing.T) {
		t.Parallel()

		root := writeTree(t, map[string]string{
			"index.html":      `<h1 id="top">Home</h1><a href="#top">top</a><a href="docs/a.html#usage">a</a>`,
			"docs/a.html":     `<h2 id="usage">Usage</h2><a href="../index.html">home</a>`,
			"docs/style.css":  `body {}`,
			"contact.html":    `<a href="mailto:team@example.com">mail</a><a href="tel:+1555">call</a>`,
			"external.html":   `<a href="https://example.com/">not probed</a>`,
			"empty.html":      ``,
			"docs/index.html": `<p id="intro">Docs</p>`,
		})

		stdout, stderr, code := runLinkcheck(t, "check", root)
		if code != exitOK {
			t.Fatalf("expected exit 0, got %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
		}
		if !strings.Contains(stdout, "All clear") {
			t.Errorf("expected all clear, got:\n%s", stdout)
		}
		if !strings.Contains(stdout, "Documents scanned: 6") {
			t.Errorf("expected 6 documents, got:\n%s", stdout)
		}
	})

	t.Run("exits 1 when links are broken", func(t *testing.T) {
		t.Parallel()

		root := writeTree(t, map[string]string{
			"index.html":  `<a href="#nowhere">bad</a><a href="missing.html">gone</a><a href="a.html#sec1">sec</a>`,
			"a.html":      `<h2 id="sec2">Two</h2>`,
			"vendor/x.md": `ignored`,
		})

		stdout, _, code := runLinkcheck(t, "check", root)
		if code != exitFindings {
			t.Fatalf("expected exit 1, got %d\n%s", code, stdout)
		}
		if !strings.Contains(stdout, "3 broken link(s) found.") {
			t.Errorf("expected three findings, got:\n%s", stdout)
		}
		if !strings.Contains(stdout, "file does not exist: missing.html") {
			t.Errorf("expected missing file finding, got:\n%s", stdout)
		}
	})

	t.Run("exits 2 when the root does not exist", func(t *testing.T) {
		t.Parallel()

		missing := filepath.Join(t.TempDir(), "nope")
		cfg := writeConfig(t, "{}\n")

		_, stderr, code := runLinkcheck(t, "check", "--config", cfg, missing)
		if code != exitFatal {
			t.Fatalf("expected exit 2, got %d", code)
		}
		if !strings.Contains(stderr, "nope") {
			t.Errorf("expected the root in the error, got %q", stderr)
		}
	})

	t.Run("exits 2 for conflicting report formats", func(t *testing.T) {
		t.Parallel()

		root := writeTree(t, map[string]string{"index.html": ``})

		_, stderr, code := runLinkcheck(t, "check", "--json", "--markdown", root)
		if code != exitFatal {
			t.Fatalf("expected exit 2, got %d", code)
		}
		if !strings.Contains(stderr, "configuration error") {
			t.Errorf("expected a configuration error, got %q", stderr)
		}
	})

	t.Run("text report is byte-identical across runs", func(t *testing.T) {
		t.Parallel()

		root := writeTree(t, map[string]string{
			"index.html":  `<a href="#x">x</a><a href="b/c.html">c</a>`,
			"b/d.html":    `<a href="../index.html#y">y</a>`,
			"b/e/f.html":  `<a href="../../zzz.html">z</a>`,
			"g.html":      `<a href="index.html">ok</a>`,
			"b/a.html":    `<a href="#">empty</a>`,
			"b/e/an.html": `<a href="%20space.html">space</a>`,
		})

		first, _, _ := runLinkcheck(t, "check", root)
		second, _, _ := runLinkcheck(t, "check", root)
		if first != second {
			t.Errorf("expected identical output:\n%s\n---\n%s", first, second)
		}
	})

	t.Run("writes a JSON report to a file", func(t *testing.T) {
		t.Parallel()

		root := writeTree(t, map[string]string{
			"index.html": `<a href="#missing">bad</a>`,
		})
		out := filepath.Join(t.TempDir(), "reports", "links.json")

		stdout, _, code := runLinkcheck(t, "check", "--json", "-o", out, root)
		if code != exitFindings {
			t.Fatalf("expected exit 1, got %d", code)
		}
		if stdout != "" {
			t.Errorf("expected nothing on stdout, got %q", stdout)
		}

		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		var decoded struct {
			Summary struct {
				Broken int `json:"broken"`
			} `json:"summary"`
		}
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Summary.Broken != 1 {
			t.Errorf("expected 1 broken link, got %d", decoded.Summary.Broken)
		}

		entries, err := os.ReadDir(filepath.Dir(out))
		if err != nil {
			t.Fatalf("failed to read directory: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("expected only the report file, got %d entries", len(entries))
		}
	})

	t.Run("writes a Markdown report", func(t *testing.T) {
		t.Parallel()

		root := writeTree(t, map[string]string{
			"index.html": `<a href="gone.html">gone</a>`,
		})

		stdout, _, code := runLinkcheck(t, "check", "-m", root)
		if code != exitFindings {
			t.Fatalf("expected exit 1, got %d", code)
		}
		if !strings.Contains(stdout, "# Linkcheck Report") || !strings.Contains(stdout, "### Local File") {
			t.Errorf("unexpected markdown:\n%s", stdout)
		}
	})

	t.Run("honours excludes and extensions", func(t *testing.T) {
		t.Parallel()

		root := writeTree(t, map[string]string{
			"index.html":        `<a href="ok.xhtml">ok</a>`,
			"ok.xhtml":          `<a href="#fine" id="fine">fine</a>`,
			"build/broken.html": `<a href="missing.html">missing</a>`,
			"drafts/wip.xhtml":  `<a href="missing.html">missing</a>`,
		})

		stdout, _, code := runLinkcheck(t, "check",
			"--ext", ".html,.xhtml", "-x", "build", "--exclude-pattern", "/drafts/*", root)
		if code != exitOK {
			t.Fatalf("expected exit 0, got %d\n%s", code, stdout)
		}
		if !strings.Contains(stdout, "Documents scanned: 2") {
			t.Errorf("expected 2 documents, got:\n%s", stdout)
		}
	})

	t.Run("reports bare fragments in strict mode", func(t *testing.T) {
		t.Parallel()

		root := writeTree(t, map[string]string{
			"index.html": `<a href="#">top</a>`,
		})

		if _, _, code := runLinkcheck(t, "check", root); code != exitOK {
			t.Errorf("expected exit 0 by default, got %d", code)
		}
		if _, _, code := runLinkcheck(t, "check", "--strict-fragments", root); code != exitFindings {
			t.Errorf("expected exit 1 in strict mode, got %d", code)
		}
	})

	t.Run("probes a sample of external links", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/dead" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			io.WriteString(w, "ok") //nolint:errcheck,gosec // Test server
		}))
		defer srv.Close()

		root := writeTree(t, map[string]string{
			"index.html": `<a href="` + srv.URL + `/live">live</a><a href="` + srv.URL + `/dead">dead</a>`,
		})

		stdout, _, code := runLinkcheck(t, "check", "-e", root)
		if code != exitFindings {
			t.Fatalf("expected exit 1, got %d\n%s", code, stdout)
		}
		if !strings.Contains(stdout, "External links:    2 found, 2 probed") {
			t.Errorf("expected probe counts, got:\n%s", stdout)
		}
		if !strings.Contains(stdout, "[best-effort]") || !strings.Contains(stdout, "HTTP 404") {
			t.Errorf("expected a best-effort 404 finding, got:\n%s", stdout)
		}

		stdout, _, code = runLinkcheck(t, "check", "-e", "-s", "1", root)
		if code != exitOK {
			t.Fatalf("expected exit 0 when the dead link is not sampled, got %d\n%s", code, stdout)
		}
		if !strings.Contains(stdout, "External links:    2 found, 1 probed") {
			t.Errorf("expected sampled probe counts, got:\n%s", stdout)
		}
	})
}

// TestWriteReportFile tests atomic report file writing.
func TestWriteReportFile(t *testing.T) {
	t.Parallel()

	t.Run("leaves no file when writing fails", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "report.txt")

		err := writeReportFile(path, func(w io.Writer) error {
			io.WriteString(w, "partial") //nolint:errcheck,gosec // Test
			return errors.New("interrupted")
		})
		if err == nil {
			t.Fatal("expected an error")
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("failed to read directory: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected an empty directory, got %d entries", len(entries))
		}
	})

	t.Run("replaces an existing report", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "report.txt")
		if err := os.WriteFile(path, []byte("old"), 0600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		err := writeReportFile(path, func(w io.Writer) error {
			_, err := io.WriteString(w, "new")
			return err
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if string(data) != "new" {
			t.Errorf("expected new content, got %q", data)
		}
	})
}
