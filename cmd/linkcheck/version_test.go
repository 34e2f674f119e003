package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestBuildInfo tests that every build field falls back to a non-empty value.
func TestBuildInfo(t *testing.T) {
	t.Parallel()

	for name, get := range map[string]func() string{
		"version": getVersion,
		"commit":  getCommit,
		"date":    getDate,
	} {
		if get() == "" {
			t.Errorf("%s is empty", name)
		}
	}
}

// TestVersionCommand tests the version subcommand output.
func TestVersionCommand(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"linkcheck version " + getVersion(), "commit: " + getCommit(), "built:  " + getDate()} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got %q", want, output)
		}
	}
}
