package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes returned by Execute.
const (
	// exitOK means the check ran and found no broken links.
	exitOK = 0
	// exitFindings means the check ran and found broken links.
	exitFindings = 1
	// exitFatal means the check could not run (bad root, invalid configuration).
	exitFatal = 2
	// exitInterrupted means the run was interrupted before a report could be produced.
	exitInterrupted = 130
)

// errFindings is returned by the check command when the report is not all clear.
// It carries no message for the user: the report already says it.
var errFindings = errors.New("broken links found")

// NewRootCmd creates the root command for linkcheck.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkcheck",
		Short: "Find broken links and anchors in a directory of HTML documents",
		Long: `linkcheck scans a directory tree of HTML documents and reports references
that do not resolve: missing files, missing anchors in the same document,
and missing anchors in other documents.

External URLs are not checked by default. Use --external to probe a bounded
sample of them; network failures are reported as best-effort findings.

The exit status is 0 when no broken links are found, 1 when there are broken
links, and 2 when the check could not run.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write diagnostics to stderr as JSON")

	// Add subcommands
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return exitCode(NewRootCmd().ExecuteContext(context.Background()), os.Stderr)
}

// exitCode maps the error returned by a command to an exit code,
// printing fatal errors to stderr.
func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errFindings):
		return exitFindings
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(stderr, "interrupted")
		return exitInterrupted
	default:
		fmt.Fprintln(stderr, err)
		return exitFatal
	}
}
