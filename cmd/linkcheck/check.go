package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkcheck/internal/config"
	"github.com/nao1215/linkcheck/internal/crawler"
	"github.com/nao1215/linkcheck/internal/log"
	"github.com/nao1215/linkcheck/internal/model"
	"github.com/nao1215/linkcheck/internal/pipeline"
	"github.com/nao1215/linkcheck/internal/report"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [root]",
		Short: "Check a directory of HTML documents for broken links",
		Long: `Check scans every HTML document under root (default: the current directory)
and reports references that do not resolve:
- Same-document anchors (#section) with no matching id or name
- Relative paths to files that do not exist under root
- Anchors in other documents (page.html#section) that are not defined there

mailto:, tel:, javascript: and data: references are never checked.
External http(s) links are only probed with --external, and only up to
--sample of them. Their results are best-effort.

Examples:
  # Check the current directory
  linkcheck check

  # Check a build output directory, skipping drafts
  linkcheck check ./public --exclude-pattern "/drafts/*"

  # Also check stylesheets, scripts and images
  linkcheck check --resources ./public

  # Probe up to 20 external links through a SOCKS proxy
  linkcheck check -e -s 20 --proxy socks5://127.0.0.1:1080 ./public

  # Write a Markdown report for a pull request comment
  linkcheck check -m -o report.md ./public

Configuration file (.linkcheck) example:
  exclude:
    dirs: [build]
    patterns: ["/drafts/*"]
  external:
    enabled: true
    sampleSize: 20`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheckCmd,
	}

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .linkcheck in root, current or home directory)")

	// Discovery flags
	cmd.Flags().StringSliceP("exclude", "x", nil,
		"Directory name to skip, in addition to node_modules, __pycache__ and vendor (repeatable)")
	cmd.Flags().StringSlice("exclude-pattern", nil,
		"Glob pattern of root-relative paths to skip, e.g. \"/drafts/*\" (repeatable)")
	cmd.Flags().StringSlice("ext", nil,
		"Document extensions to scan, replacing the default .html,.htm")

	// Classification and resolution flags
	cmd.Flags().StringSlice("ignore-scheme", nil,
		"URL scheme to never check, in addition to mailto, tel, javascript and data (repeatable)")
	cmd.Flags().Bool("resources", false,
		"Also check stylesheet, script, image and frame references")
	cmd.Flags().Bool("strict-fragments", false,
		"Report bare \"#\" references instead of skipping them")

	// External probe flags
	cmd.Flags().BoolP("external", "e", false,
		"Probe external http(s) links (best-effort)")
	cmd.Flags().IntP("sample", "s", config.DefaultSampleSize,
		"Maximum number of external links to probe")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each external probe")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Number of external probes in flight at once")
	cmd.Flags().String("proxy", "",
		"Route external probes through a proxy (socks5://, http:// or https://)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header for external probes")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose, getBoolFlag(cmd, "log-json"))
	slog.SetDefault(logger)

	// Cancel on interrupt so probing can stop early and still report.
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := runCheck(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if err := outputReport(cmd.OutOrStdout(), cfg, rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if !rep.AllClear() {
		return errFindings
	}
	return nil
}

// getBoolFlag retrieves a boolean flag from the command or its parents.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// buildConfig creates a Config from defaults, the configuration file and
// the command flags, in that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	if len(args) > 0 {
		cfg.Root = args[0]
	}

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file, error if not found.
	// Otherwise silently continue with defaults.
	configPath := config.FindConfigFile(cfg.ConfigFilePath, cfg.Root)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	overrides, err := flagOverrides(cmd)
	if err != nil {
		return nil, err
	}
	overrides.Apply(cfg)

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}
	cfg.Verbose = getBoolFlag(cmd, "verbose")

	return cfg, nil
}

// flagOverrides collects the explicitly set flags into a config.File so
// that they merge into the configuration exactly like file settings do.
// Flags left at their defaults do not override the file.
func flagOverrides(cmd *cobra.Command) (*config.File, error) {
	flags := cmd.Flags()
	var f config.File
	var err error

	if f.Exclude.Dirs, err = flags.GetStringSlice("exclude"); err != nil {
		return nil, err
	}
	if f.Exclude.Patterns, err = flags.GetStringSlice("exclude-pattern"); err != nil {
		return nil, err
	}
	if f.Extensions, err = flags.GetStringSlice("ext"); err != nil {
		return nil, err
	}
	if f.IgnoreSchemes, err = flags.GetStringSlice("ignore-scheme"); err != nil {
		return nil, err
	}

	if flags.Changed("resources") {
		v, err := flags.GetBool("resources")
		if err != nil {
			return nil, err
		}
		f.Resources = &v
	}
	if flags.Changed("strict-fragments") {
		v, err := flags.GetBool("strict-fragments")
		if err != nil {
			return nil, err
		}
		f.StrictFragments = &v
	}
	if flags.Changed("external") {
		v, err := flags.GetBool("external")
		if err != nil {
			return nil, err
		}
		f.External.Enabled = &v
	}
	if flags.Changed("sample") {
		v, err := flags.GetInt("sample")
		if err != nil {
			return nil, err
		}
		f.External.SampleSize = &v
	}
	if flags.Changed("timeout") {
		v, err := flags.GetDuration("timeout")
		if err != nil {
			return nil, err
		}
		f.External.Timeout = &v
	}
	if flags.Changed("concurrency") {
		v, err := flags.GetInt("concurrency")
		if err != nil {
			return nil, err
		}
		f.External.Concurrency = &v
	}
	if flags.Changed("user-agent") {
		if f.External.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if f.External.Proxy, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}

	return &f, nil
}

// setupLogger creates a structured logger on w based on the verbosity
// and format settings. Sensitive values are redacted.
func setupLogger(w io.Writer, verbose, jsonFormat bool) *slog.Logger {
	if jsonFormat {
		return log.NewSecureJSONLogger(w, verbose)
	}
	return log.NewSecureLogger(w, verbose)
}

// runCheck scans the root and returns the report.
// An interrupt before probing returns the context error and no report.
func runCheck(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*model.Report, error) {
	fsys, err := crawler.OpenRoot(cfg.Root)
	if err != nil {
		return nil, err
	}

	p, err := pipeline.DefaultPipeline(cfg, fsys, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("starting check",
		"root", cfg.Root,
		"steps", p.StepNames(),
		"external", cfg.External,
	)

	run := model.NewRun(cfg.Root)
	if err := p.Execute(ctx, run); err != nil {
		return nil, err
	}

	rep := run.Report()
	logger.Info("check completed",
		"documents", rep.DocumentCount,
		"findings", len(rep.Findings),
		"interrupted", rep.Interrupted,
	)
	return rep, nil
}

// newReportWriter returns the writer for the configured report format.
func newReportWriter(w io.Writer, cfg *config.Config) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(w, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
	}
}

// outputReport writes the report to stdout or, when configured, to the
// report file.
func outputReport(stdout io.Writer, cfg *config.Config, rep *model.Report) error {
	if cfg.ReportFile == "" {
		_, err := newReportWriter(stdout, cfg).Write(rep)
		return err
	}
	return writeReportFile(cfg.ReportFile, func(w io.Writer) error {
		_, err := newReportWriter(w, cfg).Write(rep)
		return err
	})
}

// writeReportFile writes a report file atomically: the content goes to a
// temporary file in the same directory, which is renamed over path only
// after it is complete.
func writeReportFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Created with 0600 by os.CreateTemp.
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // No-op after a successful rename

	if err := write(tmp); err != nil {
		tmp.Close() //nolint:errcheck,gosec // Already failing
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
