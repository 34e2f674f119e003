package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "linkcheck"

	// DefaultSampleSize is the number of external links probed per run.
	// Probing every external link would make runs slow and invite rate limiting.
	DefaultSampleSize = 10

	// DefaultTimeout bounds each external probe.
	DefaultTimeout = 5 * time.Second

	// DefaultConcurrency is the number of external probes in flight at once.
	DefaultConcurrency = 4

	// DefaultUserAgent identifies linkcheck in probe requests.
	DefaultUserAgent = "linkcheck/1.0 (+https://github.com/nao1215/linkcheck)"
)

// DefaultExtensions returns the document extensions scanned by default.
func DefaultExtensions() []string {
	return []string{".html", ".htm"}
}

// DefaultExcludeDirs returns the directory names skipped by default.
// Hidden directories are always skipped and need no entry here.
func DefaultExcludeDirs() []string {
	return []string{"node_modules", "__pycache__", "vendor"}
}

// DefaultIgnoreSchemes returns the URL schemes that are never checked.
func DefaultIgnoreSchemes() []string {
	return []string{"mailto", "tel", "javascript", "data"}
}

// Config holds all configuration options for linkcheck.
// It is populated from defaults, the optional config file and CLI flags, in
// that order, and passed explicitly to every component.
type Config struct {
	// Root is the directory under which documents are discovered and
	// relative references are resolved.
	Root string

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the usual locations.
	ConfigFilePath string

	// Extensions are the file extensions treated as documents, with leading dot.
	Extensions []string

	// ExcludeDirs are directory names skipped anywhere in the tree.
	ExcludeDirs []string

	// ExcludePatterns are glob patterns matched against root-relative paths
	// (e.g., "/drafts/*", "*.tmp.html").
	ExcludePatterns []string

	// IgnoreSchemes are URL schemes whose references are never checked.
	IgnoreSchemes []string

	// CheckResources also extracts resource references (stylesheets,
	// scripts, images, frames) in addition to hyperlinks.
	CheckResources bool

	// StrictFragments reports a bare "#" reference instead of skipping it.
	StrictFragments bool

	// External enables probing of external URLs.
	External bool

	// SampleSize is the maximum number of external references probed.
	SampleSize int

	// Timeout bounds each external probe.
	Timeout time.Duration

	// Concurrency is the number of external probes run at once.
	Concurrency int

	// UserAgent is sent with external probes.
	UserAgent string

	// Proxy routes external probes through a proxy
	// (socks5://host:port, http://host:port or https://host:port).
	Proxy string

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile writes the report to this path instead of stdout.
	ReportFile string

	// Verbose enables debug logging.
	Verbose bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Root:          ".",
		Extensions:    DefaultExtensions(),
		ExcludeDirs:   DefaultExcludeDirs(),
		IgnoreSchemes: DefaultIgnoreSchemes(),
		SampleSize:    DefaultSampleSize,
		Timeout:       DefaultTimeout,
		Concurrency:   DefaultConcurrency,
		UserAgent:     DefaultUserAgent,
	}
}

// XDGConfigDir returns the XDG config directory for linkcheck.
// On Linux: ~/.config/linkcheck
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGConfigFile returns the path of the per-user configuration file.
func XDGConfigFile() string {
	return filepath.Join(XDGConfigDir(), "config.yaml")
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return ErrNoRoot
	}

	if len(c.Extensions) == 0 {
		return ErrNoExtensions
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
		}
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// Probe settings only matter when probing is enabled.
	if !c.External {
		return nil
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.SampleSize < 0 {
		return ErrInvalidSampleSize
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.Proxy != "" {
		if err := validateProxy(c.Proxy); err != nil {
			return err
		}
	}

	return nil
}

// validateProxy checks the proxy URL scheme and host.
func validateProxy(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProxy, err)
	}
	switch u.Scheme {
	case "socks5", "socks5h", "http", "https":
	default:
		return ErrInvalidProxy
	}
	if u.Host == "" {
		return ErrInvalidProxy
	}
	return nil
}

// NormalizeExtensions lowercases extensions and adds a missing leading dot.
func NormalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}
