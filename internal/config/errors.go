package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and can be matched with
// errors.Is.
var (
	// ErrNoRoot is returned when the root directory is empty.
	ErrNoRoot = errors.New("no root directory specified")

	// ErrNoExtensions is returned when no document extension is configured,
	// which would make every scan empty.
	ErrNoExtensions = errors.New("no document extensions configured")

	// ErrInvalidExtension is returned when an extension does not start with a dot.
	ErrInvalidExtension = errors.New("invalid document extension: must start with '.'")

	// ErrInvalidTimeout is returned when the probe timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidSampleSize is returned when the external sample size is negative.
	ErrInvalidSampleSize = errors.New("invalid sample size: must be non-negative")

	// ErrInvalidConcurrency is returned when the probe concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidProxy is returned when the proxy URL has an unsupported scheme
	// or no host.
	ErrInvalidProxy = errors.New("invalid proxy: use socks5://host:port, http://host:port or https://host:port")

	// ErrInvalidConfigFile is returned when a configuration file value
	// violates a field constraint (e.g., a negative sample size).
	ErrInvalidConfigFile = errors.New("invalid configuration file")
)
