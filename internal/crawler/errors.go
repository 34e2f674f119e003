package crawler

import "errors"

var (
	// ErrRootNotFound is returned when the root directory does not exist.
	ErrRootNotFound = errors.New("root directory does not exist")

	// ErrRootNotDirectory is returned when the root exists but is not a directory.
	ErrRootNotDirectory = errors.New("root is not a directory")
)
