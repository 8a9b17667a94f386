package scan

import "errors"

var (
	// ErrRootUnreadable is returned when the scan root cannot be resolved or read.
	ErrRootUnreadable = errors.New("scan root unreadable")

	// ErrNotDirectory is returned when the scan root is not a directory.
	ErrNotDirectory = errors.New("scan root is not a directory")
)
