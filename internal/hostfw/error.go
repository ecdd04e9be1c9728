package hostfw

import "errors"

var (
	// ErrNotDirectory is returned when a volume root is not a directory.
	ErrNotDirectory = errors.New("volume root is not a directory")
)
