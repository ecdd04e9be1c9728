package services

import "errors"

var (
	// ErrNotInitialized occurs when the system table is requested before it
	// was registered.
	ErrNotInitialized = errors.New("system table was not initialized")
)
