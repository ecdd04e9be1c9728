package table

import "errors"

var (
	// ErrNilTable occurs when a nil system table is handed over.
	ErrNilTable = errors.New("system table is nil")

	// ErrMissingService occurs when a mandatory service of the system table
	// is not populated.
	ErrMissingService = errors.New("system table lacks a mandatory service")

	// ErrBootServicesExited occurs when boot services are accessed after the
	// table moved into the runtime phase.
	ErrBootServicesExited = errors.New("boot services have been exited")
)
