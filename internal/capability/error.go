package capability

import "errors"

var (
	// ErrTableExpired occurs when a capability is located, opened or used
	// after the table it belongs to left its boot phase.
	ErrTableExpired = errors.New("owning table is no longer in its boot phase")

	// ErrInterfaceMismatch occurs when the firmware returned an object for an
	// identifier that does not implement the interface declared for it.
	ErrInterfaceMismatch = errors.New("firmware object does not implement the capability interface")
)
