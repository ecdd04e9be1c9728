package configuration

import "errors"

var (
	// ErrInvalidSetting occurs when a settings key holds a value that cannot
	// be converted to its type or is out of range.
	ErrInvalidSetting = errors.New("invalid setting")
)
