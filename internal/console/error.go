package console

import "errors"

// ErrWriteFailed occurs when the firmware rejected a staged run. Partial
// display writes cannot be undone, so every such failure maps to this error.
var ErrWriteFailed = errors.New("console write failed")
