package firmware

import "errors"

// ErrMalformedRecord occurs when an information record is shorter than its
// header or than the size it declares.
var ErrMalformedRecord = errors.New("malformed information record")
