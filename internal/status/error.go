package status

import (
	"errors"
	"fmt"
)

// Error is a firmware error completion. Required holds the auxiliary payload
// of [BufferTooSmall]: the exact buffer size in bytes the call needs.
type Error struct {
	Status   Status
	Required int
}

func (e *Error) Error() string {
	if e.Status == BufferTooSmall && e.Required > 0 {
		return fmt.Sprintf("%s (requires %d bytes)", e.Status.description(), e.Required)
	}

	return e.Status.description()
}

// Is matches any [*Error] carrying the same status, regardless of payload.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.Status == e.Status
}

// Warning is a successful completion with a caveat. Calls returning a
// Warning also return their produced value.
type Warning struct {
	Status Status
}

func (w *Warning) Error() string {
	return "warning: " + w.Status.description()
}

// Is matches any [*Warning] carrying the same status.
func (w *Warning) Is(target error) bool {
	t, ok := target.(*Warning)

	return ok && t.Status == w.Status
}

//nolint:gochecknoglobals
var (
	// ErrInvalidParameter occurs when the firmware rejected an argument.
	ErrInvalidParameter = &Error{Status: InvalidParameter}

	// ErrUnsupported occurs when a handle or firmware lacks a capability.
	ErrUnsupported = &Error{Status: Unsupported}

	// ErrBufferTooSmall occurs when a caller buffer cannot hold the result.
	// Use [RequiredSize] to learn the size needed for a retry.
	ErrBufferTooSmall = &Error{Status: BufferTooSmall}

	// ErrDeviceError occurs when the device reported a hardware failure, the
	// node was deleted or a read started past the end of a file.
	ErrDeviceError = &Error{Status: DeviceError}

	// ErrWriteProtected occurs when writing to or deleting on a read-only
	// medium.
	ErrWriteProtected = &Error{Status: WriteProtected}

	// ErrVolumeCorrupted occurs when the filesystem structures are damaged.
	ErrVolumeCorrupted = &Error{Status: VolumeCorrupted}

	// ErrVolumeFull occurs when the medium has no space left.
	ErrVolumeFull = &Error{Status: VolumeFull}

	// ErrNoMedia occurs when the device has no medium inserted.
	ErrNoMedia = &Error{Status: NoMedia}

	// ErrMediaChanged occurs when the medium was replaced since it was
	// opened.
	ErrMediaChanged = &Error{Status: MediaChanged}

	// ErrNotFound occurs when a named node or capability does not exist.
	ErrNotFound = &Error{Status: NotFound}

	// ErrAccessDenied occurs when the open mode or attributes are refused.
	ErrAccessDenied = &Error{Status: AccessDenied}

	// ErrAborted occurs when an operation was cancelled by the firmware.
	ErrAborted = &Error{Status: Aborted}

	// ErrProtocolError occurs when a capability failed outside its
	// documented error set.
	ErrProtocolError = &Error{Status: ProtocolError}
)

// Result converts a completion for a call producing v. On success v is
// returned with a nil error, on a warning v is returned together with a
// [*Warning], on an error v is discarded.
func Result[T any](s Status, v T) (T, error) {
	switch Classify(s) {
	case ClassSuccess:
		return v, nil
	case ClassWarning:
		return v, &Warning{Status: s}
	default:
		var zero T

		return zero, &Error{Status: s}
	}
}

// ResultWithSize is [Result] for calls whose contract reports the required
// buffer size on [BufferTooSmall]. That size is preserved in the returned
// [*Error].
func ResultWithSize[T any](s Status, v T, required int) (T, error) {
	if s == BufferTooSmall {
		var zero T

		return zero, &Error{Status: s, Required: required}
	}

	return Result(s, v)
}

// IgnoreWarning folds a [*Warning] into success and returns any other error
// unchanged.
func IgnoreWarning(err error) error {
	if IsWarning(err) {
		return nil
	}

	return err
}

// IsWarning reports whether err is (or wraps) a [*Warning].
func IsWarning(err error) bool {
	var w *Warning

	return errors.As(err, &w)
}

// RequiredSize extracts the required buffer size from a [BufferTooSmall]
// error anywhere in err's chain.
func RequiredSize(err error) (int, bool) {
	var e *Error
	if errors.As(err, &e) && e.Status == BufferTooSmall {
		return e.Required, true
	}

	return 0, false
}

// Of returns the firmware status carried by err. Errors that did not
// originate from a firmware completion map to [Aborted], nil maps to
// [Success].
func Of(err error) Status {
	if err == nil {
		return Success
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}

	var w *Warning
	if errors.As(err, &w) {
		return w.Status
	}

	return Aborted
}
