package media

import "errors"

var (
	// ErrClosed occurs when a node is used after it was closed or deleted.
	ErrClosed = errors.New("file node is closed")

	// ErrDeleteFailed occurs when the firmware closed a node but could not
	// remove it from the medium.
	ErrDeleteFailed = errors.New("file node was closed but not deleted")

	// ErrNotDirectory occurs when a node is converted into a [Directory] but
	// its metadata does not carry the directory attribute.
	ErrNotDirectory = errors.New("file node is not a directory")

	// ErrIsDirectory occurs when a directory node is converted into a
	// [RegularFile].
	ErrIsDirectory = errors.New("file node is a directory")

	// ErrInfoUnstable occurs when an information record kept growing between
	// the size query and the retry.
	ErrInfoUnstable = errors.New("information record size changed during retry")

	// ErrInvalidWhence occurs when [RegularFile.Seek] is called with an
	// unknown whence.
	ErrInvalidWhence = errors.New("invalid whence")

	// ErrNegativePosition occurs when [RegularFile.Seek] would move before
	// the start of the file.
	ErrNegativePosition = errors.New("negative position")
)
