package media

import (
	"fmt"
	"io"
)

// RegularFile adapts a non-directory node to [io.Reader], [io.Writer] and
// [io.Seeker]. Unlike [File.Read], end of file is reported as [io.EOF].
type RegularFile struct {
	*File
}

var (
	_ io.ReadWriteSeeker = (*RegularFile)(nil)
	_ io.Closer          = (*RegularFile)(nil)
)

// AsRegularFile wraps f after checking its metadata; directory nodes yield
// [ErrIsDirectory].
func AsRegularFile(f *File) (*RegularFile, error) {
	info, err := ReadInfo[FileInfo](f)
	if err != nil {
		return nil, fmt.Errorf("(media-asfile) %w", err)
	}
	if info.IsDirectory() {
		return nil, fmt.Errorf("(media-asfile) %s: %w", f.name, ErrIsDirectory)
	}

	return &RegularFile{File: f}, nil
}

// Read implements [io.Reader].
func (rf *RegularFile) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	n, err := rf.File.Read(p)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, io.EOF
	}

	return n, nil
}

// Seek implements [io.Seeker].
func (rf *RegularFile) Seek(offset int64, whence int) (int64, error) {
	var base uint64

	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		pos, err := rf.Position()
		if err != nil {
			return 0, err
		}
		base = pos
	case io.SeekEnd:
		if err := rf.SetPosition(PositionEnd); err != nil {
			return 0, err
		}
		pos, err := rf.Position()
		if err != nil {
			return 0, err
		}
		base = pos
	default:
		return 0, fmt.Errorf("(media-seek) %w: %d", ErrInvalidWhence, whence)
	}

	target := int64(base) + offset //nolint:gosec
	if target < 0 {
		return 0, fmt.Errorf("(media-seek) %w: %d", ErrNegativePosition, target)
	}

	if err := rf.SetPosition(uint64(target)); err != nil {
		return 0, err
	}

	return target, nil
}
