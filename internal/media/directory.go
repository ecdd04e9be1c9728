package media

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/desertwitch/goefi/internal/firmware"
	"github.com/desertwitch/goefi/internal/status"
)

// Directory is a directory view over an open [File]. It shares the node with
// that file: closing either closes both. Reads yield one directory entry per
// call, in the order the firmware defines.
type Directory struct {
	file *File
}

// UnsafeDirectory wraps f without checking that it is a directory. The
// caller is responsible for having verified that, e.g. with [GetInfo].
func UnsafeDirectory(f *File) *Directory {
	return &Directory{file: f}
}

// AsDirectory wraps f after checking its metadata. The check queries a
// [FileInfo] into the caller-supplied buf; a node lacking the directory
// attribute yields [ErrNotDirectory].
func AsDirectory(f *File, buf []byte) (*Directory, error) {
	info, err := GetInfo[FileInfo](f, buf)
	if err != nil {
		return nil, fmt.Errorf("(media-asdir) %w", err)
	}
	if !info.IsDirectory() {
		return nil, fmt.Errorf("(media-asdir) %s: %w", f.name, ErrNotDirectory)
	}

	return UnsafeDirectory(f), nil
}

func (d *Directory) node() *File { return d.file }

// File returns the underlying node.
func (d *Directory) File() *File {
	return d.file
}

// Name returns the name the directory was opened with.
func (d *Directory) Name() string {
	return d.file.name
}

// Open opens a node relative to the directory. See [File.Open].
func (d *Directory) Open(name string, mode Mode, attrs Attribute) (*File, error) {
	return d.file.Open(name, mode, attrs)
}

// OpenDirectory opens a node relative to the directory and checks that it is
// a directory itself. The node is closed again when it is not.
func (d *Directory) OpenDirectory(name string, mode Mode, attrs Attribute) (*Directory, error) {
	f, err := d.file.Open(name, mode, attrs)
	if err != nil {
		return nil, err
	}

	info, err := ReadInfo[FileInfo](f)
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("(media-opendir) %w", err)
	}
	if !info.IsDirectory() {
		_ = f.Close()

		return nil, fmt.Errorf("(media-opendir) %s: %w", name, ErrNotDirectory)
	}

	return UnsafeDirectory(f), nil
}

// ReadEntry reads the next directory entry into buf. Exactly one entry is
// read per call, however large buf is. When the directory is exhausted the
// returned entry is nil and err is nil. The buffer is realigned for the
// record first (see [Realign]); when it cannot hold the next entry, the call
// fails with [status.ErrBufferTooSmall] carrying the size an aligned buffer
// needs, and the same entry is returned by the next successful call.
func (d *Directory) ReadEntry(buf []byte) (*FileInfo, error) {
	window, _ := Realign(buf, firmware.InfoAlignment)

	n, err := d.file.Read(window)
	if err != nil {
		return nil, fmt.Errorf("(media-readentry) %w", err)
	}
	if n == 0 {
		return nil, nil //nolint:nilnil
	}
	if n > len(window) {
		return nil, fmt.Errorf("(media-readentry) %s: %w: firmware reported %d bytes into %d",
			d.file.name, firmware.ErrMalformedRecord, n, len(window))
	}

	info := &FileInfo{}
	if err := info.decode(window[:n]); err != nil {
		return nil, fmt.Errorf("(media-readentry) %s: %w", d.file.name, err)
	}

	return info, nil
}

// Reset restarts the enumeration at the first entry.
func (d *Directory) Reset() error {
	return d.file.SetPosition(0)
}

// Entries enumerates the remaining entries, allocating and growing a buffer
// as needed. Iteration stops after the first error, which is yielded with a
// nil entry.
func (d *Directory) Entries() iter.Seq2[*FileInfo, error] {
	return func(yield func(*FileInfo, error) bool) {
		buf := make([]byte, initialInfoBuffer)

		for {
			info, err := d.ReadEntry(buf)
			if required, ok := status.RequiredSize(err); ok && required+firmware.InfoAlignment-1 > len(buf) {
				slog.Debug("Growing directory entry buffer.",
					"dir", d.file.name,
					"from", len(buf),
					"to", required,
				)
				buf = make([]byte, required+firmware.InfoAlignment-1)

				continue
			}
			if err != nil {
				yield(nil, err)

				return
			}
			if info == nil {
				return
			}
			if !yield(info, nil) {
				return
			}
		}
	}
}

// Flush writes all modified data of the directory to the device.
func (d *Directory) Flush() error {
	return d.file.Flush()
}

// Close releases the directory and its underlying node.
func (d *Directory) Close() error {
	return d.file.Close()
}

// Delete closes the directory and removes it from the medium.
func (d *Directory) Delete() error {
	return d.file.Delete()
}
