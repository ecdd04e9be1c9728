// Package media provides typed access to firmware file nodes. Everything is
// built on one primitive, the file capability: a [File] wraps an open node,
// a [Directory] is a view over the same node that reinterprets reads as
// directory entry enumeration, and a [RegularFile] adapts a node to the
// standard [io] interfaces.
//
// Nodes are identified by the capability they were opened through, never by
// path. Opening is always relative to an already open node and resolves
// exactly what the firmware resolves; traversal semantics are left to it.
// Nodes borrow the [table.System] of the volume they came from and stop
// working once that table leaves its boot phase.
package media

import (
	"fmt"

	"github.com/desertwitch/goefi/internal/capability"
	"github.com/desertwitch/goefi/internal/firmware"
	"github.com/desertwitch/goefi/internal/status"
	"github.com/desertwitch/goefi/internal/table"
	"github.com/desertwitch/goefi/internal/ucs2"
)

// Mode is the open mode of a file node.
type Mode uint64

const (
	ModeRead            = Mode(firmware.OpenRead)
	ModeReadWrite       = Mode(firmware.OpenRead | firmware.OpenWrite)
	ModeCreateReadWrite = Mode(firmware.OpenRead | firmware.OpenWrite | firmware.OpenCreate)
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeReadWrite:
		return "read-write"
	case ModeCreateReadWrite:
		return "create-read-write"
	default:
		return fmt.Sprintf("mode(%#x)", uint64(m))
	}
}

// Attribute is a set of file attribute bits.
type Attribute uint64

const (
	AttrNone      Attribute = 0
	AttrReadOnly            = Attribute(firmware.AttrReadOnly)
	AttrHidden              = Attribute(firmware.AttrHidden)
	AttrSystem              = Attribute(firmware.AttrSystem)
	AttrDirectory           = Attribute(firmware.AttrDirectory)
	AttrArchive             = Attribute(firmware.AttrArchive)
)

// Has reports whether every bit of other is set in a.
func (a Attribute) Has(other Attribute) bool {
	return a&other == other
}

// PositionEnd moves the cursor of a regular file to its end when passed to
// [File.SetPosition].
const PositionEnd = ^uint64(0)

// File is an open file node. It is not safe for concurrent use. It is meant
// to be passed by reference (pointer).
type File struct {
	proto  firmware.FileProtocol
	system *table.System
	name   string
	mode   Mode
	closed bool
}

func newFile(proto firmware.FileProtocol, system *table.System, name string, mode Mode) *File {
	return &File{
		proto:  proto,
		system: system,
		name:   name,
		mode:   mode,
	}
}

// OpenVolume opens the root directory of a volume.
func OpenVolume(inst *capability.Instance[firmware.SimpleFileSystem]) (*Directory, error) {
	sfs, err := inst.Get()
	if err != nil {
		return nil, fmt.Errorf("(media-volume) %w", err)
	}

	root, s := sfs.OpenVolume()
	if s.IsError() {
		return nil, fmt.Errorf("(media-volume) %w", s.Err())
	}

	return UnsafeDirectory(newFile(root, inst.System(), `\`, ModeReadWrite)), nil
}

// Name returns the name the node was opened with.
func (f *File) Name() string {
	return f.name
}

// Mode returns the mode the node was opened with.
func (f *File) Mode() Mode {
	return f.mode
}

// Closed reports whether the node was closed or deleted.
func (f *File) Closed() bool {
	return f.closed
}

// usable guards every firmware call on the node.
func (f *File) usable() error {
	if f.closed {
		return fmt.Errorf("%s: %w", f.name, ErrClosed)
	}
	if !f.system.Booting() {
		return fmt.Errorf("%s: %w", f.name, capability.ErrTableExpired)
	}

	return nil
}

// Open opens the node called name relative to f. The name is a single path
// segment in the firmware's own syntax.
func (f *File) Open(name string, mode Mode, attrs Attribute) (*File, error) {
	if err := f.usable(); err != nil {
		return nil, fmt.Errorf("(media-open) %w", err)
	}

	units, err := ucs2.Encode(name)
	if err != nil {
		return nil, fmt.Errorf("(media-open) %q: %w", name, err)
	}

	child, s := f.proto.Open(units, uint64(mode), uint64(attrs))
	if s.IsError() {
		return nil, fmt.Errorf("(media-open) %q (%s): %w", name, mode, s.Err())
	}

	return newFile(child, f.system, name, mode), nil
}

// Read fills buf from the cursor onwards and advances it. Zero bytes read
// with a nil error means end of file. For directory nodes see
// [Directory.ReadEntry]; a buffer too small for the next entry fails with
// [status.ErrBufferTooSmall] carrying the required size.
func (f *File) Read(buf []byte) (int, error) {
	if err := f.usable(); err != nil {
		return 0, fmt.Errorf("(media-read) %w", err)
	}

	n, s := f.proto.Read(buf)

	n, err := status.ResultWithSize(s, n, n)
	if err != nil {
		return n, fmt.Errorf("(media-read) %s: %w", f.name, err)
	}

	return n, nil
}

// Write writes buf at the cursor and advances it.
func (f *File) Write(buf []byte) (int, error) {
	if err := f.usable(); err != nil {
		return 0, fmt.Errorf("(media-write) %w", err)
	}

	n, s := f.proto.Write(buf)

	n, err := status.Result(s, n)
	if err != nil {
		return n, fmt.Errorf("(media-write) %s: %w", f.name, err)
	}

	return n, nil
}

// Position returns the cursor position.
func (f *File) Position() (uint64, error) {
	if err := f.usable(); err != nil {
		return 0, fmt.Errorf("(media-position) %w", err)
	}

	pos, s := f.proto.GetPosition()

	pos, err := status.Result(s, pos)
	if err != nil {
		return 0, fmt.Errorf("(media-position) %s: %w", f.name, err)
	}

	return pos, nil
}

// SetPosition moves the cursor. For directory nodes only zero is accepted,
// restarting the enumeration.
func (f *File) SetPosition(position uint64) error {
	if err := f.usable(); err != nil {
		return fmt.Errorf("(media-setposition) %w", err)
	}

	if s := f.proto.SetPosition(position); s.IsError() {
		return fmt.Errorf("(media-setposition) %s: %w", f.name, s.Err())
	}

	return nil
}

// Flush writes all modified data of the node to the device.
func (f *File) Flush() error {
	if err := f.usable(); err != nil {
		return fmt.Errorf("(media-flush) %w", err)
	}

	if s := f.proto.Flush(); s.IsError() {
		return fmt.Errorf("(media-flush) %s: %w", f.name, s.Err())
	}

	return nil
}

// Close releases the node. Closing an already closed node is a no-op.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	if !f.system.Booting() {
		return nil
	}

	if s := f.proto.Close(); s.IsError() {
		return fmt.Errorf("(media-close) %s: %w", f.name, s.Err())
	}

	return nil
}

// Delete closes the node and asks the firmware to remove it from the
// medium. The node is closed even when the removal fails.
func (f *File) Delete() error {
	if err := f.usable(); err != nil {
		return fmt.Errorf("(media-delete) %w", err)
	}
	f.closed = true

	if s := f.proto.Delete(); !s.IsSuccess() {
		return fmt.Errorf("(media-delete) %s: %w: %w", f.name, ErrDeleteFailed, s.Err())
	}

	return nil
}
