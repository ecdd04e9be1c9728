package media

import (
	"fmt"
	"log/slog"
	"time"
	"unsafe"

	"github.com/desertwitch/goefi/internal/firmware"
	"github.com/desertwitch/goefi/internal/guid"
	"github.com/desertwitch/goefi/internal/status"
)

// Info is an information kind that can be queried from or applied to a node
// with [GetInfo] and [SetInfo]. The set of kinds is closed.
type Info interface {
	// InfoType returns the identifier of the information kind.
	InfoType() guid.GUID

	alignment() int
	decode(b []byte) error
	encode() ([]byte, error)
}

// infoKind ties an information kind to its pointer receiver.
type infoKind[I any] interface {
	*I
	Info
}

// Node is an open node: a [*File], or a view over one.
type Node interface {
	node() *File
}

func (f *File) node() *File { return f }

// FileInfo describes one file or directory.
type FileInfo struct {
	FileSize         uint64
	PhysicalSize     uint64
	CreateTime       time.Time
	LastAccessTime   time.Time
	ModificationTime time.Time
	Attribute        Attribute
	FileName         string
}

// InfoType implements [Info].
func (*FileInfo) InfoType() guid.GUID { return firmware.FileInfoGUID }

func (*FileInfo) alignment() int { return firmware.InfoAlignment }

// IsDirectory reports whether the node is a directory.
func (fi *FileInfo) IsDirectory() bool {
	return fi.Attribute.Has(AttrDirectory)
}

// IsRegular reports whether the node is a regular file.
func (fi *FileInfo) IsRegular() bool {
	return !fi.IsDirectory()
}

func (fi *FileInfo) decode(b []byte) error {
	var rec firmware.FileInfoRecord
	if err := rec.UnmarshalBinary(b); err != nil {
		return err
	}

	*fi = FileInfo{
		FileSize:         rec.FileSize,
		PhysicalSize:     rec.PhysicalSize,
		CreateTime:       rec.CreateTime.Time(),
		LastAccessTime:   rec.LastAccessTime.Time(),
		ModificationTime: rec.ModificationTime.Time(),
		Attribute:        Attribute(rec.Attribute),
		FileName:         rec.FileName,
	}

	return nil
}

func (fi *FileInfo) encode() ([]byte, error) {
	rec := firmware.FileInfoRecord{
		FileSize:         fi.FileSize,
		PhysicalSize:     fi.PhysicalSize,
		CreateTime:       firmware.TimeOf(fi.CreateTime),
		LastAccessTime:   firmware.TimeOf(fi.LastAccessTime),
		ModificationTime: firmware.TimeOf(fi.ModificationTime),
		Attribute:        uint64(fi.Attribute),
		FileName:         fi.FileName,
	}

	return rec.MarshalBinary()
}

// FileSystemInfo describes the volume a node lives on.
type FileSystemInfo struct {
	ReadOnly    bool
	VolumeSize  uint64
	FreeSpace   uint64
	BlockSize   uint32
	VolumeLabel string
}

// InfoType implements [Info].
func (*FileSystemInfo) InfoType() guid.GUID { return firmware.FileSystemInfoGUID }

func (*FileSystemInfo) alignment() int { return firmware.InfoAlignment }

func (fsi *FileSystemInfo) decode(b []byte) error {
	var rec firmware.FileSystemInfoRecord
	if err := rec.UnmarshalBinary(b); err != nil {
		return err
	}
	*fsi = FileSystemInfo(rec)

	return nil
}

func (fsi *FileSystemInfo) encode() ([]byte, error) {
	rec := firmware.FileSystemInfoRecord(*fsi)

	return rec.MarshalBinary()
}

// VolumeLabel is the label of the volume a node lives on.
type VolumeLabel struct {
	Label string
}

// InfoType implements [Info].
func (*VolumeLabel) InfoType() guid.GUID { return firmware.FileSystemVolumeLabelGUID }

func (*VolumeLabel) alignment() int { return 2 }

func (vl *VolumeLabel) decode(b []byte) error {
	var rec firmware.VolumeLabelRecord
	if err := rec.UnmarshalBinary(b); err != nil {
		return err
	}
	vl.Label = rec.Label

	return nil
}

func (vl *VolumeLabel) encode() ([]byte, error) {
	rec := firmware.VolumeLabelRecord{Label: vl.Label}

	return rec.MarshalBinary()
}

// Realign returns the part of buf starting at the first address satisfying
// align, together with the number of bytes skipped to get there. A buffer
// misaligned by k bytes loses (align-k) mod align bytes of capacity; when
// that exceeds its length, the returned window is empty. The window always
// lies within buf.
func Realign(buf []byte, align int) (window []byte, skipped int) {
	if align <= 1 || len(buf) == 0 {
		return buf, 0
	}

	addr := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	skipped = int((uintptr(align) - addr%uintptr(align)) % uintptr(align)) //nolint:gosec

	if skipped > len(buf) {
		return buf[len(buf):], len(buf)
	}

	return buf[skipped:], skipped
}

// GetInfo queries information of kind I about n into buf. The buffer is
// realigned for the record first (see [Realign]); a buffer too small for the
// record fails with [status.ErrBufferTooSmall] carrying the size an aligned
// buffer needs.
func GetInfo[I any, PI infoKind[I]](n Node, buf []byte) (*I, error) {
	f := n.node()
	if err := f.usable(); err != nil {
		return nil, fmt.Errorf("(media-getinfo) %w", err)
	}

	info := PI(new(I))
	window, _ := Realign(buf, info.alignment())

	size, s := f.proto.GetInfo(info.InfoType(), window)

	size, err := status.ResultWithSize(s, size, size)
	if err != nil {
		return nil, fmt.Errorf("(media-getinfo) %s: %w", f.name, err)
	}
	if size > len(window) {
		return nil, fmt.Errorf("(media-getinfo) %s: %w: firmware reported %d bytes into %d",
			f.name, firmware.ErrMalformedRecord, size, len(window))
	}

	if err := info.decode(window[:size]); err != nil {
		return nil, fmt.Errorf("(media-getinfo) %s: %w", f.name, err)
	}

	return (*I)(info), nil
}

// ReadInfo is [GetInfo] with a buffer it allocates itself, grown once to the
// size the firmware asks for.
func ReadInfo[I any, PI infoKind[I]](n Node) (*I, error) {
	size := initialInfoBuffer

	for range 2 {
		info, err := GetInfo[I, PI](n, make([]byte, size+firmware.InfoAlignment-1))
		if err == nil {
			return info, nil
		}

		required, ok := status.RequiredSize(err)
		if !ok {
			return nil, err
		}

		slog.Debug("Growing information buffer.",
			"node", n.node().name,
			"from", size,
			"to", required,
		)
		size = required
	}

	return nil, fmt.Errorf("(media-readinfo) %s: %w", n.node().name, ErrInfoUnstable)
}

// SetInfo applies info to n.
func SetInfo(n Node, info Info) error {
	f := n.node()
	if err := f.usable(); err != nil {
		return fmt.Errorf("(media-setinfo) %w", err)
	}

	b, err := info.encode()
	if err != nil {
		return fmt.Errorf("(media-setinfo) %s: %w", f.name, err)
	}

	if s := f.proto.SetInfo(info.InfoType(), b); s.IsError() {
		return fmt.Errorf("(media-setinfo) %s: %w", f.name, s.Err())
	}

	return nil
}

const initialInfoBuffer = 256
