package hostfw

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/desertwitch/goefi/internal/firmware"
	"github.com/desertwitch/goefi/internal/guid"
	"github.com/desertwitch/goefi/internal/status"
	"github.com/desertwitch/goefi/internal/ucs2"
	"golang.org/x/sys/unix"
)

// UnixProvider defines the system calls a [Volume] needs.
type UnixProvider interface {
	Lstat(path string, stat *unix.Stat_t) error
	Statfs(path string, buf *unix.Statfs_t) error
}

// UnixAdapter is the default [UnixProvider].
type UnixAdapter struct{}

func (*UnixAdapter) Lstat(path string, stat *unix.Stat_t) error {
	return unix.Lstat(path, stat)
}

func (*UnixAdapter) Statfs(path string, buf *unix.Statfs_t) error {
	return unix.Statfs(path, buf)
}

// Volume is a simple file system rooted in a host directory. Paths never
// leave the root and symbolic links are not followed. Directory enumeration
// yields "." and ".." for every directory but the root, followed by the
// entries in lexical order. The label is held in memory only.
type Volume struct {
	sync.Mutex
	root     string
	label    string
	readOnly bool
	unixOps  UnixProvider
}

// VolumeOption configures a [Volume].
type VolumeOption func(*Volume)

// WithLabel sets the initial volume label.
func WithLabel(label string) VolumeOption {
	return func(v *Volume) {
		v.label = label
	}
}

// WithReadOnly makes every modification fail as write protected.
func WithReadOnly() VolumeOption {
	return func(v *Volume) {
		v.readOnly = true
	}
}

// WithUnixProvider replaces the [UnixAdapter].
func WithUnixProvider(p UnixProvider) VolumeOption {
	return func(v *Volume) {
		v.unixOps = p
	}
}

// NewVolume returns a pointer to a new [Volume] rooted in the directory root.
func NewVolume(root string, opts ...VolumeOption) (*Volume, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("(hostfw-volume) failed to resolve %s: %w", root, err)
	}

	v := &Volume{
		root:    abs,
		unixOps: &UnixAdapter{},
	}
	for _, opt := range opts {
		opt(v)
	}

	var stat unix.Stat_t
	if err := v.unixOps.Lstat(abs, &stat); err != nil {
		return nil, fmt.Errorf("(hostfw-volume) failed to lstat %s: %w", abs, err)
	}
	if stat.Mode&unix.S_IFMT != unix.S_IFDIR {
		return nil, fmt.Errorf("(hostfw-volume) %s: %w", abs, ErrNotDirectory)
	}

	return v, nil
}

// Root returns the host directory the volume is rooted in.
func (v *Volume) Root() string {
	return v.root
}

// Label returns the current volume label.
func (v *Volume) Label() string {
	v.Lock()
	defer v.Unlock()

	return v.label
}

func (v *Volume) setLabel(label string) {
	v.Lock()
	defer v.Unlock()

	v.label = label
}

// OpenVolume implements [firmware.SimpleFileSystem].
func (v *Volume) OpenVolume() (firmware.FileProtocol, status.Status) {
	return &node{
		vol:  v,
		dir:  true,
		mode: firmware.OpenRead | firmware.OpenWrite,
	}, status.Success
}

func (v *Volume) hostPath(rel string) string {
	return filepath.Join(v.root, filepath.FromSlash(rel))
}

// checkParents requires every segment leading up to rel to be a real
// directory, so the host never follows a symbolic link out of the root.
func (v *Volume) checkParents(rel string) status.Status {
	segments := strings.Split(rel, "/")

	var stat unix.Stat_t
	for i := 1; i < len(segments); i++ {
		parent := path.Join(segments[:i]...)
		if err := v.unixOps.Lstat(v.hostPath(parent), &stat); err != nil {
			return statusOf(err)
		}
		if stat.Mode&unix.S_IFMT != unix.S_IFDIR {
			return status.AccessDenied
		}
	}

	return status.Success
}

func (v *Volume) fileInfo(rel string, name string) (*firmware.FileInfoRecord, status.Status) {
	var stat unix.Stat_t
	if err := v.unixOps.Lstat(v.hostPath(rel), &stat); err != nil {
		return nil, statusOf(err)
	}

	rec := &firmware.FileInfoRecord{
		PhysicalSize:     uint64(stat.Blocks) * 512, //nolint:gosec,mnd
		CreateTime:       firmware.TimeOf(time.Unix(stat.Ctim.Unix())),
		LastAccessTime:   firmware.TimeOf(time.Unix(stat.Atim.Unix())),
		ModificationTime: firmware.TimeOf(time.Unix(stat.Mtim.Unix())),
		FileName:         representable(name),
	}

	if stat.Mode&unix.S_IFMT == unix.S_IFDIR {
		rec.Attribute |= firmware.AttrDirectory
	} else {
		rec.FileSize = uint64(stat.Size) //nolint:gosec
		rec.Attribute |= firmware.AttrArchive
	}
	if stat.Mode&0o200 == 0 {
		rec.Attribute |= firmware.AttrReadOnly
	}
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		rec.Attribute |= firmware.AttrHidden
	}

	return rec, status.Success
}

func (v *Volume) fileSystemInfo() (*firmware.FileSystemInfoRecord, status.Status) {
	var stat unix.Statfs_t
	if err := v.unixOps.Statfs(v.root, &stat); err != nil {
		return nil, statusOf(err)
	}

	return &firmware.FileSystemInfoRecord{
		ReadOnly:    v.readOnly,
		VolumeSize:  stat.Blocks * uint64(stat.Bsize), //nolint:gosec
		FreeSpace:   stat.Bavail * uint64(stat.Bsize), //nolint:gosec
		BlockSize:   uint32(stat.Bsize),               //nolint:gosec
		VolumeLabel: representable(v.Label()),
	}, status.Success
}

// node is an open file or directory of a [Volume].
type node struct {
	vol     *Volume
	rel     string
	dir     bool
	mode    uint64
	file    *os.File
	entries []string
	cursor  int
}

func (n *node) base() string {
	if n.rel == "" {
		return ""
	}

	return path.Base(n.rel)
}

func (n *node) Open(name []uint16, mode uint64, attrs uint64) (firmware.FileProtocol, status.Status) {
	if !validMode(mode) || attrs&^firmware.AttrValidMask != 0 {
		return nil, status.InvalidParameter
	}
	if mode&firmware.OpenWrite != 0 && n.vol.readOnly {
		return nil, status.WriteProtected
	}

	rel, ok := resolve(n.rel, ucs2.Decode(name))
	if !ok {
		return nil, status.NotFound
	}

	if s := n.vol.checkParents(rel); s.IsError() {
		return nil, s
	}

	child := &node{vol: n.vol, rel: rel, mode: mode}
	hostPath := n.vol.hostPath(rel)

	var stat unix.Stat_t
	if err := n.vol.unixOps.Lstat(hostPath, &stat); err != nil {
		if !errors.Is(err, unix.ENOENT) || mode&firmware.OpenCreate == 0 {
			return nil, statusOf(err)
		}

		return child.create(hostPath, attrs)
	}

	switch stat.Mode & unix.S_IFMT {
	case unix.S_IFDIR:
		child.dir = true

		return child, status.Success

	case unix.S_IFREG:

	default:
		return nil, status.AccessDenied
	}

	flag := os.O_RDONLY
	if mode&firmware.OpenWrite != 0 {
		flag = os.O_RDWR
	}

	f, err := os.OpenFile(hostPath, flag, 0)
	if err != nil {
		return nil, statusOf(err)
	}
	child.file = f

	return child, status.Success
}

func (n *node) create(hostPath string, attrs uint64) (firmware.FileProtocol, status.Status) {
	if attrs&firmware.AttrDirectory != 0 {
		if err := os.Mkdir(hostPath, 0o755); err != nil { //nolint:mnd
			return nil, statusOf(err)
		}
		n.dir = true

		return n, status.Success
	}

	perm := os.FileMode(0o644) //nolint:mnd
	if attrs&firmware.AttrReadOnly != 0 {
		perm = 0o444 //nolint:mnd
	}

	f, err := os.OpenFile(hostPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return nil, statusOf(err)
	}
	n.file = f

	return n, status.Success
}

func (n *node) Close() status.Status {
	if n.file != nil {
		_ = n.file.Close()
		n.file = nil
	}

	return status.Success
}

func (n *node) Delete() status.Status {
	n.Close()

	if n.rel == "" || n.vol.readOnly {
		return status.WarnDeleteFailure
	}
	if err := os.Remove(n.vol.hostPath(n.rel)); err != nil {
		return status.WarnDeleteFailure
	}

	return status.Success
}

func (n *node) Read(buf []byte) (int, status.Status) {
	if n.dir {
		return n.readEntry(buf)
	}

	pos, err := n.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, statusOf(err)
	}
	fi, err := n.file.Stat()
	if err != nil {
		return 0, statusOf(err)
	}
	if pos > fi.Size() {
		return 0, status.DeviceError
	}

	read, err := n.file.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return read, statusOf(err)
	}

	return read, status.Success
}

func (n *node) readEntry(buf []byte) (int, status.Status) {
	if n.entries == nil {
		entries, err := os.ReadDir(n.vol.hostPath(n.rel))
		if err != nil {
			return 0, statusOf(err)
		}

		n.entries = make([]string, 0, len(entries)+2) //nolint:mnd
		if n.rel != "" {
			n.entries = append(n.entries, ".", "..")
		}
		for _, e := range entries {
			n.entries = append(n.entries, e.Name())
		}
	}

	var rec *firmware.FileInfoRecord
	for rec == nil {
		if n.cursor >= len(n.entries) {
			return 0, status.Success
		}

		name := n.entries[n.cursor]

		rel := path.Join(n.rel, name)
		switch name {
		case ".":
			rel = n.rel
		case "..":
			rel, _ = resolve(n.rel, "..")
		}

		var s status.Status
		rec, s = n.vol.fileInfo(rel, name)
		if s == status.NotFound {
			// Removed since the listing was taken.
			n.cursor++

			continue
		}
		if s.IsError() {
			return 0, s
		}
	}

	b, err := rec.MarshalBinary()
	if err != nil {
		return 0, status.DeviceError
	}
	if len(buf) < len(b) {
		return len(b), status.BufferTooSmall
	}

	copy(buf, b)
	n.cursor++

	return len(b), status.Success
}

func (n *node) Write(buf []byte) (int, status.Status) {
	switch {
	case n.dir:
		return 0, status.Unsupported
	case n.vol.readOnly:
		return 0, status.WriteProtected
	case n.mode&firmware.OpenWrite == 0:
		return 0, status.AccessDenied
	}

	written, err := n.file.Write(buf)
	if err != nil {
		return written, statusOf(err)
	}

	return written, status.Success
}

func (n *node) GetPosition() (uint64, status.Status) {
	if n.dir {
		return 0, status.Unsupported
	}

	pos, err := n.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, statusOf(err)
	}

	return uint64(pos), status.Success //nolint:gosec
}

func (n *node) SetPosition(position uint64) status.Status {
	if n.dir {
		if position != 0 {
			return status.Unsupported
		}
		n.entries = nil
		n.cursor = 0

		return status.Success
	}

	var err error
	if position == ^uint64(0) {
		_, err = n.file.Seek(0, io.SeekEnd)
	} else {
		_, err = n.file.Seek(int64(position), io.SeekStart) //nolint:gosec
	}
	if err != nil {
		return statusOf(err)
	}

	return status.Success
}

func (n *node) GetInfo(id guid.GUID, buf []byte) (int, status.Status) {
	var (
		b   []byte
		err error
	)

	switch id {
	case firmware.FileInfoGUID:
		rec, s := n.vol.fileInfo(n.rel, n.base())
		if s.IsError() {
			return 0, s
		}
		b, err = rec.MarshalBinary()

	case firmware.FileSystemInfoGUID:
		rec, s := n.vol.fileSystemInfo()
		if s.IsError() {
			return 0, s
		}
		b, err = rec.MarshalBinary()

	case firmware.FileSystemVolumeLabelGUID:
		rec := firmware.VolumeLabelRecord{Label: representable(n.vol.Label())}
		b, err = rec.MarshalBinary()

	default:
		return 0, status.Unsupported
	}

	if err != nil {
		return 0, status.DeviceError
	}
	if len(buf) < len(b) {
		return len(b), status.BufferTooSmall
	}

	copy(buf, b)

	return len(b), status.Success
}

func (n *node) SetInfo(id guid.GUID, buf []byte) status.Status {
	if n.vol.readOnly {
		return status.WriteProtected
	}

	switch id {
	case firmware.FileInfoGUID:
		var rec firmware.FileInfoRecord
		if err := rec.UnmarshalBinary(buf); err != nil {
			return status.BadBufferSize
		}

		return n.applyFileInfo(&rec)

	case firmware.FileSystemInfoGUID:
		var rec firmware.FileSystemInfoRecord
		if err := rec.UnmarshalBinary(buf); err != nil {
			return status.BadBufferSize
		}
		n.vol.setLabel(rec.VolumeLabel)

		return status.Success

	case firmware.FileSystemVolumeLabelGUID:
		var rec firmware.VolumeLabelRecord
		if err := rec.UnmarshalBinary(buf); err != nil {
			return status.BadBufferSize
		}
		n.vol.setLabel(rec.Label)

		return status.Success

	default:
		return status.Unsupported
	}
}

func (n *node) applyFileInfo(rec *firmware.FileInfoRecord) status.Status {
	if rec.Attribute&^firmware.AttrValidMask != 0 {
		return status.InvalidParameter
	}
	if (rec.Attribute&firmware.AttrDirectory != 0) != n.dir {
		return status.AccessDenied
	}

	hostPath := n.vol.hostPath(n.rel)

	current, s := n.vol.fileInfo(n.rel, n.base())
	if s.IsError() {
		return s
	}

	if !n.dir && rec.FileSize != current.FileSize {
		if n.mode&firmware.OpenWrite == 0 {
			return status.AccessDenied
		}
		if err := n.file.Truncate(int64(rec.FileSize)); err != nil { //nolint:gosec
			return statusOf(err)
		}
	}

	if rec.ModificationTime.Year != 0 {
		accessed := rec.LastAccessTime.Time()
		if accessed.IsZero() {
			accessed = current.LastAccessTime.Time()
		}
		if err := os.Chtimes(hostPath, accessed, rec.ModificationTime.Time()); err != nil {
			return statusOf(err)
		}
	}

	if (rec.Attribute&firmware.AttrReadOnly != 0) != (current.Attribute&firmware.AttrReadOnly != 0) {
		fi, err := os.Lstat(hostPath)
		if err != nil {
			return statusOf(err)
		}

		perm := fi.Mode().Perm() | 0o200
		if rec.Attribute&firmware.AttrReadOnly != 0 {
			perm = fi.Mode().Perm() &^ 0o222
		}
		if err := os.Chmod(hostPath, perm); err != nil {
			return statusOf(err)
		}
	}

	if rec.FileName != "" && rec.FileName != n.base() {
		return n.rename(rec.FileName)
	}

	return status.Success
}

func (n *node) rename(name string) status.Status {
	if n.rel == "" {
		return status.AccessDenied
	}

	parent, _ := resolve(n.rel, "..")
	target, ok := resolve(parent, name)
	if !ok || target == "" {
		return status.AccessDenied
	}
	if s := n.vol.checkParents(target); s.IsError() {
		return s
	}

	var stat unix.Stat_t
	if err := n.vol.unixOps.Lstat(n.vol.hostPath(target), &stat); err == nil {
		return status.AccessDenied
	}

	if err := os.Rename(n.vol.hostPath(n.rel), n.vol.hostPath(target)); err != nil {
		return statusOf(err)
	}
	n.rel = target

	return status.Success
}

func (n *node) Flush() status.Status {
	if n.dir {
		return status.Success
	}
	if n.mode&firmware.OpenWrite == 0 {
		return status.AccessDenied
	}
	if err := n.file.Sync(); err != nil {
		return statusOf(err)
	}

	return status.Success
}

func validMode(mode uint64) bool {
	switch mode {
	case firmware.OpenRead,
		firmware.OpenRead | firmware.OpenWrite,
		firmware.OpenRead | firmware.OpenWrite | firmware.OpenCreate:
		return true
	default:
		return false
	}
}

// resolve applies a backslash separated name to the slash separated path
// base, relative to the volume root. A leading backslash starts from the
// root. Names climbing above the root do not resolve.
func resolve(base string, name string) (string, bool) {
	var segments []string
	if base != "" && !strings.HasPrefix(name, `\`) {
		segments = strings.Split(base, "/")
	}

	for _, seg := range strings.Split(name, `\`) {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(segments) == 0 {
				return "", false
			}
			segments = segments[:len(segments)-1]
		default:
			if strings.ContainsAny(seg, "/\x00") {
				return "", false
			}
			segments = append(segments, seg)
		}
	}

	return strings.Join(segments, "/"), true
}

// representable replaces what a UCS-2 record cannot carry.
func representable(s string) string {
	return strings.Map(func(r rune) rune {
		if r > ucs2.MaxChar16 {
			return '�'
		}

		return r
	}, s)
}

func statusOf(err error) status.Status {
	switch {
	case err == nil:
		return status.Success
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENOTDIR):
		return status.NotFound
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM), errors.Is(err, unix.EEXIST):
		return status.AccessDenied
	case errors.Is(err, unix.ENOSPC), errors.Is(err, unix.EDQUOT):
		return status.VolumeFull
	case errors.Is(err, unix.EROFS):
		return status.WriteProtected
	case errors.Is(err, unix.ENOTEMPTY):
		return status.AccessDenied
	default:
		return status.DeviceError
	}
}
