package media_test

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unsafe"

	"github.com/desertwitch/goefi/internal/capability"
	"github.com/desertwitch/goefi/internal/firmware"
	"github.com/desertwitch/goefi/internal/hostfw"
	"github.com/desertwitch/goefi/internal/media"
	"github.com/desertwitch/goefi/internal/status"
	"github.com/desertwitch/goefi/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	dir  string
	st   *table.System
	root *media.Directory
}

func setup(t *testing.T, opts ...hostfw.VolumeOption) *fixture {
	t.Helper()

	dir := t.TempDir()

	vol, err := hostfw.NewVolume(dir, append([]hostfw.VolumeOption{hostfw.WithLabel("TEST")}, opts...)...)
	require.NoError(t, err)

	st, err := table.New(hostfw.New(hostfw.WithConsole(io.Discard), hostfw.WithVolume(vol)).Table())
	require.NoError(t, err)

	inst, found, err := capability.Locate(st, capability.SimpleFileSystem)
	require.NoError(t, err)
	require.True(t, found)

	root, err := media.OpenVolume(inst)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	return &fixture{dir: dir, st: st, root: root}
}

func (fx *fixture) write(t *testing.T, name string, content string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(fx.dir, name), []byte(content), 0o600))
}

// aligned returns a buffer of n bytes whose first byte satisfies the
// information record alignment.
func aligned(n int) []byte {
	buf := make([]byte, n+firmware.InfoAlignment-1)
	window, _ := media.Realign(buf, firmware.InfoAlignment)

	return window[:n]
}

func readNames(t *testing.T, d *media.Directory) []string {
	t.Helper()

	buf := aligned(512)

	var names []string
	for {
		info, err := d.ReadEntry(buf)
		require.NoError(t, err)
		if info == nil {
			return names
		}
		names = append(names, info.FileName)
	}
}

// Expectation: Enumeration should end with a nil entry, keep returning it,
// and restart with the same sequence after a reset.
func TestDirectory_ReadEntry_Success(t *testing.T) {
	t.Parallel()

	fx := setup(t)
	fx.write(t, "b.txt", "bb")
	fx.write(t, "a.txt", "a")
	require.NoError(t, os.Mkdir(filepath.Join(fx.dir, "c"), 0o755))

	first := readNames(t, fx.root)
	assert.Equal(t, []string{"a.txt", "b.txt", "c"}, first)

	info, err := fx.root.ReadEntry(aligned(512))
	require.NoError(t, err)
	assert.Nil(t, info)

	require.NoError(t, fx.root.Reset())
	assert.Equal(t, first, readNames(t, fx.root))
}

// Expectation: An empty subdirectory should yield only its pseudo-entries.
func TestDirectory_ReadEntry_Empty(t *testing.T) {
	t.Parallel()

	fx := setup(t)

	sub, err := fx.root.Open("empty", media.ModeCreateReadWrite, media.AttrDirectory)
	require.NoError(t, err)

	d, err := media.AsDirectory(sub, aligned(256))
	require.NoError(t, err)
	defer d.Close()

	assert.Equal(t, []string{".", ".."}, readNames(t, d))
}

// Expectation: A buffer too small for the next entry should learn the exact
// size, and an aligned buffer of that size should receive the same entry.
func TestDirectory_ReadEntry_BufferTooSmall(t *testing.T) {
	t.Parallel()

	fx := setup(t)
	fx.write(t, "entry.bin", "x")

	_, err := fx.root.ReadEntry(aligned(16))
	require.ErrorIs(t, err, status.ErrBufferTooSmall)

	required, ok := status.RequiredSize(err)
	require.True(t, ok)
	assert.Equal(t, firmware.FileInfoHeaderSize+2*len("entry.bin\x00"), required)

	info, err := fx.root.ReadEntry(aligned(required))
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "entry.bin", info.FileName)
	assert.Equal(t, uint64(1), info.FileSize)
	assert.True(t, info.IsRegular())
}

// Expectation: Entries should grow its buffer for names longer than the
// initial allocation.
func TestDirectory_Entries_Success(t *testing.T) {
	t.Parallel()

	fx := setup(t)
	long := strings.Repeat("n", 200)
	fx.write(t, long, "")
	fx.write(t, "short", "")

	var names []string
	for info, err := range fx.root.Entries() {
		require.NoError(t, err)
		names = append(names, info.FileName)
	}

	assert.Equal(t, []string{long, "short"}, names)
}

// Expectation: A misaligned buffer should lose exactly the bytes needed to
// reach alignment, and queries through it should still succeed.
func TestRealign_Success(t *testing.T) {
	t.Parallel()

	fx := setup(t)
	base := aligned(256 + firmware.InfoAlignment)

	for k := range firmware.InfoAlignment {
		buf := base[k:]

		window, skipped := media.Realign(buf, firmware.InfoAlignment)
		assert.Equal(t, (firmware.InfoAlignment-k)%firmware.InfoAlignment, skipped)
		assert.Len(t, window, len(buf)-skipped)
		assert.Zero(t, uintptr(unsafe.Pointer(unsafe.SliceData(window)))%firmware.InfoAlignment)

		info, err := media.GetInfo[media.FileInfo](fx.root, buf)
		require.NoError(t, err)
		assert.True(t, info.IsDirectory())
	}
}

// Expectation: A buffer shorter than its misalignment should yield an empty
// window within the buffer.
func TestRealign_Short(t *testing.T) {
	t.Parallel()

	base := aligned(16)

	window, skipped := media.Realign(base[1:4], firmware.InfoAlignment)
	assert.Empty(t, window)
	assert.Equal(t, 3, skipped)

	window, skipped = media.Realign(base[1:4], 1)
	assert.Len(t, window, 3)
	assert.Zero(t, skipped)
}

// Expectation: Information kinds should round-trip through the firmware.
func TestInfo_GetSet_Success(t *testing.T) {
	t.Parallel()

	fx := setup(t)

	label, err := media.ReadInfo[media.VolumeLabel](fx.root)
	require.NoError(t, err)
	assert.Equal(t, "TEST", label.Label)

	require.NoError(t, media.SetInfo(fx.root, &media.VolumeLabel{Label: "RENAMED"}))

	fsi, err := media.ReadInfo[media.FileSystemInfo](fx.root)
	require.NoError(t, err)
	assert.Equal(t, "RENAMED", fsi.VolumeLabel)
	assert.False(t, fsi.ReadOnly)

	f, err := fx.root.Open("old.txt", media.ModeCreateReadWrite, media.AttrNone)
	require.NoError(t, err)
	defer f.Close()

	info, err := media.ReadInfo[media.FileInfo](f)
	require.NoError(t, err)

	stamp := time.Date(2020, 5, 17, 8, 30, 0, 0, time.UTC)
	info.FileName = "new.txt"
	info.FileSize = 3
	info.ModificationTime = stamp
	require.NoError(t, media.SetInfo(f, info))

	info, err = media.ReadInfo[media.FileInfo](f)
	require.NoError(t, err)
	assert.Equal(t, "new.txt", info.FileName)
	assert.Equal(t, uint64(3), info.FileSize)
	assert.True(t, stamp.Equal(info.ModificationTime))

	_, err = os.Stat(filepath.Join(fx.dir, "new.txt"))
	require.NoError(t, err)
}

// Expectation: A short buffer should fail a query with the size needed.
func TestGetInfo_BufferTooSmall(t *testing.T) {
	t.Parallel()

	fx := setup(t)

	_, err := media.GetInfo[media.FileSystemInfo](fx.root, aligned(8))
	require.ErrorIs(t, err, status.ErrBufferTooSmall)

	required, ok := status.RequiredSize(err)
	require.True(t, ok)
	assert.Equal(t, firmware.FileSystemInfoHeaderSize+2*len("TEST\x00"), required)
}

// Expectation: Nodes should stop working once the table left its boot phase
// and closing them should not reach the firmware any more.
func TestFile_ExpiredTable_Fail(t *testing.T) {
	t.Parallel()

	fx := setup(t)
	fx.write(t, "f", "data")

	f, err := fx.root.Open("f", media.ModeRead, media.AttrNone)
	require.NoError(t, err)

	require.NoError(t, fx.st.ExitBootServices())

	_, err = f.Read(make([]byte, 4))
	require.ErrorIs(t, err, capability.ErrTableExpired)

	_, err = fx.root.ReadEntry(aligned(256))
	require.ErrorIs(t, err, capability.ErrTableExpired)

	require.NoError(t, f.Close())
	assert.True(t, f.Closed())
}

// Expectation: Deleting should remove the node and close it.
func TestFile_Delete_Success(t *testing.T) {
	t.Parallel()

	fx := setup(t)
	fx.write(t, "gone", "")

	f, err := fx.root.Open("gone", media.ModeReadWrite, media.AttrNone)
	require.NoError(t, err)

	require.NoError(t, f.Delete())
	assert.True(t, f.Closed())

	_, err = os.Stat(filepath.Join(fx.dir, "gone"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = f.Read(make([]byte, 1))
	require.ErrorIs(t, err, media.ErrClosed)
}

// Expectation: A refused deletion should still close the node.
func TestFile_Delete_Fail(t *testing.T) {
	t.Parallel()

	fx := setup(t, hostfw.WithReadOnly())
	fx.write(t, "kept", "")

	f, err := fx.root.Open("kept", media.ModeRead, media.AttrNone)
	require.NoError(t, err)

	err = f.Delete()
	require.ErrorIs(t, err, media.ErrDeleteFailed)
	assert.True(t, status.IsWarning(err))
	assert.True(t, f.Closed())

	_, err = os.Stat(filepath.Join(fx.dir, "kept"))
	require.NoError(t, err)
}

// Expectation: Opening should report firmware failures as typed errors.
func TestFile_Open_Fail(t *testing.T) {
	t.Parallel()

	fx := setup(t)

	_, err := fx.root.Open("missing", media.ModeRead, media.AttrNone)
	require.ErrorIs(t, err, status.ErrNotFound)

	_, err = fx.root.Open("bad\U0001F600", media.ModeRead, media.AttrNone)
	require.Error(t, err)

	ro := setup(t, hostfw.WithReadOnly())
	_, err = ro.root.Open("new", media.ModeCreateReadWrite, media.AttrNone)
	require.ErrorIs(t, err, status.ErrWriteProtected)
}

// Expectation: Views should refuse nodes of the wrong kind.
func TestViews_WrongKind_Fail(t *testing.T) {
	t.Parallel()

	fx := setup(t)
	fx.write(t, "file", "")

	f, err := fx.root.Open("file", media.ModeRead, media.AttrNone)
	require.NoError(t, err)
	defer f.Close()

	_, err = media.AsDirectory(f, aligned(256))
	require.ErrorIs(t, err, media.ErrNotDirectory)

	_, err = fx.root.OpenDirectory("file", media.ModeRead, media.AttrNone)
	require.ErrorIs(t, err, media.ErrNotDirectory)

	_, err = media.AsRegularFile(fx.root.File())
	require.ErrorIs(t, err, media.ErrIsDirectory)
}

// Expectation: A regular file should behave as an io.ReadWriteSeeker.
func TestRegularFile_IO_Success(t *testing.T) {
	t.Parallel()

	fx := setup(t)

	f, err := fx.root.Open("io.txt", media.ModeCreateReadWrite, media.AttrNone)
	require.NoError(t, err)

	rf, err := media.AsRegularFile(f)
	require.NoError(t, err)
	defer rf.Close()

	_, err = io.WriteString(rf, "hello world")
	require.NoError(t, err)

	pos, err := rf.Seek(-5, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(6), pos)

	rest, err := io.ReadAll(rf)
	require.NoError(t, err)
	assert.Equal(t, "world", string(rest))

	pos, err = rf.Seek(-11, io.SeekCurrent)
	require.NoError(t, err)
	assert.Zero(t, pos)

	all, err := io.ReadAll(rf)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(all))

	_, err = rf.Seek(-1, io.SeekStart)
	require.ErrorIs(t, err, media.ErrNegativePosition)

	_, err = rf.Seek(0, 42)
	require.ErrorIs(t, err, media.ErrInvalidWhence)

	n, err := rf.Read(nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

type overreportingVolume struct{}

func (overreportingVolume) OpenVolume() (firmware.FileProtocol, status.Status) {
	return overreportingDir{}, status.Success
}

// overreportingDir claims to have read more than the buffer holds.
type overreportingDir struct {
	firmware.FileProtocol
}

func (overreportingDir) Read(buf []byte) (int, status.Status) {
	return len(buf) + 8, status.Success //nolint:mnd
}

func (overreportingDir) Close() status.Status {
	return status.Success
}

// Expectation: A firmware reporting more bytes than the buffer holds should
// produce a malformed record error instead of a panic.
func TestDirectory_ReadEntry_Overreported_Fail(t *testing.T) {
	t.Parallel()

	fw := hostfw.New(hostfw.WithConsole(io.Discard))
	fw.InstallProtocol(0, firmware.SimpleFileSystemGUID, overreportingVolume{})

	st, err := table.New(fw.Table())
	require.NoError(t, err)

	inst, found, err := capability.Locate(st, capability.SimpleFileSystem)
	require.NoError(t, err)
	require.True(t, found)

	root, err := media.OpenVolume(inst)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	var info *media.FileInfo
	assert.NotPanics(t, func() {
		info, err = root.ReadEntry(aligned(128))
	})
	require.ErrorIs(t, err, firmware.ErrMalformedRecord)
	assert.Nil(t, info)
}
