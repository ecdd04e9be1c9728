package firmware

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/desertwitch/goefi/internal/ucs2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileInfoRecord_Layout(t *testing.T) {
	t.Parallel()

	modified := time.Date(2024, time.March, 9, 13, 45, 12, 500, time.UTC)
	rec := &FileInfoRecord{
		FileSize:         1234,
		PhysicalSize:     4096,
		ModificationTime: TimeOf(modified),
		Attribute:        AttrArchive,
		FileName:         "BOOTX64.EFI",
	}

	b, err := rec.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, FileInfoHeaderSize+2*(len("BOOTX64.EFI")+1))
	assert.Equal(t, uint64(len(b)), binary.LittleEndian.Uint64(b))
	assert.Equal(t, uint16(2024), binary.LittleEndian.Uint16(b[56:]))

	// Trailing garbage past the declared size is ignored.
	b = append(b, 0xde, 0xad)

	var got FileInfoRecord
	require.NoError(t, got.UnmarshalBinary(b))
	assert.Equal(t, *rec, got)
	assert.True(t, modified.Equal(got.ModificationTime.Time()))
	assert.True(t, got.CreateTime.Time().IsZero())
}

func TestFileInfoRecord_Malformed(t *testing.T) {
	t.Parallel()

	var rec FileInfoRecord
	require.ErrorIs(t, rec.UnmarshalBinary(make([]byte, 10)), ErrMalformedRecord)

	b := make([]byte, FileInfoHeaderSize+2)
	binary.LittleEndian.PutUint64(b, uint64(len(b)+10))
	require.ErrorIs(t, rec.UnmarshalBinary(b), ErrMalformedRecord)
}

func TestFileInfoRecord_UnrepresentableName(t *testing.T) {
	t.Parallel()

	rec := &FileInfoRecord{FileName: "rocket-🚀"}
	_, err := rec.MarshalBinary()
	require.ErrorIs(t, err, ucs2.ErrConversion)
}

func TestFileSystemInfoRecord_Layout(t *testing.T) {
	t.Parallel()

	rec := &FileSystemInfoRecord{
		ReadOnly:    true,
		VolumeSize:  1 << 30,
		FreeSpace:   1 << 20,
		BlockSize:   512,
		VolumeLabel: "ESP",
	}

	b, err := rec.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, FileSystemInfoHeaderSize+8)
	assert.Equal(t, byte(1), b[8])

	var got FileSystemInfoRecord
	require.NoError(t, got.UnmarshalBinary(b))
	assert.Equal(t, *rec, got)
}

func TestVolumeLabelRecord(t *testing.T) {
	t.Parallel()

	b, err := (&VolumeLabelRecord{Label: "DATA"}).MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, b, 10)

	var got VolumeLabelRecord
	require.NoError(t, got.UnmarshalBinary(b))
	assert.Equal(t, "DATA", got.Label)

	require.ErrorIs(t, got.UnmarshalBinary([]byte{1, 2, 3}), ErrMalformedRecord)
}

func TestTime_Timezones(t *testing.T) {
	t.Parallel()

	local := Time{Year: 2020, Month: 1, Day: 2, TimeZone: UnspecifiedTimezone}
	assert.Equal(t, time.Local, local.Time().Location())

	// Localtime = UTC - TimeZone: -60 is one hour east of UTC.
	east := Time{Year: 2020, Month: 1, Day: 2, Hour: 10, TimeZone: -60}
	_, offset := east.Time().Zone()
	assert.Equal(t, 3600, offset)
	assert.Equal(t, 9, east.Time().UTC().Hour())
}
