package firmware

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/desertwitch/goefi/internal/ucs2"
)

// InfoAlignment is the alignment the firmware requires for the start of an
// information record buffer.
const InfoAlignment = 8

// Fixed header sizes of the variable-length information records.
const (
	FileInfoHeaderSize       = 80
	FileSystemInfoHeaderSize = 36
	timeSize                 = 16
)

// UnspecifiedTimezone marks a [Time] as local time.
const UnspecifiedTimezone int16 = 0x07ff

// Time is the firmware calendar time record.
type Time struct {
	Year       uint16
	Month      uint8
	Day        uint8
	Hour       uint8
	Minute     uint8
	Second     uint8
	Nanosecond uint32
	TimeZone   int16 // minutes from UTC or [UnspecifiedTimezone]
	Daylight   uint8
}

// TimeOf converts t into a firmware time in UTC.
func TimeOf(t time.Time) Time {
	if t.IsZero() {
		return Time{}
	}
	t = t.UTC()

	return Time{
		Year:       uint16(t.Year()),
		Month:      uint8(t.Month()),
		Day:        uint8(t.Day()),
		Hour:       uint8(t.Hour()),
		Minute:     uint8(t.Minute()),
		Second:     uint8(t.Second()),
		Nanosecond: uint32(t.Nanosecond()),
		TimeZone:   0,
	}
}

// Time converts the record into a [time.Time]. An unset record (year zero)
// yields the zero time.
func (t Time) Time() time.Time {
	if t.Year == 0 {
		return time.Time{}
	}

	loc := time.Local
	if t.TimeZone != UnspecifiedTimezone {
		loc = time.FixedZone("", -int(t.TimeZone)*60)
		if t.TimeZone == 0 {
			loc = time.UTC
		}
	}

	return time.Date(int(t.Year), time.Month(t.Month), int(t.Day),
		int(t.Hour), int(t.Minute), int(t.Second), int(t.Nanosecond), loc)
}

func appendTime(b []byte, t Time) []byte {
	b = binary.LittleEndian.AppendUint16(b, t.Year)
	b = append(b, t.Month, t.Day, t.Hour, t.Minute, t.Second, 0)
	b = binary.LittleEndian.AppendUint32(b, t.Nanosecond)
	b = binary.LittleEndian.AppendUint16(b, uint16(t.TimeZone)) //nolint:gosec
	b = append(b, t.Daylight, 0)

	return b
}

func readTime(b []byte) Time {
	return Time{
		Year:       binary.LittleEndian.Uint16(b[0:]),
		Month:      b[2],
		Day:        b[3],
		Hour:       b[4],
		Minute:     b[5],
		Second:     b[6],
		Nanosecond: binary.LittleEndian.Uint32(b[8:]),
		TimeZone:   int16(binary.LittleEndian.Uint16(b[12:])), //nolint:gosec
		Daylight:   b[14],
	}
}

// FileInfoRecord is the raw layout of the file information record.
type FileInfoRecord struct {
	FileSize         uint64
	PhysicalSize     uint64
	CreateTime       Time
	LastAccessTime   Time
	ModificationTime Time
	Attribute        uint64
	FileName         string
}

// MarshalBinary encodes the record including its trailing, zero-terminated
// name.
func (r *FileInfoRecord) MarshalBinary() ([]byte, error) {
	name, err := ucs2.Encode(r.FileName)
	if err != nil {
		return nil, fmt.Errorf("(layout-fileinfo) %w", err)
	}

	size := FileInfoHeaderSize + 2*len(name)
	b := make([]byte, 0, size)
	b = binary.LittleEndian.AppendUint64(b, uint64(size))
	b = binary.LittleEndian.AppendUint64(b, r.FileSize)
	b = binary.LittleEndian.AppendUint64(b, r.PhysicalSize)
	b = appendTime(b, r.CreateTime)
	b = appendTime(b, r.LastAccessTime)
	b = appendTime(b, r.ModificationTime)
	b = binary.LittleEndian.AppendUint64(b, r.Attribute)

	return appendUnits(b, name), nil
}

// UnmarshalBinary decodes a record, validating its self-declared size.
func (r *FileInfoRecord) UnmarshalBinary(b []byte) error {
	body, err := sizedRecord(b, FileInfoHeaderSize)
	if err != nil {
		return fmt.Errorf("(layout-fileinfo) %w", err)
	}

	r.FileSize = binary.LittleEndian.Uint64(body[8:])
	r.PhysicalSize = binary.LittleEndian.Uint64(body[16:])
	r.CreateTime = readTime(body[24:])
	r.LastAccessTime = readTime(body[24+timeSize:])
	r.ModificationTime = readTime(body[24+2*timeSize:])
	r.Attribute = binary.LittleEndian.Uint64(body[72:])
	r.FileName = readUnits(body[FileInfoHeaderSize:])

	return nil
}

// FileSystemInfoRecord is the raw layout of the volume information record.
type FileSystemInfoRecord struct {
	ReadOnly    bool
	VolumeSize  uint64
	FreeSpace   uint64
	BlockSize   uint32
	VolumeLabel string
}

// MarshalBinary encodes the record including its trailing label.
func (r *FileSystemInfoRecord) MarshalBinary() ([]byte, error) {
	label, err := ucs2.Encode(r.VolumeLabel)
	if err != nil {
		return nil, fmt.Errorf("(layout-fsinfo) %w", err)
	}

	size := FileSystemInfoHeaderSize + 2*len(label)
	b := make([]byte, 0, size)
	b = binary.LittleEndian.AppendUint64(b, uint64(size))

	var readOnly byte
	if r.ReadOnly {
		readOnly = 1
	}
	b = append(b, readOnly, 0, 0, 0, 0, 0, 0, 0)
	b = binary.LittleEndian.AppendUint64(b, r.VolumeSize)
	b = binary.LittleEndian.AppendUint64(b, r.FreeSpace)
	b = binary.LittleEndian.AppendUint32(b, r.BlockSize)

	return appendUnits(b, label), nil
}

// UnmarshalBinary decodes a record, validating its self-declared size.
func (r *FileSystemInfoRecord) UnmarshalBinary(b []byte) error {
	body, err := sizedRecord(b, FileSystemInfoHeaderSize)
	if err != nil {
		return fmt.Errorf("(layout-fsinfo) %w", err)
	}

	r.ReadOnly = body[8] != 0
	r.VolumeSize = binary.LittleEndian.Uint64(body[16:])
	r.FreeSpace = binary.LittleEndian.Uint64(body[24:])
	r.BlockSize = binary.LittleEndian.Uint32(body[32:])
	r.VolumeLabel = readUnits(body[FileSystemInfoHeaderSize:])

	return nil
}

// VolumeLabelRecord is the raw layout of the volume label record: a bare
// zero-terminated string.
type VolumeLabelRecord struct {
	Label string
}

// MarshalBinary encodes the label.
func (r *VolumeLabelRecord) MarshalBinary() ([]byte, error) {
	label, err := ucs2.Encode(r.Label)
	if err != nil {
		return nil, fmt.Errorf("(layout-label) %w", err)
	}

	return appendUnits(make([]byte, 0, 2*len(label)), label), nil
}

// UnmarshalBinary decodes the label up to its terminator.
func (r *VolumeLabelRecord) UnmarshalBinary(b []byte) error {
	if len(b)%2 != 0 {
		return fmt.Errorf("(layout-label) %w: odd length %d", ErrMalformedRecord, len(b))
	}
	r.Label = readUnits(b)

	return nil
}

// sizedRecord checks that b holds at least a header and the size the record
// declares in its first field, and returns exactly that many bytes.
func sizedRecord(b []byte, header int) ([]byte, error) {
	if len(b) < header {
		return nil, fmt.Errorf("%w: %d bytes, header needs %d", ErrMalformedRecord, len(b), header)
	}

	size := binary.LittleEndian.Uint64(b)
	if size < uint64(header) || size > uint64(len(b)) {
		return nil, fmt.Errorf("%w: declared size %d, have %d", ErrMalformedRecord, size, len(b))
	}

	return b[:size], nil
}

func appendUnits(b []byte, units []uint16) []byte {
	for _, u := range units {
		b = binary.LittleEndian.AppendUint16(b, u)
	}

	return b
}

func readUnits(b []byte) string {
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[2*i:])
	}

	return ucs2.Decode(units)
}
