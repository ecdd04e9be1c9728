package firmware

import "github.com/desertwitch/goefi/internal/guid"

// Capability identifiers.
//
//nolint:gochecknoglobals
var (
	TextOutputGUID       = guid.MustParse("387477c2-69c7-11d2-8e39-00a0c969723b")
	SimpleFileSystemGUID = guid.MustParse("964e5b22-6459-11d2-8e39-00a0c969723b")
	DebugSupportGUID     = guid.MustParse("2755590c-6f3c-42fa-9ea4-a3ba543cda25")
	SimplePointerGUID    = guid.MustParse("31878c87-0b75-11d5-9a4f-0090273fc14d")
	SerialIOGUID         = guid.MustParse("bb25cf6f-f1d4-11d2-9a0c-0090273fc1fd")
)

// Information kind identifiers for [FileProtocol.GetInfo] and
// [FileProtocol.SetInfo].
//
//nolint:gochecknoglobals
var (
	FileInfoGUID              = guid.MustParse("09576e92-6d3f-11d2-8e39-00a0c969723b")
	FileSystemInfoGUID        = guid.MustParse("09576e93-6d3f-11d2-8e39-00a0c969723b")
	FileSystemVolumeLabelGUID = guid.MustParse("db47d7d3-fe81-11d3-9a35-0090273fc14d")
)

// Open mode bits for [FileProtocol.Open].
const (
	OpenRead   uint64 = 0x1
	OpenWrite  uint64 = 0x2
	OpenCreate uint64 = 0x8000000000000000
)

// File attribute bits.
const (
	AttrReadOnly  uint64 = 0x01
	AttrHidden    uint64 = 0x02
	AttrSystem    uint64 = 0x04
	AttrReserved  uint64 = 0x08
	AttrDirectory uint64 = 0x10
	AttrArchive   uint64 = 0x20
	AttrValidMask uint64 = 0x37
)
