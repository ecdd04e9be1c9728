// Package status classifies the numeric outcomes returned across the firmware
// call boundary and converts them into Go errors. A [Status] is partitioned by
// its high bit: zero is success, a value with the high bit set is an error and
// any other value is a warning. Warnings are returned to callers as
// [*Warning] alongside the produced value, errors as [*Error], which retain
// any auxiliary payload the firmware contract defines for them.
package status

import (
	"fmt"
)

// Status is a raw firmware completion code.
type Status uint64

const errorBit Status = 1 << 63

// Success is the only successful completion code.
const Success Status = 0

// Warning completion codes.
const (
	WarnUnknownGlyph   Status = 1
	WarnDeleteFailure  Status = 2
	WarnWriteFailure   Status = 3
	WarnBufferTooSmall Status = 4
	WarnStaleData      Status = 5
	WarnFileSystem     Status = 6
	WarnResetRequired  Status = 7
)

// Error completion codes.
const (
	LoadError           = errorBit | 1
	InvalidParameter    = errorBit | 2
	Unsupported         = errorBit | 3
	BadBufferSize       = errorBit | 4
	BufferTooSmall      = errorBit | 5
	NotReady            = errorBit | 6
	DeviceError         = errorBit | 7
	WriteProtected      = errorBit | 8
	OutOfResources      = errorBit | 9
	VolumeCorrupted     = errorBit | 10
	VolumeFull          = errorBit | 11
	NoMedia             = errorBit | 12
	MediaChanged        = errorBit | 13
	NotFound            = errorBit | 14
	AccessDenied        = errorBit | 15
	NoResponse          = errorBit | 16
	NoMapping           = errorBit | 17
	Timeout             = errorBit | 18
	NotStarted          = errorBit | 19
	AlreadyStarted      = errorBit | 20
	Aborted             = errorBit | 21
	ICMPError           = errorBit | 22
	TFTPError           = errorBit | 23
	ProtocolError       = errorBit | 24
	IncompatibleVersion = errorBit | 25
	SecurityViolation   = errorBit | 26
	CRCError            = errorBit | 27
	EndOfMedia          = errorBit | 28
	EndOfFile           = errorBit | 31
	InvalidLanguage     = errorBit | 32
	CompromisedData     = errorBit | 33
)

// Class is the partition a [Status] falls into.
type Class int

const (
	ClassSuccess Class = iota
	ClassWarning
	ClassError
)

func (c Class) String() string {
	switch c {
	case ClassSuccess:
		return "success"
	case ClassWarning:
		return "warning"
	case ClassError:
		return "error"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// Classify partitions a raw code into success, warning or error.
func Classify(s Status) Class {
	switch {
	case s == Success:
		return ClassSuccess
	case s&errorBit != 0:
		return ClassError
	default:
		return ClassWarning
	}
}

// IsSuccess reports whether s is [Success].
func (s Status) IsSuccess() bool {
	return Classify(s) == ClassSuccess
}

// IsWarning reports whether s is a warning code.
func (s Status) IsWarning() bool {
	return Classify(s) == ClassWarning
}

// IsError reports whether s is an error code.
func (s Status) IsError() bool {
	return Classify(s) == ClassError
}

// Code returns the status without its class bit.
func (s Status) Code() uint64 {
	return uint64(s &^ errorBit)
}

func (s Status) String() string {
	if d, ok := descriptions[s]; ok {
		return d.name
	}

	return fmt.Sprintf("%s(%#x)", Classify(s), s.Code())
}

// description returns the lower-case, human-readable meaning of s.
func (s Status) description() string {
	if d, ok := descriptions[s]; ok {
		return d.text
	}

	return fmt.Sprintf("unknown %s %#x", Classify(s), s.Code())
}

// Err converts s into an error value: nil for [Success], [*Warning] for
// warnings and [*Error] for errors.
func (s Status) Err() error {
	switch Classify(s) {
	case ClassSuccess:
		return nil
	case ClassWarning:
		return &Warning{Status: s}
	default:
		return &Error{Status: s}
	}
}

type description struct {
	name string
	text string
}

//nolint:gochecknoglobals
var descriptions = map[Status]description{
	Success:             {"SUCCESS", "success"},
	WarnUnknownGlyph:    {"WARN_UNKNOWN_GLYPH", "unknown glyph"},
	WarnDeleteFailure:   {"WARN_DELETE_FAILURE", "delete failure"},
	WarnWriteFailure:    {"WARN_WRITE_FAILURE", "write failure"},
	WarnBufferTooSmall:  {"WARN_BUFFER_TOO_SMALL", "buffer too small, data truncated"},
	WarnStaleData:       {"WARN_STALE_DATA", "stale data"},
	WarnFileSystem:      {"WARN_FILE_SYSTEM", "file system warning"},
	WarnResetRequired:   {"WARN_RESET_REQUIRED", "reset required"},
	LoadError:           {"LOAD_ERROR", "image failed to load"},
	InvalidParameter:    {"INVALID_PARAMETER", "invalid parameter"},
	Unsupported:         {"UNSUPPORTED", "operation is not supported"},
	BadBufferSize:       {"BAD_BUFFER_SIZE", "bad buffer size"},
	BufferTooSmall:      {"BUFFER_TOO_SMALL", "buffer too small"},
	NotReady:            {"NOT_READY", "not ready"},
	DeviceError:         {"DEVICE_ERROR", "device error"},
	WriteProtected:      {"WRITE_PROTECTED", "device is write protected"},
	OutOfResources:      {"OUT_OF_RESOURCES", "out of resources"},
	VolumeCorrupted:     {"VOLUME_CORRUPTED", "volume corrupted"},
	VolumeFull:          {"VOLUME_FULL", "volume full"},
	NoMedia:             {"NO_MEDIA", "no media"},
	MediaChanged:        {"MEDIA_CHANGED", "media changed"},
	NotFound:            {"NOT_FOUND", "not found"},
	AccessDenied:        {"ACCESS_DENIED", "access denied"},
	NoResponse:          {"NO_RESPONSE", "no response"},
	NoMapping:           {"NO_MAPPING", "no mapping"},
	Timeout:             {"TIMEOUT", "timeout"},
	NotStarted:          {"NOT_STARTED", "not started"},
	AlreadyStarted:      {"ALREADY_STARTED", "already started"},
	Aborted:             {"ABORTED", "aborted"},
	ICMPError:           {"ICMP_ERROR", "icmp error"},
	TFTPError:           {"TFTP_ERROR", "tftp error"},
	ProtocolError:       {"PROTOCOL_ERROR", "protocol error"},
	IncompatibleVersion: {"INCOMPATIBLE_VERSION", "incompatible version"},
	SecurityViolation:   {"SECURITY_VIOLATION", "security violation"},
	CRCError:            {"CRC_ERROR", "crc error"},
	EndOfMedia:          {"END_OF_MEDIA", "end of media"},
	EndOfFile:           {"END_OF_FILE", "end of file"},
	InvalidLanguage:     {"INVALID_LANGUAGE", "invalid language"},
	CompromisedData:     {"COMPROMISED_DATA", "compromised data"},
}
