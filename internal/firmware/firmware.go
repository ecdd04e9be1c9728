// Package firmware declares the raw call boundary: the entry points of the
// firmware tables, as consumed by the rest of the module. Every method mirrors
// one firmware function and returns its numeric [status.Status] unchanged;
// interpretation of those codes happens in the typed layers above. Read-style
// calls report their in/out size as a plain int, which on
// [status.BufferTooSmall] is the size the call would need.
package firmware

import (
	"time"

	"github.com/desertwitch/goefi/internal/guid"
	"github.com/desertwitch/goefi/internal/status"
)

// Handle is an opaque key for a firmware-managed entity. It is only ever
// compared and passed back to the firmware.
type Handle uintptr

// ResetType selects the kind of platform reset.
type ResetType uint32

const (
	ResetCold ResetType = iota
	ResetWarm
	ResetShutdown
	ResetPlatformSpecific
)

func (r ResetType) String() string {
	switch r {
	case ResetCold:
		return "cold"
	case ResetWarm:
		return "warm"
	case ResetShutdown:
		return "shutdown"
	case ResetPlatformSpecific:
		return "platform-specific"
	default:
		return "unknown"
	}
}

// BootServices are the entry points valid until boot services are exited.
type BootServices interface {
	// LocateProtocol returns the first installed instance of a capability.
	LocateProtocol(id guid.GUID) (any, status.Status)

	// HandleProtocol returns the instance of a capability on one handle.
	HandleProtocol(h Handle, id guid.GUID) (any, status.Status)

	// LocateHandleBuffer returns every handle exposing a capability.
	LocateHandleBuffer(id guid.GUID) ([]Handle, status.Status)

	// Stall busy-waits for at least the given number of microseconds.
	Stall(microseconds uint64) status.Status
}

// RuntimeServices are the entry points that remain valid for the lifetime
// of the platform.
type RuntimeServices interface {
	// ResetSystem resets the platform. On real firmware it never returns;
	// hosted implementations may return after recording the request.
	ResetSystem(kind ResetType, reason status.Status, data []byte)

	// GetTime returns the current time of the platform clock.
	GetTime() (time.Time, status.Status)
}

// TextOutput is the console output capability.
type TextOutput interface {
	// OutputString displays a zero-terminated UCS-2 string.
	OutputString(s []uint16) status.Status

	// Reset clears the output device.
	Reset(extendedVerification bool) status.Status
}

// SimpleFileSystem is the volume capability of a block device.
type SimpleFileSystem interface {
	// OpenVolume opens the root directory of the volume.
	OpenVolume() (FileProtocol, status.Status)
}

// FileProtocol is the file node capability. Directories and regular files
// share it; [FileProtocol.Read] yields one directory entry per call for
// directory nodes.
type FileProtocol interface {
	Open(name []uint16, mode uint64, attributes uint64) (FileProtocol, status.Status)
	Close() status.Status
	Delete() status.Status
	Read(buf []byte) (int, status.Status)
	Write(buf []byte) (int, status.Status)
	GetPosition() (uint64, status.Status)
	SetPosition(position uint64) status.Status
	GetInfo(infoType guid.GUID, buf []byte) (int, status.Status)
	SetInfo(infoType guid.GUID, buf []byte) status.Status
	Flush() status.Status
}

// DebugSupport is the processor debug capability. It is only looked up;
// the layer does not drive it.
type DebugSupport interface {
	Architecture() uint32
}

// SystemTable is the top-level table handed to an application at entry.
type SystemTable struct {
	FirmwareVendor   string
	FirmwareRevision uint32
	ConsoleOut       TextOutput
	StdErr           TextOutput
	Boot             BootServices
	Runtime          RuntimeServices
}
