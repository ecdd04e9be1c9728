// Package table wraps the firmware's top-level system table with the phase it
// is operating in. Boot services, and every capability instance obtained
// through them, are only valid during [PhaseBoot]; once boot services are
// exited the table moves to [PhaseRuntime] for good and only runtime services
// remain callable.
package table

import (
	"fmt"
	"sync/atomic"

	"github.com/desertwitch/goefi/internal/firmware"
)

// Phase is the operational phase of a [System].
type Phase int32

const (
	PhaseBoot Phase = iota
	PhaseRuntime
)

func (p Phase) String() string {
	switch p {
	case PhaseBoot:
		return "boot"
	case PhaseRuntime:
		return "runtime"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// System is a validated system table reference. It is meant to be passed by
// reference (pointer) and shared; only the phase is mutable.
type System struct {
	raw   *firmware.SystemTable
	phase atomic.Int32
}

// New validates a raw system table. The console output and runtime services
// are mandatory, boot services must be present while booting.
func New(raw *firmware.SystemTable) (*System, error) {
	if raw == nil {
		return nil, ErrNilTable
	}
	if raw.ConsoleOut == nil {
		return nil, fmt.Errorf("(table-new) %w: console output", ErrMissingService)
	}
	if raw.Runtime == nil {
		return nil, fmt.Errorf("(table-new) %w: runtime services", ErrMissingService)
	}
	if raw.Boot == nil {
		return nil, fmt.Errorf("(table-new) %w: boot services", ErrMissingService)
	}

	return &System{raw: raw}, nil
}

// Phase returns the current phase of the table.
func (s *System) Phase() Phase {
	return Phase(s.phase.Load())
}

// Booting reports whether boot services are still available.
func (s *System) Booting() bool {
	return s.Phase() == PhaseBoot
}

// BootServices returns the boot services, or [ErrBootServicesExited] once the
// table left [PhaseBoot].
func (s *System) BootServices() (firmware.BootServices, error) {
	if !s.Booting() {
		return nil, ErrBootServicesExited
	}

	return s.raw.Boot, nil
}

// RuntimeServices returns the runtime services, valid in every phase.
func (s *System) RuntimeServices() firmware.RuntimeServices {
	return s.raw.Runtime
}

// ConsoleOut returns the primary console output.
func (s *System) ConsoleOut() firmware.TextOutput {
	return s.raw.ConsoleOut
}

// StdErr returns the standard error console, falling back to the primary
// console output when the firmware does not provide one.
func (s *System) StdErr() firmware.TextOutput {
	if s.raw.StdErr != nil {
		return s.raw.StdErr
	}

	return s.raw.ConsoleOut
}

// Vendor returns the firmware vendor string.
func (s *System) Vendor() string {
	return s.raw.FirmwareVendor
}

// Revision returns the firmware revision.
func (s *System) Revision() uint32 {
	return s.raw.FirmwareRevision
}

// ExitBootServices moves the table into [PhaseRuntime]. Capability instances
// obtained before the transition stop being usable.
func (s *System) ExitBootServices() error {
	if !s.phase.CompareAndSwap(int32(PhaseBoot), int32(PhaseRuntime)) {
		return fmt.Errorf("(table-exit) %w", ErrBootServicesExited)
	}

	return nil
}
