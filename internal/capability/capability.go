// Package capability locates and opens firmware capabilities (protocols). A
// [Capability] pairs an identifier with the Go interface its instances are
// decoded into; an [Instance] binds such a decoded interface to the handle it
// was opened on and to the [table.System] it came from. Instances are only
// usable while that table is in its boot phase, [Instance.Get] enforces this
// on every access.
//
// Capabilities are optional across firmware implementations, so a missing
// capability is reported as absence and not as an error.
package capability

import (
	"fmt"

	"github.com/desertwitch/goefi/internal/firmware"
	"github.com/desertwitch/goefi/internal/guid"
	"github.com/desertwitch/goefi/internal/status"
	"github.com/desertwitch/goefi/internal/table"
)

// Capability names a capability type P by its identifier. It is meant to be
// passed by value.
type Capability[P any] struct {
	id   guid.GUID
	name string
}

// Define declares a capability decoded into P.
func Define[P any](id guid.GUID, name string) Capability[P] {
	return Capability[P]{id: id, name: name}
}

// ID returns the identifier of the capability.
func (c Capability[P]) ID() guid.GUID {
	return c.id
}

// Name returns the human-readable capability name.
func (c Capability[P]) Name() string {
	return c.name
}

func (c Capability[P]) String() string {
	return c.name + "{" + c.id.String() + "}"
}

// Well-known capabilities.
//
//nolint:gochecknoglobals
var (
	TextOutput       = Define[firmware.TextOutput](firmware.TextOutputGUID, "text-output")
	SimpleFileSystem = Define[firmware.SimpleFileSystem](firmware.SimpleFileSystemGUID, "simple-file-system")
	DebugSupport     = Define[firmware.DebugSupport](firmware.DebugSupportGUID, "debug-support")
)

// Instance is a live binding of a decoded capability interface. It is meant
// to be passed by reference (pointer).
type Instance[P any] struct {
	capability Capability[P]
	handle     firmware.Handle
	iface      P
	system     *table.System
}

// Get returns the decoded interface, or [ErrTableExpired] once the owning
// table left its boot phase.
func (i *Instance[P]) Get() (P, error) {
	if !i.system.Booting() {
		var zero P

		return zero, fmt.Errorf("(capability-get) %s: %w", i.capability.name, ErrTableExpired)
	}

	return i.iface, nil
}

// Valid reports whether [Instance.Get] would succeed.
func (i *Instance[P]) Valid() bool {
	return i.system.Booting()
}

// Handle returns the handle the instance was opened on. Instances obtained
// through [Locate] carry the zero handle.
func (i *Instance[P]) Handle() firmware.Handle {
	return i.handle
}

// Capability returns the capability the instance implements.
func (i *Instance[P]) Capability() Capability[P] {
	return i.capability
}

// System returns the table the instance borrows.
func (i *Instance[P]) System() *table.System {
	return i.system
}

// Locate searches for the first installed instance of c. When nothing
// implements the capability, found is false and err is nil.
func Locate[P any](st *table.System, c Capability[P]) (inst *Instance[P], found bool, err error) {
	bs, err := st.BootServices()
	if err != nil {
		return nil, false, fmt.Errorf("(capability-locate) %s: %w: %w", c.name, ErrTableExpired, err)
	}

	raw, s := bs.LocateProtocol(c.id)
	if isAbsent(s) {
		return nil, false, nil
	}
	if s.IsError() {
		return nil, false, fmt.Errorf("(capability-locate) %s: %w", c.name, s.Err())
	}

	inst, err = bind(st, c, 0, raw)
	if err != nil {
		return nil, false, fmt.Errorf("(capability-locate) %w", err)
	}

	return inst, true, nil
}

// Open binds the instance of c installed on handle h. A handle lacking the
// capability yields [status.ErrUnsupported].
func Open[P any](st *table.System, h firmware.Handle, c Capability[P]) (*Instance[P], error) {
	bs, err := st.BootServices()
	if err != nil {
		return nil, fmt.Errorf("(capability-open) %s: %w: %w", c.name, ErrTableExpired, err)
	}

	raw, s := bs.HandleProtocol(h, c.id)
	if s.IsError() {
		return nil, fmt.Errorf("(capability-open) %s on handle %#x: %w", c.name, uintptr(h), s.Err())
	}

	inst, err := bind(st, c, h, raw)
	if err != nil {
		return nil, fmt.Errorf("(capability-open) %w", err)
	}

	return inst, nil
}

// Handles returns every handle exposing c, or an empty slice when there is
// none.
func Handles[P any](st *table.System, c Capability[P]) ([]firmware.Handle, error) {
	bs, err := st.BootServices()
	if err != nil {
		return nil, fmt.Errorf("(capability-handles) %s: %w: %w", c.name, ErrTableExpired, err)
	}

	handles, s := bs.LocateHandleBuffer(c.id)
	if isAbsent(s) {
		return []firmware.Handle{}, nil
	}
	if s.IsError() {
		return nil, fmt.Errorf("(capability-handles) %s: %w", c.name, s.Err())
	}

	return handles, nil
}

func bind[P any](st *table.System, c Capability[P], h firmware.Handle, raw any) (*Instance[P], error) {
	iface, ok := raw.(P)
	if !ok {
		return nil, fmt.Errorf("%s: %w (got %T)", c.name, ErrInterfaceMismatch, raw)
	}

	return &Instance[P]{
		capability: c,
		handle:     h,
		iface:      iface,
		system:     st,
	}, nil
}

func isAbsent(s status.Status) bool {
	return s == status.NotFound || s == status.Unsupported
}
