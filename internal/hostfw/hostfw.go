// Package hostfw implements the firmware call boundary on top of a host
// operating system, so that the typed layers can run as ordinary processes.
// It provides a handle database with multi-capability handles, a console
// backed by an [io.Writer], a simple file system rooted in a host directory,
// stall and reset services. Resets are reported to a handler instead of
// rebooting anything.
package hostfw

import (
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/desertwitch/goefi/internal/firmware"
	"github.com/desertwitch/goefi/internal/guid"
	"github.com/desertwitch/goefi/internal/status"
)

const (
	// DefaultVendor is the vendor string reported by the system table.
	DefaultVendor = "goefi hosted firmware"

	// DefaultRevision is the revision reported by the system table.
	DefaultRevision = 0x00010000
)

// ResetHandler receives reset requests. Hosted firmware cannot reboot, so
// the handler decides what a reset means for the process.
type ResetHandler func(kind firmware.ResetType, reason status.Status, data []byte)

// Firmware is a hosted firmware instance. It is meant to be passed by
// reference (pointer).
type Firmware struct {
	sync.Mutex
	vendor   string
	revision uint32
	handles  map[firmware.Handle]map[guid.GUID]any
	order    []firmware.Handle
	next     firmware.Handle
	console  *Console
	stderr   *Console
	onReset  ResetHandler
	sleep    func(time.Duration)
	now      func() time.Time
	volumes  []*Volume
}

// Option configures a [Firmware].
type Option func(*Firmware)

// WithVendor sets the vendor string and revision of the system table.
func WithVendor(vendor string, revision uint32) Option {
	return func(fw *Firmware) {
		fw.vendor = vendor
		fw.revision = revision
	}
}

// WithConsole directs console output to w.
func WithConsole(w io.Writer) Option {
	return func(fw *Firmware) {
		fw.console = NewConsole(w)
	}
}

// WithStdErr directs the error console to w. Without it the error console
// is the console.
func WithStdErr(w io.Writer) Option {
	return func(fw *Firmware) {
		fw.stderr = NewConsole(w)
	}
}

// WithVolume installs a file system rooted in a host directory on its own
// handle.
func WithVolume(vol *Volume) Option {
	return func(fw *Firmware) {
		fw.volumes = append(fw.volumes, vol)
	}
}

// WithResetHandler replaces the default reset handler, which exits the
// process.
func WithResetHandler(h ResetHandler) Option {
	return func(fw *Firmware) {
		fw.onReset = h
	}
}

// WithSleeper replaces [time.Sleep] as the stall primitive.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(fw *Firmware) {
		fw.sleep = sleep
	}
}

// WithClock replaces [time.Now] as the platform clock.
func WithClock(now func() time.Time) Option {
	return func(fw *Firmware) {
		fw.now = now
	}
}

// New returns a pointer to a new [Firmware]. The console is installed first,
// followed by a separate error console, if any, and the volumes in the order
// they were given.
func New(opts ...Option) *Firmware {
	fw := &Firmware{
		vendor:   DefaultVendor,
		revision: DefaultRevision,
		handles:  make(map[firmware.Handle]map[guid.GUID]any),
		next:     1,
		onReset:  exitOnReset,
		sleep:    time.Sleep,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(fw)
	}
	if fw.console == nil {
		fw.console = NewConsole(os.Stdout)
	}
	if fw.stderr == nil {
		fw.stderr = fw.console
	}

	fw.InstallProtocol(0, firmware.TextOutputGUID, fw.console)
	if fw.stderr != fw.console {
		fw.InstallProtocol(0, firmware.TextOutputGUID, fw.stderr)
	}
	for _, vol := range fw.volumes {
		fw.InstallProtocol(0, firmware.SimpleFileSystemGUID, vol)
	}

	return fw
}

// Table returns a system table wired to this firmware.
func (fw *Firmware) Table() *firmware.SystemTable {
	return &firmware.SystemTable{
		FirmwareVendor:   fw.vendor,
		FirmwareRevision: fw.revision,
		ConsoleOut:       fw.console,
		StdErr:           fw.stderr,
		Boot:             &bootServices{fw: fw},
		Runtime:          &runtimeServices{fw: fw},
	}
}

// Console returns the console output capability.
func (fw *Firmware) Console() *Console {
	return fw.console
}

// InstallProtocol installs iface as capability id on handle h. A zero handle
// allocates a new one. The handle is returned. Installing an identifier that
// is already present on the handle replaces the previous instance.
func (fw *Firmware) InstallProtocol(h firmware.Handle, id guid.GUID, iface any) firmware.Handle {
	fw.Lock()
	defer fw.Unlock()

	if h == 0 {
		h = fw.next
		fw.next++
	}

	protocols, exists := fw.handles[h]
	if !exists {
		protocols = make(map[guid.GUID]any)
		fw.handles[h] = protocols
		fw.order = append(fw.order, h)
	}
	protocols[id] = iface

	return h
}

// UninstallProtocol removes capability id from handle h. Handles without any
// capability left are dropped.
func (fw *Firmware) UninstallProtocol(h firmware.Handle, id guid.GUID) status.Status {
	fw.Lock()
	defer fw.Unlock()

	protocols, exists := fw.handles[h]
	if !exists {
		return status.InvalidParameter
	}
	if _, ok := protocols[id]; !ok {
		return status.NotFound
	}

	delete(protocols, id)
	if len(protocols) == 0 {
		delete(fw.handles, h)
		fw.order = slices.DeleteFunc(fw.order, func(o firmware.Handle) bool { return o == h })
	}

	return status.Success
}

func exitOnReset(kind firmware.ResetType, reason status.Status, _ []byte) {
	code := 0
	if !reason.IsSuccess() {
		code = 1
	}

	slog.Info("Firmware reset requested: exiting.",
		"kind", kind,
		"reason", reason,
		"code", code,
	)

	os.Exit(code)
}

type bootServices struct {
	fw *Firmware
}

func (b *bootServices) LocateProtocol(id guid.GUID) (any, status.Status) {
	b.fw.Lock()
	defer b.fw.Unlock()

	for _, h := range b.fw.order {
		if iface, ok := b.fw.handles[h][id]; ok {
			return iface, status.Success
		}
	}

	return nil, status.NotFound
}

func (b *bootServices) HandleProtocol(h firmware.Handle, id guid.GUID) (any, status.Status) {
	b.fw.Lock()
	defer b.fw.Unlock()

	protocols, exists := b.fw.handles[h]
	if !exists {
		return nil, status.InvalidParameter
	}

	iface, ok := protocols[id]
	if !ok {
		return nil, status.Unsupported
	}

	return iface, status.Success
}

func (b *bootServices) LocateHandleBuffer(id guid.GUID) ([]firmware.Handle, status.Status) {
	b.fw.Lock()
	defer b.fw.Unlock()

	var handles []firmware.Handle
	for _, h := range b.fw.order {
		if _, ok := b.fw.handles[h][id]; ok {
			handles = append(handles, h)
		}
	}
	if len(handles) == 0 {
		return nil, status.NotFound
	}

	return handles, status.Success
}

func (b *bootServices) Stall(microseconds uint64) status.Status {
	b.fw.sleep(time.Duration(microseconds) * time.Microsecond) //nolint:gosec

	return status.Success
}

type runtimeServices struct {
	fw *Firmware
}

func (r *runtimeServices) ResetSystem(kind firmware.ResetType, reason status.Status, data []byte) {
	r.fw.onReset(kind, reason, data)
}

func (r *runtimeServices) GetTime() (time.Time, status.Status) {
	return r.fw.now(), status.Success
}
