package services

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/desertwitch/goefi/internal/console"
	"github.com/desertwitch/goefi/internal/firmware"
	"github.com/desertwitch/goefi/internal/status"
	"github.com/desertwitch/goefi/internal/table"
	"golang.org/x/sys/unix"
)

const (
	// DefaultStallDuration is how long a fault message stays on screen.
	DefaultStallDuration = 10 * time.Second

	// DefaultSpinIterations bounds the busy loop used when no stall
	// service is available.
	DefaultSpinIterations = 1 << 30

	// DefaultDebugExitCode is reported to a harness in diagnostics builds.
	DefaultDebugExitCode = 3

	// HaltNotice is written to the console when every strategy ran and the
	// system is about to wait for good.
	HaltNotice = "Could not shut down, please power off the system manually..."
)

// Fault describes an unrecoverable internal fault.
type Fault struct {
	Message  string
	Location string

	// System is the registered table, nil if none was ever registered.
	System *table.System

	// Reason is passed to the reset service.
	Reason status.Status
}

// Strategy is one step of the fault path. Attempt reports whether the step
// took effect. A panicking strategy counts as not having taken effect.
type Strategy interface {
	Attempt(f *Fault) bool
}

// StrategyFunc adapts a function to [Strategy].
type StrategyFunc func(f *Fault) bool

// Attempt implements [Strategy].
func (fn StrategyFunc) Attempt(f *Fault) bool {
	return fn(f)
}

// ReportStrategy writes the fault to the table's console. It does not
// go through the default logger, and does nothing without a table in its boot
// phase.
type ReportStrategy struct{}

// Attempt implements [Strategy].
func (ReportStrategy) Attempt(f *Fault) bool {
	if f.System == nil || !f.System.Booting() {
		return false
	}

	w := console.NewWriter(f.System.ConsoleOut())
	if _, err := fmt.Fprintf(w, "FATAL at %s: %s\n", f.Location, f.Message); err != nil {
		return false
	}

	return true
}

// StallStrategy holds for Duration using the boot stall service.
type StallStrategy struct {
	Duration time.Duration
}

// Attempt implements [Strategy].
func (s StallStrategy) Attempt(f *Fault) bool {
	if f.System == nil {
		return false
	}

	boot, err := f.System.BootServices()
	if err != nil {
		return false
	}

	return !boot.Stall(uint64(s.Duration.Microseconds())).IsError() //nolint:gosec
}

//nolint:gochecknoglobals
var spinCounter atomic.Uint64

// SpinStrategy holds with a busy loop of Iterations steps. It needs neither
// a table nor timers.
type SpinStrategy struct {
	Iterations int
}

// Attempt implements [Strategy].
func (s SpinStrategy) Attempt(*Fault) bool {
	for range s.Iterations {
		spinCounter.Add(1)
	}

	return true
}

// DebugExitStrategy signals an attached harness by terminating with Code.
type DebugExitStrategy struct {
	Code int
	Exit func(code int)
}

// Attempt implements [Strategy].
func (s DebugExitStrategy) Attempt(*Fault) bool {
	exit := s.Exit
	if exit == nil {
		exit = os.Exit
	}
	exit(s.Code)

	return true
}

// ResetStrategy asks the runtime reset service to reset the platform with
// the fault reason and message.
type ResetStrategy struct {
	Kind firmware.ResetType
}

// Attempt implements [Strategy].
func (s ResetStrategy) Attempt(f *Fault) bool {
	if f.System == nil {
		return false
	}

	f.System.RuntimeServices().ResetSystem(s.Kind, f.Reason, []byte(f.Message))

	return true
}

type firstOf []Strategy

// FirstOf returns a strategy attempting each of strategies in order until
// one takes effect.
func FirstOf(strategies ...Strategy) Strategy {
	return firstOf(strategies)
}

func (fo firstOf) Attempt(f *Fault) bool {
	for _, s := range fo {
		if attempt(s, f) {
			return true
		}
	}

	return false
}

func attempt(s Strategy, f *Fault) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	return s.Attempt(f)
}

// FaultOptions parameterize [DefaultStrategies].
type FaultOptions struct {
	StallDuration  time.Duration
	SpinIterations int
	DebugExitCode  int
}

// DefaultFaultOptions returns the options used by the default fault handler.
func DefaultFaultOptions() FaultOptions {
	return FaultOptions{
		StallDuration:  DefaultStallDuration,
		SpinIterations: DefaultSpinIterations,
		DebugExitCode:  DefaultDebugExitCode,
	}
}

// DefaultStrategies returns the fault path: report, hold by stalling or else
// spinning, signal a harness in diagnostics builds, then shut down.
func DefaultStrategies(o FaultOptions) []Strategy {
	strategies := []Strategy{
		ReportStrategy{},
		FirstOf(StallStrategy{Duration: o.StallDuration}, SpinStrategy{Iterations: o.SpinIterations}),
	}
	strategies = append(strategies, debugStrategies(o)...)

	return append(strategies, ResetStrategy{Kind: firmware.ResetShutdown})
}

// Halt waits in a low-power state forever.
func Halt() {
	for {
		_ = unix.Pause()
	}
}

// FaultHandler runs the fault path. It is meant to be passed by reference
// (pointer).
type FaultHandler struct {
	strategies []Strategy
	halt       func()
	lookup     func() (*table.System, bool)
}

// NewFaultHandler returns a pointer to a new [FaultHandler] attempting
// strategies in order, then calling halt.
func NewFaultHandler(halt func(), strategies ...Strategy) *FaultHandler {
	return &FaultHandler{
		strategies: strategies,
		halt:       halt,
		lookup:     Lookup,
	}
}

// Fault runs every strategy for a fault at location and halts. It returns
// only if halt does.
func (h *FaultHandler) Fault(message string, location string) {
	st, _ := h.lookup()

	f := &Fault{
		Message:  message,
		Location: location,
		System:   st,
		Reason:   status.Aborted,
	}

	for _, s := range h.strategies {
		attempt(s, f)
	}
	attempt(StrategyFunc(noticeHalt), f)

	h.halt()
}

func noticeHalt(f *Fault) bool {
	if f.System == nil || !f.System.Booting() {
		return false
	}

	_, err := fmt.Fprintln(console.NewWriter(f.System.ConsoleOut()), HaltNotice)

	return err == nil
}

//nolint:gochecknoglobals
var faultHandler atomic.Pointer[FaultHandler]

// SetFaultHandler replaces the process-wide fault handler.
func SetFaultHandler(h *FaultHandler) {
	faultHandler.Store(h)
}

func currentFaultHandler() *FaultHandler {
	if h := faultHandler.Load(); h != nil {
		return h
	}

	faultHandler.CompareAndSwap(nil, NewFaultHandler(Halt, DefaultStrategies(DefaultFaultOptions())...))

	return faultHandler.Load()
}

// Abort runs the process-wide fault path for message, located at the caller.
// It does not return.
func Abort(message string) {
	location := "unknown"
	if _, file, line, ok := runtime.Caller(1); ok {
		location = fmt.Sprintf("%s:%d", file, line)
	}

	currentFaultHandler().Fault(message, location)
}

// Recover runs the process-wide fault path for a panic. It must be deferred
// directly.
func Recover() {
	r := recover()
	if r == nil {
		return
	}

	currentFaultHandler().Fault(fmt.Sprint(r), panicLocation())
}

// panicLocation returns the position of the innermost panic on the stack.
func panicLocation() string {
	pcs := make([]uintptr, 64) //nolint:mnd
	frames := runtime.CallersFrames(pcs[:runtime.Callers(2, pcs)]) //nolint:mnd

	panicking := false
	for {
		frame, more := frames.Next()
		switch {
		case frame.Function == "runtime.gopanic":
			panicking = true
		case panicking && !strings.HasPrefix(frame.Function, "runtime."):
			return fmt.Sprintf("%s:%d", frame.File, frame.Line)
		}
		if !more {
			return "unknown"
		}
	}
}
