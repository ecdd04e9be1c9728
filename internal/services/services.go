// Package services holds the process-wide system table and the fault path.
//
// The table is registered once with [Init]; later registrations are ignored.
// The first registration also installs a diagnostic [slog.Handler] writing to
// the table's console as the default logger. Code that can thread the table
// explicitly should prefer [NewContext] and [FromContext] over the global.
package services

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/desertwitch/goefi/internal/console"
	"github.com/desertwitch/goefi/internal/table"
	"github.com/lmittmann/tint"
)

// SinkLevel is the verbosity of the diagnostic sink.
const SinkLevel = slog.LevelInfo

// registry is a single-assignment cell for the system table.
type registry struct {
	system  atomic.Pointer[table.System]
	sink    sync.Once
	install func(slog.Handler)
}

func newRegistry(install func(slog.Handler)) *registry {
	return &registry{install: install}
}

func (r *registry) init(st *table.System) bool {
	if st == nil || !r.system.CompareAndSwap(nil, st) {
		return false
	}

	r.sink.Do(func() {
		r.install(NewSink(st))
	})

	return true
}

func (r *registry) lookup() (*table.System, bool) {
	st := r.system.Load()

	return st, st != nil
}

//nolint:gochecknoglobals
var global = newRegistry(func(h slog.Handler) {
	slog.SetDefault(slog.New(h))
})

// Init registers st as the process-wide system table and reports whether this
// call did so. Only the first registration of a non-nil table takes effect.
func Init(st *table.System) bool {
	return global.init(st)
}

// Lookup returns the registered system table, if any.
func Lookup() (*table.System, bool) {
	return global.lookup()
}

// SystemTable returns the registered system table. It panics with
// [ErrNotInitialized] when [Init] has not been called.
func SystemTable() *table.System {
	st, ok := global.lookup()
	if !ok {
		panic(ErrNotInitialized)
	}

	return st
}

// NewSink returns the diagnostic handler for st: plain text lines written to
// the table's primary console.
func NewSink(st *table.System) slog.Handler {
	return tint.NewHandler(console.NewWriter(st.ConsoleOut()), &tint.Options{
		Level:      SinkLevel,
		TimeFormat: time.Kitchen,
		NoColor:    true,
	})
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying st.
func NewContext(ctx context.Context, st *table.System) context.Context {
	return context.WithValue(ctx, contextKey{}, st)
}

// FromContext returns the table carried by ctx, falling back to the
// registered one.
func FromContext(ctx context.Context) (*table.System, bool) {
	if st, ok := ctx.Value(contextKey{}).(*table.System); ok && st != nil {
		return st, true
	}

	return Lookup()
}
