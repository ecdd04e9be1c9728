package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/desertwitch/goefi/internal/hostfw"
	"github.com/desertwitch/goefi/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHostedSystem(t *testing.T, console io.Writer, opts ...hostfw.Option) *table.System {
	t.Helper()

	st, err := table.New(hostfw.New(append([]hostfw.Option{hostfw.WithConsole(console)}, opts...)...).Table())
	require.NoError(t, err)

	return st
}

// Expectation: The first registration should win and install the sink once.
func TestRegistry_Init_FirstWins(t *testing.T) {
	t.Parallel()

	installed := 0
	r := newRegistry(func(slog.Handler) { installed++ })

	st1 := newHostedSystem(t, io.Discard)
	st2 := newHostedSystem(t, io.Discard)

	_, ok := r.lookup()
	assert.False(t, ok)

	assert.False(t, r.init(nil))
	assert.True(t, r.init(st1))
	assert.False(t, r.init(st2))
	assert.False(t, r.init(st1))

	got, ok := r.lookup()
	require.True(t, ok)
	assert.Same(t, st1, got)
	assert.Equal(t, 1, installed)
}

// Expectation: The global accessor should panic before registration and the
// context should be preferred over the global.
func TestSystemTable_NotInitialized(t *testing.T) {
	t.Parallel()

	assert.PanicsWithError(t, ErrNotInitialized.Error(), func() {
		SystemTable()
	})

	_, ok := Lookup()
	assert.False(t, ok)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)

	st := newHostedSystem(t, io.Discard)
	got, ok := FromContext(NewContext(context.Background(), st))
	require.True(t, ok)
	assert.Same(t, st, got)
}

// Expectation: The sink should write plain lines at the baseline level to the
// table's console.
func TestNewSink_Success(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	st := newHostedSystem(t, &out)

	log := slog.New(NewSink(st))
	log.Debug("Hidden.")
	log.Info("Volume opened.", "label", "BOOT")

	assert.NotContains(t, out.String(), "Hidden.")
	assert.Contains(t, out.String(), "INF Volume opened. label=BOOT")
	assert.NotContains(t, out.String(), "\x1b[")
	assert.NotContains(t, out.String(), "\r")
}

// Expectation: The sink should be bound to the primary console, not to a
// separate error console.
func TestNewSink_SeparateStdErr(t *testing.T) {
	t.Parallel()

	var out, stderr bytes.Buffer
	st := newHostedSystem(t, &out, hostfw.WithStdErr(&stderr))

	r := newRegistry(func(h slog.Handler) {
		slog.New(h).Info("Hello sink.")
	})
	require.True(t, r.init(st))

	assert.Contains(t, out.String(), "INF Hello sink.")
	assert.Empty(t, stderr.String())
}
