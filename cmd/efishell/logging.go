package main

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/desertwitch/goefi/internal/services"
	"github.com/lmittmann/tint"
)

const (
	hostHandler     = "host"
	firmwareHandler = "firmware"
)

// SlogManager fans records out to a set of named handlers.
type SlogManager struct {
	sync.RWMutex
	handlers map[string]slog.Handler
	attrs    []slog.Attr
	groups   []string
}

func NewSlogManager() *SlogManager {
	return &SlogManager{
		handlers: make(map[string]slog.Handler),
	}
}

func (m *SlogManager) Enabled(ctx context.Context, level slog.Level) bool {
	m.RLock()
	defer m.RUnlock()

	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (m *SlogManager) Handle(ctx context.Context, r slog.Record) error {
	m.RLock()
	defer m.RUnlock()

	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}

	return nil
}

func (m *SlogManager) WithAttrs(attrs []slog.Attr) slog.Handler {
	m.RLock()
	defer m.RUnlock()

	derived := &SlogManager{
		handlers: make(map[string]slog.Handler, len(m.handlers)),
		attrs:    append(append([]slog.Attr{}, m.attrs...), attrs...),
		groups:   append([]string{}, m.groups...),
	}
	for name, h := range m.handlers {
		derived.handlers[name] = h.WithAttrs(attrs)
	}

	return derived
}

func (m *SlogManager) WithGroup(name string) slog.Handler {
	m.RLock()
	defer m.RUnlock()

	derived := &SlogManager{
		handlers: make(map[string]slog.Handler, len(m.handlers)),
		attrs:    append([]slog.Attr{}, m.attrs...),
		groups:   append(append([]string{}, m.groups...), name),
	}
	for handlerName, h := range m.handlers {
		derived.handlers[handlerName] = h.WithGroup(name)
	}

	return derived
}

func (m *SlogManager) AddHandler(name string, handler slog.Handler) {
	m.Lock()
	defer m.Unlock()

	h := handler
	if len(m.attrs) > 0 {
		h = h.WithAttrs(m.attrs)
	}
	for _, group := range m.groups {
		h = h.WithGroup(group)
	}

	m.handlers[name] = h
}

func (m *SlogManager) RemoveHandler(name string) {
	m.Lock()
	defer m.Unlock()

	delete(m.handlers, name)
}

// belowLevel passes on only records below a ceiling level.
type belowLevel struct {
	slog.Handler
	ceiling slog.Level
}

func (b *belowLevel) Enabled(ctx context.Context, level slog.Level) bool {
	return level < b.ceiling && b.Handler.Enabled(ctx, level)
}

func (b *belowLevel) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &belowLevel{Handler: b.Handler.WithAttrs(attrs), ceiling: b.ceiling}
}

func (b *belowLevel) WithGroup(name string) slog.Handler {
	return &belowLevel{Handler: b.Handler.WithGroup(name), ceiling: b.ceiling}
}

func newHostHandler(level slog.Level) slog.Handler {
	return tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})
}

// setupLogging logs to the host terminal until the firmware sink exists.
func setupLogging(level slog.Level) {
	slog.SetDefault(slog.New(newHostHandler(level)))
}

// attachFirmwareSink routes records at or above the sink level to the
// firmware sink installed by the services registration, and lower records
// to the host terminal when level asks for them.
func attachFirmwareSink(sink slog.Handler, level slog.Level) *SlogManager {
	manager := NewSlogManager()
	manager.AddHandler(firmwareHandler, sink)

	if level < services.SinkLevel {
		manager.AddHandler(hostHandler, &belowLevel{
			Handler: newHostHandler(level),
			ceiling: services.SinkLevel,
		})
	}

	slog.SetDefault(slog.New(manager))

	return manager
}
