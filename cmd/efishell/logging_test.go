package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func textHandler(buf *bytes.Buffer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(buf, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}

			return a
		},
	})
}

// Expectation: Records should reach every handler enabled for their level,
// including attributes and groups added before and after registration.
func TestSlogManager_FanOut(t *testing.T) {
	t.Parallel()

	var low, high bytes.Buffer

	m := NewSlogManager()
	m.AddHandler("low", &belowLevel{Handler: textHandler(&low, slog.LevelDebug), ceiling: slog.LevelInfo})
	m.AddHandler("high", textHandler(&high, slog.LevelInfo))

	log := slog.New(m).With("volume", "BOOT")
	log.Debug("Probing.")
	log.Info("Opened.")

	assert.Equal(t, "level=DEBUG msg=Probing. volume=BOOT\n", low.String())
	assert.Equal(t, "level=INFO msg=Opened. volume=BOOT\n", high.String())

	m.RemoveHandler("low")
	assert.False(t, m.Enabled(t.Context(), slog.LevelDebug))
	assert.True(t, m.Enabled(t.Context(), slog.LevelWarn))
}
