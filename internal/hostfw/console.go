package hostfw

import (
	"encoding/binary"
	"io"
	"strings"
	"sync"

	"github.com/desertwitch/goefi/internal/status"
	"golang.org/x/text/encoding/unicode"
)

// Console is a text output capability writing to a host [io.Writer]. Staged
// runs arrive as zero-terminated UCS-2; they are decoded to UTF-8 and the
// carriage returns the firmware line discipline requires are dropped.
type Console struct {
	sync.Mutex
	w io.Writer
}

// NewConsole returns a pointer to a new [Console] writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// OutputString implements [firmware.TextOutput].
func (c *Console) OutputString(s []uint16) status.Status {
	raw := make([]byte, 0, 2*len(s))
	for _, u := range s {
		if u == 0 {
			break
		}
		raw = binary.LittleEndian.AppendUint16(raw, u)
	}

	text, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return status.DeviceError
	}

	c.Lock()
	defer c.Unlock()

	if _, err := io.WriteString(c.w, strings.ReplaceAll(string(text), "\r", "")); err != nil {
		return status.DeviceError
	}

	return status.Success
}

// Reset implements [firmware.TextOutput]. A host writer cannot be cleared.
func (c *Console) Reset(bool) status.Status {
	return status.Success
}
