// Package console adapts a firmware text output capability to [io.Writer].
// Native text is converted to UCS-2 on the fly and staged in a fixed-size
// buffer that is handed to the firmware whenever it fills up and once more at
// the end of every write. Line feeds are followed by a synthesized carriage
// return, as firmware consoles do not return the cursor on their own.
package console

import (
	"fmt"

	"github.com/desertwitch/goefi/internal/firmware"
	"github.com/desertwitch/goefi/internal/ucs2"
)

// DefaultCapacity is the number of code units staged before a flush.
const DefaultCapacity = 128

// Writer writes native text to a firmware text output. Writers are not safe
// for concurrent use; callers sharing one must serialize their writes.
type Writer struct {
	out      firmware.TextOutput
	capacity int
}

// Option configures a [Writer].
type Option func(*Writer)

// WithCapacity sets the staging capacity in code units. Values below one are
// ignored.
func WithCapacity(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.capacity = n
		}
	}
}

// NewWriter returns a pointer to a new [Writer] emitting to out.
func NewWriter(out firmware.TextOutput, opts ...Option) *Writer {
	w := &Writer{
		out:      out,
		capacity: DefaultCapacity,
	}
	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Capacity returns the staging capacity in code units.
func (w *Writer) Capacity() int {
	return w.capacity
}

// Write implements [io.Writer].
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.WriteString(string(p))

	return n, err
}

// WriteString converts s and emits it. Text containing a code point outside
// UCS-2 is rejected as a whole with [ucs2.ErrConversion] before anything is
// emitted. Any failed firmware output aborts the write with
// [ErrWriteFailed]; runs flushed before the failure stay on the display.
func (w *Writer) WriteString(s string) (int, error) {
	if err := ucs2.Validate(s); err != nil {
		return 0, fmt.Errorf("(console-write) %w", err)
	}

	st := newStaging(w.out, w.capacity)

	err := ucs2.EncodeFunc(s, func(c ucs2.Char16) error {
		if err := st.add(c); err != nil {
			return err
		}
		if c == '\n' {
			return st.add('\r')
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("(console-write) %w", err)
	}

	if err := st.flush(); err != nil {
		return 0, fmt.Errorf("(console-write) %w", err)
	}

	return len(s), nil
}

// staging is the per-call buffer: capacity units plus the terminator slot.
type staging struct {
	out    firmware.TextOutput
	buf    []uint16
	cursor int
}

func newStaging(out firmware.TextOutput, capacity int) *staging {
	return &staging{
		out: out,
		buf: make([]uint16, capacity+1),
	}
}

func (st *staging) add(c ucs2.Char16) error {
	st.buf[st.cursor] = uint16(c)
	st.cursor++

	if st.cursor == len(st.buf)-1 {
		return st.flush()
	}

	return nil
}

func (st *staging) flush() error {
	st.buf[st.cursor] = uint16(ucs2.Terminator)
	run := st.buf[:st.cursor+1]
	st.cursor = 0

	if s := st.out.OutputString(run); s.IsError() {
		return fmt.Errorf("%w: %w", ErrWriteFailed, s.Err())
	}

	return nil
}
