// Package ucs2 converts between native Go text and the firmware's fixed-width
// character encodings. The firmware only understands UCS-2: every character
// is a single 16-bit code unit, there are no surrogate pairs. Code points
// outside that range are rejected rather than split into multiple units.
package ucs2

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	// MaxChar8 is the largest code point representable as a [Char8].
	MaxChar8 = 0xff

	// MaxChar16 is the largest code point representable as a [Char16].
	MaxChar16 = 0xffff
)

// ErrConversion occurs when a code point is outside the range of the target
// encoding.
var ErrConversion = errors.New("character not representable")

// Char8 is a Latin-1 character.
type Char8 uint8

// Char16 is a UCS-2 code unit.
type Char16 uint16

// Terminator is the zero code unit ending every firmware string.
const Terminator Char16 = 0

// NewChar8 converts r into a Latin-1 character.
func NewChar8(r rune) (Char8, error) {
	if r < 0 || r > MaxChar8 {
		return 0, fmt.Errorf("%w: %U exceeds latin-1", ErrConversion, r)
	}

	return Char8(r), nil
}

// NewChar16 converts r into a UCS-2 code unit.
func NewChar16(r rune) (Char16, error) {
	if r < 0 || r > MaxChar16 {
		return 0, fmt.Errorf("%w: %U exceeds ucs-2", ErrConversion, r)
	}

	return Char16(r), nil
}

// Validate checks that every code point of s fits into a single code unit.
func Validate(s string) error {
	for i, r := range s {
		if r > MaxChar16 {
			return fmt.Errorf("%w: %U at byte %d", ErrConversion, r, i)
		}
	}

	return nil
}

// EncodeFunc walks s code point by code point and hands each converted unit
// to fn. Conversion stops at the first unrepresentable code point or at the
// first error returned by fn. Invalid UTF-8 is passed on as U+FFFD.
func EncodeFunc(s string, fn func(Char16) error) error {
	for i, r := range s {
		c, err := NewChar16(r)
		if err != nil {
			return fmt.Errorf("at byte %d: %w", i, err)
		}
		if err := fn(c); err != nil {
			return err
		}
	}

	return nil
}

// Encode converts s into a zero-terminated code unit array, as expected by
// firmware calls taking a string argument.
func Encode(s string) ([]uint16, error) {
	units := make([]uint16, 0, utf8.RuneCountInString(s)+1)

	err := EncodeFunc(s, func(c Char16) error {
		units = append(units, uint16(c))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return append(units, uint16(Terminator)), nil
}

// Decode converts code units into native text, stopping at the first
// terminator if there is one. Units in the surrogate range are replaced with
// U+FFFD.
func Decode(units []uint16) string {
	buf := make([]byte, 0, len(units))

	for _, u := range units {
		if Char16(u) == Terminator {
			break
		}
		buf = utf8.AppendRune(buf, rune(u))
	}

	return string(buf)
}
