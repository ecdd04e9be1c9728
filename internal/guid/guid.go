// Package guid implements the 128-bit identifiers naming firmware
// capabilities and information kinds. Identifiers are kept in their in-memory
// (mixed-endian) layout: the first three fields are little-endian, the rest is
// stored as written. Equality is the only operation the rest of the module
// relies on, so [GUID] is a comparable array.
package guid

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidGUID occurs when a textual identifier cannot be parsed.
var ErrInvalidGUID = errors.New("invalid guid")

// GUID is a firmware identifier in its in-memory layout.
type GUID [16]byte

// Zero is the all-zero identifier, never assigned to a capability.
//
//nolint:gochecknoglobals
var Zero GUID

// Parse reads the canonical textual form
// ("xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx").
func Parse(s string) (GUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q: %w", ErrInvalidGUID, s, err)
	}

	return fromCanonical(u), nil
}

// MustParse is [Parse] for package-level identifier tables. It panics on
// malformed input.
func MustParse(s string) GUID {
	g, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return g
}

// String renders the canonical textual form.
func (g GUID) String() string {
	return uuid.UUID(toCanonical(g)).String()
}

// IsZero reports whether g is [Zero].
func (g GUID) IsZero() bool {
	return g == Zero
}

// Bytes returns the in-memory layout, as exchanged with the firmware.
func (g GUID) Bytes() []byte {
	b := g

	return b[:]
}

func fromCanonical(u uuid.UUID) GUID {
	return GUID(swapFields(u))
}

func toCanonical(g GUID) [16]byte {
	return swapFields(g)
}

// swapFields converts between the big-endian canonical order and the
// mixed-endian in-memory order; the conversion is its own inverse.
func swapFields(b [16]byte) [16]byte {
	b[0], b[1], b[2], b[3] = b[3], b[2], b[1], b[0]
	b[4], b[5] = b[5], b[4]
	b[6], b[7] = b[7], b[6]

	return b
}
