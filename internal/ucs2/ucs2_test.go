package ucs2

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChar8(t *testing.T) {
	t.Parallel()

	c, err := NewChar8('é')
	require.NoError(t, err)
	assert.Equal(t, Char8(0xe9), c)

	_, err = NewChar8('€')
	require.ErrorIs(t, err, ErrConversion)
}

func TestNewChar16(t *testing.T) {
	t.Parallel()

	c, err := NewChar16('日')
	require.NoError(t, err)
	assert.Equal(t, Char16(0x65e5), c)

	_, err = NewChar16('😀')
	require.ErrorIs(t, err, ErrConversion)
}

func TestEncode_Table(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected []uint16
		err      error
	}{
		{"Success_Empty", "", []uint16{0}, nil},
		{"Success_ASCII", "EFI", []uint16{'E', 'F', 'I', 0}, nil},
		{"Success_BMP", "日本", []uint16{0x65e5, 0x672c, 0}, nil},
		{"Success_InvalidUTF8", "a\xffb", []uint16{'a', 0xfffd, 'b', 0}, nil},
		{"Fail_Astral", "a😀", nil, ErrConversion},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			units, err := Encode(tc.input)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				assert.Nil(t, units)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, units)
		})
	}
}

func TestEncodeFunc_StopsOnCallbackError(t *testing.T) {
	t.Parallel()

	stop := errors.New("stop")
	var seen []Char16

	err := EncodeFunc("abc", func(c Char16) error {
		seen = append(seen, c)
		if c == 'b' {
			return stop
		}

		return nil
	})

	require.ErrorIs(t, err, stop)
	assert.Equal(t, []Char16{'a', 'b'}, seen)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Validate("plain text\n"))
	require.ErrorIs(t, Validate("ok then 𝄞"), ErrConversion)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "EFI", Decode([]uint16{'E', 'F', 'I', 0, 'X'}))
	assert.Equal(t, "日本", Decode([]uint16{0x65e5, 0x672c}))
	assert.Empty(t, Decode(nil))
}
