package guid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_InMemoryLayout(t *testing.T) {
	t.Parallel()

	g, err := Parse("964e5b22-6459-11d2-8e39-00a0c969723b")
	require.NoError(t, err)

	expected := GUID{
		0x22, 0x5b, 0x4e, 0x96,
		0x59, 0x64,
		0xd2, 0x11,
		0x8e, 0x39, 0x00, 0xa0, 0xc9, 0x69, 0x72, 0x3b,
	}
	assert.Equal(t, expected, g)
	assert.Equal(t, "964e5b22-6459-11d2-8e39-00a0c969723b", g.String())
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Parse("not-a-guid")
	require.ErrorIs(t, err, ErrInvalidGUID)

	assert.Panics(t, func() { MustParse("zzz") })
}

func TestGUID_Equality(t *testing.T) {
	t.Parallel()

	a := MustParse("09576e91-6d3f-11d2-8e39-00a0c969723b")
	b := MustParse("09576E91-6D3F-11D2-8E39-00A0C969723B")
	c := MustParse("09576e92-6d3f-11d2-8e39-00a0c969723b")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.False(t, a.IsZero())
	assert.True(t, Zero.IsZero())
}

func TestGUID_BytesIsCopy(t *testing.T) {
	t.Parallel()

	g := MustParse("09576e91-6d3f-11d2-8e39-00a0c969723b")
	b := g.Bytes()
	b[0] = 0xff

	assert.Equal(t, byte(0x91), g[0])
}
