package table

import (
	"testing"

	"github.com/desertwitch/goefi/internal/firmware"
	"github.com/desertwitch/goefi/internal/firmware/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRawTable(t *testing.T) *firmware.SystemTable {
	t.Helper()

	return &firmware.SystemTable{
		FirmwareVendor:   "goefi",
		FirmwareRevision: 0x10000,
		ConsoleOut:       mocks.NewTextOutput(t),
		Boot:             mocks.NewBootServices(t),
		Runtime:          mocks.NewRuntimeServices(t),
	}
}

func TestNew_Table(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		mutate func(*firmware.SystemTable) *firmware.SystemTable
		err    error
	}{
		{"Success", func(st *firmware.SystemTable) *firmware.SystemTable { return st }, nil},
		{"Fail_Nil", func(*firmware.SystemTable) *firmware.SystemTable { return nil }, ErrNilTable},
		{"Fail_NoConsole", func(st *firmware.SystemTable) *firmware.SystemTable { st.ConsoleOut = nil; return st }, ErrMissingService},
		{"Fail_NoRuntime", func(st *firmware.SystemTable) *firmware.SystemTable { st.Runtime = nil; return st }, ErrMissingService},
		{"Fail_NoBoot", func(st *firmware.SystemTable) *firmware.SystemTable { st.Boot = nil; return st }, ErrMissingService},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			st, err := New(tc.mutate(newRawTable(t)))
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				assert.Nil(t, st)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, "goefi", st.Vendor())
			assert.Equal(t, uint32(0x10000), st.Revision())
		})
	}
}

func TestSystem_ExitBootServices(t *testing.T) {
	t.Parallel()

	raw := newRawTable(t)
	st, err := New(raw)
	require.NoError(t, err)

	assert.Equal(t, PhaseBoot, st.Phase())
	bs, err := st.BootServices()
	require.NoError(t, err)
	assert.Same(t, raw.Boot, bs)

	require.NoError(t, st.ExitBootServices())
	assert.Equal(t, PhaseRuntime, st.Phase())
	assert.False(t, st.Booting())

	_, err = st.BootServices()
	require.ErrorIs(t, err, ErrBootServicesExited)
	require.ErrorIs(t, st.ExitBootServices(), ErrBootServicesExited)

	assert.Same(t, raw.Runtime, st.RuntimeServices())
}

func TestSystem_StdErrFallback(t *testing.T) {
	t.Parallel()

	raw := newRawTable(t)
	st, err := New(raw)
	require.NoError(t, err)
	assert.Same(t, raw.ConsoleOut, st.StdErr())

	stderr := mocks.NewTextOutput(t)
	raw.StdErr = stderr
	assert.Same(t, stderr, st.StdErr())
}
