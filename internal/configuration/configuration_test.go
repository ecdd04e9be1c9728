package configuration

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGenericReader struct {
	mock.Mock
}

func (m *mockGenericReader) Read(filenames ...string) (map[string]string, error) {
	args := m.Called(filenames)

	envMap, _ := args.Get(0).(map[string]string)

	return envMap, args.Error(1)
}

func writeSettings(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "goefi.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// Expectation: Single keys should convert or fall back to their markers.
func TestConfigProviderImpl_MapKeys(t *testing.T) {
	t.Parallel()

	c := &ConfigProviderImpl{}
	envMap := map[string]string{
		"str":   "  value ",
		"int":   "42",
		"bad":   "x",
		"int64": "9000000000",
		"yes":   "YES",
		"one":   "1",
		"no":    "no",
	}

	assert.Equal(t, "value", c.MapKeyToString(envMap, "str"))
	assert.Empty(t, c.MapKeyToString(envMap, "missing"))

	assert.Equal(t, 42, c.MapKeyToInt(envMap, "int"))
	assert.Equal(t, -1, c.MapKeyToInt(envMap, "bad"))
	assert.Equal(t, -1, c.MapKeyToInt(envMap, "missing"))

	assert.Equal(t, int64(9000000000), c.MapKeyToInt64(envMap, "int64"))
	assert.Equal(t, int64(-1), c.MapKeyToInt64(envMap, "bad"))

	assert.True(t, c.MapKeyToBool(envMap, "yes"))
	assert.True(t, c.MapKeyToBool(envMap, "one"))
	assert.False(t, c.MapKeyToBool(envMap, "no"))
	assert.False(t, c.MapKeyToBool(envMap, "missing"))
}

// Expectation: A settings file should override only the keys it sets.
func TestLoad_Success(t *testing.T) {
	t.Parallel()

	path := writeSettings(t, `
GOEFI_VOLUME_ROOT=/srv/esp
GOEFI_READ_ONLY=yes
GOEFI_FAULT_STALL_MS=250
GOEFI_LOG_LEVEL=debug
`)

	settings, err := Load(NewConfigProvider(), path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/esp", settings.VolumeRoot)
	assert.Equal(t, DefaultVolumeLabel, settings.VolumeLabel)
	assert.True(t, settings.ReadOnly)
	assert.Equal(t, 250*time.Millisecond, settings.StallDuration)
	assert.Equal(t, DefaultConsoleCapacity, settings.ConsoleCapacity)
	assert.Equal(t, slog.LevelDebug, settings.LogLevel)
	assert.Equal(t, DefaultDebugExitCode, settings.DebugExitCode)
}

// Expectation: Without files the defaults should be returned untouched.
func TestLoad_NoFiles(t *testing.T) {
	t.Parallel()

	reader := &mockGenericReader{}

	settings, err := Load(&ConfigProviderImpl{GenericConfigReader: reader})
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), settings)

	reader.AssertNotCalled(t, "Read", mock.Anything)
}

// Expectation: Out of range or unparsable values should be refused.
func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
	}{
		{"Fail_Capacity", "GOEFI_CONSOLE_CAPACITY=0"},
		{"Fail_CapacityText", "GOEFI_CONSOLE_CAPACITY=many"},
		{"Fail_Stall", "GOEFI_FAULT_STALL_MS=-5"},
		{"Fail_LogLevel", "GOEFI_LOG_LEVEL=loud"},
		{"Fail_ExitCode", "GOEFI_DEBUG_EXIT_CODE=300"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(NewConfigProvider(), writeSettings(t, tc.content))
			require.ErrorIs(t, err, ErrInvalidSetting)
		})
	}
}

// Expectation: Reader failures should be wrapped and returned.
func TestLoad_ReadError(t *testing.T) {
	t.Parallel()

	readErr := errors.New("unreadable")

	reader := &mockGenericReader{}
	reader.On("Read", []string{"a.env"}).Return(nil, readErr).Once()

	_, err := Load(&ConfigProviderImpl{GenericConfigReader: reader}, "a.env")
	require.ErrorIs(t, err, readErr)

	reader.AssertExpectations(t)
}

// Expectation: A missing file should fail through godotenv.
func TestGodotenvProvider_Missing(t *testing.T) {
	t.Parallel()

	_, err := (&GodotenvProvider{}).Read(filepath.Join(t.TempDir(), "missing.env"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// Expectation: Only keys carrying the prefix should be returned, and no
// prefix should keep every key.
func TestGodotenvProvider_Prefix(t *testing.T) {
	t.Parallel()

	path := writeSettings(t, "GOEFI_VOLUME_LABEL=BOOT\nPATH=/bin\nEDITOR=vi\n")

	data, err := (&GodotenvProvider{Prefix: SettingPrefix}).Read(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{SettingVolumeLabel: "BOOT"}, data)

	data, err = (&GodotenvProvider{}).Read(path)
	require.NoError(t, err)
	assert.Len(t, data, 3)
}
