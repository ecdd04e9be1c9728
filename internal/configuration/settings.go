package configuration

import (
	"fmt"
	"log/slog"
	"time"
)

const (
	// SettingPrefix starts every settings key.
	SettingPrefix = "GOEFI_"

	// SettingVolumeRoot is the host directory served as the boot volume.
	SettingVolumeRoot = "GOEFI_VOLUME_ROOT"

	// SettingVolumeLabel is the initial label of the boot volume.
	SettingVolumeLabel = "GOEFI_VOLUME_LABEL"

	// SettingReadOnly makes the boot volume write protected.
	SettingReadOnly = "GOEFI_READ_ONLY"

	// SettingStallMillis is how long the fault path holds its message, in
	// milliseconds.
	SettingStallMillis = "GOEFI_FAULT_STALL_MS"

	// SettingConsoleCapacity is the staging capacity of console writers, in
	// code units.
	SettingConsoleCapacity = "GOEFI_CONSOLE_CAPACITY"

	// SettingLogLevel is the host log level (debug, info, warn, error).
	SettingLogLevel = "GOEFI_LOG_LEVEL"

	// SettingDebugExitCode is the code reported to a harness by diagnostics
	// builds.
	SettingDebugExitCode = "GOEFI_DEBUG_EXIT_CODE"
)

const (
	DefaultVolumeRoot      = "."
	DefaultVolumeLabel     = "GOEFI"
	DefaultStallDuration   = 10 * time.Second
	DefaultConsoleCapacity = 128
	DefaultLogLevel        = slog.LevelInfo
	DefaultDebugExitCode   = 3
)

// Settings is the typed configuration of a hosted firmware session.
type Settings struct {
	VolumeRoot      string
	VolumeLabel     string
	ReadOnly        bool
	StallDuration   time.Duration
	ConsoleCapacity int
	LogLevel        slog.Level
	DebugExitCode   int
}

// DefaultSettings returns the settings used for keys that are not set.
func DefaultSettings() *Settings {
	return &Settings{
		VolumeRoot:      DefaultVolumeRoot,
		VolumeLabel:     DefaultVolumeLabel,
		StallDuration:   DefaultStallDuration,
		ConsoleCapacity: DefaultConsoleCapacity,
		LogLevel:        DefaultLogLevel,
		DebugExitCode:   DefaultDebugExitCode,
	}
}

type configProvider interface {
	ReadGeneric(filenames ...string) (envMap map[string]string, err error)
	MapKeyToString(envMap map[string]string, key string) string
	MapKeyToInt(envMap map[string]string, key string) int
	MapKeyToInt64(envMap map[string]string, key string) int64
	MapKeyToBool(envMap map[string]string, key string) bool
}

// Load reads the settings files and applies their keys over
// [DefaultSettings]. Without files the defaults are returned.
func Load(provider configProvider, filenames ...string) (*Settings, error) {
	settings := DefaultSettings()
	if len(filenames) == 0 {
		return settings, nil
	}

	envMap, err := provider.ReadGeneric(filenames...)
	if err != nil {
		return nil, fmt.Errorf("(config-load) %w", err)
	}

	if err := settings.apply(provider, envMap); err != nil {
		return nil, fmt.Errorf("(config-load) %w", err)
	}

	return settings, nil
}

func (s *Settings) apply(provider configProvider, envMap map[string]string) error {
	if _, exists := envMap[SettingVolumeRoot]; exists {
		s.VolumeRoot = provider.MapKeyToString(envMap, SettingVolumeRoot)
	}

	if _, exists := envMap[SettingVolumeLabel]; exists {
		s.VolumeLabel = provider.MapKeyToString(envMap, SettingVolumeLabel)
	}

	if _, exists := envMap[SettingReadOnly]; exists {
		s.ReadOnly = provider.MapKeyToBool(envMap, SettingReadOnly)
	}

	if _, exists := envMap[SettingStallMillis]; exists {
		millis := provider.MapKeyToInt64(envMap, SettingStallMillis)
		if millis < 0 {
			return fmt.Errorf("%w: %s=%q", ErrInvalidSetting, SettingStallMillis, envMap[SettingStallMillis])
		}
		s.StallDuration = time.Duration(millis) * time.Millisecond
	}

	if _, exists := envMap[SettingConsoleCapacity]; exists {
		capacity := provider.MapKeyToInt(envMap, SettingConsoleCapacity)
		if capacity < 1 {
			return fmt.Errorf("%w: %s=%q", ErrInvalidSetting, SettingConsoleCapacity, envMap[SettingConsoleCapacity])
		}
		s.ConsoleCapacity = capacity
	}

	if _, exists := envMap[SettingLogLevel]; exists {
		if err := s.LogLevel.UnmarshalText([]byte(provider.MapKeyToString(envMap, SettingLogLevel))); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidSetting, SettingLogLevel, err)
		}
	}

	if _, exists := envMap[SettingDebugExitCode]; exists {
		code := provider.MapKeyToInt(envMap, SettingDebugExitCode)
		if code < 0 || code > 255 {
			return fmt.Errorf("%w: %s=%q", ErrInvalidSetting, SettingDebugExitCode, envMap[SettingDebugExitCode])
		}
		s.DebugExitCode = code
	}

	return nil
}
