// Command efishell runs shell commands against a hosted firmware whose boot
// volume is a host directory. Output and diagnostics go through the firmware
// console, debug messages additionally to the host terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertwitch/goefi/internal/configuration"
	"github.com/desertwitch/goefi/internal/hostfw"
	"github.com/desertwitch/goefi/internal/services"
	"github.com/desertwitch/goefi/internal/table"
)

//nolint:gochecknoglobals
var (
	ExitCode = 0
	Version  string

	configFile = flag.String("config", "", "read settings from this file")
	volumeRoot = flag.String("root", "", "serve this host directory as the boot volume")
	readOnly   = flag.Bool("ro", false, "make the boot volume write protected")
	debug      = flag.Bool("debug", false, "log debug messages to the host terminal")
)

func setupSignalHandlers(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-sigChan
		cancel()
	}()
}

func loadSettings() (*configuration.Settings, error) {
	var files []string
	if *configFile != "" {
		files = append(files, *configFile)
	}

	settings, err := configuration.Load(configuration.NewConfigProvider(), files...)
	if err != nil {
		return nil, fmt.Errorf("(main-settings) %w", err)
	}

	if *volumeRoot != "" {
		settings.VolumeRoot = *volumeRoot
	}
	if *readOnly {
		settings.ReadOnly = true
	}
	if *debug {
		settings.LogLevel = slog.LevelDebug
	}

	return settings, nil
}

func newFirmware(settings *configuration.Settings) (*hostfw.Firmware, error) {
	opts := []hostfw.VolumeOption{hostfw.WithLabel(settings.VolumeLabel)}
	if settings.ReadOnly {
		opts = append(opts, hostfw.WithReadOnly())
	}

	vol, err := hostfw.NewVolume(settings.VolumeRoot, opts...)
	if err != nil {
		return nil, fmt.Errorf("(main-firmware) %w", err)
	}

	return hostfw.New(
		hostfw.WithVendor(hostfw.DefaultVendor+" "+Version, hostfw.DefaultRevision),
		hostfw.WithConsole(os.Stdout),
		hostfw.WithVolume(vol),
	), nil
}

func main() {
	defer func() {
		os.Exit(ExitCode)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flag.Parse()
	setupLogging(slog.LevelInfo)
	setupSignalHandlers(cancel)

	settings, err := loadSettings()
	if err != nil {
		slog.Error("Failed to load the settings.",
			"err", err,
		)
		ExitCode = 1

		return
	}
	setupLogging(settings.LogLevel)

	fw, err := newFirmware(settings)
	if err != nil {
		slog.Error("Failed to establish the hosted firmware.",
			"err", err,
		)
		ExitCode = 1

		return
	}

	st, err := table.New(fw.Table())
	if err != nil {
		slog.Error("Failed to establish the system table.",
			"err", err,
		)
		ExitCode = 1

		return
	}

	services.Init(st)
	attachFirmwareSink(slog.Default().Handler(), settings.LogLevel)

	services.SetFaultHandler(services.NewFaultHandler(services.Halt,
		services.DefaultStrategies(services.FaultOptions{
			StallDuration:  settings.StallDuration,
			SpinIterations: services.DefaultSpinIterations,
			DebugExitCode:  settings.DebugExitCode,
		})...,
	))
	defer services.Recover()

	app := NewConsoleApp(st, settings)
	if err := app.Run(services.NewContext(ctx, st), flag.Args()); err != nil {
		slog.Error("Command failed.",
			"err", err,
		)
		ExitCode = 1
	}
}
