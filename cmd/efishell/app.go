package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/desertwitch/goefi/internal/capability"
	"github.com/desertwitch/goefi/internal/configuration"
	"github.com/desertwitch/goefi/internal/console"
	"github.com/desertwitch/goefi/internal/media"
	"github.com/desertwitch/goefi/internal/services"
	"github.com/desertwitch/goefi/internal/table"
)

type command struct {
	usage   string
	minArgs int
	run     func(app *App, ctx context.Context, args []string) error
}

//nolint:gochecknoglobals
var commands = map[string]command{
	"ls":    {usage: "ls [dir]", run: (*App).List},
	"cat":   {usage: "cat <file>", minArgs: 1, run: (*App).Cat},
	"hash":  {usage: "hash <file>...", minArgs: 1, run: (*App).Hash},
	"info":  {usage: "info", run: (*App).Info},
	"label": {usage: "label [new label]", run: (*App).Label},
	"caps":  {usage: "caps", run: (*App).Capabilities},
	"echo":  {usage: "echo [text]...", run: (*App).Echo},
	"rm":    {usage: "rm <path>...", minArgs: 1, run: (*App).Remove},
	"mkdir": {usage: "mkdir <dir>...", minArgs: 1, run: (*App).MakeDirectory},
	"write": {usage: "write <file> [text]...", minArgs: 1, run: (*App).WriteFile},
}

// App runs shell commands against the registered system table. It is meant
// to be passed by reference (pointer).
type App struct {
	settings *configuration.Settings
	out      io.Writer
}

func NewApp(settings *configuration.Settings, out io.Writer) *App {
	return &App{
		settings: settings,
		out:      out,
	}
}

// NewConsoleApp returns an [App] writing to the table's console with the
// configured staging capacity.
func NewConsoleApp(st *table.System, settings *configuration.Settings) *App {
	return NewApp(settings, console.NewWriter(st.ConsoleOut(), console.WithCapacity(settings.ConsoleCapacity)))
}

// Run runs the command named by args[0].
func (app *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return app.Usage()
	}

	cmd, exists := commands[args[0]]
	if !exists {
		return fmt.Errorf("(app) %w: %s", ErrUnknownCommand, args[0])
	}
	if len(args)-1 < cmd.minArgs {
		return fmt.Errorf("(app) %w: usage: %s", ErrMissingArgument, cmd.usage)
	}

	slog.Debug("Running command.", "cmd", args[0], "args", args[1:])

	if err := cmd.run(app, ctx, args[1:]); err != nil {
		return fmt.Errorf("(app-%s) %w", args[0], err)
	}

	return nil
}

// Usage writes the command list.
func (app *App) Usage() error {
	lines := make([]string, 0, len(commands))
	for _, name := range sortedCommands() {
		lines = append(lines, "  "+commands[name].usage)
	}

	_, err := fmt.Fprintf(app.out, "commands:\n%s\n", strings.Join(lines, "\n"))

	return err
}

func sortedCommands() []string {
	return slices.Sorted(maps.Keys(commands))
}

func (app *App) system(ctx context.Context) (*table.System, error) {
	st, ok := services.FromContext(ctx)
	if !ok {
		return nil, services.ErrNotInitialized
	}

	return st, nil
}

// openVolume opens the root of the first volume of the table.
func (app *App) openVolume(ctx context.Context) (*media.Directory, error) {
	st, err := app.system(ctx)
	if err != nil {
		return nil, err
	}

	inst, found, err := capability.Locate(st, capability.SimpleFileSystem)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoVolume
	}

	return media.OpenVolume(inst)
}
