package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertwitch/goefi/internal/capability"
	"github.com/desertwitch/goefi/internal/media"
	"github.com/desertwitch/goefi/internal/table"
	"github.com/dustin/go-humanize"
	"github.com/zeebo/blake3"
)

//nolint:gochecknoglobals
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	dirStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4"))

	absentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// firmwarePath converts host style separators into the firmware's.
func firmwarePath(p string) string {
	return strings.ReplaceAll(p, "/", `\`)
}

func attributeString(a media.Attribute) string {
	flags := []struct {
		attr media.Attribute
		char byte
	}{
		{media.AttrDirectory, 'd'},
		{media.AttrReadOnly, 'r'},
		{media.AttrHidden, 'h'},
		{media.AttrSystem, 's'},
		{media.AttrArchive, 'a'},
	}

	b := []byte("-----")
	for i, f := range flags {
		if a.Has(f.attr) {
			b[i] = f.char
		}
	}

	return string(b)
}

// List writes the entries of a directory, the volume root by default.
func (app *App) List(ctx context.Context, args []string) error {
	root, err := app.openVolume(ctx)
	if err != nil {
		return err
	}
	defer root.Close()

	dir := root
	if len(args) > 0 {
		dir, err = root.OpenDirectory(firmwarePath(args[0]), media.ModeRead, media.AttrNone)
		if err != nil {
			return err
		}
		defer dir.Close()
	}

	fmt.Fprintln(app.out, headerStyle.Render("Directory of "+dir.Name()))

	var (
		files, dirs int
		total       uint64
	)

	for info, err := range dir.Entries() {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("(list) %w", err)
		}

		size := humanize.IBytes(info.FileSize)
		name := info.FileName
		if info.IsDirectory() {
			size = "<DIR>"
			name = dirStyle.Render(name)
			dirs++
		} else {
			files++
			total += info.FileSize
		}

		fmt.Fprintf(app.out, "%s  %s  %10s  %s\n",
			info.ModificationTime.Local().Format("2006-01-02 15:04"),
			attributeString(info.Attribute),
			size,
			name,
		)
	}

	_, err = fmt.Fprintf(app.out, "%d file(s), %s, %d dir(s)\n", files, humanize.IBytes(total), dirs)

	return err
}

func (app *App) openRegular(root *media.Directory, path string, mode media.Mode) (*media.RegularFile, error) {
	f, err := root.Open(firmwarePath(path), mode, media.AttrNone)
	if err != nil {
		return nil, err
	}

	rf, err := media.AsRegularFile(f)
	if err != nil {
		_ = f.Close()

		return nil, err
	}

	return rf, nil
}

// Cat writes a text file to the console line by line.
func (app *App) Cat(ctx context.Context, args []string) error {
	root, err := app.openVolume(ctx)
	if err != nil {
		return err
	}
	defer root.Close()

	rf, err := app.openRegular(root, args[0], media.ModeRead)
	if err != nil {
		return err
	}
	defer rf.Close()

	r := bufio.NewReader(rf)
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("(cat) %w", err)
		}

		line, err := r.ReadString('\n')
		if line != "" {
			if _, werr := io.WriteString(app.out, line); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Hash writes the BLAKE3 digest of each file.
func (app *App) Hash(ctx context.Context, args []string) error {
	root, err := app.openVolume(ctx)
	if err != nil {
		return err
	}
	defer root.Close()

	for _, path := range args {
		if err := app.hashOne(root, path); err != nil {
			return err
		}
	}

	return nil
}

func (app *App) hashOne(root *media.Directory, path string) error {
	rf, err := app.openRegular(root, path, media.ModeRead)
	if err != nil {
		return err
	}
	defer rf.Close()

	hasher := blake3.New()

	n, err := io.Copy(hasher, rf)
	if err != nil {
		return fmt.Errorf("(hash) %s: %w", path, err)
	}

	_, err = fmt.Fprintf(app.out, "%x  %s (%s)\n", hasher.Sum(nil), path, humanize.IBytes(uint64(n))) //nolint:gosec

	return err
}

// Info writes the firmware and boot volume details.
func (app *App) Info(ctx context.Context, _ []string) error {
	st, err := app.system(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(app.out, headerStyle.Render("Firmware"))
	fmt.Fprintf(app.out, "  vendor:    %s\n", st.Vendor())
	fmt.Fprintf(app.out, "  revision:  %d.%d\n", st.Revision()>>16, st.Revision()&0xffff) //nolint:mnd
	fmt.Fprintf(app.out, "  phase:     %s\n", st.Phase())

	if now, s := st.RuntimeServices().GetTime(); !s.IsError() {
		fmt.Fprintf(app.out, "  time:      %s\n", now.Format("2006-01-02 15:04:05"))
	}

	root, err := app.openVolume(ctx)
	if err != nil {
		return err
	}
	defer root.Close()

	fsi, err := media.ReadInfo[media.FileSystemInfo](root)
	if err != nil {
		return err
	}

	fmt.Fprintln(app.out, headerStyle.Render("Boot volume"))
	fmt.Fprintf(app.out, "  label:     %s\n", fsi.VolumeLabel)
	fmt.Fprintf(app.out, "  size:      %s\n", humanize.IBytes(fsi.VolumeSize))
	fmt.Fprintf(app.out, "  free:      %s\n", humanize.IBytes(fsi.FreeSpace))
	fmt.Fprintf(app.out, "  block:     %s\n", humanize.IBytes(uint64(fsi.BlockSize)))
	_, err = fmt.Fprintf(app.out, "  read-only: %t\n", fsi.ReadOnly)

	return err
}

// Label writes the volume label or, with arguments, replaces it.
func (app *App) Label(ctx context.Context, args []string) error {
	root, err := app.openVolume(ctx)
	if err != nil {
		return err
	}
	defer root.Close()

	if len(args) > 0 {
		return media.SetInfo(root, &media.VolumeLabel{Label: strings.Join(args, " ")})
	}

	label, err := media.ReadInfo[media.VolumeLabel](root)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(app.out, label.Label)

	return err
}

func describeCapability[P any](st *table.System, c capability.Capability[P]) (string, error) {
	handles, err := capability.Handles(st, c)
	if err != nil {
		return "", err
	}
	if len(handles) == 0 {
		return absentStyle.Render("absent"), nil
	}

	bound := make([]string, 0, len(handles))
	for _, h := range handles {
		if _, err := capability.Open(st, h, c); err != nil {
			return "", err
		}
		bound = append(bound, fmt.Sprintf("%#x", uintptr(h)))
	}

	return "handles " + strings.Join(bound, ", "), nil
}

// Capabilities writes which of the known capabilities the firmware provides.
func (app *App) Capabilities(ctx context.Context, _ []string) error {
	st, err := app.system(ctx)
	if err != nil {
		return err
	}

	rows := []struct {
		c        fmt.Stringer
		describe func() (string, error)
	}{
		{capability.TextOutput, func() (string, error) { return describeCapability(st, capability.TextOutput) }},
		{capability.SimpleFileSystem, func() (string, error) { return describeCapability(st, capability.SimpleFileSystem) }},
		{capability.DebugSupport, func() (string, error) { return describeCapability(st, capability.DebugSupport) }},
	}

	for _, row := range rows {
		desc, err := row.describe()
		if err != nil {
			return err
		}
		fmt.Fprintf(app.out, "%-60s %s\n", row.c, desc)
	}

	return nil
}

// Echo writes its arguments.
func (app *App) Echo(_ context.Context, args []string) error {
	_, err := fmt.Fprintln(app.out, strings.Join(args, " "))

	return err
}

// Remove deletes files and empty directories.
func (app *App) Remove(ctx context.Context, args []string) error {
	root, err := app.openVolume(ctx)
	if err != nil {
		return err
	}
	defer root.Close()

	for _, path := range args {
		f, err := root.Open(firmwarePath(path), media.ModeReadWrite, media.AttrNone)
		if err != nil {
			return err
		}
		if err := f.Delete(); err != nil {
			return err
		}
	}

	return nil
}

// MakeDirectory creates directories.
func (app *App) MakeDirectory(ctx context.Context, args []string) error {
	root, err := app.openVolume(ctx)
	if err != nil {
		return err
	}
	defer root.Close()

	for _, path := range args {
		dir, err := root.OpenDirectory(firmwarePath(path), media.ModeCreateReadWrite, media.AttrDirectory)
		if err != nil {
			return err
		}
		if err := dir.Close(); err != nil {
			return err
		}
	}

	return nil
}

// WriteFile replaces the content of a file with a line of text.
func (app *App) WriteFile(ctx context.Context, args []string) error {
	root, err := app.openVolume(ctx)
	if err != nil {
		return err
	}
	defer root.Close()

	rf, err := app.openRegular(root, args[0], media.ModeCreateReadWrite)
	if err != nil {
		return err
	}
	defer rf.Close()

	info, err := media.ReadInfo[media.FileInfo](rf.File)
	if err != nil {
		return err
	}
	if info.FileSize != 0 {
		info.FileSize = 0
		if err := media.SetInfo(rf.File, info); err != nil {
			return err
		}
	}

	var text string
	if len(args) > 1 {
		text = strings.Join(args[1:], " ") + "\n"
	}

	n, err := io.WriteString(rf, text)
	if err != nil {
		return err
	}
	if err := rf.Flush(); err != nil {
		return err
	}

	_, err = fmt.Fprintf(app.out, "wrote %s to %s\n", humanize.IBytes(uint64(n)), args[0]) //nolint:gosec

	return err
}
