package main

import "errors"

var (
	// ErrUnknownCommand occurs when the shell is asked for a command it does
	// not have.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrMissingArgument occurs when a command was given fewer arguments than
	// it needs.
	ErrMissingArgument = errors.New("missing argument")

	// ErrNoVolume occurs when the firmware provides no file system.
	ErrNoVolume = errors.New("no file system volume present")
)
