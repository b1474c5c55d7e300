//go:build !linux

package main

import (
	"os"

	"golang.org/x/term"
)

// rawMode puts a terminal in raw mode.
func rawMode(file *os.File) (restore func(), err error) {
	fd := int(file.Fd())

	state, err := term.MakeRaw(fd)
	if err != nil {
		return
	}

	restore = func() {
		term.Restore(fd, state)
	}

	return
}
