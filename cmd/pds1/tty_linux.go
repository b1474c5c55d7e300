package main

import (
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// rawMode turns off line buffering and echo on a terminal, leaving signals
// enabled so an interrupt still stops the run.
func rawMode(file *os.File) (restore func(), err error) {
	var orig unix.Termios

	err = termios.Tcgetattr(file.Fd(), &orig)
	if err != nil {
		return
	}

	raw := orig
	raw.Lflag &^= unix.ICANON | unix.ECHO
	err = termios.Tcsetattr(file.Fd(), termios.TCSANOW, &raw)
	if err != nil {
		return
	}

	restore = func() {
		termios.Tcsetattr(file.Fd(), termios.TCSANOW, &orig)
	}

	return
}
