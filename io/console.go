package io

import (
	"io"
	"iter"
	"maps"
	"strings"
	"sync"
)

// Console is the append-only printer. Characters come from IOT transfers
// and processor halt diagnostics; the core never clears it.
type Console struct {
	Output io.Writer // If set, everything printed is echoed here.

	mutex sync.Mutex
	text  strings.Builder
}

var _ Device = (*Console)(nil)

// Print appends text, echoing it to Output.
func (con *Console) Print(text string) {
	con.mutex.Lock()
	defer con.mutex.Unlock()

	con.text.WriteString(text)
	if con.Output != nil {
		io.WriteString(con.Output, text)
	}
}

// String returns everything printed so far.
func (con *Console) String() string {
	con.mutex.Lock()
	defer con.mutex.Unlock()

	return con.text.String()
}

// Len returns the number of bytes printed so far.
func (con *Console) Len() int {
	con.mutex.Lock()
	defer con.mutex.Unlock()

	return con.text.Len()
}

// Reset does nothing. Console text survives a machine reset.
func (con *Console) Reset() {
}

// Transfer prints the 7-bit character in the accumulator if it is
// printable or a newline.
func (con *Console) Transfer(fn uint16, ac uint16) (out uint16, skip bool) {
	out = ac

	ch := byte(ac & 0x7f)
	if ch >= 32 || ch == '\n' {
		con.Print(string(rune(ch)))
	}

	return
}

// Defines returns the console equates.
func (con *Console) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"DEV_CONSOLE": defineCode(DEVICE_CONSOLE),
	})
}
