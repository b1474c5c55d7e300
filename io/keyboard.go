package io

import (
	"iter"
	"maps"
	"sync/atomic"
)

// Keyboard function bits.
const (
	KEYBOARD_FN_READ  = 1 << 0 // AC = keyboard code.
	KEYBOARD_FN_CLEAR = 1 << 1 // Keyboard code = 0.
	KEYBOARD_FN_SKIP  = 1 << 2 // Skip if a key is held.
)

// Keyboard holds the code of the key currently down, or 0 when idle.
// The host sets and clears it from its own goroutine; the core never
// clears it except on a KEYBOARD_FN_CLEAR transfer or a reset.
type Keyboard struct {
	code atomic.Uint32
}

var _ Device = (*Keyboard)(nil)

// Set the keyboard code. Zero means no key.
func (kb *Keyboard) Set(code uint16) {
	kb.code.Store(uint32(code))
}

// Get the keyboard code.
func (kb *Keyboard) Get() uint16 {
	return uint16(kb.code.Load())
}

// Pending is true if a key is down.
func (kb *Keyboard) Pending() bool {
	return kb.code.Load() != 0
}

// Reset clears any key.
func (kb *Keyboard) Reset() {
	kb.code.Store(0)
}

// Transfer executes the keyboard IOT functions in read, clear, skip order.
func (kb *Keyboard) Transfer(fn uint16, ac uint16) (out uint16, skip bool) {
	out = ac
	if (fn & KEYBOARD_FN_READ) != 0 {
		out = kb.Get()
	}
	if (fn & KEYBOARD_FN_CLEAR) != 0 {
		kb.code.Store(0)
	}
	if (fn&KEYBOARD_FN_SKIP) != 0 && kb.Pending() {
		skip = true
	}

	return
}

// Defines returns the keyboard equates.
func (kb *Keyboard) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"DEV_KEYBOARD": defineCode(DEVICE_KEYBOARD),
		"KBD_READ":     defineCode(KEYBOARD_FN_READ),
		"KBD_CLEAR":    defineCode(KEYBOARD_FN_CLEAR),
		"KBD_SKIP":     defineCode(KEYBOARD_FN_SKIP),
	})
}
