// Package io provides the devices attached to the main processor's IOT bus:
// the keyboard, the light pen, the console printer and the cycle clock.
// Devices are addressed by a 6-bit device code and operated on with 6 bits
// of function code.
package io

import (
	"fmt"
	"iter"
)

// IOT device codes.
const (
	DEVICE_KEYBOARD = 0x01 // Keyboard.
	DEVICE_DISPLAY  = 0x02 // Display processor control.
	DEVICE_CONSOLE  = 0x04 // Console printer.
	DEVICE_LIGHTPEN = 0x10 // Light pen.
	DEVICE_CLOCK    = 0x20 // Cycle counter.

	DEVICE_COUNT = 64 // Size of the device code space.
)

// Device defines the interface for everything attached to the IOT bus.
type Device interface {
	// Reset returns the device to its power-on state.
	Reset()
	// Transfer performs the function bits against the accumulator. It
	// returns the new accumulator value, and whether the processor
	// should skip the next instruction.
	Transfer(fn uint16, ac uint16) (out uint16, skip bool)
	// Defines returns the assembler equates describing the device.
	Defines() iter.Seq2[string, string]
}

// Iot encodes an IOT instruction word for a device and function.
func Iot(device int, fn uint16) uint16 {
	return 0xE000 | (uint16(device&0x3f) << 6) | (fn & 0x3f)
}

// defineCode formats a device or function code for the assembler.
func defineCode(value int) string {
	return fmt.Sprintf("0x%02X", value)
}
