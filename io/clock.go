package io

import (
	"iter"
	"maps"
)

// Clock reads a cycle counter into the accumulator, truncated to 16 bits.
type Clock struct {
	Source func() uint64 // Cycle counter source.
}

var _ Device = (*Clock)(nil)

// Reset does nothing, the counter belongs to the processor.
func (clk *Clock) Reset() {
}

// Transfer loads the low 16 bits of the cycle count, whatever the function.
func (clk *Clock) Transfer(fn uint16, ac uint16) (out uint16, skip bool) {
	if clk.Source == nil {
		return 0, false
	}

	return uint16(clk.Source() & 0xffff), false
}

// Defines returns the clock equates.
func (clk *Clock) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"DEV_CLOCK": defineCode(DEVICE_CLOCK),
	})
}
