// Package memory implements the 4096 word core store shared by the main
// processor, the display processor and the assembler.
package memory

import (
	"fmt"
)

// Memory is the core store. Addresses are masked to 12 bits, values to 16.
type Memory [MEM_SIZE]uint16

// Read returns the word at addr.
func (mem *Memory) Read(addr uint16) uint16 {
	return mem[addr&ADDR_MASK]
}

// Write stores value at addr.
func (mem *Memory) Write(addr uint16, value uint16) {
	mem[addr&ADDR_MASK] = value & WORD_MASK
}

// Clear zeros the entire store.
func (mem *Memory) Clear() {
	clear(mem[:])
}

// Dump returns a hex dump of count words starting at addr, eight words per
// line. The range wraps at the end of memory.
func (mem *Memory) Dump(addr uint16, count int) (text string) {
	for n := range count {
		at := (addr + uint16(n)) & ADDR_MASK
		if n%8 == 0 {
			if n != 0 {
				text += "\n"
			}
			text += fmt.Sprintf("%03X:", at)
		}
		text += fmt.Sprintf(" %04X", mem[at])
	}
	if count > 0 {
		text += "\n"
	}

	return
}
