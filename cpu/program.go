package cpu

import (
	"fmt"
	"iter"
	"strings"

	"github.com/ezrec/pds1/display"
	"github.com/ezrec/pds1/memory"
)

// Opcode represents a line of assembled code with its source location and generated words.
type Opcode struct {
	LineNo  int      // Source line number, from 1.
	Address int      // Address of the first word.
	Words   []string // Source tokens, label removed.
	Codes   []uint16 // Generated words.
	Display bool     // Assembled in a .DP section.
}

// Program is the output of one assembler run.
type Program struct {
	Origin  int            // Base origin.
	End     int            // Address after the last word.
	Opcodes []Opcode       // Generated words, in source order.
	Labels  map[string]int // Label addresses, by upper case name.

	Unresolved int // Operands that fell back to 0.
	Unknown    int // Lines skipped for an unknown mnemonic.
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the source line that generated the word at addr.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Address && int(addr) < op.Address+len(op.Codes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr) - op.Address,
			}
			break
		}
	}

	return
}

// Count returns the number of words emitted: end address less the origin.
func (prog *Program) Count() int {
	return prog.End - prog.Origin
}

// Codes iterates over the generated words by address.
func (prog *Program) Codes() iter.Seq2[uint16, uint16] {
	return func(yield func(addr uint16, code uint16) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Codes {
				addr := op.Address + n
				if addr >= memory.MEM_SIZE {
					break
				}
				if !yield(uint16(addr), code) {
					return
				}
			}
		}
	}
}

// Load writes the program into memory, returning the word count.
func (prog *Program) Load(mem *memory.Memory) (count int) {
	for addr, code := range prog.Codes() {
		mem.Write(addr, code)
	}

	return prog.Count()
}

// String returns the program listing.
func (prog *Program) String() string {
	var text strings.Builder

	for _, op := range prog.Opcodes {
		for n, code := range op.Codes {
			var dis string
			if op.Display {
				dis = display.Code(code).String()
			} else {
				dis = Code(code).String()
			}
			src := ""
			if n == 0 {
				src = strings.Join(op.Words, " ")
			}
			fmt.Fprintf(&text, "%03X %04X  %-18s %4d  %v\n", op.Address+n, code, dis, op.LineNo, src)
		}
	}

	return text.String()
}
