// Package display implements the PDS-1 display processor: a second
// instruction unit sharing core memory with the main processor, whose only
// effect is to append line and point primitives to a display list.
package display

import (
	"fmt"
	"log"

	"github.com/ezrec/pds1/memory"
)

// Power-on register values.
const (
	RESET_X         = 512
	RESET_Y         = 512
	RESET_INTENSITY = 7
	RESET_SCALE     = 1.0

	MIN_BRIGHTNESS = 0.05 // Dimmest visible primitive.
)

// Scale factors selected by DVSF.
var _scale = [4]float32{0.25, 0.5, 1.0, 2.0}

// Processor is the simulation context for the display processor.
type Processor struct {
	Verbose bool // Set to enable verbose logging.

	Memory *memory.Memory // Shared core memory.
	List   *List          // Display list receiving primitives.

	Pc        uint16  // Program counter.
	Ac        uint16  // Accumulator, only reachable from the main processor.
	X, Y      int     // Beam position, 0..1023.
	Halt      bool    // Halted.
	Enabled   bool    // Enabled by the main processor.
	Intensity int     // Beam intensity, 0..7.
	Scale     float32 // Vector scale factor.
	Stack     Stack   // Return address stack.

	StackDropped int    // Subroutine calls that found the stack full.
	Ticks        uint64 // Instructions executed since reset.
}

// NewProcessor creates a display processor on shared memory and list.
func NewProcessor(mem *memory.Memory, list *List) (dp *Processor) {
	dp = &Processor{
		Memory: mem,
		List:   list,
	}

	dp.Reset()

	return
}

// Reset the display processor registers. Memory and the list are untouched.
func (dp *Processor) Reset() {
	if dp.Verbose {
		log.Printf("dp: reset")
	}

	dp.Pc = memory.ORIGIN_DP
	dp.Ac = 0
	dp.X = RESET_X
	dp.Y = RESET_Y
	dp.Halt = false
	dp.Enabled = true
	dp.Intensity = RESET_INTENSITY
	dp.Scale = RESET_SCALE
	dp.Stack.Reset()
	dp.StackDropped = 0
	dp.Ticks = 0
}

// Running is true if a Tick would execute an instruction.
func (dp *Processor) Running() bool {
	return dp.Enabled && !dp.Halt
}

// Brightness of emitted primitives at the current intensity.
func (dp *Processor) Brightness() float32 {
	bright := float32(dp.Intensity) / 7.0
	if bright < MIN_BRIGHTNESS {
		bright = MIN_BRIGHTNESS
	}
	return bright
}

// String returns the current register state as a string.
func (dp *Processor) String() (text string) {
	regs := []string{"pc", "ac", "x", "y", "int", "scale", "stack", "state"}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%03X", dp.Pc)
		case "ac":
			strval = fmt.Sprintf("%04X", dp.Ac)
		case "x":
			strval = fmt.Sprintf("%d", dp.X)
		case "y":
			strval = fmt.Sprintf("%d", dp.Y)
		case "int":
			strval = fmt.Sprintf("%d", dp.Intensity)
		case "scale":
			strval = fmt.Sprintf("%v", dp.Scale)
		case "stack":
			val, ok := dp.Stack.Peek()
			if ok {
				strval = fmt.Sprintf("%03X [%d]", val, dp.Stack.Depth())
			} else {
				strval = "---"
			}
		case "state":
			switch {
			case !dp.Enabled:
				strval = "disabled"
			case dp.Halt:
				strval = "halt"
			default:
				strval = "run"
			}
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// Tick executes a single display processor instruction, if enabled and
// not halted.
func (dp *Processor) Tick() {
	if !dp.Running() {
		return
	}

	code := Code(dp.Memory.Read(dp.Pc))
	if dp.Verbose {
		log.Printf("dp %03x: %v", dp.Pc, code)
	}
	dp.Pc = (dp.Pc + 1) & memory.ADDR_MASK
	dp.Ticks++

	_execute[code.Op()](dp, code)
}

// _execute is indexed by opcode; every entry must be populated.
var _execute = [16]func(dp *Processor, code Code){
	DP_OP_DOPR: (*Processor).doIntensityPattern,
	DP_OP_DLXA: (*Processor).doLoadX,
	DP_OP_DLYA: (*Processor).doLoadY,
	DP_OP_DSVH: (*Processor).doShortVector,
	DP_OP_DLVH: (*Processor).doLongVector,
	DP_OP_DJMP: (*Processor).doJump,
	DP_OP_DJMS: (*Processor).doCall,
	DP_OP_DPTS: (*Processor).doPoint,
	DP_OP_DHLT: (*Processor).doHaltOrReturn,
	DP_OP_DEIM: (*Processor).doIntensity,
	DP_OP_DVSF: (*Processor).doScale,
	DP_OP_DRJM: (*Processor).doReturn,
	DP_OP_DLXB: (*Processor).doLoadX,
	DP_OP_DLYB: (*Processor).doLoadY,
	DP_OP_DXYA: (*Processor).doLoadXY,
	DP_OP_DSTP: (*Processor).doHalt,
}

func (dp *Processor) doIntensityPattern(code Code) {
	if (code & DP_INT_PATTERN) == DP_INT_PATTERN {
		dp.Intensity = int(code & DP_INTENSITY)
	}
}

func (dp *Processor) doLoadX(code Code) {
	dp.X = int(code.Addr()) & DP_COORD_MASK
}

func (dp *Processor) doLoadY(code Code) {
	dp.Y = int(code.Addr()) & DP_COORD_MASK
}

func (dp *Processor) doLoadXY(code Code) {
	dp.X = int((code >> 6) & 0x1f)
	dp.Y = int(code & 0x1f)
}

// vector draws from the beam position by dx, dy, wrapping at the screen edge.
func (dp *Processor) vector(dx, dy int) {
	nx := (dp.X + dx) & DP_COORD_MASK
	ny := (dp.Y + dy) & DP_COORD_MASK
	dp.List.Line(dp.X, dp.Y, nx, ny, dp.Brightness())
	dp.X = nx
	dp.Y = ny
}

func (dp *Processor) doShortVector(code Code) {
	dx, dy := code.Delta()
	dp.vector(dx, dy)
}

func (dp *Processor) doLongVector(code Code) {
	dx, dy := code.Delta()
	dp.vector(dx*8, dy*8)
}

func (dp *Processor) doJump(code Code) {
	dp.Pc = code.Addr()
}

func (dp *Processor) doCall(code Code) {
	if !dp.Stack.Push(dp.Pc) {
		dp.StackDropped++
	}
	dp.Pc = code.Addr()
}

// ret pops the return address, halting if there is none.
func (dp *Processor) ret() {
	pc, ok := dp.Stack.Pop()
	if !ok {
		dp.Halt = true
		return
	}
	dp.Pc = pc
}

func (dp *Processor) doReturn(code Code) {
	dp.ret()
}

func (dp *Processor) doHaltOrReturn(code Code) {
	if (code & DP_RETURN) != 0 {
		dp.ret()
	} else {
		dp.Halt = true
	}
}

func (dp *Processor) doPoint(code Code) {
	if (code & DP_PLOT) != 0 {
		dp.List.Point(dp.X, dp.Y, dp.Brightness())
	} else if (code & DP_SET_INT) != 0 {
		dp.Intensity = int(code & DP_INTENSITY)
	}
}

func (dp *Processor) doIntensity(code Code) {
	dp.Intensity = int(code & DP_INTENSITY)
}

func (dp *Processor) doScale(code Code) {
	dp.Scale = _scale[code&0x3]
}

func (dp *Processor) doHalt(code Code) {
	dp.Halt = true
}
