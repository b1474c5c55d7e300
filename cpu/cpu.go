package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/pds1/display"
	"github.com/ezrec/pds1/io"
	"github.com/ezrec/pds1/memory"
)

var _cpu_defines = map[string]string{
	"MEM_SIZE":  fmt.Sprintf("%d", memory.MEM_SIZE),
	"ORIGIN_MP": fmt.Sprintf("0x%03X", memory.ORIGIN_MP),
	"ORIGIN_DP": fmt.Sprintf("0x%03X", memory.ORIGIN_DP),
}

// Cpu is the simulation context for the main processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory   *memory.Memory     // Shared core memory.
	Display  *display.Processor // Display processor, for SAM and the DP halt skip.
	Keyboard *io.Keyboard       // Keyboard, for the key-down skip.
	Console  *io.Console        // Console, for halt diagnostics.

	Pc   uint16 // Program counter, 12 bits.
	Ac   uint16 // Accumulator.
	Ir   uint16 // Last fetched instruction.
	Link uint16 // Carry / rotate bit, 0 or 1.
	Halt bool   // Halted; Tick does nothing.
	Run  bool   // Running, as seen by the operator.

	Ticks uint64 // Instructions fetched since reset.

	device [io.DEVICE_COUNT]io.Device // IOT devices.
}

// NewCpu creates a halted main processor on shared memory.
func NewCpu(mem *memory.Memory) (cpu *Cpu) {
	cpu = &Cpu{
		Memory: mem,
	}

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the main processor.
// - Clears the registers and the cycle counter.
// - Halts the processor.
// - Resets all attached devices.
//
// Memory is untouched.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Pc = 0
	cpu.Ac = 0
	cpu.Ir = 0
	cpu.Link = 0
	cpu.Halt = true
	cpu.Run = false
	cpu.Ticks = 0

	for _, dev := range cpu.device {
		if dev == nil {
			continue
		}
		dev.Reset()
	}
}

// SetDevice attaches a device to an IOT device code. A nil device detaches.
func (cpu *Cpu) SetDevice(code int, dev io.Device) {
	cpu.device[code&(io.DEVICE_COUNT-1)] = dev
}

// GetDevice gets the device attached to an IOT device code.
func (cpu *Cpu) GetDevice(code int) (dev io.Device, ok bool) {
	if code < 0 || code >= len(cpu.device) {
		return
	}

	dev = cpu.device[code]
	ok = dev != nil
	return
}

// Devices iterates over the attached devices by device code.
func (cpu *Cpu) Devices() iter.Seq2[int, io.Device] {
	return func(yield func(code int, dev io.Device) bool) {
		for code, dev := range cpu.device {
			if dev == nil {
				continue
			}
			if !yield(code, dev) {
				return
			}
		}
	}
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{"pc", "ac", "ir", "link", "state", "ticks"}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%03X", cpu.Pc)
		case "ac":
			strval = fmt.Sprintf("%04X", cpu.Ac)
		case "ir":
			strval = fmt.Sprintf("%04X %v", cpu.Ir, Code(cpu.Ir))
		case "link":
			strval = fmt.Sprintf("%d", cpu.Link)
		case "state":
			strval = "run"
			if cpu.Halt {
				strval = "halt"
			}
		case "ticks":
			strval = fmt.Sprintf("%d", cpu.Ticks)
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// skip advances the program counter over the next instruction.
func (cpu *Cpu) skip() {
	cpu.Pc = (cpu.Pc + 1) & memory.ADDR_MASK
}

// Tick executes a single instruction cycle, unless halted.
func (cpu *Cpu) Tick() {
	if cpu.Halt {
		return
	}

	word := cpu.Memory.Read(cpu.Pc)
	cpu.Ir = word
	if cpu.Verbose {
		log.Printf("cpu %03x: %v", cpu.Pc, Code(word))
	}
	cpu.Pc = (cpu.Pc + 1) & memory.ADDR_MASK
	cpu.Ticks++

	cpu.Execute(Code(word))
}

// Execute executes a single decoded instruction.
func (cpu *Cpu) Execute(code Code) {
	ea := code.Address()
	if code.Indirect() {
		ea = cpu.Memory.Read(ea) & memory.ADDR_MASK
	}

	_execute[code.Op()](cpu, code, ea)
}

// _execute is indexed by opcode; every entry must be populated.
var _execute = [16]func(cpu *Cpu, code Code, ea uint16){
	OP_NOP: func(cpu *Cpu, code Code, ea uint16) {},
	OP_LAW: func(cpu *Cpu, code Code, ea uint16) {
		cpu.Ac = code.Literal()
	},
	OP_JMP: func(cpu *Cpu, code Code, ea uint16) {
		cpu.Pc = ea
	},
	OP_DAC: func(cpu *Cpu, code Code, ea uint16) {
		cpu.Memory.Write(ea, cpu.Ac)
	},
	OP_XAM: func(cpu *Cpu, code Code, ea uint16) {
		tmp := cpu.Memory.Read(ea)
		cpu.Memory.Write(ea, cpu.Ac)
		cpu.Ac = tmp
	},
	OP_ISZ: func(cpu *Cpu, code Code, ea uint16) {
		value := cpu.Memory.Read(ea) + 1
		cpu.Memory.Write(ea, value)
		if (value & 0x8000) == 0 {
			cpu.skip()
		}
	},
	OP_ADD: func(cpu *Cpu, code Code, ea uint16) {
		cpu.Ac, cpu.Link = add(cpu.Ac, cpu.Memory.Read(ea))
	},
	OP_AND: func(cpu *Cpu, code Code, ea uint16) {
		cpu.Ac &= cpu.Memory.Read(ea)
	},
	OP_LDA: func(cpu *Cpu, code Code, ea uint16) {
		cpu.Ac = cpu.Memory.Read(ea)
	},
	OP_JMS: func(cpu *Cpu, code Code, ea uint16) {
		cpu.Memory.Write(ea, cpu.Pc)
		cpu.Pc = (ea + 1) & memory.ADDR_MASK
	},
	OP_SKP: (*Cpu).doSkip,
	OP_IOR: func(cpu *Cpu, code Code, ea uint16) {
		cpu.Ac |= cpu.Memory.Read(ea)
	},
	OP_RAL: func(cpu *Cpu, code Code, ea uint16) {
		for range code.Count() {
			cpu.Ac, cpu.Link = rotateLeft(cpu.Ac, cpu.Link)
		}
	},
	OP_RAR: func(cpu *Cpu, code Code, ea uint16) {
		for range code.Count() {
			cpu.Ac, cpu.Link = rotateRight(cpu.Ac, cpu.Link)
		}
	},
	OP_IOT: (*Cpu).doIot,
	OP_OPR: (*Cpu).doOperate,
}

// add returns the 16-bit sum and its carry.
func add(a, b uint16) (sum uint16, carry uint16) {
	wide := uint32(a) + uint32(b)
	return uint16(wide), uint16((wide >> 16) & 1)
}

// rotateLeft rotates the 17 bits of link:ac left by one.
func rotateLeft(ac, link uint16) (uint16, uint16) {
	return (ac << 1) | (link & 1), (ac >> 15) & 1
}

// rotateRight rotates the 17 bits of ac:link right by one.
func rotateRight(ac, link uint16) (uint16, uint16) {
	return (ac >> 1) | ((link & 1) << 15), ac & 1
}

// doSkip evaluates the skip group conditions.
func (cpu *Cpu) doSkip(code Code, ea uint16) {
	cond := uint16(code)
	var skip bool

	if (cond & SKIP_AC_ZERO) != 0 {
		skip = skip || cpu.Ac == 0
	}
	if (cond & SKIP_AC_POSITIVE) != 0 {
		skip = skip || (cpu.Ac&0x8000) == 0
	}
	if (cond & SKIP_LINK_ZERO) != 0 {
		skip = skip || cpu.Link == 0
	}
	if (cond & SKIP_KEYBOARD) != 0 {
		skip = skip || (cpu.Keyboard != nil && cpu.Keyboard.Pending())
	}
	if (cond & SKIP_DP_HALT) != 0 {
		skip = skip || (cpu.Display != nil && cpu.Display.Halt)
	}
	if (cond & SKIP_INVERT) != 0 {
		skip = !skip
	}

	if skip {
		cpu.skip()
	}
}

// doIot transfers to the addressed device. Unattached devices are ignored.
func (cpu *Cpu) doIot(code Code, ea uint16) {
	device, fn := code.IotDecode()

	dev := cpu.device[device]
	if dev == nil {
		if cpu.Verbose {
			log.Printf("cpu: iot to unattached device %02x", device)
		}
		return
	}

	ac, skip := dev.Transfer(fn, cpu.Ac)
	cpu.Ac = ac
	if skip {
		cpu.skip()
	}
}

// doOperate applies the operate group micro-operations in order.
func (cpu *Cpu) doOperate(code Code, ea uint16) {
	bits := uint16(code)

	if (bits & OPR_HLT) != 0 {
		cpu.Halt = true
		cpu.Run = false
		if cpu.Console != nil {
			cpu.Console.Print(fmt.Sprintf("[HALT PC=%X AC=%X]\n", cpu.Pc, cpu.Ac))
		}
		if cpu.Verbose {
			log.Printf("cpu: halt at %03x", cpu.Pc)
		}
		return
	}

	if (bits & OPR_CLA) != 0 {
		cpu.Ac = 0
	}
	if (bits & OPR_CLL) != 0 {
		cpu.Link = 0
	}
	if (bits & OPR_CMA) != 0 {
		cpu.Ac = ^cpu.Ac
	}
	if (bits & OPR_CML) != 0 {
		cpu.Link ^= 1
	}
	if (bits & OPR_IAC) != 0 {
		cpu.Ac, cpu.Link = add(cpu.Ac, 1)
	}
	if (bits & OPR_STL) != 0 {
		cpu.Link = 1
	}
	if (bits&OPR_SAM) != 0 && cpu.Display != nil {
		cpu.Ac, cpu.Display.Ac = cpu.Display.Ac, cpu.Ac
	}
	if (bits & OPR_RAL) != 0 {
		cpu.Ac, cpu.Link = rotateLeft(cpu.Ac, cpu.Link)
	}
	if (bits & OPR_RAR) != 0 {
		cpu.Ac, cpu.Link = rotateRight(cpu.Ac, cpu.Link)
	}
}
