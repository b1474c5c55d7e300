// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	stdio "io"
	"iter"
	"log"
	"slices"
	"strings"
	"sync"

	"github.com/ezrec/pds1/cpu"
	"github.com/ezrec/pds1/display"
	"github.com/ezrec/pds1/internal"
	"github.com/ezrec/pds1/io"
	"github.com/ezrec/pds1/memory"
)

// Machine state. Memory + main processor + display processor + IOT devices.
//
// All methods are safe to call from multiple goroutines: one lock guards
// memory, both processors and the display list. Keyboard and LightPen are
// lock free and may be written directly by an input goroutine.
type Machine struct {
	Verbose bool // If set, enables verbose logging.

	Keyboard io.Keyboard // Keyboard register.
	LightPen io.LightPen // Light pen registers.
	Console  io.Console  // Console output.

	mutex   sync.Mutex
	memory  memory.Memory
	list    display.List
	cpu     *cpu.Cpu
	display *display.Processor
	control display.Control
	clock   io.Clock
	program *cpu.Program
}

// NewMachine creates a new machine, reset and halted, with zeroed memory.
func NewMachine() (m *Machine) {
	m = &Machine{
		program: &cpu.Program{Origin: memory.ORIGIN_MP, End: memory.ORIGIN_MP},
	}

	m.display = display.NewProcessor(&m.memory, &m.list)
	m.control.Processor = m.display

	m.cpu = cpu.NewCpu(&m.memory)
	m.cpu.Display = m.display
	m.cpu.Keyboard = &m.Keyboard
	m.cpu.Console = &m.Console

	m.clock.Source = func() uint64 { return m.cpu.Ticks }

	m.cpu.SetDevice(io.DEVICE_KEYBOARD, &m.Keyboard)
	m.cpu.SetDevice(io.DEVICE_DISPLAY, &m.control)
	m.cpu.SetDevice(io.DEVICE_CONSOLE, &m.Console)
	m.cpu.SetDevice(io.DEVICE_LIGHTPEN, &m.LightPen)
	m.cpu.SetDevice(io.DEVICE_CLOCK, &m.clock)

	return
}

// Defines returns an iterator over all of the assembler predefines: the
// memory layout and the codes of every attached device.
func (m *Machine) Defines() iter.Seq2[string, string] {
	seqs := []iter.Seq2[string, string]{m.cpu.Defines()}
	for _, dev := range m.cpu.Devices() {
		seqs = append(seqs, dev.Defines())
	}

	return internal.IterSeq2Concat(seqs...)
}

// setVerbose propagates the verbose flag. Caller holds the lock.
func (m *Machine) setVerbose() {
	m.cpu.Verbose = m.Verbose
	m.display.Verbose = m.Verbose
}

// Reset both processors, the keyboard, the cycle count and the display list.
// Memory and the console are untouched.
func (m *Machine) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.reset()
}

func (m *Machine) reset() {
	m.setVerbose()
	if m.Verbose {
		log.Printf("emulator: reset")
	}

	m.cpu.Reset()
	m.display.Reset()
	m.list.Clear()
}

// PowerOn resets, then sets the main processor running.
func (m *Machine) PowerOn() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.reset()
	m.cpu.Halt = false
	m.cpu.Run = true
}

// Start sets the main processor running at pc, without a reset.
func (m *Machine) Start(pc uint16) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.setVerbose()
	m.cpu.Pc = pc & memory.ADDR_MASK
	m.cpu.Halt = false
	m.cpu.Run = true
}

// Stop halts the main processor.
func (m *Machine) Stop() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.cpu.Halt = true
	m.cpu.Run = false
}

// Halted is true if the main processor is halted.
func (m *Machine) Halted() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.cpu.Halt
}

// MpStep executes one main processor instruction, unless halted.
func (m *Machine) MpStep() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.cpu.Tick()
}

// DpStep executes one display processor instruction, unless stopped.
func (m *Machine) DpStep() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.display.Tick()
}

// DlClear empties the display list.
func (m *Machine) DlClear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.list.Clear()
}

// Step runs a batch of main processor then display processor
// instructions under a single lock. Returns the main processor halt state.
func (m *Machine) Step(mpSteps, dpSteps int) (halted bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for range mpSteps {
		if m.cpu.Halt {
			break
		}
		m.cpu.Tick()
	}

	for range dpSteps {
		if !m.display.Running() {
			break
		}
		m.display.Tick()
	}

	return m.cpu.Halt
}

// Frame returns the display list in emission order, then clears it.
func (m *Machine) Frame() (vecs []display.Vec) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	vecs = m.list.Copy()
	m.list.Clear()

	return
}

// Ticks returns the main processor cycle count since reset.
func (m *Machine) Ticks() uint64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.cpu.Ticks
}

// Peek reads a word of memory.
func (m *Machine) Peek(addr uint16) uint16 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.memory.Read(addr)
}

// Poke writes a word of memory.
func (m *Machine) Poke(addr uint16, value uint16) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.memory.Write(addr, value)
}

// Assembler returns an assembler with the machine predefines.
func (m *Machine) Assembler() (asm *cpu.Assembler) {
	asm = &cpu.Assembler{Verbose: m.Verbose}
	for name, value := range m.Defines() {
		asm.Predefine(name, value)
	}

	return
}

// Load writes an assembled program into memory, and keeps its listing.
func (m *Machine) Load(prog *cpu.Program) (count int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.program = prog
	count = prog.Load(&m.memory)
	if m.Verbose {
		log.Printf("emulator: loaded %d words, %d unresolved, %d unknown", count, prog.Unresolved, prog.Unknown)
	}

	return
}

// Assemble assembles source text into memory, returning the word count.
func (m *Machine) Assemble(source string) (count int) {
	prog, err := m.Assembler().Parse(strings.NewReader(source))
	if err != nil {
		log.Printf("emulator: %v", err)
		return
	}

	return m.Load(prog)
}

// Program returns the listing of the last loaded program.
func (m *Machine) Program() *cpu.Program {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.program
}

// LoadImage loads a raw big-endian word image into memory from address 0.
func (m *Machine) LoadImage(file stdio.Reader) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.memory.Unmarshal(file)
}

// SaveImage writes count words of memory from address 0 as a raw image.
func (m *Machine) SaveImage(file stdio.Writer, count int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.memory.Marshal(file, count)
}

// Dump returns a hex dump of memory.
func (m *Machine) Dump(addr uint16, count int) string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.memory.Dump(addr, count)
}

// MpRegisters is a copy of the main processor registers.
type MpRegisters struct {
	Pc, Ac, Ir, Link uint16
	Halt, Run        bool
	Ticks            uint64
}

// DpRegisters is a copy of the display processor registers.
type DpRegisters struct {
	Pc, Ac        uint16
	X, Y          int
	Halt, Enabled bool
	Intensity     int
	Scale         float32
	Stack         []uint16
	Ticks         uint64
}

// Snapshot is a consistent copy of the machine registers.
type Snapshot struct {
	Mp       MpRegisters
	Dp       DpRegisters
	Keyboard uint16
	Vecs     int // Primitives in the display list.

	DroppedVecs  int // Primitives dropped by a full display list.
	DroppedCalls int // Display calls dropped by a full return stack.
}

// Snapshot copies the machine registers.
func (m *Machine) Snapshot() (snap Snapshot) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	mp := m.cpu
	snap.Mp = MpRegisters{
		Pc: mp.Pc, Ac: mp.Ac, Ir: mp.Ir, Link: mp.Link,
		Halt: mp.Halt, Run: mp.Run,
		Ticks: mp.Ticks,
	}

	dp := m.display
	snap.Dp = DpRegisters{
		Pc: dp.Pc, Ac: dp.Ac,
		X: dp.X, Y: dp.Y,
		Halt: dp.Halt, Enabled: dp.Enabled,
		Intensity: dp.Intensity,
		Scale:     dp.Scale,
		Stack:     slices.Clone(dp.Stack.Data),
		Ticks:     dp.Ticks,
	}

	snap.Keyboard = m.Keyboard.Get()
	snap.Vecs = m.list.Len()
	snap.DroppedVecs = m.list.Dropped
	snap.DroppedCalls = m.display.StackDropped

	return
}

// String returns the current register state of both processors.
func (m *Machine) String() string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return fmt.Sprintf("mp:\n%vdp:\n%v", m.cpu.String(), m.display.String())
}
