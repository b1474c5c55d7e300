package emulator

import (
	"bytes"
	"maps"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/pds1/display"
	"github.com/ezrec/pds1/memory"
)

func TestMachine(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()

	assert.False(m.Verbose)
	assert.True(m.Halted())

	snap := m.Snapshot()
	assert.Equal(uint16(memory.ORIGIN_DP), snap.Dp.Pc)
	assert.Equal(display.RESET_X, snap.Dp.X)
	assert.Equal(display.RESET_Y, snap.Dp.Y)
	assert.True(snap.Dp.Enabled)
	assert.False(snap.Dp.Halt)
	assert.Equal(float32(1.0), snap.Dp.Scale)
	assert.Equal(7, snap.Dp.Intensity)

	defines := maps.Collect(m.Defines())
	for _, name := range []string{"ORIGIN_MP", "DEV_KEYBOARD", "DEV_DISPLAY", "DEV_CONSOLE", "DEV_LIGHTPEN", "DEV_CLOCK"} {
		assert.Contains(defines, name)
	}
}

func TestMachine_Reset(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	m.Poke(0x200, 0xBEEF)
	m.Assemble(strings.Join([]string{
		"LOOP: IAC",
		"JMP LOOP",
		".ORG 0x100",
		"DLVH 0x083",
		"DJMP 0x100",
	}, "\n"))

	m.PowerOn()
	m.Start(memory.ORIGIN_MP)
	m.Step(10, 10)
	m.Keyboard.Set(0x8041)

	snap := m.Snapshot()
	assert.NotZero(snap.Mp.Ticks)
	assert.NotZero(snap.Vecs)

	m.Reset()
	first := m.Snapshot()
	m.Reset()
	second := m.Snapshot()

	assert.Equal(first, second)
	assert.True(first.Mp.Halt)
	assert.Equal(uint64(0), first.Mp.Ticks)
	assert.Equal(uint16(0), first.Keyboard)
	assert.Equal(0, first.Vecs)
	assert.Equal(uint16(0xBEEF), m.Peek(0x200))
	assert.Equal(uint16(0xF040), m.Peek(0x050))
}

func TestMachine_Assemble(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()

	count := m.Assemble("START: LAW 5\nADD START\nHLT")
	assert.Equal(3, count)
	assert.Equal(uint16(0x1005), m.Peek(0x050))
	assert.Equal(uint16(0x6050), m.Peek(0x051))
	assert.Equal(uint16(0xF800), m.Peek(0x052))
	assert.Equal(0x050, m.Program().Labels["START"])

	long := m.Assemble("LAW 5\nHLT\n.WORD " + strings.Repeat("1 ", 40000))
	assert.Equal(memory.MEM_SIZE-memory.ORIGIN_MP, long)
	assert.Equal(uint16(0x1005), m.Peek(0x050))
	assert.Equal(uint16(0xF800), m.Peek(0x051))
	assert.Equal(uint16(1), m.Peek(0x052))

	m.Assemble("START: LAW 5\nADD START\nHLT")

	m.Start(memory.ORIGIN_MP)
	assert.True(m.Step(10, 0))

	snap := m.Snapshot()
	assert.Equal(uint16(0x100A), snap.Mp.Ac)
	assert.Equal(uint16(0), snap.Mp.Link)
	assert.Equal(uint64(3), snap.Mp.Ticks)
}

func TestMachine_Console(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	out := &bytes.Buffer{}
	m.Console.Output = out

	m.Assemble(strings.Join([]string{
		"LAW 72",
		"IOT $(DEV_CONSOLE*64+1)",
		"LAW 73",
		"IOT $(DEV_CONSOLE*64+1)",
		"HLT",
	}, "\n"))
	assert.Equal(0, m.Program().Unresolved)

	m.Start(memory.ORIGIN_MP)
	assert.True(m.Step(100, 0))
	assert.Equal("HI[HALT PC=55 AC=49]\n", m.Console.String())
	assert.Equal(m.Console.String(), out.String())
}

func TestMachine_Keyboard(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	m.Assemble(strings.Join([]string{
		"WAIT: SKK",
		"JMP WAIT",
		"IOT $(DEV_KEYBOARD*64+KBD_READ+KBD_CLEAR)",
		"HLT",
	}, "\n"))

	m.PowerOn()
	m.Start(memory.ORIGIN_MP)
	assert.False(m.Step(100, 0))

	m.Keyboard.Set(0x8041)
	assert.True(m.Step(100, 0))
	assert.Equal(uint16(0x8041), m.Snapshot().Mp.Ac)
	assert.Equal(uint16(0), m.Keyboard.Get())
}

func TestMachine_Frame(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	m.Assemble(strings.Join([]string{
		".ORG 0x100",
		".DP",
		"DLXA 100",
		"DLYA 200",
		"DSVH 0x083",
		"DPTS",
		"DHLT",
	}, "\n"))

	m.Reset()
	assert.True(m.Step(0, 10))

	vecs := m.Frame()
	if assert.Len(vecs, 2) {
		assert.Equal(display.Vec{Kind: display.VEC_LINE, X1: 100, Y1: 200, X2: 102, Y2: 203, Brightness: 1.0}, vecs[0])
		assert.Equal(display.Vec{Kind: display.VEC_POINT, X1: 102, Y1: 203, X2: 102, Y2: 203, Brightness: 1.0}, vecs[1])
	}
	assert.Empty(m.Frame())

	snap := m.Snapshot()
	assert.True(snap.Dp.Halt)
	assert.Equal(uint64(5), snap.Dp.Ticks)

	m.MpStep()
	m.DpStep()
	m.DlClear()
	assert.Empty(m.Frame())
}

func TestMachine_Image(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	m.Poke(0, 0x1234)
	m.Poke(1, 0xABCD)

	buf := &bytes.Buffer{}
	assert.NoError(m.SaveImage(buf, 2))
	assert.Equal([]byte{0x12, 0x34, 0xAB, 0xCD}, buf.Bytes())

	o := NewMachine()
	assert.NoError(o.LoadImage(bytes.NewReader(buf.Bytes())))
	assert.Equal(uint16(0x1234), o.Peek(0))
	assert.Equal(uint16(0xABCD), o.Peek(1))

	assert.Error(o.LoadImage(bytes.NewReader([]byte{1, 2, 3})))

	assert.Contains(m.Dump(0, 8), "000: 1234 ABCD")
}

func TestMachine_LightPenClock(t *testing.T) {
	assert := assert.New(t)

	source := strings.Join([]string{
		"IOT $(DEV_LIGHTPEN*64+LPEN_X)",
		"DAC 0x200",
		"IOT $(DEV_LIGHTPEN*64+LPEN_Y)",
		"DAC 0x201",
		"IOT $(DEV_LIGHTPEN*64+LPEN_SKIP)",
		"HLT",
		"IOT $(DEV_CLOCK*64)",
		"HLT",
	}, "\n")

	m := NewMachine()
	m.Assemble(source)
	assert.Equal(0, m.Program().Unresolved)

	// Reset leaves the pen registers alone.
	m.LightPen.Set(300, 700, true)
	m.PowerOn()
	m.Start(memory.ORIGIN_MP)
	assert.True(m.Step(100, 0))

	assert.Equal(uint16(300), m.Peek(0x200))
	assert.Equal(uint16(700), m.Peek(0x201))
	snap := m.Snapshot()
	assert.Equal(uint16(6), snap.Mp.Ac)
	assert.Equal(uint16(0x058), snap.Mp.Pc)
	assert.Equal(uint64(7), snap.Mp.Ticks)

	m.LightPen.Set(1, 2, false)
	m.PowerOn()
	m.Start(memory.ORIGIN_MP)
	assert.True(m.Step(100, 0))

	snap = m.Snapshot()
	assert.Equal(uint16(2), snap.Mp.Ac)
	assert.Equal(uint16(0x056), snap.Mp.Pc)
	assert.Equal(uint64(6), snap.Mp.Ticks)
}
