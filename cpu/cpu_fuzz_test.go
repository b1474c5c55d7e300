package cpu

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/pds1/display"
	"github.com/ezrec/pds1/io"
)

func FuzzCpu(f *testing.F) {
	for op := range 0x10 {
		f.Add(uint16(op<<12), uint16(0), false)
		f.Add(uint16(op<<12)|0x0fff, uint16(0xffff), true)
		f.Add(uint16(op<<12)|0x0800, uint16(0x8000), false)
	}

	f.Fuzz(func(t *testing.T, word uint16, ac uint16, link bool) {
		assert := assert.New(t)

		cpu := newTestCpu(word)
		cpu.SetDevice(io.DEVICE_KEYBOARD, cpu.Keyboard)
		cpu.SetDevice(io.DEVICE_CONSOLE, cpu.Console)
		cpu.SetDevice(io.DEVICE_DISPLAY, &display.Control{Processor: cpu.Display})
		cpu.SetDevice(io.DEVICE_LIGHTPEN, &io.LightPen{})
		cpu.SetDevice(io.DEVICE_CLOCK, &io.Clock{Source: func() uint64 { return cpu.Ticks }})
		cpu.Ac = ac
		if link {
			cpu.Link = 1
		}

		cpu.Tick()

		code_str := fmt.Sprintf("0x%04x (%v)\ncpu:%v", word, Code(word), cpu.String())

		assert.LessOrEqual(cpu.Pc, uint16(0xfff), code_str)
		assert.LessOrEqual(cpu.Link, uint16(1), code_str)
		assert.Equal(uint64(1), cpu.Ticks, code_str)
		assert.Equal(word, cpu.Ir, code_str)

		switch Code(word).Op() {
		case OP_JMP, OP_JMS:
		case OP_ISZ, OP_SKP, OP_IOT:
			assert.Contains([]uint16{0x51, 0x52}, cpu.Pc, code_str)
		default:
			assert.Equal(uint16(0x51), cpu.Pc, code_str)
		}

		halted := Code(word).Op() == OP_OPR && (word&OPR_HLT) != 0
		assert.Equal(halted, cpu.Halt, code_str)
	})
}
