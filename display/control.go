package display

import (
	"iter"
	"maps"

	"github.com/ezrec/pds1/io"
	"github.com/ezrec/pds1/memory"
)

// Display control function bits.
const (
	CONTROL_FN_TOGGLE = 1 << 0 // Toggle the enable flag.
	CONTROL_FN_START  = 1 << 1 // Start at AC.
	CONTROL_FN_STOP   = 1 << 2 // Halt.
)

// Control attaches a display processor to the main processor's IOT bus.
type Control struct {
	Processor *Processor
}

var _ io.Device = (*Control)(nil)

// Reset does nothing; the display processor is reset with the machine.
func (ctl *Control) Reset() {
}

// Transfer applies toggle, start and stop, in that order.
func (ctl *Control) Transfer(fn uint16, ac uint16) (out uint16, skip bool) {
	out = ac

	dp := ctl.Processor
	if dp == nil {
		return
	}

	if (fn & CONTROL_FN_TOGGLE) != 0 {
		dp.Enabled = !dp.Enabled
	}
	if (fn & CONTROL_FN_START) != 0 {
		dp.Halt = false
		dp.Pc = ac & memory.ADDR_MASK
	}
	if (fn & CONTROL_FN_STOP) != 0 {
		dp.Halt = true
	}

	return
}

// Defines returns the display control equates.
func (ctl *Control) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"DEV_DISPLAY": "0x02",
		"DPY_TOGGLE":  "0x01",
		"DPY_START":   "0x02",
		"DPY_STOP":    "0x04",
	})
}
