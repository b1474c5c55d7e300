package display

import (
	"fmt"
)

// Op is a display processor opcode, the top four bits of the word.
type Op int

const (
	DP_OP_DOPR = Op(0x0) // dopr
	DP_OP_DLXA = Op(0x1) // dlxa
	DP_OP_DLYA = Op(0x2) // dlya
	DP_OP_DSVH = Op(0x3) // dsvh
	DP_OP_DLVH = Op(0x4) // dlvh
	DP_OP_DJMP = Op(0x5) // djmp
	DP_OP_DJMS = Op(0x6) // djms
	DP_OP_DPTS = Op(0x7) // dpts
	DP_OP_DHLT = Op(0x8) // dhlt
	DP_OP_DEIM = Op(0x9) // deim
	DP_OP_DVSF = Op(0xA) // dvsf
	DP_OP_DRJM = Op(0xB) // drjm
	DP_OP_DLXB = Op(0xC) // dlxb
	DP_OP_DLYB = Op(0xD) // dlyb
	DP_OP_DXYA = Op(0xE) // dxya
	DP_OP_DSTP = Op(0xF) // dstp
)

var _op_names = [16]string{
	"dopr", "dlxa", "dlya", "dsvh", "dlvh", "djmp", "djms", "dpts",
	"dhlt", "deim", "dvsf", "drjm", "dlxb", "dlyb", "dxya", "dstp",
}

func (op Op) String() string {
	if op < 0 || int(op) >= len(_op_names) {
		return fmt.Sprintf("Op(%d)", int(op))
	}
	return _op_names[op]
}

// Word field masks.
const (
	DP_ADDR_MASK   = 0x0FFF // Address field.
	DP_COORD_MASK  = 0x03FF // X/Y are 10 bit.
	DP_INTENSITY   = 0x0007 // Intensity field.
	DP_DX_NEGATIVE = 0x0800 // Vector dx sign.
	DP_DY_NEGATIVE = 0x0020 // Vector dy sign.
	DP_RETURN      = 0x0800 // DHLT: return instead of halt.
	DP_PLOT        = 0x0800 // DPTS: plot a point.
	DP_SET_INT     = 0x0010 // DPTS: set intensity.
	DP_INT_PATTERN = 0x0E00 // DOPR: intensity set pattern.
)

// Code is a single display processor instruction word.
type Code uint16

// Op returns the opcode.
func (code Code) Op() Op {
	return Op((code >> 12) & 0xf)
}

// Addr returns the 12-bit address field.
func (code Code) Addr() uint16 {
	return uint16(code) & DP_ADDR_MASK
}

// Delta decodes the signed 5-bit dx, dy fields of a vector instruction.
func (code Code) Delta() (dx, dy int) {
	dx = int((code >> 6) & 0x1f)
	dy = int(code & 0x1f)
	if (code & DP_DX_NEGATIVE) != 0 {
		dx = -dx
	}
	if (code & DP_DY_NEGATIVE) != 0 {
		dy = -dy
	}
	return
}

// String returns the disassembly of the word.
func (code Code) String() string {
	op := code.Op()
	switch op {
	case DP_OP_DLXA, DP_OP_DLYA, DP_OP_DJMP, DP_OP_DJMS, DP_OP_DLXB, DP_OP_DLYB:
		return fmt.Sprintf("%v 0x%03X", op, code.Addr())
	case DP_OP_DSVH, DP_OP_DLVH:
		dx, dy := code.Delta()
		return fmt.Sprintf("%v %+d,%+d", op, dx, dy)
	case DP_OP_DXYA:
		return fmt.Sprintf("%v %d,%d", op, int((code>>6)&0x1f), int(code&0x1f))
	case DP_OP_DEIM:
		return fmt.Sprintf("%v %d", op, int(code&DP_INTENSITY))
	case DP_OP_DVSF:
		return fmt.Sprintf("%v %v", op, _scale[code&0x3])
	}
	return fmt.Sprintf("%v 0x%03X", op, uint16(code)&0xfff)
}
