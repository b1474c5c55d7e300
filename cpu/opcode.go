package cpu

import (
	"fmt"
	"strings"
)

// CodeOp is a main processor opcode, the top four bits of the word.
type CodeOp int

const (
	OP_NOP = CodeOp(0x0) // nop
	OP_LAW = CodeOp(0x1) // law
	OP_JMP = CodeOp(0x2) // jmp
	OP_DAC = CodeOp(0x3) // dac
	OP_XAM = CodeOp(0x4) // xam
	OP_ISZ = CodeOp(0x5) // isz
	OP_ADD = CodeOp(0x6) // add
	OP_AND = CodeOp(0x7) // and
	OP_LDA = CodeOp(0x8) // lda
	OP_JMS = CodeOp(0x9) // jms
	OP_SKP = CodeOp(0xA) // skp
	OP_IOR = CodeOp(0xB) // ior
	OP_RAL = CodeOp(0xC) // ral
	OP_RAR = CodeOp(0xD) // rar
	OP_IOT = CodeOp(0xE) // iot
	OP_OPR = CodeOp(0xF) // opr
)

var _op_names = [16]string{
	"nop", "law", "jmp", "dac", "xam", "isz", "add", "and",
	"lda", "jms", "skp", "ior", "ral", "rar", "iot", "opr",
}

func (op CodeOp) String() string {
	if op < 0 || int(op) >= len(_op_names) {
		return fmt.Sprintf("CodeOp(%d)", int(op))
	}
	return _op_names[op]
}

// Word field masks.
const (
	CODE_INDIRECT = 0x0800 // Indirect address / negative literal.
	CODE_LITERAL  = 0x07FF // LAW literal.
	CODE_ADDRESS  = 0x0FFF // Memory reference address; includes CODE_INDIRECT.
	CODE_COUNT    = 0x00FF // Rotate count.
)

// Skip group condition bits.
const (
	SKIP_AC_ZERO     = 0x01 // AC == 0
	SKIP_AC_POSITIVE = 0x02 // AC sign bit clear
	SKIP_LINK_ZERO   = 0x04 // Link == 0
	SKIP_KEYBOARD    = 0x08 // Key down
	SKIP_DP_HALT     = 0x10 // Display processor halted
	SKIP_INVERT      = 0x20 // Invert the result
)

// Operate group micro-operation bits, in execution order.
const (
	OPR_HLT = 0x800 // Halt, suppresses all others.
	OPR_CLA = 0x400 // Clear AC.
	OPR_CLL = 0x200 // Clear Link.
	OPR_CMA = 0x100 // Complement AC.
	OPR_CML = 0x080 // Complement Link.
	OPR_IAC = 0x040 // Increment AC, carry into Link.
	OPR_STL = 0x020 // Set Link.
	OPR_SAM = 0x010 // Swap AC with the display processor AC.
	OPR_RAL = 0x008 // Rotate AC left one through Link.
	OPR_RAR = 0x004 // Rotate AC right one through Link.
)

var _skip_names = []struct {
	bit  uint16
	name string
}{
	{SKIP_AC_ZERO, "acz"},
	{SKIP_AC_POSITIVE, "acp"},
	{SKIP_LINK_ZERO, "lz"},
	{SKIP_KEYBOARD, "key"},
	{SKIP_DP_HALT, "dph"},
	{SKIP_INVERT, "not"},
}

var _opr_names = []struct {
	bit  uint16
	name string
}{
	{OPR_HLT, "hlt"},
	{OPR_CLA, "cla"},
	{OPR_CLL, "cll"},
	{OPR_CMA, "cma"},
	{OPR_CML, "cml"},
	{OPR_IAC, "iac"},
	{OPR_STL, "stl"},
	{OPR_SAM, "sam"},
	{OPR_RAL, "ral1"},
	{OPR_RAR, "rar1"},
}

// Code is a single main processor instruction word.
type Code uint16

// Op returns the opcode.
func (code Code) Op() CodeOp {
	return CodeOp((code >> 12) & 0xf)
}

// Indirect returns the indirect flag, bit 11.
func (code Code) Indirect() bool {
	return (code & CODE_INDIRECT) != 0
}

// Address returns the low 12 bits. The indirect flag is part of the
// address, so direct references only reach the first 2K words.
func (code Code) Address() uint16 {
	return uint16(code) & CODE_ADDRESS
}

// Literal returns the LAW literal, negated if the indirect flag is set.
func (code Code) Literal() uint16 {
	value := uint16(code) & CODE_LITERAL
	if code.Indirect() {
		value = -value
	}
	return value
}

// Count returns the rotate count; zero means one.
func (code Code) Count() int {
	count := int(code & CODE_COUNT)
	if count == 0 {
		count = 1
	}
	return count
}

// IotDecode returns the device code and function bits.
func (code Code) IotDecode() (device int, fn uint16) {
	device = int((code >> 6) & 0x3f)
	fn = uint16(code) & 0x3f
	return
}

// bitNames lists the names of the set bits of a group instruction.
func bitNames(code Code, names []struct {
	bit  uint16
	name string
}) string {
	var parts []string
	for _, entry := range names {
		if (uint16(code) & entry.bit) != 0 {
			parts = append(parts, entry.name)
		}
	}
	return strings.Join(parts, " ")
}

// String returns the disassembly of the word.
func (code Code) String() (out string) {
	op := code.Op()

	switch op {
	case OP_NOP:
		out = op.String()
	case OP_LAW:
		if code.Indirect() {
			out = fmt.Sprintf("%v -%d", op, int(code&CODE_LITERAL))
		} else {
			out = fmt.Sprintf("%v %d", op, int(code&CODE_LITERAL))
		}
	case OP_RAL, OP_RAR:
		out = fmt.Sprintf("%v %d", op, code.Count())
	case OP_SKP:
		out = fmt.Sprintf("%v %v", op, bitNames(code, _skip_names))
	case OP_IOT:
		device, fn := code.IotDecode()
		out = fmt.Sprintf("%v %02X.%02X", op, device, fn)
	case OP_OPR:
		out = bitNames(code, _opr_names)
		if len(out) == 0 {
			out = op.String()
		}
	default:
		ind := ""
		if code.Indirect() {
			ind = " i"
		}
		out = fmt.Sprintf("%v%v 0x%03X", op, ind, uint16(code)&0x7ff)
	}

	return strings.TrimSpace(out)
}
