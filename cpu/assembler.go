// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/pds1/memory"
)

// Mnemonic is a fixed assembler opcode pattern.
type Mnemonic struct {
	Name    string // Upper case name.
	Code    uint16 // Base word.
	Operand bool   // Takes an operand, OR'd into the base word.
}

// _mnemonics is the immutable opcode table.
var _mnemonics = []Mnemonic{
	// Main processor, memory reference.
	{"LAW", 0x1000, true},
	{"JMP", 0x2000, true},
	{"DAC", 0x3000, true},
	{"XAM", 0x4000, true},
	{"ISP", 0x5000, true},
	{"ISZ", 0x5000, true},
	{"ADD", 0x6000, true},
	{"AND", 0x7000, true},
	{"LDA", 0x8000, true},
	{"JMS", 0x9000, true},
	{"IOR", 0xB000, true},
	{"RAL", 0xC000, true},
	{"RAR", 0xD000, true},
	{"IOT", 0xE000, true},

	// Main processor, operate group.
	{"HLT", 0xF000 | OPR_HLT, false},
	{"CLA", 0xF000 | OPR_CLA, false},
	{"CLL", 0xF000 | OPR_CLL, false},
	{"CMA", 0xF000 | OPR_CMA, false},
	{"CML", 0xF000 | OPR_CML, false},
	{"IAC", 0xF000 | OPR_IAC, false},
	{"STL", 0xF000 | OPR_STL, false},
	{"SAM", 0xF000 | OPR_SAM, false},
	{"NOP", 0xF000, false},
	{"RAL1", 0xC001, false},
	{"RAR1", 0xD001, false},

	// Main processor, skip group.
	{"SKZ", 0xA000 | SKIP_AC_ZERO, false},
	{"SKP", 0xA000 | SKIP_AC_POSITIVE, false},
	{"SKL", 0xA000 | SKIP_LINK_ZERO, false},
	{"SKK", 0xA000 | SKIP_KEYBOARD, false},
	{"SKD", 0xA000 | SKIP_DP_HALT, false},

	// Display processor.
	{"DLXA", 0x1000, true},
	{"DLYA", 0x2000, true},
	{"DSVH", 0x3000, true},
	{"DLVH", 0x4000, true},
	{"DJMP", 0x5000, true},
	{"DJMS", 0x6000, true},
	{"DPTS", 0x7800, false},
	{"DHLT", 0x8000, false},
	{"DRJM", 0xB000, false},
	{"DEIM", 0x9000, true},
	{"DVSF", 0xA000, true},
}

var _mnemonic_map = func() map[string]Mnemonic {
	out := make(map[string]Mnemonic, len(_mnemonics))
	for _, mn := range _mnemonics {
		out[mn.Name] = mn
	}
	return out
}()

// LookupMnemonic finds a mnemonic, ignoring case.
func LookupMnemonic(name string) (mn Mnemonic, ok bool) {
	mn, ok = _mnemonic_map[strings.ToUpper(name)]
	return
}

// Assembler is a two pass assembler for the PDS-1.
//
// Assembly never fails on bad source: unknown mnemonics are skipped and
// operands that cannot be resolved assemble as 0. Both are counted in the
// resulting Program.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	predefine map[string]string // Predefines
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{strings.ToUpper(equ): value}
	} else {
		asm.predefine[strings.ToUpper(equ)] = value
	}
}

// symbols is the transient state of one assembly.
type symbols struct {
	verbose    bool
	label      map[string]int
	equate     map[string]int
	counting   bool // Count unresolved operands.
	unresolved int
}

var reParen = regexp.MustCompile(`\$\([^\$]*\)`)

// parenEval does compile-time $(...) evaluations
func (sym *symbols) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, val := range sym.equate {
		pred[key] = starlark.MakeInt(val)
	}
	for key, val := range sym.label {
		pred[key] = starlark.MakeInt(val)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = int(st_int64)
	return
}

// expand replaces $(...) expressions with their decimal values.
func (sym *symbols) expand(line string) string {
	return reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, err := sym.parenEval(str[2 : len(str)-1])
		if err != nil {
			if sym.verbose {
				log.Printf("asm: %v", err)
			}
			sym.miss()
			return "0"
		}
		return fmt.Sprintf("%d", value&memory.WORD_MASK)
	})
}

func (sym *symbols) miss() {
	if sym.counting {
		sym.unresolved++
	}
}

// resolve returns the value of an operand token: hex with a 0x prefix, a
// label, an equate, or decimal. Anything else is 0.
func (sym *symbols) resolve(word string) (value int) {
	if strings.HasPrefix(word, "0x") || strings.HasPrefix(word, "0X") {
		v64, err := strconv.ParseUint(word[2:], 16, 64)
		if err != nil {
			sym.miss()
			return 0
		}
		return int(v64 & memory.WORD_MASK)
	}

	name := strings.ToUpper(word)
	if addr, ok := sym.label[name]; ok {
		return addr
	}
	if val, ok := sym.equate[name]; ok {
		return val
	}

	v64, err := strconv.ParseInt(word, 10, 64)
	if err != nil {
		if sym.verbose {
			log.Printf("asm: %v", ErrParseValue(word))
		}
		sym.miss()
		return 0
	}

	return int(v64 & memory.WORD_MASK)
}

// splitLine splits on whitespace and commas.
func splitLine(line string) (words []string) {
	return strings.FieldsFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
}

// directive identifies assembler directives.
func directive(word string, names ...string) bool {
	for _, name := range names {
		if strings.EqualFold(word, name) {
			return true
		}
	}
	return false
}

// walk runs one pass over the source. For each line it tracks .ORG,
// .EQU, .DP/.MP and labels, and hands the remaining words to emit, which
// returns the number of words the line occupies.
func (sym *symbols) walk(lines []string, origin int, define bool, emit func(lineno int, addr int, words []string, dp bool) int) (addr int) {
	addr = origin
	dp := false

	for n, text := range lines {
		line := strings.SplitN(text, ";", 2)[0]
		words := splitLine(sym.expand(line))
		if len(words) == 0 {
			continue
		}

		if strings.HasSuffix(words[0], ":") {
			name := strings.ToUpper(strings.TrimSuffix(words[0], ":"))
			if _, dup := sym.label[name]; define && len(name) > 0 && !dup {
				sym.label[name] = addr
			}
			words = words[1:]
			if len(words) == 0 {
				continue
			}
		}

		switch {
		case directive(words[0], ".ORG", "ORG"):
			if len(words) > 1 {
				addr = sym.resolve(words[1])
			}
			continue
		case directive(words[0], ".DP"):
			dp = true
			continue
		case directive(words[0], ".MP"):
			dp = false
			continue
		case directive(words[0], ".EQU"):
			if len(words) > 2 {
				sym.equate[strings.ToUpper(words[1])] = sym.resolve(words[2])
			}
			continue
		}

		addr += emit(n+1, addr, words, dp)
	}

	return
}

// Parse parses an input stream into a Program.
//
// The first pass assigns addresses to labels, the second emits words.
// The only error returned is from reading the input.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	var lines []string

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), math.MaxInt)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	err = scanner.Err()
	if err != nil {
		return
	}

	sym := &symbols{
		verbose: asm.Verbose,
		label:   make(map[string]int, 16),
		equate:  make(map[string]int, len(asm.predefine)),
	}

	for name, text := range asm.predefine {
		sym.equate[name] = sym.resolve(text)
	}

	origin := memory.ORIGIN_MP

	// Pass 1: labels.
	sym.walk(lines, origin, true, func(lineno int, addr int, words []string, dp bool) int {
		if directive(words[0], ".WORD", "DATA") {
			return len(words) - 1
		}
		if _, ok := LookupMnemonic(words[0]); ok {
			return 1
		}
		return 0
	})

	prog = &Program{
		Origin: origin,
		Labels: maps.Clone(sym.label),
	}

	// Pass 2: emit.
	sym.counting = true
	prog.End = sym.walk(lines, origin, false, func(lineno int, addr int, words []string, dp bool) int {
		if asm.Verbose {
			log.Printf("%v: %03x %v", lineno, addr, words)
		}

		var codes []uint16

		if directive(words[0], ".WORD", "DATA") {
			for _, word := range words[1:] {
				if addr+len(codes) >= memory.MEM_SIZE {
					break
				}
				codes = append(codes, uint16(sym.resolve(word)))
			}
		} else {
			mn, ok := LookupMnemonic(words[0])
			if !ok {
				if asm.Verbose {
					log.Printf("asm: line %d: %v", lineno, ErrMnemonic(words[0]))
				}
				prog.Unknown++
				return 0
			}

			code := mn.Code
			if mn.Operand && len(words) > 1 {
				value := uint16(sym.resolve(words[1]))
				if (code & 0xF000) == 0x1000 {
					code |= value & CODE_LITERAL
				} else {
					code |= value & CODE_ADDRESS
				}
			}

			if addr < memory.MEM_SIZE {
				codes = append(codes, code)
			}
		}

		if len(codes) > 0 {
			prog.Opcodes = append(prog.Opcodes, Opcode{
				LineNo:  lineno,
				Address: addr,
				Words:   words,
				Codes:   codes,
				Display: dp,
			})
		}

		return len(codes)
	})

	prog.Unresolved = sym.unresolved

	return
}
