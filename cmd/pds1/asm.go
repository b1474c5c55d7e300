package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ezrec/pds1/cpu"
	"github.com/ezrec/pds1/emulator"
)

type asmCmd struct {
	Source  string `arg:"" type:"existingfile" help:"Assembly source file."`
	Image   string `short:"o" type:"path" help:"Write the raw memory image to this file."`
	Listing bool   `short:"l" help:"Print the program listing."`
}

// assembleFile parses a source file with the machine predefines.
func assembleFile(m *emulator.Machine, path string) (prog *cpu.Program, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	prog, err = m.Assembler().Parse(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
	}

	return
}

func (cmd *asmCmd) Run(globals *Globals) (err error) {
	m := emulator.NewMachine()
	m.Verbose = globals.Verbose

	prog, err := assembleFile(m, cmd.Source)
	if err != nil {
		return
	}

	count := m.Load(prog)

	if cmd.Listing {
		fmt.Print(prog.String())
	}

	if prog.Unresolved != 0 || prog.Unknown != 0 {
		log.Print(f("%v: %d unresolved operands, %d unknown mnemonics", cmd.Source, prog.Unresolved, prog.Unknown))
	}
	fmt.Fprintln(os.Stderr, f("%v: %d words", cmd.Source, count))

	if len(cmd.Image) != 0 {
		var ouf *os.File
		ouf, err = os.Create(cmd.Image)
		if err != nil {
			return
		}
		defer ouf.Close()

		err = m.SaveImage(ouf, prog.End)
		if err != nil {
			return
		}
	}

	return
}
