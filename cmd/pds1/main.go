// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Command pds1 assembles and runs programs on the PDS-1 simulator.
package main

import (
	"github.com/alecthomas/kong"

	"github.com/ezrec/pds1/translate"
)

var f = translate.From

// Globals are flags shared by every command.
type Globals struct {
	Verbose bool `short:"v" help:"Verbose logging."`
}

func main() {
	var cli struct {
		Globals

		Asm asmCmd `cmd:"" help:"Assemble a source file, print its listing and write a memory image."`
		Run runCmd `cmd:"" help:"Run a program headless, printing console output."`
	}

	ctx := kong.Parse(&cli,
		kong.Name("pds1"),
		kong.Description(f("PDS-1 dual processor simulator.")),
		kong.UsageOnError(),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
