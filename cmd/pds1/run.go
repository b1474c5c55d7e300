package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/bradleyjkemp/memviz"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/ezrec/pds1/emulator"
	"github.com/ezrec/pds1/memory"
)

var (
	ErrNoProgram = errors.New(f("no source file or image given"))
)

type runCmd struct {
	Source string `arg:"" optional:"" type:"existingfile" help:"Assembly source file."`
	Image  string `short:"i" type:"existingfile" help:"Raw memory image to load instead of a source file."`
	Start  uint16 `default:"0x050" help:"Main processor start address."`

	MpSteps  int           `default:"500" help:"Main processor instructions per batch."`
	DpSteps  int           `default:"50" help:"Display processor instructions per batch."`
	Tick     time.Duration `default:"1ms" help:"Interval between batches."`
	Frame    time.Duration `default:"16ms" help:"Interval between display list reads."`
	Frames   int           `default:"0" help:"Stop after this many frames; 0 runs until halt or interrupt."`
	Vectors  bool          `help:"Print the display list of every frame."`
	Debounce time.Duration `default:"100ms" help:"How long a key stays down after it is typed."`

	Statsview string `placeholder:"ADDR" help:"Serve runtime statistics at this address."`
	Memviz    string `type:"path" help:"Write a graphviz dump of the final registers to this file."`
}

// load loads the image or source into the machine.
func (cmd *runCmd) load(m *emulator.Machine) (err error) {
	switch {
	case len(cmd.Image) != 0:
		var inf *os.File
		inf, err = os.Open(cmd.Image)
		if err != nil {
			return
		}
		defer inf.Close()
		err = m.LoadImage(inf)
		if err != nil {
			err = fmt.Errorf("%v: %w", cmd.Image, err)
		}
	case len(cmd.Source) != 0:
		prog, err := assembleFile(m, cmd.Source)
		if err != nil {
			return err
		}
		m.Load(prog)
	default:
		err = ErrNoProgram
	}

	return
}

// finish writes the optional register dump, keeping any run error.
func (cmd *runCmd) finish(m *emulator.Machine, runErr error) error {
	if len(cmd.Memviz) == 0 {
		return runErr
	}

	return errors.Join(runErr, cmd.dump(m))
}

// dump writes a graphviz dump of the machine registers.
func (cmd *runCmd) dump(m *emulator.Machine) (err error) {
	ouf, err := os.Create(cmd.Memviz)
	if err != nil {
		return
	}
	defer ouf.Close()

	snap := m.Snapshot()
	memviz.Map(ouf, &snap)

	return
}

// frames reads and clears the display list at the frame rate.
func (cmd *runCmd) frames(ctx context.Context, m *emulator.Machine, output io.Writer) (err error) {
	ticker := time.NewTicker(cmd.Frame)
	defer ticker.Stop()

	for frame := 1; ; frame++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		vecs := m.Frame()
		if cmd.Vectors {
			fmt.Fprintln(output, f("frame %d: %d vectors", frame, len(vecs)))
			for _, vec := range vecs {
				fmt.Fprintf(output, "  %v\n", vec)
			}
		}

		if cmd.Frames > 0 && frame >= cmd.Frames {
			return nil
		}
	}
}

// keyboard feeds typed keys into the keyboard register. A key stays down
// until the debounce interval passes with no further typing.
func keyboard(ctx context.Context, m *emulator.Machine, input io.Reader, debounce time.Duration) {
	keys := make(chan byte)
	go func() {
		defer close(keys)
		buf := make([]byte, 1)
		for {
			n, err := input.Read(buf)
			if err != nil {
				return
			}
			if n == 0 {
				continue
			}
			select {
			case keys <- buf[0]:
			case <-ctx.Done():
				return
			}
		}
	}()

	up := time.NewTimer(debounce)
	up.Stop()
	defer up.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case key, ok := <-keys:
			if !ok {
				return
			}
			m.Keyboard.Set(0x8000 | uint16(key))
			up.Reset(debounce)
		case <-up.C:
			m.Keyboard.Set(0)
		}
	}
}

func (cmd *runCmd) Run(globals *Globals) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := emulator.NewMachine()
	m.Verbose = globals.Verbose
	m.Console.Output = os.Stdout

	err = cmd.load(m)
	if err != nil {
		return
	}

	if len(cmd.Statsview) != 0 {
		launchStatsview(cmd.Statsview, os.Stderr)
	}

	m.PowerOn()
	m.Start(cmd.Start & memory.ADDR_MASK)

	st := emulator.NewStepper(m)
	st.MpSteps = cmd.MpSteps
	st.DpSteps = cmd.DpSteps
	st.Tick = cmd.Tick
	st.StopOnHalt = true

	grp, ctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		return st.Run(ctx)
	})

	grp.Go(func() error {
		defer st.Stop()
		return cmd.frames(ctx, m, os.Stdout)
	})

	stdin := int(os.Stdin.Fd())
	if term.IsTerminal(stdin) {
		restore, err := rawMode(os.Stdin)
		if err != nil {
			log.Print(err)
		} else {
			defer restore()
		}
		go keyboard(ctx, m, os.Stdin, cmd.Debounce)
	}

	err = grp.Wait()
	if errors.Is(err, emulator.ErrHalted) || errors.Is(err, context.Canceled) {
		err = nil
	}

	if globals.Verbose {
		log.Printf("registers:\n%v", m.String())
	}

	return cmd.finish(m, err)
}
