package emulator

import (
	"context"
	"log"
	"sync"
	"time"
)

// Default stepping cadence.
const (
	MP_STEPS  = 500                  // Main processor instructions per batch.
	DP_STEPS  = 50                   // Display processor instructions per batch.
	STEP_TICK = 1 * time.Millisecond // Interval between batches.
)

// Stepper advances a Machine in batches on a fixed cadence, until
// cancelled or stopped.
type Stepper struct {
	Machine    *Machine
	MpSteps    int           // Main processor instructions per batch.
	DpSteps    int           // Display processor instructions per batch.
	Tick       time.Duration // Interval between batches.
	StopOnHalt bool          // Return ErrHalted when the main processor halts.

	setup sync.Once
	once sync.Once
	stop chan struct{}
}

// done returns the stop channel, creating it on first use.
func (st *Stepper) done() chan struct{} {
	st.setup.Do(func() {
		st.stop = make(chan struct{})
	})
	return st.stop
}

// NewStepper creates a stepper with the default cadence.
func NewStepper(m *Machine) (st *Stepper) {
	st = &Stepper{
		Machine: m,
		MpSteps: MP_STEPS,
		DpSteps: DP_STEPS,
		Tick:    STEP_TICK,
	}

	return
}

// Stop the stepper before its next batch. Safe to call more than once,
// and from any goroutine.
func (st *Stepper) Stop() {
	stop := st.done()
	st.once.Do(func() {
		close(stop)
	})
}

// stopped is true once Stop has been called.
func (st *Stepper) stopped() bool {
	select {
	case <-st.done():
		return true
	default:
		return false
	}
}

// Run steps the machine until the context is done, Stop is called, or the
// main processor halts with StopOnHalt set. Returns nil on Stop.
func (st *Stepper) Run(ctx context.Context) (err error) {
	tick := st.Tick
	if tick <= 0 {
		tick = STEP_TICK
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	if st.Machine.Verbose {
		log.Printf("stepper: %d/%d steps every %v", st.MpSteps, st.DpSteps, tick)
	}

	for batch := 0; ; batch++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-st.done():
			return nil
		case <-ticker.C:
		}

		if st.stopped() {
			return nil
		}
		if err = ctx.Err(); err != nil {
			return
		}

		halted := st.Machine.Step(st.MpSteps, st.DpSteps)
		if halted && st.StopOnHalt {
			if st.Machine.Verbose {
				log.Printf("stepper: halted after %d batches", batch+1)
			}
			return ErrHalted
		}
	}
}
