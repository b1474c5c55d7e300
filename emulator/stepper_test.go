package emulator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/errgroup"

	"github.com/ezrec/pds1/memory"
)

func TestStepper_Stop(t *testing.T) {
	assert := assert.New(t)

	st := NewStepper(NewMachine())
	st.Stop()
	st.Stop()

	assert.NoError(st.Run(context.Background()))
	assert.NoError(st.Run(context.Background()))
}

func TestStepper_Cancel(t *testing.T) {
	assert := assert.New(t)

	st := NewStepper(NewMachine())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(st.Run(ctx), context.Canceled)
}

func TestStepper_Halt(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	m.Assemble("LAW 1\nHLT")
	m.Start(memory.ORIGIN_MP)

	st := NewStepper(m)
	st.StopOnHalt = true

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	assert.ErrorIs(st.Run(ctx), ErrHalted)
	assert.Equal(uint16(1), m.Snapshot().Mp.Ac)
}

func TestStepper_Concurrent(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	m.Assemble(strings.Join([]string{
		"LOOP: SKK",
		"JMP LOOP",
		"IOT $(DEV_KEYBOARD*64+KBD_READ+KBD_CLEAR)",
		"JMP LOOP",
		".ORG 0x100",
		".DP",
		"DRAW: DLXA 0",
		"DLYA 0",
		"DLVH 0x7DF",
		"DPTS",
		"DJMP DRAW",
	}, "\n"))
	m.PowerOn()
	m.Start(memory.ORIGIN_MP)

	st := NewStepper(m)
	st.Tick = 100 * time.Microsecond

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grp, ctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		return st.Run(ctx)
	})

	frames := 0
	grp.Go(func() error {
		defer st.Stop()
		for frames < 20 {
			for _, vec := range m.Frame() {
				assert.True(vec.X1 >= 0 && vec.X1 < 1024 && vec.Y1 >= 0 && vec.Y1 < 1024, vec.String())
				assert.True(vec.X2 >= 0 && vec.X2 < 1024 && vec.Y2 >= 0 && vec.Y2 < 1024, vec.String())
			}
			frames++
			time.Sleep(time.Millisecond)
		}
		return nil
	})

	grp.Go(func() error {
		for range 20 {
			m.Keyboard.Set(0x8000 | 'A')
			m.LightPen.Set(10, 20, true)
			time.Sleep(500 * time.Microsecond)
		}
		return nil
	})

	assert.NoError(grp.Wait())
	assert.Equal(20, frames)
	assert.False(m.Halted())

	st.Stop()
}

func TestStepper_ZeroValue(t *testing.T) {
	assert := assert.New(t)

	st := &Stepper{Machine: NewMachine()}
	assert.NotPanics(st.Stop)
	assert.NotPanics(st.Stop)
	assert.NoError(st.Run(context.Background()))

	st = &Stepper{Machine: NewMachine()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(st.Run(ctx), context.Canceled)
	st.Stop()
}
