package emulator

import (
	"errors"

	"github.com/ezrec/pds1/translate"
)

var f = translate.From

var (
	ErrHalted = errors.New(f("main processor halted"))
)
