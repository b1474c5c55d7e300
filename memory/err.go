package memory

import (
	"errors"

	"github.com/ezrec/pds1/translate"
)

var f = translate.From

var (
	// Image errors
	ErrImageOdd   = errors.New(f("image has an odd number of bytes"))
	ErrImageLarge = errors.New(f("image exceeds %d words", MEM_SIZE))
)

// ErrImage records where in an image an error was found.
type ErrImage struct {
	Word int
	Err  error
}

func (err *ErrImage) Error() string {
	return f("image word %d: %v", err.Word, err.Err)
}

func (err *ErrImage) Unwrap() error {
	return err.Err
}
