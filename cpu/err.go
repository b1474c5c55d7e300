package cpu

import (
	"github.com/ezrec/pds1/translate"
)

var f = translate.From

type ErrMnemonic string

func (err ErrMnemonic) Error() string {
	return f("'%v' is not a mnemonic", string(err))
}

type ErrParseValue string

func (err ErrParseValue) Error() string {
	return f("'%v' is not a value or label", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
