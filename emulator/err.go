package emulator

import (
	"errors"

	"github.com/ezrec/elfcode/translate"
)

var f = translate.From

var (
	ErrTickLimit    = errors.New(f("tick limit reached"))
	ErrStopped      = errors.New(f("stopped by watch"))
	ErrLoop         = errors.New(f("program entered a loop"))
	ErrNoComparison = errors.New(f("no comparison against register 0"))
	ErrNotFound     = errors.New(f("no candidate halted"))
	ErrUnbound      = errors.New(f("program has no #ip binding"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Ip     uint64
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d (ip %d) %v", err.LineNo, err.Ip, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
