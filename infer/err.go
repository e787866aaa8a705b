package infer

import (
	"errors"

	"github.com/ezrec/elfcode/translate"
)

var f = translate.From

var (
	ErrInferenceStall = errors.New(f("opcode inference stalled"))
	ErrCodeRange      = errors.New(f("raw opcode out of range"))
	ErrCodeUnmapped   = errors.New(f("raw opcode unmapped"))
	ErrSampleBefore   = errors.New(f("expected 'Before: [...]'"))
	ErrSampleAfter    = errors.New(f("expected 'After: [...]'"))
	ErrSampleSize     = errors.New(f("sample register count mismatch"))
	ErrRawInstruction = errors.New(f("expected '<code> <a> <b> <c>'"))
)

// ErrStall reports the raw opcodes left ambiguous when resolution stops
// making progress.
type ErrStall struct {
	Unresolved []int
}

func (err *ErrStall) Error() string {
	return f("opcode inference stalled with %d unresolved codes %v", len(err.Unresolved), err.Unresolved)
}

func (err *ErrStall) Is(target error) bool {
	return target == ErrInferenceStall
}

// ErrConflict reports a raw opcode that no operation kind is consistent with.
type ErrConflict struct {
	Code int
}

func (err *ErrConflict) Error() string {
	return f("no operation is consistent with opcode %d", err.Code)
}

func (err *ErrConflict) Is(target error) bool {
	return target == ErrInferenceStall
}
