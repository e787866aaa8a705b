package cpu

import (
	"errors"

	"github.com/ezrec/elfcode/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalt          = errors.New(f("halt"))
	ErrRegisterRange = errors.New(f("register out of range"))
	ErrRegisterSize  = errors.New(f("register file size mismatch"))
	ErrBoundRange    = errors.New(f("bound register out of range"))

	// Instruction decode errors
	ErrOpcodeDecode = errors.New(f("decode"))
	ErrOpcodeArgA   = errors.New(f("operand a"))
	ErrOpcodeArgB   = errors.New(f("operand b"))
	ErrOpcodeArgC   = errors.New(f("operand c"))

	// Assembler errors
	ErrBoundSyntax     = errors.New(f("#ip syntax"))
	ErrBoundDuplicate  = errors.New(f("#ip duplicated"))
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrOpcodeMissing   = errors.New(f("opcode missing"))
	ErrOpcodeInvalid   = errors.New(f("opcode invalid"))
	ErrOperandCount    = errors.New(f("expected three operands"))
	ErrLabelSyntax     = errors.New(f("label syntax"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrMacroSyntax     = errors.New(f(".macro syntax"))
	ErrMacroNesting    = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate  = errors.New(f(".macro duplicated"))
	ErrMacroRecursive  = errors.New(f(".macro expands itself"))
	ErrMacroLonely     = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm = errors.New(f(".endm without .macro"))
)

// ErrOpcode reports the instruction that failed to execute.
type ErrOpcode Instruction

func (eo ErrOpcode) Error() string {
	return f("bad instruction %v", Instruction(eo).String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrSyntax reports the source line of a parse failure.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label '%v' not defined", string(el))
}

// ErrMacro reports the macro body line of an expansion failure.
type ErrMacro struct {
	Macro  string
	LineNo int
	Err    error
}

func (err *ErrMacro) Error() string {
	return f("macro %v line %d %v", err.Macro, err.LineNo, err.Err)
}

func (err *ErrMacro) Unwrap() error {
	return err.Err
}
