package cpu

import (
	"fmt"
	"iter"
)

// NO_BOUND marks a program whose instruction pointer is not bound to a register.
const NO_BOUND = -1

// Opcode represents a line of assembled code with its source location.
type Opcode struct {
	LineNo int
	Words  []string
	Instruction
}

// Program is an immutable instruction listing.
type Program struct {
	Bound   int // Register bound to the instruction pointer, or NO_BOUND.
	Opcodes []Opcode
}

// NewProgram creates a program from bare instructions.
func NewProgram(bound int, insts ...Instruction) (prog *Program) {
	prog = &Program{Bound: bound}
	for _, inst := range insts {
		prog.Opcodes = append(prog.Opcodes, Opcode{Instruction: inst})
	}

	return
}

// Len returns the number of instructions.
func (prog *Program) Len() int {
	return len(prog.Opcodes)
}

// Fetch returns the instruction at ip.
func (prog *Program) Fetch(ip uint64) (inst Instruction, ok bool) {
	if ip >= uint64(len(prog.Opcodes)) {
		return
	}

	return prog.Opcodes[ip].Instruction, true
}

// Debug returns the source opcode for ip, or nil if ip is outside the program.
func (prog *Program) Debug(ip uint64) (op *Opcode) {
	if ip < uint64(len(prog.Opcodes)) {
		op = &prog.Opcodes[ip]
	}

	return
}

// Instructions iterates over the program's instructions by address.
func (prog *Program) Instructions() iter.Seq2[int, Instruction] {
	return func(yield func(ip int, inst Instruction) bool) {
		for ip, op := range prog.Opcodes {
			if !yield(ip, op.Instruction) {
				return
			}
		}
	}
}

// Validate checks the program against a register file of size registers.
func (prog *Program) Validate(size int) (err error) {
	if prog.Bound != NO_BOUND && (prog.Bound < 0 || prog.Bound >= size) {
		return ErrBoundRange
	}

	for ip, inst := range prog.Instructions() {
		err = inst.Validate(size)
		if err != nil {
			op := &prog.Opcodes[ip]
			if op.LineNo != 0 {
				err = &ErrSyntax{LineNo: op.LineNo, Line: inst.String(), Err: err}
			}
			return
		}
	}

	return
}

// String returns the program listing in assembler syntax.
func (prog *Program) String() (text string) {
	if prog.Bound != NO_BOUND {
		text += fmt.Sprintf("#ip %d\n", prog.Bound)
	}
	for _, inst := range prog.Instructions() {
		text += inst.String() + "\n"
	}

	return
}
