package cpu

import (
	"errors"
	"fmt"
)

// Instruction is an operation with its three operands.
type Instruction struct {
	Op Op
	A  uint64
	B  uint64
	C  uint64
}

// MakeInstruction creates an instruction.
func MakeInstruction(op Op, a, b, c uint64) Instruction {
	return Instruction{Op: op, A: a, B: b, C: c}
}

// String returns the assembly language representation of this instruction.
func (inst Instruction) String() string {
	return fmt.Sprintf("%v %d %d %d", inst.Op, inst.A, inst.B, inst.C)
}

// Validate checks that every register operand addresses a register in a
// file of size registers.
func (inst Instruction) Validate(size int) (err error) {
	if !inst.Op.Valid() {
		return errors.Join(ErrOpcode(inst), ErrOpcodeDecode)
	}

	kind_a, kind_b := inst.Op.Operands()
	if kind_a == OPERAND_REGISTER && inst.A >= uint64(size) {
		return errors.Join(ErrOpcode(inst), ErrOpcodeArgA, ErrRegisterRange)
	}
	if kind_b == OPERAND_REGISTER && inst.B >= uint64(size) {
		return errors.Join(ErrOpcode(inst), ErrOpcodeArgB, ErrRegisterRange)
	}
	if inst.C >= uint64(size) {
		return errors.Join(ErrOpcode(inst), ErrOpcodeArgC, ErrRegisterRange)
	}

	return
}

// Apply evaluates the instruction against regs and returns the register
// file with the result written to C. The input file is not modified.
func (inst Instruction) Apply(regs Registers) (out Registers, err error) {
	value, err := inst.Op.Eval(regs, inst.A, inst.B)
	if err != nil {
		return
	}

	if !regs.Valid(inst.C) {
		err = errors.Join(ErrOpcodeArgC, ErrRegisterRange)
		return
	}

	out = regs.Clone()
	out[inst.C] = value
	return
}
