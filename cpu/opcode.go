package cpu

import (
	"errors"
	"iter"
)

// Op is one of the sixteen operation kinds.
type Op int

const (
	OP_ADDR = Op(0)  // addr
	OP_ADDI = Op(1)  // addi
	OP_MULR = Op(2)  // mulr
	OP_MULI = Op(3)  // muli
	OP_BANR = Op(4)  // banr
	OP_BANI = Op(5)  // bani
	OP_BORR = Op(6)  // borr
	OP_BORI = Op(7)  // bori
	OP_SETR = Op(8)  // setr
	OP_SETI = Op(9)  // seti
	OP_GTIR = Op(10) // gtir
	OP_GTRI = Op(11) // gtri
	OP_GTRR = Op(12) // gtrr
	OP_EQIR = Op(13) // eqir
	OP_EQRI = Op(14) // eqri
	OP_EQRR = Op(15) // eqrr

	OP_COUNT = 16 // Number of operation kinds.
)

// Operand describes how an instruction operand is interpreted.
type Operand int

const (
	OPERAND_IGNORED   = Operand(0) // Operand is not read.
	OPERAND_IMMEDIATE = Operand(1) // Operand is a literal value.
	OPERAND_REGISTER  = Operand(2) // Operand is a register index.
)

var opNames = [OP_COUNT]string{
	"addr", "addi", "mulr", "muli",
	"banr", "bani", "borr", "bori",
	"setr", "seti",
	"gtir", "gtri", "gtrr",
	"eqir", "eqri", "eqrr",
}

var opMap = func() map[string]Op {
	m := make(map[string]Op, OP_COUNT)
	for n, name := range opNames {
		m[name] = Op(n)
	}
	return m
}()

// String returns the mnemonic of the operation.
func (op Op) String() string {
	if !op.Valid() {
		return f("op(%d)", int(op))
	}
	return opNames[op]
}

// Valid returns true if the operation is one of the sixteen kinds.
func (op Op) Valid() bool {
	return op >= 0 && op < OP_COUNT
}

// ParseOp returns the operation for a mnemonic.
func ParseOp(name string) (op Op, ok bool) {
	op, ok = opMap[name]
	return
}

// Ops iterates over all operation kinds, in declaration order.
func Ops() iter.Seq[Op] {
	return func(yield func(op Op) bool) {
		for n := range OP_COUNT {
			if !yield(Op(n)) {
				return
			}
		}
	}
}

// Operands returns how the A and B operands are interpreted.
// The C operand is always a destination register.
func (op Op) Operands() (a, b Operand) {
	switch op {
	case OP_ADDR, OP_MULR, OP_BANR, OP_BORR, OP_GTRR, OP_EQRR:
		return OPERAND_REGISTER, OPERAND_REGISTER
	case OP_ADDI, OP_MULI, OP_BANI, OP_BORI, OP_GTRI, OP_EQRI:
		return OPERAND_REGISTER, OPERAND_IMMEDIATE
	case OP_GTIR, OP_EQIR:
		return OPERAND_IMMEDIATE, OPERAND_REGISTER
	case OP_SETR:
		return OPERAND_REGISTER, OPERAND_IGNORED
	case OP_SETI:
		return OPERAND_IMMEDIATE, OPERAND_IGNORED
	}

	return OPERAND_IGNORED, OPERAND_IGNORED
}

func boolValue(cond bool) uint64 {
	if cond {
		return 1
	}
	return 0
}

// Eval computes the result of the operation for operands a and b, reading
// register operands from regs. It does not modify regs.
func (op Op) Eval(regs Registers, a, b uint64) (value uint64, err error) {
	if !op.Valid() {
		err = ErrOpcodeDecode
		return
	}

	kind_a, kind_b := op.Operands()

	// Register operands are range checked, never clamped.
	va, vb := a, b
	if kind_a == OPERAND_REGISTER {
		if a >= uint64(len(regs)) {
			err = errors.Join(ErrOpcodeArgA, ErrRegisterRange)
			return
		}
		va = regs[a]
	}
	if kind_b == OPERAND_REGISTER {
		if b >= uint64(len(regs)) {
			err = errors.Join(ErrOpcodeArgB, ErrRegisterRange)
			return
		}
		vb = regs[b]
	}

	switch op {
	case OP_ADDR, OP_ADDI:
		value = va + vb
	case OP_MULR, OP_MULI:
		value = va * vb
	case OP_BANR, OP_BANI:
		value = va & vb
	case OP_BORR, OP_BORI:
		value = va | vb
	case OP_SETR, OP_SETI:
		value = va
	case OP_GTIR, OP_GTRI, OP_GTRR:
		value = boolValue(va > vb)
	case OP_EQIR, OP_EQRI, OP_EQRR:
		value = boolValue(va == vb)
	}

	return
}
