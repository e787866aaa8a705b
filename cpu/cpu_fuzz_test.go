package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// reference evaluates an operation directly from its definition.
func reference(op Op, regs Registers, a, b uint64) uint64 {
	bit := func(cond bool) uint64 {
		if cond {
			return 1
		}
		return 0
	}

	switch op {
	case OP_ADDR:
		return regs[a] + regs[b]
	case OP_ADDI:
		return regs[a] + b
	case OP_MULR:
		return regs[a] * regs[b]
	case OP_MULI:
		return regs[a] * b
	case OP_BANR:
		return regs[a] & regs[b]
	case OP_BANI:
		return regs[a] & b
	case OP_BORR:
		return regs[a] | regs[b]
	case OP_BORI:
		return regs[a] | b
	case OP_SETR:
		return regs[a]
	case OP_SETI:
		return a
	case OP_GTIR:
		return bit(a > regs[b])
	case OP_GTRI:
		return bit(regs[a] > b)
	case OP_GTRR:
		return bit(regs[a] > regs[b])
	case OP_EQIR:
		return bit(a == regs[b])
	case OP_EQRI:
		return bit(regs[a] == b)
	case OP_EQRR:
		return bit(regs[a] == regs[b])
	}

	panic(ErrOpcodeDecode)
}

func FuzzOp(f *testing.F) {
	for op := range Ops() {
		f.Add(uint8(op), uint64(0), uint64(1), uint64(3), uint64(2))
		f.Add(uint8(op), uint64(5), uint64(5), uint64(0xffffffff), uint64(1))
	}

	f.Fuzz(func(t *testing.T, code uint8, a, b uint64, r0, r1 uint64) {
		assert := assert.New(t)

		op := Op(code % OP_COUNT)
		regs := Registers{r0, r1, r0 ^ r1, r0 + r1, 0, ^uint64(0)}

		// Fold register operands into range so every input is evaluated.
		kind_a, kind_b := op.Operands()
		if kind_a == OPERAND_REGISTER {
			a %= uint64(len(regs))
		}
		if kind_b == OPERAND_REGISTER {
			b %= uint64(len(regs))
		}

		value, err := op.Eval(regs, a, b)
		assert.NoError(err)
		assert.Equal(reference(op, regs, a, b), value, "%v %d %d %v", op, a, b, regs)

		inst := MakeInstruction(op, a, b, 2)
		out, err := inst.Apply(regs)
		assert.NoError(err)
		assert.Equal(value, out[2])
		assert.Equal(r0^r1, regs[2])
	})
}
