package infer

import (
	"fmt"
	"iter"
	"math/bits"

	"github.com/ezrec/elfcode/cpu"
)

// RawInstruction is an instruction whose operation is a numeric opcode of
// unknown identity.
type RawInstruction struct {
	LineNo int // Source line, or zero.
	Code   uint64
	A      uint64
	B      uint64
	C      uint64
}

// String returns the instruction as "<code> <a> <b> <c>".
func (raw RawInstruction) String() string {
	return fmt.Sprintf("%d %d %d %d", raw.Code, raw.A, raw.B, raw.C)
}

// As returns the instruction with its opcode replaced by op.
func (raw RawInstruction) As(op cpu.Op) cpu.Instruction {
	return cpu.MakeInstruction(op, raw.A, raw.B, raw.C)
}

// Sample is an observation of one raw instruction's effect.
type Sample struct {
	Before      cpu.Registers
	Instruction RawInstruction
	After       cpu.Registers
}

// Consistent returns true if executing the sample's instruction as op
// transforms Before into exactly After.
func (s Sample) Consistent(op cpu.Op) bool {
	if len(s.Before) != len(s.After) {
		return false
	}

	out, err := s.Instruction.As(op).Apply(s.Before)
	if err != nil {
		return false
	}

	return out.Equal(s.After)
}

// Matches returns the set of operation kinds consistent with the sample.
func (s Sample) Matches() (set OpSet) {
	for op := range cpu.Ops() {
		if s.Consistent(op) {
			set = set.With(op)
		}
	}

	return
}

// Ambiguous counts the samples consistent with at least min operation kinds.
func Ambiguous(samples []Sample, min int) (count int) {
	for _, s := range samples {
		if s.Matches().Len() >= min {
			count++
		}
	}

	return
}

// OpSet is a set of operation kinds.
type OpSet uint16

// ALL_OPS contains every operation kind.
const ALL_OPS = OpSet(1<<cpu.OP_COUNT - 1)

// With returns the set with op added.
func (set OpSet) With(op cpu.Op) OpSet {
	return set | (1 << uint(op))
}

// Without returns the set with every member of other removed.
func (set OpSet) Without(other OpSet) OpSet {
	return set &^ other
}

// Has returns true if op is a member of the set.
func (set OpSet) Has(op cpu.Op) bool {
	return op.Valid() && set&(1<<uint(op)) != 0
}

// Len returns the number of members.
func (set OpSet) Len() int {
	return bits.OnesCount16(uint16(set))
}

// First returns the lowest member of a non-empty set.
func (set OpSet) First() (op cpu.Op, ok bool) {
	if set == 0 {
		return
	}

	return cpu.Op(bits.TrailingZeros16(uint16(set))), true
}

// All iterates over the members in declaration order.
func (set OpSet) All() iter.Seq[cpu.Op] {
	return func(yield func(op cpu.Op) bool) {
		for op := range cpu.Ops() {
			if set.Has(op) && !yield(op) {
				return
			}
		}
	}
}

// String returns the members as "{addi mulr seti}".
func (set OpSet) String() (text string) {
	for op := range set.All() {
		if len(text) > 0 {
			text += " "
		}
		text += op.String()
	}

	return "{" + text + "}"
}
