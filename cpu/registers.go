package cpu

import (
	"fmt"
	"slices"
	"strings"
)

const (
	REGISTER_COUNT        = 6 // Register file size of a bound program.
	SAMPLE_REGISTER_COUNT = 4 // Register file size of a sample program.
)

// Registers is a register file. Its size is fixed for the lifetime of a CPU.
type Registers []uint64

// NewRegisters returns a zeroed register file of count registers.
func NewRegisters(count int) Registers {
	return make(Registers, count)
}

// Clone returns an independent copy of the register file.
func (regs Registers) Clone() Registers {
	return slices.Clone(regs)
}

// Equal returns true if both register files have the same size and values.
func (regs Registers) Equal(other Registers) bool {
	return slices.Equal(regs, other)
}

// Valid returns true if index addresses a register in the file.
func (regs Registers) Valid(index uint64) bool {
	return index < uint64(len(regs))
}

// String returns the register file as "[a, b, c]".
func (regs Registers) String() string {
	words := make([]string, len(regs))
	for n, reg := range regs {
		words[n] = fmt.Sprintf("%d", reg)
	}
	return "[" + strings.Join(words, ", ") + "]"
}
