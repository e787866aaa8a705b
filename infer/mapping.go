package infer

import (
	"fmt"
	"strings"

	"github.com/ezrec/elfcode/cpu"
)

// Mapping maps each raw opcode to its operation kind.
type Mapping [cpu.OP_COUNT]cpu.Op

// Decode returns the instruction for a raw instruction.
func (m Mapping) Decode(raw RawInstruction) (inst cpu.Instruction, err error) {
	if raw.Code >= uint64(len(m)) {
		err = ErrCodeRange
		return
	}

	inst = raw.As(m[raw.Code])
	return
}

// DecodeProgram decodes raw instructions into an unbound program.
func (m Mapping) DecodeProgram(raws []RawInstruction) (prog *cpu.Program, err error) {
	prog = &cpu.Program{Bound: cpu.NO_BOUND}

	for _, raw := range raws {
		var inst cpu.Instruction
		inst, err = m.Decode(raw)
		if err != nil {
			err = &cpu.ErrSyntax{LineNo: raw.LineNo, Line: raw.String(), Err: err}
			prog = nil
			return
		}
		prog.Opcodes = append(prog.Opcodes, cpu.Opcode{
			LineNo:      raw.LineNo,
			Words:       strings.Fields(raw.String()),
			Instruction: inst,
		})
	}

	return
}

// Encode returns the raw opcode for op.
func (m Mapping) Encode(op cpu.Op) (code uint64, err error) {
	for n, mapped := range m {
		if mapped == op {
			code = uint64(n)
			return
		}
	}

	err = ErrCodeUnmapped
	return
}

// String returns the mapping as one "code: op" line per raw opcode.
func (m Mapping) String() (text string) {
	for code, op := range m {
		text += fmt.Sprintf("%2d: %v\n", code, op)
	}

	return
}
