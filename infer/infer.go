package infer

import (
	"go.uber.org/zap"

	"github.com/ezrec/elfcode/cpu"
)

// Candidates computes, for every raw opcode, the operation kinds consistent
// with all samples using that opcode. Opcodes without samples keep every kind.
func Candidates(samples []Sample) (cands [cpu.OP_COUNT]OpSet, err error) {
	for code := range cands {
		cands[code] = ALL_OPS
	}

	for _, s := range samples {
		code := s.Instruction.Code
		if code >= cpu.OP_COUNT {
			err = ErrCodeRange
			return
		}
		cands[code] &= s.Matches()
	}

	return
}

// Resolver assigns raw opcodes to operation kinds.
type Resolver struct {
	Logger *zap.Logger // Logger for resolution progress; nil disables logging.
}

// Resolve builds the opcode mapping from samples with the default resolver.
func Resolve(samples []Sample) (mapping Mapping, err error) {
	return (&Resolver{}).Resolve(samples)
}

// Resolve builds the opcode mapping from samples.
//
// Each round assigns every raw opcode whose candidates, less the kinds
// already assigned, are a single kind. A round that assigns nothing ends
// resolution with an ErrStall; at most OP_COUNT rounds are run.
func (rs *Resolver) Resolve(samples []Sample) (mapping Mapping, err error) {
	logger := rs.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cands, err := Candidates(samples)
	if err != nil {
		return
	}

	var assigned [cpu.OP_COUNT]bool
	var used OpSet
	unresolved := cpu.OP_COUNT

	for round := 0; round < cpu.OP_COUNT && unresolved > 0; round++ {
		progress := false
		for code := range cands {
			if assigned[code] {
				continue
			}
			remaining := cands[code].Without(used)
			switch remaining.Len() {
			case 0:
				err = &ErrConflict{Code: code}
				return
			case 1:
				op, _ := remaining.First()
				mapping[code] = op
				assigned[code] = true
				used = used.With(op)
				unresolved--
				progress = true
				logger.Debug("infer: assign",
					zap.Int("round", round),
					zap.Int("code", code),
					zap.Stringer("op", op))
			}
		}
		if !progress {
			break
		}
	}

	if unresolved > 0 {
		stall := &ErrStall{}
		for code, ok := range assigned {
			if !ok {
				stall.Unresolved = append(stall.Unresolved, code)
			}
		}
		err = stall
		return
	}

	return
}
