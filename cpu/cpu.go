// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// IP_HALTED is the instruction pointer value that never addresses an instruction.
const IP_HALTED = math.MaxUint64

// Cpu is the simulation context for the wrist device register machine.
type Cpu struct {
	Verbose bool        // Set to enable per-tick debug logging.
	Logger  *zap.Logger // Logger for verbose tracing; nil disables logging.

	Ip       uint64    // Current instruction pointer.
	Bound    int       // Register bound to the instruction pointer, or NO_BOUND.
	Register Registers // Register bank.

	Ticks int // Instructions executed since reset.
}

// NewCpu creates a new CPU with a specifically sized register file.
func NewCpu(count int) (cpu *Cpu) {
	cpu = &Cpu{
		Bound:    NO_BOUND,
		Register: NewRegisters(count),
	}

	return
}

func (cpu *Cpu) logger() *zap.Logger {
	if cpu.Logger == nil {
		return zap.NewNop()
	}
	return cpu.Logger
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	ip := "halted"
	if cpu.Ip != IP_HALTED {
		ip = fmt.Sprintf("%d", cpu.Ip)
	}
	text += fmt.Sprintf("% 5s: %v\n", "ip", ip)
	if cpu.Bound != NO_BOUND {
		text += fmt.Sprintf("% 5s: r%d\n", "bound", cpu.Bound)
	}
	for n, reg := range cpu.Register {
		text += fmt.Sprintf("% 5s: %d\n", fmt.Sprintf("r%d", n), reg)
	}
	text += fmt.Sprintf("% 5s: %d\n", "ticks", cpu.Ticks)

	return
}

// Reset the CPU state.
//   - Loads the register file from initial (which must match the file size).
//   - Binds the instruction pointer to register bound, or NO_BOUND.
//   - Loads the instruction pointer from the bound register, or zero.
//   - Zeros the tick counter.
func (cpu *Cpu) Reset(initial Registers, bound int) (err error) {
	if len(initial) != len(cpu.Register) {
		err = ErrRegisterSize
		return
	}

	if bound != NO_BOUND && (bound < 0 || bound >= len(cpu.Register)) {
		err = ErrBoundRange
		return
	}

	copy(cpu.Register, initial)
	cpu.Bound = bound
	cpu.Ticks = 0

	cpu.Ip = 0
	if bound != NO_BOUND {
		cpu.Ip = cpu.Register[bound]
	}

	if cpu.Verbose {
		cpu.logger().Debug("cpu: reset",
			zap.Stringer("registers", cpu.Register),
			zap.Int("bound", bound),
			zap.Uint64("ip", cpu.Ip))
	}

	return
}

// Tick executes a single instruction of prog.
// Returns ErrHalt once the instruction pointer leaves the program.
func (cpu *Cpu) Tick(prog *Program) (err error) {
	inst, ok := prog.Fetch(cpu.Ip)
	if !ok {
		err = ErrHalt
		return
	}

	if cpu.Bound != NO_BOUND {
		cpu.Register[cpu.Bound] = cpu.Ip
	}

	err = cpu.Execute(inst)
	if err != nil {
		return
	}

	next := cpu.Ip
	if cpu.Bound != NO_BOUND {
		next = cpu.Register[cpu.Bound]
	}
	if next == IP_HALTED {
		cpu.Ip = IP_HALTED
	} else {
		cpu.Ip = next + 1
	}

	cpu.Ticks++

	return
}

// Execute executes a single decoded instruction against the register file.
// The instruction pointer is not advanced.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(inst), err)
		}
	}()

	if cpu.Verbose {
		cpu.logger().Debug("cpu: execute",
			zap.Uint64("ip", cpu.Ip),
			zap.Stringer("inst", inst),
			zap.Stringer("registers", cpu.Register))
	}

	value, err := inst.Op.Eval(cpu.Register, inst.A, inst.B)
	if err != nil {
		return
	}

	if !cpu.Register.Valid(inst.C) {
		err = errors.Join(ErrOpcodeArgC, ErrRegisterRange)
		return
	}

	cpu.Register[inst.C] = value

	return
}

// Run ticks the CPU until the program halts.
func (cpu *Cpu) Run(prog *Program) (err error) {
	for {
		err = cpu.Tick(prog)
		if errors.Is(err, ErrHalt) {
			return nil
		}
		if err != nil {
			return
		}
	}
}

// Execute runs prog from the initial register file, with the instruction
// pointer bound to register bound (or NO_BOUND), until it halts.
// Returns the final register file; initial is not modified.
func Execute(prog *Program, initial Registers, bound int) (final Registers, err error) {
	cpu := NewCpu(len(initial))

	err = prog.Validate(len(initial))
	if err != nil {
		return
	}

	err = cpu.Reset(initial, bound)
	if err != nil {
		return
	}

	err = cpu.Run(prog)
	if err != nil {
		return
	}

	final = cpu.Register
	return
}
