// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"encoding/binary"
	"errors"

	"go.uber.org/zap"

	"github.com/ezrec/elfcode/cpu"
)

const (
	CONTEXT_CHECK_TICKS    = 1 << 12 // Ticks between context cancellation checks.
	CONTEXT_CHECK_DIVISORS = 1 << 16 // Trial divisors between context cancellation checks.
)

// WatchFunc is called before every instruction executes. Returning false
// stops the emulator with ErrStopped.
type WatchFunc func(emu *Emulator, inst cpu.Instruction) bool

// Emulator state. CPU + program listing + run controls.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	Logger   *zap.Logger  // Logger; nil disables logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	MaxTicks   int       // If non-zero, Tick fails with ErrTickLimit after this many ticks.
	DetectLoop bool      // If set, Tick fails with ErrLoop on a repeated machine state.
	Watch      WatchFunc // Optional per-instruction hook.

	seen map[string]struct{}
}

// NewEmulator creates a new emulator with count registers.
func NewEmulator(count int) (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(count),
		Program: &cpu.Program{Bound: cpu.NO_BOUND},
	}

	return
}

func (emu *Emulator) logger() *zap.Logger {
	if emu.Logger == nil {
		return zap.NewNop()
	}
	return emu.Logger
}

// Reset the emulator to run Program from the initial register file.
func (emu *Emulator) Reset(initial cpu.Registers) (err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Logger = emu.Logger

	err = emu.Program.Validate(len(emu.Cpu.Register))
	if err != nil {
		return
	}

	err = emu.Cpu.Reset(initial, emu.Program.Bound)
	if err != nil {
		return
	}

	emu.seen = nil
	if emu.DetectLoop {
		emu.seen = make(map[string]struct{})
	}

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Ip returns current instruction pointer.
func (emu *Emulator) Ip() uint64 {
	return emu.Cpu.Ip
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	op := emu.Program.Debug(emu.Cpu.Ip)
	if op == nil {
		return 0
	}

	return op.LineNo
}

// state returns a key identifying the instruction pointer and registers.
func (emu *Emulator) state() string {
	buf := make([]byte, 0, binary.MaxVarintLen64*(1+len(emu.Cpu.Register)))
	buf = binary.AppendUvarint(buf, emu.Cpu.Ip)
	for _, reg := range emu.Cpu.Register {
		buf = binary.AppendUvarint(buf, reg)
	}
	return string(buf)
}

// Tick performs a single tick of the emulator.
// Returns done once the program halts.
func (emu *Emulator) Tick() (done bool, err error) {
	lineno := emu.LineNo()
	ip := emu.Cpu.Ip
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Ip: ip, Err: err}
		}
	}()

	inst, ok := emu.Program.Fetch(emu.Cpu.Ip)
	if !ok {
		done = true
		return
	}

	if emu.MaxTicks > 0 && emu.Cpu.Ticks >= emu.MaxTicks {
		err = ErrTickLimit
		return
	}

	if emu.seen != nil {
		key := emu.state()
		if _, ok := emu.seen[key]; ok {
			err = ErrLoop
			return
		}
		emu.seen[key] = struct{}{}
	}

	if emu.Watch != nil && !emu.Watch(emu, inst) {
		err = ErrStopped
		return
	}

	err = emu.Cpu.Tick(emu.Program)
	if errors.Is(err, cpu.ErrHalt) {
		err = nil
		done = true
	}

	return
}

// Run ticks the emulator until the program halts, an error occurs, or ctx
// is cancelled.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	for n := 0; ; n++ {
		if n%CONTEXT_CHECK_TICKS == 0 {
			err = ctx.Err()
			if err != nil {
				return
			}
		}

		var done bool
		done, err = emu.Tick()
		if err != nil {
			return
		}
		if done {
			break
		}
	}

	if emu.Verbose {
		emu.logger().Debug("emulator: halted",
			zap.Int("ticks", emu.Cpu.Ticks),
			zap.Stringer("registers", emu.Cpu.Register))
	}

	return
}
