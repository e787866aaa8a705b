package emulator

import (
	"context"
	"errors"
	"math/big"
	"slices"

	"go.uber.org/zap"

	"github.com/ezrec/elfcode/cpu"
)

// Options configure the probes and the search.
type Options struct {
	Registers int // Register file size; zero selects cpu.REGISTER_COUNT.
	MaxTicks  int // Tick budget per run; zero is unlimited.
	Workers   int // Parallel runs for Search; zero or less is unlimited.
	Verbose   bool
	Logger    *zap.Logger

	DetectLoop bool // Fail runs that revisit a machine state with ErrLoop.
}

func (opts Options) registers() int {
	if opts.Registers <= 0 {
		return cpu.REGISTER_COUNT
	}
	return opts.Registers
}

func (opts Options) emulator(prog *cpu.Program) (emu *Emulator) {
	emu = NewEmulator(opts.registers())
	emu.Program = prog
	emu.MaxTicks = opts.MaxTicks
	emu.DetectLoop = opts.DetectLoop
	emu.Verbose = opts.Verbose
	emu.Logger = opts.Logger
	return
}

// comparedRegister returns the register compared against register 0 by an
// "eqrr" instruction.
func comparedRegister(inst cpu.Instruction) (reg uint64, ok bool) {
	if inst.Op != cpu.OP_EQRR {
		return
	}

	switch {
	case inst.B == 0 && inst.A != 0:
		return inst.A, true
	case inst.A == 0 && inst.B != 0:
		return inst.B, true
	}

	return
}

// HaltValues finds the register 0 values that make a program halt, for
// programs that halt by comparing a generated value against register 0.
//
// The program runs with register 0 zeroed, recording each value it compares
// against register 0. The first value is the one that halts the program in
// the fewest instructions. Generation stops at the first repeated value; the
// last new value before it halts the program in the most instructions.
func HaltValues(ctx context.Context, prog *cpu.Program, opts Options) (first, last uint64, err error) {
	emu := opts.emulator(prog)
	// A repeated comparison is the expected end of the run.
	emu.DetectLoop = false

	seen := make(map[uint64]struct{})
	var order []uint64

	emu.Watch = func(emu *Emulator, inst cpu.Instruction) bool {
		reg, ok := comparedRegister(inst)
		if !ok {
			return true
		}
		value := emu.Cpu.Register[reg]
		if int(reg) == emu.Cpu.Bound {
			value = emu.Cpu.Ip
		}
		if _, ok := seen[value]; ok {
			return false
		}
		seen[value] = struct{}{}
		order = append(order, value)
		return true
	}

	err = emu.Reset(cpu.NewRegisters(opts.registers()))
	if err != nil {
		return
	}

	err = emu.Run(ctx)
	if errors.Is(err, ErrStopped) {
		err = nil
	}
	if err != nil {
		return
	}

	if len(order) == 0 {
		err = ErrNoComparison
		return
	}

	first = order[0]
	last = order[len(order)-1]
	return
}

// DivisorSum runs the setup phase of a divisor-sum program with register 0
// set to reg0, then returns the sum of the divisors of the largest register.
//
// The setup phase ends when the bound register holds 1, which is where the
// summing loop of these programs begins.
func DivisorSum(ctx context.Context, prog *cpu.Program, reg0 uint64, opts Options) (sum uint64, err error) {
	if prog.Bound == cpu.NO_BOUND {
		err = ErrUnbound
		return
	}

	emu := opts.emulator(prog)

	initial := cpu.NewRegisters(opts.registers())
	initial[0] = reg0

	err = emu.Reset(initial)
	if err != nil {
		return
	}

	for n := 0; emu.Cpu.Register[prog.Bound] != 1; n++ {
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

	return sumOfDivisors(ctx, slices.Max(emu.Cpu.Register))
}

// SumOfDivisors returns the sum of all divisors of n, including n, modulo
// 2^64.
func SumOfDivisors(n uint64) (sum uint64) {
	sum, _ = sumOfDivisors(context.Background(), n)
	return
}

func isPrime(n uint64) bool {
	return new(big.Int).SetUint64(n).ProbablyPrime(0)
}

// sumOfDivisors multiplies the divisor sums of each prime power in n.
func sumOfDivisors(ctx context.Context, n uint64) (sum uint64, err error) {
	if n == 0 {
		return
	}

	sum = 1
	prime := isPrime(n)
	for p := uint64(2); !prime && p <= n/p; p++ {
		if p%CONTEXT_CHECK_DIVISORS == 0 {
			err = ctx.Err()
			if err != nil {
				return 0, err
			}
		}
		if n%p != 0 {
			continue
		}

		term, power := uint64(1), uint64(1)
		for n%p == 0 {
			n /= p
			power *= p
			term += power
		}
		sum *= term
		prime = isPrime(n)
	}

	if n > 1 {
		sum *= 1 + n
	}

	return
}
