package main

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ezrec/elfcode/cpu"
	"github.com/ezrec/elfcode/emulator"
	"github.com/ezrec/elfcode/infer"
	"github.com/ezrec/elfcode/internal"
	"github.com/ezrec/elfcode/translate"
)

var f = translate.From

var (
	ErrRegisterFlag = errors.New(f("register flag must be N=VALUE"))
	ErrRangeFlag    = errors.New(f("range flag must be FROM:COUNT"))
	ErrNoValues     = errors.New(f("no search values given"))
)

func (c *cli) options() emulator.Options {
	opts := c.cfg.Options()
	opts.Logger = c.logger
	return opts
}

// assemble reads and assembles the program in path.
func (c *cli) assemble(path string) (prog *cpu.Program, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	asm := &cpu.Assembler{Verbose: c.cfg.Verbose, Logger: c.logger}
	prog, err = asm.Parse(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
		return
	}

	c.logger.Debug("assembled",
		zap.String("path", path),
		zap.Int("bound", prog.Bound),
		zap.Int("instructions", prog.Len()))

	return
}

// parseRegisterFlags applies "N=VALUE" settings to regs.
func parseRegisterFlags(regs cpu.Registers, settings []string) (err error) {
	for _, setting := range settings {
		index, value, ok := strings.Cut(setting, "=")
		if !ok {
			return fmt.Errorf("%q: %w", setting, ErrRegisterFlag)
		}
		n, err := strconv.ParseUint(index, 10, 64)
		if err != nil {
			return fmt.Errorf("%q: %w", setting, ErrRegisterFlag)
		}
		if !regs.Valid(n) {
			return fmt.Errorf("%q: %w", setting, cpu.ErrRegisterRange)
		}
		v, err := strconv.ParseUint(value, 0, 64)
		if err != nil {
			return fmt.Errorf("%q: %w", setting, ErrRegisterFlag)
		}
		regs[n] = v
	}

	return
}

// parseRangeFlags converts "FROM:COUNT" settings into value sequences.
func parseRangeFlags(settings []string) (seqs []iter.Seq[uint64], err error) {
	for _, setting := range settings {
		from, count, ok := strings.Cut(setting, ":")
		if !ok {
			return nil, fmt.Errorf("%q: %w", setting, ErrRangeFlag)
		}
		first, err := strconv.ParseUint(from, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", setting, ErrRangeFlag)
		}
		n, err := strconv.ParseUint(count, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", setting, ErrRangeFlag)
		}
		seqs = append(seqs, internal.IterRange(first, n))
	}

	return
}

func (c *cli) runCmd() *cobra.Command {
	var regs []string

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Assemble and run a program, printing the final registers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := c.assemble(args[0])
			if err != nil {
				return err
			}

			initial := cpu.NewRegisters(c.cfg.Registers)
			err = parseRegisterFlags(initial, regs)
			if err != nil {
				return err
			}

			opts := c.options()
			emu := emulator.NewEmulator(c.cfg.Registers)
			emu.Program = prog
			emu.Verbose = opts.Verbose
			emu.Logger = opts.Logger
			emu.MaxTicks = opts.MaxTicks
			emu.DetectLoop = opts.DetectLoop

			err = emu.Reset(initial)
			if err != nil {
				return err
			}

			err = emu.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%v\n", emu.Cpu.Register)
			c.logger.Info("halted", zap.Int("ticks", emu.Ticks()))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&regs, "reg", "r", nil, "Initial register value as N=VALUE (repeatable)")

	return cmd
}

func (c *cli) samplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "samples FILE",
		Short: "Recover the opcode numbering from samples and run the companion program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inf, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer inf.Close()

			in, err := infer.Parse(inf)
			if err != nil {
				return fmt.Errorf("%v: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ambiguous: %d\n", infer.Ambiguous(in.Samples, c.cfg.Ambiguous))

			rs := &infer.Resolver{Logger: c.logger}
			mapping, err := rs.Resolve(in.Samples)
			if err != nil {
				return err
			}
			fmt.Fprint(out, mapping)

			if len(in.Program) == 0 {
				return nil
			}

			prog, err := mapping.DecodeProgram(in.Program)
			if err != nil {
				return fmt.Errorf("%v: %w", args[0], err)
			}

			final, err := cpu.Execute(prog, cpu.NewRegisters(cpu.SAMPLE_REGISTER_COUNT), prog.Bound)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "registers: %v\n", final)

			return nil
		},
	}
}

func (c *cli) haltCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "halt FILE",
		Short: "Find the register 0 values halting in the fewest and most instructions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := c.assemble(args[0])
			if err != nil {
				return err
			}

			first, last, err := emulator.HaltValues(cmd.Context(), prog, c.options())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "first: %d\nlast: %d\n", first, last)
			return nil
		},
	}
}

func (c *cli) divisorsCmd() *cobra.Command {
	var reg0 uint64

	cmd := &cobra.Command{
		Use:   "divisors FILE",
		Short: "Run the setup phase of a divisor sum program and print the sum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := c.assemble(args[0])
			if err != nil {
				return err
			}

			sum, err := emulator.DivisorSum(cmd.Context(), prog, reg0, c.options())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", sum)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&reg0, "reg0", 0, "Initial register 0 value")

	return cmd
}

func (c *cli) searchCmd() *cobra.Command {
	var from, count uint64
	var ranges []string

	cmd := &cobra.Command{
		Use:   "search FILE",
		Short: "Search register 0 values for the one halting in the fewest ticks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := c.assemble(args[0])
			if err != nil {
				return err
			}

			seqs, err := parseRangeFlags(ranges)
			if err != nil {
				return err
			}
			if count > 0 {
				seqs = append([]iter.Seq[uint64]{internal.IterRange(from, count)}, seqs...)
			}
			if len(seqs) == 0 {
				return ErrNoValues
			}

			best, err := emulator.Search(cmd.Context(), prog, internal.IterSeqConcat(seqs...), c.options())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "value: %d\nticks: %d\n", best.Value, best.Ticks)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&from, "from", 0, "First register 0 value")
	cmd.Flags().Uint64Var(&count, "count", 1024, "Number of register 0 values")
	cmd.Flags().StringArrayVar(&ranges, "range", nil, "Additional values as FROM:COUNT (repeatable)")

	return cmd
}
