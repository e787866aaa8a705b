package emulator

import (
	"context"
	"errors"
	"iter"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ezrec/elfcode/cpu"
)

// Result is a register 0 value that halts the program, and the ticks it took.
type Result struct {
	Value uint64
	Ticks int
}

// better returns true if r halts sooner than other, or as soon with a lower value.
func (r Result) better(other Result) bool {
	if r.Ticks != other.Ticks {
		return r.Ticks < other.Ticks
	}
	return r.Value < other.Value
}

// SEARCH_MAX_TICKS is the per-run tick budget of Search when Options.MaxTicks
// is zero.
const SEARCH_MAX_TICKS = 1 << 20

// Search runs prog once for each candidate register 0 value, in parallel,
// and returns the value that halts in the fewest ticks. Runs exceeding
// opts.MaxTicks (or SEARCH_MAX_TICKS), or revisiting a machine state when
// opts.DetectLoop is set, are treated as not halting. A run is also stopped
// once it exceeds the ticks of the best value found so far.
func Search(ctx context.Context, prog *cpu.Program, values iter.Seq[uint64], opts Options) (best Result, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	err = prog.Validate(opts.registers())
	if err != nil {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}

	budget := opts.MaxTicks
	if budget <= 0 {
		budget = SEARCH_MAX_TICKS
	}

	var mutex sync.Mutex
	found := false

	for value := range values {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			emu := opts.emulator(prog)
			emu.MaxTicks = budget
			mutex.Lock()
			if found && best.Ticks < emu.MaxTicks {
				emu.MaxTicks = best.Ticks
			}
			mutex.Unlock()

			initial := cpu.NewRegisters(opts.registers())
			initial[0] = value
			err := emu.Reset(initial)
			if err != nil {
				return err
			}

			err = emu.Run(gctx)
			switch {
			case errors.Is(err, ErrTickLimit), errors.Is(err, ErrLoop):
				return nil
			case err != nil:
				return err
			}

			result := Result{Value: value, Ticks: emu.Ticks()}
			logger.Debug("search: halted",
				zap.Uint64("value", result.Value),
				zap.Int("ticks", result.Ticks))

			mutex.Lock()
			defer mutex.Unlock()
			if !found || result.better(best) {
				best = result
				found = true
			}
			return nil
		})
	}

	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return
	}

	if !found {
		err = ErrNotFound
	}

	return
}
