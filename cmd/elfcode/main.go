// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ezrec/elfcode/internal/config"
)

// cli holds the state shared by all subcommands.
type cli struct {
	verbose    bool
	configPath string

	logger *zap.Logger
	cfg    *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "elfcode",
		Short: "Wrist device register machine tools",
		Long: `elfcode assembles and runs programs for the six register wrist device,
recovers its opcode numbering from observed samples, and probes the
halting behaviour of bound instruction pointer programs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "elfcode.yaml", "Configuration file")

	rootCmd.AddCommand(c.runCmd())
	rootCmd.AddCommand(c.samplesCmd())
	rootCmd.AddCommand(c.haltCmd())
	rootCmd.AddCommand(c.divisorsCmd())
	rootCmd.AddCommand(c.searchCmd())

	return rootCmd
}

// setup loads the configuration and builds the logger.
func (c *cli) setup() (err error) {
	c.cfg, err = config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.verbose {
		c.cfg.Verbose = true
	}

	zcfg := zap.NewProductionConfig()
	if c.cfg.Verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	c.logger, err = zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	c.logger.Debug("config loaded",
		zap.String("path", c.configPath),
		zap.Int("registers", c.cfg.Registers),
		zap.Int("max_ticks", c.cfg.MaxTicks),
		zap.Int("workers", c.cfg.Workers))

	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
