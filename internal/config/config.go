// Package config holds the elfcode command line settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ezrec/elfcode/cpu"
	"github.com/ezrec/elfcode/emulator"
	"github.com/ezrec/elfcode/translate"
)

var f = translate.From

var (
	ErrRegisters = errors.New(f("register count out of range"))
	ErrMaxTicks  = errors.New(f("max ticks must not be negative"))
	ErrAmbiguous = errors.New(f("ambiguous threshold must be positive"))
)

// Config is the elfcode configuration file.
type Config struct {
	Registers  int  `yaml:"registers"`   // Register file size for programs.
	MaxTicks   int  `yaml:"max_ticks"`   // Tick budget per run; zero is unlimited, or emulator.SEARCH_MAX_TICKS for search.
	Workers    int  `yaml:"workers"`     // Parallel runs for search; zero is unlimited.
	DetectLoop bool `yaml:"detect_loop"` // Fail runs that revisit a machine state; records every state visited.
	Ambiguous  int  `yaml:"ambiguous"`   // Minimum matching kinds for an ambiguous sample.
	Verbose    bool `yaml:"verbose"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Registers: cpu.REGISTER_COUNT,
		MaxTicks:  0,
		Workers:   4,
		Ambiguous: 3,
	}
}

// Parse reads a YAML configuration over the defaults.
func Parse(input io.Reader) (cfg *Config, err error) {
	cfg = Default()

	dec := yaml.NewDecoder(input)
	dec.KnownFields(true)
	err = dec.Decode(cfg)
	if errors.Is(err, io.EOF) {
		err = nil
	}
	if err != nil {
		cfg = nil
		err = fmt.Errorf("failed to parse config: %w", err)
		return
	}

	err = cfg.Validate()
	if err != nil {
		cfg = nil
	}

	return
}

// Load reads the configuration file at path. A missing file yields the
// defaults.
func Load(path string) (cfg *Config, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(bytes.NewReader(data))
}

// Save writes the configuration to path.
func (c *Config) Save(path string) (err error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks the configuration ranges.
func (c *Config) Validate() error {
	var errs []error

	if c.Registers <= 0 {
		errs = append(errs, ErrRegisters)
	}
	if c.MaxTicks < 0 {
		errs = append(errs, ErrMaxTicks)
	}
	if c.Ambiguous <= 0 {
		errs = append(errs, ErrAmbiguous)
	}

	return errors.Join(errs...)
}

// Options returns the emulator options for this configuration.
func (c *Config) Options() emulator.Options {
	return emulator.Options{
		Registers:  c.Registers,
		MaxTicks:   c.MaxTicks,
		Workers:    c.Workers,
		DetectLoop: c.DetectLoop,
		Verbose:    c.Verbose,
	}
}
