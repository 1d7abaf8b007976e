// Package config handles console configuration: command line flags layered
// over an optional Starlark settings file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"chip8console/pkg/scheduler"
	"chip8console/pkg/translate"
)

var f = translate.From

var (
	ErrInvalidPacing = errors.New(f("pacing must be 'frame' or 'rate'"))
	ErrInvalidValue  = errors.New(f("value out of range"))
	ErrUnknownKey    = errors.New(f("unknown configuration key"))
	ErrKeyType       = errors.New(f("configuration key has the wrong type"))
)

const (
	PacingFrame = "frame"
	PacingRate  = "rate"
)

// Config holds the settings shared by all frontends.
type Config struct {
	ConfigFile      string
	ROM             string
	Pacing          string
	TicksPerFrame   int
	TurboMultiplier int
	TargetRate      float64
	Scale           int
	Beep            string
	Debug           bool
	Quiet           bool
}

// Default returns the settings used when neither a flag nor the settings file
// sets a value.
func Default() Config {
	return Config{
		Pacing:          PacingFrame,
		TicksPerFrame:   10,
		TurboMultiplier: 10,
		TargetRate:      60,
		Scale:           8,
	}
}

// Flag names. Settings file keys map onto them in fileKeys.
const (
	flagConfig = "config"
	flagROM    = "rom"
	flagPacing = "pacing"
	flagTicks  = "ticks"
	flagTurbo  = "turbo"
	flagRate   = "rate"
	flagScale  = "scale"
	flagBeep   = "beep"
	flagDebug  = "debug"
	flagQuiet  = "quiet"
)

// RegisterFlags binds the settings to fs.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigFile, flagConfig, c.ConfigFile, "Starlark settings file")
	fs.StringVar(&c.ROM, flagROM, c.ROM, "ROM image to load at start")
	fs.StringVar(&c.Pacing, flagPacing, c.Pacing, "tick pacing: frame or rate")
	fs.IntVar(&c.TicksPerFrame, flagTicks, c.TicksPerFrame, "ticks per batch")
	fs.IntVar(&c.TurboMultiplier, flagTurbo, c.TurboMultiplier, "batch multiplier while turbo is on")
	fs.Float64Var(&c.TargetRate, flagRate, c.TargetRate, "batches per second for rate pacing")
	fs.IntVar(&c.Scale, flagScale, c.Scale, "display scale factor")
	fs.StringVar(&c.Beep, flagBeep, c.Beep, "WAV or MP3 sample played while the sound timer runs")
	fs.BoolVar(&c.Debug, flagDebug, c.Debug, "enable debug logging")
	fs.BoolVar(&c.Quiet, flagQuiet, c.Quiet, "only log errors")
}

// Parse reads settings from args. Values come from, in increasing priority:
// Default, the file named by -config, and flags given explicitly. A single
// positional argument names the ROM.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	c := Default()
	c.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return c, err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		c.ROM = fs.Arg(0)
	default:
		return c, fmt.Errorf("%w: unexpected arguments %v", ErrInvalidValue, fs.Args()[1:])
	}

	if c.ConfigFile != "" {
		explicit := map[string]bool{}
		fs.Visit(func(fl *flag.Flag) { explicit[fl.Name] = true })
		if fs.NArg() == 1 {
			explicit[flagROM] = true
		}

		file, err := LoadFile(c.ConfigFile)
		if err != nil {
			return c, err
		}
		file.apply(&c, explicit)
	}

	return c, c.Validate()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	c.Pacing = strings.ToLower(c.Pacing)
	switch {
	case c.Pacing != PacingFrame && c.Pacing != PacingRate:
		return fmt.Errorf("%w: %q", ErrInvalidPacing, c.Pacing)
	case c.TicksPerFrame < 1:
		return fmt.Errorf("%w: ticks %d", ErrInvalidValue, c.TicksPerFrame)
	case c.TurboMultiplier < 1:
		return fmt.Errorf("%w: turbo %d", ErrInvalidValue, c.TurboMultiplier)
	case c.TargetRate <= 0:
		return fmt.Errorf("%w: rate %g", ErrInvalidValue, c.TargetRate)
	case c.Scale < 1:
		return fmt.Errorf("%w: scale %d", ErrInvalidValue, c.Scale)
	}
	return nil
}

// Pacer returns the pacing policy selected by Pacing.
func (c Config) Pacer() scheduler.Pacer {
	if c.Pacing == PacingRate {
		return scheduler.RateGated{TargetRate: c.TargetRate}
	}
	return scheduler.FrameBudget{}
}

// SchedulerOptions returns the scheduler settings; the caller fills in the
// presentation targets.
func (c Config) SchedulerOptions() scheduler.Options {
	return scheduler.Options{
		TicksPerFrame:   c.TicksPerFrame,
		TurboMultiplier: c.TurboMultiplier,
		Pacer:           c.Pacer(),
	}
}
