//go:build !js

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bradleyjkemp/memviz"
	"github.com/retroenv/retrogolib/log"

	"chip8console/pkg/chip8"
	"chip8console/pkg/config"
	"chip8console/pkg/display"
	"chip8console/pkg/inspect"
	"chip8console/pkg/scheduler"
	"chip8console/pkg/utils"
)

// frameDuration is the simulated refresh interval of a headless run.
const frameDuration = time.Second / 60

type batchOptions struct {
	frames     int
	screenshot string
	memviz     string
	timeout    time.Duration
}

// countingSurface only records that an upload happened.
type countingSurface struct {
	uploads int
}

func (s *countingSurface) WritePixels([]byte) {
	s.uploads++
}

func main() {
	var opts batchOptions
	flags := flag.NewFlagSet("chip8console", flag.ExitOnError)
	flags.IntVar(&opts.frames, "frames", 600, "number of frames to run")
	flags.StringVar(&opts.screenshot, "screenshot", "", "write the final display to this PNG file")
	flags.StringVar(&opts.memviz, "memviz", "", "write a Graphviz dump of the final machine state to this file")
	flags.DurationVar(&opts.timeout, "timeout", 5*time.Second, "how long to wait for the ROM to load")

	cfg, err := config.Parse(flags, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	logger := config.CreateLogger(cfg.Debug, cfg.Quiet)

	if cfg.ROM == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide a ROM with -rom or as an argument")
		flags.Usage()
		os.Exit(2)
	}

	if err := runBatch(logger, cfg, opts, os.Stdout); err != nil {
		logger.Fatal("Batch run failed", log.Err(err))
	}
}

// runBatch loads the configured ROM, runs it for opts.frames simulated frames
// and prints the inspector panels.
func runBatch(logger *log.Logger, cfg config.Config, opts batchOptions, out io.Writer) error {
	machine := chip8.NewMachine()
	panel := &inspect.Panel{}
	notices := scheduler.NewNoticeLog(16)
	surface := &countingSurface{}

	schedOpts := cfg.SchedulerOptions()
	schedOpts.Surface = surface
	schedOpts.Memory = panel
	schedOpts.Registers = panel
	schedOpts.Notifier = notices
	sched := scheduler.New(logger, machine, schedOpts)

	name, file, err := utils.OpenROM(cfg.ROM)
	if err != nil {
		return err
	}
	sched.LoadROM(name, file)

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()
	if err := sched.Await(ctx); err != nil {
		return fmt.Errorf("waiting for %s: %w", name, err)
	}
	if n, ok := notices.Last(); ok && n.Level == scheduler.LevelError {
		return fmt.Errorf("%s", n.Message)
	}

	sched.ToggleRun()
	frames := 0
	for frames < opts.frames {
		frames++
		sched.OnFrame(time.Duration(frames) * frameDuration)
		if sched.Schedule().Mode != scheduler.Running {
			logger.Info("Machine stopped", log.Int("frame", frames))
			break
		}
	}

	fmt.Fprintf(out, "%s: %d frames, %d uploads, pc %04x\n",
		sched.ROMName(), frames, surface.uploads, machine.ProgramCounter())
	fmt.Fprintln(out, strings.Join(panel.MemoryLines(), "\n"))
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Join(panel.RegisterLines(), "\n"))
	for _, n := range notices.All() {
		fmt.Fprintf(out, "[%s] %s\n", n.Level, n.Message)
	}

	if opts.screenshot != "" {
		if err := display.SaveScreenshot(opts.screenshot, machine.DisplayView(), cfg.Scale); err != nil {
			return fmt.Errorf("writing screenshot: %w", err)
		}
	}
	if opts.memviz != "" {
		if err := writeMemviz(opts.memviz, machine.State()); err != nil {
			return fmt.Errorf("writing memviz: %w", err)
		}
	}
	return nil
}

func writeMemviz(filename string, state chip8.State) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	memviz.Map(f, &state)
	return f.Close()
}
