// Command console runs a CHIP-8 ROM inside a raw mode terminal, with the
// memory and register inspectors drawn below the display.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/retroenv/retrogolib/log"

	"chip8console/pkg/chip8"
	"chip8console/pkg/config"
	"chip8console/pkg/display"
	"chip8console/pkg/inspect"
	"chip8console/pkg/keypad"
	"chip8console/pkg/scheduler"
	"chip8console/pkg/utils"
)

const frameInterval = time.Second / 60

func main() {
	fs := flag.NewFlagSet("console", flag.ExitOnError)
	cfg, err := config.Parse(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	// log lines would tear the screen, so only debug runs get more than errors
	logger := config.CreateLogger(cfg.Debug, !cfg.Debug)

	if err := run(logger, cfg); err != nil {
		logger.Fatal("Console failed", log.Err(err))
	}
}

func run(logger *log.Logger, cfg config.Config) error {
	term, err := newTerminal(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	if cols, rows, err := term.size(); err == nil && (cols < screenCols || rows < screenRows) {
		logger.Warn("Terminal is smaller than the console layout",
			log.Int("cols", cols), log.Int("rows", rows))
	}

	machine := chip8.NewMachine()
	surface := &cellSurface{}
	panel := &inspect.Panel{}
	notices := scheduler.NewNoticeLog(8)

	opts := cfg.SchedulerOptions()
	opts.Surface = surface
	opts.Convention = display.TopLeft
	opts.Memory = panel
	opts.Registers = panel
	opts.Notifier = notices
	sched := scheduler.New(logger, machine, opts)

	keys := newKeyHolder(keypad.NewMapper(keypad.DefaultBindings, machine))
	scr := &screen{surface: surface, panel: panel, notices: notices}

	loadROM := func() {
		if cfg.ROM == "" {
			notices.Notify(scheduler.Notice{Level: scheduler.LevelWarn, Message: "no ROM given"})
			return
		}
		name, file, err := utils.OpenROM(cfg.ROM)
		if err != nil {
			notices.Notify(scheduler.Notice{Level: scheduler.LevelError, Message: err.Error()})
			return
		}
		_ = sched.Dispatch(scheduler.Command{Action: scheduler.LoadROM, ROMName: name, ROM: file})
	}
	loadROM()

	if err := term.rawMode(); err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	defer func() {
		fmt.Fprint(term.output, showCursor)
		if err := term.canonicalMode(); err != nil {
			logger.Error("Restoring terminal failed", log.Err(err))
		}
	}()
	fmt.Fprint(term.output, hideCursor+clearScreen)

	input := make(chan byte, 64)
	go term.readKeys(input)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGWINCH, syscall.SIGTERM)
	defer signal.Stop(signals)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			keys.releaseAll()
			return nil

		case sig := <-signals:
			if sig == syscall.SIGTERM {
				cancel()
				continue
			}
			fmt.Fprint(term.output, clearScreen)

		case b, ok := <-input:
			if !ok || b == keyQuit || b == keyCtrlC {
				cancel()
				continue
			}
			if action, ok := controls[b]; ok {
				if action == scheduler.LoadROM {
					loadROM()
					continue
				}
				_ = sched.Dispatch(scheduler.Command{Action: action})
				continue
			}
			keys.press(b)

		case <-ticker.C:
			sched.OnFrame(time.Since(start))
			keys.frame()
			if err := scr.draw(term.output, sched); err != nil {
				return err
			}
		}
	}
}
