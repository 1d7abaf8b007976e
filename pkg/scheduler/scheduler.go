// Package scheduler drives the machine from a frame callback and keeps the
// display and inspectors in step with it.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/retroenv/retrogolib/log"

	"chip8console/pkg/arena"
	"chip8console/pkg/display"
	"chip8console/pkg/inspect"
)

// MaxROMSize is the largest program image accepted: memory above the load
// address 0x200.
const MaxROMSize = 4096 - 0x200

// Machine is the interpreter the scheduler drives. Views handed out are only
// valid until the next Reset or LoadProgram.
type Machine interface {
	Reset()
	InitCharacterSprites()
	LoadProgram(program []byte) error
	Tick() error
	AdvanceTimers(nowMs uint64)
	SetKeyDown(code uint8)
	SetKeyUp(code uint8)

	DisplayView() arena.View
	MemoryView() arena.View
	StackView() arena.View
	GPRView() arena.View

	IndexRegister() uint16
	ProgramCounter() uint16
	StackPointer() uint8
	DelayTimer() uint8
	SoundTimer() uint8
}

// Indicator names passed to an IndicatorFunc.
const (
	IndicatorRunning = "running"
	IndicatorTurbo   = "turbo"
)

// IndicatorFunc is called whenever a user visible flag changes.
type IndicatorFunc func(name string, on bool)

type Options struct {
	TicksPerFrame   int
	TurboMultiplier int
	Pacer           Pacer

	Surface    display.Surface
	Convention display.Convention
	Memory     inspect.MemoryTarget
	Registers  inspect.RegisterTarget

	Indicator IndicatorFunc
	Notifier  Notifier
}

type loadResult struct {
	name string
	data []byte
	err  error
}

// Scheduler runs the machine in batches of ticks per frame and renders the
// framebuffer and inspectors after each batch. All methods must be called from
// the same goroutine; only ROM reads run elsewhere.
type Scheduler struct {
	logger  *log.Logger
	machine Machine

	schedule TickSchedule
	pacer    Pacer
	now      time.Duration

	frame     *display.FramebufferView
	memory    *inspect.MemoryInspector
	registers *inspect.RegisterInspector

	indicator IndicatorFunc
	notifier  Notifier

	rom     []byte
	romName string

	loads   chan loadResult
	pending int
}

// New creates a paused scheduler and resets the machine with an empty ROM.
func New(logger *log.Logger, machine Machine, opts Options) *Scheduler {
	if opts.Pacer == nil {
		opts.Pacer = FrameBudget{}
	}
	if opts.Indicator == nil {
		opts.Indicator = func(string, bool) {}
	}
	if opts.Notifier == nil {
		opts.Notifier = NotifierFunc(func(Notice) {})
	}

	s := &Scheduler{
		logger:  logger,
		machine: machine,
		schedule: TickSchedule{
			Mode:              Paused,
			TicksPerFrame:     max(opts.TicksPerFrame, 1),
			TurboMultiplier:   max(opts.TurboMultiplier, 1),
			LastTickTimestamp: NeverTicked,
		},
		pacer:     opts.Pacer,
		indicator: opts.Indicator,
		notifier:  opts.Notifier,
		loads:     make(chan loadResult),
	}
	s.frame = display.New(machine.DisplayView(), opts.Surface, opts.Convention)
	s.memory = inspect.NewMemoryInspector(machine.MemoryView(), opts.Memory)
	s.registers = inspect.NewRegisterInspector(machine.StackView(), machine.GPRView(), machine, opts.Registers)

	s.Reset()
	return s
}

// Schedule returns the live schedule for renderers. Callers must not modify it.
func (s *Scheduler) Schedule() *TickSchedule {
	return &s.schedule
}

func (s *Scheduler) Pacer() Pacer {
	return s.pacer
}

// ROMName is the name of the loaded ROM, empty before the first load.
func (s *Scheduler) ROMName() string {
	return s.romName
}

// ToggleRun flips between running and paused.
func (s *Scheduler) ToggleRun() {
	if s.schedule.Mode == Running {
		s.schedule.Mode = Paused
	} else {
		s.schedule.Mode = Running
	}
	s.indicator(IndicatorRunning, s.schedule.Mode == Running)
	s.logger.Debug("Run mode changed", log.String("mode", s.schedule.Mode.String()))
}

// Step pauses the scheduler if it is running, then runs a single tick and
// renders.
func (s *Scheduler) Step() {
	if s.schedule.Mode == Running {
		s.ToggleRun()
	}
	s.runBatch(1, s.now)
	s.render()
}

// ToggleTurbo flips the turbo multiplier on or off.
func (s *Scheduler) ToggleTurbo() {
	s.schedule.Turbo = !s.schedule.Turbo
	s.indicator(IndicatorTurbo, s.schedule.Turbo)
	s.logger.Debug("Turbo changed",
		log.Int("ticks_per_frame", s.schedule.EffectiveTicks()))
}

// Reset puts the machine in its power-on state with the current ROM loaded,
// then re-acquires every view and renders. The run mode is left unchanged.
func (s *Scheduler) Reset() {
	s.machine.Reset()
	s.machine.InitCharacterSprites()
	if err := s.machine.LoadProgram(s.rom); err != nil {
		s.notify(LevelError, err)
	}
	s.rebind()
	s.frame.SetDirtyFlag()
	s.render()
}

// rebind fetches fresh views after any call that may have reallocated the
// machine's storage.
func (s *Scheduler) rebind() {
	s.frame.Rebind(s.machine.DisplayView())
	s.memory.Rebind(s.machine.MemoryView())
	s.registers.Rebind(s.machine.StackView(), s.machine.GPRView())
}

// LoadROM reads r on a separate goroutine. The previous ROM keeps running
// until the read completes and Poll applies it. r is closed afterwards if it
// is an io.Closer.
func (s *Scheduler) LoadROM(name string, r io.Reader) {
	s.pending++
	s.logger.Debug("Loading ROM", log.String("name", name))
	go func() {
		data, err := readROM(r)
		if c, ok := r.(io.Closer); ok {
			_ = c.Close()
		}
		s.loads <- loadResult{name: name, data: data, err: err}
	}()
}

func readROM(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: no source", ErrROMRead)
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxROMSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrROMRead, err)
	}
	if len(data) > MaxROMSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrROMTooLarge, MaxROMSize)
	}
	return data, nil
}

// Pending is the number of ROM loads not yet applied.
func (s *Scheduler) Pending() int {
	return s.pending
}

// Poll applies every completed ROM load without blocking and returns how many
// were applied.
func (s *Scheduler) Poll() int {
	applied := 0
	for s.pending > 0 {
		select {
		case res := <-s.loads:
			s.apply(res)
			applied++
		default:
			return applied
		}
	}
	return applied
}

// Await blocks until every pending ROM load has been applied.
func (s *Scheduler) Await(ctx context.Context) error {
	for s.pending > 0 {
		select {
		case res := <-s.loads:
			s.apply(res)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *Scheduler) apply(res loadResult) {
	s.pending--
	if res.err != nil {
		s.logger.Error("Loading ROM failed", log.String("name", res.name), log.Err(res.err))
		s.notify(LevelError, fmt.Errorf("%s: %w", res.name, res.err))
		return
	}

	s.rom = res.data
	s.romName = res.name
	if s.schedule.Turbo {
		s.schedule.Turbo = false
		s.indicator(IndicatorTurbo, false)
	}
	s.Reset()

	s.logger.Info("ROM loaded", log.String("name", res.name), log.Int("size", len(res.data)))
	s.notifier.Notify(Notice{Level: LevelInfo, Message: f("loaded %s (%d bytes)", res.name, len(res.data))})
}

// OnFrame is called once per display refresh with a monotonic timestamp. It
// applies completed loads, runs the batch the pacer allows while running, and
// renders. It never stops the frame loop.
func (s *Scheduler) OnFrame(ts time.Duration) {
	s.now = ts
	s.Poll()
	if s.schedule.Mode == Running {
		if n := s.pacer.Ticks(&s.schedule, ts); n > 0 {
			s.runBatch(n, ts)
		}
	}
	s.render()
}

// runBatch advances the timers (when the pacer stamps them) and ticks n times.
// A machine fault pauses the scheduler.
func (s *Scheduler) runBatch(n int, ts time.Duration) {
	stamp := s.pacer.StampsTimers()
	for range n {
		if stamp {
			s.machine.AdvanceTimers(uint64(ts.Milliseconds()))
		}
		if err := s.machine.Tick(); err != nil {
			s.fault(err)
			break
		}
	}
	s.frame.SetDirtyFlag()
}

func (s *Scheduler) fault(err error) {
	s.logger.Error("Machine fault",
		log.Hex("pc", s.machine.ProgramCounter()),
		log.Err(err))
	if s.schedule.Mode == Running {
		s.ToggleRun()
	}
	s.notify(LevelError, err)
}

func (s *Scheduler) render() {
	err := errors.Join(
		s.frame.Render(),
		s.memory.Render(s.machine.ProgramCounter()),
		s.registers.Render(),
	)
	if err != nil {
		s.logger.Error("Rendering failed", log.Err(err))
		s.notify(LevelError, err)
	}
}

func (s *Scheduler) notify(level Level, err error) {
	s.notifier.Notify(Notice{Level: level, Message: err.Error()})
}
