package scheduler

import (
	"bytes"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chip8console/pkg/chip8"
	"chip8console/pkg/inspect"
	"chip8console/pkg/keypad"
)

func newConsole(t *testing.T, opts Options) (*Scheduler, *chip8.Machine, *inspect.Panel, *NoticeLog) {
	t.Helper()
	m := chip8.NewMachine()
	panel := &inspect.Panel{}
	notices := NewNoticeLog(16)
	opts.Surface = &fakeSurface{}
	opts.Memory = panel
	opts.Registers = panel
	opts.Notifier = notices
	return New(log.NewTestLogger(t), m, opts), m, panel, notices
}

func TestEmptyROMReset(t *testing.T) {
	s, m, _, notices := newConsole(t, Options{})

	s.LoadROM("empty", bytes.NewReader(nil))
	await(t, s)
	s.Reset()

	state := m.State()
	for addr := chip8.SpriteRegionSize; addr < chip8.MemorySize; addr++ {
		if state.Memory[addr] != 0 {
			t.Fatalf("memory[0x%03X]: expected 0, got 0x%02X", addr, state.Memory[addr])
		}
	}
	assert.Equal(t, uint16(chip8.ProgramStart), m.ProgramCounter())
	for _, n := range notices.All() {
		assert.NotEqual(t, LevelError, n.Level, n.Message)
	}
}

func TestResetIdempotent(t *testing.T) {
	s, m, panel, _ := newConsole(t, Options{TicksPerFrame: 4})
	s.LoadROM("rom", bytes.NewReader([]byte{
		0x60, 0x05, // LD V0, 5
		0xF0, 0x29, // LD F, V0
		0xD1, 0x15, // DRW V1, V1, 5
		0x12, 0x06, // JP 0x206
	}))
	await(t, s)
	s.ToggleRun()
	s.OnFrame(16 * time.Millisecond)

	s.Reset()
	once := m.State()
	onceLines := panel.MemoryLines()
	s.Reset()
	twice := m.State()

	assert.Equal(t, once, twice)
	assert.Equal(t, onceLines, panel.MemoryLines())
	assert.Equal(t, byte(0x60), twice.Memory[chip8.ProgramStart])
}

func TestInitialMemoryWindow(t *testing.T) {
	_, m, panel, _ := newConsole(t, Options{})

	require.Equal(t, uint16(0x200), m.ProgramCounter())
	rows := panel.MemoryRows()
	require.NotEmpty(t, rows)
	assert.Equal(t, 456, rows[0].Start)
	assert.Equal(t, 576, rows[len(rows)-1].End+1)
}

func TestRunsProgramAndDraws(t *testing.T) {
	s, m, panel, _ := newConsole(t, Options{TicksPerFrame: 10})
	s.LoadROM("digit", bytes.NewReader([]byte{
		0x60, 0x00, // LD V0, 0
		0xF0, 0x29, // LD F, V0
		0xD0, 0x05, // DRW V0, V0, 5
		0x12, 0x06, // JP 0x206
	}))
	await(t, s)
	s.ToggleRun()
	s.OnFrame(16 * time.Millisecond)

	state := m.State()
	assert.Equal(t, chip8.PixelOn[0], state.Display[0])
	assert.Equal(t, uint16(0x206), state.PC)
	assert.Equal(t, "PC 0x0206", panel.RegisterTables().Scalars[1].Label+" "+panel.RegisterTables().Scalars[1].Value)
}

func TestKeyPressReachesMachineOnce(t *testing.T) {
	h := newHarness(t, Options{})
	mapper := keypad.NewMapper(keypad.DefaultBindings, h.machine)

	mapper.KeyDown("a")
	mapper.KeyUp("a")
	mapper.KeyDown("G")
	mapper.KeyUp("Shift")

	assert.Equal(t, []string{"down A", "up A"}, h.machine.events)
}

func TestTimersFollowWallClock(t *testing.T) {
	s, m, _, _ := newConsole(t, Options{TicksPerFrame: 1})
	s.LoadROM("timer", bytes.NewReader([]byte{
		0x60, 0x3C, // LD V0, 60
		0xF0, 0x15, // LD DT, V0
		0x12, 0x04, // JP 0x204
	}))
	await(t, s)
	s.ToggleRun()

	// Timestamps in ms, a multiple of 17 so the timer anchor stays aligned.
	ts := 17 * time.Millisecond
	for range 2 {
		s.OnFrame(ts)
		ts += 17 * time.Millisecond
	}
	require.Equal(t, uint8(60), m.DelayTimer())

	for range 10 {
		s.OnFrame(ts)
		ts += 17 * time.Millisecond
	}
	assert.Equal(t, uint8(50), m.DelayTimer())
}
