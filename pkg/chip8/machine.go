package chip8

import (
	"encoding/binary"
	"math/rand/v2"
	"time"

	"chip8console/pkg/arena"
)

const (
	DisplayWidth  = 64
	DisplayHeight = 32
	// DisplaySize is the length of the display buffer: one RGB triplet per pixel.
	DisplaySize = DisplayWidth * DisplayHeight * 3

	MemorySize   = 4096
	ProgramStart = 0x200
	// MaxProgramSize is the largest image LoadProgram accepts.
	MaxProgramSize = MemorySize - ProgramStart

	StackDepth = 16
	StackSize  = StackDepth * 2
	GPRCount   = 16

	addrMask = MemorySize - 1

	// timerPeriodMs is the delay/sound timer period, ~60Hz.
	timerPeriodMs = 17
)

// Arena layout. Everything the inspectors can borrow lives in one arena; the
// scratch tail past baseSize stages program images and grows on demand.
const (
	displayOffset = 0
	memoryOffset  = displayOffset + DisplaySize
	stackOffset   = memoryOffset + MemorySize
	gprOffset     = stackOffset + StackSize
	scratchOffset = gprOffset + GPRCount
	baseSize      = scratchOffset
)

var (
	PixelOn  = [3]byte{102, 255, 102}
	PixelOff = [3]byte{0, 0, 0}
)

// Machine is a CHIP-8 interpreter. Its memory, display, stack and registers
// are stored in an arena so that a console can read them in place.
type Machine struct {
	arena *arena.Arena

	i  uint16
	pc uint16
	sp uint8
	dt uint8
	st uint8

	keyboard uint16

	// lastTimerMs is the timestamp the timers were last advanced to. It
	// carries the sub-period remainder and survives Reset.
	lastTimerMs uint64

	rng *rand.Rand
}

// State is a copy of the machine's registers and storage.
type State struct {
	Memory   [MemorySize]byte
	Display  [DisplaySize]byte
	Stack    [StackDepth]uint16
	GPR      [GPRCount]byte
	I        uint16
	PC       uint16
	SP       uint8
	DT       uint8
	ST       uint8
	Keyboard uint16
}

// NewMachine creates a machine in its power-on state.
func NewMachine() *Machine {
	seed := uint64(time.Now().UnixNano())
	m := &Machine{
		arena: arena.New(baseSize),
		pc:    ProgramStart,
		rng:   rand.New(rand.NewPCG(seed, seed>>32)),
	}
	return m
}

func (m *Machine) memory() []byte  { return m.arena.Slice(memoryOffset, MemorySize) }
func (m *Machine) display() []byte { return m.arena.Slice(displayOffset, DisplaySize) }
func (m *Machine) stack() []byte   { return m.arena.Slice(stackOffset, StackSize) }
func (m *Machine) gpr() []byte     { return m.arena.Slice(gprOffset, GPRCount) }

// Reset restores the power-on register, memory and display state.
func (m *Machine) Reset() {
	clear(m.memory())
	clear(m.display())
	clear(m.stack())
	clear(m.gpr())
	m.i = 0
	m.pc = ProgramStart
	m.sp = 0
	m.dt = 0
	m.st = 0
	m.keyboard = 0
}

// InitCharacterSprites seeds the hex digit glyphs at the start of memory.
func (m *Machine) InitCharacterSprites() {
	copy(m.memory(), characterSprites[:])
}

// LoadProgram copies an image into memory at ProgramStart. The image is
// staged in the arena scratch area first; when it does not fit the arena is
// reallocated and every view taken before is invalidated.
func (m *Machine) LoadProgram(program []byte) error {
	if len(program) > MaxProgramSize {
		return ErrProgramTooLarge
	}
	m.arena.Grow(scratchOffset + len(program))
	scratch := m.arena.Slice(scratchOffset, len(program))
	copy(scratch, program)
	copy(m.memory()[ProgramStart:], scratch)
	return nil
}

// Generation changes every time the arena is reallocated.
func (m *Machine) Generation() uint64 {
	return m.arena.Generation()
}

func (m *Machine) DisplayView() arena.View { return m.arena.View(displayOffset, DisplaySize) }
func (m *Machine) MemoryView() arena.View  { return m.arena.View(memoryOffset, MemorySize) }
func (m *Machine) StackView() arena.View   { return m.arena.View(stackOffset, StackSize) }
func (m *Machine) GPRView() arena.View     { return m.arena.View(gprOffset, GPRCount) }

func (m *Machine) IndexRegister() uint16  { return m.i }
func (m *Machine) ProgramCounter() uint16 { return m.pc }
func (m *Machine) StackPointer() uint8    { return m.sp }
func (m *Machine) DelayTimer() uint8      { return m.dt }
func (m *Machine) SoundTimer() uint8      { return m.st }

// SetKeyDown marks keypad line code as pressed. Codes above 0xF are ignored.
func (m *Machine) SetKeyDown(code uint8) {
	if code < 16 {
		m.keyboard |= 1 << code
	}
}

// SetKeyUp marks keypad line code as released.
func (m *Machine) SetKeyUp(code uint8) {
	if code < 16 {
		m.keyboard &^= 1 << code
	}
}

// AdvanceTimers decrements the delay and sound timers once per elapsed 17ms
// since the previous call, carrying the remainder. Timestamps are in
// milliseconds; a timestamp earlier than the previous one only re-anchors.
func (m *Machine) AdvanceTimers(nowMs uint64) {
	if nowMs < m.lastTimerMs {
		m.lastTimerMs = nowMs
		return
	}
	elapsed := nowMs - m.lastTimerMs
	steps := elapsed / timerPeriodMs
	m.lastTimerMs = nowMs - elapsed%timerPeriodMs
	m.dt -= uint8(min(uint64(m.dt), steps))
	m.st -= uint8(min(uint64(m.st), steps))
}

// State returns a copy of the machine state.
func (m *Machine) State() State {
	var s State
	copy(s.Memory[:], m.memory())
	copy(s.Display[:], m.display())
	copy(s.GPR[:], m.gpr())
	for n := range s.Stack {
		s.Stack[n] = m.stackEntry(n)
	}
	s.I = m.i
	s.PC = m.pc
	s.SP = m.sp
	s.DT = m.dt
	s.ST = m.st
	s.Keyboard = m.keyboard
	return s
}

func (m *Machine) stackEntry(n int) uint16 {
	return binary.LittleEndian.Uint16(m.stack()[n*2:])
}

func (m *Machine) setStackEntry(n int, val uint16) {
	binary.LittleEndian.PutUint16(m.stack()[n*2:], val)
}

func (m *Machine) read(addr uint16) byte {
	return m.memory()[addr&addrMask]
}

func (m *Machine) write(addr uint16, val byte) {
	m.memory()[addr&addrMask] = val
}

func (m *Machine) skip() {
	m.pc = (m.pc + 2) & addrMask
}
