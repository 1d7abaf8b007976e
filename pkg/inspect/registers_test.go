package inspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chip8console/pkg/arena"
)

type scalars struct {
	i, pc      uint16
	sp, dt, st uint8
}

func (s scalars) IndexRegister() uint16  { return s.i }
func (s scalars) ProgramCounter() uint16 { return s.pc }
func (s scalars) StackPointer() uint8    { return s.sp }
func (s scalars) DelayTimer() uint8      { return s.dt }
func (s scalars) SoundTimer() uint8      { return s.st }

type tableSink struct {
	tables RegisterTables
}

func (s *tableSink) SetRegisterTables(tables RegisterTables) {
	s.tables = tables
}

func TestStackTableLittleEndian(t *testing.T) {
	stack := make([]byte, 32)
	stack[0], stack[1] = 0x02, 0x04
	stack[30], stack[31] = 0xEF, 0xBE

	rows := StackTable(stack)
	require.Len(t, rows, 16)
	assert.Equal(t, TableRow{Label: "0", Value: "0x0402"}, rows[0])
	assert.Equal(t, TableRow{Label: "1", Value: "0x0000"}, rows[1])
	assert.Equal(t, TableRow{Label: "F", Value: "0xBEEF"}, rows[15])
}

func TestGPRTable(t *testing.T) {
	gpr := make([]byte, 16)
	gpr[0xA] = 0x0b
	rows := GPRTable(gpr)
	require.Len(t, rows, 16)
	assert.Equal(t, TableRow{Label: "A", Value: "0x0B"}, rows[0xA])
	assert.Equal(t, "0x00", rows[0].Value)
}

func TestScalarPadding(t *testing.T) {
	rows := ScalarTable(Scalars(scalars{i: 0xab, pc: 0x200, sp: 3, dt: 0x1f, st: 0}))
	assert.Equal(t, []TableRow{
		{"I", "0x00AB"},
		{"PC", "0x0200"},
		{"SP", "0x03"},
		{"DT", "0x1F"},
		{"ST", "0x00"},
	}, rows)
}

func TestRegisterInspectorReadsLiveValues(t *testing.T) {
	a := arena.New(48)
	sink := &tableSink{}
	src := &scalars{pc: 0x200}
	r := NewRegisterInspector(a.View(0, 32), a.View(32, 16), src, sink)

	require.NoError(t, r.Render())
	assert.Equal(t, "0x00", sink.tables.GPR[1].Value)

	a.Slice(32, 16)[1] = 0x42
	src.pc = 0x202
	require.NoError(t, r.Render())
	assert.Equal(t, "0x42", sink.tables.GPR[1].Value)
	assert.Equal(t, "0x0202", sink.tables.Scalars[1].Value)
}

func TestRegisterInspectorStaleView(t *testing.T) {
	a := arena.New(48)
	sink := &tableSink{}
	r := NewRegisterInspector(a.View(0, 32), a.View(32, 16), scalars{}, sink)

	a.Grow(64)
	assert.ErrorIs(t, r.Render(), arena.ErrStaleView)

	r.Rebind(a.View(0, 32), a.View(32, 16))
	assert.NoError(t, r.Render())
}

func TestPanelLines(t *testing.T) {
	mem := make([]byte, 4096)
	mem[0x200], mem[0x201] = 0x60, 0x0a

	p := &Panel{}
	p.SetMemoryRows(Rows(mem, 0x200, DefaultRowWidth))
	lines := p.MemoryLines()
	require.Len(t, lines, 15)
	assert.Equal(t, "0200..0207:[60][0a] 00  00  00  00  00  00 ", lines[7])

	stack := make([]byte, 32)
	p.SetRegisterTables(RegisterTables{
		Stack:   StackTable(stack),
		GPR:     GPRTable(make([]byte, 16)),
		Scalars: ScalarTable(Scalars(scalars{pc: 0x200})),
	})
	regs := p.RegisterLines()
	require.Len(t, regs, 17)
	assert.Equal(t, "0 0x0000   0 0x00   I 0x0000", regs[1])
	assert.Equal(t, "F 0x0000   F 0x00", regs[16])
}
