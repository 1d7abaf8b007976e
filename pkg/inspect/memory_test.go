package inspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chip8console/pkg/arena"
)

func TestComputeWindow(t *testing.T) {
	tests := []struct {
		pc, rowWidth, memSize int
		from, to              int
	}{
		{0x200, 8, 4096, 456, 576},
		{0x203, 8, 4096, 456, 576},
		{0x000, 8, 4096, 0, 64},
		{0x030, 8, 4096, 0, 112},
		{4094, 8, 4096, 4088 - 56, 4096},
		{0x200, 16, 4096, 0x200 - 112, 0x200 + 128},
	}

	for _, tt := range tests {
		w := ComputeWindow(tt.pc, tt.rowWidth, tt.memSize)
		assert.Equal(t, tt.from, w.VisibleFrom, "from pc=%d", tt.pc)
		assert.Equal(t, tt.to, w.VisibleTo, "to pc=%d", tt.pc)
		assert.Equal(t, tt.pc, w.Anchor)
		assert.LessOrEqual(t, 0, w.VisibleFrom)
		assert.LessOrEqual(t, w.VisibleFrom, w.VisibleTo)
		assert.LessOrEqual(t, w.VisibleTo, tt.memSize)
	}
}

func TestComputeWindowClampsEverywhere(t *testing.T) {
	for pc := 0; pc < 4096; pc++ {
		w := ComputeWindow(pc, DefaultRowWidth, 4096)
		if w.VisibleFrom < 0 || w.VisibleFrom > w.VisibleTo || w.VisibleTo > 4096 {
			t.Fatalf("ComputeWindow(%d): out of range window %+v", pc, w)
		}
		if pc < w.VisibleFrom || pc >= w.VisibleTo {
			t.Fatalf("ComputeWindow(%d): pc outside window %+v", pc, w)
		}
	}
}

func TestRowsActiveCells(t *testing.T) {
	mem := make([]byte, 4096)
	mem[0x204] = 0xAB
	mem[0x205] = 0xCD

	rows := Rows(mem, 0x204, DefaultRowWidth)
	require.Len(t, rows, 15)
	assert.Equal(t, "01c8..01cf", rows[0].Label())

	var active []MemoryCell
	for _, row := range rows {
		assert.Len(t, row.Cells, DefaultRowWidth)
		for _, c := range row.Cells {
			if c.Active {
				active = append(active, c)
			}
		}
	}
	require.Len(t, active, 2)
	assert.Equal(t, 0x204, active[0].Addr)
	assert.Equal(t, "ab", active[0].Text())
	assert.Equal(t, 0x205, active[1].Addr)
}

// An instruction straddling two rows marks the last cell of one row and the
// first cell of the next.
func TestRowsActiveAcrossRows(t *testing.T) {
	mem := make([]byte, 4096)
	rows := Rows(mem, 0x207, DefaultRowWidth)

	var active []int
	for _, row := range rows {
		for _, c := range row.Cells {
			if c.Active {
				active = append(active, c.Addr)
			}
		}
	}
	assert.Equal(t, []int{0x207, 0x208}, active)
}

type rowSink struct {
	rows  []MemoryRow
	calls int
}

func (s *rowSink) SetMemoryRows(rows []MemoryRow) {
	s.rows = rows
	s.calls++
}

func TestMemoryInspectorStaleView(t *testing.T) {
	a := arena.New(4096)
	sink := &rowSink{}
	m := NewMemoryInspector(a.View(0, 4096), sink)

	require.NoError(t, m.Render(0x200))
	assert.Equal(t, 1, sink.calls)

	a.Grow(8192)
	assert.ErrorIs(t, m.Render(0x200), arena.ErrStaleView)
	assert.Equal(t, 1, sink.calls)

	a.Slice(0, 4096)[0x200] = 0x12
	m.Rebind(a.View(0, 4096))
	require.NoError(t, m.Render(0x200))
	assert.Equal(t, byte(0x12), sink.rows[7].Cells[0].Value)
}
