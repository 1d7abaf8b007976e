// Package inspect renders the machine's memory and registers as hex tables.
package inspect

import (
	"fmt"

	"chip8console/pkg/arena"
)

// DefaultRowWidth is the number of bytes shown per memory row.
const DefaultRowWidth = 8

// Rows kept visible above and below the row holding the program counter.
const (
	rowsBefore = 7
	rowsAfter  = 8
)

// MemoryWindow is the address range shown around an anchor.
type MemoryWindow struct {
	Anchor      int
	RowWidth    int
	VisibleFrom int
	VisibleTo   int
}

// ComputeWindow returns the window of rows around pc, clamped to
// [0, memSize). It never fails.
func ComputeWindow(pc, rowWidth, memSize int) MemoryWindow {
	rowWidth = max(rowWidth, 1)
	rowStart := pc - pc%rowWidth
	return MemoryWindow{
		Anchor:      pc,
		RowWidth:    rowWidth,
		VisibleFrom: max(rowStart-rowsBefore*rowWidth, 0),
		VisibleTo:   max(min(rowStart+rowsAfter*rowWidth, memSize), 0),
	}
}

type MemoryCell struct {
	Addr   int
	Value  byte
	Active bool
}

func (c MemoryCell) Text() string {
	return fmt.Sprintf("%02x", c.Value)
}

// MemoryRow is one line of the hex panel. End is inclusive.
type MemoryRow struct {
	Start int
	End   int
	Cells []MemoryCell
}

func (r MemoryRow) Label() string {
	return fmt.Sprintf("%04x..%04x", r.Start, r.End)
}

// MemoryTarget displays memory rows.
type MemoryTarget interface {
	SetMemoryRows(rows []MemoryRow)
}

// Rows lays out the window of mem around pc. A cell is active when it holds
// either byte of the instruction at pc.
func Rows(mem []byte, pc, rowWidth int) []MemoryRow {
	w := ComputeWindow(pc, rowWidth, len(mem))
	rows := make([]MemoryRow, 0, (w.VisibleTo-w.VisibleFrom+w.RowWidth-1)/w.RowWidth)
	for start := w.VisibleFrom; start < w.VisibleTo; start += w.RowWidth {
		end := min(start+w.RowWidth, w.VisibleTo)
		row := MemoryRow{
			Start: start,
			End:   start + w.RowWidth - 1,
			Cells: make([]MemoryCell, 0, end-start),
		}
		for addr := start; addr < end; addr++ {
			row.Cells = append(row.Cells, MemoryCell{
				Addr:   addr,
				Value:  mem[addr],
				Active: addr == pc || addr == pc+1,
			})
		}
		rows = append(rows, row)
	}
	return rows
}

// MemoryInspector renders a borrowed memory view into a MemoryTarget.
type MemoryInspector struct {
	view     arena.View
	target   MemoryTarget
	rowWidth int
}

func NewMemoryInspector(view arena.View, target MemoryTarget) *MemoryInspector {
	return &MemoryInspector{view: view, target: target, rowWidth: DefaultRowWidth}
}

// Rebind replaces the borrowed memory view.
func (m *MemoryInspector) Rebind(view arena.View) {
	m.view = view
}

func (m *MemoryInspector) Render(pc uint16) error {
	mem, err := m.view.Bytes()
	if err != nil {
		return err
	}
	m.target.SetMemoryRows(Rows(mem, int(pc), m.rowWidth))
	return nil
}
