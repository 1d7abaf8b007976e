package inspect

import (
	"fmt"
	"strings"
)

// Panel keeps the most recent memory rows and register tables and lays them
// out as text lines for terminal and window frontends.
type Panel struct {
	rows   []MemoryRow
	tables RegisterTables
}

func (p *Panel) SetMemoryRows(rows []MemoryRow) {
	p.rows = rows
}

func (p *Panel) SetRegisterTables(tables RegisterTables) {
	p.tables = tables
}

func (p *Panel) MemoryRows() []MemoryRow {
	return p.rows
}

func (p *Panel) RegisterTables() RegisterTables {
	return p.tables
}

// FormatRow renders a memory row, bracketing the active cells:
//
//	0200..0207: [60][0a] 61  0f  a2  2a  d0  15
func FormatRow(row MemoryRow) string {
	var sb strings.Builder
	sb.WriteString(row.Label())
	sb.WriteString(":")
	for _, c := range row.Cells {
		if c.Active {
			fmt.Fprintf(&sb, "[%s]", c.Text())
		} else {
			fmt.Fprintf(&sb, " %s ", c.Text())
		}
	}
	return sb.String()
}

func (p *Panel) MemoryLines() []string {
	lines := make([]string, 0, len(p.rows))
	for _, row := range p.rows {
		lines = append(lines, FormatRow(row))
	}
	return lines
}

// RegisterLines lays the stack, general purpose and scalar tables out side by
// side under a header line.
func (p *Panel) RegisterLines() []string {
	t := p.tables
	n := max(len(t.Stack), len(t.GPR), len(t.Scalars))
	lines := make([]string, 0, n+1)
	lines = append(lines, fmt.Sprintf("%-10s %-8s %s", "STACK", "V", "REG"))
	for i := range n {
		lines = append(lines, strings.TrimRight(fmt.Sprintf("%-10s %-8s %s",
			cell(t.Stack, i), cell(t.GPR, i), cell(t.Scalars, i)), " "))
	}
	return lines
}

func cell(rows []TableRow, i int) string {
	if i >= len(rows) {
		return ""
	}
	return rows[i].Label + " " + rows[i].Value
}
