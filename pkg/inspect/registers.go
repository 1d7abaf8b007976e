package inspect

import (
	"encoding/binary"
	"fmt"
	"strings"

	"chip8console/pkg/arena"
)

// TableRow is a label and its formatted value.
type TableRow struct {
	Label string
	Value string
}

// Scalar is a named register value shown as Bytes bytes of hex.
type Scalar struct {
	Name  string
	Bytes int
	Value uint16
}

func (s Scalar) Text() string {
	return fmt.Sprintf("0x%0*X", s.Bytes*2, s.Value)
}

// RegisterTables are the three register panels.
type RegisterTables struct {
	Stack   []TableRow
	GPR     []TableRow
	Scalars []TableRow
}

// RegisterTarget displays the register panels.
type RegisterTarget interface {
	SetRegisterTables(tables RegisterTables)
}

// ScalarSource exposes the machine's scalar registers.
type ScalarSource interface {
	IndexRegister() uint16
	ProgramCounter() uint16
	StackPointer() uint8
	DelayTimer() uint8
	SoundTimer() uint8
}

// Scalars reads the scalar registers in display order.
func Scalars(src ScalarSource) []Scalar {
	return []Scalar{
		{Name: "i", Bytes: 2, Value: src.IndexRegister()},
		{Name: "pc", Bytes: 2, Value: src.ProgramCounter()},
		{Name: "sp", Bytes: 1, Value: uint16(src.StackPointer())},
		{Name: "dt", Bytes: 1, Value: uint16(src.DelayTimer())},
		{Name: "st", Bytes: 1, Value: uint16(src.SoundTimer())},
	}
}

// StackTable formats a little-endian u16 stack.
func StackTable(stack []byte) []TableRow {
	rows := make([]TableRow, 0, len(stack)/2)
	for n := 0; n+1 < len(stack); n += 2 {
		rows = append(rows, TableRow{
			Label: fmt.Sprintf("%X", n/2),
			Value: fmt.Sprintf("0x%04X", binary.LittleEndian.Uint16(stack[n:])),
		})
	}
	return rows
}

func GPRTable(gpr []byte) []TableRow {
	rows := make([]TableRow, 0, len(gpr))
	for n, v := range gpr {
		rows = append(rows, TableRow{
			Label: fmt.Sprintf("%X", n),
			Value: fmt.Sprintf("0x%02X", v),
		})
	}
	return rows
}

func ScalarTable(scalars []Scalar) []TableRow {
	rows := make([]TableRow, 0, len(scalars))
	for _, s := range scalars {
		rows = append(rows, TableRow{Label: strings.ToUpper(s.Name), Value: s.Text()})
	}
	return rows
}

// RegisterInspector renders borrowed stack and register views, plus the
// scalar registers, into a RegisterTarget. Nothing is cached between renders.
type RegisterInspector struct {
	stack   arena.View
	gpr     arena.View
	scalars ScalarSource
	target  RegisterTarget
}

func NewRegisterInspector(stack, gpr arena.View, scalars ScalarSource, target RegisterTarget) *RegisterInspector {
	return &RegisterInspector{stack: stack, gpr: gpr, scalars: scalars, target: target}
}

// Rebind replaces the borrowed stack and register views.
func (r *RegisterInspector) Rebind(stack, gpr arena.View) {
	r.stack = stack
	r.gpr = gpr
}

func (r *RegisterInspector) Render() error {
	stack, err := r.stack.Bytes()
	if err != nil {
		return err
	}
	gpr, err := r.gpr.Bytes()
	if err != nil {
		return err
	}
	r.target.SetRegisterTables(RegisterTables{
		Stack:   StackTable(stack),
		GPR:     GPRTable(gpr),
		Scalars: ScalarTable(Scalars(r.scalars)),
	})
	return nil
}
