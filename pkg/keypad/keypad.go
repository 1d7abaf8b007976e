// Package keypad maps physical key symbols onto the sixteen lines of the hex
// keypad.
package keypad

import "strings"

// Sink receives keypad line transitions. The machine implements it.
type Sink interface {
	SetKeyDown(code uint8)
	SetKeyUp(code uint8)
}

// Bindings is the fixed symbol to keypad line table.
type Bindings struct {
	lines map[string]uint8
}

// DefaultBindings binds 0-9 and A-F to lines 0x0-0xF.
var DefaultBindings = newBindings("0123456789ABCDEF")

func newBindings(symbols string) Bindings {
	b := Bindings{lines: make(map[string]uint8, len(symbols))}
	for code, r := range symbols {
		b.lines[string(r)] = uint8(code)
	}
	return b
}

// Lookup returns the keypad line bound to symbol. Symbols are matched case
// insensitively.
func (b Bindings) Lookup(symbol string) (uint8, bool) {
	code, ok := b.lines[strings.ToUpper(symbol)]
	return code, ok
}

// Mapper forwards key transitions for bound symbols to a Sink. Repeated key
// downs are forwarded unchanged.
type Mapper struct {
	bindings Bindings
	sink     Sink
}

func NewMapper(bindings Bindings, sink Sink) *Mapper {
	return &Mapper{bindings: bindings, sink: sink}
}

// KeyDown reports whether symbol is bound, and presses its line if so.
func (m *Mapper) KeyDown(symbol string) bool {
	code, ok := m.bindings.Lookup(symbol)
	if ok {
		m.sink.SetKeyDown(code)
	}
	return ok
}

// KeyUp reports whether symbol is bound, and releases its line if so.
func (m *Mapper) KeyUp(symbol string) bool {
	code, ok := m.bindings.Lookup(symbol)
	if ok {
		m.sink.SetKeyUp(code)
	}
	return ok
}
