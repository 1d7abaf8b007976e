package keypad

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type event struct {
	down bool
	code uint8
}

type recorder struct {
	events []event
}

func (r *recorder) SetKeyDown(code uint8) { r.events = append(r.events, event{true, code}) }
func (r *recorder) SetKeyUp(code uint8)   { r.events = append(r.events, event{false, code}) }

func TestBoundSymbols(t *testing.T) {
	for code := range 16 {
		for _, symbol := range []string{fmt.Sprintf("%X", code), fmt.Sprintf("%x", code)} {
			rec := &recorder{}
			m := NewMapper(DefaultBindings, rec)

			assert.True(t, m.KeyDown(symbol), symbol)
			assert.True(t, m.KeyUp(symbol), symbol)
			assert.Equal(t, []event{{true, uint8(code)}, {false, uint8(code)}}, rec.events, symbol)
		}
	}
}

func TestUnboundSymbolsIgnored(t *testing.T) {
	rec := &recorder{}
	m := NewMapper(DefaultBindings, rec)

	for _, symbol := range []string{"G", "g", "Shift", "", "10", "F1", " "} {
		assert.False(t, m.KeyDown(symbol), symbol)
		assert.False(t, m.KeyUp(symbol), symbol)
	}
	assert.Empty(t, rec.events)
}

func TestRepeatsForwarded(t *testing.T) {
	rec := &recorder{}
	m := NewMapper(DefaultBindings, rec)

	m.KeyDown("a")
	m.KeyDown("A")
	m.KeyUp("a")

	assert.Equal(t, []event{{true, 0xA}, {true, 0xA}, {false, 0xA}}, rec.events)
}
