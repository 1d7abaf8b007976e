package main

import (
	"strings"

	"chip8console/pkg/keypad"
	"chip8console/pkg/scheduler"
)

const (
	keyQuit  = 'q'
	keyCtrlC = 0x03
)

// holdFrames is how long a keypad line stays down after a key byte arrives.
// Terminals report no key releases, and auto repeat refreshes the hold.
const holdFrames = 6

var controls = map[byte]scheduler.Action{
	' ': scheduler.StartPause,
	'n': scheduler.Step,
	'r': scheduler.Reset,
	't': scheduler.Turbo,
	'l': scheduler.LoadROM,
}

// keyHolder presses keypad lines on key bytes and releases them once their
// hold runs out.
type keyHolder struct {
	mapper *keypad.Mapper
	held   map[string]int
}

func newKeyHolder(mapper *keypad.Mapper) *keyHolder {
	return &keyHolder{mapper: mapper, held: map[string]int{}}
}

// press forwards every key byte to the mapper, auto repeats included, and
// reports whether b is a keypad key.
func (h *keyHolder) press(b byte) bool {
	symbol := strings.ToUpper(string(rune(b)))
	if !h.mapper.KeyDown(symbol) {
		return false
	}
	h.held[symbol] = holdFrames
	return true
}

// frame counts down every held key and releases the expired ones.
func (h *keyHolder) frame() {
	for symbol, left := range h.held {
		if left <= 1 {
			h.mapper.KeyUp(symbol)
			delete(h.held, symbol)
			continue
		}
		h.held[symbol] = left - 1
	}
}

func (h *keyHolder) releaseAll() {
	for symbol := range h.held {
		h.mapper.KeyUp(symbol)
	}
	clear(h.held)
}
