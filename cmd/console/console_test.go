package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chip8console/pkg/chip8"
	"chip8console/pkg/display"
	"chip8console/pkg/keypad"
)

type recordingSink struct {
	events []string
}

func (r *recordingSink) SetKeyDown(code uint8) {
	r.events = append(r.events, fmt.Sprintf("down %X", code))
}

func (r *recordingSink) SetKeyUp(code uint8) {
	r.events = append(r.events, fmt.Sprintf("up %X", code))
}

func TestKeyHolderReleasesAfterHold(t *testing.T) {
	sink := &recordingSink{}
	h := newKeyHolder(keypad.NewMapper(keypad.DefaultBindings, sink))

	assert.True(t, h.press('a'))
	assert.False(t, h.press('z'))
	for range holdFrames - 1 {
		h.frame()
	}
	assert.Equal(t, []string{"down A"}, sink.events)

	h.frame()
	assert.Equal(t, []string{"down A", "up A"}, sink.events)
	assert.Empty(t, h.held)
}

func TestKeyHolderRepeatExtendsHold(t *testing.T) {
	sink := &recordingSink{}
	h := newKeyHolder(keypad.NewMapper(keypad.DefaultBindings, sink))

	h.press('5')
	h.frame()
	h.frame()
	h.press('5')
	for range holdFrames - 1 {
		h.frame()
	}
	assert.Equal(t, []string{"down 5", "down 5"}, sink.events, "a repeat is forwarded and extends the hold")

	h.press('7')
	h.releaseAll()
	assert.ElementsMatch(t, []string{"down 5", "down 5", "down 7", "up 5", "up 7"}, sink.events)
}

func TestKeyHolderForwardsAutoRepeat(t *testing.T) {
	sink := &recordingSink{}
	h := newKeyHolder(keypad.NewMapper(keypad.DefaultBindings, sink))

	for _, b := range []byte("aaA") {
		assert.True(t, h.press(b))
	}
	assert.Equal(t, []string{"down A", "down A", "down A"}, sink.events)
	assert.Len(t, h.held, 1)

	for range holdFrames {
		h.frame()
	}
	assert.Equal(t, []string{"down A", "down A", "down A", "up A"}, sink.events)
}

func TestControlsDoNotShadowKeypad(t *testing.T) {
	for b := range controls {
		_, bound := keypad.DefaultBindings.Lookup(string(rune(b)))
		assert.False(t, bound, "control %q is also a keypad key", b)
	}
	for _, b := range []byte{keyQuit, keyCtrlC} {
		_, bound := keypad.DefaultBindings.Lookup(string(rune(b)))
		assert.False(t, bound, "%q is also a keypad key", b)
		_, control := controls[b]
		assert.False(t, control, "%q is also a control", b)
	}
}

func TestCellSurfaceLines(t *testing.T) {
	s := &cellSurface{}
	lines := s.lines()
	require.Len(t, lines, display.Height/2+2)
	assert.Equal(t, "|"+strings.Repeat(" ", display.Width)+"|", lines[1])

	pix := make([]byte, display.Width*display.Height*4)
	light := func(x, y int) {
		i := (y*display.Width + x) * 4
		copy(pix[i:], chip8.PixelOn[:])
	}
	light(0, 0)
	light(1, 1)
	light(2, 0)
	light(2, 1)
	s.WritePixels(pix)

	lines = s.lines()
	assert.True(t, strings.HasPrefix(lines[1], "|▀▄█ "), lines[1])
}
