package main

import (
	"fmt"
	"io"
	"strings"

	"chip8console/pkg/display"
	"chip8console/pkg/grid"
	"chip8console/pkg/inspect"
	"chip8console/pkg/scheduler"
)

const (
	clearScreen = "\x1b[2J"
	cursorHome  = "\x1b[H"
	clearToEnd  = "\x1b[J"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
)

// screenCols and screenRows are the smallest terminal the layout fits in.
const (
	screenCols = display.Width + 2
	screenRows = display.Height/2 + 2 + 17 + 17 + 3
)

// cellSurface keeps the last uploaded framebuffer so it can be drawn with
// half block characters, two pixel rows per text line.
type cellSurface struct {
	pix []byte
}

func (s *cellSurface) WritePixels(pix []byte) {
	if s.pix == nil {
		s.pix = make([]byte, len(pix))
	}
	copy(s.pix, pix)
}

func (s *cellSurface) lit(x, y int) bool {
	if s.pix == nil {
		return false
	}
	i := grid.GetIndex(x, y, display.Width) * 4
	return s.pix[i+1] != 0
}

// lines returns the framebuffer as Height/2 rows of text inside a border.
func (s *cellSurface) lines() []string {
	out := make([]string, 0, display.Height/2+2)
	border := "+" + strings.Repeat("-", display.Width) + "+"
	out = append(out, border)

	var sb strings.Builder
	for y := 0; y < display.Height; y += 2 {
		sb.Reset()
		sb.WriteByte('|')
		for x := range display.Width {
			top, bottom := s.lit(x, y), s.lit(x, y+1)
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('|')
		out = append(out, sb.String())
	}
	return append(out, border)
}

type screen struct {
	surface *cellSurface
	panel   *inspect.Panel
	notices *scheduler.NoticeLog
}

func statusLine(sched *scheduler.Scheduler) string {
	s := sched.Schedule()
	rom := sched.ROMName()
	if rom == "" {
		rom = "(no rom)"
	}
	turbo := ""
	if s.Turbo {
		turbo = " TURBO"
	}
	return fmt.Sprintf("%s  %s%s  %d ticks/frame  %s pacing",
		rom, strings.ToUpper(s.Mode.String()), turbo, s.EffectiveTicks(), sched.Pacer())
}

// draw writes one full frame. Raw mode disables output post processing so
// lines end in CRLF.
func (sc *screen) draw(w io.Writer, sched *scheduler.Scheduler) error {
	var sb strings.Builder
	sb.WriteString(cursorHome)

	line := func(s string) {
		sb.WriteString(s)
		sb.WriteString("\x1b[K\r\n")
	}

	for _, l := range sc.surface.lines() {
		line(l)
	}
	line(statusLine(sched))
	line("")
	for _, l := range sc.panel.MemoryLines() {
		line(l)
	}
	line("")
	for _, l := range sc.panel.RegisterLines() {
		line(l)
	}
	line("")
	if n, ok := sc.notices.Last(); ok {
		line(fmt.Sprintf("[%s] %s", n.Level, n.Message))
	} else {
		line("")
	}
	line("space run/pause  n step  r reset  t turbo  l reload  q quit  0-9 a-f keypad")
	sb.WriteString(clearToEnd)

	_, err := io.WriteString(w, sb.String())
	return err
}
