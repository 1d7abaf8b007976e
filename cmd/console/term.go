package main

import (
	"fmt"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// terminal switches stdin between canonical and raw mode and reports the
// output geometry.
type terminal struct {
	input  *os.File
	output *os.File

	canAttr unix.Termios
	rawAttr unix.Termios
}

func newTerminal(input, output *os.File) (*terminal, error) {
	t := &terminal{input: input, output: output}
	if err := termios.Tcgetattr(input.Fd(), &t.canAttr); err != nil {
		return nil, fmt.Errorf("reading terminal attributes: %w", err)
	}
	t.rawAttr = t.canAttr
	termios.Cfmakeraw(&t.rawAttr)
	// block until at least one byte is available
	t.rawAttr.Cc[unix.VMIN] = 1
	t.rawAttr.Cc[unix.VTIME] = 0
	return t, nil
}

func (t *terminal) rawMode() error {
	return termios.Tcsetattr(t.input.Fd(), termios.TCSANOW, &t.rawAttr)
}

func (t *terminal) canonicalMode() error {
	return termios.Tcsetattr(t.input.Fd(), termios.TCSANOW, &t.canAttr)
}

// size returns the output dimensions in character cells.
func (t *terminal) size() (cols, rows int, err error) {
	ws, err := unix.IoctlGetWinsize(int(t.output.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, err
	}
	return int(ws.Col), int(ws.Row), nil
}

// readKeys forwards bytes read from the input to keys until the read fails.
func (t *terminal) readKeys(keys chan<- byte) {
	defer close(keys)
	buf := make([]byte, 16)
	for {
		n, err := t.input.Read(buf)
		for _, b := range buf[:n] {
			keys <- b
		}
		if err != nil {
			return
		}
	}
}
