package scheduler

import (
	"fmt"
	"io"

	"github.com/retroenv/retrogolib/log"
)

// Action is one of the discrete console controls.
type Action int

const (
	StartPause Action = iota + 1
	Step
	Reset
	Turbo
	LoadROM
)

var actionNames = map[Action]string{
	StartPause: "start/pause",
	Step:       "step",
	Reset:      "reset",
	Turbo:      "turbo",
	LoadROM:    "load rom",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Command is a control triggered by the user. ROM and ROMName are only read
// by LoadROM.
type Command struct {
	Action  Action
	ROMName string
	ROM     io.Reader
}

// Dispatch runs a command. Commands the scheduler does not know are reported
// to the notifier and leave all state untouched.
func (s *Scheduler) Dispatch(cmd Command) error {
	switch cmd.Action {
	case StartPause:
		s.ToggleRun()
	case Step:
		s.Step()
	case Reset:
		s.Reset()
	case Turbo:
		s.ToggleTurbo()
	case LoadROM:
		s.LoadROM(cmd.ROMName, cmd.ROM)
	default:
		err := fmt.Errorf("%w: %s", ErrUnimplemented, cmd.Action)
		s.logger.Warn("Unknown command", log.Int("action", int(cmd.Action)))
		s.notify(LevelWarn, err)
		return err
	}
	return nil
}
