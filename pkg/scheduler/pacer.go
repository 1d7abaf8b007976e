package scheduler

import "time"

// Mode is the run state of the scheduler.
type Mode int

const (
	Paused Mode = iota
	Running
)

func (m Mode) String() string {
	if m == Running {
		return "running"
	}
	return "paused"
}

// TickSchedule is the run, turbo and pacing state. The scheduler owns it and
// hands it to renderers by pointer.
type TickSchedule struct {
	Mode              Mode
	TicksPerFrame     int
	TurboMultiplier   int
	Turbo             bool
	LastTickTimestamp time.Duration
}

// EffectiveTicks is the batch size for one eligible frame.
func (s *TickSchedule) EffectiveTicks() int {
	if s.Turbo {
		return s.TicksPerFrame * s.TurboMultiplier
	}
	return s.TicksPerFrame
}

// NeverTicked is the last tick timestamp of a fresh schedule. It sits just
// before zero so a rate gated frame at exactly one interval already ticks.
const NeverTicked = -time.Millisecond

// Pacer decides how many ticks a frame runs.
type Pacer interface {
	// Ticks returns the batch size for the frame at ts, updating the
	// schedule's last tick timestamp when it returns a non-zero batch.
	Ticks(s *TickSchedule, ts time.Duration) int
	// StampsTimers reports whether the machine timers are advanced with the
	// frame timestamp before every tick.
	StampsTimers() bool
	String() string
}

// RateGated runs one batch whenever more than 1/TargetRate seconds passed
// since the previous batch. The logical clock is TargetRate times the
// effective batch size per second, whatever the display refresh rate.
type RateGated struct {
	TargetRate float64
}

func (p RateGated) Ticks(s *TickSchedule, ts time.Duration) int {
	interval := time.Duration(float64(time.Second) / max(p.TargetRate, 1e-3))
	if ts <= s.LastTickTimestamp+interval {
		return 0
	}
	s.LastTickTimestamp = ts
	return s.EffectiveTicks()
}

func (p RateGated) StampsTimers() bool { return false }

func (p RateGated) String() string { return "rate" }

// FrameBudget runs one batch every frame and stamps the timers with the frame
// timestamp, so the logical clock follows the refresh rate while the timers
// stay at 60Hz wall clock.
type FrameBudget struct{}

func (FrameBudget) Ticks(s *TickSchedule, ts time.Duration) int {
	s.LastTickTimestamp = ts
	return s.EffectiveTicks()
}

func (FrameBudget) StampsTimers() bool { return true }

func (FrameBudget) String() string { return "frame" }
