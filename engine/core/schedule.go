package core

import "time"

// WaitMode selects how the pump waits between frames.
type WaitMode uint8

const (
	// WaitBlocking sleeps, then blocks for at most one event.
	WaitBlocking WaitMode = iota
	// WaitDrain polls every queued event without blocking.
	WaitDrain
)

func (m WaitMode) String() string {
	if m == WaitDrain {
		return "drain"
	}
	return "blocking"
}

// WaitPolicy is the idle scheduler's decision for one frame.
type WaitPolicy struct {
	Mode    WaitMode
	Sleep   time.Duration
	Timeout time.Duration
}

type SchedulerConfig struct {
	IdleSleep   time.Duration
	WaitTimeout time.Duration
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{IdleSleep: 10 * time.Millisecond, WaitTimeout: 5 * time.Millisecond}
}

// Schedule decides how to wait after a frame. It is pure: the same inputs
// always yield the same policy.
func Schedule(needsRepaint bool, cfg SchedulerConfig) WaitPolicy {
	if needsRepaint {
		return WaitPolicy{Mode: WaitDrain}
	}
	return WaitPolicy{Mode: WaitBlocking, Sleep: cfg.IdleSleep, Timeout: cfg.WaitTimeout}
}

// Clock abstracts time so the pump can be driven deterministically.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}
