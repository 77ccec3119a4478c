package profiler

import (
	"runtime"
	"time"
)

// FrameSample is the timing of one frame. Total runs from one frame start
// to the next, so it includes the idle wait; Active stops at Present.
type FrameSample struct {
	Total  time.Duration
	Active time.Duration
}

// Idle is the part of the frame spent sleeping or waiting for events.
func (s FrameSample) Idle() time.Duration {
	if s.Total < s.Active {
		return 0
	}
	return s.Total - s.Active
}

// FrameStats keeps a rolling window of frame timings. Not safe for
// concurrent use; the frame pump owns it.
type FrameStats struct {
	samples []FrameSample
	next    int
	filled  int
	frames  uint64

	begin   time.Time
	pending FrameSample
	open    bool
}

func NewFrameStats(window int) *FrameStats {
	if window <= 0 {
		window = 60
	}
	return &FrameStats{samples: make([]FrameSample, window)}
}

// Begin marks the start of a frame and closes the previous one.
func (s *FrameStats) Begin(now time.Time) {
	if s.open {
		s.pending.Total = now.Sub(s.begin)
		s.record(s.pending)
	}
	s.begin = now
	s.pending = FrameSample{}
	s.open = true
}

// Active marks the end of the frame's CPU work (after Present).
func (s *FrameStats) Active(now time.Time) {
	if s.open {
		s.pending.Active = now.Sub(s.begin)
	}
}

func (s *FrameStats) record(f FrameSample) {
	s.samples[s.next] = f
	s.next = (s.next + 1) % len(s.samples)
	if s.filled < len(s.samples) {
		s.filled++
	}
	s.frames++
}

// Frames is the number of completed frames recorded.
func (s *FrameStats) Frames() uint64 { return s.frames }

// Last returns the most recently completed frame.
func (s *FrameStats) Last() FrameSample {
	if s.filled == 0 {
		return FrameSample{}
	}
	i := (s.next - 1 + len(s.samples)) % len(s.samples)
	return s.samples[i]
}

// Average over the retained window.
func (s *FrameStats) Average() FrameSample {
	if s.filled == 0 {
		return FrameSample{}
	}
	var total, active time.Duration
	for i := 0; i < s.filled; i++ {
		total += s.samples[i].Total
		active += s.samples[i].Active
	}
	n := time.Duration(s.filled)
	return FrameSample{Total: total / n, Active: active / n}
}

// FPS derived from the average total frame time.
func (s *FrameStats) FPS() float64 {
	avg := s.Average().Total
	if avg <= 0 {
		return 0
	}
	return float64(time.Second) / float64(avg)
}

func MemoryUsage() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc
}

func MemoryAllocs() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Mallocs
}

func NumGoroutine() int { return runtime.NumGoroutine() }

func NumCPU() int { return runtime.NumCPU() }
