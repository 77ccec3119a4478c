package core

import "time"

// LoopState is owned by the frame pump. The UI callback only reaches it
// through Frame, whose writes are committed after EndFrame.
type LoopState struct {
	start time.Time
	quit  bool
	vsync bool
}

func NewLoopState(start time.Time, vsync bool) *LoopState {
	return &LoopState{start: start, vsync: vsync}
}

func (s *LoopState) Start() time.Time { return s.start }
func (s *LoopState) Quit() bool       { return s.quit }
func (s *LoopState) VSync() bool      { return s.vsync }

// RequestQuit sets the quit flag. There is no way to clear it.
func (s *LoopState) RequestQuit() { s.quit = true }

// Elapsed is seconds since the loop started.
func (s *LoopState) Elapsed(now time.Time) float64 { return now.Sub(s.start).Seconds() }

// Frame is the UI callback's handle on the loop for one frame.
type Frame struct {
	Index uint64  // frames since start, from 0
	Time  float64 // snapshot time, seconds

	state *LoopState
	vsync bool
	quit  bool
}

func newFrame(st *LoopState, index uint64, t float64) *Frame {
	return &Frame{Index: index, Time: t, state: st, vsync: st.vsync, quit: st.quit}
}

// VSync reports the presentation policy as it will be after this frame.
func (f *Frame) VSync() bool { return f.vsync }

// SetVSync changes the presentation policy starting with the next frame.
func (f *Frame) SetVSync(on bool) { f.vsync = on }

// VSyncRef exposes the staged policy for checkbox-style widgets.
func (f *Frame) VSyncRef() *bool { return &f.vsync }

// RequestQuit ends the loop once this frame has been presented.
func (f *Frame) RequestQuit() { f.quit = true }

func (f *Frame) Quitting() bool { return f.quit }

func (f *Frame) commit() {
	f.state.vsync = f.vsync
	if f.quit {
		f.state.RequestQuit()
	}
}
