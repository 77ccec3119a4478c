package core

// InputEvent is one UI-level input event inside a snapshot.
type InputEvent interface{ isInputEvent() }

// PointerMoved is the pointer position in points.
type PointerMoved struct{ X, Y float32 }

type PointerButton struct {
	X, Y    float32
	Button  MouseButton
	Pressed bool
	Mods    Mod
}

// PointerGone is sent when the pointer leaves the window.
type PointerGone struct{}

// Text is typed text, already filtered of control characters.
type Text struct{ Text string }

type KeyInput struct {
	Key     Key
	Pressed bool
	Mods    Mod
}

// Scroll is a wheel delta in points.
type Scroll struct{ DX, DY float32 }

type Copy struct{}

type Cut struct{}

type Paste struct{ Text string }

func (PointerMoved) isInputEvent()  {}
func (PointerButton) isInputEvent() {}
func (PointerGone) isInputEvent()   {}
func (Text) isInputEvent()          {}
func (KeyInput) isInputEvent()      {}
func (Scroll) isInputEvent()        {}
func (Copy) isInputEvent()          {}
func (Cut) isInputEvent()           {}
func (Paste) isInputEvent()         {}

// InputSnapshot is everything the UI layer sees for one frame.
type InputSnapshot struct {
	Time             float64 // seconds since loop start
	ScreenW, ScreenH float32 // points
	PixelsPerPoint   float32
	Focused          bool
	Modifiers        Mod
	Events           []InputEvent // arrival order
}

// scrollPoints is the distance one wheel notch travels.
const scrollPoints = 50

// Input accumulates native events into the next InputSnapshot.
type Input struct {
	pending   InputSnapshot
	dpiScale  float32 // configured pixels per point; 0 follows the host
	pointerX  float32
	pointerY  float32
	hasWindow bool
}

func NewInput(dpiScale float32) *Input {
	return &Input{dpiScale: dpiScale, pending: InputSnapshot{Focused: true, PixelsPerPoint: 1}}
}

// Sync refreshes the screen geometry from the host without queuing events.
func (in *Input) Sync(h Host) {
	in.pending.PixelsPerPoint = in.pixelsPerPoint(h)
	fw, fh := h.FramebufferSize()
	in.pending.ScreenW = float32(fw) / in.pending.PixelsPerPoint
	in.pending.ScreenH = float32(fh) / in.pending.PixelsPerPoint
	in.hasWindow = true
}

// PixelsPerPoint is the scale of the snapshot currently being built.
func (in *Input) PixelsPerPoint() float32 { return in.pending.PixelsPerPoint }

// Pointer returns the last known pointer position in points.
func (in *Input) Pointer() (float32, float32) { return in.pointerX, in.pointerY }

// Fuse maps one native event onto the pending snapshot. EventQuit skips
// the snapshot and sets the quit flag on st. Unknown events are ignored.
func (in *Input) Fuse(h Host, ev Event, st *LoopState) {
	if !in.hasWindow {
		in.Sync(h)
	}
	switch e := ev.(type) {
	case EventQuit:
		st.RequestQuit()
	case EventResize, EventFramebufferResize, EventScale:
		in.Sync(h)
	case EventFocus:
		in.pending.Focused = e.Focused
	case EventMouseMove:
		in.pointerX, in.pointerY = in.toPoints(h, e.X, e.Y)
		in.push(PointerMoved{X: in.pointerX, Y: in.pointerY})
	case EventMouseLeave:
		in.push(PointerGone{})
	case EventMouseButton:
		in.pending.Modifiers = e.Mods
		in.push(PointerButton{X: in.pointerX, Y: in.pointerY, Button: e.Button, Pressed: e.Down, Mods: e.Mods})
	case EventScroll:
		in.push(Scroll{DX: float32(e.Xoff) * scrollPoints, DY: float32(e.Yoff) * scrollPoints})
	case EventChar:
		if e.Rune < 0x20 || e.Rune == 0x7f || in.pending.Modifiers.Command() {
			return
		}
		in.push(Text{Text: string(e.Rune)})
	case EventPaste:
		if e.Text != "" {
			in.push(Paste{Text: e.Text})
		}
	case EventKey:
		in.pending.Modifiers = e.Mods
		if e.Down && e.Mods.Command() {
			switch e.Key {
			case KeyC:
				in.push(Copy{})
				return
			case KeyX:
				in.push(Cut{})
				return
			case KeyV:
				in.push(Paste{Text: h.Clipboard()})
				return
			}
		}
		in.push(KeyInput{Key: e.Key, Pressed: e.Down, Mods: e.Mods})
	}
}

// SetTime stamps the pending snapshot.
func (in *Input) SetTime(t float64) { in.pending.Time = t }

// Take hands over the pending snapshot and starts a new one. Geometry,
// focus and modifiers carry over; events do not.
func (in *Input) Take() InputSnapshot {
	out := in.pending
	in.pending.Events = nil
	return out
}

func (in *Input) push(ev InputEvent) {
	in.pending.Events = append(in.pending.Events, ev)
}

func (in *Input) pixelsPerPoint(h Host) float32 {
	if in.dpiScale > 0 {
		return in.dpiScale
	}
	if s := h.ContentScale(); s > 0 {
		return s
	}
	return 1
}

// toPoints converts screen coordinates to points via the framebuffer scale.
func (in *Input) toPoints(h Host, x, y float64) (float32, float32) {
	ww, _ := h.WindowSize()
	fw, _ := h.FramebufferSize()
	fb := float32(1)
	if ww > 0 && fw > 0 {
		fb = float32(fw) / float32(ww)
	}
	k := fb / in.pending.PixelsPerPoint
	return float32(x) * k, float32(y) * k
}
