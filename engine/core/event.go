package core

// Event is a native window/input event. The set is closed; platforms
// translate their own events into these and drop the rest.
type Event interface{ isEvent() }

// EventQuit asks the loop to terminate.
type EventQuit struct{}

// EventResize reports the new window size in screen coordinates.
type EventResize struct{ W, H int }

// EventFramebufferResize reports the new framebuffer size in pixels.
type EventFramebufferResize struct{ W, H int }

// EventScale reports a content scale (DPI) change.
type EventScale struct{ X, Y float32 }

type EventFocus struct{ Focused bool }

type EventKey struct {
	Key    Key
	Down   bool
	Repeat bool
	Mods   Mod
}

// EventChar carries one unit of text input.
type EventChar struct{ Rune rune }

// EventPaste carries text the platform pasted on its own, such as a
// terminal's bracketed paste or a clipboard read that completes later.
type EventPaste struct{ Text string }

// EventMouseMove is the cursor position in screen coordinates.
type EventMouseMove struct{ X, Y float64 }

type EventMouseButton struct {
	Button MouseButton
	Down   bool
	Mods   Mod
}

type EventScroll struct{ Xoff, Yoff float64 }

// EventMouseLeave is sent when the cursor leaves the window.
type EventMouseLeave struct{}

func (EventQuit) isEvent()              {}
func (EventResize) isEvent()            {}
func (EventFramebufferResize) isEvent() {}
func (EventScale) isEvent()             {}
func (EventFocus) isEvent()             {}
func (EventKey) isEvent()               {}
func (EventChar) isEvent()              {}
func (EventPaste) isEvent()             {}
func (EventMouseMove) isEvent()         {}
func (EventMouseButton) isEvent()       {}
func (EventScroll) isEvent()            {}
func (EventMouseLeave) isEvent()        {}

// Key/mod enums (subset; add as needed).
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeySpace
	KeyA
	KeyC
	KeyP
	KeyV
	KeyX
	KeyZ
)

func (k Key) String() string {
	switch k {
	case KeyEscape:
		return "Escape"
	case KeyEnter:
		return "Enter"
	case KeyTab:
		return "Tab"
	case KeyBackspace:
		return "Backspace"
	case KeyDelete:
		return "Delete"
	case KeyLeft:
		return "Left"
	case KeyRight:
		return "Right"
	case KeyUp:
		return "Up"
	case KeyDown:
		return "Down"
	case KeyHome:
		return "Home"
	case KeyEnd:
		return "End"
	case KeySpace:
		return "Space"
	case KeyA:
		return "A"
	case KeyC:
		return "C"
	case KeyP:
		return "P"
	case KeyV:
		return "V"
	case KeyX:
		return "X"
	case KeyZ:
		return "Z"
	default:
		return "Unknown"
	}
}

type Mod int

const (
	ModNone  Mod = 0
	ModShift Mod = 1 << 0
	ModCtrl  Mod = 1 << 1
	ModAlt   Mod = 1 << 2
	ModSuper Mod = 1 << 3
)

// Command reports whether the platform "command" modifier is held.
func (m Mod) Command() bool { return m&(ModCtrl|ModSuper) != 0 }

type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
	mouseButtonCount
)
