package core

import (
	"time"

	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/profiler"
)

// App defines the application hooks driven by the frame pump.
type App interface {
	OnStart(e *Engine)           // called once after window/renderer init
	OnUI(e *Engine, f *Frame)    // builds this frame's widgets, between BeginFrame and EndFrame
	OnEvent(e *Engine, ev Event) // every native event, before it is fused into the UI input
	OnShutdown(e *Engine)        // before exit
}

// Engine exposes core services to the App.
type Engine struct {
	Window   Window
	Renderer Renderer
	UI       UI
	Layers   LayerStack
	Stats    *profiler.FrameStats
	clock    Clock
	start    time.Time
}

// Uptime is measured on the loop clock, the same one that stamps Frame.Time.
func (e *Engine) Uptime() time.Duration {
	if e.clock == nil {
		return time.Since(e.start)
	}
	return e.clock.Now().Sub(e.start)
}

// Host is the read-only view of the window the event translator needs.
type Host interface {
	WindowSize() (int, int)
	FramebufferSize() (int, int)
	ContentScale() float32
	Clipboard() string
}

// Window is the native window and event source.
type Window interface {
	Host

	// WaitEvent blocks for at most timeout. It reports false on timeout
	// and has no side effects in that case.
	WaitEvent(timeout time.Duration) (Event, bool)
	// PollEvent returns the next queued event without blocking.
	PollEvent() (Event, bool)

	SetSwapInterval(interval int) error
	SwapBuffers() error

	SetClipboard(text string)
	SetCursor(icon CursorIcon)
	// SetSize may return ErrResizeRefused when the window cannot be resized right now.
	SetSize(w, h int) error
	SetTitle(title string)
	Close()
}

// Renderer is the GPU (or GPU-like) backend.
type Renderer interface {
	Resize(w, h int)
	Clear(c colors.Color)
	// Paint submits primitives in painter order. Coordinates are in points;
	// pixelsPerPoint maps them to framebuffer pixels.
	Paint(prims []Primitive, atlas *Atlas, pixelsPerPoint float32) error
	Shutdown()
}

// Drawable is the UI layer's frame geometry. The core never looks inside;
// it only hands it back to UI.Tessellate.
type Drawable any

// UI is the immediate-mode UI layer.
type UI interface {
	// BeginFrame starts a frame. Calling it twice without EndFrame is an error.
	BeginFrame(in InputSnapshot) error
	// EndFrame finishes the frame started by BeginFrame.
	EndFrame() (Output, Drawable, error)
	// Tessellate turns frame geometry into renderable primitives.
	Tessellate(d Drawable) []Primitive
	// Atlas returns the glyph texture the primitives sample from.
	Atlas() *Atlas
}

// Platform bundles the collaborators Run drives.
type Platform struct {
	NewWindow   func(Config) (Window, error)
	NewRenderer func(Window, Config) (Renderer, error)
	UI          UI
	Clock       Clock // nil selects the system clock
}

// Config holds the immutable startup parameters.
type Config struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
	Samples   int  // multisample count, 0 disables MSAA
	SRGB      bool // request an sRGB-capable framebuffer
	Icon      string

	VSync      bool         // initial presentation policy
	ClearColor colors.Color // RGBA
	DPIScale   float32      // pixels per point; 0 follows the native content scale

	Scheduler SchedulerConfig
}

// DefaultConfig mirrors the classic 800x600 demo window.
func DefaultConfig() Config {
	return Config{
		Title:      "canopy",
		Width:      800,
		Height:     600,
		Resizable:  true,
		Samples:    4,
		SRGB:       true,
		ClearColor: colors.Meadow,
		Scheduler:  DefaultSchedulerConfig(),
	}
}
