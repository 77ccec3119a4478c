package platform

import (
	"time"

	"github.com/hubastard/canopy/engine/core"
)

// Headless is an offscreen core.Window. Events are scripted with Push and
// the window never blocks, so a pump driven by it runs as fast as it can.
type Headless struct {
	queue EventQueue

	w, h      int
	scale     float32
	clipboard string
	cursor    core.CursorIcon
	title     string

	interval  int
	swaps     int
	quitAfter int
	closed    bool

	// RefuseResize makes SetSize fail with core.ErrResizeRefused.
	RefuseResize bool
}

var _ core.Window = (*Headless)(nil)

// NewHeadless creates a window of cfg.Width x cfg.Height points at the given
// content scale.
func NewHeadless(cfg core.Config, scale float32) *Headless {
	if scale <= 0 {
		scale = 1
	}
	return &Headless{w: cfg.Width, h: cfg.Height, scale: scale, title: cfg.Title, interval: -1}
}

// Push queues native events in order.
func (h *Headless) Push(evs ...core.Event) {
	for _, ev := range evs {
		h.queue.Push(ev)
	}
}

// QuitAfter queues a quit event once n frames have been presented.
func (h *Headless) QuitAfter(n int) { h.quitAfter = n }

// Resize changes the window size and queues the matching resize events.
func (h *Headless) Resize(w, hgt int) {
	h.w, h.h = w, hgt
	fw, fh := h.FramebufferSize()
	h.Push(core.EventResize{W: w, H: hgt}, core.EventFramebufferResize{W: fw, H: fh})
}

func (h *Headless) WindowSize() (int, int) { return h.w, h.h }

func (h *Headless) FramebufferSize() (int, int) {
	return int(float32(h.w) * h.scale), int(float32(h.h) * h.scale)
}

func (h *Headless) ContentScale() float32 { return h.scale }
func (h *Headless) Clipboard() string     { return h.clipboard }

func (h *Headless) WaitEvent(time.Duration) (core.Event, bool) { return h.queue.Pop() }
func (h *Headless) PollEvent() (core.Event, bool)              { return h.queue.Pop() }

func (h *Headless) SetSwapInterval(interval int) error {
	h.interval = interval
	return nil
}

func (h *Headless) SwapBuffers() error {
	h.swaps++
	if h.quitAfter > 0 && h.swaps == h.quitAfter {
		h.queue.Push(core.EventQuit{})
	}
	return nil
}

func (h *Headless) SetClipboard(text string)       { h.clipboard = text }
func (h *Headless) SetCursor(icon core.CursorIcon) { h.cursor = icon }

func (h *Headless) SetSize(w, hgt int) error {
	if h.RefuseResize {
		return core.ErrResizeRefused
	}
	h.Resize(w, hgt)
	return nil
}

func (h *Headless) SetTitle(t string) { h.title = t }
func (h *Headless) Close()            { h.closed = true }

// Inspection helpers.

func (h *Headless) Cursor() core.CursorIcon { return h.cursor }
func (h *Headless) Title() string           { return h.title }
func (h *Headless) Swaps() int              { return h.swaps }
func (h *Headless) SwapInterval() int       { return h.interval }
func (h *Headless) Closed() bool            { return h.closed }
func (h *Headless) Pending() int            { return h.queue.Len() }
