package core

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/hubastard/canopy/engine/colors"
	"pkt.systems/pslog"
)

// fakeClock advances only when slept on or when the fake window waits.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

// fakeWindow records every call in order. waits and polls are served from
// scripted queues.
type fakeWindow struct {
	calls *[]string
	clock *fakeClock

	w, h      int
	fbW, fbH  int
	scale     float32
	clipboard string

	// waitScript[i] is returned by the i-th WaitEvent; nil means timeout.
	waitScript map[int]Event
	waits      int
	timeouts   []time.Duration
	pollQueue  []Event
	polls      int

	intervals []int
	swaps     int
	cursors   []CursorIcon
	copied    []string
	sizes     []Size
	sizeErr   error
	closed    bool

	intervalErr error
	swapErr     error
}

func newFakeWindow(calls *[]string, clock *fakeClock) *fakeWindow {
	return &fakeWindow{calls: calls, clock: clock, w: 400, h: 300, fbW: 400, fbH: 300, scale: 1, waitScript: map[int]Event{}}
}

func (w *fakeWindow) record(s string) {
	if w.calls != nil {
		*w.calls = append(*w.calls, s)
	}
}

func (w *fakeWindow) WindowSize() (int, int)      { return w.w, w.h }
func (w *fakeWindow) FramebufferSize() (int, int) { return w.fbW, w.fbH }
func (w *fakeWindow) ContentScale() float32       { return w.scale }
func (w *fakeWindow) Clipboard() string           { return w.clipboard }

func (w *fakeWindow) WaitEvent(timeout time.Duration) (Event, bool) {
	w.record("wait")
	w.timeouts = append(w.timeouts, timeout)
	i := w.waits
	w.waits++
	if ev, ok := w.waitScript[i]; ok && ev != nil {
		return ev, true
	}
	if w.clock != nil {
		w.clock.now = w.clock.now.Add(timeout)
	}
	return nil, false
}

func (w *fakeWindow) PollEvent() (Event, bool) {
	w.record("poll")
	w.polls++
	if len(w.pollQueue) == 0 {
		return nil, false
	}
	ev := w.pollQueue[0]
	w.pollQueue = w.pollQueue[1:]
	return ev, true
}

func (w *fakeWindow) SetSwapInterval(interval int) error {
	w.record("interval")
	if w.intervalErr != nil {
		return w.intervalErr
	}
	w.intervals = append(w.intervals, interval)
	return nil
}

func (w *fakeWindow) SwapBuffers() error {
	w.record("swap")
	if w.swapErr != nil {
		return w.swapErr
	}
	w.swaps++
	return nil
}

func (w *fakeWindow) SetClipboard(text string) {
	w.copied = append(w.copied, text)
	w.clipboard = text
}

func (w *fakeWindow) SetCursor(icon CursorIcon) { w.cursors = append(w.cursors, icon) }

func (w *fakeWindow) SetSize(width, height int) error {
	if w.sizeErr != nil {
		return w.sizeErr
	}
	w.sizes = append(w.sizes, Size{W: width, H: height})
	return nil
}

func (w *fakeWindow) SetTitle(string) {}
func (w *fakeWindow) Close()          { w.closed = true }

type fakeRenderer struct {
	calls    *[]string
	resizes  []Size
	clears   []colors.Color
	painted  [][]Primitive
	ppp      []float32
	paintErr error
	shutdown bool
}

func (r *fakeRenderer) record(s string) {
	if r.calls != nil {
		*r.calls = append(*r.calls, s)
	}
}

func (r *fakeRenderer) Resize(w, h int) { r.resizes = append(r.resizes, Size{W: w, H: h}) }
func (r *fakeRenderer) Clear(c colors.Color) {
	r.record("clear")
	r.clears = append(r.clears, c)
}

func (r *fakeRenderer) Paint(prims []Primitive, _ *Atlas, pixelsPerPoint float32) error {
	r.record("paint")
	if r.paintErr != nil {
		return r.paintErr
	}
	r.painted = append(r.painted, prims)
	r.ppp = append(r.ppp, pixelsPerPoint)
	return nil
}

func (r *fakeRenderer) Shutdown() { r.shutdown = true }

// fakeUI returns outputs[i] from the i-th EndFrame, or repaint when
// outputs is exhausted and repaint is set.
type fakeUI struct {
	calls     *[]string
	snapshots []InputSnapshot
	outputs   map[int]Output
	repaint   bool
	inFrame   bool
	frames    int

	beginErr error
	skipEnd  bool
}

func (u *fakeUI) record(s string) {
	if u.calls != nil {
		*u.calls = append(*u.calls, s)
	}
}

func (u *fakeUI) BeginFrame(in InputSnapshot) error {
	u.record("begin")
	if u.beginErr != nil {
		return u.beginErr
	}
	if u.inFrame {
		return ErrUIUsage
	}
	u.inFrame = true
	u.snapshots = append(u.snapshots, in)
	return nil
}

func (u *fakeUI) EndFrame() (Output, Drawable, error) {
	u.record("end")
	if u.skipEnd || !u.inFrame {
		return Output{}, nil, ErrUIUsage
	}
	u.inFrame = false
	out, ok := u.outputs[u.frames]
	if !ok {
		out = Output{NeedsRepaint: u.repaint}
	}
	u.frames++
	return out, u.frames, nil
}

func (u *fakeUI) Tessellate(d Drawable) []Primitive {
	n, _ := d.(int)
	return []Primitive{{Kind: PrimQuad, Rect: Rect{W: float32(n), H: 1}}}
}

func (u *fakeUI) Atlas() *Atlas { return nil }

// appFunc adapts a per-frame func to App.
type appFunc struct {
	ui       func(e *Engine, f *Frame)
	events   []Event
	started  bool
	shutdown bool
}

func (a *appFunc) OnStart(e *Engine) { a.started = true }
func (a *appFunc) OnUI(e *Engine, f *Frame) {
	if a.ui != nil {
		a.ui(e, f)
	}
}
func (a *appFunc) OnEvent(e *Engine, ev Event) { a.events = append(a.events, ev) }
func (a *appFunc) OnShutdown(e *Engine)        { a.shutdown = true }

// harness wires fakes into a Platform.
type harness struct {
	calls []string
	clock *fakeClock
	win   *fakeWindow
	rend  *fakeRenderer
	ui    *fakeUI
}

func newHarness() *harness {
	h := &harness{clock: newFakeClock()}
	h.win = newFakeWindow(&h.calls, h.clock)
	h.rend = &fakeRenderer{calls: &h.calls}
	h.ui = &fakeUI{calls: &h.calls}
	return h
}

func (h *harness) platform() Platform {
	return Platform{
		NewWindow:   func(Config) (Window, error) { return h.win, nil },
		NewRenderer: func(Window, Config) (Renderer, error) { return h.rend, nil },
		UI:          h.ui,
		Clock:       h.clock,
	}
}

func count(calls []string, name string) int {
	n := 0
	for _, c := range calls {
		if c == name {
			n++
		}
	}
	return n
}

type logCapture struct {
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	return c.buf.Write(p)
}

func (c *logCapture) entries(t *testing.T) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(c.buf.Bytes(), []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		entry := map[string]any{}
		if err := json.Unmarshal(line, &entry); err != nil {
			t.Fatalf("parse log entry: %v", err)
		}
		out = append(out, entry)
	}
	return out
}

func newCaptureLogger() (*logCapture, pslog.Logger) {
	capture := &logCapture{}
	logger := pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
	return capture, logger
}
