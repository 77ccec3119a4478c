package core

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestRunIdleFramesBlockWithSleepAndTimeout(t *testing.T) {
	h := newHarness()
	h.win.waitScript[99] = EventQuit{}
	var eng *Engine
	app := &appFunc{ui: func(e *Engine, f *Frame) { eng = e }}

	if err := Run(context.Background(), app, DefaultConfig(), h.platform()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if h.ui.frames != 100 {
		t.Fatalf("expected 100 frames, got %d", h.ui.frames)
	}
	if h.win.polls != 0 {
		t.Fatalf("idle frames must not drain, got %d polls", h.win.polls)
	}
	if len(h.clock.sleeps) != 100 {
		t.Fatalf("expected one sleep per frame, got %d", len(h.clock.sleeps))
	}
	for i, d := range h.clock.sleeps {
		if d != 10*time.Millisecond {
			t.Fatalf("sleep %d: expected 10ms, got %v", i, d)
		}
	}
	for i, d := range h.win.timeouts {
		if d != 5*time.Millisecond {
			t.Fatalf("wait %d: expected 5ms timeout, got %v", i, d)
		}
	}
	// every completed frame spans sleep plus timeout, never zero
	if avg := eng.Stats.Average(); avg.Total != 15*time.Millisecond {
		t.Fatalf("expected 15ms per idle frame, got %v", avg.Total)
	}
	if got := eng.Stats.Average().Idle(); got != 15*time.Millisecond {
		t.Fatalf("expected frames to be idle, got %v", got)
	}
}

func TestRunEventFromWaitReachesNextSnapshot(t *testing.T) {
	h := newHarness()
	h.win.waitScript[0] = EventMouseMove{X: 10, Y: 20}
	h.win.waitScript[1] = EventQuit{}

	app := &appFunc{}
	if err := Run(context.Background(), app, DefaultConfig(), h.platform()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(h.ui.snapshots) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(h.ui.snapshots))
	}
	if n := len(h.ui.snapshots[0].Events); n != 0 {
		t.Fatalf("first snapshot should be empty, got %d events", n)
	}
	want := []InputEvent{PointerMoved{X: 10, Y: 20}}
	if got := h.ui.snapshots[1].Events; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v in the next snapshot, got %v", want, got)
	}
	if len(app.events) != 2 || app.events[0] != (EventMouseMove{X: 10, Y: 20}) {
		t.Fatalf("app should see native events, got %v", app.events)
	}
}

func TestRunQuitFromUICompletesFrame(t *testing.T) {
	h := newHarness()
	h.ui.repaint = true
	app := &appFunc{ui: func(e *Engine, f *Frame) {
		f.RequestQuit()
		if !f.Quitting() {
			t.Errorf("expected staged quit to be visible on the frame")
		}
	}}

	if err := Run(context.Background(), app, DefaultConfig(), h.platform()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"interval", "begin", "end", "clear", "paint", "swap"}
	if !reflect.DeepEqual(h.calls, want) {
		t.Fatalf("expected one complete frame %v, got %v", want, h.calls)
	}
	if !h.win.closed || !h.rend.shutdown || !app.started || !app.shutdown {
		t.Fatalf("expected orderly teardown: closed=%v shutdown=%v started=%v appShutdown=%v",
			h.win.closed, h.rend.shutdown, app.started, app.shutdown)
	}
}

func TestRunVSyncToggleAppliesNextFrame(t *testing.T) {
	h := newHarness()
	h.ui.repaint = true
	var seen []bool
	app := &appFunc{ui: func(e *Engine, f *Frame) {
		seen = append(seen, f.VSync())
		switch f.Index {
		case 2:
			f.SetVSync(true)
		case 4:
			f.RequestQuit()
		}
	}}

	if err := Run(context.Background(), app, DefaultConfig(), h.platform()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if want := []int{0, 0, 0, 1, 1}; !reflect.DeepEqual(h.win.intervals, want) {
		t.Fatalf("expected intervals %v, got %v", want, h.win.intervals)
	}
	if want := []bool{false, false, false, true, true}; !reflect.DeepEqual(seen, want) {
		t.Fatalf("expected frames to start with %v, got %v", want, seen)
	}
	// one interval per swap, in step
	if h.win.swaps != len(h.win.intervals) {
		t.Fatalf("expected %d swaps, got %d", len(h.win.intervals), h.win.swaps)
	}
}

func TestRunDrainStopsAtQuit(t *testing.T) {
	h := newHarness()
	h.ui.repaint = true
	h.win.pollQueue = []Event{EventChar{Rune: 'a'}, EventQuit{}, EventChar{Rune: 'b'}}

	if err := Run(context.Background(), &appFunc{}, DefaultConfig(), h.platform()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if h.ui.frames != 1 {
		t.Fatalf("expected the loop to end after the first drain, got %d frames", h.ui.frames)
	}
	if len(h.win.pollQueue) != 1 {
		t.Fatalf("expected the event after quit to stay queued, got %v", h.win.pollQueue)
	}
	if len(h.clock.sleeps) != 0 {
		t.Fatalf("drain must not sleep, got %v", h.clock.sleeps)
	}
}

func TestRunResizeReachesRenderer(t *testing.T) {
	h := newHarness()
	h.win.waitScript[0] = EventFramebufferResize{W: 640, H: 480}
	h.win.waitScript[1] = EventQuit{}
	app := &appFunc{ui: func(e *Engine, f *Frame) {
		if f.Index == 0 {
			// the native window grows while the first frame is built
			h.win.w, h.win.h = 640, 480
			h.win.fbW, h.win.fbH = 640, 480
		}
	}}

	if err := Run(context.Background(), app, DefaultConfig(), h.platform()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []Size{{W: 400, H: 300}, {W: 640, H: 480}}
	if !reflect.DeepEqual(h.rend.resizes, want) {
		t.Fatalf("expected startup and event resizes %v, got %v", want, h.rend.resizes)
	}
	if s := h.ui.snapshots[0]; s.ScreenW != 400 || s.ScreenH != 300 {
		t.Fatalf("expected initial geometry, got %vx%v", s.ScreenW, s.ScreenH)
	}
	if s := h.ui.snapshots[1]; s.ScreenW != 640 || s.ScreenH != 480 {
		t.Fatalf("expected snapshot geometry to follow resize, got %vx%v", s.ScreenW, s.ScreenH)
	}
}

func TestRunCancelledContextQuits(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	app := &appFunc{}
	if err := Run(ctx, app, DefaultConfig(), h.platform()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(h.calls) != 0 {
		t.Fatalf("expected no frame after cancellation, got %v", h.calls)
	}
	if !app.shutdown || !h.win.closed {
		t.Fatalf("expected teardown after cancellation")
	}
}

func TestRunCancelDuringLoopEndsBeforeNextFrame(t *testing.T) {
	h := newHarness()
	h.ui.repaint = true
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app := &appFunc{ui: func(e *Engine, f *Frame) {
		if f.Index == 1 {
			cancel()
		}
	}}
	if err := Run(ctx, app, DefaultConfig(), h.platform()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if h.ui.frames != 2 || h.win.swaps != 2 {
		t.Fatalf("expected 2 complete frames, got frames=%d swaps=%d", h.ui.frames, h.win.swaps)
	}
}

func TestRunSetupErrors(t *testing.T) {
	boom := errors.New("boom")

	h := newHarness()
	p := h.platform()
	p.NewWindow = func(Config) (Window, error) { return nil, boom }
	err := Run(context.Background(), &appFunc{}, DefaultConfig(), p)
	var se *SetupError
	if !errors.As(err, &se) || se.Stage != "window" || !errors.Is(err, boom) {
		t.Fatalf("expected window setup error, got %v", err)
	}

	h = newHarness()
	p = h.platform()
	p.NewRenderer = func(Window, Config) (Renderer, error) { return nil, boom }
	err = Run(context.Background(), &appFunc{}, DefaultConfig(), p)
	if !errors.As(err, &se) || se.Stage != "renderer" {
		t.Fatalf("expected renderer setup error, got %v", err)
	}
	if !h.win.closed {
		t.Fatalf("expected window closed after renderer failure")
	}

	h = newHarness()
	p = h.platform()
	p.UI = nil
	if err := Run(context.Background(), &appFunc{}, DefaultConfig(), p); !errors.As(err, &se) || se.Stage != "ui" {
		t.Fatalf("expected ui setup error, got %v", err)
	}
}

func TestRunPresentationErrorsAreFatal(t *testing.T) {
	boom := errors.New("lost context")
	cases := []struct {
		name  string
		setup func(h *harness)
		op    string
	}{
		{"swap interval", func(h *harness) { h.win.intervalErr = boom }, "swap interval"},
		{"swap", func(h *harness) { h.win.swapErr = boom }, "swap"},
		{"paint", func(h *harness) { h.rend.paintErr = boom }, "paint"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness()
			h.ui.repaint = true
			tc.setup(h)
			err := Run(context.Background(), &appFunc{}, DefaultConfig(), h.platform())
			var pe *PresentationError
			if !errors.As(err, &pe) || pe.Op != tc.op || !errors.Is(err, boom) {
				t.Fatalf("expected presentation error %q, got %v", tc.op, err)
			}
			if count(h.calls, "interval") != 1 {
				t.Fatalf("expected the loop to stop in the first frame, got %v", h.calls)
			}
			if !h.rend.shutdown || !h.win.closed {
				t.Fatalf("expected teardown after fatal error")
			}
		})
	}
}

func TestRunUIUsageErrorIsFatal(t *testing.T) {
	h := newHarness()
	h.ui.skipEnd = true
	err := Run(context.Background(), &appFunc{}, DefaultConfig(), h.platform())
	if !errors.Is(err, ErrUIUsage) {
		t.Fatalf("expected ui usage error, got %v", err)
	}
	if count(h.calls, "swap") != 0 {
		t.Fatalf("expected no present after a ui error, got %v", h.calls)
	}
}

type recordingLayer struct {
	name   string
	log    *[]string
	handle bool
}

func (l *recordingLayer) OnAttach(*Engine) { *l.log = append(*l.log, "attach "+l.name) }
func (l *recordingLayer) OnDetach(*Engine) { *l.log = append(*l.log, "detach "+l.name) }
func (l *recordingLayer) OnUI(*Engine, *Frame) {
	*l.log = append(*l.log, "ui "+l.name)
}
func (l *recordingLayer) OnEvent(_ *Engine, ev Event) bool {
	*l.log = append(*l.log, "event "+l.name)
	return l.handle
}

func TestRunLayersOrder(t *testing.T) {
	h := newHarness()
	h.win.waitScript[0] = EventFocus{Focused: false}
	h.win.waitScript[1] = EventQuit{}
	var log []string
	bottom := &recordingLayer{name: "bottom", log: &log}
	top := &recordingLayer{name: "top", log: &log, handle: true}
	app := &appFunc{}
	app.ui = func(e *Engine, f *Frame) {
		if e.Layers.Len() == 0 {
			e.PushLayer(bottom)
			e.PushLayer(top)
		}
	}

	if err := Run(context.Background(), app, DefaultConfig(), h.platform()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{
		"attach bottom", "attach top",
		"ui bottom", "ui top",
		"event top", // handled: bottom never sees it
		"ui bottom", "ui top",
		"event top",
		"detach top", "detach bottom",
	}
	if !reflect.DeepEqual(log, want) {
		t.Fatalf("unexpected layer order:\n got %v\nwant %v", log, want)
	}
	if len(app.events) != 2 {
		t.Fatalf("the app sees every event, got %v", app.events)
	}
	if h.ui.snapshots[1].Focused {
		t.Fatalf("focus loss should reach the snapshot even when a layer handles it")
	}
}

func TestRunIdleQuitStillWaitsBeforeExit(t *testing.T) {
	h := newHarness()
	app := &appFunc{ui: func(e *Engine, f *Frame) { f.RequestQuit() }}

	if err := Run(context.Background(), app, DefaultConfig(), h.platform()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"interval", "begin", "end", "clear", "paint", "swap", "wait"}
	if !reflect.DeepEqual(h.calls, want) {
		t.Fatalf("expected the idle wait to run before exit %v, got %v", want, h.calls)
	}
	if len(h.clock.sleeps) != 1 {
		t.Fatalf("expected one idle sleep, got %v", h.clock.sleeps)
	}
}

func TestRunDrainedEventsReachNextSnapshotInOrder(t *testing.T) {
	h := newHarness()
	h.ui.repaint = true
	h.win.pollQueue = []Event{EventChar{Rune: 'a'}, EventChar{Rune: 'b'}}
	app := &appFunc{ui: func(e *Engine, f *Frame) {
		if f.Index == 1 {
			f.RequestQuit()
		}
	}}

	if err := Run(context.Background(), app, DefaultConfig(), h.platform()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(h.ui.snapshots) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(h.ui.snapshots))
	}
	want := []InputEvent{Text{Text: "a"}, Text{Text: "b"}}
	if got := h.ui.snapshots[1].Events; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v in the second snapshot, got %v", want, got)
	}
	if n := len(h.ui.snapshots[0].Events); n != 0 {
		t.Fatalf("first snapshot should be empty, got %d events", n)
	}
}

func TestEngineUptimeFollowsLoopClock(t *testing.T) {
	h := newHarness()
	h.win.waitScript[2] = EventQuit{}
	var uptimes []time.Duration
	var times []float64
	app := &appFunc{ui: func(e *Engine, f *Frame) {
		uptimes = append(uptimes, e.Uptime())
		times = append(times, f.Time)
	}}

	if err := Run(context.Background(), app, DefaultConfig(), h.platform()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(uptimes) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(uptimes))
	}
	for i, up := range uptimes {
		if want := time.Duration(i) * 15 * time.Millisecond; up != want {
			t.Fatalf("frame %d: expected uptime %v, got %v", i, want, up)
		}
		if up.Seconds() != times[i] {
			t.Fatalf("frame %d: uptime %v disagrees with frame time %v", i, up, times[i])
		}
	}
}
