package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hubastard/canopy/engine/assets"
	"github.com/hubastard/canopy/engine/core"
	"github.com/hubastard/canopy/engine/gfx/soft"
	"github.com/hubastard/canopy/engine/platform"
	"github.com/hubastard/canopy/engine/profiler"
	"github.com/hubastard/canopy/engine/text"
	"github.com/hubastard/canopy/engine/ui"
	"pkt.systems/pslog"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSnapshotWritesPNG(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "shot.png")
	cfgPath := filepath.Join(dir, "missing.yaml")
	if _, err := execute(t, "snapshot", "-c", cfgPath, "-o", out, "--frames", "3", "--stats"); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	w, h, pix, err := assets.LoadPNG(out)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if len(pix) != w*h*4 {
		t.Fatalf("expected tightly packed RGBA, got %d bytes", len(pix))
	}
	if w != 800 || h != 600 {
		t.Fatalf("expected 800x600 snapshot, got %dx%d", w, h)
	}
}

func TestSnapshotRejectsZeroFrames(t *testing.T) {
	_, err := execute(t, "snapshot", "-c", filepath.Join(t.TempDir(), "x.yaml"), "--frames", "0")
	if err == nil || !strings.Contains(err.Error(), "--frames") {
		t.Fatalf("expected frames error, got %v", err)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canopy.yaml")
	if _, err := execute(t, "config", "init", "-c", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := execute(t, "config", "init", "-c", path); err == nil {
		t.Fatalf("expected second init to refuse overwriting")
	}
	out, err := execute(t, "config", "show", "-c", path)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "config_version: 1") || !strings.Contains(out, "idle_sleep_ms: 10") {
		t.Fatalf("unexpected config output:\n%s", out)
	}
}

// scriptedWindow queues events after chosen swaps, so input arrives on a
// known frame.
type scriptedWindow struct {
	*platform.Headless
	script map[int][]core.Event
}

func (w *scriptedWindow) SwapBuffers() error {
	err := w.Headless.SwapBuffers()
	w.Push(w.script[w.Swaps()]...)
	return err
}

// runDemo drives the demo app offscreen until the window quits.
func runDemo(t *testing.T, win core.Window, app *Demo, ctx *ui.Ctx) {
	t.Helper()
	err := core.Run(context.Background(), app, core.DefaultConfig(), core.Platform{
		NewWindow: func(core.Config) (core.Window, error) { return win, nil },
		NewRenderer: func(w core.Window, _ core.Config) (core.Renderer, error) {
			r, err := soft.New(w.FramebufferSize())
			if err != nil {
				return nil, err
			}
			return r, nil
		},
		UI: ctx,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
}

func newDemoUI(t *testing.T) *ui.Ctx {
	t.Helper()
	f, err := text.Default(18)
	if err != nil {
		t.Fatalf("font: %v", err)
	}
	t.Cleanup(f.Close)
	return ui.New(f, ui.DefaultStyle())
}

func TestDemoTypingReachesTextBox(t *testing.T) {
	ctx := newDemoUI(t)
	app := NewDemo(ctx)
	app.Text = ""
	head := platform.NewHeadless(core.DefaultConfig(), 1)
	head.QuitAfter(3)
	// the text box sits right below the first label
	win := &scriptedWindow{Headless: head, script: map[int][]core.Event{
		1: {
			core.EventMouseMove{X: 100, Y: 60},
			core.EventMouseButton{Button: core.MouseLeft, Down: true},
			core.EventMouseButton{Button: core.MouseLeft, Down: false},
		},
		2: {core.EventChar{Rune: 'h'}, core.EventChar{Rune: 'i'}},
	}}
	runDemo(t, win, app, ctx)
	if app.Text != "hi" {
		t.Fatalf("expected typed text in the box, got %q", app.Text)
	}
	if head.Cursor() != core.CursorText {
		t.Fatalf("expected text cursor over the box, got %v", head.Cursor())
	}
}

func TestDemoStartsWithVSyncOff(t *testing.T) {
	ctx := newDemoUI(t)
	app := NewDemo(ctx)
	head := platform.NewHeadless(core.DefaultConfig(), 1)
	head.QuitAfter(10)
	runDemo(t, head, app, ctx)
	if head.SwapInterval() != 0 {
		t.Fatalf("expected vsync off by default, got interval %d", head.SwapInterval())
	}
	if !head.Closed() {
		t.Fatalf("expected window closed after run")
	}
}

func TestStatsLayerAddsOverlay(t *testing.T) {
	ctx := newDemoUI(t)
	stats := NewStatsLayer(ctx, pslog.NewWithOptions(io.Discard, pslog.Options{}), "Backend", "test")
	app := NewDemo(ctx, stats)
	win := platform.NewHeadless(core.DefaultConfig(), 1)
	win.QuitAfter(2)
	runDemo(t, win, app, ctx)
	var heading bool
	for _, ln := range stats.lines {
		if ln.heading && ln.text == "Backend" {
			heading = true
		}
	}
	if !heading {
		t.Fatalf("expected backend heading in %+v", stats.lines)
	}
}

func TestStatsLayerSwallowsProfilerShortcut(t *testing.T) {
	t.Chdir(t.TempDir())
	var buf bytes.Buffer
	logger := pslog.NewWithOptions(&buf, pslog.Options{Mode: pslog.ModeStructured, NoColor: true, MinLevel: pslog.InfoLevel})
	l := NewStatsLayer(nil, logger)
	if !l.OnEvent(nil, core.EventKey{Key: core.KeyP, Down: true, Mods: core.ModCtrl}) {
		t.Fatalf("expected ctrl+p to be handled")
	}
	want := `"hint"`
	if profiler.Enabled {
		want = `"path"`
	}
	if !strings.Contains(buf.String(), want) {
		t.Fatalf("expected structured %s field in %q", want, buf.String())
	}
	if l.OnEvent(nil, core.EventKey{Key: core.KeyP, Down: true}) {
		t.Fatalf("plain p must fall through")
	}
}
