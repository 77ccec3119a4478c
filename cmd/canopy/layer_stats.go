package main

import (
	"fmt"

	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/core"
	"github.com/hubastard/canopy/engine/gfx/renderer2d"
	"github.com/hubastard/canopy/engine/profiler"
	"github.com/hubastard/canopy/engine/text"
	"github.com/hubastard/canopy/engine/ui"
	"pkt.systems/pslog"
)

// statsSource is implemented by every renderer backend.
type statsSource interface {
	Stats() renderer2d.Statistics
}

// StatsLayer is a corner overlay with frame timings, renderer counters and
// memory use. Ctrl+P dumps the profiler scopes, Ctrl+Shift+P also opens
// them in speedscope.
type StatsLayer struct {
	ui      *ui.Ctx
	log     pslog.Logger
	backend []string // static backend description lines
	lines   []statLine
}

type statLine struct {
	text    string
	heading bool
}

func NewStatsLayer(ctx *ui.Ctx, logger pslog.Logger, backend ...string) *StatsLayer {
	return &StatsLayer{ui: ctx, log: logger, backend: backend}
}

// SetBackend replaces the backend block; the first line is its heading.
func (l *StatsLayer) SetBackend(lines ...string) { l.backend = lines }

func (l *StatsLayer) OnAttach(e *core.Engine) {}
func (l *StatsLayer) OnDetach(e *core.Engine) {}

func (l *StatsLayer) OnUI(e *core.Engine, f *core.Frame) {
	l.collect(e, f)

	c := l.ui
	lh := text.LineHeight(c.Font())
	const pad, width = 12, 240
	screen := c.Screen()
	bounds := core.Rect{
		X: max(0, screen.W-width-16),
		Y: 16,
		W: width,
		H: float32(len(l.lines))*lh + 2*pad,
	}
	c.BeginView(ui.Props{ID: "stats", Bounds: bounds, Padding: ui.Uniform(pad), Bg: colors.Black.WithAlpha(0.5)})
	for _, ln := range l.lines {
		if ln.heading {
			c.LabelColored(ln.text, colors.Yellow)
		} else {
			c.Label(ln.text)
		}
	}
	c.EndView()
}

func (l *StatsLayer) collect(e *core.Engine, f *core.Frame) {
	l.lines = l.lines[:0]
	head := func(s string) { l.lines = append(l.lines, statLine{text: s, heading: true}) }
	line := func(format string, args ...any) {
		l.lines = append(l.lines, statLine{text: fmt.Sprintf(format, args...)})
	}

	avg := e.Stats.Average()
	head(fmt.Sprintf("Frame %d", f.Index))
	line("  %.2f ms (%.1f FPS)", ms(avg.Total.Seconds()), e.Stats.FPS())
	line("  active %.2f ms", ms(avg.Active.Seconds()))
	line("  vsync %v", f.VSync())

	if src, ok := e.Renderer.(statsSource); ok {
		st := src.Stats()
		head("Renderer")
		line("  draw calls %d", st.DrawCalls)
		line("  quads %d (culled %d)", st.QuadCount, st.Culled)
		line("  vertices %d", st.TotalVertexCount())
	}
	for i, s := range l.backend {
		if i == 0 {
			head(s)
			continue
		}
		line("  %s", s)
	}

	head("Memory")
	line("  %.2f MB, %d allocs", float64(profiler.MemoryUsage())/(1<<20), profiler.MemoryAllocs())
	line("  %d goroutines, %d cpus", profiler.NumGoroutine(), profiler.NumCPU())
}

func (l *StatsLayer) OnEvent(e *core.Engine, ev core.Event) bool {
	k, ok := ev.(core.EventKey)
	if !ok || !k.Down || k.Key != core.KeyP || k.Mods&core.ModCtrl == 0 {
		return false
	}
	if !profiler.Enabled {
		l.log.Warn("profiler not compiled in", "hint", "rebuild with -tags profile")
		return true
	}
	dump := profiler.Dump
	if k.Mods&core.ModShift != 0 {
		dump = func(string) (string, error) { return profiler.OpenGraph() }
	}
	if path, err := dump(""); err != nil {
		l.log.Error("profiler dump failed", "err", err)
	} else {
		l.log.Info("profiler dump written", "path", path)
	}
	return true
}

func ms(seconds float64) float64 { return seconds * 1000 }
