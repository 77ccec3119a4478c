package core

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/hubastard/canopy/engine/profiler"
	"pkt.systems/pslog"
)

// Run wires the platform window, renderer and UI layer and drives the frame
// pump until the quit flag is set or a fatal error occurs. Cancelling ctx
// requests a quit, observed at the top of the next frame.
func Run(ctx context.Context, app App, cfg Config, p Platform) error {
	// Graphics contexts require the main OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	log := pslog.Ctx(ctx)

	if p.UI == nil {
		return &SetupError{Stage: "ui", Err: errors.New("no ui layer")}
	}
	win, err := p.NewWindow(cfg)
	if err != nil {
		return &SetupError{Stage: "window", Err: err}
	}
	// window owns the context; renderer shuts down first
	defer win.Close()

	rend, err := p.NewRenderer(win, cfg)
	if err != nil {
		return &SetupError{Stage: "renderer", Err: err}
	}
	defer rend.Shutdown()

	w, h := win.FramebufferSize()
	rend.Resize(w, h)

	clock := p.Clock
	if clock == nil {
		clock = SystemClock
	}
	eng := &Engine{
		Window:   win,
		Renderer: rend,
		UI:       p.UI,
		Stats:    profiler.NewFrameStats(120),
		clock:    clock,
		start:    clock.Now(),
	}
	pm := newPump(app, eng, cfg, clock, log)

	app.OnStart(eng)
	log.Info("frame pump start", "title", cfg.Title, "vsync", cfg.VSync, "width", w, "height", h)

	err = pm.loop(ctx)

	eng.popAll()
	app.OnShutdown(eng)
	if err != nil {
		log.Error("frame pump failed", "err", err, "frames", pm.frames)
		return err
	}
	log.Info("frame pump exit", "frames", pm.frames)
	return nil
}

// pump is the per-loop state of Run. It is not safe for concurrent use;
// exactly one goroutine drives it.
type pump struct {
	app   App
	eng   *Engine
	cfg   Config
	clock Clock
	log   pslog.Logger

	state     *LoopState
	input     *Input
	presenter *Presenter
	output    *OutputApplicator

	frames uint64
}

func newPump(app App, eng *Engine, cfg Config, clock Clock, log pslog.Logger) *pump {
	p := &pump{
		app:       app,
		eng:       eng,
		cfg:       cfg,
		clock:     clock,
		log:       log,
		state:     NewLoopState(eng.start, cfg.VSync),
		input:     NewInput(cfg.DPIScale),
		presenter: NewPresenter(eng.Window, eng.Renderer),
		output:    NewOutputApplicator(eng.Window, log),
	}
	p.input.Sync(eng.Window)
	return p
}

func (p *pump) loop(ctx context.Context) error {
	for {
		if ctx.Err() != nil && !p.state.Quit() {
			p.log.Info("quit requested", "reason", context.Cause(ctx))
			p.state.RequestQuit()
		}
		if p.state.Quit() {
			return nil
		}

		needsRepaint, err := p.frame()
		if err != nil {
			return err
		}
		// a quit staged by the frame is observed at the top, after the wait
		p.wait(Schedule(needsRepaint, p.cfg.Scheduler))
	}
}

// frame runs ApplyPolicy through Present and reports the repaint signal.
func (p *pump) frame() (bool, error) {
	defer profiler.Start("frame")()
	start := p.clock.Now()
	p.eng.Stats.Begin(start)

	if err := p.presenter.ApplyPolicy(p.state.VSync()); err != nil {
		return false, err
	}

	p.input.SetTime(p.state.Elapsed(start))
	snap := p.input.Take()
	if err := p.eng.UI.BeginFrame(snap); err != nil {
		return false, fmt.Errorf("begin frame: %w", err)
	}

	f := newFrame(p.state, p.frames, snap.Time)
	endUI := profiler.Start("ui")
	p.app.OnUI(p.eng, f)
	p.eng.Layers.ForEach(func(l Layer) { l.OnUI(p.eng, f) })
	endUI()

	out, drawable, err := p.eng.UI.EndFrame()
	if err != nil {
		return false, fmt.Errorf("end frame: %w", err)
	}
	// Callback mutations land only now, so this frame is presented with
	// the policy it started with.
	f.commit()

	p.output.Apply(out)

	endRender := profiler.Start("render")
	prims := p.eng.UI.Tessellate(drawable)
	err = p.presenter.Render(p.cfg.ClearColor, prims, p.eng.UI.Atlas(), snap.PixelsPerPoint)
	endRender()
	if err != nil {
		return false, err
	}
	if err := p.presenter.Present(); err != nil {
		return false, err
	}

	p.frames++
	p.eng.Stats.Active(p.clock.Now())
	return out.NeedsRepaint, nil
}

// wait is the only place the loop yields to the OS.
func (p *pump) wait(policy WaitPolicy) {
	switch policy.Mode {
	case WaitBlocking:
		if policy.Sleep > 0 {
			p.clock.Sleep(policy.Sleep)
		}
		if ev, ok := p.eng.Window.WaitEvent(policy.Timeout); ok {
			p.dispatch(ev)
		}
	case WaitDrain:
		for !p.state.Quit() {
			ev, ok := p.eng.Window.PollEvent()
			if !ok {
				return
			}
			p.dispatch(ev)
		}
	}
}

func (p *pump) dispatch(ev Event) {
	p.eng.Layers.ForEachReverse(func(l Layer) bool { return l.OnEvent(p.eng, ev) })
	p.app.OnEvent(p.eng, ev)
	p.input.Fuse(p.eng.Window, ev, p.state)

	switch ev.(type) {
	case EventResize, EventFramebufferResize:
		fw, fh := p.eng.Window.FramebufferSize()
		if fw < 1 || fh < 1 {
			return
		}
		p.eng.Renderer.Resize(fw, fh)
	}
}
