package core

import "github.com/hubastard/canopy/engine/colors"

// Presenter owns the swap-interval policy and the clear/draw/swap sequence.
type Presenter struct {
	win      Window
	rend     Renderer
	interval int
}

func NewPresenter(win Window, rend Renderer) *Presenter {
	return &Presenter{win: win, rend: rend, interval: -1}
}

// SwapInterval maps the vsync preference to a present interval.
func SwapInterval(vsync bool) int {
	if vsync {
		return 1
	}
	return 0
}

// ApplyPolicy issues the swap interval for vsync. It runs every frame.
func (p *Presenter) ApplyPolicy(vsync bool) error {
	interval := SwapInterval(vsync)
	if err := p.win.SetSwapInterval(interval); err != nil {
		return &PresentationError{Op: "swap interval", Err: err}
	}
	p.interval = interval
	return nil
}

// Interval is the last interval applied, or -1 before the first frame.
func (p *Presenter) Interval() int { return p.interval }

// Render clears to bg and submits prims.
func (p *Presenter) Render(bg colors.Color, prims []Primitive, atlas *Atlas, pixelsPerPoint float32) error {
	p.rend.Clear(bg)
	if err := p.rend.Paint(prims, atlas, pixelsPerPoint); err != nil {
		return &PresentationError{Op: "paint", Err: err}
	}
	return nil
}

func (p *Presenter) Present() error {
	if err := p.win.SwapBuffers(); err != nil {
		return &PresentationError{Op: "swap", Err: err}
	}
	return nil
}
