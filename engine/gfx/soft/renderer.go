// Package soft renders UI primitives on the CPU with gogpu/gg. It backs
// headless snapshots and renderer tests that have no GL context.
package soft

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gg"
	ggtext "github.com/gogpu/gg/text"
	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/core"
	"github.com/hubastard/canopy/engine/gfx/renderer2d"
	"golang.org/x/image/font/gofont/goregular"
)

// Renderer implements core.Renderer into an in-memory RGBA canvas.
type Renderer struct {
	dc     *gg.Context
	w, h   int
	source *ggtext.FontSource
	faces  map[float32]ggtext.Face
	stats  renderer2d.Statistics
}

var _ core.Renderer = (*Renderer)(nil)

// New creates a w x h pixel canvas. Glyphs are drawn with Go Regular, the
// same face the UI atlas is built from.
func New(w, h int) (*Renderer, error) {
	src, err := ggtext.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("soft renderer font: %w", err)
	}
	r := &Renderer{source: src, faces: make(map[float32]ggtext.Face)}
	r.Resize(w, h)
	return r, nil
}

func (r *Renderer) Resize(w, h int) {
	w, h = max(w, 1), max(h, 1)
	if r.dc != nil && w == r.w && h == r.h {
		return
	}
	if r.dc != nil {
		_ = r.dc.Close()
	}
	r.dc = gg.NewContext(w, h)
	r.w, r.h = w, h
}

func (r *Renderer) Clear(c colors.Color) {
	r.dc.ClearWithColor(gg.RGBA{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])})
}

// Paint draws quads as filled rectangles and glyphs as text runs at their
// pen origin. The atlas is not sampled.
func (r *Renderer) Paint(prims []core.Primitive, _ *core.Atlas, pixelsPerPoint float32) error {
	if pixelsPerPoint <= 0 {
		pixelsPerPoint = 1
	}
	r.stats = renderer2d.Statistics{}
	for _, p := range prims {
		rect := scale(p.Rect, pixelsPerPoint)
		// partial glyphs are cut to this rect; a full glyph leaves it empty
		var cut core.Rect
		if !p.Clip.Empty() {
			clip := scale(p.Clip, pixelsPerPoint)
			vis := clip.Intersect(rect)
			if vis.Empty() {
				r.stats.Culled++
				continue
			}
			if p.Kind == core.PrimQuad {
				rect = vis
			} else if !covers(clip, rect) {
				cut = vis
			}
		}
		switch p.Kind {
		case core.PrimQuad:
			r.setColor(p.Color)
			r.dc.DrawRectangle(float64(rect.X), float64(rect.Y), float64(rect.W), float64(rect.H))
			if err := r.dc.Fill(); err != nil {
				return fmt.Errorf("fill quad: %w", err)
			}
		case core.PrimGlyph:
			ox, oy := float64(p.Origin[0]*pixelsPerPoint), float64(p.Origin[1]*pixelsPerPoint)
			face := r.face(p.Size * pixelsPerPoint)
			if cut.Empty() {
				r.setColor(p.Color)
				r.dc.SetFont(face)
				r.dc.DrawString(string(p.Rune), ox, oy)
				break
			}
			r.drawGlyphCut(p, face, ox, oy, cut)
		}
		r.stats.QuadCount++
	}
	r.stats.DrawCalls = 1
	return nil
}

func (r *Renderer) Shutdown() {
	if r.dc != nil {
		_ = r.dc.Close()
	}
	if r.source != nil {
		_ = r.source.Close()
	}
}

// Image returns the canvas contents.
func (r *Renderer) Image() image.Image { return r.dc.Image() }

// SavePNG writes the canvas to path.
func (r *Renderer) SavePNG(path string) error { return r.dc.SavePNG(path) }

// Stats reports what the last Paint drew.
func (r *Renderer) Stats() renderer2d.Statistics { return r.stats }

// drawGlyphCut draws a glyph on a scratch canvas covering only cut and
// composites it. gg text output ignores the clip stack.
func (r *Renderer) drawGlyphCut(p core.Primitive, face ggtext.Face, ox, oy float64, cut core.Rect) {
	x0, y0 := math.Floor(float64(cut.X)), math.Floor(float64(cut.Y))
	x1, y1 := math.Floor(float64(cut.X+cut.W)), math.Floor(float64(cut.Y+cut.H))
	w, h := int(x1-x0), int(y1-y0)
	if w <= 0 || h <= 0 {
		return
	}
	tmp := gg.NewContext(w, h)
	defer func() { _ = tmp.Close() }()
	c := p.Color
	tmp.SetRGBA(float64(c[0]), float64(c[1]), float64(c[2]), float64(c[3]))
	tmp.SetFont(face)
	tmp.DrawString(string(p.Rune), ox-x0, oy-y0)
	r.dc.DrawImageEx(gg.ImageBufFromImage(tmp.Image()), gg.DrawImageOptions{
		X:             x0,
		Y:             y0,
		Interpolation: gg.InterpNearest,
		Opacity:       1,
		BlendMode:     gg.BlendNormal,
	})
}

// covers reports whether outer contains inner entirely.
func covers(outer, inner core.Rect) bool {
	return inner.X >= outer.X && inner.Y >= outer.Y &&
		inner.X+inner.W <= outer.X+outer.W && inner.Y+inner.H <= outer.Y+outer.H
}

func (r *Renderer) setColor(c colors.Color) {
	r.dc.SetRGBA(float64(c[0]), float64(c[1]), float64(c[2]), float64(c[3]))
}

func (r *Renderer) face(sizePx float32) ggtext.Face {
	if f, ok := r.faces[sizePx]; ok {
		return f
	}
	f := r.source.Face(float64(sizePx))
	r.faces[sizePx] = f
	return f
}

func scale(rc core.Rect, s float32) core.Rect {
	return core.Rect{X: rc.X * s, Y: rc.Y * s, W: rc.W * s, H: rc.H * s}
}
