package core

import "github.com/hubastard/canopy/engine/colors"

// Rect is an axis-aligned rectangle in points, top-left origin.
type Rect struct{ X, Y, W, H float32 }

func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Intersect returns the overlap of r and o, or an empty rect.
func (r Rect) Intersect(o Rect) Rect {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.X+r.W, o.X+o.W)
	y1 := min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

type PrimitiveKind uint8

const (
	PrimQuad PrimitiveKind = iota
	PrimGlyph
)

// Primitive is one renderable item produced by tessellation.
type Primitive struct {
	Kind  PrimitiveKind
	Rect  Rect // destination, points
	Clip  Rect // empty means unclipped
	Color colors.Color

	// Glyph only.
	UV     [4]float32 // u0, v0, u1, v1 into the Atlas
	Rune   rune
	Origin [2]float32 // pen position on the baseline, points
	Size   float32    // font size, pixels at 1 point per pixel
}

// Atlas is the glyph texture shared by the UI layer and the renderers.
// Pix is tightly packed RGBA8 with white color and alpha coverage.
type Atlas struct {
	Width, Height int
	Pix           []byte
	// Version changes whenever Pix does; renderers re-upload on change.
	Version uint64
	// WhiteUV samples a fully opaque texel, for solid quads.
	WhiteUV [2]float32
}
