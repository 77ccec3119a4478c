package renderer2d

import (
	"errors"

	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/core"
)

// Vertex: pos2 + color4 + uv2 => 8 floats
const (
	VertexStride = 8
	vertsPerQuad = 4
	indsPerQuad  = 6
)

// Statistics captures the counts generated during a renderer frame.
type Statistics struct {
	DrawCalls int
	QuadCount int
	Culled    int
}

// TotalVertexCount reports vertices submitted this frame.
func (s Statistics) TotalVertexCount() int { return s.QuadCount * vertsPerQuad }

// TotalIndexCount reports indices submitted this frame.
func (s Statistics) TotalIndexCount() int { return s.QuadCount * indsPerQuad }

// Sink receives full batches. Vertex positions are framebuffer pixels with
// a top-left origin; clip is in the same space and empty means unclipped.
type Sink interface {
	DrawBatch(verts []float32, inds []uint32, clip core.Rect) error
}

// Batch turns primitives into indexed quads and hands them to a Sink,
// flushing when the buffer fills up or the clip rect changes.
type Batch struct {
	sink     Sink
	maxQuads int

	verts     []float32
	inds      []uint32
	quadCount int

	scale   float32
	whiteUV [2]float32
	clip    core.Rect
	stats   Statistics
	err     error
}

// NewBatch allocates buffers for maxQuads quads per draw call.
func NewBatch(sink Sink, maxQuads int) *Batch {
	if maxQuads <= 0 {
		maxQuads = 10000
	}
	return &Batch{
		sink:     sink,
		maxQuads: maxQuads,
		verts:    make([]float32, 0, maxQuads*vertsPerQuad*VertexStride),
		inds:     make([]uint32, 0, maxQuads*indsPerQuad),
	}
}

// Begin starts a frame. pixelsPerPoint scales primitive geometry into
// framebuffer pixels; whiteUV is the atlas texel used for solid quads.
func (b *Batch) Begin(pixelsPerPoint float32, whiteUV [2]float32) {
	if pixelsPerPoint <= 0 {
		pixelsPerPoint = 1
	}
	b.scale = pixelsPerPoint
	b.whiteUV = whiteUV
	b.stats = Statistics{}
	b.err = nil
	b.clip = core.Rect{}
	b.resetBatch()
}

// Add queues one primitive. Primitives fully outside their clip rect are
// dropped.
func (b *Batch) Add(p core.Primitive) {
	if b.err != nil {
		return
	}
	clip := b.px(p.Clip)
	if !p.Clip.Empty() && clip.Intersect(b.px(p.Rect)).Empty() {
		b.stats.Culled++
		return
	}
	if clip != b.clip {
		b.flush()
		b.clip = clip
	}
	if b.quadCount >= b.maxQuads {
		b.flush()
	}
	u0, v0, u1, v1 := b.whiteUV[0], b.whiteUV[1], b.whiteUV[0], b.whiteUV[1]
	if p.Kind == core.PrimGlyph {
		u0, v0, u1, v1 = p.UV[0], p.UV[1], p.UV[2], p.UV[3]
	}
	b.quad(b.px(p.Rect), p.Color, u0, v0, u1, v1)
}

// End flushes the remaining quads and returns the first sink error of the
// frame.
func (b *Batch) End() error {
	b.flush()
	return b.err
}

// Stats returns the current frame statistics snapshot.
func (b *Batch) Stats() Statistics { return b.stats }

// --- internals ---

func (b *Batch) px(r core.Rect) core.Rect {
	s := b.scale
	return core.Rect{X: r.X * s, Y: r.Y * s, W: r.W * s, H: r.H * s}
}

func (b *Batch) quad(r core.Rect, color colors.Color, u0, v0, u1, v1 float32) {
	// corners (TL, TR, BL, BR) with UVs. Positive Y goes down.
	corners := [4][4]float32{
		{r.X, r.Y, u0, v0},
		{r.X + r.W, r.Y, u1, v0},
		{r.X, r.Y + r.H, u0, v1},
		{r.X + r.W, r.Y + r.H, u1, v1},
	}
	startVertex := uint32(len(b.verts) / VertexStride)
	for _, p := range corners {
		b.verts = append(b.verts,
			p[0], p[1],
			color[0], color[1], color[2], color[3],
			p[2], p[3],
		)
	}
	b.inds = append(b.inds,
		startVertex+0, startVertex+2, startVertex+1,
		startVertex+1, startVertex+2, startVertex+3,
	)
	b.quadCount++
	b.stats.QuadCount++
}

var errNoSink = errors.New("renderer2d: batch has no sink")

func (b *Batch) flush() {
	if b.quadCount == 0 {
		return
	}
	defer b.resetBatch()
	if b.sink == nil {
		b.err = errNoSink
		return
	}
	if err := b.sink.DrawBatch(b.verts, b.inds, b.clip); err != nil {
		b.err = err
		return
	}
	b.stats.DrawCalls++
}

func (b *Batch) resetBatch() {
	b.verts = b.verts[:0]
	b.inds = b.inds[:0]
	b.quadCount = 0
}
