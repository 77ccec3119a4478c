package renderer2d

import (
	"errors"
	"testing"

	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/core"
)

type call struct {
	verts []float32
	inds  []uint32
	clip  core.Rect
}

type recordSink struct {
	calls []call
	err   error
}

func (s *recordSink) DrawBatch(verts []float32, inds []uint32, clip core.Rect) error {
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, call{
		verts: append([]float32(nil), verts...),
		inds:  append([]uint32(nil), inds...),
		clip:  clip,
	})
	return nil
}

func quad(x, y, w, h float32, clip core.Rect) core.Primitive {
	return core.Primitive{Kind: core.PrimQuad, Rect: core.Rect{X: x, Y: y, W: w, H: h}, Clip: clip, Color: colors.Red}
}

func TestBatchScalesAndUsesWhiteUV(t *testing.T) {
	sink := &recordSink{}
	b := NewBatch(sink, 16)
	b.Begin(2, [2]float32{0.25, 0.5})
	b.Add(quad(10, 20, 5, 5, core.Rect{}))
	if err := b.End(); err != nil {
		t.Fatalf("end: %v", err)
	}
	if len(sink.calls) != 1 {
		t.Fatalf("expected 1 draw call, got %d", len(sink.calls))
	}
	v := sink.calls[0].verts
	if len(v) != 4*VertexStride {
		t.Fatalf("expected 4 vertices, got %d floats", len(v))
	}
	// bottom-right corner is the last vertex
	br := v[3*VertexStride:]
	if br[0] != 30 || br[1] != 50 {
		t.Fatalf("expected bottom-right at 30,50 px, got %v,%v", br[0], br[1])
	}
	if br[6] != 0.25 || br[7] != 0.5 {
		t.Fatalf("expected white uv, got %v,%v", br[6], br[7])
	}
	if got := b.Stats(); got.QuadCount != 1 || got.DrawCalls != 1 || got.TotalIndexCount() != 6 {
		t.Fatalf("unexpected stats %+v", got)
	}
}

func TestBatchFlushesOnCapacityAndClip(t *testing.T) {
	sink := &recordSink{}
	b := NewBatch(sink, 2)
	b.Begin(1, [2]float32{})
	clipA := core.Rect{W: 100, H: 100}
	clipB := core.Rect{X: 50, W: 100, H: 100}
	b.Add(quad(0, 0, 1, 1, clipA))
	b.Add(quad(1, 0, 1, 1, clipA))
	b.Add(quad(2, 0, 1, 1, clipA)) // capacity
	b.Add(quad(60, 0, 1, 1, clipB))
	if err := b.End(); err != nil {
		t.Fatalf("end: %v", err)
	}
	if len(sink.calls) != 3 {
		t.Fatalf("expected 3 draw calls, got %d", len(sink.calls))
	}
	if sink.calls[2].clip != clipB {
		t.Fatalf("expected last batch clipped to %+v, got %+v", clipB, sink.calls[2].clip)
	}
	if got := sink.calls[1].inds; len(got) != 6 || got[0] != 0 {
		t.Fatalf("expected indices to restart per batch, got %v", got)
	}
}

func TestBatchCullsOutsideClip(t *testing.T) {
	sink := &recordSink{}
	b := NewBatch(sink, 8)
	b.Begin(1, [2]float32{})
	b.Add(quad(500, 500, 10, 10, core.Rect{W: 100, H: 100}))
	if err := b.End(); err != nil {
		t.Fatalf("end: %v", err)
	}
	if len(sink.calls) != 0 || b.Stats().Culled != 1 {
		t.Fatalf("expected quad to be culled, calls=%d stats=%+v", len(sink.calls), b.Stats())
	}
}

func TestBatchReportsSinkError(t *testing.T) {
	boom := errors.New("boom")
	b := NewBatch(&recordSink{err: boom}, 8)
	b.Begin(1, [2]float32{})
	b.Add(quad(0, 0, 1, 1, core.Rect{}))
	if err := b.End(); !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}
