package core

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/hubastard/canopy/engine/colors"
)

func TestSwapInterval(t *testing.T) {
	if SwapInterval(true) != 1 || SwapInterval(false) != 0 {
		t.Fatalf("vsync must map to 1 and no vsync to 0")
	}
}

func TestPresenterSequence(t *testing.T) {
	var calls []string
	win := newFakeWindow(&calls, nil)
	rend := &fakeRenderer{calls: &calls}
	p := NewPresenter(win, rend)
	if p.Interval() != -1 {
		t.Fatalf("expected no interval before the first frame, got %d", p.Interval())
	}

	prims := []Primitive{{Kind: PrimQuad, Rect: Rect{W: 1, H: 1}}}
	if err := p.ApplyPolicy(true); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := p.Render(colors.Meadow, prims, nil, 2); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := p.Present(); err != nil {
		t.Fatalf("present: %v", err)
	}
	if want := []string{"interval", "clear", "paint", "swap"}; !reflect.DeepEqual(calls, want) {
		t.Fatalf("expected %v, got %v", want, calls)
	}
	if p.Interval() != 1 || rend.clears[0] != colors.Meadow || rend.ppp[0] != 2 {
		t.Fatalf("unexpected presenter state interval=%d clear=%v ppp=%v", p.Interval(), rend.clears, rend.ppp)
	}
}

func TestPresenterErrors(t *testing.T) {
	boom := errors.New("device lost")
	win := newFakeWindow(nil, nil)
	rend := &fakeRenderer{}
	p := NewPresenter(win, rend)

	win.intervalErr = boom
	err := p.ApplyPolicy(false)
	var pe *PresentationError
	if !errors.As(err, &pe) || pe.Op != "swap interval" || !errors.Is(err, boom) {
		t.Fatalf("expected swap interval error, got %v", err)
	}
	if p.Interval() != -1 {
		t.Fatalf("a failed policy must not be recorded")
	}

	rend.paintErr = boom
	if err := p.Render(colors.Black, nil, nil, 1); !errors.As(err, &pe) || pe.Op != "paint" {
		t.Fatalf("expected paint error, got %v", err)
	}

	win.swapErr = boom
	if err := p.Present(); !errors.As(err, &pe) || pe.Op != "swap" {
		t.Fatalf("expected swap error, got %v", err)
	}
	if pe.Error() != "present swap: device lost" {
		t.Fatalf("unexpected message %q", pe.Error())
	}
}

func TestFrameStagesLoopStateWrites(t *testing.T) {
	st := NewLoopState(time.Unix(0, 0), false)
	f := newFrame(st, 3, 1.25)
	f.SetVSync(true)
	f.RequestQuit()
	if st.VSync() || st.Quit() {
		t.Fatalf("writes must stay staged until commit")
	}
	if !f.VSync() || !f.Quitting() || f.Index != 3 || f.Time != 1.25 {
		t.Fatalf("frame should report its staged view, got %+v", f)
	}
	f.commit()
	if !st.VSync() || !st.Quit() {
		t.Fatalf("commit must publish staged writes")
	}

	// a frame without writes leaves the state untouched, and quit never resets
	g := newFrame(st, 4, 2)
	*g.VSyncRef() = false
	g.commit()
	if st.VSync() || !st.Quit() {
		t.Fatalf("expected vsync off and quit kept, got vsync=%v quit=%v", st.VSync(), st.Quit())
	}
	if got := st.Elapsed(time.Unix(2, 0)); got != 2 {
		t.Fatalf("expected 2s elapsed, got %v", got)
	}
}
