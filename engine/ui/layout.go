package ui

import (
	"strconv"

	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/core"
)

// ===== Layout props =====

type Axis int

const (
	Vertical Axis = iota
	Horizontal
)

type Insets4 struct{ L, T, R, B float32 }

func Insets(l, t, r, b float32) Insets4 { return Insets4{l, t, r, b} }
func Uniform(v float32) Insets4         { return Insets4{v, v, v, v} }

// Props configures a view (a layout scope).
type Props struct {
	ID      string // disambiguates widget ids inside this view
	Axis    Axis
	Gap     float32
	Padding Insets4
	Bg      colors.Color // drawn behind the children when visible
	// Bounds pins the view; empty means "take the parent's remaining width
	// and fit the children's height".
	Bounds core.Rect
}

type scope struct {
	props Props
	seed  uint64

	outer core.Rect // allocated rect including padding; H grows while fitting
	inner core.Rect // content box
	clip  core.Rect

	cursorX, cursorY float32
	rowH             float32 // tallest child of a horizontal view
	used             float32 // main-axis extent consumed so far
	count            int
	bgShape          int // shape index reserved for the background, -1 if none
	fixed            bool
}

// BeginView opens a layout scope. Every BeginView needs a matching EndView.
func (c *Ctx) BeginView(p Props) {
	if !c.inFrame {
		return
	}
	var outer core.Rect
	fixed := !p.Bounds.Empty()
	if fixed {
		outer = p.Bounds
	} else {
		parent := c.top()
		parent.applyGap()
		outer = core.Rect{X: parent.cursorX, Y: parent.cursorY, W: parent.remainingWidth(), H: 0}
	}
	s := scope{
		props:   p,
		seed:    c.seed(p.ID),
		outer:   outer,
		fixed:   fixed,
		bgShape: -1,
	}
	s.inner = core.Rect{
		X: outer.X + p.Padding.L,
		Y: outer.Y + p.Padding.T,
		W: max(0, outer.W-p.Padding.L-p.Padding.R),
		H: max(0, outer.H-p.Padding.T-p.Padding.B),
	}
	s.clip = c.clipRect()
	if fixed {
		s.clip = s.clip.Intersect(outer)
	}
	s.cursorX, s.cursorY = s.inner.X, s.inner.Y
	if p.Bg.Visible() {
		s.bgShape = len(c.draw.Shapes)
		c.draw.Shapes = append(c.draw.Shapes, Shape{Kind: ShapeRect, Color: p.Bg, Clip: s.clip})
	}
	c.scopes = append(c.scopes, s)
}

// EndView closes the innermost scope and reserves its size in the parent.
func (c *Ctx) EndView() {
	if !c.inFrame || len(c.scopes) <= 1 {
		return
	}
	s := c.scopes[len(c.scopes)-1]
	c.scopes = c.scopes[:len(c.scopes)-1]

	if !s.fixed {
		contentH := s.used
		if s.props.Axis == Horizontal {
			contentH = s.rowH
		}
		s.outer.H = contentH + s.props.Padding.T + s.props.Padding.B
	}
	if s.bgShape >= 0 {
		c.draw.Shapes[s.bgShape].Rect = s.outer
	}
	if !s.fixed {
		c.extendUsed(c.top().commit(s.outer.W, s.outer.H))
	}
}

// BeginRow lays the following widgets out left to right.
func (c *Ctx) BeginRow() {
	c.BeginView(Props{ID: "row" + strconv.Itoa(c.top().count), Axis: Horizontal, Gap: c.style.Spacing})
}

func (c *Ctx) EndRow() { c.EndView() }

// BeginPanel opens a view covering the whole screen, like a central panel.
func (c *Ctx) BeginPanel() {
	c.BeginView(Props{
		ID:      "panel",
		Axis:    Vertical,
		Gap:     c.style.Spacing,
		Padding: Uniform(c.style.PanelPadding),
		Bg:      c.style.PanelBg,
		Bounds:  c.Screen(),
	})
}

func (c *Ctx) EndPanel() { c.EndView() }

func (c *Ctx) top() *scope { return &c.scopes[len(c.scopes)-1] }

func (c *Ctx) clipRect() core.Rect { return c.top().clip }

func (s *scope) remainingWidth() float32 {
	if s.props.Axis == Horizontal {
		return max(0, s.inner.X+s.inner.W-s.cursorX)
	}
	return s.inner.W
}

// AvailableWidth is the width left for the next widget.
func (c *Ctx) AvailableWidth() float32 { return c.top().remainingWidth() }

// allocate reserves w x h at the cursor of the innermost scope.
func (c *Ctx) allocate(w, h float32) core.Rect {
	s := c.top()
	s.applyGap()
	r := s.commit(w, h)
	c.extendUsed(r)
	return r
}

func (s *scope) applyGap() {
	if s.count == 0 {
		return
	}
	if s.props.Axis == Horizontal {
		s.cursorX += s.props.Gap
	} else {
		s.cursorY += s.props.Gap
		s.used += s.props.Gap
	}
}

// commit places w x h at the cursor without a leading gap.
func (s *scope) commit(w, h float32) core.Rect {
	r := core.Rect{X: s.cursorX, Y: s.cursorY, W: w, H: h}
	if s.props.Axis == Horizontal {
		s.cursorX += w
		s.rowH = max(s.rowH, h)
	} else {
		s.cursorY += h
		s.used += h
	}
	s.count++
	return r
}

func (c *Ctx) extendUsed(r core.Rect) {
	c.used.W = max(c.used.W, r.X+r.W)
	c.used.H = max(c.used.H, r.Y+r.H)
}
