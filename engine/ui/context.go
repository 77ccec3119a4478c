package ui

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/core"
	"github.com/hubastard/canopy/engine/text"
)

var (
	ErrFrameInProgress = fmt.Errorf("%w: BeginFrame called twice without EndFrame", core.ErrUIUsage)
	ErrFrameNotStarted = fmt.Errorf("%w: EndFrame called without BeginFrame", core.ErrUIUsage)
)

// Style holds the sizes and colors widgets are drawn with.
type Style struct {
	Spacing      float32
	PanelPadding float32
	ButtonPad    Insets4
	PanelBg      colors.Color
	WidgetBg     colors.Color
	WidgetHot    colors.Color
	WidgetActive colors.Color
	Accent       colors.Color
	TextColor    colors.Color
	TextEditRows int
}

func DefaultStyle() Style {
	return Style{
		Spacing:      8,
		PanelPadding: 12,
		ButtonPad:    Insets(8, 4, 8, 4),
		PanelBg:      colors.Panel,
		WidgetBg:     colors.Widget,
		WidgetHot:    colors.WidgetHot,
		WidgetActive: colors.WidgetDown,
		Accent:       colors.Accent,
		TextColor:    colors.Text,
		TextEditRows: 4,
	}
}

type ShapeKind uint8

const (
	ShapeRect ShapeKind = iota
	ShapeText
)

// Shape is one recorded draw command.
type Shape struct {
	Kind  ShapeKind
	Rect  core.Rect // ShapeText uses X/Y as the top-left of the text
	Clip  core.Rect
	Color colors.Color
	Text  string
}

// DrawList is the frame geometry handed to the core as a core.Drawable.
type DrawList struct {
	Shapes []Shape
}

// Ctx is the immediate-mode UI context. The whole interface is rebuilt
// between BeginFrame and EndFrame every frame; only hot/active/focus ids
// and per-widget scratch survive across frames.
type Ctx struct {
	font  *text.Font
	style Style

	inFrame bool
	in      core.InputSnapshot
	screen  core.Rect
	frames  uint64

	// pointer state folded from the snapshot events
	mouseX, mouseY float32
	mouseDown      bool
	pressed        bool
	released       bool
	pointerIn      bool

	// keyboard/text events in arrival order, consumed by the focused editor
	typed []core.InputEvent

	hot, active, focus uint64
	activeSeen         bool

	draw   DrawList
	prims  []core.Primitive
	scopes []scope
	used   core.Rect

	cursor  core.CursorIcon
	copied  string
	resize  *core.Size
	repaint bool
}

func New(font *text.Font, style Style) *Ctx {
	return &Ctx{
		font:   font,
		style:  style,
		scopes: make([]scope, 0, 16),
		draw:   DrawList{Shapes: make([]Shape, 0, 256)},
		prims:  make([]core.Primitive, 0, 1024),
	}
}

var _ core.UI = (*Ctx)(nil)

// BeginFrame resets per-frame buffers and folds the input snapshot.
func (c *Ctx) BeginFrame(in core.InputSnapshot) error {
	if c.inFrame {
		return ErrFrameInProgress
	}
	c.inFrame = true

	screen := core.Rect{W: in.ScreenW, H: in.ScreenH}
	resized := screen != c.screen
	c.in = in
	c.screen = screen

	c.draw.Shapes = c.draw.Shapes[:0]
	c.scopes = c.scopes[:0]
	c.typed = c.typed[:0]
	c.used = core.Rect{}
	c.cursor = core.CursorDefault
	c.copied = ""
	c.resize = nil
	c.hot = 0
	c.activeSeen = false
	c.pressed, c.released = false, false

	// first frame, input and resizes all need another pass
	c.repaint = c.frames == 0 || resized || len(in.Events) > 0

	for _, ev := range in.Events {
		switch e := ev.(type) {
		case core.PointerMoved:
			c.mouseX, c.mouseY = e.X, e.Y
			c.pointerIn = true
		case core.PointerGone:
			c.pointerIn = false
		case core.PointerButton:
			if e.Button != core.MouseLeft {
				continue
			}
			c.mouseX, c.mouseY = e.X, e.Y
			c.pointerIn = true
			if e.Pressed {
				c.pressed = true
				c.mouseDown = true
			} else {
				c.released = true
				c.mouseDown = false
			}
		case core.Text, core.KeyInput, core.Copy, core.Cut, core.Paste:
			c.typed = append(c.typed, ev)
		}
	}
	if c.pressed {
		// a press anywhere drops focus; the editor under the pointer takes it back
		c.focus = 0
	}

	c.scopes = append(c.scopes, scope{
		props:   Props{Axis: Vertical},
		outer:   screen,
		inner:   screen,
		clip:    screen,
		bgShape: -1,
		fixed:   true,
	})
	return nil
}

// EndFrame closes the frame and reports the platform output.
func (c *Ctx) EndFrame() (core.Output, core.Drawable, error) {
	if !c.inFrame {
		return core.Output{}, nil, ErrFrameNotStarted
	}
	c.inFrame = false
	c.frames++

	if c.active != 0 && (!c.activeSeen || c.released) {
		c.active = 0
	}
	if c.active != 0 {
		// dragging animates until release
		c.repaint = true
	}

	out := core.Output{
		NeedsRepaint: c.repaint,
		CopiedText:   c.copied,
		Cursor:       c.cursor,
		Resize:       c.resize,
	}
	return out, &c.draw, nil
}

// Tessellate converts the recorded shapes into primitives. The returned
// slice is reused by the next call.
func (c *Ctx) Tessellate(d core.Drawable) []core.Primitive {
	dl, ok := d.(*DrawList)
	if !ok || dl == nil {
		return nil
	}
	c.prims = c.prims[:0]
	for _, s := range dl.Shapes {
		switch s.Kind {
		case ShapeRect:
			if s.Rect.Empty() || !s.Color.Visible() {
				continue
			}
			c.prims = append(c.prims, core.Primitive{Kind: core.PrimQuad, Rect: s.Rect, Clip: s.Clip, Color: s.Color})
		case ShapeText:
			c.prims = text.AppendGlyphs(c.prims, c.font, s.Rect.X, s.Rect.Y, s.Text, s.Color, s.Clip)
		}
	}
	return c.prims
}

func (c *Ctx) Atlas() *core.Atlas { return c.font.Atlas }

// Font is the face widgets are measured and drawn with.
func (c *Ctx) Font() *text.Font { return c.font }

func (c *Ctx) Style() *Style { return &c.style }

// Screen is the full window rect in points.
func (c *Ctx) Screen() core.Rect { return c.screen }

// Time is the current snapshot time in seconds.
func (c *Ctx) Time() float64 { return c.in.Time }

// UsedSize is the extent of everything allocated so far this frame.
func (c *Ctx) UsedSize() (float32, float32) { return c.used.W, c.used.H }

// RequestRepaint asks for another frame right away.
func (c *Ctx) RequestRepaint() { c.repaint = true }

// RequestWindowSize asks the platform to resize the window. The request
// is advisory and may be dropped.
func (c *Ctx) RequestWindowSize(w, h int) { c.resize = &core.Size{W: w, H: h} }

// Frames is the number of completed frames.
func (c *Ctx) Frames() uint64 { return c.frames }

// ===== Internal: ids, painting, interaction =====

func (c *Ctx) seed(name string) uint64 {
	var parent uint64
	if len(c.scopes) > 0 {
		parent = c.top().seed
	}
	return c.hash(parent, "view", name)
}

// id derives a stable widget id from the enclosing view and the widget label.
func (c *Ctx) id(kind, label string) uint64 {
	return c.hash(c.top().seed, kind, label)
}

func (c *Ctx) hash(parent uint64, kind, label string) uint64 {
	d := xxhash.New()
	var b [8]byte
	for i := range b {
		b[i] = byte(parent >> (8 * i))
	}
	_, _ = d.Write(b[:])
	_, _ = d.WriteString(kind)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(label)
	return d.Sum64()
}

func (c *Ctx) fillRect(r core.Rect, col colors.Color) {
	c.draw.Shapes = append(c.draw.Shapes, Shape{Kind: ShapeRect, Rect: r, Clip: c.clipRect(), Color: col})
}

func (c *Ctx) drawText(x, y float32, s string, col colors.Color) {
	if s == "" {
		return
	}
	c.draw.Shapes = append(c.draw.Shapes, Shape{Kind: ShapeText, Rect: core.Rect{X: x, Y: y}, Clip: c.clipRect(), Color: col, Text: s})
}

func (c *Ctx) measure(s string) (float32, float32) { return text.MeasureText(c.font, s) }

type response struct {
	hovered  bool
	clicked  bool
	pressed  bool
	dragging bool
}

// interact is the hot/active state machine: active means the press started
// inside the widget, clicked means it was released while still inside.
func (c *Ctx) interact(id uint64, r core.Rect) response {
	var resp response
	resp.hovered = c.pointerIn && r.Contains(c.mouseX, c.mouseY) && c.clipRect().Contains(c.mouseX, c.mouseY)
	if resp.hovered {
		c.hot = id
	}
	if c.pressed && resp.hovered {
		c.active = id
		resp.pressed = true
	}
	if c.active == id {
		c.activeSeen = true
		if c.released {
			resp.clicked = resp.hovered
		} else if c.mouseDown {
			resp.dragging = true
		}
	}
	return resp
}
