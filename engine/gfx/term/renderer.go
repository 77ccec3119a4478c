// Package term paints UI primitives into terminal cells through tcell.
package term

import (
	"github.com/gdamore/tcell/v2"
	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/core"
	"github.com/hubastard/canopy/engine/gfx/renderer2d"
	"github.com/mattn/go-runewidth"
)

type cell struct {
	bg, fg colors.Color
	r      rune
	cont   bool // covered by the wide rune to its left
}

// Renderer implements core.Renderer on a character grid. Each cell covers
// cellW x cellH framebuffer pixels: quads blend into cell backgrounds and
// glyphs land in the cell under their pen origin.
type Renderer struct {
	screen       tcell.Screen
	cellW, cellH float32
	cols, rows   int
	grid         []cell
	stats        renderer2d.Statistics
}

var _ core.Renderer = (*Renderer)(nil)

func New(screen tcell.Screen, cellW, cellH int) *Renderer {
	r := &Renderer{screen: screen, cellW: float32(max(cellW, 1)), cellH: float32(max(cellH, 1))}
	cols, rows := screen.Size()
	r.resizeGrid(cols, rows)
	return r
}

// Resize takes framebuffer pixels and converts them to cells.
func (r *Renderer) Resize(w, h int) {
	r.resizeGrid(int(float32(w)/r.cellW), int(float32(h)/r.cellH))
}

func (r *Renderer) resizeGrid(cols, rows int) {
	cols, rows = max(cols, 0), max(rows, 0)
	if cols == r.cols && rows == r.rows && r.grid != nil {
		return
	}
	r.cols, r.rows = cols, rows
	r.grid = make([]cell, cols*rows)
}

func (r *Renderer) Clear(c colors.Color) {
	for i := range r.grid {
		r.grid[i] = cell{bg: c, fg: c, r: ' '}
	}
}

func (r *Renderer) Paint(prims []core.Primitive, _ *core.Atlas, pixelsPerPoint float32) error {
	if pixelsPerPoint <= 0 {
		pixelsPerPoint = 1
	}
	r.stats = renderer2d.Statistics{}
	lastRow, lastCol := -1, -1
	for _, p := range prims {
		rect := scale(p.Rect, pixelsPerPoint)
		if !p.Clip.Empty() {
			clip := scale(p.Clip, pixelsPerPoint)
			if clip.Intersect(rect).Empty() {
				r.stats.Culled++
				continue
			}
			if p.Kind == core.PrimQuad {
				rect = clip.Intersect(rect)
			} else if !clip.Contains(rect.X+rect.W*0.5, rect.Y+rect.H*0.5) {
				// a cell shows a glyph whole or not at all
				r.stats.Culled++
				continue
			}
		}
		switch p.Kind {
		case core.PrimQuad:
			r.fill(rect, p.Color)
			lastRow, lastCol = -1, -1
		case core.PrimGlyph:
			col := int(p.Origin[0] * pixelsPerPoint / r.cellW)
			row := int((rect.Y + rect.H*0.5) / r.cellH)
			// proportional glyphs can crowd into one cell; keep runs readable
			if row == lastRow && col <= lastCol {
				col = lastCol + 1
			}
			lastRow, lastCol = row, r.put(col, row, p.Rune, p.Color)
		}
		r.stats.QuadCount++
	}
	r.flush()
	r.stats.DrawCalls = 1
	return nil
}

func (r *Renderer) Shutdown() {}

// Stats reports what the last Paint drew.
func (r *Renderer) Stats() renderer2d.Statistics { return r.stats }

// fill blends c into every cell whose center lies inside rect.
func (r *Renderer) fill(rect core.Rect, c colors.Color) {
	if !c.Visible() {
		return
	}
	c0 := max(0, int(rect.X/r.cellW+0.5))
	c1 := min(r.cols, int((rect.X+rect.W)/r.cellW+0.5))
	r0 := max(0, int(rect.Y/r.cellH+0.5))
	r1 := min(r.rows, int((rect.Y+rect.H)/r.cellH+0.5))
	// thin rules still show up as a line of cells
	if r1 <= r0 && rect.H > 0 {
		row := int((rect.Y + rect.H*0.5) / r.cellH)
		if row < 0 || row >= r.rows {
			return
		}
		for x := c0; x < c1; x++ {
			cl := &r.grid[row*r.cols+x]
			cl.fg = blend(cl.bg, c)
			if cl.r == ' ' {
				cl.r = '─'
			}
		}
		return
	}
	for y := r0; y < r1; y++ {
		for x := c0; x < c1; x++ {
			cl := &r.grid[y*r.cols+x]
			cl.bg = blend(cl.bg, c)
			cl.r, cl.cont = ' ', false
		}
	}
}

// put writes ch at (col,row) and returns the last column it covers.
func (r *Renderer) put(col, row int, ch rune, c colors.Color) int {
	w := max(runewidth.RuneWidth(ch), 1)
	if row < 0 || row >= r.rows || col < 0 || col+w > r.cols {
		return col + w - 1
	}
	cl := &r.grid[row*r.cols+col]
	cl.r, cl.fg, cl.cont = ch, blend(cl.bg, c), false
	for i := 1; i < w; i++ {
		r.grid[row*r.cols+col+i].cont = true
	}
	return col + w - 1
}

func (r *Renderer) flush() {
	for y := 0; y < r.rows; y++ {
		for x := 0; x < r.cols; x++ {
			cl := r.grid[y*r.cols+x]
			if cl.cont {
				continue
			}
			st := tcell.StyleDefault.Background(toTcell(cl.bg)).Foreground(toTcell(cl.fg))
			r.screen.SetContent(x, y, cl.r, nil, st)
		}
	}
}

// Cell returns the rune and colors at (col,row) after the last Paint.
func (r *Renderer) Cell(col, row int) (rune, colors.Color, colors.Color) {
	if col < 0 || col >= r.cols || row < 0 || row >= r.rows {
		return 0, colors.Transparent, colors.Transparent
	}
	cl := r.grid[row*r.cols+col]
	return cl.r, cl.fg, cl.bg
}

func blend(dst, src colors.Color) colors.Color {
	a := src[3]
	if a >= 1 {
		return colors.Color{src[0], src[1], src[2], 1}
	}
	return colors.Color{
		src[0]*a + dst[0]*(1-a),
		src[1]*a + dst[1]*(1-a),
		src[2]*a + dst[2]*(1-a),
		1,
	}
}

func toTcell(c colors.Color) tcell.Color {
	r, g, b, _ := c.RGBA8()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func scale(rc core.Rect, s float32) core.Rect {
	return core.Rect{X: rc.X * s, Y: rc.Y * s, W: rc.W * s, H: rc.H * s}
}
