package text

import (
	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/core"
)

// AppendGlyphs lays out s with its top-left corner at (x,y) and appends one
// glyph primitive per visible rune. Positive Y goes downward.
func AppendGlyphs(dst []core.Primitive, font *Font, x, y float32, s string, color colors.Color, clip core.Rect) []core.Primitive {
	penX := x
	baseY := y + font.Ascent // move origin to top left
	var prev rune = -1

	for _, r := range s {
		if r == '\n' {
			penX = x
			baseY += LineHeight(font)
			prev = -1
			continue
		}

		g, ok := font.Glyphs[r]
		if !ok {
			penX += fallbackAdvance(font)
			prev = r
			continue
		}
		if prev >= 0 {
			penX += font.Kerning[prev][r]
		}

		if g.W > 0 && g.H > 0 {
			dst = append(dst, core.Primitive{
				Kind:   core.PrimGlyph,
				Rect:   core.Rect{X: penX + g.BearingX, Y: baseY - g.BearingY, W: float32(g.W), H: float32(g.H)},
				Clip:   clip,
				Color:  color,
				UV:     [4]float32{g.U0, g.V0, g.U1, g.V1},
				Rune:   r,
				Origin: [2]float32{penX, baseY},
				Size:   font.SizePx,
			})
		}
		penX += g.Advance
		prev = r
	}
	return dst
}

// MeasureText returns the laid-out size of s. An empty string still has
// the height of one line.
func MeasureText(font *Font, s string) (width, height float32) {
	var lineW float32
	var prev rune = -1
	lineH := LineHeight(font)
	height = lineH

	for _, r := range s {
		if r == '\n' {
			width = max(width, lineW)
			lineW = 0
			height += lineH
			prev = -1
			continue
		}
		g, ok := font.Glyphs[r]
		if !ok {
			lineW += fallbackAdvance(font)
			prev = r
			continue
		}
		if prev >= 0 {
			lineW += font.Kerning[prev][r]
		}
		lineW += g.Advance
		prev = r
	}
	return max(width, lineW), height
}

// Advance is the pen advance of s on a single line, without newlines.
func Advance(font *Font, s string) float32 {
	w, _ := MeasureText(font, s)
	return w
}

func fallbackAdvance(font *Font) float32 {
	if sp, ok := font.Glyphs[' ']; ok {
		return sp.Advance
	}
	return font.SizePx * 0.5
}

// Baseline-to-top distance (useful to position text by top-left).
func BaselineToTop(font *Font) float32    { return font.Ascent }
func BaselineToBottom(font *Font) float32 { return -font.Descent }
func LineHeight(font *Font) float32       { return font.Ascent - font.Descent + font.LineGap }
