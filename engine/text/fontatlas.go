package text

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/hubastard/canopy/engine/core"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type Glyph struct {
	Rune     rune
	Advance  float32 // pixels
	BearingX float32 // left bearing in pixels
	BearingY float32 // top bearing in pixels (distance from baseline to glyph top)
	W, H     int     // glyph bitmap size
	U0, V0   float32 // UVs in atlas
	U1, V1   float32
}

// Font is a rasterized face plus its glyph atlas.
type Font struct {
	SizePx                   float32
	Ascent, Descent, LineGap float32
	Glyphs                   map[rune]Glyph
	Kerning                  map[rune]map[rune]float32
	Atlas                    *core.Atlas
	face                     font.Face
}

func (f *Font) Close() {
	if f != nil && f.face != nil {
		_ = f.face.Close()
		f.face = nil
	}
}

// Default builds the Go Regular face at sizePx.
func Default(sizePx float32) (*Font, error) {
	return Load(goregular.TTF, sizePx)
}

// LoadFile reads a TTF/OTF file from disk.
func LoadFile(path string, sizePx float32) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	return Load(data, sizePx)
}

// atlasPadding separates glyphs so linear filtering never bleeds.
const atlasPadding = 2

// whiteSize is the opaque block at the atlas origin used for solid fills.
const whiteSize = 2

// Load builds a white glyph atlas (alpha coverage) for Latin-1.
func Load(ttf []byte, sizePx float32) (*Font, error) {
	ft, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size: float64(sizePx), DPI: 72, Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}

	m := face.Metrics()
	ascent := float32(m.Ascent.Round())
	descent := float32(-m.Descent.Round())
	lineGap := float32(m.Height.Round()) - ascent + descent

	type meas struct {
		r      rune
		w, h   int
		adv    float32
		bx, by float32
	}
	measure := make([]meas, 0, 224)
	for r := rune(32); r <= 255; r++ {
		br, adv, ok := face.GlyphBounds(r)
		if !ok {
			continue
		}
		measure = append(measure, meas{
			r:   r,
			w:   (br.Max.X - br.Min.X).Ceil(),
			h:   (br.Max.Y - br.Min.Y).Ceil(),
			adv: float32(adv.Round()),
			bx:  float32(br.Min.X.Floor()),
			by:  float32(-br.Min.Y.Floor()),
		})
	}

	// Shelf packer; the first shelf starts after the white block.
	atlasSize := 256
	var pos map[rune]image.Point
	for {
		x, y, rowH := whiteSize+atlasPadding*2, atlasPadding, whiteSize
		fits := true
		pos = make(map[rune]image.Point, len(measure))
		for _, g := range measure {
			if g.w == 0 || g.h == 0 {
				continue
			}
			if x+g.w+atlasPadding > atlasSize {
				x = atlasPadding
				y += rowH + atlasPadding
				rowH = 0
			}
			if g.w+atlasPadding*2 > atlasSize || y+g.h+atlasPadding > atlasSize {
				fits = false
				break
			}
			pos[g.r] = image.Pt(x, y)
			x += g.w + atlasPadding
			rowH = max(rowH, g.h)
		}
		if fits {
			break
		}
		atlasSize *= 2
		if atlasSize > 4096 {
			_ = face.Close()
			return nil, fmt.Errorf("font atlas too large (>%d)", 4096)
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, atlasSize, atlasSize))
	draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
	white := image.Rect(atlasPadding, atlasPadding, atlasPadding+whiteSize, atlasPadding+whiteSize)
	draw.Draw(dst, white, &image.Uniform{color.White}, image.Point{}, draw.Src)

	drawer := &font.Drawer{Dst: dst, Src: image.White, Face: face}
	glyphs := make(map[rune]Glyph, len(measure))
	for _, g := range measure {
		glyph := Glyph{Rune: g.r, Advance: g.adv, BearingX: g.bx, BearingY: g.by, W: g.w, H: g.h}
		if p, ok := pos[g.r]; ok {
			drawer.Dot = fixed.P(p.X-int(g.bx), p.Y+int(g.by))
			drawer.DrawString(string(g.r))
			size := float32(atlasSize)
			glyph.U0 = float32(p.X) / size
			glyph.V0 = float32(p.Y) / size
			glyph.U1 = float32(p.X+g.w) / size
			glyph.V1 = float32(p.Y+g.h) / size
		}
		glyphs[g.r] = glyph
	}

	kerning := make(map[rune]map[rune]float32)
	for _, a := range measure {
		for _, b := range measure {
			if dx := face.Kern(a.r, b.r); dx != 0 {
				if kerning[a.r] == nil {
					kerning[a.r] = make(map[rune]float32)
				}
				kerning[a.r][b.r] = float32(dx.Round())
			}
		}
	}

	center := (float32(atlasPadding) + whiteSize/2.0) / float32(atlasSize)
	return &Font{
		SizePx:  sizePx,
		Ascent:  ascent,
		Descent: descent,
		LineGap: lineGap,
		Glyphs:  glyphs,
		Kerning: kerning,
		Atlas: &core.Atlas{
			Width:   atlasSize,
			Height:  atlasSize,
			Pix:     dst.Pix,
			Version: 1,
			WhiteUV: [2]float32{center, center},
		},
		face: face,
	}, nil
}
