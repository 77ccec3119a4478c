package ui

import (
	"strings"
	"unicode/utf8"

	"github.com/hubastard/canopy/engine/core"
	"github.com/hubastard/canopy/engine/text"
)

const textEditPad = 4

// TextEditMultiline edits *buf in a wrapping text box and reports whether
// the buffer changed. Clicking the box focuses it; clicking anywhere else
// or pressing Escape drops focus. Copy and cut act on the whole buffer.
func (c *Ctx) TextEditMultiline(id string, buf *string) bool {
	if !c.inFrame {
		return false
	}
	wid := c.id("textedit", id)
	focused := c.focus == wid

	changed := false
	if focused {
		changed = c.editBuffer(buf, &focused)
	}

	width := c.AvailableWidth()
	lineH := c.lineHeight()
	lines := wrapText(c.font, *buf, max(0, width-2*textEditPad))
	rows := max(len(lines), c.style.TextEditRows)
	r := c.allocate(width, float32(rows)*lineH+2*textEditPad)

	resp := c.interact(wid, r)
	if resp.hovered {
		c.cursor = core.CursorText
	}
	if resp.pressed {
		c.focus = wid
		focused = true
	}
	if !focused && c.focus == wid {
		c.focus = 0
	}

	if focused {
		c.fillRect(r, c.style.Accent)
		c.fillRect(core.Rect{X: r.X + 1, Y: r.Y + 1, W: r.W - 2, H: r.H - 2}, c.style.WidgetActive)
	} else {
		c.fillRect(r, c.style.WidgetActive)
	}

	inner := core.Rect{X: r.X + textEditPad, Y: r.Y + textEditPad, W: r.W - 2*textEditPad, H: r.H - 2*textEditPad}
	clip := c.clipRect().Intersect(inner)
	for i, ln := range lines {
		if ln == "" {
			continue
		}
		c.draw.Shapes = append(c.draw.Shapes, Shape{
			Kind:  ShapeText,
			Rect:  core.Rect{X: inner.X, Y: inner.Y + float32(i)*lineH},
			Clip:  clip,
			Color: c.style.TextColor,
			Text:  ln,
		})
	}
	if focused {
		last := len(lines) - 1
		cx := inner.X + text.Advance(c.font, lines[last])
		cy := inner.Y + float32(last)*lineH
		c.draw.Shapes = append(c.draw.Shapes, Shape{
			Kind:  ShapeRect,
			Rect:  core.Rect{X: cx, Y: cy, W: 1, H: lineH},
			Clip:  c.clipRect(),
			Color: c.style.TextColor,
		})
	}
	return changed
}

// editBuffer applies the frame's typed events to buf in arrival order.
func (c *Ctx) editBuffer(buf *string, focused *bool) bool {
	before := *buf
	for _, ev := range c.typed {
		if !*focused {
			break
		}
		switch e := ev.(type) {
		case core.Text:
			*buf += e.Text
		case core.Paste:
			*buf += strings.ReplaceAll(e.Text, "\r\n", "\n")
		case core.Copy:
			c.copied = *buf
		case core.Cut:
			c.copied = *buf
			*buf = ""
		case core.KeyInput:
			if !e.Pressed {
				continue
			}
			switch e.Key {
			case core.KeyBackspace:
				if _, size := utf8.DecodeLastRuneInString(*buf); size > 0 {
					*buf = (*buf)[:len(*buf)-size]
				}
			case core.KeyEnter:
				*buf += "\n"
			case core.KeyTab:
				*buf += "    "
			case core.KeyEscape:
				*focused = false
			}
		}
	}
	return *buf != before
}

// wrapText breaks s into lines no wider than width. Explicit newlines are
// kept; words longer than a line are split between runes. The result always
// has at least one line.
func wrapText(font *text.Font, s string, width float32) []string {
	var out []string
	for _, para := range strings.Split(s, "\n") {
		out = wrapParagraph(out, font, para, width)
	}
	return out
}

func wrapParagraph(out []string, font *text.Font, para string, width float32) []string {
	if para == "" || width <= 0 || text.Advance(font, para) <= width {
		return append(out, para)
	}
	var line strings.Builder
	for _, word := range splitKeepSpaces(para) {
		cand := line.String() + word
		if text.Advance(font, cand) <= width {
			line.WriteString(word)
			continue
		}
		if line.Len() > 0 {
			out = append(out, line.String())
			line.Reset()
			word = strings.TrimLeft(word, " ")
		}
		for text.Advance(font, word) > width {
			n := fitRunes(font, word, width)
			out = append(out, word[:n])
			word = word[n:]
		}
		line.WriteString(word)
	}
	return append(out, line.String())
}

// splitKeepSpaces splits before every space run so that joining the parts
// gives back the input.
func splitKeepSpaces(s string) []string {
	var parts []string
	start := 0
	for i := 1; i < len(s); i++ {
		if s[i] == ' ' && s[i-1] != ' ' {
			parts = append(parts, s[start:i])
			start = i
		}
	}
	return append(parts, s[start:])
}

// fitRunes returns the byte length of the longest prefix of s that fits,
// never less than one rune.
func fitRunes(font *text.Font, s string, width float32) int {
	n := 0
	for i, r := range s {
		end := i + utf8.RuneLen(r)
		if n > 0 && text.Advance(font, s[:end]) > width {
			break
		}
		n = end
	}
	return n
}
