package ui

import (
	"strconv"

	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/core"
	"github.com/hubastard/canopy/engine/text"
)

// ===== Label =====

func (c *Ctx) Label(s string) {
	c.LabelColored(s, c.style.TextColor)
}

func (c *Ctx) LabelColored(s string, col colors.Color) {
	if !c.inFrame {
		return
	}
	w, h := c.measure(s)
	r := c.allocate(w, h)
	c.drawText(r.X, r.Y, s, col)
}

// ===== Button =====

// Button draws a push button and reports whether it was clicked this frame.
func (c *Ctx) Button(label string) bool {
	if !c.inFrame {
		return false
	}
	pad := c.style.ButtonPad
	tw, th := c.measure(label)
	r := c.allocate(tw+pad.L+pad.R, th+pad.T+pad.B)

	resp := c.interact(c.id("button", label), r)
	if resp.hovered {
		c.cursor = core.CursorPointingHand
	}
	c.fillRect(r, c.widgetBg(resp))
	c.drawText(r.X+(r.W-tw)*0.5, r.Y+(r.H-th)*0.5, label, c.style.TextColor)
	return resp.clicked
}

// ===== Checkbox =====

// Checkbox toggles *v on click and reports whether it changed.
func (c *Ctx) Checkbox(label string, v *bool) bool {
	if !c.inFrame {
		return false
	}
	tw, th := c.measure(label)
	box := th
	gap := c.style.Spacing * 0.5
	r := c.allocate(box+gap+tw, th)

	resp := c.interact(c.id("checkbox", label), r)
	if resp.hovered {
		c.cursor = core.CursorPointingHand
	}
	changed := false
	if resp.clicked {
		*v = !*v
		changed = true
	}

	boxR := core.Rect{X: r.X, Y: r.Y, W: box, H: box}
	c.fillRect(boxR, c.widgetBg(resp))
	if *v {
		inset := box * 0.25
		c.fillRect(core.Rect{X: boxR.X + inset, Y: boxR.Y + inset, W: box - 2*inset, H: box - 2*inset}, c.style.Accent)
	}
	c.drawText(r.X+box+gap, r.Y, label, c.style.TextColor)
	return changed
}

// ===== Slider =====

const sliderWidth = 160

// Slider drags *v across [lo, hi] and reports whether it changed. The
// current value and label are drawn to the right of the track.
func (c *Ctx) Slider(label string, v *float32, lo, hi float32) bool {
	if !c.inFrame {
		return false
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	valueText := strconv.FormatFloat(float64(*v), 'f', 1, 32)
	caption := valueText + "  " + label
	tw, th := c.measure(caption)
	gap := c.style.Spacing
	trackW := min(float32(sliderWidth), max(0, c.AvailableWidth()-tw-gap))
	r := c.allocate(trackW+gap+tw, th)
	track := core.Rect{X: r.X, Y: r.Y, W: trackW, H: th}

	resp := c.interact(c.id("slider", label), track)
	if resp.hovered || resp.dragging {
		c.cursor = core.CursorResizeHorizontal
	}
	changed := false
	if (resp.pressed || resp.dragging) && track.W > 0 {
		t := clamp01((c.mouseX - track.X) / track.W)
		nv := lo + t*(hi-lo)
		if nv != *v {
			*v = nv
			changed = true
		}
	}
	if *v < lo {
		*v = lo
	} else if *v > hi {
		*v = hi
	}

	rail := core.Rect{X: track.X, Y: track.Y + th*0.4, W: track.W, H: th * 0.2}
	c.fillRect(rail, c.style.WidgetBg)
	var t float32
	if hi > lo {
		t = (*v - lo) / (hi - lo)
	}
	knob := th * 0.6
	kx := track.X + t*(track.W-knob)
	c.fillRect(core.Rect{X: kx, Y: track.Y + (th-knob)*0.5, W: knob, H: knob}, c.knobColor(resp))
	if changed {
		valueText = strconv.FormatFloat(float64(*v), 'f', 1, 32)
		caption = valueText + "  " + label
	}
	c.drawText(track.X+track.W+gap, r.Y, caption, c.style.TextColor)
	return changed
}

// ===== Separator / Space =====

func (c *Ctx) Separator() {
	if !c.inFrame {
		return
	}
	h := c.style.Spacing
	r := c.allocate(c.AvailableWidth(), h)
	c.fillRect(core.Rect{X: r.X, Y: r.Y + h*0.5, W: r.W, H: 1}, colors.Gray)
}

func (c *Ctx) Space(h float32) {
	if !c.inFrame {
		return
	}
	c.allocate(0, h)
}

// ===== Internal =====

func (c *Ctx) widgetBg(resp response) colors.Color {
	switch {
	case resp.pressed || resp.dragging:
		return c.style.WidgetActive
	case resp.hovered:
		return c.style.WidgetHot
	}
	return c.style.WidgetBg
}

func (c *Ctx) knobColor(resp response) colors.Color {
	if resp.dragging {
		return c.style.Accent.Scale(1.15)
	}
	if resp.hovered {
		return c.style.Accent.Scale(1.05)
	}
	return c.style.Accent
}

func clamp01(v float32) float32 {
	return max(0, min(1, v))
}

// lineHeight of the context font.
func (c *Ctx) lineHeight() float32 { return text.LineHeight(c.font) }
