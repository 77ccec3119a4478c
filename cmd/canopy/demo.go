package main

import (
	"github.com/hubastard/canopy/engine/core"
	"github.com/hubastard/canopy/engine/ui"
)

const demoText = "A text box to write in. Cut, copy, paste commands are available."

// Demo is the single-panel example app: a text box, a slider, the vsync
// checkbox and a quit button.
type Demo struct {
	ui     *ui.Ctx
	layers []core.Layer

	Text  string
	Value float32
}

func NewDemo(ctx *ui.Ctx, layers ...core.Layer) *Demo {
	return &Demo{ui: ctx, layers: layers, Text: demoText}
}

func (d *Demo) OnStart(e *core.Engine) {
	for _, l := range d.layers {
		e.PushLayer(l)
	}
}

func (d *Demo) OnUI(e *core.Engine, f *core.Frame) {
	c := d.ui
	c.BeginPanel()
	c.Label(" ")
	c.TextEditMultiline("notes", &d.Text)
	c.Label(" ")
	c.Slider("value", &d.Value, 0, 50)
	c.Label(" ")
	c.Checkbox("Reduce CPU Usage?", f.VSyncRef())
	c.Separator()
	if c.Button("Quit?") {
		f.RequestQuit()
	}
	c.EndPanel()
}

func (d *Demo) OnEvent(e *core.Engine, ev core.Event) {}
func (d *Demo) OnShutdown(e *core.Engine)             {}
