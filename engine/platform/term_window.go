package platform

import (
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/hubastard/canopy/engine/core"
)

// One terminal cell covers CellW x CellH points, so the UI lays out in the
// same units as on a desktop window.
const (
	CellW = 8
	CellH = 16
)

// TermWindow implements core.Window on a tcell screen. A poller goroutine
// forwards tcell events on a channel; translation happens on the pump
// thread.
type TermWindow struct {
	screen tcell.Screen
	events chan tcell.Event
	quit   chan struct{}
	queue  EventQueue
	tr     termTranslator

	clipboard string
	cursor    core.CursorIcon

	// Ctrl+V waits for the terminal to answer the clipboard read.
	pasteWanted bool
	pasting     bool
	paste       strings.Builder
}

var _ core.Window = (*TermWindow)(nil)

// NewTermWindow initializes screen and starts polling it.
func NewTermWindow(screen tcell.Screen, cfg core.Config) (*TermWindow, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	screen.EnableFocus()
	screen.EnablePaste()
	screen.HideCursor()
	screen.SetTitle(cfg.Title)
	screen.GetClipboard()

	t := &TermWindow{
		screen: screen,
		events: make(chan tcell.Event, 64),
		quit:   make(chan struct{}),
	}
	go screen.ChannelEvents(t.events, t.quit)
	return t, nil
}

// ===== core.Host =====

func (t *TermWindow) WindowSize() (int, int) {
	cols, rows := t.screen.Size()
	return cols * CellW, rows * CellH
}

func (t *TermWindow) FramebufferSize() (int, int) { return t.WindowSize() }
func (t *TermWindow) ContentScale() float32       { return 1 }
func (t *TermWindow) Clipboard() string           { return t.clipboard }

// ===== core.Window =====

func (t *TermWindow) WaitEvent(timeout time.Duration) (core.Event, bool) {
	if ev, ok := t.queue.Pop(); ok {
		return ev, true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ev, ok := <-t.events:
		if !ok {
			return core.EventQuit{}, true
		}
		t.accept(ev)
	case <-timer.C:
	}
	return t.queue.Pop()
}

func (t *TermWindow) PollEvent() (core.Event, bool) {
	for t.queue.Len() == 0 {
		select {
		case ev, ok := <-t.events:
			if !ok {
				return core.EventQuit{}, true
			}
			t.accept(ev)
		default:
			return nil, false
		}
	}
	return t.queue.Pop()
}

func (t *TermWindow) accept(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventClipboard:
		t.clipboard = string(e.Data())
		if t.pasteWanted {
			t.pasteWanted = false
			t.queue.Push(core.EventPaste{Text: t.clipboard})
		}
		return
	case *tcell.EventPaste:
		if e.Start() {
			t.pasting = true
			t.paste.Reset()
			return
		}
		t.pasting = false
		if t.paste.Len() > 0 {
			t.queue.Push(core.EventPaste{Text: t.paste.String()})
		}
		t.paste.Reset()
		return
	case *tcell.EventKey:
		if t.pasting {
			t.collectPaste(e)
			return
		}
		if e.Key() == tcell.KeyCtrlV {
			// the cached text may be stale; paste once the terminal replies
			t.pasteWanted = true
			t.screen.GetClipboard()
			return
		}
	}
	for _, out := range t.tr.translate(ev) {
		t.queue.Push(out)
	}
}

// collectPaste appends one key of a bracketed paste.
func (t *TermWindow) collectPaste(e *tcell.EventKey) {
	switch e.Key() {
	case tcell.KeyRune:
		t.paste.WriteRune(e.Rune())
	case tcell.KeyEnter, tcell.KeyCtrlJ:
		t.paste.WriteByte('\n')
	case tcell.KeyTab:
		t.paste.WriteByte('\t')
	}
}

// Terminals have no swap interval.
func (t *TermWindow) SetSwapInterval(int) error { return nil }

func (t *TermWindow) SwapBuffers() error {
	t.screen.Show()
	return nil
}

func (t *TermWindow) SetClipboard(text string) {
	t.clipboard = text
	t.screen.SetClipboard([]byte(text))
}

// SetCursor records the request; terminals draw no pointer shape.
func (t *TermWindow) SetCursor(icon core.CursorIcon) { t.cursor = icon }

// Cursor is the last cursor icon requested.
func (t *TermWindow) Cursor() core.CursorIcon { return t.cursor }

// SetSize always refuses: the terminal owns its size.
func (t *TermWindow) SetSize(int, int) error { return core.ErrResizeRefused }

func (t *TermWindow) SetTitle(title string) { t.screen.SetTitle(title) }

func (t *TermWindow) Close() {
	close(t.quit)
	t.screen.Fini()
}

// ===== translation =====

// termTranslator turns tcell events into native core events. Terminals
// report no key releases, so keys are delivered as presses only.
type termTranslator struct {
	buttons tcell.ButtonMask
	x, y    int
	seen    bool
}

func (tr *termTranslator) translate(ev tcell.Event) []core.Event {
	switch e := ev.(type) {
	case *tcell.EventResize:
		cols, rows := e.Size()
		w, h := cols*CellW, rows*CellH
		return []core.Event{core.EventResize{W: w, H: h}, core.EventFramebufferResize{W: w, H: h}}
	case *tcell.EventFocus:
		return []core.Event{core.EventFocus{Focused: e.Focused}}
	case *tcell.EventKey:
		return translateTermKey(e)
	case *tcell.EventMouse:
		return tr.mouse(e)
	}
	return nil
}

func (tr *termTranslator) mouse(e *tcell.EventMouse) []core.Event {
	var out []core.Event
	x, y := e.Position()
	mods := translateTermMods(e.Modifiers())
	if !tr.seen || x != tr.x || y != tr.y {
		tr.x, tr.y, tr.seen = x, y, true
		out = append(out, core.EventMouseMove{X: float64(x*CellW + CellW/2), Y: float64(y*CellH + CellH/2)})
	}

	btns := e.Buttons()
	for _, b := range []struct {
		mask tcell.ButtonMask
		btn  core.MouseButton
	}{
		{tcell.Button1, core.MouseLeft},
		{tcell.Button2, core.MouseRight},
		{tcell.Button3, core.MouseMiddle},
	} {
		was, is := tr.buttons&b.mask != 0, btns&b.mask != 0
		if was != is {
			out = append(out, core.EventMouseButton{Button: b.btn, Down: is, Mods: mods})
		}
	}
	tr.buttons = btns & (tcell.Button1 | tcell.Button2 | tcell.Button3)

	switch {
	case btns&tcell.WheelUp != 0:
		out = append(out, core.EventScroll{Yoff: 1})
	case btns&tcell.WheelDown != 0:
		out = append(out, core.EventScroll{Yoff: -1})
	case btns&tcell.WheelLeft != 0:
		out = append(out, core.EventScroll{Xoff: -1})
	case btns&tcell.WheelRight != 0:
		out = append(out, core.EventScroll{Xoff: 1})
	}
	return out
}

func translateTermKey(e *tcell.EventKey) []core.Event {
	mods := translateTermMods(e.Modifiers())
	press := func(k core.Key, m core.Mod) []core.Event {
		return []core.Event{core.EventKey{Key: k, Down: true, Mods: m}}
	}
	switch e.Key() {
	case tcell.KeyRune:
		// the key press carries the modifier state for the char that follows
		r := e.Rune()
		return []core.Event{core.EventKey{Key: runeKey(r), Down: true, Mods: mods}, core.EventChar{Rune: r}}
	case tcell.KeyCtrlQ:
		return []core.Event{core.EventQuit{}}
	case tcell.KeyCtrlC:
		return press(core.KeyC, mods|core.ModCtrl)
	case tcell.KeyCtrlX:
		return press(core.KeyX, mods|core.ModCtrl)
	case tcell.KeyCtrlV:
		return press(core.KeyV, mods|core.ModCtrl)
	case tcell.KeyCtrlZ:
		return press(core.KeyZ, mods|core.ModCtrl)
	case tcell.KeyCtrlA:
		return press(core.KeyA, mods|core.ModCtrl)
	case tcell.KeyCtrlP:
		return press(core.KeyP, mods|core.ModCtrl)
	case tcell.KeyEnter:
		return press(core.KeyEnter, mods)
	case tcell.KeyTab:
		return press(core.KeyTab, mods)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return press(core.KeyBackspace, mods)
	case tcell.KeyDelete:
		return press(core.KeyDelete, mods)
	case tcell.KeyEsc:
		return press(core.KeyEscape, mods)
	case tcell.KeyLeft:
		return press(core.KeyLeft, mods)
	case tcell.KeyRight:
		return press(core.KeyRight, mods)
	case tcell.KeyUp:
		return press(core.KeyUp, mods)
	case tcell.KeyDown:
		return press(core.KeyDown, mods)
	case tcell.KeyHome:
		return press(core.KeyHome, mods)
	case tcell.KeyEnd:
		return press(core.KeyEnd, mods)
	}
	return nil
}

func runeKey(r rune) core.Key {
	switch r {
	case ' ':
		return core.KeySpace
	case 'a', 'A':
		return core.KeyA
	case 'c', 'C':
		return core.KeyC
	case 'p', 'P':
		return core.KeyP
	case 'v', 'V':
		return core.KeyV
	case 'x', 'X':
		return core.KeyX
	case 'z', 'Z':
		return core.KeyZ
	}
	return core.KeyUnknown
}

func translateTermMods(m tcell.ModMask) core.Mod {
	var out core.Mod
	if m&tcell.ModShift != 0 {
		out |= core.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= core.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= core.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		out |= core.ModSuper
	}
	return out
}
