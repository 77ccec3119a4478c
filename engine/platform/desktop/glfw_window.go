package desktop

import (
	"fmt"
	"image"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/hubastard/canopy/engine/assets"
	"github.com/hubastard/canopy/engine/core"
	"github.com/hubastard/canopy/engine/platform"
	"pkt.systems/pslog"
)

// GLFWWindow implements core.Window on top of a GLFW window with an
// OpenGL 3.2 core context. Callbacks append to an in-memory queue that
// WaitEvent and PollEvent drain.
type GLFWWindow struct {
	w       *glfw.Window
	queue   platform.EventQueue
	cursors map[core.CursorIcon]*glfw.Cursor
}

var _ core.Window = (*GLFWWindow)(nil)

// NewGLFWWindow must be called on the main thread before any GL calls.
func NewGLFWWindow(cfg core.Config, logger pslog.Logger) (*GLFWWindow, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	// GL 3.2+ core profile (Mac requires forward-compatible flag).
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 2)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.DoubleBuffer, glfw.True)
	glfw.WindowHint(glfw.Samples, cfg.Samples)
	glfw.WindowHint(glfw.SRGBCapable, glfwBool(cfg.SRGB))
	glfw.WindowHint(glfw.Resizable, glfwBool(cfg.Resizable))

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	win.MakeContextCurrent()

	gw := &GLFWWindow{w: win, cursors: make(map[core.CursorIcon]*glfw.Cursor)}
	if cfg.Icon != "" {
		if img, err := assets.LoadImage(cfg.Icon); err != nil {
			logger.Warn("window icon not loaded", "path", cfg.Icon, "err", err)
		} else {
			win.SetIcon([]image.Image{img})
		}
	}
	gw.installCallbacks()
	return gw, nil
}

func (g *GLFWWindow) installCallbacks() {
	g.w.SetCloseCallback(func(w *glfw.Window) {
		// the pump decides when to exit
		w.SetShouldClose(false)
		g.queue.Push(core.EventQuit{})
	})
	g.w.SetSizeCallback(func(_ *glfw.Window, w, h int) {
		g.queue.Push(core.EventResize{W: w, H: h})
	})
	g.w.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		g.queue.Push(core.EventFramebufferResize{W: w, H: h})
	})
	g.w.SetContentScaleCallback(func(_ *glfw.Window, x, y float32) {
		g.queue.Push(core.EventScale{X: x, Y: y})
	})
	g.w.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		g.queue.Push(core.EventFocus{Focused: focused})
	})
	g.w.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		g.queue.Push(core.EventMouseMove{X: x, Y: y})
	})
	g.w.SetCursorEnterCallback(func(_ *glfw.Window, entered bool) {
		if !entered {
			g.queue.Push(core.EventMouseLeave{})
		}
	})
	g.w.SetMouseButtonCallback(func(_ *glfw.Window, b glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		btn, ok := translateMouseButton(b)
		if !ok {
			return
		}
		g.queue.Push(core.EventMouseButton{Button: btn, Down: action == glfw.Press, Mods: translateMods(mods)})
	})
	g.w.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		g.queue.Push(core.EventScroll{Xoff: xoff, Yoff: yoff})
	})
	g.w.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		g.queue.Push(core.EventKey{
			Key:    translateKey(key),
			Down:   action != glfw.Release,
			Repeat: action == glfw.Repeat,
			Mods:   translateMods(mods),
		})
	})
	g.w.SetCharCallback(func(_ *glfw.Window, r rune) {
		g.queue.Push(core.EventChar{Rune: r})
	})
}

// ===== core.Host =====

func (g *GLFWWindow) WindowSize() (int, int)      { return g.w.GetSize() }
func (g *GLFWWindow) FramebufferSize() (int, int) { return g.w.GetFramebufferSize() }

func (g *GLFWWindow) ContentScale() float32 {
	x, _ := g.w.GetContentScale()
	if x <= 0 {
		return 1
	}
	return x
}

func (g *GLFWWindow) Clipboard() (s string) {
	// GLFW reports an error when the clipboard holds no text.
	defer func() {
		if recover() != nil {
			s = ""
		}
	}()
	return g.w.GetClipboardString()
}

// ===== core.Window =====

func (g *GLFWWindow) WaitEvent(timeout time.Duration) (core.Event, bool) {
	if ev, ok := g.queue.Pop(); ok {
		return ev, true
	}
	glfw.WaitEventsTimeout(timeout.Seconds())
	return g.queue.Pop()
}

func (g *GLFWWindow) PollEvent() (core.Event, bool) {
	if ev, ok := g.queue.Pop(); ok {
		return ev, true
	}
	glfw.PollEvents()
	return g.queue.Pop()
}

func (g *GLFWWindow) SetSwapInterval(interval int) (err error) {
	defer recoverGLFW(&err)
	glfw.SwapInterval(interval)
	return nil
}

func (g *GLFWWindow) SwapBuffers() (err error) {
	defer recoverGLFW(&err)
	g.w.SwapBuffers()
	return nil
}

func (g *GLFWWindow) SetClipboard(text string) { g.w.SetClipboardString(text) }

func (g *GLFWWindow) SetCursor(icon core.CursorIcon) {
	if icon == core.CursorNone {
		g.w.SetInputMode(glfw.CursorMode, glfw.CursorHidden)
		return
	}
	g.w.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	c, ok := g.cursors[icon]
	if !ok {
		c = glfw.CreateStandardCursor(standardCursor(icon))
		g.cursors[icon] = c
	}
	g.w.SetCursor(c)
}

// SetSize refuses while the window is maximized or fullscreen.
func (g *GLFWWindow) SetSize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("window size %dx%d: %w", w, h, core.ErrResizeRefused)
	}
	if g.w.GetAttrib(glfw.Maximized) == glfw.True || g.w.GetMonitor() != nil {
		return core.ErrResizeRefused
	}
	g.w.SetSize(w, h)
	return nil
}

func (g *GLFWWindow) SetTitle(t string) { g.w.SetTitle(t) }

func (g *GLFWWindow) Close() {
	for _, c := range g.cursors {
		c.Destroy()
	}
	g.w.Destroy()
	glfw.Terminate()
}

// ===== translation =====

func recoverGLFW(err *error) {
	if r := recover(); r != nil {
		if e, ok := r.(error); ok {
			*err = e
			return
		}
		*err = fmt.Errorf("glfw: %v", r)
	}
}

func glfwBool(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

func standardCursor(icon core.CursorIcon) glfw.StandardCursor {
	switch icon {
	case core.CursorPointingHand:
		return glfw.HandCursor
	case core.CursorText:
		return glfw.IBeamCursor
	case core.CursorResizeHorizontal:
		return glfw.HResizeCursor
	case core.CursorResizeVertical:
		return glfw.VResizeCursor
	case core.CursorCrosshair:
		return glfw.CrosshairCursor
	default:
		return glfw.ArrowCursor
	}
}

func translateMouseButton(b glfw.MouseButton) (core.MouseButton, bool) {
	switch b {
	case glfw.MouseButtonLeft:
		return core.MouseLeft, true
	case glfw.MouseButtonRight:
		return core.MouseRight, true
	case glfw.MouseButtonMiddle:
		return core.MouseMiddle, true
	default:
		return 0, false
	}
}

func translateKey(k glfw.Key) core.Key {
	switch k {
	case glfw.KeyEscape:
		return core.KeyEscape
	case glfw.KeyEnter, glfw.KeyKPEnter:
		return core.KeyEnter
	case glfw.KeyTab:
		return core.KeyTab
	case glfw.KeyBackspace:
		return core.KeyBackspace
	case glfw.KeyDelete:
		return core.KeyDelete
	case glfw.KeyLeft:
		return core.KeyLeft
	case glfw.KeyRight:
		return core.KeyRight
	case glfw.KeyUp:
		return core.KeyUp
	case glfw.KeyDown:
		return core.KeyDown
	case glfw.KeyHome:
		return core.KeyHome
	case glfw.KeyEnd:
		return core.KeyEnd
	case glfw.KeySpace:
		return core.KeySpace
	case glfw.KeyA:
		return core.KeyA
	case glfw.KeyC:
		return core.KeyC
	case glfw.KeyP:
		return core.KeyP
	case glfw.KeyV:
		return core.KeyV
	case glfw.KeyX:
		return core.KeyX
	case glfw.KeyZ:
		return core.KeyZ
	default:
		return core.KeyUnknown
	}
}

func translateMods(m glfw.ModifierKey) core.Mod {
	var out core.Mod
	if m&glfw.ModShift != 0 {
		out |= core.ModShift
	}
	if m&glfw.ModControl != 0 {
		out |= core.ModCtrl
	}
	if m&glfw.ModAlt != 0 {
		out |= core.ModAlt
	}
	if m&glfw.ModSuper != 0 {
		out |= core.ModSuper
	}
	return out
}
