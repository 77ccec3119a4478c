package core

import (
	"errors"

	"pkt.systems/pslog"
)

// CursorIcon is a cursor shape request.
type CursorIcon int

const (
	CursorUnset CursorIcon = iota // no request this frame
	CursorDefault
	CursorPointingHand
	CursorText
	CursorResizeHorizontal
	CursorResizeVertical
	CursorCrosshair
	CursorNone
)

type Size struct{ W, H int }

// Output is what the UI layer reports at the end of a frame.
type Output struct {
	NeedsRepaint bool
	CopiedText   string     // empty means no clipboard write
	Cursor       CursorIcon // CursorUnset leaves the cursor alone
	Resize       *Size      // advisory window size request, screen coordinates
}

// OutputApplicator applies the native side effects of an Output.
// It is called exactly once per frame.
type OutputApplicator struct {
	win    Window
	log    pslog.Logger
	cursor CursorIcon
}

func NewOutputApplicator(win Window, log pslog.Logger) *OutputApplicator {
	return &OutputApplicator{win: win, log: log, cursor: CursorUnset}
}

func (a *OutputApplicator) Apply(out Output) {
	if out.CopiedText != "" {
		a.win.SetClipboard(out.CopiedText)
	}
	if out.Cursor != CursorUnset && out.Cursor != a.cursor {
		a.win.SetCursor(out.Cursor)
		a.cursor = out.Cursor
	}
	if out.Resize != nil {
		if err := a.win.SetSize(out.Resize.W, out.Resize.H); err != nil {
			log := a.log.With("width", out.Resize.W, "height", out.Resize.H)
			if errors.Is(err, ErrResizeRefused) {
				log.Warn("window resize deferred", "err", err)
			} else {
				log.Warn("window resize failed", "err", err)
			}
		}
	}
}

// Cursor is the last cursor icon sent to the window.
func (a *OutputApplicator) Cursor() CursorIcon { return a.cursor }
