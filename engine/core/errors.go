package core

import (
	"errors"
	"fmt"
)

var (
	// ErrUIUsage marks BeginFrame/EndFrame misuse reported by the UI layer.
	ErrUIUsage = errors.New("ui usage error")
	// ErrResizeRefused is returned by Window.SetSize when the window
	// cannot be resized programmatically right now (e.g. mid-drag).
	ErrResizeRefused = errors.New("resize refused")
)

// SetupError is a fatal failure before the first frame: window, context
// or renderer creation. There is no retry.
type SetupError struct {
	Stage string
	Err   error
}

func (e *SetupError) Error() string { return fmt.Sprintf("setup %s: %v", e.Stage, e.Err) }
func (e *SetupError) Unwrap() error { return e.Err }

// PresentationError is a fatal per-frame failure: swap interval, paint or
// swap. Continuing would render into an undefined GPU state.
type PresentationError struct {
	Op  string
	Err error
}

func (e *PresentationError) Error() string { return fmt.Sprintf("present %s: %v", e.Op, e.Err) }
func (e *PresentationError) Unwrap() error { return e.Err }
