package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/hubastard/canopy/engine/core"
	glbackend "github.com/hubastard/canopy/engine/gfx/gl"
	"github.com/hubastard/canopy/engine/gfx/soft"
	"github.com/hubastard/canopy/engine/gfx/term"
	"github.com/hubastard/canopy/engine/platform"
	"github.com/hubastard/canopy/engine/platform/desktop"
	"github.com/hubastard/canopy/engine/profiler"
	"github.com/hubastard/canopy/engine/text"
	"github.com/hubastard/canopy/engine/ui"
	"github.com/hubastard/canopy/internal/appconfig"
	"pkt.systems/pslog"
)

// session is everything a front-end needs to start the pump.
type session struct {
	cfg   core.Config
	font  *text.Font
	ui    *ui.Ctx
	stats *StatsLayer
	app   *Demo
}

func (s *session) Close() { s.font.Close() }

// newSession loads the config and builds the UI layer and demo app.
// fontSize overrides the configured size when positive.
func newSession(flags *rootFlags, fontSize float32, logger pslog.Logger) (*session, error) {
	fileCfg, err := appconfig.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := fileCfg.Core()
	if err != nil {
		return nil, err
	}
	profiler.Init(fileCfg.Profiler.Capacity)

	if fontSize <= 0 {
		fontSize = fileCfg.UI.FontSize
	}
	font, err := text.Default(fontSize)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, font: font}
	s.ui = ui.New(font, ui.DefaultStyle())
	var layers []core.Layer
	if flags.stats {
		s.stats = NewStatsLayer(s.ui, logger)
		layers = append(layers, s.stats)
	}
	s.app = NewDemo(s.ui, layers...)
	return s, nil
}

func (s *session) run(ctx context.Context, p core.Platform) error {
	p.UI = s.ui
	return core.Run(ctx, s.app, s.cfg, p)
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	var vsync bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the demo in a desktop window (OpenGL)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := pslog.Ctx(ctx)
			s, err := newSession(flags, 0, logger)
			if err != nil {
				return err
			}
			defer s.Close()
			if cmd.Flags().Changed("vsync") {
				s.cfg.VSync = vsync
			}

			return s.run(ctx, core.Platform{
				NewWindow: func(cfg core.Config) (core.Window, error) {
					win, err := desktop.NewGLFWWindow(cfg, logger)
					if err != nil {
						return nil, err
					}
					return win, nil
				},
				NewRenderer: func(win core.Window, cfg core.Config) (core.Renderer, error) {
					r, err := glbackend.NewRendererGL(win, cfg)
					if err != nil {
						return nil, err
					}
					info := r.Info()
					logger.Debug("gpu", "vendor", info.Vendor, "renderer", info.Renderer, "version", info.Version, "glsl", info.GLSL)
					if s.stats != nil {
						s.stats.SetBackend("GPU", info.Vendor, info.Renderer, info.Version)
					}
					return r, nil
				},
			})
		},
	}
	cmd.Flags().BoolVar(&vsync, "vsync", false, "start with vsync on")
	return cmd
}

func newTermCmd(flags *rootFlags) *cobra.Command {
	var logFile string
	cmd := &cobra.Command{
		Use:   "term",
		Short: "Run the demo in the terminal (Ctrl+Q quits)",
		RunE: func(cmd *cobra.Command, args []string) error {
			// the screen owns the tty; logs go to a file or nowhere
			var w io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			logger := pslog.NewWithOptions(w, pslog.Options{Mode: pslog.ModeConsole, NoColor: true, MinLevel: pslog.InfoLevel})
			ctx := pslog.ContextWithLogger(cmd.Context(), logger)

			s, err := newSession(flags, platform.CellH-3, logger)
			if err != nil {
				return err
			}
			defer s.Close()
			if s.stats != nil {
				s.stats.SetBackend("Terminal", os.Getenv("TERM"))
			}

			var screen tcell.Screen
			return s.run(ctx, core.Platform{
				NewWindow: func(cfg core.Config) (core.Window, error) {
					var err error
					screen, err = tcell.NewScreen()
					if err != nil {
						return nil, err
					}
					win, err := platform.NewTermWindow(screen, cfg)
					if err != nil {
						return nil, err
					}
					return win, nil
				},
				NewRenderer: func(core.Window, core.Config) (core.Renderer, error) {
					return term.New(screen, platform.CellW, platform.CellH), nil
				},
			})
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file")
	return cmd
}

func newSnapshotCmd(flags *rootFlags) *cobra.Command {
	var out string
	var frames int
	var scale float32
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render frames offscreen and write the last one as PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			if frames < 1 {
				return fmt.Errorf("--frames must be at least 1")
			}
			s, err := newSession(flags, 0, pslog.Ctx(cmd.Context()))
			if err != nil {
				return err
			}
			defer s.Close()

			shot := &snapshotLayer{path: out}
			s.app.layers = append(s.app.layers, shot)
			err = s.run(cmd.Context(), core.Platform{
				NewWindow: func(cfg core.Config) (core.Window, error) {
					win := platform.NewHeadless(cfg, scale)
					win.QuitAfter(frames)
					return win, nil
				},
				NewRenderer: func(win core.Window, cfg core.Config) (core.Renderer, error) {
					r, err := soft.New(win.FramebufferSize())
					if err != nil {
						return nil, err
					}
					return r, nil
				},
			})
			if err != nil {
				return err
			}
			if shot.err != nil {
				return shot.err
			}
			pslog.Ctx(cmd.Context()).Info("snapshot wrote", "path", out, "frames", frames)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "canopy.png", "PNG output path")
	cmd.Flags().IntVar(&frames, "frames", 2, "frames to present before writing")
	cmd.Flags().Float32Var(&scale, "scale", 1, "content scale of the offscreen window")
	return cmd
}

// snapshotLayer writes the software framebuffer when the pump detaches
// layers, which happens before the renderer shuts down.
type snapshotLayer struct {
	path string
	err  error
}

func (l *snapshotLayer) OnAttach(e *core.Engine)            {}
func (l *snapshotLayer) OnUI(e *core.Engine, f *core.Frame) {}
func (l *snapshotLayer) OnEvent(e *core.Engine, ev core.Event) bool {
	return false
}

func (l *snapshotLayer) OnDetach(e *core.Engine) {
	r, ok := e.Renderer.(*soft.Renderer)
	if !ok {
		l.err = fmt.Errorf("snapshot needs the software renderer, got %T", e.Renderer)
		return
	}
	l.err = r.SavePNG(l.path)
}
