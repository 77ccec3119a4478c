package appconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/core"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int             `mapstructure:"config_version" yaml:"config_version"`
	Window        WindowConfig    `mapstructure:"window" yaml:"window"`
	Render        RenderConfig    `mapstructure:"render" yaml:"render"`
	Scheduler     SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
	UI            UIConfig        `mapstructure:"ui" yaml:"ui"`
	Profiler      ProfilerConfig  `mapstructure:"profiler" yaml:"profiler"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// WindowConfig describes the native window created at startup.
type WindowConfig struct {
	Title     string `mapstructure:"title" yaml:"title"`
	Width     int    `mapstructure:"width" yaml:"width"`
	Height    int    `mapstructure:"height" yaml:"height"`
	Resizable bool   `mapstructure:"resizable" yaml:"resizable"`
	Samples   int    `mapstructure:"samples" yaml:"samples"`
	SRGB      bool   `mapstructure:"srgb" yaml:"srgb"`
	Icon      string `mapstructure:"icon" yaml:"icon"`
}

// RenderConfig holds the presentation defaults.
type RenderConfig struct {
	VSync      bool    `mapstructure:"vsync" yaml:"vsync"`
	ClearColor string  `mapstructure:"clear_color" yaml:"clear_color"`
	DPIScale   float32 `mapstructure:"dpi_scale" yaml:"dpi_scale"`
}

// SchedulerConfig tunes the idle wait.
type SchedulerConfig struct {
	IdleSleepMS   int `mapstructure:"idle_sleep_ms" yaml:"idle_sleep_ms"`
	WaitTimeoutMS int `mapstructure:"wait_timeout_ms" yaml:"wait_timeout_ms"`
}

type UIConfig struct {
	FontSize float32 `mapstructure:"font_size" yaml:"font_size"`
}

// ProfilerConfig sizes the scope ring buffer of profiling builds.
type ProfilerConfig struct {
	Capacity int `mapstructure:"capacity" yaml:"capacity"`
}

// DefaultConfig returns a config matching core.DefaultConfig.
func DefaultConfig() Config {
	base := core.DefaultConfig()
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Window: WindowConfig{
			Title:     base.Title,
			Width:     base.Width,
			Height:    base.Height,
			Resizable: base.Resizable,
			Samples:   base.Samples,
			SRGB:      base.SRGB,
			Icon:      base.Icon,
		},
		Render: RenderConfig{
			VSync:      base.VSync,
			ClearColor: base.ClearColor.Hex(),
			DPIScale:   base.DPIScale,
		},
		Scheduler: SchedulerConfig{
			IdleSleepMS:   int(base.Scheduler.IdleSleep / time.Millisecond),
			WaitTimeoutMS: int(base.Scheduler.WaitTimeout / time.Millisecond),
		},
		UI: UIConfig{
			FontSize: 18,
		},
		Profiler: ProfilerConfig{
			Capacity: 1 << 16,
		},
	}
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "canopy", "config.yaml"), nil
}

// Core converts the file settings into the pump's startup parameters.
func (c Config) Core() (core.Config, error) {
	clear, err := colors.ParseHex(c.Render.ClearColor)
	if err != nil {
		return core.Config{}, fmt.Errorf("render.clear_color: %w", err)
	}
	return core.Config{
		Title:      c.Window.Title,
		Width:      c.Window.Width,
		Height:     c.Window.Height,
		Resizable:  c.Window.Resizable,
		Samples:    c.Window.Samples,
		SRGB:       c.Window.SRGB,
		Icon:       c.Window.Icon,
		VSync:      c.Render.VSync,
		ClearColor: clear,
		DPIScale:   c.Render.DPIScale,
		Scheduler: core.SchedulerConfig{
			IdleSleep:   time.Duration(c.Scheduler.IdleSleepMS) * time.Millisecond,
			WaitTimeout: time.Duration(c.Scheduler.WaitTimeoutMS) * time.Millisecond,
		},
	}, nil
}

// Validate reports the first setting the pump cannot start with.
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	case c.Window.Samples < 0:
		return fmt.Errorf("window.samples must not be negative")
	case c.Render.DPIScale < 0:
		return fmt.Errorf("render.dpi_scale must not be negative")
	case c.Scheduler.IdleSleepMS < 0 || c.Scheduler.WaitTimeoutMS < 0:
		return fmt.Errorf("scheduler durations must not be negative")
	case c.UI.FontSize <= 0:
		return fmt.Errorf("ui.font_size must be positive")
	}
	if _, err := colors.ParseHex(c.Render.ClearColor); err != nil {
		return fmt.Errorf("render.clear_color: %w", err)
	}
	return nil
}
