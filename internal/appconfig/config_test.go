package appconfig

import (
	"path/filepath"
	"testing"

	"github.com/hubastard/canopy/engine/core"
)

func TestDefaultConfigMatchesCore(t *testing.T) {
	cc, err := DefaultConfig().Core()
	if err != nil {
		t.Fatalf("core: %v", err)
	}
	want := core.DefaultConfig()
	if cc.Title != want.Title || cc.Width != want.Width || cc.Height != want.Height {
		t.Fatalf("window mismatch: got %+v want %+v", cc, want)
	}
	if cc.Scheduler != want.Scheduler {
		t.Fatalf("scheduler mismatch: got %+v want %+v", cc.Scheduler, want.Scheduler)
	}
	if cc.VSync != want.VSync || cc.Samples != want.Samples || cc.SRGB != want.SRGB {
		t.Fatalf("render mismatch: got %+v want %+v", cc, want)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path, err := DefaultConfigPath()
	if err != nil {
		t.Skipf("no user config dir: %v", err)
	}
	if filepath.Base(path) != "config.yaml" || filepath.Base(filepath.Dir(path)) != "canopy" {
		t.Fatalf("unexpected default path %s", path)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative samples", func(c *Config) { c.Window.Samples = -1 }},
		{"negative dpi", func(c *Config) { c.Render.DPIScale = -1 }},
		{"negative sleep", func(c *Config) { c.Scheduler.IdleSleepMS = -5 }},
		{"zero font", func(c *Config) { c.UI.FontSize = 0 }},
		{"bad color", func(c *Config) { c.Render.ClearColor = "#12" }},
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
