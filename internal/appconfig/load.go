package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from the provided path. If path is empty, uses DefaultConfigPath.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("window.title", cfg.Window.Title)
	v.SetDefault("window.width", cfg.Window.Width)
	v.SetDefault("window.height", cfg.Window.Height)
	v.SetDefault("window.resizable", cfg.Window.Resizable)
	v.SetDefault("window.samples", cfg.Window.Samples)
	v.SetDefault("window.srgb", cfg.Window.SRGB)
	v.SetDefault("window.icon", cfg.Window.Icon)
	v.SetDefault("render.vsync", cfg.Render.VSync)
	v.SetDefault("render.clear_color", cfg.Render.ClearColor)
	v.SetDefault("render.dpi_scale", cfg.Render.DPIScale)
	v.SetDefault("scheduler.idle_sleep_ms", cfg.Scheduler.IdleSleepMS)
	v.SetDefault("scheduler.wait_timeout_ms", cfg.Scheduler.WaitTimeoutMS)
	v.SetDefault("ui.font_size", cfg.UI.FontSize)
	v.SetDefault("profiler.capacity", cfg.Profiler.Capacity)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	// config_version has no default, so IsSet reports only the file.
	if configLoaded {
		if !v.IsSet("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WriteDefault writes the default config to the provided path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}
	data, err := Marshal(DefaultConfig())
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// Marshal renders cfg as YAML in the file layout Load reads.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
