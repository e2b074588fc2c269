package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/1broseidon/ontop/internal/platform"
	"gopkg.in/yaml.v3"
)

// SizeConfig is a width/height pair in pixels.
type SizeConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Config is the effective ontop configuration.
type Config struct {
	OpenHotkey       string `yaml:"open_hotkey"`
	CloneHotkey      string `yaml:"clone_hotkey"`
	GroupCycleHotkey string `yaml:"group_cycle_hotkey"`

	// Seeker selects which windows are offered for cloning: "task" lists
	// windows that would appear in a taskbar, "all" lists every top-level
	// window, hidden ones included.
	Seeker string `yaml:"seeker"`

	// InitialRatio seeds the aspect ratio before any thumbnail is shown.
	// Zero derives it from InitialSize.
	InitialRatio float64    `yaml:"initial_ratio"`
	InitialSize  SizeConfig `yaml:"initial_size"`

	FixMargin       int           `yaml:"fix_margin"`
	ReassertTopMost bool          `yaml:"reassert_topmost"`
	RefreshFPS      int           `yaml:"refresh_fps"`
	WatchInterval   time.Duration `yaml:"watch_interval"`
	PaletteBackend  string        `yaml:"palette_backend"`
	LogLevel        string        `yaml:"log_level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		OpenHotkey:       "Control-Shift-o",
		CloneHotkey:      "Control-Shift-c",
		GroupCycleHotkey: "Control-Shift-g",
		Seeker:           "task",
		InitialSize:      SizeConfig{Width: 400, Height: 300},
		FixMargin:        10,
		ReassertTopMost:  true,
		RefreshFPS:       20,
		WatchInterval:    2 * time.Second,
		PaletteBackend:   "auto",
		LogLevel:         "info",
	}
}

// Ratio returns the configured initial aspect ratio, falling back to the
// initial size when no explicit ratio is set.
func (c *Config) Ratio() float64 {
	if c.InitialRatio > 0 {
		return c.InitialRatio
	}
	if c.InitialSize.Width > 0 && c.InitialSize.Height > 0 {
		return float64(c.InitialSize.Width) / float64(c.InitialSize.Height)
	}
	return 1
}

// HotKeys parses the configured bindings keyed by their config name. Empty
// bindings are disabled and omitted.
func (c *Config) HotKeys() (map[string]platform.HotKey, error) {
	out := make(map[string]platform.HotKey, 3)
	for _, b := range []struct {
		key   string
		value string
	}{
		{"open_hotkey", c.OpenHotkey},
		{"clone_hotkey", c.CloneHotkey},
		{"group_cycle_hotkey", c.GroupCycleHotkey},
	} {
		if strings.TrimSpace(b.value) == "" {
			continue
		}
		hk, err := platform.ParseHotKey(b.value)
		if err != nil {
			return nil, &ValidationError{Path: b.key, Err: err}
		}
		out[b.key] = hk
	}
	return out, nil
}

// Validate checks the configuration and returns a *ValidationError naming the
// first offending key.
func (c *Config) Validate() error {
	if _, err := c.HotKeys(); err != nil {
		return err
	}
	switch c.Seeker {
	case "task", "all":
	default:
		return &ValidationError{Path: "seeker", Err: fmt.Errorf("seeker must be one of: task, all")}
	}
	if c.InitialRatio < 0 || math.IsInf(c.InitialRatio, 0) || math.IsNaN(c.InitialRatio) {
		return &ValidationError{Path: "initial_ratio", Err: fmt.Errorf("initial_ratio must be a positive finite number or 0")}
	}
	if c.InitialSize.Width <= 0 || c.InitialSize.Height <= 0 {
		return &ValidationError{Path: "initial_size", Err: fmt.Errorf("initial_size width and height must be > 0")}
	}
	if c.FixMargin < 0 {
		return &ValidationError{Path: "fix_margin", Err: fmt.Errorf("fix_margin must be >= 0")}
	}
	if c.RefreshFPS < 1 || c.RefreshFPS > 120 {
		return &ValidationError{Path: "refresh_fps", Err: fmt.Errorf("refresh_fps must be between 1 and 120")}
	}
	if c.WatchInterval < 100*time.Millisecond {
		return &ValidationError{Path: "watch_interval", Err: fmt.Errorf("watch_interval must be >= 100ms")}
	}
	switch c.PaletteBackend {
	case "auto", "rofi", "fuzzel", "dmenu", "wofi":
	default:
		return &ValidationError{Path: "palette_backend", Err: fmt.Errorf("palette_backend must be one of: auto, rofi, fuzzel, dmenu, wofi")}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	return nil
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments
// from the original YAML.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
