package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	hks, err := cfg.HotKeys()
	if err != nil {
		t.Fatalf("hotkeys: %v", err)
	}
	if len(hks) != 3 {
		t.Fatalf("expected 3 default hot keys, got %d", len(hks))
	}
	if got := hks["clone_hotkey"].String(); got != "Control-Shift-c" {
		t.Fatalf("clone hot key = %q", got)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Exists {
		t.Fatalf("expected Exists=false")
	}
	if res.Config.FixMargin != 10 || res.Config.RefreshFPS != 20 {
		t.Fatalf("unexpected defaults: %+v", res.Config)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !res.Exists {
		t.Fatalf("expected Exists=true")
	}
	if res.Config.Seeker != "task" {
		t.Fatalf("expected seeker task, got %q", res.Config.Seeker)
	}
}

func TestLoadFromPath_Overrides(t *testing.T) {
	path := writeConfig(t, `
seeker: all
initial_ratio: 1.7777
fix_margin: 4
reassert_topmost: false
watch_interval: 500ms
group_cycle_hotkey: ""
`)
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Seeker != "all" || cfg.FixMargin != 4 || cfg.ReassertTopMost {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.WatchInterval != 500*time.Millisecond {
		t.Fatalf("watch_interval = %v", cfg.WatchInterval)
	}
	if cfg.Ratio() != 1.7777 {
		t.Fatalf("ratio = %v", cfg.Ratio())
	}
	hks, err := cfg.HotKeys()
	if err != nil {
		t.Fatalf("hotkeys: %v", err)
	}
	if _, ok := hks["group_cycle_hotkey"]; ok {
		t.Fatalf("expected empty group_cycle_hotkey to be disabled")
	}
	if cfg.OpenHotkey != "Control-Shift-o" {
		t.Fatalf("unset key lost its default: %q", cfg.OpenHotkey)
	}
}

func TestRatio_FromInitialSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialSize = SizeConfig{Width: 640, Height: 480}
	if got := cfg.Ratio(); got != 640.0/480.0 {
		t.Fatalf("ratio = %v", got)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := writeConfig(t, "unknown_key: 1\n")
	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationNamesKeyAndLine(t *testing.T) {
	path := writeConfig(t, "seeker: task\nrefresh_fps: 0\n")
	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "refresh_fps" {
		t.Fatalf("path = %q", verr.Path)
	}
	if verr.Source.Line != 2 {
		t.Fatalf("line = %d", verr.Source.Line)
	}
	if !strings.Contains(err.Error(), path+":2:") {
		t.Fatalf("expected file:line prefix, got %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		key    string
	}{
		{"bad hotkey", func(c *Config) { c.OpenHotkey = "Control-" }, "open_hotkey"},
		{"two keys", func(c *Config) { c.CloneHotkey = "a-b" }, "clone_hotkey"},
		{"seeker", func(c *Config) { c.Seeker = "everything" }, "seeker"},
		{"negative ratio", func(c *Config) { c.InitialRatio = -1 }, "initial_ratio"},
		{"zero size", func(c *Config) { c.InitialSize.Height = 0 }, "initial_size"},
		{"margin", func(c *Config) { c.FixMargin = -1 }, "fix_margin"},
		{"fps", func(c *Config) { c.RefreshFPS = 500 }, "refresh_fps"},
		{"interval", func(c *Config) { c.WatchInterval = time.Millisecond }, "watch_interval"},
		{"palette", func(c *Config) { c.PaletteBackend = "zenity" }, "palette_backend"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.key {
				t.Fatalf("path = %q, want %q", verr.Path, tt.key)
			}
		})
	}
}

func TestSaveTo_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.Seeker = "all"
	cfg.WatchInterval = 3 * time.Second
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Seeker != "all" || res.Config.WatchInterval != 3*time.Second {
		t.Fatalf("unexpected config after save: %+v", res.Config)
	}
}
