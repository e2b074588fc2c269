package platform

import (
	"fmt"
	"strings"
)

// Modifiers is a set of keyboard modifier keys.
type Modifiers uint16

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModSuper
)

// Has reports whether all modifiers in m are set.
func (s Modifiers) Has(m Modifiers) bool { return s&m == m }

func (s Modifiers) String() string {
	var parts []string
	if s.Has(ModControl) {
		parts = append(parts, "Control")
	}
	if s.Has(ModShift) {
		parts = append(parts, "Shift")
	}
	if s.Has(ModAlt) {
		parts = append(parts, "Mod1")
	}
	if s.Has(ModSuper) {
		parts = append(parts, "Mod4")
	}
	return strings.Join(parts, "-")
}

// HotKey is a modifier set plus a key name (an X keysym name such as "o" or "F5").
type HotKey struct {
	Mods Modifiers
	Key  string
}

// String renders the hot key in the "Control-Shift-o" form accepted by ParseHotKey.
func (h HotKey) String() string {
	if h.Mods == 0 {
		return h.Key
	}
	return h.Mods.String() + "-" + h.Key
}

// ParseHotKey parses strings like "Control-Shift-o" or "Mod4-Mod1-t".
func ParseHotKey(s string) (HotKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return HotKey{}, fmt.Errorf("empty hot key")
	}

	var hk HotKey
	for _, part := range strings.Split(s, "-") {
		switch strings.ToLower(part) {
		case "shift":
			hk.Mods |= ModShift
		case "control", "ctrl":
			hk.Mods |= ModControl
		case "mod1", "alt":
			hk.Mods |= ModAlt
		case "mod4", "super":
			hk.Mods |= ModSuper
		case "":
			return HotKey{}, fmt.Errorf("malformed hot key %q", s)
		default:
			if hk.Key != "" {
				return HotKey{}, fmt.Errorf("hot key %q names more than one key", s)
			}
			hk.Key = part
		}
	}
	if hk.Key == "" {
		return HotKey{}, fmt.Errorf("hot key %q has no key", s)
	}
	return hk, nil
}
