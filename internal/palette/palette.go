// Package palette drives external dmenu-style pickers (rofi, fuzzel, wofi,
// dmenu) for choosing windows and context-menu actions.
package palette

import (
	"fmt"
	"os/exec"
	"strings"
)

// Item is a single selectable entry in a palette.
type Item struct {
	Label    string // Display text
	Value    string // Opaque value returned on selection
	Icon     string // Icon name for rofi -show-icons
	IsHeader bool   // Non-selectable section header
	IsActive bool   // Highlighted as current
}

// SelectResult contains the result of a palette selection.
type SelectResult struct {
	Item     Item
	ExitCode int // 0=normal, 10=kb-custom-1 (Alt+Return)
}

// Capabilities describes what features a backend supports.
type Capabilities struct {
	Icons         bool
	Markup        bool
	NonSelectable bool
	IndexOutput   bool // Selection is reported as a row index
	MultiSelect   bool // Several rows can be confirmed at once
	MessageBar    bool
}

// Backend shows a palette to the user.
type Backend interface {
	// Show displays items and returns the chosen one, or ErrCancelled.
	Show(prompt string, items []Item, message string) (SelectResult, error)

	// ShowMulti displays items and returns every chosen one, in list order.
	// Backends without native multi-select return a single item.
	ShowMulti(prompt string, items []Item, message string) ([]Item, error)

	Capabilities() Capabilities
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

var backendOrder = []string{"rofi", "fuzzel", "wofi", "dmenu"}

// DetectBackend returns the first palette program found in PATH, in priority
// order: rofi, fuzzel, wofi, dmenu.
func DetectBackend() (string, error) {
	for _, name := range backendOrder {
		if _, err := lookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no palette backend found in PATH (looked for: %s)", strings.Join(backendOrder, ", "))
}

// NewBackend creates a backend by name. Supported names: auto, rofi, fuzzel,
// wofi, dmenu.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := DetectBackend()
		if err != nil {
			return nil, err
		}
		name = detected
	}

	var b *dmenuLikeBackend
	switch name {
	case "rofi":
		b = newRofiBackend()
	case "fuzzel":
		b = newFuzzelBackend()
	case "wofi":
		b = newWofiBackend()
	case "dmenu":
		b = newDmenuBackend()
	default:
		return nil, fmt.Errorf("unknown palette backend: %q (expected: auto, %s)", name, strings.Join(backendOrder, ", "))
	}
	if _, err := lookPath(b.command); err != nil {
		return nil, fmt.Errorf("palette backend %q not found in PATH", b.command)
	}
	return b, nil
}
