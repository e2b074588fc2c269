package palette

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MenuItem is an entry in a hierarchical action menu.
type MenuItem struct {
	Label    string
	Action   string // empty for parents and headers
	Icon     string
	IsHeader bool
	IsActive bool // shown as the current choice, e.g. an enabled toggle
	Submenu  []MenuItem
}

// IsParent returns true if this item has a submenu.
func (m MenuItem) IsParent() bool {
	return len(m.Submenu) > 0
}

// Menu walks a MenuItem tree with a palette backend.
type Menu struct {
	backend Backend
	prompt  string
	root    []MenuItem
	message string
}

const (
	backAction    = "__back__"
	submenuPrefix = "__submenu__:"
)

// NewMenu creates a menu titled prompt.
func NewMenu(backend Backend, prompt string, items []MenuItem) *Menu {
	return &Menu{backend: backend, prompt: prompt, root: items}
}

// SetMessage sets a context line shown by backends with a message bar.
func (m *Menu) SetMessage(msg string) {
	m.message = msg
}

// Show displays the menu and returns the action of the chosen leaf, or
// ErrCancelled.
func (m *Menu) Show() (string, error) {
	return m.showLevel(m.root, nil)
}

func (m *Menu) showLevel(items []MenuItem, breadcrumb []string) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("menu: no items to show")
	}

	for {
		rows := make([]Item, 0, len(items)+1)
		if len(breadcrumb) > 0 {
			rows = append(rows, Item{Label: "← Back", Value: backAction, Icon: "go-previous"})
		}
		for i, item := range items {
			row := Item{Label: item.Label, Value: item.Action, Icon: item.Icon, IsHeader: item.IsHeader, IsActive: item.IsActive}
			if item.IsParent() {
				row.Label += " →"
				row.Value = submenuPrefix + strconv.Itoa(i)
			}
			rows = append(rows, row)
		}

		prompt := m.prompt
		if len(breadcrumb) > 0 {
			prompt = breadcrumb[len(breadcrumb)-1]
		}

		res, err := m.backend.Show(prompt, rows, m.message)
		if err != nil {
			return "", err
		}

		switch value := res.Item.Value; {
		case res.Item.IsHeader, value == "":
			// Backends without non-selectable rows can return headers.
			continue
		case value == backAction:
			return "", ErrCancelled
		case strings.HasPrefix(value, submenuPrefix):
			idx, err := strconv.Atoi(strings.TrimPrefix(value, submenuPrefix))
			if err != nil || idx < 0 || idx >= len(items) || !items[idx].IsParent() {
				continue
			}
			action, err := m.showLevel(items[idx].Submenu, append(breadcrumb, items[idx].Label))
			if errors.Is(err, ErrCancelled) {
				continue
			}
			return action, err
		default:
			return value, nil
		}
	}
}
