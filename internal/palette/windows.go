package palette

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/ontop/internal/platform"
	"github.com/1broseidon/ontop/internal/seeker"
)

const doneValue = "__done__"

// WindowItems renders windows as palette rows. The window matching current is
// marked active.
func WindowItems(windows []seeker.Window, current platform.WindowHandle) []Item {
	items := make([]Item, 0, len(windows))
	for _, w := range windows {
		label := w.Title
		if w.Class != "" {
			label = fmt.Sprintf("%s  [%s]", w.Title, w.Class)
		}
		items = append(items, Item{
			Label:    label,
			Value:    strconv.FormatUint(uint64(w.Handle), 10),
			Icon:     strings.ToLower(w.Class),
			IsActive: w.Handle == current && current != 0,
		})
	}
	return items
}

// PickWindow asks the user for one window to clone.
func PickWindow(b Backend, windows []seeker.Window, current platform.WindowHandle) (platform.WindowHandle, error) {
	if len(windows) == 0 {
		return 0, fmt.Errorf("no windows to choose from")
	}
	res, err := b.Show("clone", WindowItems(windows, current), "")
	if err != nil {
		return 0, err
	}
	return parseHandle(res.Item.Value)
}

// PickGroup asks the user for the windows to cycle through. Backends without
// multi-select are shown repeatedly, one pick per round, until "Done" is
// chosen or every window has been picked.
func PickGroup(b Backend, windows []seeker.Window) ([]platform.WindowHandle, error) {
	if len(windows) < 2 {
		return nil, fmt.Errorf("group mode needs at least two windows, have %d", len(windows))
	}

	if b.Capabilities().MultiSelect {
		picked, err := b.ShowMulti("group", WindowItems(windows, 0), "Shift+Enter marks a window, Enter confirms")
		if err != nil {
			return nil, err
		}
		out := make([]platform.WindowHandle, 0, len(picked))
		for _, it := range picked {
			h, err := parseHandle(it.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, h)
		}
		return out, nil
	}

	var out []platform.WindowHandle
	remaining := append([]seeker.Window(nil), windows...)
	for len(remaining) > 0 {
		items := WindowItems(remaining, 0)
		if len(out) >= 2 {
			items = append([]Item{{Label: fmt.Sprintf("Done (%d selected)", len(out)), Value: doneValue}}, items...)
		}
		res, err := b.Show(fmt.Sprintf("group %d", len(out)+1), items, "")
		if err != nil {
			return nil, err
		}
		if res.Item.Value == doneValue {
			break
		}
		h, err := parseHandle(res.Item.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
		for i := range remaining {
			if remaining[i].Handle == h {
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
	}
	return out, nil
}

func parseHandle(v string) (platform.WindowHandle, error) {
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("palette: bad window value %q", v)
	}
	return platform.WindowHandle(n), nil
}
