package host

import (
	"github.com/1broseidon/ontop/internal/palette"
	"github.com/1broseidon/ontop/internal/platform"
	"github.com/1broseidon/ontop/internal/seeker"
)

// PalettePicker asks through a dmenu-style palette program.
type PalettePicker struct {
	Backend palette.Backend
}

func (p PalettePicker) PickWindow(windows []seeker.Window, current platform.WindowHandle) (platform.WindowHandle, error) {
	return palette.PickWindow(p.Backend, windows, current)
}

func (p PalettePicker) PickGroup(windows []seeker.Window) ([]platform.WindowHandle, error) {
	return palette.PickGroup(p.Backend, windows)
}

func (p PalettePicker) PickAction(title string, items []palette.MenuItem) (string, error) {
	return palette.NewMenu(p.Backend, title, items).Show()
}
