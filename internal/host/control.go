package host

import (
	"github.com/1broseidon/ontop/internal/ipc"
	"github.com/1broseidon/ontop/internal/platform"
)

// Control serves IPC requests by running them on the UI goroutine.
type Control struct {
	h *Host
}

var _ ipc.Handler = (*Control)(nil)

// NewControl returns the IPC handler for h.
func NewControl(h *Host) *Control {
	return &Control{h: h}
}

func (c *Control) Status() (ipc.StatusData, error) {
	var st ipc.StatusData
	err := c.h.Do(func() error {
		st = c.h.status()
		return nil
	})
	return st, err
}

func (c *Control) ListWindows() ([]ipc.WindowInfo, error) {
	var out []ipc.WindowInfo
	err := c.h.Do(func() error {
		windows, err := c.h.Windows()
		if err != nil {
			return err
		}
		out = make([]ipc.WindowInfo, 0, len(windows))
		for _, w := range windows {
			out = append(out, ipc.WindowInfo{ID: uint32(w.Handle), Title: w.Title, Class: w.Class})
		}
		return nil
	})
	return out, err
}

func (c *Control) Clone(id uint32, region *ipc.Region) error {
	return c.h.Do(func() error {
		return c.h.Clone(platform.WindowHandle(id), toRect(region))
	})
}

func (c *Control) CloneActive() error {
	return c.h.Do(c.h.CloneActive)
}

func (c *Control) Unclone() error {
	return c.h.Do(c.h.Unclone)
}

func (c *Control) Group(ids []uint32) error {
	handles := make([]platform.WindowHandle, 0, len(ids))
	for _, id := range ids {
		handles = append(handles, platform.WindowHandle(id))
	}
	return c.h.Do(func() error {
		return c.h.SetThumbnailGroup(handles)
	})
}

func (c *Control) SetMode(p ipc.ModePayload) error {
	return c.h.Do(func() error {
		return c.h.SetMode(p.Fullscreen, p.ClickThrough, p.ClickForwarding)
	})
}

func (c *Control) Fit(scale float64) error {
	return c.h.Do(func() error {
		return c.h.display.FitToThumbnail(scale)
	})
}

func (c *Control) SetRegion(region *ipc.Region) error {
	return c.h.Do(func() error {
		return c.h.display.SetRegion(toRect(region))
	})
}

func (c *Control) Reset() error {
	return c.h.Do(c.h.Reset)
}

func (c *Control) ToggleVisible() error {
	return c.h.Do(c.h.display.ToggleVisible)
}

func (h *Host) status() ipc.StatusData {
	st := h.display.State()
	size := h.win.ClientSize()
	out := ipc.StatusData{
		Showing:         h.display.IsShowingThumbnail(),
		Mode:            st.Mode.String(),
		ClickThrough:    st.ClickThrough,
		ClickForwarding: st.ClickForwarding,
		Visible:         h.win.Visible(),
		GroupActive:     h.group.IsActive(),
		Width:           size.Width,
		Height:          size.Height,
	}
	if t, ok := h.display.Target(); ok {
		out.Target = uint32(t.Handle)
		out.TargetTitle = h.TargetTitle()
		if t.Region != nil {
			out.Region = &ipc.Region{X: t.Region.X, Y: t.Region.Y, Width: t.Region.Width, Height: t.Region.Height}
		}
	}
	for _, g := range h.group.Targets() {
		out.Group = append(out.Group, uint32(g))
	}
	return out
}

func toRect(r *ipc.Region) *platform.Rect {
	if r == nil {
		return nil
	}
	return &platform.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}
