//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/1broseidon/ontop/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xgraphics"
)

// iconSize is the edge of the small icon fetched for window lists.
const iconSize = 16

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// Connection exposes the X11 connection for X11-specific components.
func (b *LinuxBackend) Connection() *x11.Connection {
	if b == nil {
		return nil
	}
	return b.conn
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// EnumerateTopLevelWindows returns managed windows front to back.
func (b *LinuxBackend) EnumerateTopLevelWindows() ([]WindowHandle, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.ClientList()
	if err != nil {
		return nil, err
	}

	// _NET_CLIENT_LIST_STACKING is bottom to top.
	handles := make([]WindowHandle, 0, len(clients))
	for i := len(clients) - 1; i >= 0; i-- {
		handles = append(handles, WindowHandle(clients[i]))
	}
	return handles, nil
}

// QueryWindowMetadata reads title, class, icon and visibility for one window.
func (b *LinuxBackend) QueryWindowMetadata(h WindowHandle) (WindowMetadata, error) {
	conn, err := b.connection()
	if err != nil {
		return WindowMetadata{}, err
	}

	win := xproto.Window(h)
	viewable, err := conn.IsViewable(win)
	if err != nil {
		return WindowMetadata{}, fmt.Errorf("window %d: %w", h, ErrWindowGone)
	}

	meta := WindowMetadata{
		Title:       conn.Title(win),
		Class:       conn.Class(win),
		Visible:     viewable && !conn.HasState(win, "_NET_WM_STATE_HIDDEN"),
		Tool:        conn.Kind(win) == x11.KindTool,
		Owned:       conn.IsTransient(win),
		SkipTaskbar: conn.HasState(win, "_NET_WM_STATE_SKIP_TASKBAR"),
	}
	if icon, err := xgraphics.FindIcon(conn.XUtil, win, iconSize, iconSize); err == nil {
		meta.Icon = icon
	}
	return meta, nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowHandle, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowHandle(wid), nil
}

// Displays returns all active displays.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: rectFromMonitor(m),
			Usable: rectFromMonitor(conn.Usable(m)),
		})
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// WorkArea returns the usable area of the monitor containing the center of r.
func (b *LinuxBackend) WorkArea(r Rect) (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}

	c := r.Center()
	mon, err := conn.MonitorAt(c.X, c.Y)
	if err != nil {
		return Rect{}, fmt.Errorf("%w: %v", ErrNoDisplay, err)
	}
	return rectFromMonitor(*mon), nil
}

// PrimaryWorkArea returns the usable area of the primary monitor.
func (b *LinuxBackend) PrimaryWorkArea() (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}

	mon, err := conn.PrimaryMonitor()
	if err != nil {
		return Rect{}, fmt.Errorf("%w: %v", ErrNoDisplay, err)
	}
	return rectFromMonitor(*mon), nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func rectFromMonitor(m x11.Monitor) Rect {
	return Rect{
		X:      m.X,
		Y:      m.Y,
		Width:  m.Width,
		Height: m.Height,
	}
}
