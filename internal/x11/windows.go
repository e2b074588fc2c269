package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WindowKind classifies a top-level window by its _NET_WM_WINDOW_TYPE.
type WindowKind int

const (
	KindNormal WindowKind = iota
	KindDialog
	KindTool
)

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("invalid size %dx%d", width, height)
	}

	// Use EWMH MoveResize for better WM compatibility
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// Geometry returns the window rectangle in root coordinates.
func (c *Connection) Geometry(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}

	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}

// Exists reports whether the window id still refers to a live window.
func (c *Connection) Exists(windowID xproto.Window) bool {
	_, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	return err == nil
}

// SetAbove adds or removes _NET_WM_STATE_ABOVE.
func (c *Connection) SetAbove(windowID xproto.Window, above bool) error {
	action := ewmh.StateRemove
	if above {
		action = ewmh.StateAdd
	}
	return ewmh.WmStateReq(c.XUtil, windowID, action, "_NET_WM_STATE_ABOVE")
}

// SetDecorated asks the window manager to draw (or drop) the frame via Motif hints.
func (c *Connection) SetDecorated(windowID xproto.Window, decorated bool) error {
	hints := &motif.Hints{
		Flags:      motif.HintDecorations,
		Decoration: motif.DecorationNone,
	}
	if decorated {
		hints.Decoration = motif.DecorationBorder | motif.DecorationResizeH
	}
	return motif.WmHintsSet(c.XUtil, windowID, hints)
}

// HasState reports whether any of the given _NET_WM_STATE atoms is set.
func (c *Connection) HasState(windowID xproto.Window, names ...string) bool {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, state := range states {
		for _, name := range names {
			if state == name {
				return true
			}
		}
	}
	return false
}

// Kind classifies a window by its EWMH window type.
func (c *Connection) Kind(windowID xproto.Window) WindowKind {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return KindNormal
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return KindNormal
		case "_NET_WM_WINDOW_TYPE_DIALOG":
			return KindDialog
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_TOOLBAR",
			"_NET_WM_WINDOW_TYPE_MENU",
			"_NET_WM_WINDOW_TYPE_UTILITY",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return KindTool
		}
	}
	return KindNormal
}

// IsTransient reports whether WM_TRANSIENT_FOR names another window.
func (c *Connection) IsTransient(windowID xproto.Window) bool {
	owner, err := icccm.WmTransientForGet(c.XUtil, windowID)
	return err == nil && owner != 0 && owner != windowID
}

// IsViewable reports whether the window is mapped and viewable.
func (c *Connection) IsViewable(windowID xproto.Window) (bool, error) {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return false, err
	}
	return attrs.MapState == xproto.MapStateViewable, nil
}

// Title returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) Title(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// Class returns the WM_CLASS class part.
func (c *Connection) Class(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}
