//go:build linux

// Package hostwin implements the always-on-top X11 window that shows the
// thumbnail. It turns X events into pipeline messages and emulates the
// interactive resize loop so sizing can be corrected while dragging.
package hostwin

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/1broseidon/ontop/internal/aspect"
	"github.com/1broseidon/ontop/internal/hotkeys"
	"github.com/1broseidon/ontop/internal/msgpump"
	"github.com/1broseidon/ontop/internal/platform"
	"github.com/1broseidon/ontop/internal/x11"
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const (
	resizeBorder     = 6
	doubleClickDelay = 400 * time.Millisecond
	modifierPoll     = 100 * time.Millisecond
)

// Options configure a new host window.
type Options struct {
	Title   string
	Bounds  platform.Rect
	MinSize platform.Size
	// Invoke runs fn on the UI goroutine.
	Invoke func(fn func())
}

type drag struct {
	edge   aspect.Edge
	origin platform.Point
	start  platform.Rect
}

// Window is the host window. All methods must be called on the UI goroutine.
type Window struct {
	conn   *x11.Connection
	xu     *xgbutil.XUtil
	win    *xwindow.Window
	invoke func(fn func())

	bounds      platform.Rect
	lastSet     platform.Size
	minSize     platform.Size
	borderless  bool
	visible     bool
	transparent bool
	shapeOK     bool

	drag        *drag
	lastClick   time.Time
	activeAtom  xproto.Atom
	hotkeys     *hotkeys.X11Registrar
	dispatch    func(*msgpump.Message) bool
	closePanel  func()
	onConfigure func(platform.Rect)
	onExpose    func()
	onClick     func(p platform.Point, button int) bool

	watchMu   sync.Mutex
	watchStop chan struct{}
	lastMods  platform.Modifiers
}

// New creates and maps the host window.
func New(conn *x11.Connection, opts Options) (*Window, error) {
	xu := conn.XUtil
	win, err := xwindow.Generate(xu)
	if err != nil {
		return nil, fmt.Errorf("generate window id: %w", err)
	}

	b := opts.Bounds
	if b.Width < 1 || b.Height < 1 {
		b.Width, b.Height = 400, 300
	}
	if err := win.CreateChecked(xu.RootWin(), b.X, b.Y, b.Width, b.Height,
		xproto.CwBackPixel, 0x000000); err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	w := &Window{
		conn:    conn,
		xu:      xu,
		win:     win,
		invoke:  opts.Invoke,
		bounds:  b,
		lastSet: b.Size(),
		minSize: opts.MinSize,
		visible: true,
	}
	if w.invoke == nil {
		w.invoke = func(fn func()) { fn() }
	}

	if err := shape.Init(xu.Conn()); err != nil {
		log.Printf("HostWindow: shape extension unavailable, click-through disabled: %v", err)
	} else {
		w.shapeOK = true
	}

	if err := win.Listen(
		xproto.EventMaskButtonPress,
		xproto.EventMaskButtonRelease,
		xproto.EventMaskButtonMotion,
		xproto.EventMaskKeyPress,
		xproto.EventMaskKeyRelease,
		xproto.EventMaskFocusChange,
		xproto.EventMaskExposure,
		xproto.EventMaskStructureNotify,
	); err != nil {
		win.Destroy()
		return nil, fmt.Errorf("listen on host window: %w", err)
	}

	title := opts.Title
	if title == "" {
		title = "ontop"
	}
	_ = ewmh.WmNameSet(xu, win.Id, title)
	_ = icccm.WmNameSet(xu, win.Id, title)
	_ = icccm.WmClassSet(xu, win.Id, &icccm.WmClass{Instance: "ontop", Class: "Ontop"})
	_ = ewmh.WmWindowTypeSet(xu, win.Id, []string{"_NET_WM_WINDOW_TYPE_UTILITY"})

	w.connectEvents()
	w.hotkeys = hotkeys.NewX11Registrar(xu, func(id int) {
		w.pump(&msgpump.Message{Kind: msgpump.KindHotKey, HotKeyID: id})
	})

	win.Map()
	if err := conn.SetAbove(win.Id, true); err != nil {
		log.Printf("HostWindow: failed to set always-on-top: %v", err)
	}
	return w, nil
}

// Handle returns the X window id.
func (w *Window) Handle() platform.WindowHandle { return platform.WindowHandle(w.win.Id) }

// XID returns the X window id as an xproto.Window.
func (w *Window) XID() xproto.Window { return w.win.Id }

// SetDispatcher installs the message sink. It returns true when the message
// was consumed.
func (w *Window) SetDispatcher(fn func(*msgpump.Message) bool) { w.dispatch = fn }

// SetSidePanelCloser installs the callback for CloseSidePanel.
func (w *Window) SetSidePanelCloser(fn func()) { w.closePanel = fn }

// OnConfigure registers a callback for geometry changes.
func (w *Window) OnConfigure(fn func(platform.Rect)) { w.onConfigure = fn }

// OnExpose registers a callback for exposure.
func (w *Window) OnExpose(fn func()) { w.onExpose = fn }

// OnClick registers a click interceptor; returning true swallows the click.
func (w *Window) OnClick(fn func(p platform.Point, button int) bool) { w.onClick = fn }

// RegisterHotKey grabs hk globally and delivers it as a KindHotKey message.
func (w *Window) RegisterHotKey(id int, hk platform.HotKey) error {
	return w.hotkeys.Register(id, hk)
}

// UnregisterHotKey releases a grab.
func (w *Window) UnregisterHotKey(id int) error {
	return w.hotkeys.Unregister(id)
}

// Bounds returns the last known window geometry.
func (w *Window) Bounds() platform.Rect { return w.bounds }

// ClientSize returns the drawable size.
func (w *Window) ClientSize() platform.Size { return w.bounds.Size() }

// SetClientSize resizes the window keeping its position.
func (w *Window) SetClientSize(s platform.Size) error {
	r := w.bounds
	r.Width, r.Height = s.Width, s.Height
	return w.SetBounds(r)
}

// SetBounds moves and resizes the window.
func (w *Window) SetBounds(r platform.Rect) error {
	r.Width = max(r.Width, w.minSize.Width, 1)
	r.Height = max(r.Height, w.minSize.Height, 1)
	if err := w.conn.MoveResizeWindow(w.win.Id, r.X, r.Y, r.Width, r.Height); err != nil {
		return err
	}
	w.bounds = r
	w.lastSet = r.Size()
	w.notifyConfigure()
	return nil
}

// Move moves the window keeping its size.
func (w *Window) Move(p platform.Point) error {
	r := w.bounds
	r.X, r.Y = p.X, p.Y
	return w.SetBounds(r)
}

// Borderless reports whether window manager decorations are off.
func (w *Window) Borderless() bool { return w.borderless }

// SetBorderless toggles window manager decorations.
func (w *Window) SetBorderless(on bool) error {
	if err := w.conn.SetDecorated(w.win.Id, !on); err != nil {
		return fmt.Errorf("set decorations: %w", err)
	}
	w.borderless = on
	return nil
}

// SetChrome toggles the thin frame drawn around the thumbnail.
func (w *Window) SetChrome(on bool) error {
	width := uint32(0)
	if on {
		width = 1
	}
	return xproto.ConfigureWindowChecked(w.xu.Conn(), w.win.Id,
		xproto.ConfigWindowBorderWidth, []uint32{width}).Check()
}

// SetTopMost toggles _NET_WM_STATE_ABOVE.
func (w *Window) SetTopMost(on bool) error {
	return w.conn.SetAbove(w.win.Id, on)
}

// SetInputTransparent empties (or restores) the input shape so pointer
// events fall through to the windows below.
func (w *Window) SetInputTransparent(on bool) error {
	if !w.shapeOK {
		return fmt.Errorf("shape extension unavailable")
	}
	if on == w.transparent {
		return nil
	}
	c := w.xu.Conn()
	var err error
	if on {
		err = shape.RectanglesChecked(c, shape.SoSet, shape.SkInput, xproto.ClipOrderingUnsorted,
			w.win.Id, 0, 0, []xproto.Rectangle{}).Check()
	} else {
		err = shape.MaskChecked(c, shape.SoSet, shape.SkInput, w.win.Id, 0, 0, xproto.PixmapNone).Check()
	}
	if err != nil {
		return fmt.Errorf("set input shape: %w", err)
	}
	w.transparent = on
	return nil
}

// WatchModifiers polls the pointer's modifier state while on and raises a
// KindHitTest message whenever it changes.
func (w *Window) WatchModifiers(on bool) {
	w.watchMu.Lock()
	defer w.watchMu.Unlock()

	if !on {
		if w.watchStop != nil {
			close(w.watchStop)
			w.watchStop = nil
		}
		return
	}
	if w.watchStop != nil {
		return
	}
	stop := make(chan struct{})
	w.watchStop = stop
	w.lastMods = 0

	go func() {
		ticker := time.NewTicker(modifierPoll)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				w.invoke(w.pollModifiers)
			}
		}
	}()
}

func (w *Window) pollModifiers() {
	reply, err := xproto.QueryPointer(w.xu.Conn(), w.xu.RootWin()).Reply()
	if err != nil {
		return
	}
	mods := modifiersFromState(reply.Mask)
	if mods == w.lastMods {
		return
	}
	w.lastMods = mods
	w.hitTest(platform.Point{X: int(reply.RootX) - w.bounds.X, Y: int(reply.RootY) - w.bounds.Y}, mods)
}

func (w *Window) hitTest(p platform.Point, mods platform.Modifiers) {
	msg := &msgpump.Message{Kind: msgpump.KindHitTest, Point: p, Modifiers: mods}
	w.pump(msg)
	if err := w.SetInputTransparent(msg.Result == msgpump.HitTransparent); err != nil {
		log.Printf("HostWindow: hit test update failed: %v", err)
	}
}

// CloseSidePanel closes any open side panel.
func (w *Window) CloseSidePanel() {
	if w.closePanel != nil {
		w.closePanel()
	}
}

// Visible reports whether the window is mapped.
func (w *Window) Visible() bool { return w.visible }

// Show maps the window.
func (w *Window) Show() error {
	w.win.Map()
	w.visible = true
	return w.conn.SetAbove(w.win.Id, true)
}

// Hide unmaps the window.
func (w *Window) Hide() error {
	w.win.Unmap()
	w.visible = false
	return nil
}

// Activate asks the window manager to focus the window.
func (w *Window) Activate() error {
	return w.conn.FocusWindow(w.win.Id)
}

// Destroy releases the window and stops the modifier watch.
func (w *Window) Destroy() {
	w.WatchModifiers(false)
	xevent.Detach(w.xu, w.win.Id)
	w.win.Destroy()
}

func (w *Window) pump(msg *msgpump.Message) bool {
	if w.dispatch == nil {
		return false
	}
	return w.dispatch(msg)
}

func (w *Window) notifyConfigure() {
	if w.onConfigure != nil {
		w.onConfigure(w.bounds)
	}
}

func (w *Window) connectEvents() {
	xu, id := w.xu, w.win.Id

	xevent.ButtonPressFun(func(_ *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		w.onButtonPress(ev)
	}).Connect(xu, id)

	xevent.ButtonReleaseFun(func(_ *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		w.onButtonRelease(ev)
	}).Connect(xu, id)

	xevent.MotionNotifyFun(func(_ *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		w.onMotion(ev)
	}).Connect(xu, id)

	xevent.KeyReleaseFun(func(_ *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
		key := keybind.LookupString(xu, ev.State, ev.Detail)
		w.pump(&msgpump.Message{Kind: msgpump.KindKeyUp, Key: key, Modifiers: modifiersFromState(ev.State)})
	}).Connect(xu, id)

	xevent.FocusInFun(func(_ *xgbutil.XUtil, ev xevent.FocusInEvent) {
		if ev.Mode == xproto.NotifyModeGrab || ev.Mode == xproto.NotifyModeUngrab {
			return
		}
		w.pump(&msgpump.Message{Kind: msgpump.KindActivate})
	}).Connect(xu, id)

	xevent.FocusOutFun(func(_ *xgbutil.XUtil, ev xevent.FocusOutEvent) {
		if ev.Mode == xproto.NotifyModeGrab || ev.Mode == xproto.NotifyModeUngrab {
			return
		}
		w.pump(&msgpump.Message{Kind: msgpump.KindDeactivate})
	}).Connect(xu, id)

	xevent.ExposeFun(func(_ *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count == 0 && w.onExpose != nil {
			w.onExpose()
		}
	}).Connect(xu, id)

	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		w.onConfigureNotify(ev)
	}).Connect(xu, id)

	w.win.WMGracefulClose(func(*xwindow.Window) {
		w.pump(&msgpump.Message{Kind: msgpump.KindClose})
	})

	if atom, err := w.conn.ActiveWindowAtom(); err == nil {
		w.activeAtom = atom
		root := xwindow.New(xu, xu.RootWin())
		if err := root.Listen(xproto.EventMaskPropertyChange); err != nil {
			log.Printf("HostWindow: cannot watch active window: %v", err)
		}
		xevent.PropertyNotifyFun(func(_ *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
			if ev.Atom != w.activeAtom {
				return
			}
			active, err := w.conn.GetActiveWindow()
			if err != nil || active == 0 || active == w.win.Id {
				return
			}
			w.pump(&msgpump.Message{Kind: msgpump.KindWindowActivated, Window: platform.WindowHandle(active)})
		}).Connect(xu, xu.RootWin())
	}
}

func (w *Window) onButtonPress(ev xevent.ButtonPressEvent) {
	p := platform.Point{X: int(ev.EventX), Y: int(ev.EventY)}
	button := int(ev.Detail)

	switch button {
	case 4, 5:
		delta := 1
		if button == 5 {
			delta = -1
		}
		w.pump(&msgpump.Message{Kind: msgpump.KindMouseWheel, Delta: delta, Point: p, Modifiers: modifiersFromState(ev.State)})
		return
	case 1:
	default:
		return
	}

	edge := edgeAt(p, w.bounds.Size(), resizeBorder)
	if edge == aspect.EdgeNone && w.onClick != nil && w.onClick(p, button) {
		return
	}

	now := time.Now()
	if edge == aspect.EdgeNone && now.Sub(w.lastClick) < doubleClickDelay {
		w.lastClick = time.Time{}
		w.pump(&msgpump.Message{Kind: msgpump.KindNCDoubleClick, Point: p})
		return
	}
	w.lastClick = now

	if edge == aspect.EdgeNone {
		// The caption area is the whole client; let the window manager move it.
		xproto.UngrabPointer(w.xu.Conn(), 0)
		if err := ewmh.WmMoveresizeExtra(w.xu, w.win.Id, ewmh.Move,
			int(ev.RootX), int(ev.RootY), 1, 1); err != nil {
			log.Printf("HostWindow: move request failed: %v", err)
		}
		return
	}

	w.drag = &drag{
		edge:   edge,
		origin: platform.Point{X: int(ev.RootX), Y: int(ev.RootY)},
		start:  w.bounds,
	}
}

func (w *Window) onMotion(ev xevent.MotionNotifyEvent) {
	if w.drag == nil {
		return
	}
	ev = compressMotion(w.xu, ev)

	d := w.drag
	rc := dragRect(d.start, d.edge, int(ev.RootX)-d.origin.X, int(ev.RootY)-d.origin.Y, w.minSize)
	w.pump(&msgpump.Message{Kind: msgpump.KindSizing, Edge: d.edge, Rect: &rc})
	if rc != w.bounds {
		if err := w.SetBounds(rc); err != nil {
			log.Printf("HostWindow: resize failed: %v", err)
		}
	}
}

func (w *Window) onButtonRelease(ev xevent.ButtonReleaseEvent) {
	switch ev.Detail {
	case 1:
		w.drag = nil
	case 3:
		p := platform.Point{X: int(ev.EventX), Y: int(ev.EventY)}
		w.pump(&msgpump.Message{Kind: msgpump.KindNCRightUp, Point: p, Modifiers: modifiersFromState(ev.State)})
	}
}

// onConfigureNotify tracks geometry. A size change we did not request came
// from the window manager's own frame; it is run through sizing once so the
// ratio still holds.
func (w *Window) onConfigureNotify(ev xevent.ConfigureNotifyEvent) {
	x, y, width, height, err := w.conn.Geometry(w.win.Id)
	if err != nil {
		x, y, width, height = int(ev.X), int(ev.Y), int(ev.Width), int(ev.Height)
	}
	r := platform.Rect{X: x, Y: y, Width: width, Height: height}
	external := r.Size() != w.lastSet && w.drag == nil
	w.bounds = r

	if external {
		rc := r
		w.pump(&msgpump.Message{Kind: msgpump.KindSizing, Edge: aspect.EdgeBottomRight, Rect: &rc})
		w.lastSet = r.Size()
		if rc.Size() != r.Size() {
			if err := w.SetBounds(rc); err != nil {
				log.Printf("HostWindow: ratio correction failed: %v", err)
			}
			return
		}
	}
	w.notifyConfigure()
}

// compressMotion drops queued motion events and returns the latest one.
func compressMotion(xu *xgbutil.XUtil, ev xevent.MotionNotifyEvent) xevent.MotionNotifyEvent {
	xevent.Read(xu, false)
	laste := ev
	for i, ee := range xevent.Peek(xu) {
		if ee.Err != nil {
			continue
		}
		if mn, ok := ee.Event.(xproto.MotionNotifyEvent); ok && mn.Event == ev.Event {
			laste = xevent.MotionNotifyEvent{MotionNotifyEvent: &mn}
			defer func(i int) { xevent.DequeueAt(xu, i) }(i)
		}
	}
	return laste
}
