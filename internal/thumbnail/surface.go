//go:build linux

package thumbnail

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/1broseidon/ontop/internal/platform"
	"github.com/1broseidon/ontop/internal/x11"
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/composite"
	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/xproto"
)

// Surface draws the bound target into the host window.
type Surface struct {
	conn   *x11.Connection
	c      *xgb.Conn
	host   xproto.Window
	invoke func(fn func())
	period time.Duration

	formats map[xproto.Visualid]render.Pictformat
	dst     render.Picture
	dstSize platform.Size

	target     xproto.Window
	src        render.Picture
	natural    platform.Size
	region     *platform.Rect
	forwarding bool

	mu   sync.Mutex
	stop chan struct{}

	// OnSourceResize runs on the UI goroutine when the target's size changes.
	OnSourceResize func(platform.Size)
}

// New prepares a surface drawing into host. Frames are refreshed fps times
// per second through invoke.
func New(conn *x11.Connection, host xproto.Window, size platform.Size, fps int, invoke func(fn func())) (*Surface, error) {
	c := conn.XUtil.Conn()
	if err := composite.Init(c); err != nil {
		return nil, fmt.Errorf("composite extension: %w", err)
	}
	if _, err := composite.QueryVersion(c, 0, 4).Reply(); err != nil {
		return nil, fmt.Errorf("composite version: %w", err)
	}
	if err := render.Init(c); err != nil {
		return nil, fmt.Errorf("render extension: %w", err)
	}
	if _, err := render.QueryVersion(c, 0, 11).Reply(); err != nil {
		return nil, fmt.Errorf("render version: %w", err)
	}

	formats, err := queryFormats(c)
	if err != nil {
		return nil, err
	}

	if fps <= 0 {
		fps = 20
	}
	s := &Surface{
		conn:    conn,
		c:       c,
		host:    host,
		invoke:  invoke,
		period:  time.Second / time.Duration(fps),
		formats: formats,
		dstSize: size,
	}

	dst, err := s.windowPicture(host, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("host picture: %w", err)
	}
	s.dst = dst
	return s, nil
}

func queryFormats(c *xgb.Conn) (map[xproto.Visualid]render.Pictformat, error) {
	reply, err := render.QueryPictFormats(c).Reply()
	if err != nil {
		return nil, fmt.Errorf("query picture formats: %w", err)
	}
	formats := make(map[xproto.Visualid]render.Pictformat)
	for _, screen := range reply.Screens {
		for _, depth := range screen.Depths {
			for _, v := range depth.Visuals {
				formats[v.Visual] = v.Format
			}
		}
	}
	return formats, nil
}

func (s *Surface) windowPicture(win xproto.Window, mask uint32, values []uint32) (render.Picture, error) {
	attrs, err := xproto.GetWindowAttributes(s.c, win).Reply()
	if err != nil {
		return 0, fmt.Errorf("window attributes: %w", platform.ErrWindowGone)
	}
	format, ok := s.formats[attrs.Visual]
	if !ok {
		return 0, fmt.Errorf("no picture format for visual 0x%x", uint32(attrs.Visual))
	}
	pid, err := render.NewPictureId(s.c)
	if err != nil {
		return 0, err
	}
	if err := render.CreatePictureChecked(s.c, pid, xproto.Drawable(win), format, mask, values).Check(); err != nil {
		return 0, fmt.Errorf("create picture: %w", err)
	}
	return pid, nil
}

// Bind starts cloning h and returns its size.
func (s *Surface) Bind(h platform.WindowHandle) (platform.Size, error) {
	if err := s.Unbind(); err != nil {
		log.Printf("Thumbnail: unbind previous target: %v", err)
	}

	target := xproto.Window(h)
	if target == s.host {
		return platform.Size{}, fmt.Errorf("cannot clone the host window")
	}
	_, _, w, hgt, err := s.conn.Geometry(target)
	if err != nil {
		return platform.Size{}, fmt.Errorf("target geometry: %w", platform.ErrWindowGone)
	}

	if err := composite.RedirectWindowChecked(s.c, target, composite.RedirectAutomatic).Check(); err != nil {
		return platform.Size{}, fmt.Errorf("redirect window: %w", err)
	}

	src, err := s.windowPicture(target, render.CpSubwindowMode, []uint32{xproto.SubwindowModeIncludeInferiors})
	if err != nil {
		composite.UnredirectWindow(s.c, target, composite.RedirectAutomatic)
		return platform.Size{}, err
	}
	filter := "bilinear"
	render.SetPictureFilter(s.c, src, uint16(len(filter)), filter, nil)

	s.target = target
	s.src = src
	s.natural = platform.Size{Width: w, Height: hgt}
	s.region = nil
	s.startRefresh()
	s.Paint()
	return s.natural, nil
}

// SetRegion limits the drawn part of the target.
func (s *Surface) SetRegion(region *platform.Rect) error {
	if s.target == 0 {
		return fmt.Errorf("set region: no target")
	}
	if region == nil {
		s.region = nil
	} else {
		r := *region
		s.region = &r
	}
	s.Paint()
	return nil
}

// Unbind stops cloning.
func (s *Surface) Unbind() error {
	s.stopRefresh()
	if s.target == 0 {
		return nil
	}
	render.FreePicture(s.c, s.src)
	err := composite.UnredirectWindowChecked(s.c, s.target, composite.RedirectAutomatic).Check()
	s.target, s.src, s.region = 0, 0, nil
	s.natural = platform.Size{}
	s.clear()
	if err != nil {
		return fmt.Errorf("unredirect window: %w", err)
	}
	return nil
}

// IsBound reports whether a target is cloned.
func (s *Surface) IsBound() bool { return s.target != 0 }

// SetClickForwarding toggles forwarding clicks to the target.
func (s *Surface) SetClickForwarding(on bool) { s.forwarding = on }

// ClickForwarding reports whether clicks are forwarded.
func (s *Surface) ClickForwarding() bool { return s.forwarding }

// Resize updates the destination size after the host window changed.
func (s *Surface) Resize(size platform.Size) {
	if size == s.dstSize {
		return
	}
	s.dstSize = size
	s.Paint()
}

// Forward sends a click at host point p to the target. It returns false when
// forwarding is off or nothing is bound.
func (s *Surface) Forward(p platform.Point, button int) bool {
	if !s.forwarding || s.target == 0 {
		return false
	}
	tp := mapPoint(p, sourceRect(s.natural, s.region), s.dstSize)

	reply, err := xproto.TranslateCoordinates(s.c, s.target, s.conn.Root, int16(tp.X), int16(tp.Y)).Reply()
	if err != nil {
		return false
	}

	press := xproto.ButtonPressEvent{
		Detail:     xproto.Button(button),
		Root:       s.conn.Root,
		Event:      s.target,
		RootX:      reply.DstX,
		RootY:      reply.DstY,
		EventX:     int16(tp.X),
		EventY:     int16(tp.Y),
		SameScreen: true,
	}
	release := xproto.ButtonReleaseEvent(press)
	release.State = xproto.KeyButMaskButton1 << (button - 1)

	xproto.SendEvent(s.c, true, s.target, xproto.EventMaskButtonPress, string(press.Bytes()))
	xproto.SendEvent(s.c, true, s.target, xproto.EventMaskButtonRelease, string(release.Bytes()))
	return true
}

// Paint draws one frame.
func (s *Surface) Paint() {
	if s.target == 0 || s.dstSize.Width <= 0 || s.dstSize.Height <= 0 {
		return
	}
	src := sourceRect(s.natural, s.region)
	sx, sy := scale(src, s.dstSize)
	render.SetPictureTransform(s.c, s.src, render.Transform{
		Matrix11: render.Fixed(toFixed(sx)),
		Matrix13: render.Fixed(toFixed(float64(src.X))),
		Matrix22: render.Fixed(toFixed(sy)),
		Matrix23: render.Fixed(toFixed(float64(src.Y))),
		Matrix33: render.Fixed(toFixed(1)),
	})
	render.Composite(s.c, render.PictOpSrc, s.src, 0, s.dst,
		0, 0, 0, 0, 0, 0, uint16(s.dstSize.Width), uint16(s.dstSize.Height))
}

func (s *Surface) clear() {
	xproto.ClearArea(s.c, false, s.host, 0, 0, 0, 0)
}

// refresh repaints and tracks the target size. It runs on the UI goroutine.
func (s *Surface) refresh() {
	if s.target == 0 {
		return
	}
	if _, _, w, h, err := s.conn.Geometry(s.target); err == nil {
		size := platform.Size{Width: w, Height: h}
		if size != s.natural {
			s.natural = size
			if s.OnSourceResize != nil {
				s.OnSourceResize(size)
			}
		}
	}
	s.Paint()
}

func (s *Surface) startRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil || s.invoke == nil {
		return
	}
	stop := make(chan struct{})
	s.stop = stop
	go func() {
		ticker := time.NewTicker(s.period)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.invoke(s.refresh)
			}
		}
	}()
}

func (s *Surface) stopRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

// Close releases render resources.
func (s *Surface) Close() {
	_ = s.Unbind()
	render.FreePicture(s.c, s.dst)
}
