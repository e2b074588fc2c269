package display

import (
	"github.com/1broseidon/ontop/internal/aspect"
	"github.com/1broseidon/ontop/internal/platform"
)

type fakeWindow struct {
	bounds      platform.Rect
	borderless  bool
	chrome      bool
	topMost     bool
	transparent bool
	watching    bool
	visible     bool
	panelClosed int
	topToggles  int
	activated   int
	geometrySet int
}

func newFakeWindow(r platform.Rect) *fakeWindow {
	return &fakeWindow{bounds: r, chrome: true, topMost: true, visible: true}
}

func (w *fakeWindow) ClientSize() platform.Size { return w.bounds.Size() }

func (w *fakeWindow) SetClientSize(s platform.Size) error {
	w.bounds.Width, w.bounds.Height = s.Width, s.Height
	w.geometrySet++
	return nil
}

func (w *fakeWindow) Bounds() platform.Rect { return w.bounds }

func (w *fakeWindow) SetBounds(r platform.Rect) error {
	w.bounds = r
	w.geometrySet++
	return nil
}

func (w *fakeWindow) Move(p platform.Point) error {
	w.bounds.X, w.bounds.Y = p.X, p.Y
	w.geometrySet++
	return nil
}

func (w *fakeWindow) Borderless() bool                 { return w.borderless }
func (w *fakeWindow) SetBorderless(b bool) error       { w.borderless = b; return nil }
func (w *fakeWindow) SetChrome(b bool) error           { w.chrome = b; return nil }
func (w *fakeWindow) SetInputTransparent(b bool) error { w.transparent = b; return nil }
func (w *fakeWindow) WatchModifiers(b bool)            { w.watching = b }
func (w *fakeWindow) CloseSidePanel()                  { w.panelClosed++ }
func (w *fakeWindow) Visible() bool                    { return w.visible }
func (w *fakeWindow) Show() error                      { w.visible = true; return nil }
func (w *fakeWindow) Hide() error                      { w.visible = false; return nil }
func (w *fakeWindow) Activate() error                  { w.activated++; return nil }

func (w *fakeWindow) SetTopMost(b bool) error {
	w.topMost = b
	w.topToggles++
	return nil
}

type fakeScreens struct {
	workArea platform.Rect
	primary  platform.Rect
}

func (s fakeScreens) WorkArea(platform.Rect) (platform.Rect, error) { return s.workArea, nil }
func (s fakeScreens) PrimaryWorkArea() (platform.Rect, error)       { return s.primary, nil }

type fakeSurface struct {
	sizes      map[platform.WindowHandle]platform.Size
	bound      platform.WindowHandle
	region     *platform.Rect
	forwarding bool
	unbinds    int
}

func (s *fakeSurface) Bind(h platform.WindowHandle) (platform.Size, error) {
	size, ok := s.sizes[h]
	if !ok {
		return platform.Size{}, platform.ErrWindowGone
	}
	s.bound = h
	s.region = nil
	return size, nil
}

func (s *fakeSurface) SetRegion(r *platform.Rect) error {
	s.region = r
	return nil
}

func (s *fakeSurface) Unbind() error {
	s.bound = 0
	s.unbinds++
	return nil
}

func (s *fakeSurface) IsBound() bool             { return s.bound != 0 }
func (s *fakeSurface) SetClickForwarding(b bool) { s.forwarding = b }

type fakeReporter struct {
	titles []string
	errs   []error
}

func (r *fakeReporter) ShowError(title string, err error) {
	r.titles = append(r.titles, title)
	r.errs = append(r.errs, err)
}

type rig struct {
	win      *fakeWindow
	surface  *fakeSurface
	reporter *fakeReporter
	ratio    *aspect.Controller
	ctrl     *Controller
}

var testWorkArea = platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1040}

func newRig() *rig {
	win := newFakeWindow(platform.Rect{X: 100, Y: 100, Width: 400, Height: 300})
	surface := &fakeSurface{sizes: map[platform.WindowHandle]platform.Size{
		10: {Width: 800, Height: 600},
		11: {Width: 1600, Height: 900},
		12: {Width: 4000, Height: 3000},
	}}
	reporter := &fakeReporter{}
	ratio := aspect.New(win)
	ctrl := NewController(win, fakeScreens{workArea: testWorkArea, primary: testWorkArea}, surface, ratio, reporter, DefaultOptions())
	return &rig{win: win, surface: surface, reporter: reporter, ratio: ratio, ctrl: ctrl}
}
