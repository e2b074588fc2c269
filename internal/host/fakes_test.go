package host

import (
	"testing"
	"time"

	"github.com/1broseidon/ontop/internal/display"
	"github.com/1broseidon/ontop/internal/palette"
	"github.com/1broseidon/ontop/internal/platform"
	"github.com/1broseidon/ontop/internal/seeker"
)

const hostHandle platform.WindowHandle = 500

type fakeWindow struct {
	bounds      platform.Rect
	borderless  bool
	topMost     bool
	transparent bool
	visible     bool
	hotkeys     map[int]platform.HotKey
	conflicts   map[string]bool
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{
		bounds:    platform.Rect{X: 100, Y: 100, Width: 400, Height: 300},
		topMost:   true,
		visible:   true,
		hotkeys:   map[int]platform.HotKey{},
		conflicts: map[string]bool{},
	}
}

func (w *fakeWindow) Handle() platform.WindowHandle { return hostHandle }

func (w *fakeWindow) RegisterHotKey(id int, hk platform.HotKey) error {
	if w.conflicts[hk.Key] {
		return platform.ErrHotKeyConflict
	}
	w.hotkeys[id] = hk
	return nil
}

func (w *fakeWindow) UnregisterHotKey(id int) error {
	delete(w.hotkeys, id)
	return nil
}

func (w *fakeWindow) ClientSize() platform.Size { return w.bounds.Size() }
func (w *fakeWindow) SetClientSize(s platform.Size) error {
	w.bounds.Width, w.bounds.Height = s.Width, s.Height
	return nil
}
func (w *fakeWindow) Bounds() platform.Rect            { return w.bounds }
func (w *fakeWindow) SetBounds(r platform.Rect) error  { w.bounds = r; return nil }
func (w *fakeWindow) Move(p platform.Point) error      { w.bounds.X, w.bounds.Y = p.X, p.Y; return nil }
func (w *fakeWindow) Borderless() bool                 { return w.borderless }
func (w *fakeWindow) SetBorderless(b bool) error       { w.borderless = b; return nil }
func (w *fakeWindow) SetChrome(bool) error             { return nil }
func (w *fakeWindow) SetTopMost(b bool) error          { w.topMost = b; return nil }
func (w *fakeWindow) SetInputTransparent(b bool) error { w.transparent = b; return nil }
func (w *fakeWindow) WatchModifiers(bool)              {}
func (w *fakeWindow) CloseSidePanel()                  {}
func (w *fakeWindow) Visible() bool                    { return w.visible }
func (w *fakeWindow) Show() error                      { w.visible = true; return nil }
func (w *fakeWindow) Hide() error                      { w.visible = false; return nil }
func (w *fakeWindow) Activate() error                  { return nil }

var testWorkArea = platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1040}

type fakeBackend struct {
	active  platform.WindowHandle
	windows map[platform.WindowHandle]string
}

func (b *fakeBackend) EnumerateTopLevelWindows() ([]platform.WindowHandle, error) {
	return []platform.WindowHandle{hostHandle, 10, 11, 12}, nil
}

func (b *fakeBackend) QueryWindowMetadata(h platform.WindowHandle) (platform.WindowMetadata, error) {
	title, ok := b.windows[h]
	if !ok {
		return platform.WindowMetadata{}, platform.ErrWindowGone
	}
	return platform.WindowMetadata{Title: title, Class: "App", Visible: true}, nil
}

func (b *fakeBackend) ActiveWindow() (platform.WindowHandle, error) { return b.active, nil }
func (b *fakeBackend) Displays() ([]platform.Display, error) {
	return []platform.Display{{Bounds: testWorkArea, Usable: testWorkArea}}, nil
}
func (b *fakeBackend) WorkArea(platform.Rect) (platform.Rect, error) { return testWorkArea, nil }
func (b *fakeBackend) PrimaryWorkArea() (platform.Rect, error)       { return testWorkArea, nil }

type fakeSurface struct {
	sizes  map[platform.WindowHandle]platform.Size
	bound  platform.WindowHandle
	region *platform.Rect
}

func (s *fakeSurface) Bind(h platform.WindowHandle) (platform.Size, error) {
	size, ok := s.sizes[h]
	if !ok {
		return platform.Size{}, platform.ErrWindowGone
	}
	s.bound = h
	return size, nil
}
func (s *fakeSurface) SetRegion(r *platform.Rect) error { s.region = r; return nil }
func (s *fakeSurface) Unbind() error                    { s.bound = 0; return nil }
func (s *fakeSurface) IsBound() bool                    { return s.bound != 0 }
func (s *fakeSurface) SetClickForwarding(bool)          {}

type fakeReporter struct {
	titles []string
}

func (r *fakeReporter) ShowError(title string, _ error) { r.titles = append(r.titles, title) }

type fakePicker struct {
	window platform.WindowHandle
	group  []platform.WindowHandle
	action string
	err    error
	shown  [][]palette.MenuItem
	listed []seeker.Window
}

func (p *fakePicker) PickWindow(windows []seeker.Window, _ platform.WindowHandle) (platform.WindowHandle, error) {
	p.listed = windows
	return p.window, p.err
}

func (p *fakePicker) PickGroup(windows []seeker.Window) ([]platform.WindowHandle, error) {
	p.listed = windows
	return p.group, p.err
}

func (p *fakePicker) PickAction(_ string, items []palette.MenuItem) (string, error) {
	p.shown = append(p.shown, items)
	return p.action, p.err
}

type testRig struct {
	host     *Host
	win      *fakeWindow
	backend  *fakeBackend
	surface  *fakeSurface
	reporter *fakeReporter
	picker   *fakePicker
	closed   int
}

var testHotKeys = map[string]platform.HotKey{
	"open_hotkey":        {Mods: platform.ModControl | platform.ModShift, Key: "o"},
	"clone_hotkey":       {Mods: platform.ModControl | platform.ModShift, Key: "c"},
	"group_cycle_hotkey": {Mods: platform.ModControl | platform.ModShift, Key: "g"},
}

// Binding ids follow registration order.
const (
	openID  = 1
	cloneID = 2
	groupID = 3
)

func newTestRig(t *testing.T, mutate func(*testRig, *Options)) *testRig {
	t.Helper()
	r := &testRig{
		win: newFakeWindow(),
		backend: &fakeBackend{active: 11, windows: map[platform.WindowHandle]string{
			hostHandle: "ontop", 10: "editor", 11: "video", 12: "terminal",
		}},
		surface: &fakeSurface{sizes: map[platform.WindowHandle]platform.Size{
			10: {Width: 800, Height: 600},
			11: {Width: 1600, Height: 900},
			12: {Width: 1280, Height: 720},
		}},
		reporter: &fakeReporter{},
		picker:   &fakePicker{},
	}
	opts := Options{
		Window:   r.win,
		Backend:  r.backend,
		Screens:  r.backend,
		Surface:  r.surface,
		Seeker:   seeker.NewAllWindowSeeker(r.backend),
		Reporter: r.reporter,
		Picker:   r.picker,
		Display:  display.DefaultOptions(),
		Ratio:    4.0 / 3.0,
		HotKeys:  testHotKeys,
		OnClose:  func() { r.closed++ },
	}
	if mutate != nil {
		mutate(r, &opts)
	}
	h, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.host = h
	return r
}

// drain runs the next queued UI call.
func (r *testRig) drain(t *testing.T) {
	t.Helper()
	select {
	case fn := <-r.host.Calls():
		fn()
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a UI call")
	}
}

// serve runs the UI loop until the host closes.
func (r *testRig) serve() {
	go func() {
		for {
			select {
			case fn := <-r.host.Calls():
				fn()
			case <-r.host.Done():
				return
			}
		}
	}()
}
