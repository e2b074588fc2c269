// Package host composes one thumbnail window: the message pipeline and its
// processors, the display controller, and the default message handling. Every
// method that touches state runs on the UI goroutine; other goroutines hand
// work over with Invoke or Do.
package host

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"sync"

	"github.com/1broseidon/ontop/internal/aspect"
	"github.com/1broseidon/ontop/internal/display"
	"github.com/1broseidon/ontop/internal/groupswitch"
	"github.com/1broseidon/ontop/internal/hotkeys"
	"github.com/1broseidon/ontop/internal/msgpump"
	"github.com/1broseidon/ontop/internal/palette"
	"github.com/1broseidon/ontop/internal/platform"
	"github.com/1broseidon/ontop/internal/seeker"
)

// ErrNoOtherWindow is returned when cloning the active window finds only the
// host itself.
var ErrNoOtherWindow = errors.New("no other window is active")

// Window is the host window.
type Window interface {
	display.Window
	Handle() platform.WindowHandle
	RegisterHotKey(id int, hk platform.HotKey) error
	UnregisterHotKey(id int) error
}

// Picker asks the user to choose. Its methods block and are called off the
// UI goroutine.
type Picker interface {
	PickWindow(windows []seeker.Window, current platform.WindowHandle) (platform.WindowHandle, error)
	PickGroup(windows []seeker.Window) ([]platform.WindowHandle, error)
	PickAction(title string, items []palette.MenuItem) (string, error)
}

// Options configure a Host.
type Options struct {
	Window   Window
	Backend  platform.Backend
	Screens  display.Screens
	Surface  display.Surface
	Seeker   *seeker.BaseSeeker
	Reporter display.ErrorReporter
	Picker   Picker
	Logger   *slog.Logger

	Display display.Options
	// Ratio is the aspect ratio used before any thumbnail is shown.
	Ratio float64
	// HotKeys maps "open_hotkey", "clone_hotkey" and "group_cycle_hotkey" to
	// bindings. Missing entries are not bound.
	HotKeys map[string]platform.HotKey
	// OnClose runs once on the UI goroutine after the host closed.
	OnClose func()
}

// Host is the composition root for one thumbnail window.
type Host struct {
	win      Window
	backend  platform.Backend
	surface  display.Surface
	seeker   *seeker.BaseSeeker
	reporter display.ErrorReporter
	picker   Picker
	logger   *slog.Logger
	onClose  func()

	ratio    *aspect.Controller
	display  *display.Controller
	pipeline *msgpump.Pipeline
	hotkeys  *hotkeys.Manager
	group    *groupswitch.Manager

	calls    chan func()
	done     chan struct{}
	doneOnce sync.Once
	closed   bool

	// panelSeq identifies the open palette; results from a closed one are dropped.
	panelSeq  int
	panelOpen bool
}

// New builds the host and registers its processors. Hot-key conflicts are
// logged and leave the other bindings working.
func New(opts Options) (*Host, error) {
	if opts.Window == nil || opts.Surface == nil || opts.Screens == nil {
		return nil, fmt.Errorf("host: window, surface and screens are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &Host{
		win:      opts.Window,
		backend:  opts.Backend,
		surface:  opts.Surface,
		seeker:   opts.Seeker,
		reporter: opts.Reporter,
		picker:   opts.Picker,
		logger:   logger,
		onClose:  opts.OnClose,
		calls:    make(chan func(), 64),
		done:     make(chan struct{}),
	}
	if h.seeker != nil {
		h.seeker.OwnerHandle = h.win.Handle()
	}

	h.ratio = aspect.New(h.win)
	if opts.Ratio > 0 {
		h.ratio.SetRatio(opts.Ratio)
	}
	h.display = display.NewController(h.win, opts.Screens, h.surface, h.ratio, h.reporter, opts.Display)

	h.hotkeys = hotkeys.NewManager()
	h.group = groupswitch.NewManager(logger)
	h.group.OnDisabled = func() { log.Printf("Host: group mode ended") }

	h.pipeline = msgpump.New()
	if err := h.pipeline.Register(h.hotkeys); err != nil {
		return nil, err
	}
	if err := h.pipeline.Register(h.group); err != nil {
		return nil, err
	}

	h.bindHotKeys(opts.HotKeys)
	if err := h.pipeline.Initialize(h); err != nil {
		log.Printf("Host: some hot keys are unavailable: %v", err)
	}
	return h, nil
}

func (h *Host) bindHotKeys(bindings map[string]platform.HotKey) {
	actions := []struct {
		name string
		cb   hotkeys.Callback
	}{
		{"open_hotkey", h.onOpenHotKey},
		{"clone_hotkey", h.onCloneHotKey},
		{"group_cycle_hotkey", h.onGroupHotKey},
	}
	for _, a := range actions {
		hk, ok := bindings[a.name]
		if !ok {
			continue
		}
		if _, err := h.hotkeys.Register(hk, a.cb); err != nil {
			log.Printf("Host: %s %s not bound: %v", a.name, hk, err)
			continue
		}
		log.Printf("Host: %s bound to %s", a.name, hk)
	}
}

// Handle implements msgpump.Owner.
func (h *Host) Handle() platform.WindowHandle { return h.win.Handle() }

// RegisterHotKey implements msgpump.Owner.
func (h *Host) RegisterHotKey(id int, hk platform.HotKey) error {
	return h.win.RegisterHotKey(id, hk)
}

// UnregisterHotKey implements msgpump.Owner.
func (h *Host) UnregisterHotKey(id int) error {
	return h.win.UnregisterHotKey(id)
}

// SetThumbnail implements msgpump.Owner. It keeps group mode running, which
// is what lets the group manager swap targets through it.
func (h *Host) SetThumbnail(target platform.WindowHandle, region *platform.Rect) error {
	return h.display.SetThumbnail(target, region)
}

// Display exposes the display controller.
func (h *Host) Display() *display.Controller { return h.display }

// Group exposes the group-switch processor.
func (h *Host) Group() *groupswitch.Manager { return h.group }

// HotKeys exposes the hot-key processor.
func (h *Host) HotKeys() *hotkeys.Manager { return h.hotkeys }

// Ratio exposes the aspect-ratio controller.
func (h *Host) Ratio() *aspect.Controller { return h.ratio }

// Calls is the queue the UI loop drains.
func (h *Host) Calls() <-chan func() { return h.calls }

// Done is closed once the host has closed.
func (h *Host) Done() <-chan struct{} { return h.done }

// Invoke queues fn for the UI goroutine. It drops fn once the host closed.
func (h *Host) Invoke(fn func()) {
	select {
	case <-h.done:
	case h.calls <- fn:
	}
}

// Do runs fn on the UI goroutine and waits for its result. It must not be
// called from the UI goroutine.
func (h *Host) Do(fn func() error) error {
	result := make(chan error, 1)
	select {
	case <-h.done:
		return msgpump.ErrClosed
	case h.calls <- func() { result <- fn() }:
	}
	select {
	case err := <-result:
		return err
	case <-h.done:
		return msgpump.ErrClosed
	}
}

// Close disposes the pipeline before anything else, unbinds the thumbnail and
// runs OnClose. Later calls do nothing.
func (h *Host) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true

	var errs []error
	if err := h.pipeline.Close(); err != nil {
		errs = append(errs, err)
	}
	h.closePanel()
	if h.surface.IsBound() {
		if err := h.surface.Unbind(); err != nil {
			errs = append(errs, err)
		}
	}
	log.Printf("Host: closed")

	if h.onClose != nil {
		h.onClose()
	}
	h.doneOnce.Do(func() { close(h.done) })
	return errors.Join(errs...)
}

// Closed reports whether Close ran.
func (h *Host) Closed() bool { return h.closed }
