//go:build linux

package hotkeys

import (
	"fmt"
	"sync"

	"github.com/1broseidon/ontop/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

type grab struct {
	mods     uint16
	keycodes []xproto.Keycode
}

// X11Registrar grabs hot keys on the root window and reports presses by id.
// It must only be used from the X event loop goroutine.
type X11Registrar struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	deliver func(id int)

	mu        sync.Mutex
	grabs     map[int]grab
	connected bool
}

// NewX11Registrar returns a registrar calling deliver with the binding id on
// every matching key press.
func NewX11Registrar(xu *xgbutil.XUtil, deliver func(id int)) *X11Registrar {
	return &X11Registrar{
		xu:      xu,
		root:    xu.RootWin(),
		deliver: deliver,
		grabs:   make(map[int]grab),
	}
}

// Register grabs hk for id. A grab refused by the server is reported as
// platform.ErrHotKeyConflict.
func (r *X11Registrar) Register(id int, hk platform.HotKey) error {
	mods, keycodes, err := keybind.ParseString(r.xu, hk.String())
	if err != nil {
		return fmt.Errorf("parse %s: %w", hk, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.grabs[id]; exists {
		return fmt.Errorf("hot key id %d already grabbed", id)
	}

	for i, kc := range keycodes {
		if err := keybind.GrabChecked(r.xu, r.root, mods, kc); err != nil {
			for _, prev := range keycodes[:i] {
				keybind.Ungrab(r.xu, r.root, mods, prev)
			}
			if _, ok := err.(xproto.AccessError); ok {
				return fmt.Errorf("%w: %s is grabbed by another client", platform.ErrHotKeyConflict, hk)
			}
			return fmt.Errorf("grab %s: %w", hk, err)
		}
	}
	r.grabs[id] = grab{mods: mods, keycodes: keycodes}

	if !r.connected {
		xevent.KeyPressFun(r.onKeyPress).Connect(r.xu, r.root)
		r.connected = true
	}
	return nil
}

// Unregister releases the grab for id.
func (r *X11Registrar) Unregister(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.grabs[id]
	if !ok {
		return nil
	}
	for _, kc := range g.keycodes {
		keybind.Ungrab(r.xu, r.root, g.mods, kc)
	}
	delete(r.grabs, id)
	return nil
}

func (r *X11Registrar) onKeyPress(_ *xgbutil.XUtil, ev xevent.KeyPressEvent) {
	mods, kc := keybind.DeduceKeyInfo(ev.State, ev.Detail)

	r.mu.Lock()
	id := 0
	for gid, g := range r.grabs {
		if g.mods != mods {
			continue
		}
		for _, gkc := range g.keycodes {
			if gkc == kc {
				id = gid
				break
			}
		}
		if id != 0 {
			break
		}
	}
	r.mu.Unlock()

	if id != 0 {
		r.deliver(id)
	}
}
