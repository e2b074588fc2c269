package x11

import (
	"context"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	closeOnce sync.Once
}

var ignoreModsOnce sync.Once

// NewConnection establishes a connection to the X11 server and initializes required extensions
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	// Initialize keybind module (required for global hotkeys)
	keybind.Initialize(xu)
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// RunLoop runs the X event loop and the call queue on one logical UI thread.
// X event callbacks fire between the before/after pings, so functions received
// on calls never overlap an event callback. RunLoop returns when ctx is done or
// the event loop quits.
func (c *Connection) RunLoop(ctx context.Context, calls <-chan func()) {
	pingBefore, pingAfter, pingQuit := xevent.MainPing(c.XUtil)
	for {
		select {
		case <-pingBefore:
			<-pingAfter
		case fn := <-calls:
			fn()
		case <-pingQuit:
			return
		case <-ctx.Done():
			xevent.Quit(c.XUtil)
			return
		}
	}
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.XUtil.Conn().Close()
	})
}

// configureIgnoreMods makes grabs insensitive to CapsLock, NumLock and ScrollLock.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
