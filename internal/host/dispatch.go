package host

import (
	"errors"
	"log"
	"strings"

	"github.com/1broseidon/ontop/internal/display"
	"github.com/1broseidon/ontop/internal/msgpump"
	"github.com/1broseidon/ontop/internal/platform"
)

// fitKeys maps Alt+digit to a scale of the source size.
var fitKeys = map[string]float64{
	"1": 0.25,
	"2": 0.5,
	"3": 1.0,
	"0": 1.0,
	"4": 2.0,
}

// Dispatch offers msg to the pipeline first and falls back to the default
// handling. It returns true when msg was consumed.
func (h *Host) Dispatch(msg *msgpump.Message) bool {
	if h.closed {
		return false
	}
	if msg.Kind == msgpump.KindClose {
		if err := h.Close(); err != nil {
			log.Printf("Host: close: %v", err)
		}
		return true
	}
	if h.pipeline.Pump(msg) {
		return true
	}
	return h.handleDefault(msg)
}

func (h *Host) handleDefault(msg *msgpump.Message) bool {
	switch msg.Kind {
	case msgpump.KindSizing:
		if msg.Rect != nil {
			h.ratio.Sizing(msg.Edge, msg.Rect)
		}
		// The resize itself still completes.
		return false

	case msgpump.KindHitTest:
		if h.display.HitTransparent(msg.Modifiers) {
			msg.Result = msgpump.HitTransparent
		} else {
			msg.Result = msgpump.HitCaption
		}
		return true

	case msgpump.KindNCDoubleClick:
		h.check("toggle fullscreen", h.display.ToggleFullscreen())
		return true

	case msgpump.KindNCRightUp:
		h.openMenu()
		return true

	case msgpump.KindKeyUp:
		return h.handleKey(msg.Key, msg.Modifiers)

	case msgpump.KindMouseWheel:
		h.check("resize", h.display.AdjustSize(msg.Delta))
		return true

	case msgpump.KindActivate:
		h.check("activate", h.display.OnActivated())
		return false

	case msgpump.KindDeactivate:
		h.check("deactivate", h.display.OnDeactivated())
		return false

	case msgpump.KindHotKey:
		log.Printf("Host: unhandled hot key %d", msg.HotKeyID)
		return false

	case msgpump.KindGroupCycle:
		// Group mode is off; start it instead.
		h.pickGroup()
		return true
	}
	return false
}

func (h *Host) handleKey(key string, mods platform.Modifiers) bool {
	switch {
	case strings.EqualFold(key, "Escape"):
		changed, err := h.display.HandleEscape()
		h.check("escape", err)
		return changed
	case mods.Has(platform.ModAlt) && strings.EqualFold(key, "Return"):
		h.check("toggle fullscreen", h.display.ToggleFullscreen())
		return true
	case mods.Has(platform.ModAlt):
		if p, ok := fitKeys[key]; ok {
			h.check("fit", h.display.FitToThumbnail(p))
			return true
		}
	}
	return false
}

// check logs err unless it only says there is nothing to act on.
func (h *Host) check(what string, err error) {
	if err == nil || errors.Is(err, display.ErrNoThumbnail) {
		return
	}
	log.Printf("Host: %s: %v", what, err)
}
