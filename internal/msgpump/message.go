package msgpump

import (
	"github.com/1broseidon/ontop/internal/aspect"
	"github.com/1broseidon/ontop/internal/platform"
)

// Kind identifies the type of window message.
type Kind int

const (
	KindHotKey Kind = iota + 1
	KindSizing
	KindHitTest
	KindNCDoubleClick
	KindNCRightUp
	KindKeyUp
	KindActivate
	KindDeactivate
	KindWindowActivated
	KindGroupCycle
	KindMouseWheel
	KindClose
)

var kindNames = map[Kind]string{
	KindHotKey:          "hotkey",
	KindSizing:          "sizing",
	KindHitTest:         "hittest",
	KindNCDoubleClick:   "nc-double-click",
	KindNCRightUp:       "nc-right-up",
	KindKeyUp:           "key-up",
	KindActivate:        "activate",
	KindDeactivate:      "deactivate",
	KindWindowActivated: "window-activated",
	KindGroupCycle:      "group-cycle",
	KindMouseWheel:      "mouse-wheel",
	KindClose:           "close",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// HitResult is the answer to a KindHitTest message.
type HitResult int

const (
	HitDefault HitResult = iota
	HitClient
	HitCaption
	HitTransparent
)

// Message is one window message flowing through the pipeline. Processors may
// mutate Rect (sizing) and Result (hit testing) in place.
type Message struct {
	Kind Kind

	// HotKeyID is set for KindHotKey.
	HotKeyID int

	// Edge and Rect are set for KindSizing.
	Edge aspect.Edge
	Rect *platform.Rect

	// Point and Modifiers describe the pointer for hit tests and clicks.
	Point     platform.Point
	Modifiers platform.Modifiers

	// Key is the key name for KindKeyUp.
	Key string

	// Window is the newly activated window for KindWindowActivated.
	Window platform.WindowHandle

	// Delta is the wheel step count for KindMouseWheel; positive is up.
	Delta int

	Result HitResult
}
