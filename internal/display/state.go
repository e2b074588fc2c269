package display

import "github.com/1broseidon/ontop/internal/platform"

// Mode is the window layout mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeFullscreen
)

func (m Mode) String() string {
	if m == ModeFullscreen {
		return "fullscreen"
	}
	return "normal"
}

// Snapshot is the normal-mode geometry saved on entering fullscreen.
type Snapshot struct {
	Location   platform.Point
	ClientSize platform.Size
	Borderless bool
}

// State is the display mode plus its independent overlay flags.
type State struct {
	Mode            Mode
	ClickThrough    bool
	ClickForwarding bool

	snapshot *Snapshot
}

// Fullscreen reports whether the mode is fullscreen.
func (s State) Fullscreen() bool { return s.Mode == ModeFullscreen }

// EffectKind names a side effect a transition requires.
type EffectKind int

const (
	EffectCloseSidePanel EffectKind = iota + 1
	EffectSetBorderless
	EffectSetBounds
	EffectSetLocation
	EffectSetClientSize
	EffectRefreshAspect
	EffectSetChrome
	EffectSetTopMost
	EffectTrackMouse
	EffectSetInputTransparent
	EffectSetClickForwarding
)

var effectNames = map[EffectKind]string{
	EffectCloseSidePanel:      "close-side-panel",
	EffectSetBorderless:       "set-borderless",
	EffectSetBounds:           "set-bounds",
	EffectSetLocation:         "set-location",
	EffectSetClientSize:       "set-client-size",
	EffectRefreshAspect:       "refresh-aspect",
	EffectSetChrome:           "set-chrome",
	EffectSetTopMost:          "set-topmost",
	EffectTrackMouse:          "track-mouse",
	EffectSetInputTransparent: "set-input-transparent",
	EffectSetClickForwarding:  "set-click-forwarding",
}

func (k EffectKind) String() string {
	if s, ok := effectNames[k]; ok {
		return s
	}
	return "unknown"
}

// Effect is one side effect with its argument.
type Effect struct {
	Kind  EffectKind
	On    bool
	Rect  platform.Rect
	Point platform.Point
	Size  platform.Size
}

// EnterFullscreen switches to fullscreen over screen, saving cur for the way
// back. It is rejected (ok=false) without a thumbnail or when already fullscreen.
func (s State) EnterFullscreen(hasThumbnail bool, cur Snapshot, screen platform.Rect) (State, []Effect, bool) {
	if !hasThumbnail || s.Mode == ModeFullscreen {
		return s, nil, false
	}

	snap := cur
	next := s
	next.Mode = ModeFullscreen
	next.snapshot = &snap

	return next, []Effect{
		{Kind: EffectCloseSidePanel},
		{Kind: EffectSetBorderless, On: true},
		{Kind: EffectSetBounds, Rect: screen},
		{Kind: EffectSetChrome, On: false},
		{Kind: EffectSetTopMost, On: false},
		{Kind: EffectTrackMouse, On: false},
	}, true
}

// ExitFullscreen restores the saved snapshot.
func (s State) ExitFullscreen() (State, []Effect, bool) {
	if s.Mode != ModeFullscreen {
		return s, nil, false
	}

	next := s
	next.Mode = ModeNormal
	next.snapshot = nil

	var effects []Effect
	if snap := s.snapshot; snap != nil {
		effects = append(effects,
			Effect{Kind: EffectSetBorderless, On: snap.Borderless},
			Effect{Kind: EffectSetLocation, Point: snap.Location},
			Effect{Kind: EffectSetClientSize, Size: snap.ClientSize},
		)
	} else {
		effects = append(effects, Effect{Kind: EffectSetBorderless, On: false})
	}
	effects = append(effects,
		Effect{Kind: EffectRefreshAspect},
		Effect{Kind: EffectSetChrome, On: true},
		Effect{Kind: EffectSetTopMost, On: true},
		Effect{Kind: EffectTrackMouse, On: next.ClickThrough},
	)
	return next, effects, true
}

// WithClickThrough sets the click-through flag.
func (s State) WithClickThrough(on bool) (State, []Effect, bool) {
	if s.ClickThrough == on {
		return s, nil, false
	}
	next := s
	next.ClickThrough = on
	return next, []Effect{
		{Kind: EffectSetInputTransparent, On: on},
		{Kind: EffectTrackMouse, On: on && s.Mode == ModeNormal},
	}, true
}

// WithClickForwarding sets the click-forwarding flag.
func (s State) WithClickForwarding(on bool) (State, []Effect, bool) {
	if s.ClickForwarding == on {
		return s, nil, false
	}
	next := s
	next.ClickForwarding = on
	return next, []Effect{{Kind: EffectSetClickForwarding, On: on}}, true
}

// Escape applies the first matching escape action: click-through off,
// then leave fullscreen, then click-forwarding off.
func (s State) Escape() (State, []Effect, bool) {
	switch {
	case s.ClickThrough:
		return s.WithClickThrough(false)
	case s.Mode == ModeFullscreen:
		return s.ExitFullscreen()
	case s.ClickForwarding:
		return s.WithClickForwarding(false)
	}
	return s, nil, false
}

// HitTransparent reports whether pointer input should pass through the
// window. Holding Alt restores normal hit testing while click-through is on.
func (s State) HitTransparent(mods platform.Modifiers) bool {
	return s.ClickThrough && !mods.Has(platform.ModAlt)
}
