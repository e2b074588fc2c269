package host

import (
	"errors"
	"testing"

	"github.com/1broseidon/ontop/internal/aspect"
	"github.com/1broseidon/ontop/internal/ipc"
	"github.com/1broseidon/ontop/internal/msgpump"
	"github.com/1broseidon/ontop/internal/palette"
	"github.com/1broseidon/ontop/internal/platform"
)

func hotKey(id int) *msgpump.Message {
	return &msgpump.Message{Kind: msgpump.KindHotKey, HotKeyID: id}
}

func TestNewRegistersHotKeys(t *testing.T) {
	r := newTestRig(t, nil)
	if len(r.win.hotkeys) != 3 {
		t.Fatalf("expected 3 grabs, got %v", r.win.hotkeys)
	}
	if r.win.hotkeys[cloneID].Key != "c" {
		t.Fatalf("clone binding = %v", r.win.hotkeys[cloneID])
	}
}

func TestDuplicateAndConflictingHotKeysDoNotAbortStartup(t *testing.T) {
	r := newTestRig(t, func(r *testRig, o *Options) {
		o.HotKeys = map[string]platform.HotKey{
			"open_hotkey":        testHotKeys["open_hotkey"],
			"clone_hotkey":       testHotKeys["open_hotkey"],
			"group_cycle_hotkey": testHotKeys["group_cycle_hotkey"],
		}
		r.win.conflicts["g"] = true
	})
	if len(r.win.hotkeys) != 1 {
		t.Fatalf("expected only the open binding grabbed, got %v", r.win.hotkeys)
	}
	if got := len(r.host.HotKeys().Bindings()); got != 2 {
		t.Fatalf("expected the conflicting binding kept inactive, got %d bindings", got)
	}
}

func TestCloneHotKeyClonesActiveWindow(t *testing.T) {
	r := newTestRig(t, nil)
	if !r.host.Dispatch(hotKey(cloneID)) {
		t.Fatalf("hot key not consumed")
	}
	tgt, ok := r.host.Display().Target()
	if !ok || tgt.Handle != 11 {
		t.Fatalf("expected target 11, got %+v", tgt)
	}
	if got := r.win.ClientSize(); got != (platform.Size{Width: 400, Height: 225}) {
		t.Fatalf("client size = %+v", got)
	}
}

func TestCloneActiveSkipsHostWindow(t *testing.T) {
	r := newTestRig(t, nil)
	r.backend.active = hostHandle
	if err := r.host.CloneActive(); !errors.Is(err, ErrNoOtherWindow) {
		t.Fatalf("expected ErrNoOtherWindow, got %v", err)
	}
	if r.host.Display().IsShowingThumbnail() {
		t.Fatalf("host cloned itself")
	}
}

func TestOpenHotKeyTogglesVisibility(t *testing.T) {
	r := newTestRig(t, nil)
	r.host.Dispatch(hotKey(openID))
	if r.win.visible {
		t.Fatalf("expected hidden")
	}
	r.host.Dispatch(hotKey(openID))
	if !r.win.visible {
		t.Fatalf("expected visible again")
	}
}

func TestSizingIsCorrectedButNotConsumed(t *testing.T) {
	r := newTestRig(t, nil)
	_ = r.host.Clone(11, nil)

	rc := platform.Rect{X: 100, Y: 100, Width: 800, Height: 300}
	msg := &msgpump.Message{Kind: msgpump.KindSizing, Edge: aspect.EdgeRight, Rect: &rc}
	if r.host.Dispatch(msg) {
		t.Fatalf("sizing must not be consumed")
	}
	if rc.Width != 800 || rc.Height != 450 {
		t.Fatalf("rect = %+v, want 800x450", rc)
	}
}

func TestHitTestFollowsClickThrough(t *testing.T) {
	r := newTestRig(t, nil)
	_ = r.host.Display().SetClickThrough(true)

	msg := &msgpump.Message{Kind: msgpump.KindHitTest}
	if !r.host.Dispatch(msg) || msg.Result != msgpump.HitTransparent {
		t.Fatalf("expected transparent, got %v", msg.Result)
	}
	msg = &msgpump.Message{Kind: msgpump.KindHitTest, Modifiers: platform.ModAlt}
	r.host.Dispatch(msg)
	if msg.Result != msgpump.HitCaption {
		t.Fatalf("Alt should restore hit testing, got %v", msg.Result)
	}
}

func TestEscapeDisablesClickThroughBeforeFullscreen(t *testing.T) {
	r := newTestRig(t, nil)
	_ = r.host.Clone(11, nil)
	if err := r.host.Display().SetFullscreen(true); err != nil {
		t.Fatalf("fullscreen: %v", err)
	}
	_ = r.host.Display().SetClickThrough(true)

	if !r.host.Dispatch(&msgpump.Message{Kind: msgpump.KindKeyUp, Key: "Escape"}) {
		t.Fatalf("escape not consumed")
	}
	st := r.host.Display().State()
	if st.ClickThrough || !st.Fullscreen() {
		t.Fatalf("unexpected state after escape: %+v", st)
	}
}

func TestAltKeys(t *testing.T) {
	r := newTestRig(t, nil)
	_ = r.host.Clone(11, nil)

	r.host.Dispatch(&msgpump.Message{Kind: msgpump.KindKeyUp, Key: "2", Modifiers: platform.ModAlt})
	if got := r.win.ClientSize(); got != (platform.Size{Width: 800, Height: 450}) {
		t.Fatalf("Alt+2 size = %+v", got)
	}

	r.host.Dispatch(&msgpump.Message{Kind: msgpump.KindKeyUp, Key: "Return", Modifiers: platform.ModAlt})
	if !r.host.Display().State().Fullscreen() {
		t.Fatalf("Alt+Return should enter fullscreen")
	}

	if r.host.Dispatch(&msgpump.Message{Kind: msgpump.KindKeyUp, Key: "2"}) {
		t.Fatalf("plain digit must not be consumed")
	}
}

func TestDoubleClickWithoutThumbnailDoesNothing(t *testing.T) {
	r := newTestRig(t, nil)
	before := r.win.Bounds()
	r.host.Dispatch(&msgpump.Message{Kind: msgpump.KindNCDoubleClick})
	if r.host.Display().State().Fullscreen() || r.win.Bounds() != before {
		t.Fatalf("double click without thumbnail changed the window")
	}
}

func TestSetThumbnailGroup(t *testing.T) {
	r := newTestRig(t, nil)

	if err := r.host.SetThumbnailGroup(nil); err != nil || r.host.Display().IsShowingThumbnail() {
		t.Fatalf("empty group should do nothing")
	}

	if err := r.host.SetThumbnailGroup([]platform.WindowHandle{12}); err != nil {
		t.Fatalf("single: %v", err)
	}
	if r.host.Group().IsActive() {
		t.Fatalf("single window must not start group mode")
	}

	if err := r.host.SetThumbnailGroup([]platform.WindowHandle{10, 11, 12}); err != nil {
		t.Fatalf("group: %v", err)
	}
	if tgt, _ := r.host.Display().Target(); tgt.Handle != 10 {
		t.Fatalf("expected first target shown, got %d", tgt.Handle)
	}

	r.host.Dispatch(hotKey(groupID))
	if tgt, _ := r.host.Display().Target(); tgt.Handle != 11 {
		t.Fatalf("cycle hot key: expected 11, got %d", tgt.Handle)
	}

	// A manual clone leaves group mode.
	_ = r.host.Clone(12, nil)
	if r.host.Group().IsActive() {
		t.Fatalf("clone should end group mode")
	}
}

func TestTargetGone(t *testing.T) {
	r := newTestRig(t, nil)
	_ = r.host.SetThumbnailGroup([]platform.WindowHandle{10, 11, 12})
	r.host.TargetGone(10)
	if tgt, _ := r.host.Display().Target(); tgt.Handle != 11 {
		t.Fatalf("group should move on to 11, got %d", tgt.Handle)
	}

	_ = r.host.Clone(12, nil)
	r.host.TargetGone(12)
	if r.host.Display().IsShowingThumbnail() {
		t.Fatalf("vanished target still shown")
	}
	if len(r.reporter.titles) == 0 {
		t.Fatalf("vanished target was not reported")
	}
}

func TestFailedGroupCycleKeepsLiveTarget(t *testing.T) {
	r := newTestRig(t, nil)
	if err := r.host.SetThumbnailGroup([]platform.WindowHandle{10, 12}); err != nil {
		t.Fatalf("group: %v", err)
	}
	delete(r.surface.sizes, 12)

	r.host.Dispatch(&msgpump.Message{Kind: msgpump.KindGroupCycle})

	if r.host.Group().IsActive() {
		t.Fatalf("group should end once 12 cannot be cloned")
	}
	if tgt, ok := r.host.Display().Target(); !ok || tgt.Handle != 10 {
		t.Fatalf("expected 10 shown again, got %+v (ok=%v)", tgt, ok)
	}
	if r.surface.bound != 10 || !r.host.Display().IsShowingThumbnail() {
		t.Fatalf("surface bound to %d, want 10", r.surface.bound)
	}
	if !r.host.Ratio().KeepRatio() {
		t.Fatalf("re-shown target should keep its ratio")
	}
}

func TestFailedCloneStopsKeepingRatio(t *testing.T) {
	r := newTestRig(t, nil)
	if err := r.host.Clone(10, nil); err != nil {
		t.Fatalf("clone 10: %v", err)
	}
	before := r.win.Bounds()

	if err := r.host.Clone(99, nil); !errors.Is(err, platform.ErrWindowGone) {
		t.Fatalf("clone 99: expected ErrWindowGone, got %v", err)
	}
	if r.host.Display().IsShowingThumbnail() {
		t.Fatalf("failed clone left a thumbnail")
	}
	if r.host.Ratio().KeepRatio() {
		t.Fatalf("failed clone still keeps the ratio")
	}
	if r.win.Bounds() != before {
		t.Fatalf("failed clone moved the window: %+v", r.win.Bounds())
	}
}

func TestCloseDisposesPipelineOnce(t *testing.T) {
	r := newTestRig(t, nil)
	_ = r.host.SetThumbnailGroup([]platform.WindowHandle{10, 11})

	if !r.host.Dispatch(&msgpump.Message{Kind: msgpump.KindClose}) {
		t.Fatalf("close not consumed")
	}
	if len(r.win.hotkeys) != 0 {
		t.Fatalf("hot keys still grabbed: %v", r.win.hotkeys)
	}
	if r.host.Group().IsActive() {
		t.Fatalf("group mode survived close")
	}
	if r.surface.IsBound() {
		t.Fatalf("surface still bound")
	}
	if r.host.Dispatch(hotKey(openID)) {
		t.Fatalf("message dispatched after close")
	}
	_ = r.host.Close()
	if r.closed != 1 {
		t.Fatalf("OnClose ran %d times", r.closed)
	}
	select {
	case <-r.host.Done():
	default:
		t.Fatalf("Done not closed")
	}
	if err := r.host.Do(func() error { return nil }); !errors.Is(err, msgpump.ErrClosed) {
		t.Fatalf("Do after close = %v", err)
	}
}

func TestContextMenuAppliesChoiceOnUIGoroutine(t *testing.T) {
	r := newTestRig(t, nil)
	_ = r.host.Clone(11, nil)
	r.picker.action = "fit:0.5"

	r.host.Dispatch(&msgpump.Message{Kind: msgpump.KindNCRightUp})
	r.drain(t)

	if got := r.win.ClientSize(); got != (platform.Size{Width: 800, Height: 450}) {
		t.Fatalf("menu fit size = %+v", got)
	}
	if len(r.picker.shown) != 1 {
		t.Fatalf("menu shown %d times", len(r.picker.shown))
	}
}

func TestClosedSidePanelResultIsDropped(t *testing.T) {
	r := newTestRig(t, nil)
	_ = r.host.Clone(11, nil)
	r.picker.action = "fit:2"
	before := r.win.ClientSize()

	r.host.Dispatch(&msgpump.Message{Kind: msgpump.KindNCRightUp})
	r.host.CloseSidePanel()
	r.drain(t)

	if r.win.ClientSize() != before {
		t.Fatalf("result of a closed panel was applied")
	}
}

func TestMenuClonePicksWindow(t *testing.T) {
	r := newTestRig(t, nil)
	r.picker.action = actionClone
	r.picker.window = 12

	r.host.Dispatch(&msgpump.Message{Kind: msgpump.KindNCRightUp})
	r.drain(t) // menu result opens the window picker
	r.drain(t) // window picker result

	if tgt, _ := r.host.Display().Target(); tgt.Handle != 12 {
		t.Fatalf("expected 12 cloned, got %d", tgt.Handle)
	}
	for _, w := range r.picker.listed {
		if w.Handle == hostHandle {
			t.Fatalf("host window offered for cloning")
		}
	}
	if len(r.picker.listed) != 3 {
		t.Fatalf("expected 3 windows offered, got %d", len(r.picker.listed))
	}
}

func TestCancelledPickerIsSilent(t *testing.T) {
	r := newTestRig(t, nil)
	r.picker.err = palette.ErrCancelled

	r.host.Dispatch(&msgpump.Message{Kind: msgpump.KindNCRightUp})
	r.drain(t)
	if len(r.reporter.titles) != 0 {
		t.Fatalf("cancel was reported: %v", r.reporter.titles)
	}
}

func TestControlRunsOnUIGoroutine(t *testing.T) {
	r := newTestRig(t, nil)
	r.serve()
	c := NewControl(r.host)

	if err := c.Clone(11, &ipc.Region{Width: 160, Height: 90}); err != nil {
		t.Fatalf("Clone: %v", err)
	}
	st, err := c.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.Showing || st.Target != 11 || st.TargetTitle != "" || st.Mode != "normal" {
		t.Fatalf("unexpected status %+v", st)
	}
	if st.Region == nil || st.Region.Width != 160 {
		t.Fatalf("region missing from status: %+v", st.Region)
	}

	windows, err := c.ListWindows()
	if err != nil || len(windows) != 3 {
		t.Fatalf("ListWindows = %v, %v", windows, err)
	}
	if st, _ := c.Status(); st.TargetTitle != "video" {
		t.Fatalf("title after listing = %q", st.TargetTitle)
	}

	on := true
	if err := c.SetMode(ipc.ModePayload{ClickThrough: &on}); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if st, _ := c.Status(); !st.ClickThrough {
		t.Fatalf("click-through not applied")
	}
	if err := c.Fit(-1); err == nil {
		t.Fatalf("expected error for negative scale")
	}

	if err := c.Group([]uint32{10, 12}); err != nil {
		t.Fatalf("Group: %v", err)
	}
	if st, _ := c.Status(); !st.GroupActive || len(st.Group) != 2 {
		t.Fatalf("group not reported: %+v", st)
	}

	_ = r.host.Do(r.host.Close)
	<-r.host.Done()
}
