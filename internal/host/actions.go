package host

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/1broseidon/ontop/internal/msgpump"
	"github.com/1broseidon/ontop/internal/palette"
	"github.com/1broseidon/ontop/internal/platform"
	"github.com/1broseidon/ontop/internal/seeker"
)

// Clone shows target alone, leaving group mode, and makes the window
// visible.
func (h *Host) Clone(target platform.WindowHandle, region *platform.Rect) error {
	if target == h.win.Handle() {
		return fmt.Errorf("cannot clone the thumbnail window itself")
	}
	h.group.Disable()
	if err := h.display.SetThumbnail(target, region); err != nil {
		return err
	}
	if !h.win.Visible() {
		return h.win.Show()
	}
	return nil
}

// CloneActive clones the window that currently has focus.
func (h *Host) CloneActive() error {
	if h.backend == nil {
		return ErrNoOtherWindow
	}
	active, err := h.backend.ActiveWindow()
	if err != nil {
		return fmt.Errorf("active window: %w", err)
	}
	if active == 0 || active == h.win.Handle() {
		return ErrNoOtherWindow
	}
	return h.Clone(active, nil)
}

// SetThumbnailGroup shows one window, or cycles among several. An empty list
// does nothing.
func (h *Host) SetThumbnailGroup(handles []platform.WindowHandle) error {
	switch len(handles) {
	case 0:
		return nil
	case 1:
		return h.Clone(handles[0], nil)
	}
	if err := h.group.EnableGroupMode(handles); err != nil {
		return err
	}
	if !h.win.Visible() {
		return h.win.Show()
	}
	return nil
}

// Unclone drops the thumbnail and ends group mode.
func (h *Host) Unclone() error {
	h.group.Disable()
	return h.display.UnsetThumbnail()
}

// Reset ends group mode and restores the window to its initial state.
func (h *Host) Reset() error {
	h.group.Disable()
	return h.display.Reset()
}

// SetMode changes the given display flags; nil leaves a flag as it is.
func (h *Host) SetMode(fullscreen, clickThrough, clickForwarding *bool) error {
	var errs []error
	if fullscreen != nil {
		errs = append(errs, h.display.SetFullscreen(*fullscreen))
	}
	if clickThrough != nil {
		errs = append(errs, h.display.SetClickThrough(*clickThrough))
	}
	if clickForwarding != nil {
		errs = append(errs, h.display.SetClickForwarding(*clickForwarding))
	}
	return errors.Join(errs...)
}

// TargetGone handles a target that stopped existing. In group mode the group
// moves on, dropping it; otherwise the thumbnail is cleared.
func (h *Host) TargetGone(target platform.WindowHandle) {
	if cur, ok := h.group.Current(); ok && cur == target {
		h.group.Remove(target)
		if h.group.IsActive() {
			return
		}
	}
	h.display.TargetGone(target)
}

// Windows refreshes and returns the clonable windows.
func (h *Host) Windows() ([]seeker.Window, error) {
	if h.seeker == nil {
		return nil, fmt.Errorf("window listing unavailable")
	}
	if err := h.seeker.Refresh(); err != nil {
		return nil, err
	}
	return h.seeker.Windows(), nil
}

// TargetTitle returns the cached title of the current target.
func (h *Host) TargetTitle() string {
	t, ok := h.display.Target()
	if !ok || h.seeker == nil {
		return ""
	}
	if w, ok := h.seeker.Find(t.Handle); ok {
		return w.Title
	}
	return ""
}

func (h *Host) onOpenHotKey() {
	h.check("toggle visible", h.display.ToggleVisible())
}

func (h *Host) onCloneHotKey() {
	if err := h.CloneActive(); err != nil && !errors.Is(err, ErrNoOtherWindow) {
		log.Printf("Host: clone active window: %v", err)
	}
}

// onGroupHotKey cycles an active group and otherwise asks for a new one.
func (h *Host) onGroupHotKey() {
	h.Dispatch(&msgpump.Message{Kind: msgpump.KindGroupCycle})
}

// Menu actions.
const (
	actionClone           = "clone"
	actionGroup           = "group"
	actionUngroup         = "ungroup"
	actionFullscreen      = "fullscreen"
	actionClickThrough    = "click-through"
	actionClickForwarding = "click-forwarding"
	actionWholeWindow     = "whole-window"
	actionUnclone         = "unclone"
	actionReset           = "reset"
	actionHide            = "hide"
	actionQuit            = "quit"
	actionFitPrefix       = "fit:"
)

// menuItems builds the context menu for the current state.
func (h *Host) menuItems() []palette.MenuItem {
	st := h.display.State()
	showing := h.display.IsShowingThumbnail()

	items := []palette.MenuItem{
		{Label: "Clone window…", Action: actionClone, Icon: "window-new"},
		{Label: "Cycle a group of windows…", Action: actionGroup, Icon: "view-grid"},
	}
	if h.group.IsActive() {
		items = append(items, palette.MenuItem{Label: "Stop cycling", Action: actionUngroup, Icon: "media-playback-stop"})
	}
	if showing {
		items = append(items,
			palette.MenuItem{Label: "Fit", Icon: "zoom-fit-best", Submenu: []palette.MenuItem{
				{Label: "25%", Action: actionFitPrefix + "0.25"},
				{Label: "50%", Action: actionFitPrefix + "0.5"},
				{Label: "100%", Action: actionFitPrefix + "1"},
				{Label: "200%", Action: actionFitPrefix + "2"},
			}},
			palette.MenuItem{Label: "Fullscreen", Action: actionFullscreen, IsActive: st.Fullscreen(), Icon: "view-fullscreen"},
		)
		if h.display.SelectedRegion() != nil {
			items = append(items, palette.MenuItem{Label: "Show whole window", Action: actionWholeWindow})
		}
		items = append(items, palette.MenuItem{Label: "Stop cloning", Action: actionUnclone, Icon: "edit-clear"})
	}
	items = append(items,
		palette.MenuItem{Label: "Click-through", Action: actionClickThrough, IsActive: st.ClickThrough},
		palette.MenuItem{Label: "Forward clicks", Action: actionClickForwarding, IsActive: st.ClickForwarding},
		palette.MenuItem{Label: "Reset", Action: actionReset, Icon: "view-restore"},
		palette.MenuItem{Label: "Hide", Action: actionHide, Icon: "go-down"},
		palette.MenuItem{Label: "Quit", Action: actionQuit, Icon: "application-exit"},
	)
	return items
}

// runAction applies a menu choice on the UI goroutine.
func (h *Host) runAction(action string) error {
	st := h.display.State()
	switch {
	case action == actionClone:
		h.pickWindow()
	case action == actionGroup:
		h.pickGroup()
	case action == actionUngroup:
		h.group.Disable()
	case action == actionFullscreen:
		return h.display.ToggleFullscreen()
	case action == actionClickThrough:
		return h.display.SetClickThrough(!st.ClickThrough)
	case action == actionClickForwarding:
		return h.display.SetClickForwarding(!st.ClickForwarding)
	case action == actionWholeWindow:
		return h.display.SetRegion(nil)
	case action == actionUnclone:
		return h.Unclone()
	case action == actionReset:
		return h.Reset()
	case action == actionHide:
		return h.display.ToggleVisible()
	case action == actionQuit:
		return h.Close()
	case strings.HasPrefix(action, actionFitPrefix):
		p, err := strconv.ParseFloat(strings.TrimPrefix(action, actionFitPrefix), 64)
		if err != nil {
			return fmt.Errorf("bad fit action %q", action)
		}
		return h.display.FitToThumbnail(p)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	return nil
}

// openMenu shows the context menu. The palette blocks, so it runs on its
// own goroutine and the choice comes back through Invoke.
func (h *Host) openMenu() {
	if h.picker == nil {
		return
	}
	items := h.menuItems()
	h.openPanel(func() func() {
		action, err := h.picker.PickAction("ontop", items)
		return func() {
			if err != nil {
				h.pickerFailed("menu", err)
				return
			}
			h.check(action, h.runAction(action))
		}
	})
}

func (h *Host) pickWindow() {
	if h.picker == nil {
		return
	}
	windows, err := h.Windows()
	if err != nil {
		h.report("Unable to list windows", err)
		return
	}
	var current platform.WindowHandle
	if t, ok := h.display.Target(); ok {
		current = t.Handle
	}
	h.openPanel(func() func() {
		target, err := h.picker.PickWindow(windows, current)
		return func() {
			if err != nil {
				h.pickerFailed("clone", err)
				return
			}
			if err := h.Clone(target, nil); err != nil {
				log.Printf("Host: clone 0x%x: %v", uint32(target), err)
			}
		}
	})
}

func (h *Host) pickGroup() {
	if h.picker == nil {
		return
	}
	windows, err := h.Windows()
	if err != nil {
		h.report("Unable to list windows", err)
		return
	}
	h.openPanel(func() func() {
		handles, err := h.picker.PickGroup(windows)
		return func() {
			if err != nil {
				h.pickerFailed("group", err)
				h.group.Disable()
				return
			}
			if err := h.SetThumbnailGroup(handles); err != nil {
				h.report("Unable to start group mode", err)
			}
		}
	})
}

// openPanel runs pick off the UI goroutine and applies its result on the UI
// goroutine unless the panel was closed in between. One panel is open at a
// time.
func (h *Host) openPanel(pick func() func()) {
	if h.panelOpen {
		return
	}
	h.panelSeq++
	h.panelOpen = true
	seq := h.panelSeq
	go func() {
		apply := pick()
		h.Invoke(func() {
			if seq != h.panelSeq || h.closed {
				return
			}
			h.panelOpen = false
			apply()
		})
	}()
}

// closePanel discards the result of an open palette.
func (h *Host) closePanel() {
	if !h.panelOpen {
		return
	}
	h.panelSeq++
	h.panelOpen = false
}

// CloseSidePanel is installed as the host window's side panel closer.
func (h *Host) CloseSidePanel() { h.closePanel() }

func (h *Host) pickerFailed(what string, err error) {
	if errors.Is(err, palette.ErrCancelled) {
		return
	}
	h.report("Unable to open "+what+" picker", err)
}

func (h *Host) report(title string, err error) {
	if h.reporter != nil {
		h.reporter.ShowError(title, err)
		return
	}
	log.Printf("Host: %s: %v", title, err)
}
