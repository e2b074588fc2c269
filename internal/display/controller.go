// Package display owns the host window's display mode (normal, fullscreen,
// click-through, click-forwarding) and its thumbnail target.
package display

import (
	"errors"
	"fmt"
	"log"

	"github.com/1broseidon/ontop/internal/aspect"
	"github.com/1broseidon/ontop/internal/platform"
)

// ErrNoThumbnail is returned by operations that need a bound thumbnail.
var ErrNoThumbnail = errors.New("no thumbnail is displayed")

// Window is the host window as seen by the controller.
type Window interface {
	aspect.Sizer
	Bounds() platform.Rect
	SetBounds(platform.Rect) error
	Move(platform.Point) error
	Borderless() bool
	SetBorderless(bool) error
	SetChrome(bool) error
	SetTopMost(bool) error
	SetInputTransparent(bool) error
	WatchModifiers(bool)
	CloseSidePanel()
	Visible() bool
	Show() error
	Hide() error
	Activate() error
}

// Screens resolves work areas.
type Screens interface {
	WorkArea(r platform.Rect) (platform.Rect, error)
	PrimaryWorkArea() (platform.Rect, error)
}

// Surface renders the live thumbnail of a target window.
type Surface interface {
	// Bind starts cloning h and returns its natural size.
	Bind(h platform.WindowHandle) (platform.Size, error)
	// SetRegion limits the thumbnail to region; nil shows the whole window.
	SetRegion(region *platform.Rect) error
	Unbind() error
	IsBound() bool
	SetClickForwarding(on bool)
}

// ErrorReporter shows non-fatal errors to the user without blocking.
type ErrorReporter interface {
	ShowError(title string, err error)
}

// Target is the window currently cloned.
type Target struct {
	Handle      platform.WindowHandle
	Region      *platform.Rect
	NaturalSize platform.Size
}

// SourceSize is the region size when one is selected, else the natural size.
func (t Target) SourceSize() platform.Size {
	if t.Region != nil {
		return t.Region.Size()
	}
	return t.NaturalSize
}

// Options tune the controller.
type Options struct {
	FixMargin       int
	ReassertTopMost bool
	MinSize         platform.Size
	ResetOffset     platform.Point
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		FixMargin:       DefaultFixMargin,
		ReassertTopMost: true,
		MinSize:         platform.Size{Width: 200, Height: 100},
		ResetOffset:     platform.Point{X: 40, Y: 40},
	}
}

// Controller is the display mode state machine. It must only be used from
// the UI goroutine.
type Controller struct {
	win      Window
	screens  Screens
	surface  Surface
	ratio    *aspect.Controller
	reporter ErrorReporter
	opts     Options

	state  State
	target *Target
}

// NewController wires the controller to its collaborators.
func NewController(win Window, screens Screens, surface Surface, ratio *aspect.Controller, reporter ErrorReporter, opts Options) *Controller {
	return &Controller{
		win:      win,
		screens:  screens,
		surface:  surface,
		ratio:    ratio,
		reporter: reporter,
		opts:     opts,
	}
}

// State returns the current display state.
func (c *Controller) State() State { return c.state }

// Target returns the current thumbnail target.
func (c *Controller) Target() (Target, bool) {
	if c.target == nil {
		return Target{}, false
	}
	return *c.target, true
}

// IsShowingThumbnail reports whether a target is bound.
func (c *Controller) IsShowingThumbnail() bool {
	return c.target != nil && c.surface.IsBound()
}

// SetThumbnail clones h, optionally limited to region. A bind failure clears
// the target and stops keeping the ratio, is reported through the error
// reporter and leaves the window geometry untouched.
func (c *Controller) SetThumbnail(h platform.WindowHandle, region *platform.Rect) error {
	if h == 0 {
		return fmt.Errorf("set thumbnail: %w", platform.ErrWindowGone)
	}

	natural, err := c.surface.Bind(h)
	if err != nil {
		_ = c.UnsetThumbnail()
		err = fmt.Errorf("clone window 0x%x: %w", uint32(h), err)
		c.report("Unable to create thumbnail", err)
		return err
	}

	c.target = &Target{Handle: h, NaturalSize: natural}
	log.Printf("Display: cloning window 0x%x (%dx%d)", uint32(h), natural.Width, natural.Height)

	if region != nil {
		if err := c.applyRegion(region); err != nil {
			_ = c.UnsetThumbnail()
			c.report("Unable to create thumbnail", err)
			return err
		}
	}

	if err := c.adoptTargetRatio(); err != nil {
		return err
	}
	if !c.state.Fullscreen() {
		return c.FixPosition()
	}
	return nil
}

// UnsetThumbnail drops the current target and stops keeping the ratio.
func (c *Controller) UnsetThumbnail() error {
	c.clearTarget()
	return c.ratio.SetKeepRatio(false)
}

// SelectedRegion returns the selected region of the current target, if any.
func (c *Controller) SelectedRegion() *platform.Rect {
	if !c.IsShowingThumbnail() || c.target.Region == nil {
		return nil
	}
	r := *c.target.Region
	return &r
}

// SetRegion limits the thumbnail to region, or shows the whole window when
// region is nil. It is a no-op without a thumbnail.
func (c *Controller) SetRegion(region *platform.Rect) error {
	if !c.IsShowingThumbnail() {
		return ErrNoThumbnail
	}
	if err := c.applyRegion(region); err != nil {
		c.report("Unable to select region", err)
		return err
	}
	if err := c.adoptTargetRatio(); err != nil {
		return err
	}
	return c.FixPosition()
}

// SetFullscreen enters or leaves fullscreen. Entering without a thumbnail
// returns ErrNoThumbnail and changes nothing.
func (c *Controller) SetFullscreen(on bool) error {
	if on == c.state.Fullscreen() {
		return nil
	}
	if !on {
		next, effects, _ := c.state.ExitFullscreen()
		return c.transition(next, effects)
	}

	if !c.IsShowingThumbnail() {
		return ErrNoThumbnail
	}
	bounds := c.win.Bounds()
	screen, err := c.screens.WorkArea(bounds)
	if err != nil {
		return fmt.Errorf("fullscreen: %w", err)
	}
	snap := Snapshot{
		Location:   bounds.Location(),
		ClientSize: c.win.ClientSize(),
		Borderless: c.win.Borderless(),
	}
	next, effects, ok := c.state.EnterFullscreen(true, snap, screen)
	if !ok {
		return nil
	}
	return c.transition(next, effects)
}

// ToggleFullscreen flips fullscreen.
func (c *Controller) ToggleFullscreen() error {
	return c.SetFullscreen(!c.state.Fullscreen())
}

// SetClickThrough enables or disables click-through.
func (c *Controller) SetClickThrough(on bool) error {
	next, effects, _ := c.state.WithClickThrough(on)
	return c.transition(next, effects)
}

// SetClickForwarding enables or disables forwarding clicks to the target.
func (c *Controller) SetClickForwarding(on bool) error {
	next, effects, _ := c.state.WithClickForwarding(on)
	return c.transition(next, effects)
}

// HandleEscape runs the escape policy and reports whether anything changed.
func (c *Controller) HandleEscape() (bool, error) {
	next, effects, changed := c.state.Escape()
	if !changed {
		return false, nil
	}
	return true, c.transition(next, effects)
}

// HitTransparent answers a hit test for the given held modifiers.
func (c *Controller) HitTransparent(mods platform.Modifiers) bool {
	return c.state.HitTransparent(mods)
}

// OnActivated turns click-through off when the window gains focus.
func (c *Controller) OnActivated() error {
	if !c.state.ClickThrough {
		return nil
	}
	return c.SetClickThrough(false)
}

// OnDeactivated re-asserts always-on-top, which some window managers drop
// when another window is raised.
func (c *Controller) OnDeactivated() error {
	if !c.opts.ReassertTopMost || c.state.Fullscreen() || !c.win.Visible() {
		return nil
	}
	if err := c.win.SetTopMost(false); err != nil {
		return err
	}
	return c.win.SetTopMost(true)
}

// FitToThumbnail sizes the client area to p times the source size.
func (c *Controller) FitToThumbnail(p float64) error {
	if !c.IsShowingThumbnail() {
		return ErrNoThumbnail
	}
	if !(p > 0) {
		return fmt.Errorf("invalid scale %v", p)
	}
	if c.state.Fullscreen() {
		return nil
	}

	size := ScaleSize(c.target.SourceSize(), p)
	pad := c.ratio.Padding()
	size.Width += pad.Horizontal()
	size.Height += pad.Vertical()
	if err := c.win.SetClientSize(size); err != nil {
		c.report("Unable to fit window", err)
		return err
	}
	return c.FixPosition()
}

// AdjustSize grows (positive delta) or shrinks the window by wheel steps,
// keeping the ratio when it is kept.
func (c *Controller) AdjustSize(delta int) error {
	if delta == 0 || c.state.Fullscreen() {
		return nil
	}

	cur := c.win.ClientSize()
	width := cur.Width + delta*wheelStep
	if width < c.opts.MinSize.Width {
		width = c.opts.MinSize.Width
	}

	var next platform.Size
	if c.ratio.KeepRatio() {
		next = c.ratio.Fit(width)
	} else if cur.Width > 0 {
		next = platform.Size{Width: width, Height: cur.Height * width / cur.Width}
	} else {
		next = platform.Size{Width: width, Height: cur.Height}
	}
	if next.Height < c.opts.MinSize.Height {
		next.Height = c.opts.MinSize.Height
	}
	if err := c.win.SetClientSize(next); err != nil {
		return err
	}
	return c.FixPosition()
}

// wheelStep is the width change in pixels per wheel notch.
const wheelStep = 20

// Reset clears the thumbnail and every mode, then moves the window to the
// top-left of the primary work area at its minimum size.
func (c *Controller) Reset() error {
	var errs []error
	if err := c.SetFullscreen(false); err != nil {
		errs = append(errs, err)
	}
	if err := c.SetClickThrough(false); err != nil {
		errs = append(errs, err)
	}
	if err := c.SetClickForwarding(false); err != nil {
		errs = append(errs, err)
	}
	if err := c.UnsetThumbnail(); err != nil {
		errs = append(errs, err)
	}
	c.win.CloseSidePanel()

	wa, err := c.screens.PrimaryWorkArea()
	if err != nil {
		errs = append(errs, err)
	} else {
		bounds := platform.Rect{
			X:      wa.X + c.opts.ResetOffset.X,
			Y:      wa.Y + c.opts.ResetOffset.Y,
			Width:  c.opts.MinSize.Width,
			Height: c.opts.MinSize.Height,
		}
		if err := c.win.SetBounds(bounds); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EnsureVisible shows and activates the window with click-through off.
func (c *Controller) EnsureVisible() error {
	var errs []error
	if !c.win.Visible() {
		if err := c.win.Show(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.SetClickThrough(false); err != nil {
		errs = append(errs, err)
	}
	if err := c.win.Activate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ToggleVisible hides a visible window (leaving fullscreen first) or brings
// a hidden one back.
func (c *Controller) ToggleVisible() error {
	if !c.win.Visible() {
		return c.EnsureVisible()
	}
	if err := c.SetFullscreen(false); err != nil {
		return err
	}
	return c.win.Hide()
}

// FixPosition keeps the window inside the work area of its screen.
func (c *Controller) FixPosition() error {
	bounds := c.win.Bounds()
	wa, err := c.screens.WorkArea(bounds)
	if err != nil {
		return fmt.Errorf("fix position: %w", err)
	}
	fixed := ClampToWorkArea(bounds, wa, c.opts.FixMargin)
	if fixed == bounds {
		return nil
	}
	return c.win.SetBounds(fixed)
}

// TargetGone clears a target that stopped existing and reports it.
func (c *Controller) TargetGone(h platform.WindowHandle) {
	if c.target == nil || c.target.Handle != h {
		return
	}
	if c.state.Fullscreen() {
		_ = c.SetFullscreen(false)
	}
	_ = c.UnsetThumbnail()
	c.report("Thumbnail lost", fmt.Errorf("window 0x%x: %w", uint32(h), platform.ErrWindowGone))
}

// SourceResized records a new natural size for the target. Without a region
// the window follows the target's new ratio.
func (c *Controller) SourceResized(size platform.Size) error {
	if c.target == nil || size.Width <= 0 || size.Height <= 0 {
		return nil
	}
	c.target.NaturalSize = size
	if c.target.Region != nil {
		return nil
	}
	if err := c.adoptTargetRatio(); err != nil {
		return err
	}
	if c.state.Fullscreen() {
		return nil
	}
	return c.FixPosition()
}

func (c *Controller) applyRegion(region *platform.Rect) error {
	if region != nil && (region.Width <= 0 || region.Height <= 0) {
		return fmt.Errorf("invalid region %dx%d", region.Width, region.Height)
	}
	if err := c.surface.SetRegion(region); err != nil {
		return fmt.Errorf("set region: %w", err)
	}
	if region == nil {
		c.target.Region = nil
	} else {
		r := *region
		c.target.Region = &r
	}
	return nil
}

// adoptTargetRatio keeps the window at the source ratio. The resize is
// suppressed in fullscreen, where the window covers the screen.
func (c *Controller) adoptTargetRatio() error {
	size := c.target.SourceSize()
	if c.state.Fullscreen() {
		c.ratio.AdoptRatio(size)
		return nil
	}
	return c.ratio.SetRatioFromSize(size)
}

func (c *Controller) clearTarget() {
	c.target = nil
	if c.surface.IsBound() {
		if err := c.surface.Unbind(); err != nil {
			log.Printf("Display: unbind failed: %v", err)
		}
	}
}

func (c *Controller) report(title string, err error) {
	if c.reporter != nil {
		c.reporter.ShowError(title, err)
	}
}

// transition commits next and applies its effects in order. Every effect is
// attempted; failures are joined.
func (c *Controller) transition(next State, effects []Effect) error {
	c.state = next

	var errs []error
	for _, e := range effects {
		if err := c.apply(e); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.Kind, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Controller) apply(e Effect) error {
	switch e.Kind {
	case EffectCloseSidePanel:
		c.win.CloseSidePanel()
	case EffectSetBorderless:
		return c.win.SetBorderless(e.On)
	case EffectSetBounds:
		return c.win.SetBounds(e.Rect)
	case EffectSetLocation:
		return c.win.Move(e.Point)
	case EffectSetClientSize:
		return c.win.SetClientSize(e.Size)
	case EffectRefreshAspect:
		if c.ratio.KeepRatio() {
			return c.ratio.Refresh()
		}
	case EffectSetChrome:
		return c.win.SetChrome(e.On)
	case EffectSetTopMost:
		return c.win.SetTopMost(e.On)
	case EffectTrackMouse:
		c.win.WatchModifiers(e.On)
	case EffectSetInputTransparent:
		return c.win.SetInputTransparent(e.On)
	case EffectSetClickForwarding:
		c.surface.SetClickForwarding(e.On)
	default:
		return fmt.Errorf("unknown effect %d", e.Kind)
	}
	return nil
}
