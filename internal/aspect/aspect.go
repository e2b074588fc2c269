// Package aspect keeps a window's client area at a fixed width/height ratio,
// both on programmatic refreshes and while the user drags a resize edge.
package aspect

import (
	"math"

	"github.com/1broseidon/ontop/internal/platform"
)

// Edge is the edge or corner being dragged during an interactive resize.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeLeft
	EdgeRight
	EdgeTop
	EdgeTopLeft
	EdgeTopRight
	EdgeBottom
	EdgeBottomLeft
	EdgeBottomRight
)

func (e Edge) String() string {
	switch e {
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	case EdgeTop:
		return "top"
	case EdgeTopLeft:
		return "top-left"
	case EdgeTopRight:
		return "top-right"
	case EdgeBottom:
		return "bottom"
	case EdgeBottomLeft:
		return "bottom-left"
	case EdgeBottomRight:
		return "bottom-right"
	default:
		return "none"
	}
}

// Sizer is the window whose client area the controller keeps in ratio.
type Sizer interface {
	ClientSize() platform.Size
	SetClientSize(platform.Size) error
}

// Controller owns the aspect ratio state of one window.
type Controller struct {
	win       Sizer
	ratio     float64
	padding   platform.Insets
	keepRatio bool
}

// New creates a controller with ratio 1 and ratio keeping disabled.
func New(win Sizer) *Controller {
	return &Controller{win: win, ratio: 1.0}
}

// Ratio returns width/height.
func (c *Controller) Ratio() float64 { return c.ratio }

// KeepRatio reports whether resizes are constrained.
func (c *Controller) KeepRatio() bool { return c.keepRatio }

// Padding returns the extra padding excluded from the ratio.
func (c *Controller) Padding() platform.Insets { return c.padding }

// SetRatio sets width/height. Non-positive, infinite and NaN values are ignored.
func (c *Controller) SetRatio(value float64) {
	if !(value > 0) || math.IsInf(value, 0) {
		return
	}
	c.ratio = value
}

// SetKeepRatio enables or disables the constraint; enabling refreshes immediately.
func (c *Controller) SetKeepRatio(keep bool) error {
	c.keepRatio = keep
	if keep {
		return c.Refresh()
	}
	return nil
}

// SetPadding changes the padding and refreshes when the ratio is kept.
func (c *Controller) SetPadding(p platform.Insets) error {
	c.padding = p
	if c.keepRatio {
		return c.Refresh()
	}
	return nil
}

// SetRatioFromSize derives the ratio from size, turns the constraint on and refreshes.
func (c *Controller) SetRatioFromSize(size platform.Size) error {
	c.AdoptRatio(size)
	return c.Refresh()
}

// AdoptRatio is SetRatioFromSize without the refresh, for callers that own the
// window geometry at the moment (fullscreen).
func (c *Controller) AdoptRatio(size platform.Size) {
	c.keepRatio = true
	if size.Height != 0 {
		c.SetRatio(float64(size.Width) / float64(size.Height))
	}
}

// Refresh recomputes the client height from the current client width.
func (c *Controller) Refresh() error {
	cur := c.win.ClientSize()
	return c.win.SetClientSize(c.Fit(cur.Width))
}

// Fit returns the client size with the given width that satisfies the ratio.
func (c *Controller) Fit(width int) platform.Size {
	h := int(math.Floor(float64(width-c.padding.Horizontal())/c.ratio)) + c.padding.Vertical()
	return platform.Size{Width: width, Height: h}
}

// Sizing rewrites rc in place for a resize in progress on the given edge.
// It does nothing unless the ratio is kept.
func (c *Controller) Sizing(edge Edge, rc *platform.Rect) {
	if !c.keepRatio || rc == nil {
		return
	}

	switch edge {
	case EdgeLeft, EdgeRight:
		target := c.heightFor(rc.Width)
		diff := rc.Height - target
		rc.Y += diff / 2
		rc.Height = target

	case EdgeTop, EdgeBottom:
		target := c.widthFor(rc.Height)
		diff := rc.Width - target
		rc.X += diff / 2
		rc.Width = target

	case EdgeBottomLeft, EdgeBottomRight:
		rc.Height = c.heightFor(rc.Width)

	case EdgeTopLeft, EdgeTopRight:
		bottom := rc.Bottom()
		rc.Height = c.heightFor(rc.Width)
		rc.Y = bottom - rc.Height
	}
}

func (c *Controller) heightFor(width int) int {
	return int(math.Ceil(float64(width-c.padding.Horizontal())/c.ratio)) + c.padding.Vertical()
}

func (c *Controller) widthFor(height int) int {
	return int(math.Ceil(float64(height-c.padding.Vertical())*c.ratio)) + c.padding.Horizontal()
}
