package platform

import "image"

// WindowHandle identifies a native top-level window. It is a lookup key only:
// the window it names may disappear at any time.
type WindowHandle uint32

// Point is a screen coordinate.
type Point struct {
	X int
	Y int
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int
	Height int
}

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Location returns the top-left corner.
func (r Rect) Location() Point { return Point{X: r.X, Y: r.Y} }

// Size returns the rectangle dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Center returns the rectangle midpoint.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Insets is a four-sided padding.
type Insets struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Horizontal returns Left+Right.
func (i Insets) Horizontal() int { return i.Left + i.Right }

// Vertical returns Top+Bottom.
func (i Insets) Vertical() int { return i.Top + i.Bottom }

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect
}

// WindowMetadata is what the window system reports about a top-level window.
type WindowMetadata struct {
	Title       string
	Class       string
	Icon        image.Image
	Visible     bool
	Tool        bool // utility, dock, splash and similar non-application windows
	Owned       bool // transient for another window
	SkipTaskbar bool
}

// Backend abstracts the window-system queries the core needs.
type Backend interface {
	// EnumerateTopLevelWindows lists top-level windows in window-system order.
	EnumerateTopLevelWindows() ([]WindowHandle, error)
	// QueryWindowMetadata returns ErrWindowGone if the window no longer exists.
	QueryWindowMetadata(h WindowHandle) (WindowMetadata, error)
	ActiveWindow() (WindowHandle, error)
	Displays() ([]Display, error)
	// WorkArea returns the usable area of the display containing the center of r.
	WorkArea(r Rect) (Rect, error)
	PrimaryWorkArea() (Rect, error)
}

// DisplayFor picks the display containing the center of r, falling back to
// the first display.
func DisplayFor(displays []Display, r Rect) (Display, bool) {
	if len(displays) == 0 {
		return Display{}, false
	}
	c := r.Center()
	for _, d := range displays {
		if d.Bounds.Contains(c.X, c.Y) {
			return d, true
		}
	}
	return displays[0], true
}
