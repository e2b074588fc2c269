package hostwin

import (
	"github.com/1broseidon/ontop/internal/aspect"
	"github.com/1broseidon/ontop/internal/platform"
)

// edgeAt returns the resize edge under p (window-relative) for a window of
// the given size, or aspect.EdgeNone when p is in the interior.
func edgeAt(p platform.Point, size platform.Size, border int) aspect.Edge {
	left := p.X < border
	right := p.X >= size.Width-border
	top := p.Y < border
	bottom := p.Y >= size.Height-border

	switch {
	case top && left:
		return aspect.EdgeTopLeft
	case top && right:
		return aspect.EdgeTopRight
	case bottom && left:
		return aspect.EdgeBottomLeft
	case bottom && right:
		return aspect.EdgeBottomRight
	case left:
		return aspect.EdgeLeft
	case right:
		return aspect.EdgeRight
	case top:
		return aspect.EdgeTop
	case bottom:
		return aspect.EdgeBottom
	}
	return aspect.EdgeNone
}

// dragRect applies a pointer delta to start for a drag on edge, never going
// below min.
func dragRect(start platform.Rect, edge aspect.Edge, dx, dy int, min platform.Size) platform.Rect {
	r := start

	switch edge {
	case aspect.EdgeLeft, aspect.EdgeTopLeft, aspect.EdgeBottomLeft:
		w := start.Width - dx
		if w < min.Width {
			w = min.Width
		}
		r.X = start.Right() - w
		r.Width = w
	case aspect.EdgeRight, aspect.EdgeTopRight, aspect.EdgeBottomRight:
		r.Width = max(start.Width+dx, min.Width)
	}

	switch edge {
	case aspect.EdgeTop, aspect.EdgeTopLeft, aspect.EdgeTopRight:
		h := start.Height - dy
		if h < min.Height {
			h = min.Height
		}
		r.Y = start.Bottom() - h
		r.Height = h
	case aspect.EdgeBottom, aspect.EdgeBottomLeft, aspect.EdgeBottomRight:
		r.Height = max(start.Height+dy, min.Height)
	}
	return r
}

// modifiersFromState converts an X key/button state mask.
func modifiersFromState(state uint16) platform.Modifiers {
	var m platform.Modifiers
	if state&maskShift != 0 {
		m |= platform.ModShift
	}
	if state&maskControl != 0 {
		m |= platform.ModControl
	}
	if state&maskMod1 != 0 {
		m |= platform.ModAlt
	}
	if state&maskMod4 != 0 {
		m |= platform.ModSuper
	}
	return m
}

// Core protocol modifier bits (xproto.ModMask*).
const (
	maskShift   = 1 << 0
	maskControl = 1 << 2
	maskMod1    = 1 << 3
	maskMod4    = 1 << 6
)
