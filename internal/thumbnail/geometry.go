// Package thumbnail renders a live, scaled copy of another window into the
// host window using the X Composite and Render extensions.
package thumbnail

import "github.com/1broseidon/ontop/internal/platform"

// sourceRect is the part of the target shown: the region clipped to the
// target, or the whole target.
func sourceRect(natural platform.Size, region *platform.Rect) platform.Rect {
	full := platform.Rect{Width: natural.Width, Height: natural.Height}
	if region == nil {
		return full
	}

	r := *region
	if r.X < 0 {
		r.Width += r.X
		r.X = 0
	}
	if r.Y < 0 {
		r.Height += r.Y
		r.Y = 0
	}
	r.Width = min(r.Width, full.Width-r.X)
	r.Height = min(r.Height, full.Height-r.Y)
	if r.Width <= 0 || r.Height <= 0 {
		return full
	}
	return r
}

// scale returns the source pixels per destination pixel on each axis.
func scale(src platform.Rect, dst platform.Size) (float64, float64) {
	if dst.Width <= 0 || dst.Height <= 0 {
		return 1, 1
	}
	return float64(src.Width) / float64(dst.Width), float64(src.Height) / float64(dst.Height)
}

// mapPoint converts a point in the host window to target window coordinates.
func mapPoint(p platform.Point, src platform.Rect, dst platform.Size) platform.Point {
	sx, sy := scale(src, dst)
	return platform.Point{
		X: src.X + int(float64(p.X)*sx),
		Y: src.Y + int(float64(p.Y)*sy),
	}
}

// toFixed converts to the 16.16 fixed point used by Render transforms.
func toFixed(v float64) int32 {
	return int32(v * 65536)
}
