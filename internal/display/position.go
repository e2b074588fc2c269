package display

import "github.com/1broseidon/ontop/internal/platform"

// DefaultFixMargin is the gap kept from the work area edges when clamping.
const DefaultFixMargin = 10

// ClampToWorkArea shrinks bounds that do not fit in wa to the work area size
// minus margin, then moves them back inside wa. Each axis is fixed
// independently so the other dimension is preserved.
func ClampToWorkArea(bounds, wa platform.Rect, margin int) platform.Rect {
	out := bounds

	if out.Width > wa.Width {
		out.Width = wa.Width - margin
	}
	if out.Height > wa.Height {
		out.Height = wa.Height - margin
	}

	if out.Right() > wa.Right() {
		out.X = wa.Right() - out.Width - margin
	}
	if out.Bottom() > wa.Bottom() {
		out.Y = wa.Bottom() - out.Height - margin
	}
	if out.X < wa.X {
		out.X = wa.X
	}
	if out.Y < wa.Y {
		out.Y = wa.Y
	}
	return out
}

// ScaleSize multiplies size by p, truncating toward zero.
func ScaleSize(size platform.Size, p float64) platform.Size {
	return platform.Size{
		Width:  int(float64(size.Width) * p),
		Height: int(float64(size.Height) * p),
	}
}
