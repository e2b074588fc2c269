// Package seeker enumerates the top-level windows that can be cloned.
package seeker

import (
	"errors"
	"fmt"
	"image"

	"github.com/1broseidon/ontop/internal/platform"
)

// Window is one enumerated window.
type Window struct {
	Handle  platform.WindowHandle
	Title   string
	Class   string
	Icon    image.Image
	Visible bool
}

// Seeker refreshes and exposes a list of windows.
type Seeker interface {
	Refresh() error
	Windows() []Window
}

// Filter decides whether a window is kept.
type Filter func(h platform.WindowHandle, meta platform.WindowMetadata) bool

// BaseSeeker enumerates windows through a backend and applies a filter.
type BaseSeeker struct {
	backend platform.Backend
	filter  Filter
	windows []Window

	// OwnerHandle is never included in results.
	OwnerHandle platform.WindowHandle
	// SkipUntitled drops windows with an empty title.
	SkipUntitled bool
}

// NewTaskWindowSeeker lists windows a user would see in a task bar: visible,
// not tool windows, not owned by another window and not skipping the taskbar.
func NewTaskWindowSeeker(backend platform.Backend) *BaseSeeker {
	return &BaseSeeker{
		backend:      backend,
		SkipUntitled: true,
		filter: func(_ platform.WindowHandle, m platform.WindowMetadata) bool {
			return m.Visible && !m.Tool && !m.Owned && !m.SkipTaskbar
		},
	}
}

// NewAllWindowSeeker lists every top-level window, hidden ones included.
func NewAllWindowSeeker(backend platform.Backend) *BaseSeeker {
	return &BaseSeeker{
		backend: backend,
		filter:  func(platform.WindowHandle, platform.WindowMetadata) bool { return true },
	}
}

// New returns the seeker for a mode name: "task" or "all".
func New(mode string, backend platform.Backend) (*BaseSeeker, error) {
	switch mode {
	case "", "task":
		return NewTaskWindowSeeker(backend), nil
	case "all":
		return NewAllWindowSeeker(backend), nil
	default:
		return nil, fmt.Errorf("unknown seeker mode %q", mode)
	}
}

// Refresh replaces the window list with a fresh enumeration in front-to-back
// order. Windows that vanish between enumeration and inspection are skipped.
func (s *BaseSeeker) Refresh() error {
	handles, err := s.backend.EnumerateTopLevelWindows()
	if err != nil {
		return fmt.Errorf("enumerate windows: %w", err)
	}

	list := make([]Window, 0, len(handles))
	for _, h := range handles {
		if h == s.OwnerHandle && h != 0 {
			continue
		}
		meta, err := s.backend.QueryWindowMetadata(h)
		if err != nil {
			if errors.Is(err, platform.ErrWindowGone) {
				continue
			}
			return fmt.Errorf("query window 0x%x: %w", uint32(h), err)
		}
		if s.SkipUntitled && meta.Title == "" {
			continue
		}
		if !s.filter(h, meta) {
			continue
		}
		list = append(list, Window{
			Handle:  h,
			Title:   meta.Title,
			Class:   meta.Class,
			Icon:    meta.Icon,
			Visible: meta.Visible,
		})
	}
	s.windows = list
	return nil
}

// Windows returns the result of the last Refresh.
func (s *BaseSeeker) Windows() []Window {
	out := make([]Window, len(s.windows))
	copy(out, s.windows)
	return out
}

// Find returns the window with handle h from the last Refresh.
func (s *BaseSeeker) Find(h platform.WindowHandle) (Window, bool) {
	for _, w := range s.windows {
		if w.Handle == h {
			return w, true
		}
	}
	return Window{}, false
}
