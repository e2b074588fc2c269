package seeker

import (
	"errors"
	"fmt"
	"testing"

	"github.com/1broseidon/ontop/internal/platform"
)

type fakeBackend struct {
	order []platform.WindowHandle
	meta  map[platform.WindowHandle]platform.WindowMetadata
	fail  map[platform.WindowHandle]error
}

func (f *fakeBackend) EnumerateTopLevelWindows() ([]platform.WindowHandle, error) {
	return f.order, nil
}

func (f *fakeBackend) QueryWindowMetadata(h platform.WindowHandle) (platform.WindowMetadata, error) {
	if err, ok := f.fail[h]; ok {
		return platform.WindowMetadata{}, err
	}
	return f.meta[h], nil
}

func (f *fakeBackend) ActiveWindow() (platform.WindowHandle, error) { return 0, nil }
func (f *fakeBackend) Displays() ([]platform.Display, error)        { return nil, nil }
func (f *fakeBackend) WorkArea(r platform.Rect) (platform.Rect, error) {
	return r, nil
}
func (f *fakeBackend) PrimaryWorkArea() (platform.Rect, error) { return platform.Rect{}, nil }

func visible(title string) platform.WindowMetadata {
	return platform.WindowMetadata{Title: title, Visible: true}
}

func handles(ws []Window) []platform.WindowHandle {
	out := make([]platform.WindowHandle, len(ws))
	for i, w := range ws {
		out[i] = w.Handle
	}
	return out
}

func TestTaskSeekerFiltersAndPreservesOrder(t *testing.T) {
	b := &fakeBackend{
		order: []platform.WindowHandle{5, 4, 3, 2, 1},
		meta: map[platform.WindowHandle]platform.WindowMetadata{
			5: visible("editor"),
			4: {Title: "palette", Visible: true, Tool: true},
			3: visible("browser"),
			2: {Title: "dialog", Visible: true, Owned: true},
			1: {Title: "hidden"},
		},
	}
	s := NewTaskWindowSeeker(b)
	if err := s.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	got := handles(s.Windows())
	if fmt.Sprint(got) != "[5 3]" {
		t.Fatalf("got %v, want [5 3]", got)
	}
}

func TestHiddenWindowsByVariant(t *testing.T) {
	b := &fakeBackend{
		order: []platform.WindowHandle{3, 2, 1},
		meta: map[platform.WindowHandle]platform.WindowMetadata{
			3: visible("editor"),
			2: {Title: "minimized player"},
			1: visible("terminal"),
		},
	}
	tests := []struct {
		name   string
		seeker *BaseSeeker
		want   string
	}{
		{"task", NewTaskWindowSeeker(b), "[3 1]"},
		{"all", NewAllWindowSeeker(b), "[3 2 1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.seeker.Refresh(); err != nil {
				t.Fatalf("Refresh: %v", err)
			}
			ws := tt.seeker.Windows()
			if got := fmt.Sprint(handles(ws)); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
			for _, w := range ws {
				if w.Visible != (w.Handle != 2) {
					t.Fatalf("window %d: Visible = %v", w.Handle, w.Visible)
				}
			}
		})
	}
}

func TestSeekerExcludesOwner(t *testing.T) {
	b := &fakeBackend{
		order: []platform.WindowHandle{7, 8},
		meta: map[platform.WindowHandle]platform.WindowMetadata{
			7: visible("ontop"),
			8: visible("term"),
		},
	}
	s := NewAllWindowSeeker(b)
	s.OwnerHandle = 7
	if err := s.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := handles(s.Windows()); fmt.Sprint(got) != "[8]" {
		t.Fatalf("owner not excluded: %v", got)
	}
}

func TestSeekerSkipsVanishedWindows(t *testing.T) {
	b := &fakeBackend{
		order: []platform.WindowHandle{1, 2, 3},
		meta: map[platform.WindowHandle]platform.WindowMetadata{
			1: visible("a"),
			3: visible("c"),
		},
		fail: map[platform.WindowHandle]error{
			2: fmt.Errorf("get attributes: %w", platform.ErrWindowGone),
		},
	}
	s := NewAllWindowSeeker(b)
	if err := s.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := handles(s.Windows()); fmt.Sprint(got) != "[1 3]" {
		t.Fatalf("got %v", got)
	}
}

func TestSeekerSurfacesOtherErrors(t *testing.T) {
	boom := errors.New("connection lost")
	b := &fakeBackend{
		order: []platform.WindowHandle{1},
		fail:  map[platform.WindowHandle]error{1: boom},
	}
	s := NewAllWindowSeeker(b)
	if err := s.Refresh(); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestRefreshReplacesPreviousList(t *testing.T) {
	b := &fakeBackend{
		order: []platform.WindowHandle{1, 2},
		meta: map[platform.WindowHandle]platform.WindowMetadata{
			1: visible("a"),
			2: visible("b"),
		},
	}
	s := NewAllWindowSeeker(b)
	_ = s.Refresh()
	b.order = []platform.WindowHandle{2}
	_ = s.Refresh()
	if got := handles(s.Windows()); fmt.Sprint(got) != "[2]" {
		t.Fatalf("stale entries kept: %v", got)
	}
	if _, ok := s.Find(1); ok {
		t.Fatalf("Find returned a window from an earlier refresh")
	}
}

func TestNewRejectsUnknownMode(t *testing.T) {
	if _, err := New("bogus", &fakeBackend{}); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	for _, mode := range []string{"", "task", "all"} {
		if _, err := New(mode, &fakeBackend{}); err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
	}
}
