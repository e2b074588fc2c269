package platform

import "testing"

func TestParseHotKey(t *testing.T) {
	tests := []struct {
		in      string
		want    HotKey
		wantErr bool
	}{
		{in: "Control-Shift-o", want: HotKey{Mods: ModControl | ModShift, Key: "o"}},
		{in: "Mod4-Mod1-t", want: HotKey{Mods: ModSuper | ModAlt, Key: "t"}},
		{in: "ctrl-alt-F5", want: HotKey{Mods: ModControl | ModAlt, Key: "F5"}},
		{in: "Escape", want: HotKey{Key: "Escape"}},
		{in: "", wantErr: true},
		{in: "Control-Shift", wantErr: true},
		{in: "Control--o", wantErr: true},
		{in: "Control-a-b", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseHotKey(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseHotKey(%q) expected error, got %+v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseHotKey(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseHotKey(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestHotKeyStringRoundTrips(t *testing.T) {
	hk := HotKey{Mods: ModShift | ModControl, Key: "c"}
	if got := hk.String(); got != "Control-Shift-c" {
		t.Fatalf("String() = %q", got)
	}
	back, err := ParseHotKey(hk.String())
	if err != nil || back != hk {
		t.Fatalf("ParseHotKey(String()) = %+v, %v", back, err)
	}
}

func TestDisplayForPicksContainingDisplay(t *testing.T) {
	displays := []Display{
		{ID: 0, Bounds: Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
		{ID: 1, Bounds: Rect{X: 1920, Y: 0, Width: 1280, Height: 1024}},
	}
	d, ok := DisplayFor(displays, Rect{X: 2000, Y: 100, Width: 300, Height: 200})
	if !ok || d.ID != 1 {
		t.Fatalf("expected display 1, got %+v ok=%v", d, ok)
	}
	d, ok = DisplayFor(displays, Rect{X: -5000, Y: -5000, Width: 10, Height: 10})
	if !ok || d.ID != 0 {
		t.Fatalf("expected fallback display 0, got %+v ok=%v", d, ok)
	}
	if _, ok := DisplayFor(nil, Rect{}); ok {
		t.Fatalf("expected no display for empty list")
	}
}
