package main

import (
	"testing"

	"github.com/1broseidon/ontop/internal/ipc"
)

func TestParseWindowID(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"4194311", 4194311, false},
		{"0x400007", 0x400007, false},
		{" 0x10 ", 16, false},
		{"0", 0, true},
		{"window", 0, true},
		{"0x1ffffffff", 0, true},
	}
	for _, tt := range tests {
		got, err := parseWindowID(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseWindowID(%q) = %d, want error", tt.in, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("parseWindowID(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestParseWindowIDList(t *testing.T) {
	ids, err := parseWindowIDList("0x10, 17,,18")
	if err != nil {
		t.Fatalf("parseWindowIDList: %v", err)
	}
	if len(ids) != 3 || ids[0] != 16 || ids[2] != 18 {
		t.Fatalf("ids = %v", ids)
	}
	if _, err := parseWindowIDList(" , "); err == nil {
		t.Fatalf("expected error for an empty list")
	}
}

func TestParseRegion(t *testing.T) {
	r, err := parseRegion("10, 20,640,360")
	if err != nil {
		t.Fatalf("parseRegion: %v", err)
	}
	if *r != (ipc.Region{X: 10, Y: 20, Width: 640, Height: 360}) {
		t.Fatalf("region = %+v", *r)
	}
	for _, bad := range []string{"1,2,3", "a,b,c,d", "0,0,0,10", "0,0,10,-1"} {
		if _, err := parseRegion(bad); err == nil {
			t.Errorf("parseRegion(%q) should fail", bad)
		}
	}
}

func TestParseScale(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0.5", 0.5},
		{"50%", 0.5},
		{"200%", 2},
		{"1", 1},
	}
	for _, tt := range tests {
		got, err := parseScale(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("parseScale(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	for _, bad := range []string{"0", "-1", "half", "%"} {
		if _, err := parseScale(bad); err == nil {
			t.Errorf("parseScale(%q) should fail", bad)
		}
	}
}

func TestParseSwitch(t *testing.T) {
	tests := []struct {
		in      string
		on, set bool
		wantErr bool
	}{
		{"", false, false, false},
		{"on", true, true, false},
		{"OFF", false, true, false},
		{"maybe", false, false, true},
	}
	for _, tt := range tests {
		on, set, err := parseSwitch(tt.in)
		if (err != nil) != tt.wantErr || on != tt.on || set != tt.set {
			t.Errorf("parseSwitch(%q) = %v, %v, %v", tt.in, on, set, err)
		}
	}
}

func TestFormatWindowLine(t *testing.T) {
	w := ipc.WindowInfo{ID: 0x400007, Title: "A very long window title", Class: "Firefox"}
	full := formatWindowLine(w, 0)
	if full != "0x00400007  Firefox           A very long window title" {
		t.Fatalf("line = %q", full)
	}
	cut := formatWindowLine(w, 20)
	if len([]rune(cut)) != 20 || cut[len(cut)-len("…"):] != "…" {
		t.Fatalf("cut line = %q", cut)
	}
}
