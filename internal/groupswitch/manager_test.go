package groupswitch

import (
	"errors"
	"fmt"
	"testing"

	"github.com/1broseidon/ontop/internal/msgpump"
	"github.com/1broseidon/ontop/internal/platform"
)

type fakeOwner struct {
	shown []platform.WindowHandle
	dead  map[platform.WindowHandle]bool
}

func (f *fakeOwner) Handle() platform.WindowHandle             { return 99 }
func (f *fakeOwner) RegisterHotKey(int, platform.HotKey) error { return nil }
func (f *fakeOwner) UnregisterHotKey(int) error                { return nil }

func (f *fakeOwner) SetThumbnail(h platform.WindowHandle, _ *platform.Rect) error {
	if f.dead[h] {
		return platform.ErrWindowGone
	}
	f.shown = append(f.shown, h)
	return nil
}

func (f *fakeOwner) last() platform.WindowHandle {
	if len(f.shown) == 0 {
		return 0
	}
	return f.shown[len(f.shown)-1]
}

func newActive(t *testing.T, owner *fakeOwner, handles ...platform.WindowHandle) *Manager {
	t.Helper()
	m := NewManager(nil)
	if err := m.Initialize(owner); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := m.EnableGroupMode(handles); err != nil {
		t.Fatalf("EnableGroupMode: %v", err)
	}
	return m
}

func cycle(m *Manager) bool {
	return m.TryHandle(&msgpump.Message{Kind: msgpump.KindGroupCycle})
}

func TestCycleWraps(t *testing.T) {
	owner := &fakeOwner{}
	m := newActive(t, owner, 1, 2, 3)

	for i := 0; i < 3; i++ {
		if !cycle(m) {
			t.Fatalf("cycle %d not consumed", i)
		}
	}
	if got := fmt.Sprint(owner.shown); got != "[1 2 3 1]" {
		t.Fatalf("shown = %s, want [1 2 3 1]", got)
	}
}

func TestDisableKeepsLastTarget(t *testing.T) {
	owner := &fakeOwner{}
	m := newActive(t, owner, 1, 2, 3)
	cycle(m)

	disabled := false
	m.OnDisabled = func() { disabled = true }
	m.Disable()

	if m.IsActive() || !disabled {
		t.Fatalf("expected inactive with OnDisabled called")
	}
	if owner.last() != 2 || len(owner.shown) != 2 {
		t.Fatalf("Disable changed displayed target: %v", owner.shown)
	}
	if cycle(m) {
		t.Fatalf("inactive manager consumed cycle message")
	}
}

func TestEnableRejectsTooFewWindows(t *testing.T) {
	m := NewManager(nil)
	_ = m.Initialize(&fakeOwner{})

	cases := [][]platform.WindowHandle{nil, {1}, {1, 1}, {1, 99}}
	for _, handles := range cases {
		if err := m.EnableGroupMode(handles); !errors.Is(err, ErrTooFewWindows) {
			t.Fatalf("EnableGroupMode(%v) = %v", handles, err)
		}
	}
	if m.IsActive() {
		t.Fatalf("manager active after rejected enable")
	}
}

func TestActivationOfShownTargetAdvances(t *testing.T) {
	owner := &fakeOwner{}
	m := newActive(t, owner, 1, 2)

	consumed := m.TryHandle(&msgpump.Message{Kind: msgpump.KindWindowActivated, Window: 1})
	if consumed {
		t.Fatalf("activation message must pass through")
	}
	if owner.last() != 2 {
		t.Fatalf("expected advance to 2, shown %v", owner.shown)
	}

	m.TryHandle(&msgpump.Message{Kind: msgpump.KindWindowActivated, Window: 7})
	if owner.last() != 2 {
		t.Fatalf("unrelated activation advanced the group: %v", owner.shown)
	}
}

func TestDeadTargetsAreDropped(t *testing.T) {
	owner := &fakeOwner{dead: map[platform.WindowHandle]bool{}}
	m := newActive(t, owner, 1, 2, 3)

	owner.dead[2] = true
	cycle(m)
	if owner.last() != 3 {
		t.Fatalf("expected skip to 3, shown %v", owner.shown)
	}
	if got := fmt.Sprint(m.Targets()); got != "[1 3]" {
		t.Fatalf("targets = %s", got)
	}

	owner.dead[1] = true
	cycle(m)
	if m.IsActive() {
		t.Fatalf("group should end with fewer than two live windows")
	}
	if owner.last() != 3 {
		t.Fatalf("last live target should remain shown, got %v", owner.shown)
	}
}

func TestDisposeClearsState(t *testing.T) {
	m := newActive(t, &fakeOwner{}, 1, 2)
	if err := m.Dispose(); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	if m.IsActive() || len(m.Targets()) != 0 {
		t.Fatalf("state not cleared")
	}
}

func TestRemoveShownTargetShowsNext(t *testing.T) {
	owner := &fakeOwner{}
	m := newActive(t, owner, 1, 2, 3)
	cycle(m) // showing 2

	m.Remove(2)
	if got := owner.last(); got != 3 {
		t.Fatalf("expected 3 after removing shown target, got %d", got)
	}
	if cur, _ := m.Current(); cur != 3 {
		t.Fatalf("current = %d", cur)
	}
	cycle(m)
	if got := owner.last(); got != 1 {
		t.Fatalf("expected wrap to 1, got %d", got)
	}

	m.Remove(3)
	if m.IsActive() {
		t.Fatalf("group with one target left should end")
	}
	if got := owner.last(); got != 1 {
		t.Fatalf("ending the group changed the shown target to %d", got)
	}
}

func TestRemoveHiddenTargetKeepsCurrent(t *testing.T) {
	owner := &fakeOwner{}
	m := newActive(t, owner, 1, 2, 3, 4)
	cycle(m)
	cycle(m) // showing 3

	m.Remove(1)
	if cur, _ := m.Current(); cur != 3 {
		t.Fatalf("current = %d, want 3", cur)
	}
	cycle(m)
	if got := owner.last(); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
}

func TestGroupFallsBackToLastLiveTarget(t *testing.T) {
	tests := []struct {
		name      string
		deadFirst []platform.WindowHandle
		deadLater []platform.WindowHandle
		step      func(m *Manager)
		want      string
	}{
		{"cycle onto dead target", nil, []platform.WindowHandle{2}, func(m *Manager) { cycle(m) }, "[1 1]"},
		{"remove shown target", nil, nil, func(m *Manager) { m.Remove(1) }, "[1 2]"},
		{"remove hidden target", nil, nil, func(m *Manager) { m.Remove(2) }, "[1]"},
		{"enable with one live window", []platform.WindowHandle{1}, nil, nil, "[2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner := &fakeOwner{dead: map[platform.WindowHandle]bool{}}
			for _, h := range tt.deadFirst {
				owner.dead[h] = true
			}
			m := newActive(t, owner, 1, 2)
			for _, h := range tt.deadLater {
				owner.dead[h] = true
			}
			if tt.step != nil {
				tt.step(m)
			}

			if m.IsActive() {
				t.Fatalf("group with one live target should end")
			}
			if got := fmt.Sprint(owner.shown); got != tt.want {
				t.Fatalf("shown = %s, want %s", got, tt.want)
			}
		})
	}
}
