package hotkeys

import (
	"errors"
	"testing"

	"github.com/1broseidon/ontop/internal/msgpump"
	"github.com/1broseidon/ontop/internal/platform"
)

type fakeOwner struct {
	registered map[int]platform.HotKey
	refuse     map[string]bool
	unregs     []int
}

func newFakeOwner() *fakeOwner {
	return &fakeOwner{registered: make(map[int]platform.HotKey), refuse: make(map[string]bool)}
}

func (f *fakeOwner) Handle() platform.WindowHandle { return 42 }

func (f *fakeOwner) RegisterHotKey(id int, hk platform.HotKey) error {
	if f.refuse[hk.String()] {
		return platform.ErrHotKeyConflict
	}
	f.registered[id] = hk
	return nil
}

func (f *fakeOwner) UnregisterHotKey(id int) error {
	delete(f.registered, id)
	f.unregs = append(f.unregs, id)
	return nil
}

func (f *fakeOwner) SetThumbnail(platform.WindowHandle, *platform.Rect) error { return nil }

func mustParse(t *testing.T, s string) platform.HotKey {
	t.Helper()
	hk, err := platform.ParseHotKey(s)
	if err != nil {
		t.Fatalf("ParseHotKey(%q): %v", s, err)
	}
	return hk
}

func TestTwoBindingsFireIndependently(t *testing.T) {
	m := NewManager()
	var opened, cloned int
	openID, err := m.Register(mustParse(t, "Control-Shift-o"), func() { opened++ })
	if err != nil {
		t.Fatalf("Register open: %v", err)
	}
	cloneID, err := m.Register(mustParse(t, "Control-Shift-c"), func() { cloned++ })
	if err != nil {
		t.Fatalf("Register clone: %v", err)
	}

	owner := newFakeOwner()
	if err := m.Initialize(owner); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if len(owner.registered) != 2 {
		t.Fatalf("expected 2 OS registrations, got %d", len(owner.registered))
	}

	if !m.TryHandle(&msgpump.Message{Kind: msgpump.KindHotKey, HotKeyID: openID}) {
		t.Fatalf("open hot key not consumed")
	}
	if !m.TryHandle(&msgpump.Message{Kind: msgpump.KindHotKey, HotKeyID: cloneID}) {
		t.Fatalf("clone hot key not consumed")
	}
	if opened != 1 || cloned != 1 {
		t.Fatalf("callbacks opened=%d cloned=%d", opened, cloned)
	}
}

func TestDuplicateBindingIsRejected(t *testing.T) {
	m := NewManager()
	if _, err := m.Register(mustParse(t, "Control-Shift-o"), func() {}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := m.Register(mustParse(t, "Shift-Ctrl-O"), func() {})
	if !errors.Is(err, ErrDuplicateBinding) {
		t.Fatalf("expected ErrDuplicateBinding, got %v", err)
	}
	if got := len(m.Bindings()); got != 1 {
		t.Fatalf("duplicate overwrote or added a binding: %d", got)
	}
}

func TestConflictDoesNotBlockOtherBindings(t *testing.T) {
	m := NewManager()
	var fired bool
	_, _ = m.Register(mustParse(t, "Control-Shift-o"), func() {})
	okID, _ := m.Register(mustParse(t, "Control-Shift-c"), func() { fired = true })

	owner := newFakeOwner()
	owner.refuse["Control-Shift-o"] = true
	err := m.Initialize(owner)
	if !errors.Is(err, platform.ErrHotKeyConflict) {
		t.Fatalf("expected conflict to be reported, got %v", err)
	}
	if _, ok := owner.registered[okID]; !ok {
		t.Fatalf("unrelated binding was not registered")
	}
	m.TryHandle(&msgpump.Message{Kind: msgpump.KindHotKey, HotKeyID: okID})
	if !fired {
		t.Fatalf("unrelated binding did not fire")
	}
}

func TestIgnoresOtherMessages(t *testing.T) {
	m := NewManager()
	id, _ := m.Register(mustParse(t, "Mod4-t"), func() { t.Fatalf("callback should not run") })
	_ = m.Initialize(newFakeOwner())

	if m.TryHandle(&msgpump.Message{Kind: msgpump.KindKeyUp, HotKeyID: id}) {
		t.Fatalf("non-hotkey message consumed")
	}
	if m.TryHandle(&msgpump.Message{Kind: msgpump.KindHotKey, HotKeyID: id + 100}) {
		t.Fatalf("unknown id consumed")
	}
}

func TestDisposeUnregistersOnce(t *testing.T) {
	m := NewManager()
	_, _ = m.Register(mustParse(t, "Control-Shift-o"), func() {})
	_, _ = m.Register(mustParse(t, "Control-Shift-c"), func() {})
	owner := newFakeOwner()
	_ = m.Initialize(owner)

	if err := m.Dispose(); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	if err := m.Dispose(); err != nil {
		t.Fatalf("second Dispose: %v", err)
	}
	if len(owner.unregs) != 2 || len(owner.registered) != 0 {
		t.Fatalf("unregs=%v remaining=%v", owner.unregs, owner.registered)
	}
	if _, err := m.Register(mustParse(t, "Control-x"), func() {}); !errors.Is(err, msgpump.ErrClosed) {
		t.Fatalf("Register after dispose: %v", err)
	}
}

func TestRegisterAfterInitializeRegistersImmediately(t *testing.T) {
	m := NewManager()
	owner := newFakeOwner()
	_ = m.Initialize(owner)

	id, err := m.Register(mustParse(t, "Control-Shift-g"), func() {})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, ok := owner.registered[id]; !ok {
		t.Fatalf("late binding not registered with owner")
	}

	owner.refuse["Control-Shift-x"] = true
	if _, err := m.Register(mustParse(t, "Control-Shift-x"), func() {}); !errors.Is(err, platform.ErrHotKeyConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(m.Bindings()) != 1 {
		t.Fatalf("refused binding was kept: %v", m.Bindings())
	}
}
