// Package hotkeys binds global hot keys to callbacks and delivers them as a
// message processor on the host window's pipeline.
package hotkeys

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/1broseidon/ontop/internal/msgpump"
	"github.com/1broseidon/ontop/internal/platform"
)

// ErrDuplicateBinding is returned when the same modifier set and key is bound twice.
var ErrDuplicateBinding = errors.New("hot key already bound")

// Callback runs on the UI thread when its hot key fires.
type Callback func()

type binding struct {
	hotKey     platform.HotKey
	callback   Callback
	registered bool
}

// Manager is the hot key message processor.
type Manager struct {
	mu       sync.Mutex
	owner    msgpump.Owner
	bindings map[int]*binding
	nextID   int
	disposed bool
}

// NewManager creates a manager with no bindings.
func NewManager() *Manager {
	return &Manager{bindings: make(map[int]*binding), nextID: 1}
}

// Initialize registers every pending binding with the owner. A binding that
// fails to register is kept but inactive; its error is returned joined with
// any others so unrelated bindings still work.
func (m *Manager) Initialize(owner msgpump.Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.owner = owner
	var errs []error
	for _, id := range m.sortedIDs() {
		if err := m.registerLocked(id, m.bindings[id]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Register binds hk to cb and returns the binding id. When the manager is
// already initialized the hot key is registered with the OS immediately.
func (m *Manager) Register(hk platform.HotKey, cb Callback) (int, error) {
	if hk.Key == "" {
		return 0, fmt.Errorf("hot key %q has no key", hk)
	}
	if cb == nil {
		return 0, fmt.Errorf("hot key %s: nil callback", hk)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disposed {
		return 0, msgpump.ErrClosed
	}
	for _, b := range m.bindings {
		if sameHotKey(b.hotKey, hk) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateBinding, hk)
		}
	}

	id := m.nextID
	m.nextID++
	b := &binding{hotKey: hk, callback: cb}
	m.bindings[id] = b

	if m.owner != nil {
		if err := m.registerLocked(id, b); err != nil {
			delete(m.bindings, id)
			return 0, err
		}
	}
	return id, nil
}

// Unregister removes a binding.
func (m *Manager) Unregister(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bindings[id]
	if !ok {
		return nil
	}
	delete(m.bindings, id)
	if b.registered && m.owner != nil {
		return m.owner.UnregisterHotKey(id)
	}
	return nil
}

// Bindings lists bound hot keys in registration order.
func (m *Manager) Bindings() []platform.HotKey {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]platform.HotKey, 0, len(m.bindings))
	for _, id := range m.sortedIDs() {
		out = append(out, m.bindings[id].hotKey)
	}
	return out
}

// TryHandle consumes hot key messages carrying one of this manager's ids.
func (m *Manager) TryHandle(msg *msgpump.Message) bool {
	if msg.Kind != msgpump.KindHotKey {
		return false
	}

	m.mu.Lock()
	b, ok := m.bindings[msg.HotKeyID]
	m.mu.Unlock()
	if !ok {
		return false
	}

	b.callback()
	return true
}

// Dispose unregisters every binding from the OS.
func (m *Manager) Dispose() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disposed {
		return nil
	}
	m.disposed = true

	var errs []error
	for _, id := range m.sortedIDs() {
		b := m.bindings[id]
		if b.registered && m.owner != nil {
			if err := m.owner.UnregisterHotKey(id); err != nil {
				errs = append(errs, fmt.Errorf("unregister %s: %w", b.hotKey, err))
			}
		}
	}
	m.bindings = make(map[int]*binding)
	return errors.Join(errs...)
}

func (m *Manager) registerLocked(id int, b *binding) error {
	if b.registered {
		return nil
	}
	if err := m.owner.RegisterHotKey(id, b.hotKey); err != nil {
		return fmt.Errorf("register %s: %w", b.hotKey, err)
	}
	b.registered = true
	return nil
}

func (m *Manager) sortedIDs() []int {
	ids := make([]int, 0, len(m.bindings))
	for id := range m.bindings {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func sameHotKey(a, b platform.HotKey) bool {
	return a.Mods == b.Mods && strings.EqualFold(a.Key, b.Key)
}
