// Package groupswitch cycles the host window's thumbnail among a fixed group
// of target windows.
package groupswitch

import (
	"errors"
	"log/slog"

	"github.com/1broseidon/ontop/internal/msgpump"
	"github.com/1broseidon/ontop/internal/platform"
)

// ErrTooFewWindows is returned when a group has fewer than two windows.
var ErrTooFewWindows = errors.New("group mode needs at least two windows")

// Manager is the group switch message processor.
type Manager struct {
	owner   msgpump.Owner
	logger  *slog.Logger
	targets []platform.WindowHandle
	current int
	active  bool

	// OnDisabled runs when group mode ends for any reason.
	OnDisabled func()
}

// NewManager creates an inactive manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger}
}

// Initialize stores the owner window.
func (m *Manager) Initialize(owner msgpump.Owner) error {
	m.owner = owner
	return nil
}

// EnableGroupMode starts cycling among handles, showing the first one.
func (m *Manager) EnableGroupMode(handles []platform.WindowHandle) error {
	if m.owner == nil {
		return errors.New("group switch manager not initialized")
	}

	targets := make([]platform.WindowHandle, 0, len(handles))
	seen := make(map[platform.WindowHandle]struct{}, len(handles))
	for _, h := range handles {
		if h == 0 || h == m.owner.Handle() {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		targets = append(targets, h)
	}
	if len(targets) < 2 {
		return ErrTooFewWindows
	}

	m.targets = targets
	m.current = -1
	m.active = true
	m.advance()
	return nil
}

// Disable leaves group mode. The currently displayed target is not touched.
func (m *Manager) Disable() {
	if !m.active {
		return
	}
	m.active = false
	m.targets = nil
	m.current = 0
	if m.OnDisabled != nil {
		m.OnDisabled()
	}
}

// Remove drops h from the group. When h was displayed the next target is
// shown; fewer than two remaining targets end group mode, and a displayed h
// then gives way to the one left.
func (m *Manager) Remove(h platform.WindowHandle) {
	if !m.active {
		return
	}
	idx := -1
	for i, t := range m.targets {
		if t == h {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	m.targets = append(m.targets[:idx], m.targets[idx+1:]...)
	if len(m.targets) < 2 {
		if idx == m.current {
			m.fallBack()
			return
		}
		m.Disable()
		return
	}
	switch {
	case idx == m.current:
		m.current = idx - 1
		m.advance()
	case idx < m.current:
		m.current--
	}
}

// IsActive reports whether group mode is on.
func (m *Manager) IsActive() bool { return m.active }

// Targets returns the group in cycle order.
func (m *Manager) Targets() []platform.WindowHandle {
	out := make([]platform.WindowHandle, len(m.targets))
	copy(out, m.targets)
	return out
}

// Current returns the displayed target.
func (m *Manager) Current() (platform.WindowHandle, bool) {
	if !m.active || m.current < 0 || m.current >= len(m.targets) {
		return 0, false
	}
	return m.targets[m.current], true
}

// TryHandle consumes cycle triggers. Activation of the currently shown target
// also advances the group but leaves the message for default handling.
func (m *Manager) TryHandle(msg *msgpump.Message) bool {
	if !m.active {
		return false
	}

	switch msg.Kind {
	case msgpump.KindGroupCycle:
		m.advance()
		return true
	case msgpump.KindWindowActivated:
		if cur, ok := m.Current(); ok && msg.Window == cur {
			m.advance()
		}
	}
	return false
}

// Dispose clears group state.
func (m *Manager) Dispose() error {
	m.Disable()
	m.owner = nil
	return nil
}

// advance moves to the next target that binds, dropping those that fail. A
// failed bind has already cleared the displayed thumbnail.
func (m *Manager) advance() {
	for m.active && len(m.targets) > 0 {
		next := 0
		if m.current >= 0 {
			next = (m.current + 1) % len(m.targets)
		}
		h := m.targets[next]
		err := m.owner.SetThumbnail(h, nil)
		if err == nil {
			m.current = next
			return
		}

		m.logger.Warn("group target unavailable, dropping", "window", uint32(h), "error", err)
		m.targets = append(m.targets[:next], m.targets[next+1:]...)
		if len(m.targets) < 2 {
			m.fallBack()
			return
		}
		// The next candidate slid into index next.
		m.current = next - 1
		if m.current < 0 {
			m.current = len(m.targets) - 1
		}
	}
}

// fallBack ends group mode once drops left at most one target and shows
// that target alone.
func (m *Manager) fallBack() {
	var survivor platform.WindowHandle
	if len(m.targets) == 1 {
		survivor = m.targets[0]
	}
	m.Disable()
	if survivor == 0 {
		return
	}
	if err := m.owner.SetThumbnail(survivor, nil); err != nil {
		m.logger.Warn("last group target unavailable", "window", uint32(survivor), "error", err)
	}
}
