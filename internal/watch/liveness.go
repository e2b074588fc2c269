// Package watch runs background checks whose results are applied on the UI
// goroutine.
package watch

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/ontop/internal/platform"
)

// TargetFunc returns the currently displayed target, if any. It is called on
// the UI goroutine.
type TargetFunc func() (platform.WindowHandle, bool)

// ExistsFunc reports whether a window still exists. It runs on the watcher
// goroutine and must be safe to call from there.
type ExistsFunc func(platform.WindowHandle) bool

// Config tunes a Liveness watcher.
type Config struct {
	Interval time.Duration
	Logger   *slog.Logger
	// Invoke runs fn on the UI goroutine.
	Invoke func(fn func())
	Target TargetFunc
	Exists ExistsFunc
	// OnGone runs on the UI goroutine for a target that disappeared.
	OnGone func(platform.WindowHandle)
}

// Liveness periodically checks that the displayed target still exists.
type Liveness struct {
	cfg Config
}

// NewLiveness creates a watcher. The default interval is two seconds.
func NewLiveness(cfg Config) *Liveness {
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Liveness{cfg: cfg}
}

// Run blocks until ctx is cancelled.
func (l *Liveness) Run(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	l.cfg.Logger.Info("liveness watch started", "interval", l.cfg.Interval)

	for {
		select {
		case <-ctx.Done():
			l.cfg.Logger.Info("liveness watch stopped")
			return
		case <-ticker.C:
			l.check(ctx)
		}
	}
}

// check asks the UI goroutine for the target, probes it here, and hands a
// vanished target back to the UI goroutine.
func (l *Liveness) check(ctx context.Context) {
	defer func() {
		if err := recover(); err != nil {
			l.cfg.Logger.Error("liveness watch panic recovered", "error", err)
		}
	}()

	type snapshot struct {
		h  platform.WindowHandle
		ok bool
	}
	result := make(chan snapshot, 1)
	l.cfg.Invoke(func() {
		h, ok := l.cfg.Target()
		result <- snapshot{h: h, ok: ok}
	})

	var snap snapshot
	select {
	case <-ctx.Done():
		return
	case snap = <-result:
	}
	if !snap.ok || l.cfg.Exists(snap.h) {
		return
	}

	l.cfg.Logger.Info("thumbnail target vanished", "window", uint32(snap.h))
	l.cfg.Invoke(func() {
		// The target may have changed while probing.
		if cur, ok := l.cfg.Target(); ok && cur == snap.h {
			l.cfg.OnGone(snap.h)
		}
	})
}
