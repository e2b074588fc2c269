//go:build linux

package host

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/1broseidon/ontop/internal/config"
	"github.com/1broseidon/ontop/internal/display"
	"github.com/1broseidon/ontop/internal/hostwin"
	"github.com/1broseidon/ontop/internal/ipc"
	"github.com/1broseidon/ontop/internal/notify"
	"github.com/1broseidon/ontop/internal/palette"
	"github.com/1broseidon/ontop/internal/platform"
	"github.com/1broseidon/ontop/internal/runtimepath"
	"github.com/1broseidon/ontop/internal/seeker"
	"github.com/1broseidon/ontop/internal/thumbnail"
	"github.com/1broseidon/ontop/internal/watch"
	"github.com/BurntSushi/xgb/xproto"
)

// RunOptions are the resolved startup values for Run.
type RunOptions struct {
	Config *config.Config
	Logger *slog.Logger
	// Target is cloned at startup when non-zero.
	Target platform.WindowHandle
	Region *platform.Rect
	// Group starts group mode at startup when it has two or more windows.
	Group []platform.WindowHandle
}

// Run opens the thumbnail window and serves it until ctx is cancelled or the
// window is closed.
func Run(ctx context.Context, opts RunOptions) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		return fmt.Errorf("connect to display: %w", err)
	}
	defer backend.Disconnect()
	conn := backend.Connection()

	bindings, err := cfg.HotKeys()
	if err != nil {
		return err
	}

	dopts := display.DefaultOptions()
	dopts.FixMargin = cfg.FixMargin
	dopts.ReassertTopMost = cfg.ReassertTopMost

	bounds := platform.Rect{Width: cfg.InitialSize.Width, Height: cfg.InitialSize.Height}
	if wa, err := backend.PrimaryWorkArea(); err == nil {
		bounds.X = wa.X + dopts.ResetOffset.X
		bounds.Y = wa.Y + dopts.ResetOffset.Y
	}

	// The host does not exist yet when the window and surface are built;
	// nothing they start calls invoke before Run enters the loop.
	var h *Host
	invoke := func(fn func()) { h.Invoke(fn) }

	win, err := hostwin.New(conn, hostwin.Options{
		Title:   "ontop",
		Bounds:  bounds,
		MinSize: dopts.MinSize,
		Invoke:  invoke,
	})
	if err != nil {
		return err
	}
	defer win.Destroy()

	surface, err := thumbnail.New(conn, win.XID(), win.ClientSize(), cfg.RefreshFPS, invoke)
	if err != nil {
		return err
	}
	defer surface.Close()

	notifier := notify.New(ctx, logger, notify.DesktopSender())
	defer notifier.Close()

	sk, err := seeker.New(cfg.Seeker, backend)
	if err != nil {
		return err
	}

	var picker Picker
	if pb, err := palette.NewBackend(cfg.PaletteBackend); err != nil {
		log.Printf("Host: window pickers disabled: %v", err)
	} else {
		picker = PalettePicker{Backend: pb}
	}

	h, err = New(Options{
		Window:   win,
		Backend:  backend,
		Screens:  backend,
		Surface:  surface,
		Seeker:   sk,
		Reporter: notifier,
		Picker:   picker,
		Logger:   logger,
		Display:  dopts,
		Ratio:    cfg.Ratio(),
		HotKeys:  bindings,
		OnClose:  cancel,
	})
	if err != nil {
		return err
	}

	win.SetDispatcher(h.Dispatch)
	win.SetSidePanelCloser(h.CloseSidePanel)
	win.OnConfigure(func(r platform.Rect) { surface.Resize(r.Size()) })
	win.OnExpose(surface.Paint)
	win.OnClick(surface.Forward)
	surface.OnSourceResize = func(size platform.Size) {
		h.check("source resize", h.display.SourceResized(size))
	}

	if err := writePIDFile(); err != nil {
		log.Printf("Host: %v", err)
	}
	defer removePIDFile()

	server, err := startControl(h)
	if err != nil {
		log.Printf("Host: remote control disabled: %v", err)
	} else {
		defer server.Stop()
	}

	live := watch.NewLiveness(watch.Config{
		Interval: cfg.WatchInterval,
		Logger:   logger,
		Invoke:   h.Invoke,
		Target: func() (platform.WindowHandle, bool) {
			t, ok := h.display.Target()
			return t.Handle, ok
		},
		Exists: func(w platform.WindowHandle) bool { return conn.Exists(xproto.Window(w)) },
		OnGone: h.TargetGone,
	})
	go live.Run(ctx)

	switch {
	case len(opts.Group) > 1:
		if err := h.SetThumbnailGroup(opts.Group); err != nil {
			log.Printf("Host: start group: %v", err)
		}
	case opts.Target != 0:
		if err := h.Clone(opts.Target, opts.Region); err != nil {
			log.Printf("Host: initial clone: %v", err)
		}
	}

	log.Printf("ontop running (window 0x%x)", uint32(win.Handle()))
	conn.RunLoop(ctx, h.Calls())

	// The loop is gone; this goroutine is the UI goroutine now.
	if err := h.Close(); err != nil {
		log.Printf("Host: close: %v", err)
	}
	return nil
}

func startControl(h *Host) (*ipc.Server, error) {
	path, err := runtimepath.SocketPath()
	if err != nil {
		return nil, err
	}
	server := ipc.NewServer(path, NewControl(h))
	if err := server.Start(); err != nil {
		return nil, err
	}
	return server, nil
}

func writePIDFile() error {
	path, err := runtimepath.PIDPath()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	return nil
}

func removePIDFile() {
	if path, err := runtimepath.PIDPath(); err == nil {
		_ = os.Remove(path)
	}
}
