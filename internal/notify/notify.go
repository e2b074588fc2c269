// Package notify is the single surface for user-visible, non-fatal errors.
// Reports are queued and delivered off the UI goroutine.
package notify

import (
	"context"
	"log/slog"
	"os/exec"
	"sync"
)

const queueSize = 16

// Sender delivers one notification.
type Sender func(summary, body string) error

// Notification is one queued report.
type Notification struct {
	Summary string
	Body    string
}

// Notifier queues error reports and delivers them in the background.
type Notifier struct {
	logger *slog.Logger
	send   Sender
	queue  chan Notification

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// DesktopSender uses notify-send when it is installed.
func DesktopSender() Sender {
	path, err := exec.LookPath("notify-send")
	if err != nil {
		return nil
	}
	return func(summary, body string) error {
		return exec.Command(path, "-a", "ontop", "-u", "normal", "-i", "dialog-warning", summary, body).Run()
	}
}

// New starts a notifier. A nil send only logs.
func New(ctx context.Context, logger *slog.Logger, send Sender) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	n := &Notifier{
		logger: logger,
		send:   send,
		queue:  make(chan Notification, queueSize),
	}
	n.wg.Add(1)
	go n.run(ctx)
	return n
}

// ShowError queues err under title. It never blocks; when the queue is full
// the report is only logged.
func (n *Notifier) ShowError(title string, err error) {
	body := ""
	if err != nil {
		body = err.Error()
	}
	n.logger.Warn(title, "error", body)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	select {
	case n.queue <- Notification{Summary: title, Body: body}:
	default:
		n.logger.Warn("notification queue full, dropping", "summary", title)
	}
}

// Close stops delivery after draining queued reports.
func (n *Notifier) Close() {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()
	n.wg.Wait()
}

func (n *Notifier) run(ctx context.Context) {
	defer n.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case note, ok := <-n.queue:
			if !ok {
				return
			}
			n.deliver(note)
		}
	}
}

func (n *Notifier) deliver(note Notification) {
	if n.send == nil {
		return
	}
	if err := n.send(note.Summary, note.Body); err != nil {
		n.logger.Debug("desktop notification failed", "error", err)
	}
}
