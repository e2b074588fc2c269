package platform

import "errors"

var (
	// ErrWindowGone means the handle no longer refers to an existing window.
	ErrWindowGone = errors.New("window is gone or invalid")

	// ErrHotKeyConflict means another client already grabbed the key combination.
	ErrHotKeyConflict = errors.New("hot key already grabbed by another client")

	// ErrNoDisplay means no usable display could be found.
	ErrNoDisplay = errors.New("no display found")
)
