// Package msgpump routes window messages through an ordered list of
// processors before the host window's default handling runs.
package msgpump

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/1broseidon/ontop/internal/platform"
)

var (
	// ErrDuplicateProcessor is returned when a processor is registered twice.
	ErrDuplicateProcessor = errors.New("processor already registered")
	// ErrClosed is returned by operations on a closed pipeline.
	ErrClosed = errors.New("message pipeline closed")
)

// Owner is the host window the processors act on.
type Owner interface {
	Handle() platform.WindowHandle
	RegisterHotKey(id int, hk platform.HotKey) error
	UnregisterHotKey(id int) error
	SetThumbnail(h platform.WindowHandle, region *platform.Rect) error
}

// Processor handles a subset of messages.
type Processor interface {
	Initialize(owner Owner) error
	// TryHandle returns true when the message was consumed.
	TryHandle(msg *Message) bool
	Dispose() error
}

// Pipeline dispatches messages to processors in registration order.
type Pipeline struct {
	mu          sync.Mutex
	processors  []Processor
	owner       Owner
	initialized bool
	closed      bool
	closeOnce   sync.Once
	closeErr    error
}

// New creates an empty pipeline.
func New() *Pipeline {
	return &Pipeline{}
}

// Register appends proc. The same processor instance cannot be registered
// twice; distinct instances of one type can. Processors registered after
// Initialize are initialized immediately.
func (p *Pipeline) Register(proc Processor) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if proc == nil {
		return errors.New("register nil processor")
	}
	t := reflect.TypeOf(proc)
	if t.Comparable() {
		for _, existing := range p.processors {
			if existing == proc {
				return fmt.Errorf("%w: %s", ErrDuplicateProcessor, t)
			}
		}
	}
	if p.initialized {
		if err := proc.Initialize(p.owner); err != nil {
			return fmt.Errorf("initialize %s: %w", t, err)
		}
	}
	p.processors = append(p.processors, proc)
	return nil
}

// Initialize hands the owner to every registered processor.
func (p *Pipeline) Initialize(owner Owner) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	p.owner = owner
	p.initialized = true

	var errs []error
	for _, proc := range p.processors {
		if err := proc.Initialize(owner); err != nil {
			errs = append(errs, fmt.Errorf("initialize %s: %w", reflect.TypeOf(proc), err))
		}
	}
	return errors.Join(errs...)
}

// Pump offers msg to each processor in order and stops at the first that
// consumes it. It returns false once the pipeline is closed.
func (p *Pipeline) Pump(msg *Message) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	procs := make([]Processor, len(p.processors))
	copy(procs, p.processors)
	p.mu.Unlock()

	for _, proc := range procs {
		if proc.TryHandle(msg) {
			return true
		}
	}
	return false
}

// Close disposes every processor once. Later calls return the first result.
func (p *Pipeline) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		procs := p.processors
		p.processors = nil
		p.mu.Unlock()

		var errs []error
		for _, proc := range procs {
			if err := proc.Dispose(); err != nil {
				errs = append(errs, fmt.Errorf("dispose %s: %w", reflect.TypeOf(proc), err))
			}
		}
		p.closeErr = errors.Join(errs...)
	})
	return p.closeErr
}

// Get returns the first registered processor of type T.
func Get[T Processor](p *Pipeline) (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, proc := range p.processors {
		if typed, ok := proc.(T); ok {
			return typed, true
		}
	}
	var zero T
	return zero, false
}
