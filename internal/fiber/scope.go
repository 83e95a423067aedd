package fiber

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kode4food/surge/cause"
)

// Scope owns a group of Fibers and finalizers, guaranteeing that they are
// cleaned up together. Closing a Scope interrupts every Fiber it still owns,
// waits for them to exit, and then runs its finalizers in reverse order of
// registration
type Scope struct {
	ctx        context.Context
	cancel     context.CancelCauseFunc
	fibers     map[uuid.UUID]*Fiber
	finalizers []func()
	idle       chan struct{}
	closed     chan struct{}
	finished   chan struct{}
	mu         sync.Mutex
}

// NewScope creates a Scope whose Fibers are children of the provided
// Context. Cancelling that Context interrupts them
func NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancelCause(parent)
	idle := make(chan struct{})
	close(idle)
	return &Scope{
		ctx:      ctx,
		cancel:   cancel,
		fibers:   map[uuid.UUID]*Fiber{},
		idle:     idle,
		closed:   make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Context returns the Context shared by the Scope's Fibers
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Fork starts the Task in a new Fiber owned by this Scope. Forking into a
// closing or closed Scope starts the Task already interrupted. A Close that
// is still in progress waits for it
func (s *Scope) Fork(t Task) *Fiber {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.fibers) == 0 {
		s.idle = make(chan struct{})
	}
	f := start(s.ctx, t, s.untrack)
	s.fibers[f.id] = f
	return f
}

func (s *Scope) untrack(f *Fiber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fibers[f.id]; !ok {
		return
	}
	delete(s.fibers, f.id)
	if len(s.fibers) == 0 {
		close(s.idle)
	}
}

// Len returns the number of Fibers currently owned by the Scope
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fibers)
}

// Wait blocks until the Scope owns no running Fibers, without closing it
func (s *Scope) Wait(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return cause.FromContext(ctx)
	}
}

// OnClose registers a finalizer. If the Scope is already closed, the
// finalizer runs immediately
func (s *Scope) OnClose(fn func()) {
	s.mu.Lock()
	if s.isClosed() {
		s.mu.Unlock()
		fn()
		return
	}
	s.finalizers = append(s.finalizers, fn)
	s.mu.Unlock()
}

// Close interrupts the Scope's Fibers, waits for them, and runs the
// finalizers. Fibers forked while Close is waiting are interrupted and
// waited for as well. Concurrent and repeated calls all return once the
// first Close has completed. Close must not be called from one of the
// Scope's own Fibers
func (s *Scope) Close() {
	s.mu.Lock()
	if s.isClosed() {
		s.mu.Unlock()
		<-s.finished
		return
	}
	close(s.closed)
	s.cancel(&cause.Interrupted{By: IDFrom(s.ctx)})
	finalizers := s.finalizers
	s.finalizers = nil
	s.mu.Unlock()

	defer close(s.finished)
	s.awaitIdle()
	for i := len(finalizers) - 1; i >= 0; i-- {
		finalizers[i]()
	}
}

// IsClosed returns whether Close has been called on the Scope
func (s *Scope) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isClosed()
}

func (s *Scope) awaitIdle() {
	for {
		s.mu.Lock()
		if len(s.fibers) == 0 {
			s.mu.Unlock()
			return
		}
		idle := s.idle
		s.mu.Unlock()
		<-idle
	}
}

func (s *Scope) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}
