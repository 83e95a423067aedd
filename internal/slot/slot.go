package slot

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/kode4food/surge/cause"
	"github.com/kode4food/surge/internal/fiber"
	"github.com/kode4food/surge/internal/ring"
)

//go:generate go run golang.org/x/tools/cmd/stringer -type=Policy

type (
	// Policy governs what happens when a new child arrives while every slot
	// is occupied
	Policy uint8

	// Slot is a supervised group of at most capacity concurrently running
	// child Fibers. Admission decisions are linearized; a child's exit is
	// reconciled under the same state lock
	Slot struct {
		scope     *fiber.Scope
		onFailure func(*cause.Cause)
		logger    *slog.Logger
		gate      *semaphore.Weighted
		buffered  *ring.Buffer[fiber.Task]
		idle      chan struct{}
		active    []*child
		admitting int
		capacity  int
		policy    Policy
		mu        sync.Mutex
	}

	child struct {
		fiber *fiber.Fiber
	}

	// Option configures a Slot
	Option func(*Slot)
)

// Admission policies
const (
	// Drop interrupts the oldest active child and starts the new one in its
	// place. Superseded work is discarded
	Drop Policy = iota

	// Slide discards arrivals while every slot is occupied
	Slide

	// SlideBuffer retains the most recent arrivals while every slot is
	// occupied, promoting them as active children complete
	SlideBuffer
)

// Logger directs the Slot's debug output, such as discarded and overwritten
// arrivals, to the provided Logger. A nil Logger is ignored
func Logger(l *slog.Logger) Option {
	return func(s *Slot) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Slot whose children are owned by the provided Scope. Child
// failures other than interruption are reported to onFailure. Closing the
// Scope interrupts active children and discards buffered ones
func New(
	sc *fiber.Scope, p Policy, capacity int, onFailure func(*cause.Cause),
	o ...Option,
) *Slot {
	capacity = max(capacity, 1)
	idle := make(chan struct{})
	close(idle)
	s := &Slot{
		scope:     sc,
		policy:    p,
		capacity:  capacity,
		onFailure: onFailure,
		logger:    slog.Default(),
		gate:      semaphore.NewWeighted(1),
		buffered:  ring.New[fiber.Task](capacity),
		idle:      idle,
	}
	for _, opt := range o {
		opt(s)
	}
	sc.OnClose(s.discard)
	return s
}

// Policy returns the admission policy of the Slot
func (s *Slot) Policy() Policy {
	return s.policy
}

// Submit offers a new child Task to the Slot. Under Drop, Submit returns
// only after the superseded child has exited
func (s *Slot) Submit(ctx context.Context, t fiber.Task) error {
	if err := s.gate.Acquire(ctx, 1); err != nil {
		return cause.FromContext(ctx)
	}
	defer s.gate.Release(1)

	switch s.policy {
	case Drop:
		s.replace(ctx, t)
	case Slide:
		s.admitOrDiscard(t)
	default:
		s.admitOrBuffer(t)
	}
	return nil
}

// Wait blocks until no child is active, buffered, or being admitted
func (s *Slot) Wait(ctx context.Context) error {
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

// Active returns the number of running children
func (s *Slot) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

func (s *Slot) replace(ctx context.Context, t fiber.Task) {
	s.mu.Lock()
	if len(s.active) < s.capacity {
		s.start(t)
		s.mu.Unlock()
		return
	}
	victim := s.active[0]
	s.active = s.active[1:]
	s.admitting++
	s.mu.Unlock()

	s.logger.Debug("interrupting superseded child", "fiber", victim.fiber.ID())
	_ = victim.fiber.Interrupt(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.admitting--
	if s.isClosing() {
		s.settle()
		return
	}
	s.start(t)
}

func (s *Slot) admitOrDiscard(t fiber.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.active) < s.capacity {
		s.start(t)
		return
	}
	s.logger.Debug("discarding arrival while slot is occupied",
		"policy", s.policy, "active", len(s.active))
}

func (s *Slot) admitOrBuffer(t fiber.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.active) < s.capacity {
		s.start(t)
		return
	}
	if s.buffered.Len() == s.buffered.Cap() {
		s.logger.Debug("overwriting buffered arrival", "policy", s.policy)
	}
	s.buffered.Push(t)
}

// start must be called with the state lock held
func (s *Slot) start(t fiber.Task) {
	if s.isIdle() {
		s.idle = make(chan struct{})
	}
	c := &child{}
	s.active = append(s.active, c)
	c.fiber = s.scope.Fork(func(ctx context.Context) error {
		res := fiber.Exec(ctx, t)
		s.release(c, res)
		return cause.Err(res)
	})
}

func (s *Slot) release(c *child, res *cause.Cause) {
	failed := res != nil && !res.IsInterruptedOnly()

	s.mu.Lock()
	s.remove(c)
	if !failed && !s.isClosing() {
		for len(s.active) < s.capacity {
			t, ok := s.buffered.Shift()
			if !ok {
				break
			}
			s.start(t)
		}
	}
	s.settle()
	s.mu.Unlock()

	if failed && s.onFailure != nil {
		s.onFailure(res)
	}
}

func (s *Slot) remove(c *child) {
	for i, a := range s.active {
		if a == c {
			s.active = append(s.active[:i], s.active[i+1:]...)
			return
		}
	}
}

func (s *Slot) discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffered.Clear()
	s.settle()
}

// settle must be called with the state lock held
func (s *Slot) settle() {
	if len(s.active) != 0 || s.admitting != 0 || s.buffered.Len() != 0 {
		return
	}
	if !s.isIdle() {
		close(s.idle)
	}
}

func (s *Slot) isIdle() bool {
	select {
	case <-s.idle:
		return true
	default:
		return false
	}
}

// isClosing must be called with the state lock held
func (s *Slot) isClosing() bool {
	return s.scope.IsClosed() || s.scope.Context().Err() != nil
}
