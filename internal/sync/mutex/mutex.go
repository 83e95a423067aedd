package mutex

import (
	"sync"
	"sync/atomic"
)

// Sealable is a mutex for structures that are mutable until some terminal
// event, and thereafter read-only. Once sealed, Lock and Unlock become
// no-ops. Everything written before Seal is visible to any goroutine that
// subsequently observes the seal
type Sealable struct {
	mu    sync.Mutex
	state atomic.Int32
}

const (
	sealed int32 = iota - 1
	open
	held
)

// Seal disables all subsequent locking. If the mutex is held, Seal must be
// called by the goroutine holding it, and releases it on that goroutine's
// behalf; a later Unlock by the holder is a no-op. If the mutex is not held,
// Seal waits for it like Lock does
func (m *Sealable) Seal() {
	switch m.state.Load() {
	case sealed:
		return
	case held:
		m.state.Store(sealed)
		m.mu.Unlock()
	default:
		m.mu.Lock()
		m.state.Store(sealed)
		m.mu.Unlock()
	}
}

// IsSealed returns whether the mutex has been sealed
func (m *Sealable) IsSealed() bool {
	return m.state.Load() == sealed
}

// Lock acquires the mutex unless it has been sealed
func (m *Sealable) Lock() {
	if m.IsSealed() {
		return
	}
	m.mu.Lock()
	if m.IsSealed() {
		m.mu.Unlock()
		return
	}
	m.state.Store(held)
}

// Unlock releases the mutex if it is held and not sealed
func (m *Sealable) Unlock() {
	if m.state.Load() == held {
		m.state.Store(open)
		m.mu.Unlock()
	}
}
