package signal

import (
	"context"
	"sync"

	"github.com/kode4food/surge/cause"
)

// Deferred is a one-shot completion signal. The first call to Resolve wins
// and every later call is ignored
type Deferred struct {
	done chan struct{}
	err  error
	mu   sync.Mutex
}

// MakeDeferred returns a new, unresolved Deferred
func MakeDeferred() *Deferred {
	return &Deferred{
		done: make(chan struct{}),
	}
}

// Resolve completes the Deferred with the provided result, which may be
// nil. It reports whether this call was the one that resolved it
func (d *Deferred) Resolve(err error) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	select {
	case <-d.done:
		return false
	default:
		d.err = err
		close(d.done)
		return true
	}
}

// Wait returns a channel that is closed once the Deferred is resolved
func (d *Deferred) Wait() <-chan struct{} {
	return d.done
}

// IsResolved returns whether the Deferred has been resolved
func (d *Deferred) IsResolved() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

// Err returns the result of a resolved Deferred, or nil if it is still
// pending
func (d *Deferred) Err() error {
	if !d.IsResolved() {
		return nil
	}
	return d.err
}

// Await blocks until the Deferred is resolved or the Context is cancelled
func (d *Deferred) Await(ctx context.Context) error {
	if d.IsResolved() {
		return d.err
	}
	select {
	case <-d.done:
		return d.err
	case <-ctx.Done():
		return cause.FromContext(ctx)
	}
}
