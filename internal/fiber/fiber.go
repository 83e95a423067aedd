package fiber

import (
	"context"

	"github.com/google/uuid"

	"github.com/kode4food/surge/cause"
)

type (
	// Task is a blocking, cancellable unit of work. A Task is interrupted
	// by cancelling its Context and is expected to return promptly when
	// that happens
	Task func(context.Context) error

	// Fiber is a handle to a Task running in its own goroutine
	Fiber struct {
		id     uuid.UUID
		cancel context.CancelCauseFunc
		done   chan struct{}
		cause  *cause.Cause
	}

	idKey struct{}
)

// ID returns the unique identity of this Fiber
func (f *Fiber) ID() uuid.UUID {
	return f.id
}

// Done returns a channel that is closed once the Fiber has exited and all of
// its deferred finalizers have run
func (f *Fiber) Done() <-chan struct{} {
	return f.done
}

// Cause returns the exit Cause of the Fiber, or nil if it succeeded or is
// still running
func (f *Fiber) Cause() *cause.Cause {
	select {
	case <-f.done:
		return f.cause
	default:
		return nil
	}
}

// Await blocks until the Fiber exits and returns its failure, if any. If
// the Context is cancelled first, the Fiber is left running
func (f *Fiber) Await(ctx context.Context) error {
	select {
	case <-f.done:
		return cause.Err(f.cause)
	case <-ctx.Done():
		return cause.FromContext(ctx)
	}
}

// Interrupt cancels the Fiber on behalf of the fiber running ctx (if any)
// and waits for it to exit. Interrupting an exited Fiber is a no-op. The
// wait is not cancellable: finalizers always get to run
func (f *Fiber) Interrupt(ctx context.Context) error {
	f.cancel(&cause.Interrupted{By: IDFrom(ctx)})
	<-f.done
	return cause.Err(f.cause)
}

// IDFrom returns the id of the Fiber running with the provided Context, or
// uuid.Nil if the Context doesn't belong to a Fiber
func IDFrom(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if id, ok := ctx.Value(idKey{}).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// Exec runs a Task in the calling goroutine, converting its result into a
// Cause. Panics become defects. An error returned because the Context was
// cancelled becomes the interruption recorded on that Context
func Exec(ctx context.Context, t Task) (res *cause.Cause) {
	defer func() {
		if r := recover(); r != nil {
			res = cause.NewDie(r)
		}
	}()
	err := t(ctx)
	if err == nil {
		return nil
	}
	c := cause.FromError(err)
	if c.IsInterruptedOnly() && ctx.Err() != nil {
		if ic := cause.FromContext(ctx); ic.IsInterruptedOnly() {
			return ic
		}
	}
	return c
}

func start(parent context.Context, t Task, onExit func(*Fiber)) *Fiber {
	id := uuid.New()
	ctx, cancel := context.WithCancelCause(
		context.WithValue(parent, idKey{}, id),
	)
	f := &Fiber{
		id:     id,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer func() {
			cancel(nil)
			close(f.done)
			if onExit != nil {
				onExit(f)
			}
		}()
		f.cause = Exec(ctx, t)
	}()
	return f
}
