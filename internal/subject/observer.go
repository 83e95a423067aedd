package subject

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/kode4food/surge/cause"
	"github.com/kode4food/surge/stream"
)

type (
	// observer is a registered subscriber. Events are queued in its mailbox
	// while the Subject's lock is held and delivered outside of it, so that
	// every observer sees the same order and may write back into the
	// Subject from its own callbacks
	observer[Msg any] struct {
		ctx      context.Context
		sink     stream.Sink[Msg]
		logger   *slog.Logger
		finished chan struct{}
		err      error
		queue    []event[Msg]
		id       uuid.UUID
		mu       sync.Mutex
		draining bool
		stopped  bool
	}

	event[Msg any] struct {
		msg  Msg
		term *terminal
	}

	// terminal is the frozen exit of a Subject. A nil cause is completion
	terminal struct {
		cause *cause.Cause
	}
)

func newObserver[Msg any](
	ctx context.Context, s stream.Sink[Msg], logger *slog.Logger,
) *observer[Msg] {
	return &observer[Msg]{
		id:       uuid.New(),
		ctx:      ctx,
		sink:     s,
		logger:   logger,
		finished: make(chan struct{}),
	}
}

func (o *observer[Msg]) enqueue(e event[Msg]) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.stopped {
		o.queue = append(o.queue, e)
	}
}

// drain delivers queued events until the mailbox is empty. A concurrent or
// reentrant call returns immediately, leaving delivery to the active one
func (o *observer[Msg]) drain() {
	o.mu.Lock()
	if o.draining {
		o.mu.Unlock()
		return
	}
	o.draining = true
	for len(o.queue) != 0 && !o.stopped {
		e := o.queue[0]
		o.queue[0] = event[Msg]{}
		o.queue = o.queue[1:]
		o.mu.Unlock()
		err := o.deliver(e)
		o.mu.Lock()
		switch {
		case err != nil:
			o.logger.Debug("observer failed", "observer", o.id, "error", err)
			o.stop(err)
		case e.term != nil:
			o.stop(nil)
		}
	}
	o.draining = false
	o.mu.Unlock()
}

func (o *observer[Msg]) deliver(e event[Msg]) error {
	if c := cause.FromContext(o.ctx); c != nil {
		return c
	}
	if e.term != nil {
		return finish(o.ctx, o.sink, e.term)
	}
	return o.sink.OnSuccess(o.ctx, e.msg)
}

// stop must be called with the observer's lock held
func (o *observer[_]) stop(err error) {
	if o.stopped {
		return
	}
	o.stopped = true
	o.err = err
	o.queue = nil
	close(o.finished)
}

// wait blocks until the observer has received the terminal signal or
// failed, returning the failure of its Sink
func (o *observer[_]) wait() error {
	select {
	case <-o.finished:
		return o.err
	default:
	}
	select {
	case <-o.finished:
		return o.err
	case <-o.ctx.Done():
		return cause.FromContext(o.ctx)
	}
}

func finish[Msg any](
	ctx context.Context, s stream.Sink[Msg], t *terminal,
) error {
	if t.cause == nil {
		return nil
	}
	return s.OnFailure(ctx, t.cause)
}
