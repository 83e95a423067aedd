package node

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kode4food/surge/cause"
	"github.com/kode4food/surge/internal/fiber"
	"github.com/kode4food/surge/stream"
)

type (
	// serialSink guards a Sink that concurrently running children share.
	// Once closed, it refuses every further message
	serialSink[Msg any] struct {
		sink   stream.Sink[Msg]
		mu     sync.Mutex
		closed bool
	}

	// terminator delivers the first failure raised anywhere inside an
	// operator to its outer Sink, then interrupts the operator
	terminator[Msg any] struct {
		ctx    context.Context
		out    *serialSink[Msg]
		cancel context.CancelCauseFunc
		err    error
		once   sync.Once
		done   atomic.Bool
	}
)

func serialize[Msg any](s stream.Sink[Msg]) *serialSink[Msg] {
	return &serialSink[Msg]{sink: s}
}

func (s *serialSink[Msg]) OnSuccess(ctx context.Context, msg Msg) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return cause.NewInterrupt(fiber.IDFrom(ctx))
	}
	return s.sink.OnSuccess(ctx, msg)
}

func (s *serialSink[_]) OnFailure(ctx context.Context, c *cause.Cause) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sink.OnFailure(ctx, c)
}

// close delivers a terminal failure, after which no message gets through
func (s *serialSink[_]) close(ctx context.Context, c *cause.Cause) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return s.sink.OnFailure(ctx, c)
}

func newTerminator[Msg any](
	ctx context.Context, out *serialSink[Msg], cancel context.CancelCauseFunc,
) *terminator[Msg] {
	return &terminator[Msg]{
		ctx:    ctx,
		out:    out,
		cancel: cancel,
	}
}

func (t *terminator[_]) fail(c *cause.Cause) {
	t.once.Do(func() {
		t.err = t.out.close(t.ctx, c)
		t.done.Store(true)
		t.cancel(&cause.Interrupted{By: fiber.IDFrom(t.ctx)})
	})
}

func (t *terminator[_]) onFailure(_ context.Context, c *cause.Cause) error {
	t.fail(c)
	return nil
}

func (t *terminator[Msg]) onSuccess(ctx context.Context, msg Msg) error {
	return emit(ctx, t.out, msg)
}

// sink is handed to every child. Emissions from an interrupted child are
// refused, and child failures terminate the operator
func (t *terminator[Msg]) sink() stream.Sink[Msg] {
	return stream.MakeSink(t.onSuccess, t.onFailure)
}

// result must only be called once every child has exited
func (t *terminator[_]) result(runErr error) error {
	if t.done.Load() {
		return t.err
	}
	if c := cause.FromContext(t.ctx); c != nil {
		return c
	}
	return runErr
}
