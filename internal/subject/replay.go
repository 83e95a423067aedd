package subject

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/kode4food/surge/cause"
	"github.com/kode4food/surge/internal/ring"
	"github.com/kode4food/surge/internal/sync/mutex"
	"github.com/kode4food/surge/stream"
	"github.com/kode4food/surge/subject"
	"github.com/kode4food/surge/subject/config"
)

type (
	// Replay is the internal implementation of a replaying Subject. It
	// retains the most recent messages in a ring and replays them to every
	// new observer before forwarding live messages. The first terminal
	// signal seals it: from then on its state is read-only
	Replay[Msg any] struct {
		logger    *slog.Logger
		ring      *ring.Buffer[Msg]
		observers map[uuid.UUID]*observer[Msg]
		done      atomic.Pointer[terminal]
		mu        mutex.Sealable
	}
)

// Make instantiates a new internal Replay Subject
func Make[Msg any](o ...config.Option) (*Replay[Msg], error) {
	cfg, err := config.Apply(o...)
	if err != nil {
		return nil, err
	}
	return &Replay[Msg]{
		logger:    cfg.Logger,
		ring:      ring.New[Msg](cfg.Replay),
		observers: map[uuid.UUID]*observer[Msg]{},
	}, nil
}

var _ subject.Subject[any] = (*Replay[any])(nil)

// OnSuccess retains the message and forwards it to every registered
// observer. Messages arriving after termination are ignored
func (r *Replay[Msg]) OnSuccess(_ context.Context, msg Msg) error {
	r.mu.Lock()
	if r.done.Load() != nil {
		r.mu.Unlock()
		r.logger.Debug("ignoring message after termination")
		return nil
	}
	r.ring.Push(msg)
	obs := r.snapshot()
	for _, o := range obs {
		o.enqueue(event[Msg]{msg: msg})
	}
	r.mu.Unlock()

	for _, o := range obs {
		o.drain()
	}
	return nil
}

// OnFailure terminates the Subject with the provided Cause
func (r *Replay[_]) OnFailure(_ context.Context, c *cause.Cause) error {
	r.terminate(&terminal{cause: c})
	return nil
}

// Complete terminates the Subject without a failure
func (r *Replay[_]) Complete(context.Context) error {
	r.terminate(&terminal{})
	return nil
}

// Run subscribes the Sink to the Subject. The retained messages are replayed
// and, unless the Subject has already terminated, the Sink is registered for
// live messages until the Subject terminates or the Context is cancelled
func (r *Replay[Msg]) Run(ctx context.Context, s stream.Sink[Msg]) error {
	o, t := r.attach(ctx, s)
	if t != nil {
		return r.replayTerminated(ctx, s, t)
	}
	defer r.remove(o.id)
	o.drain()
	return o.wait()
}

// Push returns the read side of the Subject
func (r *Replay[Msg]) Push() stream.Push[Msg] {
	return r.Run
}

// Observers returns the number of registered observers
func (r *Replay[_]) Observers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done.Load() != nil {
		return 0
	}
	return len(r.observers)
}

// IsDone returns whether the Subject has terminated
func (r *Replay[_]) IsDone() bool {
	return r.done.Load() != nil
}

// attach queues the retained messages for a new observer and registers it,
// atomically with respect to writers. If the Subject has already terminated,
// nothing is registered and its terminal is returned instead
func (r *Replay[Msg]) attach(
	ctx context.Context, s stream.Sink[Msg],
) (*observer[Msg], *terminal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t := r.done.Load(); t != nil {
		return nil, t
	}
	o := newObserver(ctx, s, r.logger)
	r.ring.ForEach(func(msg Msg) {
		o.enqueue(event[Msg]{msg: msg})
	})
	r.observers[o.id] = o
	r.logger.Debug("observer registered", "observer", o.id)
	return o, nil
}

func (r *Replay[Msg]) terminate(t *terminal) {
	r.mu.Lock()
	if r.done.Load() != nil {
		r.mu.Unlock()
		r.logger.Debug("ignoring repeated termination")
		return
	}
	r.done.Store(t)
	obs := r.snapshot()
	for _, o := range obs {
		o.enqueue(event[Msg]{term: t})
	}
	r.mu.Seal()

	for _, o := range obs {
		o.drain()
	}
}

// replayTerminated serves a subscriber that arrives after termination. The
// ring is sealed, so it is read without locking
func (r *Replay[Msg]) replayTerminated(
	ctx context.Context, s stream.Sink[Msg], t *terminal,
) error {
	for _, msg := range r.ring.Values() {
		if err := s.OnSuccess(ctx, msg); err != nil {
			return err
		}
	}
	return finish(ctx, s, t)
}

func (r *Replay[_]) remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done.Load() != nil {
		return
	}
	delete(r.observers, id)
	r.logger.Debug("observer removed", "observer", id)
}

// snapshot must be called with the lock held
func (r *Replay[Msg]) snapshot() []*observer[Msg] {
	res := make([]*observer[Msg], 0, len(r.observers))
	for _, o := range r.observers {
		res = append(res, o)
	}
	return res
}
