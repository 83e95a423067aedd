package subject

import (
	"context"
	"sync"

	"github.com/kode4food/surge/cause"
	"github.com/kode4food/surge/internal/fiber"
	"github.com/kode4food/surge/stream"
	"github.com/kode4food/surge/subject/config"
)

type (
	// Shared multicasts a single run of an upstream Push to every
	// concurrent observer. The upstream starts when the first observer has
	// registered and is interrupted when the last one leaves. A later
	// observer starts a fresh run
	Shared[Msg any] struct {
		source  stream.Push[Msg]
		options []config.Option
		current *connection[Msg]
		mu      sync.Mutex
	}

	connection[Msg any] struct {
		subject *Replay[Msg]
		scope   *fiber.Scope
		start   sync.Once
		refs    int
	}
)

// MakeShared instantiates a new Shared Push. The options configure the
// Replay Subject backing every run
func MakeShared[Msg any](
	p stream.Push[Msg], o ...config.Option,
) (*Shared[Msg], error) {
	if _, err := config.Apply(o...); err != nil {
		return nil, err
	}
	return &Shared[Msg]{
		source:  p,
		options: o,
	}, nil
}

// Run subscribes the Sink to the current run of the upstream, starting one
// if necessary
func (s *Shared[Msg]) Run(ctx context.Context, sink stream.Sink[Msg]) error {
	c, err := s.acquire()
	if err != nil {
		return err
	}
	defer s.release(c)

	o, t := c.subject.attach(ctx, sink)
	if t != nil {
		return c.subject.replayTerminated(ctx, sink, t)
	}
	defer c.subject.remove(o.id)

	c.connect(s.source)
	o.drain()
	return o.wait()
}

// Push returns the Shared as a Push
func (s *Shared[Msg]) Push() stream.Push[Msg] {
	return s.Run
}

// Observers returns the number of observers registered with the current run
func (s *Shared[_]) Observers() int {
	s.mu.Lock()
	c := s.current
	s.mu.Unlock()
	if c == nil {
		return 0
	}
	return c.subject.Observers()
}

func (s *Shared[Msg]) acquire() (*connection[Msg], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		r, err := Make[Msg](s.options...)
		if err != nil {
			return nil, err
		}
		s.current = &connection[Msg]{
			subject: r,
			scope:   fiber.NewScope(context.Background()),
		}
	}
	s.current.refs++
	return s.current, nil
}

func (s *Shared[Msg]) release(c *connection[Msg]) {
	s.mu.Lock()
	c.refs--
	if c.refs != 0 {
		s.mu.Unlock()
		return
	}
	if s.current == c {
		s.current = nil
	}
	s.mu.Unlock()

	c.subject.logger.Debug("last observer left, stopping upstream")
	c.scope.Close()
}

func (c *connection[Msg]) connect(p stream.Push[Msg]) {
	c.start.Do(func() {
		c.scope.Fork(func(ctx context.Context) error {
			res := fiber.Exec(ctx, func(ctx context.Context) error {
				return p.Run(ctx, c.subject)
			})
			switch {
			case res == nil:
				return c.subject.Complete(ctx)
			case res.IsInterruptedOnly() && ctx.Err() != nil:
				return cause.Err(res)
			default:
				return c.subject.OnFailure(ctx, res)
			}
		})
	})
}
