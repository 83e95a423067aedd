package node

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/kode4food/surge/stream"
)

// limitDecision reports whether a message is forwarded and whether the
// source should keep running afterward
type limitDecision[Msg any] func(Msg) (forward bool, more bool)

var errLimitReached = errors.New("limit reached")

// Take constructs a Push that forwards only the first n messages, then
// stops the source
func Take[Msg any](p stream.Push[Msg], n int) stream.Push[Msg] {
	return func(ctx context.Context, s stream.Sink[Msg]) error {
		if n <= 0 {
			return nil
		}
		count := 0
		return limit(ctx, p, s, func(Msg) (bool, bool) {
			count++
			return true, count < n
		})
	}
}

// TakeWhile constructs a Push that forwards messages until the predicate
// returns false, then stops the source
func TakeWhile[Msg any](p stream.Push[Msg], pred Predicate[Msg]) stream.Push[Msg] {
	return func(ctx context.Context, s stream.Sink[Msg]) error {
		return limit(ctx, p, s, func(msg Msg) (bool, bool) {
			ok := pred(msg)
			return ok, ok
		})
	}
}

// Skip constructs a Push that drops the first n messages
func Skip[Msg any](p stream.Push[Msg], n int) stream.Push[Msg] {
	return func(ctx context.Context, s stream.Sink[Msg]) error {
		count := 0
		return p.Run(ctx, stream.WithSuccess(s,
			func(ctx context.Context, msg Msg) error {
				if count < n {
					count++
					return nil
				}
				return s.OnSuccess(ctx, msg)
			},
		))
	}
}

// SkipWhile constructs a Push that drops messages until the predicate first
// returns false, forwarding everything from then on
func SkipWhile[Msg any](p stream.Push[Msg], pred Predicate[Msg]) stream.Push[Msg] {
	return func(ctx context.Context, s stream.Sink[Msg]) error {
		skipping := true
		return p.Run(ctx, stream.WithSuccess(s,
			func(ctx context.Context, msg Msg) error {
				if skipping && pred(msg) {
					return nil
				}
				skipping = false
				return s.OnSuccess(ctx, msg)
			},
		))
	}
}

func limit[Msg any](
	ctx context.Context, p stream.Push[Msg], s stream.Sink[Msg],
	decide limitDecision[Msg],
) error {
	inner, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var stopped atomic.Bool
	err := p.Run(inner, stream.WithSuccess(s,
		func(ctx context.Context, msg Msg) error {
			if stopped.Load() {
				return nil
			}
			forward, more := decide(msg)
			if forward {
				if err := s.OnSuccess(ctx, msg); err != nil {
					return err
				}
			}
			if !more {
				stopped.Store(true)
				cancel(errLimitReached)
			}
			return nil
		},
	))
	if stopped.Load() && ctx.Err() == nil {
		return nil
	}
	return err
}
