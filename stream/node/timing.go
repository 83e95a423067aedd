package node

import (
	"context"
	"errors"
	"time"

	"github.com/kode4food/surge/cause"
	"github.com/kode4food/surge/internal/fiber"
	"github.com/kode4food/surge/stream"
)

// ErrTimeout is the typed failure delivered by Timeout
var ErrTimeout = errors.New("stream timed out")

// Debounce emits a message only once the duration has passed without
// another message arriving. The last pending message is still emitted when
// the source completes
func Debounce[Msg any](p stream.Push[Msg], d time.Duration) stream.Push[Msg] {
	return SwitchMap(p, func(msg Msg) stream.Push[Msg] {
		return At(d, msg)
	})
}

// Throttle emits a message and then ignores everything that arrives during
// the following duration
func Throttle[Msg any](p stream.Push[Msg], d time.Duration) stream.Push[Msg] {
	return ExhaustMap(p, func(msg Msg) stream.Push[Msg] {
		return func(ctx context.Context, s stream.Sink[Msg]) error {
			if err := s.OnSuccess(ctx, msg); err != nil {
				return err
			}
			return fiber.Sleep(ctx, d)
		}
	})
}

// Delay shifts every message later by the duration, keeping their order
func Delay[Msg any](p stream.Push[Msg], d time.Duration) stream.Push[Msg] {
	return func(ctx context.Context, s stream.Sink[Msg]) error {
		prev := make(chan struct{})
		close(prev)
		return FlatMap(p, func(msg Msg) stream.Push[Msg] {
			due := time.Now().Add(d)
			wait := prev
			next := make(chan struct{})
			prev = next
			return func(ctx context.Context, s stream.Sink[Msg]) error {
				defer close(next)
				if err := fiber.Sleep(ctx, time.Until(due)); err != nil {
					return err
				}
				select {
				case <-wait:
					return emit(ctx, s, msg)
				case <-ctx.Done():
					return cause.FromContext(ctx)
				}
			}
		}).Run(ctx, s)
	}
}

// Timeout delivers ErrTimeout and interrupts the source if it has not
// completed within the duration. Nothing the source emits after the
// timeout reaches the Sink
func Timeout[Msg any](p stream.Push[Msg], d time.Duration) stream.Push[Msg] {
	return func(ctx context.Context, s stream.Sink[Msg]) error {
		opCtx, cancel := context.WithCancelCause(ctx)
		defer cancel(nil)

		t := newTerminator(ctx, serialize(s), cancel)
		err := fiber.Race(opCtx,
			func(ctx context.Context) error {
				return p.Run(ctx, t.sink())
			},
			func(ctx context.Context) error {
				if err := fiber.Sleep(ctx, d); err != nil {
					return err
				}
				t.fail(cause.NewFail(ErrTimeout))
				return nil
			},
		)
		return t.result(err)
	}
}
