package runner

import (
	"context"

	"github.com/kode4food/surge/cause"
	"github.com/kode4food/surge/internal/fiber"
	"github.com/kode4food/surge/internal/sync/signal"
	"github.com/kode4food/surge/stream"
)

// Observe runs the Push in its own Fiber, calling onValue for every message
// it emits. Whichever happens first decides the result: the producer
// finishing, a failure delivered to the Sink, or a failure of onValue.
// Observe returns only after the producer has exited. Cancelling the
// Context interrupts the producer and waits for its finalizers
func Observe[Msg any](
	ctx context.Context, p stream.Push[Msg], onValue stream.SuccessFunc[Msg],
) error {
	sc := fiber.NewScope(ctx)
	defer sc.Close()

	done := signal.MakeDeferred()
	sink := stream.MakeSink(
		func(ctx context.Context, msg Msg) error {
			if onValue == nil {
				return nil
			}
			if err := onValue(ctx, msg); err != nil {
				c := cause.FromError(err)
				done.Resolve(c)
				return c
			}
			return nil
		},
		func(_ context.Context, c *cause.Cause) error {
			done.Resolve(c)
			return nil
		},
	)

	sc.Fork(func(ctx context.Context) error {
		res := fiber.Exec(ctx, func(ctx context.Context) error {
			return p.Run(ctx, sink)
		})
		done.Resolve(cause.Err(res))
		return cause.Err(res)
	})
	return done.Await(ctx)
}

// Drain runs the Push to completion, discarding its messages
func Drain[Msg any](ctx context.Context, p stream.Push[Msg]) error {
	return Observe(ctx, p, nil)
}

// Collect runs the Push to completion and returns its messages in the order
// they were emitted. If the Push fails, no messages are returned
func Collect[Msg any](ctx context.Context, p stream.Push[Msg]) ([]Msg, error) {
	var res []Msg
	err := Observe(ctx, p, func(_ context.Context, msg Msg) error {
		res = append(res, msg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
