package node

import (
	"context"

	"github.com/kode4food/surge/internal/fiber"
	"github.com/kode4food/surge/internal/slot"
	"github.com/kode4food/surge/stream"
)

// SwitchMap derives a Push from every source message and runs it, first
// interrupting the previously derived Push if it is still running. Only the
// most recent derivation survives
func SwitchMap[From, To any](
	p stream.Push[From], fn Binder[From, To],
) stream.Push[To] {
	return supervise(p, slot.Drop, 1, fn)
}

// SwitchMapN is SwitchMap with n concurrent derivations. When all n are
// running, the oldest is interrupted to make room
func SwitchMapN[From, To any](
	p stream.Push[From], n int, fn Binder[From, To],
) stream.Push[To] {
	return supervise(p, slot.Drop, n, fn)
}

// ExhaustMap derives a Push from a source message only when no previously
// derived Push is still running. Messages arriving in the meantime are
// discarded
func ExhaustMap[From, To any](
	p stream.Push[From], fn Binder[From, To],
) stream.Push[To] {
	return supervise(p, slot.Slide, 1, fn)
}

// ExhaustMapN is ExhaustMap with n concurrent derivations
func ExhaustMapN[From, To any](
	p stream.Push[From], n int, fn Binder[From, To],
) stream.Push[To] {
	return supervise(p, slot.Slide, n, fn)
}

// ExhaustMapLatest behaves like ExhaustMap, except that the latest message
// to arrive while busy is retained and derived once the running Push
// completes
func ExhaustMapLatest[From, To any](
	p stream.Push[From], fn Binder[From, To],
) stream.Push[To] {
	return supervise(p, slot.SlideBuffer, 1, fn)
}

// ExhaustMapLatestN is ExhaustMapLatest with n concurrent derivations and
// up to n retained messages
func ExhaustMapLatestN[From, To any](
	p stream.Push[From], n int, fn Binder[From, To],
) stream.Push[To] {
	return supervise(p, slot.SlideBuffer, n, fn)
}

func supervise[From, To any](
	p stream.Push[From], policy slot.Policy, n int, fn Binder[From, To],
) stream.Push[To] {
	return func(ctx context.Context, s stream.Sink[To]) error {
		opCtx, cancel := context.WithCancelCause(ctx)
		defer cancel(nil)

		t := newTerminator(ctx, serialize(s), cancel)
		sc := fiber.NewScope(opCtx)
		sl := slot.New(sc, policy, n, t.fail)
		child := t.sink()

		err := p.Run(opCtx, stream.MakeSink(
			func(ctx context.Context, msg From) error {
				derived := fn(msg)
				return sl.Submit(ctx, func(ctx context.Context) error {
					return derived.Run(ctx, child)
				})
			},
			t.onFailure,
		))
		if err == nil {
			err = sl.Wait(opCtx)
		}
		sc.Close()
		return t.result(err)
	}
}
