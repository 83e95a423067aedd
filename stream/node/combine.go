package node

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/kode4food/surge/cause"
	"github.com/kode4food/surge/internal/fiber"
	"github.com/kode4food/surge/stream"
)

// MergeAll runs every provided Push concurrently against the same Sink. It
// completes once all of them have completed, or as soon as any of them
// fails. The remaining Pushes are not interrupted by a failure; that is the
// responsibility of whoever owns the Context
func MergeAll[Msg any](ps ...stream.Push[Msg]) stream.Push[Msg] {
	return func(ctx context.Context, s stream.Sink[Msg]) error {
		out := serialize(s)
		failed := make(chan error, len(ps))
		var g errgroup.Group
		for _, p := range ps {
			g.Go(func() error {
				res := fiber.Exec(ctx, func(ctx context.Context) error {
					return p.Run(ctx, out)
				})
				if res != nil {
					failed <- res
				}
				return cause.Err(res)
			})
		}

		done := make(chan error, 1)
		go func() {
			done <- g.Wait()
		}()

		select {
		case err := <-failed:
			return err
		case err := <-done:
			return err
		}
	}
}

// Concat runs the provided Pushes one after the other, stopping at the
// first one that fails
func Concat[Msg any](ps ...stream.Push[Msg]) stream.Push[Msg] {
	return func(ctx context.Context, s stream.Sink[Msg]) error {
		for _, p := range ps {
			if err := p.Run(ctx, s); err != nil {
				return err
			}
		}
		return nil
	}
}

// StartWith emits the provided messages before those of the source
func StartWith[Msg any](p stream.Push[Msg], msgs ...Msg) stream.Push[Msg] {
	return Concat(FromSlice(msgs...), p)
}

// FlatMap derives a Push from every source message and runs all of them
// concurrently. It completes once the source and every derived Push have
// completed. The first failure terminates everything
func FlatMap[From, To any](
	p stream.Push[From], fn Binder[From, To],
) stream.Push[To] {
	return flatten(p, 0, fn)
}

// FlatMapConcurrently is FlatMap with at most n derived Pushes running at
// any time. The source is held back while all n are busy
func FlatMapConcurrently[From, To any](
	p stream.Push[From], n int, fn Binder[From, To],
) stream.Push[To] {
	return flatten(p, max(n, 1), fn)
}

func flatten[From, To any](
	p stream.Push[From], n int, fn Binder[From, To],
) stream.Push[To] {
	return func(ctx context.Context, s stream.Sink[To]) error {
		opCtx, cancel := context.WithCancelCause(ctx)
		defer cancel(nil)

		t := newTerminator(ctx, serialize(s), cancel)
		sc := fiber.NewScope(opCtx)
		child := t.sink()

		var sem *semaphore.Weighted
		if n > 0 {
			sem = semaphore.NewWeighted(int64(n))
		}

		err := p.Run(opCtx, stream.MakeSink(
			func(ctx context.Context, msg From) error {
				if sem != nil {
					if err := sem.Acquire(ctx, 1); err != nil {
						return cause.FromContext(ctx)
					}
				}
				derived := fn(msg)
				sc.Fork(func(ctx context.Context) error {
					if sem != nil {
						defer sem.Release(1)
					}
					res := fiber.Exec(ctx, func(ctx context.Context) error {
						return derived.Run(ctx, child)
					})
					if res != nil && !res.IsInterruptedOnly() {
						t.fail(res)
					}
					return cause.Err(res)
				})
				return nil
			},
			t.onFailure,
		))
		if err == nil {
			err = sc.Wait(opCtx)
		}
		sc.Close()
		return t.result(err)
	}
}
