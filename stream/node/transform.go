package node

import (
	"context"

	"github.com/kode4food/surge/stream"
)

// Map constructs a Push that transforms every message of the source using
// the provided function. Failures pass through unchanged
func Map[From, To any](p stream.Push[From], fn Mapper[From, To]) stream.Push[To] {
	return func(ctx context.Context, s stream.Sink[To]) error {
		return p.Run(ctx, stream.WithSuccess(s,
			func(ctx context.Context, msg From) error {
				return s.OnSuccess(ctx, fn(msg))
			},
		))
	}
}

// Filter constructs a Push that only forwards the source's messages if the
// provided function returns true
func Filter[Msg any](p stream.Push[Msg], fn Predicate[Msg]) stream.Push[Msg] {
	return func(ctx context.Context, s stream.Sink[Msg]) error {
		return p.Run(ctx, stream.WithSuccess(s,
			func(ctx context.Context, msg Msg) error {
				if !fn(msg) {
					return nil
				}
				return s.OnSuccess(ctx, msg)
			},
		))
	}
}

// FilterMap constructs a Push that transforms the source's messages and
// forwards only those results the function reports as present
func FilterMap[From, To any](
	p stream.Push[From], fn FilterMapper[From, To],
) stream.Push[To] {
	return func(ctx context.Context, s stream.Sink[To]) error {
		return p.Run(ctx, stream.WithSuccess(s,
			func(ctx context.Context, msg From) error {
				if res, ok := fn(msg); ok {
					return s.OnSuccess(ctx, res)
				}
				return nil
			},
		))
	}
}

// Tap constructs a Push that performs an action on every message before
// forwarding it. An error from the action fails the producer
func Tap[Msg any](p stream.Push[Msg], fn Consumer[Msg]) stream.Push[Msg] {
	return func(ctx context.Context, s stream.Sink[Msg]) error {
		return p.Run(ctx, stream.WithSuccess(s,
			func(ctx context.Context, msg Msg) error {
				if err := fn(ctx, msg); err != nil {
					return err
				}
				return s.OnSuccess(ctx, msg)
			},
		))
	}
}

// Scan constructs a Push that folds the source's messages into an
// accumulator, forwarding every intermediate result
func Scan[Res, Msg any](
	p stream.Push[Msg], seed Res, fn Reducer[Res, Msg],
) stream.Push[Res] {
	return func(ctx context.Context, s stream.Sink[Res]) error {
		acc := seed
		return p.Run(ctx, stream.WithSuccess(s,
			func(ctx context.Context, msg Msg) error {
				acc = fn(acc, msg)
				return s.OnSuccess(ctx, acc)
			},
		))
	}
}

// SkipRepeats constructs a Push that drops messages equal to the message
// forwarded immediately before them
func SkipRepeats[Msg any](p stream.Push[Msg], eq Equality[Msg]) stream.Push[Msg] {
	return func(ctx context.Context, s stream.Sink[Msg]) error {
		var last Msg
		seen := false
		return p.Run(ctx, stream.WithSuccess(s,
			func(ctx context.Context, msg Msg) error {
				if seen && eq(last, msg) {
					return nil
				}
				last, seen = msg, true
				return s.OnSuccess(ctx, msg)
			},
		))
	}
}
