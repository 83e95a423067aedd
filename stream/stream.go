package stream

import (
	"context"

	"github.com/kode4food/surge/cause"
)

type (
	// Sink is the two-channel consumer contract that every Push drives.
	// Each call blocks until the consumer has handled the notification; a
	// non-nil return is the failure of that handling. A Push never calls
	// its Sink concurrently unless the combinator that built it explicitly
	// introduces concurrency
	Sink[Msg any] interface {
		OnSuccess(context.Context, Msg) error
		OnFailure(context.Context, *cause.Cause) error
	}

	// Push is a reusable producer. Running it drives the provided Sink until
	// the producer is done, returning the producer's own failure, if any.
	// Failures of the stream itself are delivered to the Sink's OnFailure
	// rather than returned. Cancelling the Context interrupts the Push
	Push[Msg any] func(context.Context, Sink[Msg]) error

	// SuccessFunc handles a successful notification
	SuccessFunc[Msg any] func(context.Context, Msg) error

	// FailureFunc handles a failure notification
	FailureFunc func(context.Context, *cause.Cause) error

	funcSink[Msg any] struct {
		onSuccess SuccessFunc[Msg]
		onFailure FailureFunc
	}
)

// Run executes the Push against the provided Sink
func (p Push[Msg]) Run(ctx context.Context, s Sink[Msg]) error {
	return p(ctx, s)
}

// MakeSink builds a Sink from a pair of functions. Either may be nil, in
// which case the corresponding notifications are discarded
func MakeSink[Msg any](
	onSuccess SuccessFunc[Msg], onFailure FailureFunc,
) Sink[Msg] {
	return &funcSink[Msg]{
		onSuccess: onSuccess,
		onFailure: onFailure,
	}
}

// WithSuccess returns a Sink that handles successes with the provided
// function and forwards failures to the parent Sink unchanged
func WithSuccess[From, To any](
	parent Sink[To], onSuccess SuccessFunc[From],
) Sink[From] {
	return MakeSink(onSuccess, parent.OnFailure)
}

// WithFailure returns a Sink that forwards successes to the parent Sink
// unchanged and handles failures with the provided function
func WithFailure[Msg any](parent Sink[Msg], onFailure FailureFunc) Sink[Msg] {
	return MakeSink(parent.OnSuccess, onFailure)
}

func (s *funcSink[Msg]) OnSuccess(ctx context.Context, msg Msg) error {
	if s.onSuccess == nil {
		return nil
	}
	return s.onSuccess(ctx, msg)
}

func (s *funcSink[_]) OnFailure(ctx context.Context, c *cause.Cause) error {
	if s.onFailure == nil {
		return nil
	}
	return s.onFailure(ctx, c)
}
