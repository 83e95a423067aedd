package surge

import (
	"context"

	"github.com/kode4food/surge/stream"
	"github.com/kode4food/surge/stream/runner"
)

// Observe runs the Push, calling onValue for every message, and returns
// once the Push completes or the first failure occurs
func Observe[Msg any](
	ctx context.Context, p stream.Push[Msg], onValue stream.SuccessFunc[Msg],
) error {
	return runner.Observe(ctx, p, onValue)
}

// Drain runs the Push to completion, discarding its messages
func Drain[Msg any](ctx context.Context, p stream.Push[Msg]) error {
	return runner.Drain(ctx, p)
}

// Collect runs the Push to completion and returns its messages in order
func Collect[Msg any](ctx context.Context, p stream.Push[Msg]) ([]Msg, error) {
	return runner.Collect(ctx, p)
}
