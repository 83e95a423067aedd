package node

import (
	"context"
	"time"

	"github.com/kode4food/surge/cause"
	"github.com/kode4food/surge/internal/fiber"
	"github.com/kode4food/surge/stream"
)

// Succeed constructs a Push that emits a single message and completes
func Succeed[Msg any](msg Msg) stream.Push[Msg] {
	return func(ctx context.Context, s stream.Sink[Msg]) error {
		return emit(ctx, s, msg)
	}
}

// Fail constructs a Push that delivers a typed failure and completes
func Fail[Msg any](err error) stream.Push[Msg] {
	return FailCause[Msg](cause.NewFail(err))
}

// Die constructs a Push that delivers a defect and completes
func Die[Msg any](v any) stream.Push[Msg] {
	return FailCause[Msg](cause.NewDie(v))
}

// FailCause constructs a Push that delivers the provided Cause exactly once
// and completes
func FailCause[Msg any](c *cause.Cause) stream.Push[Msg] {
	return func(ctx context.Context, s stream.Sink[Msg]) error {
		return s.OnFailure(ctx, c)
	}
}

// Empty constructs a Push that completes without emitting anything
func Empty[Msg any]() stream.Push[Msg] {
	return func(context.Context, stream.Sink[Msg]) error {
		return nil
	}
}

// Never constructs a Push that emits nothing and only ends when it is
// interrupted
func Never[Msg any]() stream.Push[Msg] {
	return func(ctx context.Context, _ stream.Sink[Msg]) error {
		<-ctx.Done()
		return cause.FromContext(ctx)
	}
}

// FromSlice constructs a Push that emits the provided messages in order
func FromSlice[Msg any](msgs ...Msg) stream.Push[Msg] {
	return func(ctx context.Context, s stream.Sink[Msg]) error {
		for _, msg := range msgs {
			if err := emit(ctx, s, msg); err != nil {
				return err
			}
		}
		return nil
	}
}

// FromChannel constructs a Push that emits every message received from the
// channel, completing when the channel is closed
func FromChannel[Msg any](ch <-chan Msg) stream.Push[Msg] {
	return func(ctx context.Context, s stream.Sink[Msg]) error {
		for {
			select {
			case <-ctx.Done():
				return cause.FromContext(ctx)
			case msg, ok := <-ch:
				if !ok {
					return nil
				}
				if err := s.OnSuccess(ctx, msg); err != nil {
					return err
				}
			}
		}
	}
}

// At constructs a Push that emits the message once the duration has passed
func At[Msg any](d time.Duration, msg Msg) stream.Push[Msg] {
	return func(ctx context.Context, s stream.Sink[Msg]) error {
		if err := fiber.Sleep(ctx, d); err != nil {
			return err
		}
		return s.OnSuccess(ctx, msg)
	}
}

// Periodic constructs a Push that emits the current time once per period
// until it is interrupted
func Periodic(period time.Duration) stream.Push[time.Time] {
	return func(ctx context.Context, s stream.Sink[time.Time]) error {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return cause.FromContext(ctx)
			case t := <-ticker.C:
				if err := s.OnSuccess(ctx, t); err != nil {
					return err
				}
			}
		}
	}
}

func emit[Msg any](ctx context.Context, s stream.Sink[Msg], msg Msg) error {
	if c := cause.FromContext(ctx); c != nil {
		return c
	}
	return s.OnSuccess(ctx, msg)
}
