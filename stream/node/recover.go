package node

import (
	"context"
	"time"

	"github.com/kode4food/surge/cause"
	"github.com/kode4food/surge/internal/fiber"
	"github.com/kode4food/surge/stream"
)

const backoffMultiplier = 2

// CatchAll replaces the source with a recovery Push when it fails with a
// typed failure. Defects and interruptions are passed along untouched
func CatchAll[Msg any](p stream.Push[Msg], fn Recovery[Msg]) stream.Push[Msg] {
	return CatchCause(p, func(c *cause.Cause) stream.Push[Msg] {
		if !isRecoverable(c) {
			return FailCause[Msg](c)
		}
		return fn(c.Failures()[0])
	})
}

// CatchCause replaces the source with a recovery Push whenever it fails,
// whatever the failure is
func CatchCause[Msg any](
	p stream.Push[Msg], fn CauseRecovery[Msg],
) stream.Push[Msg] {
	return func(ctx context.Context, s stream.Sink[Msg]) error {
		err := p.Run(ctx, stream.WithFailure(s,
			func(ctx context.Context, c *cause.Cause) error {
				return fn(c).Run(ctx, s)
			},
		))
		if err == nil || ctx.Err() != nil {
			return err
		}
		return fn(cause.FromError(err)).Run(ctx, s)
	}
}

// Retry runs the source again when it fails with a typed failure, waiting
// between attempts with exponential backoff. The failure of the final
// attempt is passed along
func Retry[Msg any](
	p stream.Push[Msg], maxAttempts int, initialBackoff time.Duration,
) stream.Push[Msg] {
	return func(ctx context.Context, s stream.Sink[Msg]) error {
		backoff := initialBackoff
		for attempt := 1; ; attempt++ {
			last := attempt >= maxAttempts
			var failed bool
			err := p.Run(ctx, stream.WithFailure(s,
				func(ctx context.Context, c *cause.Cause) error {
					if last || !isRecoverable(c) {
						return s.OnFailure(ctx, c)
					}
					failed = true
					return nil
				},
			))
			if err != nil && !failed {
				if last || !isRecoverable(cause.FromError(err)) {
					return err
				}
				failed = true
			}
			if !failed {
				return nil
			}
			if err := fiber.Sleep(ctx, backoff); err != nil {
				return err
			}
			backoff *= backoffMultiplier
		}
	}
}

func isRecoverable(c *cause.Cause) bool {
	return c.IsFailure() && len(c.Defects()) == 0
}
