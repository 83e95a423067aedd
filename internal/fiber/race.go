package fiber

import (
	"context"
	"time"

	"github.com/kode4food/surge/cause"
)

// Race runs all Tasks concurrently. The first Task to complete, whether it
// succeeds or fails, determines the result. The remaining Tasks are
// interrupted, and Race returns only after they have exited. An empty Race
// succeeds immediately
func Race(ctx context.Context, tasks ...Task) error {
	if len(tasks) == 0 {
		return nil
	}

	sc := NewScope(ctx)
	defer sc.Close()

	results := make(chan *cause.Cause, len(tasks))
	for _, t := range tasks {
		sc.Fork(func(ctx context.Context) error {
			res := Exec(ctx, t)
			results <- res
			return cause.Err(res)
		})
	}
	return cause.Err(<-results)
}

// Sleep suspends the calling Task for the specified duration, returning
// early with an interruption if the Context is cancelled
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return cause.Err(cause.FromContext(ctx))
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return cause.FromContext(ctx)
	}
}
