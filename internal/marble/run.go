package marble

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/kode4food/surge/cause"
	"github.com/kode4food/surge/internal/fiber"
	"github.com/kode4food/surge/stream"
	"github.com/kode4food/surge/stream/runner"
)

// Run plays the Scenario's events through its operator in real time and
// records what the operator emits
func Run(ctx context.Context, sc *Scenario) (Trace, error) {
	op, ok := operators[sc.Operator.Name]
	if !ok {
		return nil, ErrUnknownOperator
	}

	var mu sync.Mutex
	var res Trace
	start := time.Now()
	record := func(n Notification) {
		n.Tick = sc.ticksSince(start)
		mu.Lock()
		defer mu.Unlock()
		res = append(res, n)
	}

	err := runner.Observe(ctx, op.apply(source(sc), sc),
		func(_ context.Context, v string) error {
			record(Notification{Kind: Next, Value: v})
			return nil
		},
	)

	switch c := cause.FromError(err); {
	case c == nil:
		record(Notification{Kind: Complete})
	case c.IsInterruptedOnly():
		return nil, err
	default:
		record(Notification{Kind: Error, Value: c.Squash().Error()})
	}
	return res, nil
}

func source(sc *Scenario) stream.Push[string] {
	return func(ctx context.Context, s stream.Sink[string]) error {
		start := time.Now()
		for _, e := range sc.Events {
			due := start.Add(time.Duration(e.At) * sc.Tick)
			if err := fiber.Sleep(ctx, time.Until(due)); err != nil {
				return err
			}
			if e.Error != "" {
				return s.OnFailure(ctx, cause.NewFail(errors.New(e.Error)))
			}
			if err := s.OnSuccess(ctx, e.Value); err != nil {
				return err
			}
		}
		return nil
	}
}

func (sc *Scenario) ticksSince(start time.Time) int {
	return int(math.Round(float64(time.Since(start)) / float64(sc.Tick)))
}
