package marble

import (
	"context"
	"slices"
	"time"

	"github.com/kode4food/surge/stream"
	"github.com/kode4food/surge/stream/node"
	"github.com/kode4food/surge/subject/config"

	internal "github.com/kode4food/surge/internal/subject"
)

type (
	// Apply wraps a source Push with an operator, given the operator's
	// duration argument
	Apply func(stream.Push[string], *Scenario) stream.Push[string]

	operator struct {
		apply       Apply
		description string
	}
)

var operators = map[string]operator{
	"identity": {
		description: "forwards the source unchanged",
		apply: func(p stream.Push[string], _ *Scenario) stream.Push[string] {
			return p
		},
	},
	"debounce": {
		description: "emits a value once ticks have passed without another",
		apply: func(p stream.Push[string], sc *Scenario) stream.Push[string] {
			return node.Debounce(p, sc.Duration())
		},
	},
	"throttle": {
		description: "emits a value, then ignores values for ticks",
		apply: func(p stream.Push[string], sc *Scenario) stream.Push[string] {
			return node.Throttle(p, sc.Duration())
		},
	},
	"delay": {
		description: "shifts every value later by ticks",
		apply: func(p stream.Push[string], sc *Scenario) stream.Push[string] {
			return node.Delay(p, sc.Duration())
		},
	},
	"switch-map": {
		description: "re-times each value by ticks, superseding pending ones",
		apply: func(p stream.Push[string], sc *Scenario) stream.Push[string] {
			return node.SwitchMap(p, after(sc.Duration()))
		},
	},
	"exhaust-map": {
		description: "re-times a value by ticks, ignoring values while pending",
		apply: func(p stream.Push[string], sc *Scenario) stream.Push[string] {
			return node.ExhaustMap(p, after(sc.Duration()))
		},
	},
	"exhaust-map-latest": {
		description: "like exhaust-map, keeping the latest ignored value",
		apply: func(p stream.Push[string], sc *Scenario) stream.Push[string] {
			return node.ExhaustMapLatest(p, after(sc.Duration()))
		},
	},
	"replay": {
		description: "subscribes to a subject retaining ticks values late",
		apply:       replay,
	},
}

// Operators returns the names of every available operator, sorted
func Operators() []string {
	res := make([]string, 0, len(operators))
	for name := range operators {
		res = append(res, name)
	}
	slices.Sort(res)
	return res
}

// Describe returns the description of the named operator
func Describe(name string) (string, bool) {
	op, ok := operators[name]
	return op.description, ok
}

func after(d time.Duration) node.Binder[string, string] {
	return func(v string) stream.Push[string] {
		return node.At(d, v)
	}
}

// replay feeds the whole source into a Subject and only subscribes once the
// source is done, so that only the retained values are observed
func replay(p stream.Push[string], sc *Scenario) stream.Push[string] {
	return func(ctx context.Context, s stream.Sink[string]) error {
		sub, err := internal.Make[string](config.Replay(sc.Operator.Ticks))
		if err != nil {
			return err
		}
		if err := p.Run(ctx, sub); err != nil {
			return err
		}
		if err := sub.Complete(ctx); err != nil {
			return err
		}
		return sub.Run(ctx, s)
	}
}
