package node

import (
	"context"

	"github.com/kode4food/surge/cause"
	"github.com/kode4food/surge/stream"
)

// Common function signature types for stream operators. These types make
// function purposes self-documenting and ensure consistency across the API

type (
	// Predicate tests if a message meets a condition. Returning false will
	// drop the message from the stream
	Predicate[Msg any] func(Msg) bool

	// Mapper transforms a message from one type to another. The returned
	// message is forwarded downstream
	Mapper[From, To any] func(From) To

	// FilterMapper transforms a message and reports whether the result
	// should be forwarded at all
	FilterMapper[From, To any] func(From) (To, bool)

	// Binder derives a new Push from a message. Used by the flattening and
	// switching operators, which decide how derived Pushes run concurrently
	Binder[From, To any] func(From) stream.Push[To]

	// Reducer combines an accumulator with a message to produce a new
	// accumulator
	Reducer[Res, Msg any] func(Res, Msg) Res

	// Equality tests if two messages are equal. Used for deduplication
	Equality[Msg any] func(Msg, Msg) bool

	// Consumer performs a side effect on a message without modifying it. A
	// returned error fails the producer
	Consumer[Msg any] func(context.Context, Msg) error

	// Recovery derives a replacement Push from a typed failure
	Recovery[Msg any] func(error) stream.Push[Msg]

	// CauseRecovery derives a replacement Push from any failure Cause
	CauseRecovery[Msg any] func(*cause.Cause) stream.Push[Msg]
)
