package subject

import (
	"context"

	"github.com/kode4food/surge/stream"
)

type (
	// Subject is a hot multicast stream. Its write side is a Sink, fed by
	// an upstream producer or by direct calls. Its read side is a Push that
	// any number of observers can run concurrently
	Subject[Msg any] interface {
		stream.Sink[Msg]

		// Run subscribes the Sink. Retained messages are replayed first,
		// oldest to newest, followed by live messages. Run returns once the
		// Subject has terminated, the Sink has failed, or the Context has
		// been cancelled
		Run(context.Context, stream.Sink[Msg]) error

		// Push returns the read side of the Subject
		Push() stream.Push[Msg]

		// Complete terminates the Subject without a failure
		Complete(context.Context) error

		// Observers returns the number of currently registered observers
		Observers() int

		// IsDone returns whether the Subject has terminated
		IsDone() bool
	}
)
