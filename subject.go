package surge

import (
	"github.com/kode4food/surge/stream"
	"github.com/kode4food/surge/subject"
	"github.com/kode4food/surge/subject/config"

	internal "github.com/kode4food/surge/internal/subject"
)

// NewReplaySubject instantiates a new Subject that replays its most recent
// messages to late observers
func NewReplaySubject[Msg any](o ...config.Option) (subject.Subject[Msg], error) {
	s, err := internal.Make[Msg](o...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Share returns a Push that multicasts a single run of the provided Push to
// all of its concurrent observers
func Share[Msg any](
	p stream.Push[Msg], o ...config.Option,
) (stream.Push[Msg], error) {
	s, err := internal.MakeShared(p, o...)
	if err != nil {
		return nil, err
	}
	return s.Push(), nil
}
