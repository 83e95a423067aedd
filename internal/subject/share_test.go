package subject_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/surge/cause"
	"github.com/kode4food/surge/stream"
	"github.com/kode4food/surge/subject/config"

	internal "github.com/kode4food/surge/internal/subject"
)

// counted is an upstream that records how often it was started and
// finalized, emitting whatever is sent on its channel
func counted(
	started, finalized *atomic.Int32, ch <-chan int,
) stream.Push[int] {
	return func(ctx context.Context, s stream.Sink[int]) error {
		started.Add(1)
		defer finalized.Add(1)
		for {
			select {
			case <-ctx.Done():
				return cause.FromContext(ctx)
			case i, ok := <-ch:
				if !ok {
					return nil
				}
				if err := s.OnSuccess(ctx, i); err != nil {
					return err
				}
			}
		}
	}
}

func TestShareSingleUpstream(t *testing.T) {
	as := assert.New(t)

	var started, finalized atomic.Int32
	ch := make(chan int)
	sh, err := internal.MakeShared(counted(&started, &finalized, ch),
		config.Replay(0),
	)
	as.NoError(err)

	r1, r2 := &recorder{}, &recorder{}
	done1 := make(chan error, 1)
	done2 := make(chan error, 1)
	go func() { done1 <- sh.Run(context.Background(), r1) }()
	go func() { done2 <- sh.Run(context.Background(), r2) }()
	as.Eventually(func() bool {
		return sh.Observers() == 2
	}, time.Second, time.Millisecond)

	ch <- 1
	ch <- 2
	close(ch)

	as.NoError(<-done1)
	as.NoError(<-done2)
	as.Equal([]int{1, 2}, r1.snapshot())
	as.Equal([]int{1, 2}, r2.snapshot())
	as.Equal(int32(1), started.Load())
}

func TestShareStopsWhenLastLeaves(t *testing.T) {
	as := assert.New(t)

	var started, finalized atomic.Int32
	ch := make(chan int)
	sh, err := internal.MakeShared(counted(&started, &finalized, ch))
	as.NoError(err)

	ctx1, cancel1 := context.WithCancel(context.Background())
	ctx2, cancel2 := context.WithCancel(context.Background())
	done1 := make(chan error, 1)
	done2 := make(chan error, 1)
	go func() { done1 <- sh.Run(ctx1, &recorder{}) }()
	go func() { done2 <- sh.Run(ctx2, &recorder{}) }()
	as.Eventually(func() bool {
		return started.Load() == 1 && sh.Observers() == 2
	}, time.Second, time.Millisecond)

	cancel1()
	<-done1
	as.Equal(int32(0), finalized.Load())

	cancel2()
	<-done2
	as.Equal(int32(1), finalized.Load())
	as.Equal(0, sh.Observers())

	// a new observer starts a fresh run
	r := &recorder{}
	done := make(chan error, 1)
	go func() { done <- sh.Run(context.Background(), r) }()
	as.Eventually(func() bool {
		return started.Load() == 2
	}, time.Second, time.Millisecond)
	ch <- 7
	close(ch)
	as.NoError(<-done)
	as.Equal([]int{7}, r.snapshot())
}

func TestShareUpstreamFailure(t *testing.T) {
	as := assert.New(t)

	failing := stream.Push[int](func(ctx context.Context, s stream.Sink[int]) error {
		if err := s.OnSuccess(ctx, 1); err != nil {
			return err
		}
		return errBoom
	})
	sh, err := internal.MakeShared(failing, config.Replay(1))
	as.NoError(err)

	r := &recorder{}
	as.NoError(sh.Run(context.Background(), r))
	as.Equal([]int{1}, r.snapshot())
	as.ErrorIs(r.failure, errBoom)
}

func TestMakeSharedInvalid(t *testing.T) {
	as := assert.New(t)

	sh, err := internal.MakeShared(stream.Push[int](nil), config.Replay(-1))
	as.Nil(sh)
	as.ErrorIs(err, config.ErrNegativeReplay)
}
