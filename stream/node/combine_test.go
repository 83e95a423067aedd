package node_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/surge/stream"
	"github.com/kode4food/surge/stream/node"
	"github.com/kode4food/surge/stream/runner"
)

func TestMergeAll(t *testing.T) {
	as := assert.New(t)

	p := node.MergeAll(
		node.FromSlice(1, 2, 3),
		node.FromSlice(4, 5),
		node.Empty[int](),
	)
	res, err := runner.Collect(context.Background(), p)
	as.NoError(err)
	as.ElementsMatch([]int{1, 2, 3, 4, 5}, res)
}

func TestMergeAllFirstFailureWins(t *testing.T) {
	as := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	failing := stream.Push[int](func(context.Context, stream.Sink[int]) error {
		return errBoom
	})
	p := node.MergeAll(node.Never[int](), failing)

	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx, stream.MakeSink[int](nil, nil))
	}()

	select {
	case err := <-done:
		as.ErrorIs(err, errBoom)
	case <-time.After(time.Second):
		as.Fail("merge waited for its siblings")
	}
}

func TestMergeAllEmpty(t *testing.T) {
	as := assert.New(t)

	res, err := runner.Collect(context.Background(), node.MergeAll[int]())
	as.NoError(err)
	as.Empty(res)
}

func TestConcatAndStartWith(t *testing.T) {
	as := assert.New(t)

	p := node.StartWith(
		node.Concat(node.FromSlice(3, 4), node.Succeed(5)),
		1, 2,
	)
	res, err := runner.Collect(context.Background(), p)
	as.NoError(err)
	as.Equal([]int{1, 2, 3, 4, 5}, res)
}

func TestFlatMap(t *testing.T) {
	as := assert.New(t)

	p := node.FlatMap(node.FromSlice(1, 2, 3),
		func(i int) stream.Push[int] {
			return node.FromSlice(i*10, i*10+1)
		},
	)
	res, err := runner.Collect(context.Background(), p)
	as.NoError(err)
	as.ElementsMatch([]int{10, 11, 20, 21, 30, 31}, res)
}

func TestFlatMapWaitsForChildren(t *testing.T) {
	as := assert.New(t)

	p := node.FlatMap(node.FromSlice(1, 2),
		func(i int) stream.Push[int] {
			return node.At(time.Duration(i)*10*time.Millisecond, i)
		},
	)
	res, err := runner.Collect(context.Background(), p)
	as.NoError(err)
	as.Equal([]int{1, 2}, res)
}

func TestFlatMapChildFailure(t *testing.T) {
	as := assert.New(t)

	var finalized atomic.Bool
	p := node.FlatMap(node.FromSlice(1, 2),
		func(i int) stream.Push[int] {
			if i == 1 {
				return func(ctx context.Context, _ stream.Sink[int]) error {
					defer finalized.Store(true)
					<-ctx.Done()
					return nil
				}
			}
			return node.Fail[int](errBoom)
		},
	)
	res, err := runner.Collect(context.Background(), p)
	as.Nil(res)
	as.ErrorIs(err, errBoom)
	as.True(finalized.Load())
}

func TestFlatMapConcurrently(t *testing.T) {
	as := assert.New(t)

	var running, peak atomic.Int32
	p := node.FlatMapConcurrently(node.FromSlice(1, 2, 3, 4, 5, 6), 2,
		func(i int) stream.Push[int] {
			return func(ctx context.Context, s stream.Sink[int]) error {
				n := running.Add(1)
				defer running.Add(-1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				return s.OnSuccess(ctx, i)
			}
		},
	)
	res, err := runner.Collect(context.Background(), p)
	as.NoError(err)
	as.ElementsMatch([]int{1, 2, 3, 4, 5, 6}, res)
	as.LessOrEqual(peak.Load(), int32(2))
}
