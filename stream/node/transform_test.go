package node_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/surge/stream/node"
	"github.com/kode4food/surge/stream/runner"
)

var errBoom = errors.New("boom")

func TestMap(t *testing.T) {
	as := assert.New(t)

	p := node.Map(node.FromSlice(1, 2, 3), strconv.Itoa)
	res, err := runner.Collect(context.Background(), p)
	as.NoError(err)
	as.Equal([]string{"1", "2", "3"}, res)
}

func TestMapPassesFailure(t *testing.T) {
	as := assert.New(t)

	p := node.Map(node.Fail[int](errBoom), strconv.Itoa)
	res, err := runner.Collect(context.Background(), p)
	as.Nil(res)
	as.ErrorIs(err, errBoom)
}

func TestFilter(t *testing.T) {
	as := assert.New(t)

	p := node.Filter(node.FromSlice(1, 2, 3, 4, 5), func(i int) bool {
		return i%2 == 1
	})
	res, err := runner.Collect(context.Background(), p)
	as.NoError(err)
	as.Equal([]int{1, 3, 5}, res)
}

func TestFilterMap(t *testing.T) {
	as := assert.New(t)

	p := node.FilterMap(node.FromSlice("1", "x", "3"),
		func(s string) (int, bool) {
			i, err := strconv.Atoi(s)
			return i, err == nil
		},
	)
	res, err := runner.Collect(context.Background(), p)
	as.NoError(err)
	as.Equal([]int{1, 3}, res)
}

func TestTap(t *testing.T) {
	as := assert.New(t)

	var tapped []int
	p := node.Tap(node.FromSlice(1, 2), func(_ context.Context, i int) error {
		tapped = append(tapped, i)
		return nil
	})
	res, err := runner.Collect(context.Background(), p)
	as.NoError(err)
	as.Equal([]int{1, 2}, res)
	as.Equal([]int{1, 2}, tapped)

	failing := node.Tap(node.FromSlice(1, 2), func(context.Context, int) error {
		return errBoom
	})
	_, err = runner.Collect(context.Background(), failing)
	as.ErrorIs(err, errBoom)
}

func TestScan(t *testing.T) {
	as := assert.New(t)

	p := node.Scan(node.FromSlice(1, 2, 3, 4), 0, func(acc, i int) int {
		return acc + i
	})
	res, err := runner.Collect(context.Background(), p)
	as.NoError(err)
	as.Equal([]int{1, 3, 6, 10}, res)
}

func TestSkipRepeats(t *testing.T) {
	as := assert.New(t)

	p := node.SkipRepeats(node.FromSlice(1, 1, 2, 2, 2, 1, 3, 3),
		func(l, r int) bool { return l == r },
	)
	res, err := runner.Collect(context.Background(), p)
	as.NoError(err)
	as.Equal([]int{1, 2, 1, 3}, res)
}
