package fiber_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/surge/cause"
	"github.com/kode4food/surge/internal/fiber"
)

func TestRaceFirstWins(t *testing.T) {
	as := assert.New(t)

	var loserFinalized atomic.Bool
	err := fiber.Race(context.Background(),
		func(ctx context.Context) error {
			return fiber.Sleep(ctx, 5*time.Millisecond)
		},
		func(ctx context.Context) error {
			defer loserFinalized.Store(true)
			return fiber.Sleep(ctx, time.Minute)
		},
	)
	as.NoError(err)
	as.True(loserFinalized.Load())
}

func TestRaceFirstFailureWins(t *testing.T) {
	as := assert.New(t)

	err := fiber.Race(context.Background(),
		func(ctx context.Context) error {
			return errBoom
		},
		func(ctx context.Context) error {
			return fiber.Sleep(ctx, time.Minute)
		},
	)
	as.ErrorIs(err, errBoom)
}

func TestRaceEmpty(t *testing.T) {
	assert.NoError(t, fiber.Race(context.Background()))
}

func TestSleepInterrupted(t *testing.T) {
	as := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	err := fiber.Sleep(ctx, time.Minute)
	as.True(cause.FromError(err).IsInterruptedOnly())
	as.Less(time.Since(start), time.Second)
}

func TestSleepZero(t *testing.T) {
	as := assert.New(t)
	as.NoError(fiber.Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	as.Error(fiber.Sleep(ctx, 0))
}
