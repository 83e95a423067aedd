package fiber_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/kode4food/surge/cause"
	"github.com/kode4food/surge/internal/fiber"
)

var errBoom = errors.New("boom")

func TestForkSuccess(t *testing.T) {
	as := assert.New(t)

	sc := fiber.NewScope(context.Background())
	defer sc.Close()

	f := sc.Fork(func(context.Context) error { return nil })
	as.NoError(f.Await(context.Background()))
	as.Nil(f.Cause())
	as.NotEqual(uuid.Nil, f.ID())
}

func TestForkFailure(t *testing.T) {
	as := assert.New(t)

	sc := fiber.NewScope(context.Background())
	defer sc.Close()

	f := sc.Fork(func(context.Context) error { return errBoom })
	err := f.Await(context.Background())
	as.ErrorIs(err, errBoom)
	as.True(f.Cause().IsFailure())
}

func TestForkPanic(t *testing.T) {
	as := assert.New(t)

	sc := fiber.NewScope(context.Background())
	defer sc.Close()

	f := sc.Fork(func(context.Context) error { panic("kaboom") })
	<-f.Done()
	d := f.Cause().Defects()
	as.Len(d, 1)
	as.Equal("kaboom", d[0].Value)
}

func TestFiberID(t *testing.T) {
	as := assert.New(t)

	sc := fiber.NewScope(context.Background())
	defer sc.Close()

	ids := make(chan uuid.UUID, 1)
	f := sc.Fork(func(ctx context.Context) error {
		ids <- fiber.IDFrom(ctx)
		return nil
	})
	as.Equal(f.ID(), <-ids)
	as.Equal(uuid.Nil, fiber.IDFrom(context.Background()))
}

func TestInterruptRunsFinalizers(t *testing.T) {
	as := assert.New(t)

	sc := fiber.NewScope(context.Background())
	defer sc.Close()

	var finalized atomic.Bool
	started := make(chan struct{})
	f := sc.Fork(func(ctx context.Context) error {
		defer func() {
			time.Sleep(10 * time.Millisecond)
			finalized.Store(true)
		}()
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	<-started
	err := f.Interrupt(context.Background())
	as.True(finalized.Load())
	as.True(cause.FromError(err).IsInterruptedOnly())

	// idempotent
	as.Error(f.Interrupt(context.Background()))
}

func TestInterruptIdentity(t *testing.T) {
	as := assert.New(t)

	sc := fiber.NewScope(context.Background())
	defer sc.Close()

	victim := sc.Fork(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	var interrupter uuid.UUID
	killer := sc.Fork(func(ctx context.Context) error {
		interrupter = fiber.IDFrom(ctx)
		_ = victim.Interrupt(ctx)
		return nil
	})
	<-killer.Done()

	as.Equal([]uuid.UUID{interrupter}, victim.Cause().Interruptors())
}

func TestScopeClose(t *testing.T) {
	as := assert.New(t)

	sc := fiber.NewScope(context.Background())
	var order []string
	sc.OnClose(func() { order = append(order, "first") })
	sc.OnClose(func() { order = append(order, "second") })

	var exited atomic.Int32
	for range 3 {
		sc.Fork(func(ctx context.Context) error {
			defer exited.Add(1)
			<-ctx.Done()
			return ctx.Err()
		})
	}
	as.Equal(3, sc.Len())

	sc.Close()
	as.Equal(int32(3), exited.Load())
	as.Equal([]string{"second", "first"}, order)
	as.Equal(0, sc.Len())

	sc.Close()
	ran := false
	sc.OnClose(func() { ran = true })
	as.True(ran)
}

func TestForkAfterClose(t *testing.T) {
	as := assert.New(t)

	sc := fiber.NewScope(context.Background())
	sc.Close()

	f := sc.Fork(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	<-f.Done()
	as.True(f.Cause().IsInterruptedOnly())
	as.True(sc.IsClosed())
}

func TestForkDuringClose(t *testing.T) {
	as := assert.New(t)

	sc := fiber.NewScope(context.Background())
	var late atomic.Pointer[fiber.Fiber]
	var finalized atomic.Bool

	sc.Fork(func(ctx context.Context) error {
		defer func() {
			late.Store(sc.Fork(func(ctx context.Context) error {
				defer finalized.Store(true)
				<-ctx.Done()
				return ctx.Err()
			}))
		}()
		<-ctx.Done()
		return ctx.Err()
	})

	sc.Close()
	as.True(sc.IsClosed())
	as.True(finalized.Load())
	as.Equal(0, sc.Len())

	f := late.Load()
	as.NotNil(f)
	as.True(f.Cause().IsInterruptedOnly())
}

func TestScopeWait(t *testing.T) {
	as := assert.New(t)

	sc := fiber.NewScope(context.Background())
	defer sc.Close()
	as.NoError(sc.Wait(context.Background()))

	release := make(chan struct{})
	sc.Fork(func(context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	as.Error(sc.Wait(ctx))

	close(release)
	as.NoError(sc.Wait(context.Background()))
}

func TestParentCancel(t *testing.T) {
	as := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	sc := fiber.NewScope(ctx)
	defer sc.Close()

	f := sc.Fork(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	cancel()
	<-f.Done()
	as.True(f.Cause().IsInterruptedOnly())
}
