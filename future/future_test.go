package future_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/momentics/hioload-chan/api"
	"github.com/momentics/hioload-chan/future"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestFulfil(t *testing.T) {
	p := future.NewPromise[int]()
	f := p.Future()
	assert.False(t, f.Ready())
	assert.Equal(t, "pending", f.State())

	require.NoError(t, p.SetResult(7))
	assert.True(t, f.Ready())
	assert.True(t, f.Fulfilled())
	assert.False(t, f.Failed())
	assert.False(t, f.Cancelled())

	v, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	assert.ErrorIs(t, p.SetResult(8), api.ErrAlreadyResolved)
	assert.ErrorIs(t, p.SetError(errors.New("late")), api.ErrAlreadyResolved)
	assert.False(t, p.Cancel())
	v, _ = p.Get()
	assert.Equal(t, 7, v, "first resolution wins")
}

func TestFailStoresErrorForEveryGet(t *testing.T) {
	p := future.NewPromise[string]()
	boom := errors.New("boom")
	require.NoError(t, p.SetError(boom))
	assert.True(t, p.Failed())

	for i := 0; i < 3; i++ {
		_, err := p.Future().Get()
		assert.Same(t, boom, err)
	}
}

func TestSetErrorRejectsNil(t *testing.T) {
	p := future.NewPromise[int]()
	assert.ErrorIs(t, p.SetError(nil), api.ErrInvalidArgument)
	assert.False(t, p.Ready())
}

func TestCancel(t *testing.T) {
	p := future.NewPromise[int]()
	f := p.Future()
	assert.True(t, f.Cancel())
	assert.False(t, f.Cancel())
	assert.True(t, p.Cancelled())
	_, err := f.Get()
	assert.ErrorIs(t, err, api.ErrCancelled)
	assert.ErrorIs(t, p.SetResult(1), api.ErrAlreadyResolved)
}

func TestWaitTimeouts(t *testing.T) {
	p := future.NewPromise[int]()
	assert.False(t, p.Wait(0))

	start := time.Now()
	assert.False(t, p.Wait(20*time.Millisecond), "never resolved")
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	go func() {
		time.Sleep(5 * time.Millisecond)
		_ = p.SetResult(1)
	}()
	assert.True(t, p.Future().Wait(10*time.Millisecond), "resolved within the budget")
	v, err := p.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.True(t, p.Wait(api.NoTimeout))
}

func TestWaitContext(t *testing.T) {
	p := future.NewPromise[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Future().WaitContext(ctx), context.DeadlineExceeded)

	_, err := p.Future().GetContext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, p.SetResult(3))
	v, err := p.Future().GetContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestManyWaitersObserveOneResolution(t *testing.T) {
	p := future.NewPromise[int]()
	var g errgroup.Group
	results := make([]int, 16)
	for i := range results {
		i := i
		g.Go(func() error {
			v, err := p.Future().Get()
			results[i] = v
			return err
		})
	}
	var resolvers sync.WaitGroup
	wins := make(chan int, 4)
	for i := 0; i < 4; i++ {
		i := i
		resolvers.Add(1)
		go func() {
			defer resolvers.Done()
			if p.SetResult(100+i) == nil {
				wins <- 100 + i
			}
		}()
	}
	resolvers.Wait()
	close(wins)
	require.Len(t, wins, 1)
	winner := <-wins

	require.NoError(t, g.Wait())
	for _, v := range results {
		assert.Equal(t, winner, v)
	}
}

func TestOnCompleteOrder(t *testing.T) {
	p := future.NewPromise[string]()
	var order []int
	p.Future().OnComplete(func(future.Future[string]) { order = append(order, 1) })
	p.Future().OnComplete(func(future.Future[string]) { order = append(order, 2) })
	assert.Empty(t, order)

	require.NoError(t, p.SetResult("x"))
	assert.Equal(t, []int{1, 2}, order)

	var got string
	p.Future().OnComplete(func(f future.Future[string]) { got, _ = f.Get() })
	assert.Equal(t, "x", got, "runs at once when resolved")
	p.Future().OnComplete(nil)
}

func TestDoneChannel(t *testing.T) {
	f := future.Resolved("ready")
	select {
	case <-f.Done():
	default:
		t.Fatal("resolved future's done channel is open")
	}

	r := future.Rejected[int](nil)
	_, err := r.Get()
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestOnCompleteRegisteredDuringDrain(t *testing.T) {
	p := future.NewPromise[int]()
	f := p.Future()
	var order []int
	f.OnComplete(func(f future.Future[int]) {
		order = append(order, 1)
		f.OnComplete(func(future.Future[int]) { order = append(order, 3) })
	})
	f.OnComplete(func(future.Future[int]) { order = append(order, 2) })

	require.NoError(t, p.SetResult(0))
	assert.Equal(t, []int{1, 2, 3}, order, "late registration waits for earlier callbacks")

	f.OnComplete(func(future.Future[int]) { order = append(order, 4) })
	assert.Equal(t, []int{1, 2, 3, 4}, order)
}
