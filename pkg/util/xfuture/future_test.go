package xfuture_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/omeyang/xapm/pkg/util/xfuture"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestResolveOnce(t *testing.T) {
	f, resolve, reject := xfuture.New[int]()
	assert.False(t, f.Settled())

	resolve(1)
	resolve(2)
	reject(errors.New("late"))

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.True(t, f.Settled())
}

func TestRejected(t *testing.T) {
	boom := errors.New("boom")
	f := xfuture.Rejected[string](boom)

	v, err := f.Await(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, v)
}

func TestAwait_ContextDone(t *testing.T) {
	f, resolve, _ := xfuture.New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	resolve(7)
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestThen_BeforeAndAfterSettle(t *testing.T) {
	f, resolve, _ := xfuture.New[string]()

	var calls atomic.Int32
	f.Then(func(v string, err error) {
		assert.Equal(t, "ok", v)
		assert.NoError(t, err)
		calls.Add(1)
	})
	f.Then(nil)
	assert.Equal(t, int32(0), calls.Load())

	resolve("ok")
	assert.Equal(t, int32(1), calls.Load())

	f.OnSettle(func(err error) {
		assert.NoError(t, err)
		calls.Add(1)
	})
	assert.Equal(t, int32(2), calls.Load(), "registered after settle runs immediately")
}

func TestOnSettle_NilFuture(t *testing.T) {
	var f *xfuture.Future[int]
	called := false
	f.OnSettle(func(err error) {
		called = true
		assert.NoError(t, err)
	})
	assert.True(t, called)
}

func TestGo(t *testing.T) {
	f := xfuture.Go(context.Background(), func(context.Context) (int, error) {
		return 42, nil
	})
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	boom := errors.New("boom")
	f = xfuture.Go(context.Background(), func(context.Context) (int, error) {
		return 0, boom
	})
	_, err = f.Await(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestGo_Panic(t *testing.T) {
	f := xfuture.Go(context.Background(), func(context.Context) (int, error) {
		panic("bad")
	})
	<-f.Done()
	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, xfuture.ErrPanicked)
	assert.Contains(t, err.Error(), "bad")
}

func TestAwait_AfterCallbacks(t *testing.T) {
	f, resolve, _ := xfuture.New[int]()

	var ran atomic.Bool
	f.OnSettle(func(error) {
		time.Sleep(5 * time.Millisecond)
		ran.Store(true)
	})

	go resolve(1)
	_, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.True(t, ran.Load(), "Await returns only after registered callbacks ran")
}
