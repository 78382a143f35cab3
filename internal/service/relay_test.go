package service

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRelay_DeliversToListener(t *testing.T) {
	r := NewRelay(zap.NewNop())
	got := make(chan DeleteRequest, 1)

	stop, err := r.Listen(func(req DeleteRequest) { got <- req })
	require.NoError(t, err)
	defer stop()

	r.RequestDelete("7")

	select {
	case req := <-got:
		assert.Equal(t, DeleteRequest{ID: "7"}, req)
	case <-time.After(time.Second):
		t.Fatal("request not delivered")
	}
}

func TestRelay_SingleListener(t *testing.T) {
	r := NewRelay(nil)

	stop, err := r.Listen(func(DeleteRequest) {})
	require.NoError(t, err)

	_, err = r.Listen(func(DeleteRequest) {})
	assert.ErrorIs(t, err, ErrListenerAttached)

	stop()
	stop()
	assert.False(t, r.Listening())

	t.Run("remount after stop", func(t *testing.T) {
		stop2, err := r.Listen(func(DeleteRequest) {})
		require.NoError(t, err)
		assert.True(t, r.Listening())

		// a stale stop from the first mount must not detach the new listener
		stop()
		assert.True(t, r.Listening())
		stop2()
		assert.False(t, r.Listening())
	})
}

func TestRelay_DropsWithoutListener(t *testing.T) {
	r := NewRelay(nil)
	assert.NotPanics(t, func() { r.RequestDelete("1") })

	var calls atomic.Int32
	stop, err := r.Listen(func(DeleteRequest) { calls.Add(1) })
	require.NoError(t, err)
	defer stop()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestRelay_DoesNotBlockCaller(t *testing.T) {
	r := NewRelay(nil)
	release := make(chan struct{})
	var calls atomic.Int32

	stop, err := r.Listen(func(DeleteRequest) {
		<-release
		calls.Add(1)
	})
	require.NoError(t, err)
	defer stop()

	done := make(chan struct{})
	go func() {
		r.RequestDelete("1")
		r.RequestDelete("2")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RequestDelete blocked on a slow listener")
	}

	close(release)
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)
}

func TestRelay_NoDeliveryAfterStop(t *testing.T) {
	r := NewRelay(nil)
	var calls atomic.Int32
	stop, err := r.Listen(func(DeleteRequest) { calls.Add(1) })
	require.NoError(t, err)
	stop()

	r.RequestDelete("1")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	fast := make(chan Event, 4)
	slow := make(chan Event)

	bus.Subscribe(fast)
	bus.Subscribe(slow)

	dropped := bus.Publish(Event{Type: EventNodeCreated})
	assert.Equal(t, 1, dropped)
	assert.Len(t, fast, 1)

	bus.Unsubscribe(slow)
	assert.Equal(t, 0, bus.Publish(Event{Type: EventNodeDeleted}))
	assert.Len(t, fast, 2)
}
