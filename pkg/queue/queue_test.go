package queue

import (
	"testing"

	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushBackThenPopFrontOrdersFIFOWithinList(t *testing.T) {
	q := New(MinQueue, 4)
	q.AddEvent(10, 0, MainBack)
	q.AddEvent(10, 1, MainBack)
	q.AddEvent(10, 2, MainBack)

	assert.Equal(t, ids.DeviceId(0), q.Pop())
	assert.Equal(t, ids.DeviceId(1), q.Pop())
	assert.Equal(t, ids.DeviceId(2), q.Pop())
	assert.True(t, q.Empty())
}

func TestMosDiodeAndHiZPushToFrontOfMain(t *testing.T) {
	q := New(MinQueue, 4)
	q.AddEvent(10, 0, MainBack)
	q.AddEvent(10, 1, MosDiode)

	assert.Equal(t, ids.DeviceId(1), q.Pop())
	assert.Equal(t, ids.DeviceId(0), q.Pop())
}

func TestDelayQueueDrainsFirstWhenItsKeyIsEarlier(t *testing.T) {
	q := New(MinQueue, 4)
	q.AddEvent(5, 0, DelayBack)
	q.AddEvent(10, 1, MainBack)

	// delay key (5) sorts earlier than main key (10): delay must go first.
	assert.Equal(t, ids.DeviceId(0), q.Pop())
	assert.Equal(t, ids.DeviceId(1), q.Pop())
}

func TestMainQueuePrefersMainWhenKeysTie(t *testing.T) {
	q := New(MinQueue, 4)
	q.AddEvent(5, 0, DelayBack)
	q.AddEvent(5, 1, MainBack)

	assert.Equal(t, ids.DeviceId(1), q.Pop())
	assert.Equal(t, ids.DeviceId(0), q.Pop())
}

func TestSimQueueAlwaysPrefersMain(t *testing.T) {
	q := New(SimQueue, 4)
	q.AddEvent(100, 0, DelayBack)
	q.AddEvent(1, 1, MainBack)

	assert.Equal(t, ids.DeviceId(1), q.Pop())
	assert.Equal(t, ids.DeviceId(0), q.Pop())
}

func TestMaxQueueDrainsHighestKeyFirst(t *testing.T) {
	q := New(MaxQueue, 4)
	q.AddEvent(100, 0, MainBack)
	q.AddEvent(200, 1, MainBack)
	q.AddEvent(50, 2, MainBack)

	assert.Equal(t, ids.DeviceId(1), q.Pop())
	assert.Equal(t, ids.DeviceId(0), q.Pop())
	assert.Equal(t, ids.DeviceId(2), q.Pop())
}

func TestAddEventPanicsOnDoubleQueue(t *testing.T) {
	q := New(MinQueue, 4)
	q.AddEvent(10, 0, MainBack)
	assert.Panics(t, func() {
		q.AddEvent(20, 0, MainBack)
	})
}

func TestQueueTimeZeroBeforeStart(t *testing.T) {
	q := New(MinQueue, 2)
	assert.Equal(t, EventKey(0), q.QueueTime())
}

func TestQueueTimeReflectsEarliestEvent(t *testing.T) {
	q := New(MinQueue, 4)
	q.AddEvent(30, 0, MainBack)
	q.AddEvent(10, 1, DelayBack)
	assert.Equal(t, EventKey(10), q.QueueTime())
}

func TestLaterForMinQueue(t *testing.T) {
	q := New(MinQueue, 4)
	q.AddEvent(10, 0, MainBack)
	assert.True(t, q.Later(20))
	assert.False(t, q.Later(5))
}

func TestLaterForMaxQueue(t *testing.T) {
	q := New(MaxQueue, 4)
	q.AddEvent(10, 0, MainBack)
	assert.True(t, q.Later(5))
	assert.False(t, q.Later(20))
}

func TestAddLeakGroupsByUnorderedPowerPair(t *testing.T) {
	q := New(MinQueue, 4)
	q.AddLeak(0, 5, 9)
	q.AddLeak(1, 9, 5)

	key := newLeakKey(5, 9)
	require.Contains(t, q.LeakMap, key)
	assert.ElementsMatch(t, []ids.DeviceId{0, 1}, q.LeakMap[key])
}

func TestQueuedReflectsArenaState(t *testing.T) {
	q := New(MinQueue, 4)
	assert.False(t, q.Queued(2))
	q.AddEvent(10, 2, MainBack)
	assert.True(t, q.Queued(2))
	q.Pop()
	assert.False(t, q.Queued(2))
}

func TestResetClearsQueueAndArena(t *testing.T) {
	q := New(MinQueue, 4)
	q.AddEvent(10, 0, MainBack)
	q.Reset()
	assert.True(t, q.Empty())
	assert.Equal(t, int64(0), q.Enqueued)

	// arena slot must be reusable after reset
	q.AddEvent(5, 0, MainBack)
	assert.Equal(t, ids.DeviceId(0), q.Pop())
}
