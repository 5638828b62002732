package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue[int]()
	for i := 1; i <= 3; i++ {
		depth, err := q.Put(i)
		require.NoError(t, err)
		assert.Equal(t, i, depth)
	}
	for i := 1; i <= 3; i++ {
		v, ok := q.Take(context.Background())
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	assert.Zero(t, q.Len())
}

func TestQueueTakeBlocks(t *testing.T) {
	q := NewQueue[string]()
	got := make(chan string)
	go func() {
		v, _ := q.Take(context.Background())
		got <- v
	}()

	select {
	case <-got:
		t.Fatal("take returned on an empty queue")
	case <-time.After(20 * time.Millisecond):
	}
	_, err := q.Put("a")
	require.NoError(t, err)
	assert.Equal(t, "a", <-got)
}

func TestQueueTakeCancelled(t *testing.T) {
	q := NewQueue[int]()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, ok := q.Take(ctx)
	assert.False(t, ok)
}

func TestQueueClose(t *testing.T) {
	q := NewQueue[int]()
	_, _ = q.Put(1)
	_, _ = q.Put(2)

	done := make(chan bool)
	q2 := NewQueue[int]()
	go func() {
		_, ok := q2.Take(context.Background())
		done <- ok
	}()
	q2.Close()
	assert.False(t, <-done)

	q.Close()
	q.Close()
	assert.True(t, q.Closed())
	_, err := q.Put(3)
	assert.ErrorIs(t, err, ErrQueueClosed)

	// closed queues are not flushed; the leftovers go to Drain
	_, ok := q.Take(context.Background())
	assert.False(t, ok)
	assert.Equal(t, []int{1, 2}, q.Drain())
	assert.Empty(t, q.Drain())
}

func TestCfgValidate(t *testing.T) {
	cfg := &Cfg{}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint32(5000), cfg.DialTimeoutMs)
	assert.Equal(t, 250*time.Millisecond, cfg.SlowHandle())
	assert.Equal(t, 10, cfg.SentTrailSize)
	assert.Equal(t, time.Second, cfg.ReportInterval())

	assert.Error(t, (&Cfg{CompressionThreshold: -1}).Validate())
	assert.Error(t, (&Cfg{SentTrailSize: 5000}).Validate())
	assert.True(t, DefaultCfg().LogUnhandled)
}
