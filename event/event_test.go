package event

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicLifecycle(t *testing.T) {
	p := NewPublisher()
	assert.False(t, p.HasTopic(ConnectionInfo))

	require.NoError(t, p.NewTopic(ConnectionInfo, time.Second))
	assert.True(t, p.HasTopic(ConnectionInfo))
	assert.Error(t, p.NewTopic(ConnectionInfo, time.Second), "second NewTopic must fail")

	assert.Error(t, p.RegisterSubscriber(ConnectionClosed, func(any) {}))
	assert.Error(t, p.Publish(ConnectionClosed, nil))
}

func TestPublishFansOut(t *testing.T) {
	p := NewPublisher()
	require.NoError(t, p.NewTopic(ConnectionClosed, 0))

	var mu sync.Mutex
	var got []string
	for _, name := range []string{"provider", "dialer", "cli"} {
		name := name
		require.NoError(t, p.RegisterSubscriber(ConnectionClosed, func(v any) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, name+":"+v.(string))
		}))
	}

	// A zero timeout waits for every subscriber.
	require.NoError(t, p.Publish(ConnectionClosed, "127.0.0.1:25565"))

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{
		"provider:127.0.0.1:25565",
		"dialer:127.0.0.1:25565",
		"cli:127.0.0.1:25565",
	}, got)
}

func TestPublishTimeout(t *testing.T) {
	p := NewPublisher()
	require.NoError(t, p.NewTopic(ConnectionClosed, 20*time.Millisecond))

	release := make(chan struct{})
	defer close(release)
	require.NoError(t, p.RegisterSubscriber(ConnectionClosed, func(any) { <-release }))

	start := time.Now()
	assert.NoError(t, p.Publish(ConnectionClosed, "closed"))
	assert.Less(t, time.Since(start), time.Second)
}

func TestSubscribeWhilePublishing(t *testing.T) {
	p := NewPublisher()
	require.NoError(t, p.NewTopic(ConnectionInfo, time.Second))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = p.RegisterSubscriber(ConnectionInfo, func(any) {})
		}()
		go func() {
			defer wg.Done()
			_ = p.Publish(ConnectionInfo, i)
		}()
	}
	wg.Wait()
}
