package event

import "time"

// Topics published by craftnet.
const (
	// ConnectionClosed carries a transport.ClosedEvent once per connection.
	ConnectionClosed = "ConnectionClosed"
	// ConnectionInfo carries a provider.ConnectionInfo every report interval.
	ConnectionInfo = "ConnectionInfo"
)

// Subscriber receives published values.
type Subscriber func(param any)

// Topic subscription list for a single topic.
type Topic struct {
	timeout     time.Duration // Publish waits at most this long for subscribers.
	subscribers []Subscriber
}
