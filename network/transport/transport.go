// Package transport runs one client connection: the phase state machine, the
// read pump decoding inbound frames and the write pump flushing the
// outbound queue.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/linchenxuan/craftnet/event"
	"github.com/linchenxuan/craftnet/network/codec"
	"github.com/linchenxuan/craftnet/network/handler"
	"github.com/linchenxuan/craftnet/network/packet"
)

var (
	ErrQueueClosed        = errors.New("outbound queue closed")
	ErrAlreadyInitialized = errors.New("connection already initialized")
	ErrNotConnected       = errors.New("not connected")
)

// Cfg holds the per connection settings.
type Cfg struct {
	Tag                  string `mapstructure:"tag"`                  // Plugin instance name.
	Addr                 string `mapstructure:"addr"`                 // Default remote address, host:port.
	DialTimeoutMs        uint32 `mapstructure:"dialTimeoutMs"`        // Timeout of the TCP connect.
	CompressionThreshold int    `mapstructure:"compressionThreshold"` // Threshold before the server sends its own.
	MaxFrameSize         int    `mapstructure:"maxFrameSize"`         // Frames claiming more are fatal.
	SlowHandleMs         uint32 `mapstructure:"slowHandleMs"`         // Dispatches slower than this are logged.
	SentTrailSize        int    `mapstructure:"sentTrailSize"`        // Sent ids kept for failure logs.
	ReportIntervalMs     uint32 `mapstructure:"reportIntervalMs"`     // Period of the connection info reporter.
	LogUnhandled         bool   `mapstructure:"logUnhandled"`         // Log the first sighting of an unknown id.
}

// DefaultCfg returns a Cfg with every default filled.
func DefaultCfg() *Cfg {
	return &Cfg{
		DialTimeoutMs:        5000,
		CompressionThreshold: codec.DefaultCompressionThreshold,
		MaxFrameSize:         codec.MaxFrameSize,
		SlowHandleMs:         250,
		SentTrailSize:        10,
		ReportIntervalMs:     1000,
		LogUnhandled:         true,
	}
}

// GetName returns the configuration section of Cfg.
func (c *Cfg) GetName() string {
	return "transport"
}

// Validate fills zero values with defaults and rejects out of range ones.
func (c *Cfg) Validate() error {
	def := DefaultCfg()
	if c.DialTimeoutMs == 0 {
		c.DialTimeoutMs = def.DialTimeoutMs
	}
	if c.MaxFrameSize == 0 {
		c.MaxFrameSize = def.MaxFrameSize
	}
	if c.SlowHandleMs == 0 {
		c.SlowHandleMs = def.SlowHandleMs
	}
	if c.SentTrailSize == 0 {
		c.SentTrailSize = def.SentTrailSize
	}
	if c.ReportIntervalMs == 0 {
		c.ReportIntervalMs = def.ReportIntervalMs
	}
	if c.MaxFrameSize < 0 || c.MaxFrameSize > codec.MaxFrameSize {
		return fmt.Errorf("maxFrameSize must be in 1..%d, got %d", codec.MaxFrameSize, c.MaxFrameSize)
	}
	if c.CompressionThreshold < 0 {
		return fmt.Errorf("compressionThreshold must not be negative, got %d", c.CompressionThreshold)
	}
	if c.SentTrailSize < 0 || c.SentTrailSize > 1024 {
		return fmt.Errorf("sentTrailSize must be in 1..1024, got %d", c.SentTrailSize)
	}
	return nil
}

// DialTimeout returns DialTimeoutMs as a duration.
func (c *Cfg) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutMs) * time.Millisecond
}

// SlowHandle returns SlowHandleMs as a duration.
func (c *Cfg) SlowHandle() time.Duration {
	return time.Duration(c.SlowHandleMs) * time.Millisecond
}

// ReportInterval returns ReportIntervalMs as a duration.
func (c *Cfg) ReportInterval() time.Duration {
	return time.Duration(c.ReportIntervalMs) * time.Millisecond
}

// DialFunc opens the byte stream of a connection.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Option carries the collaborators of a Conn.
type Option struct {
	// Handler receives every resolved inbound packet. Required.
	Handler handler.PhaseHandler

	// Registry resolves ids. packet.Default when nil.
	Registry *packet.Registry

	// Publisher, when set and holding the ConnectionClosed topic, receives
	// the ClosedEvent.
	Publisher *event.Publisher

	// Dial replaces net.Dialer, mostly for tests.
	Dial DialFunc
}

// ClosedEvent is published once when a connection is torn down. Graceful is
// true when the close was requested locally while the socket was up.
type ClosedEvent struct {
	Conn     *Conn
	Graceful bool
}
