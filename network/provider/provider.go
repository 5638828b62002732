// Package provider sits on top of one connection. It reports the traffic of
// every interval as a ConnectionInfo and turns game actions into packets.
package provider

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/linchenxuan/craftnet/event"
	"github.com/linchenxuan/craftnet/log"
	"github.com/linchenxuan/craftnet/network/packet"
	"github.com/linchenxuan/craftnet/network/transport"
)

var (
	ErrChatTooLong     = errors.New("chat message too long")
	ErrChatRateLimited = errors.New("chat rate limited")
	ErrNotPlaying      = errors.New("connection is not in the play phase")
)

// Conn is the part of transport.Conn the provider drives.
type Conn interface {
	SendPacket(p packet.Packet)
	Phase() packet.Phase
	Connected() bool
	Addr() string
	StartTime() time.Time
	Latency() time.Duration
	Stats() transport.Stats
}

var _ Conn = (*transport.Conn)(nil)

// Option configures a Provider. The zero value reports every second and
// lets two chat lines a second through.
type Option struct {
	Interval  time.Duration
	OnInfo    func(ConnectionInfo)
	Publisher *event.Publisher

	ChatRate  rate.Limit
	ChatBurst int
}

// Provider owns the report loop of one connection.
type Provider struct {
	conn      Conn
	interval  time.Duration
	onInfo    func(ConnectionInfo)
	publisher *event.Publisher
	chat      *rate.Limiter

	info atomic.Pointer[ConnectionInfo]

	lock    sync.Mutex
	cancel  context.CancelFunc
	running sync.WaitGroup
}

// New returns a provider for conn. Call Start to begin reporting.
func New(conn Conn, opt Option) *Provider {
	if opt.Interval <= 0 {
		opt.Interval = time.Second
	}
	if opt.ChatRate == 0 {
		opt.ChatRate = 2
	}
	if opt.ChatBurst <= 0 {
		opt.ChatBurst = 4
	}
	p := &Provider{
		conn:      conn,
		interval:  opt.Interval,
		onInfo:    opt.OnInfo,
		publisher: opt.Publisher,
		chat:      rate.NewLimiter(opt.ChatRate, opt.ChatBurst),
	}
	p.info.Store(&ConnectionInfo{StartTime: time.Now()})
	return p
}

// Start runs the report loop until ctx ends or Close is called. A second
// Start while running does nothing.
func (p *Provider) Start(ctx context.Context) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.running.Add(1)
	go p.reportLoop(ctx)
}

// Close stops the report loop and waits for it.
func (p *Provider) Close() {
	p.lock.Lock()
	cancel := p.cancel
	p.lock.Unlock()
	if cancel != nil {
		cancel()
	}
	p.running.Wait()
}

// IsConnected reports whether the underlying socket is up.
func (p *Provider) IsConnected() bool {
	return p.conn.Connected()
}

// Info returns the latest report.
func (p *Provider) Info() ConnectionInfo {
	return *p.info.Load()
}

func (p *Provider) reportLoop(ctx context.Context) {
	defer p.running.Done()
	log.Debug().Str("remote", p.conn.Addr()).Dur("interval", p.interval).Msg("connection reporter started")
	defer log.Debug().Str("remote", p.conn.Addr()).Msg("connection reporter exited")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.report()
		}
	}
}
