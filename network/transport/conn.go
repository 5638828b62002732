package transport

import (
	"context"
	"fmt"
	"net"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/linchenxuan/craftnet/event"
	"github.com/linchenxuan/craftnet/log"
	"github.com/linchenxuan/craftnet/metrics"
	"github.com/linchenxuan/craftnet/network/crypt"
	"github.com/linchenxuan/craftnet/network/handler"
	"github.com/linchenxuan/craftnet/network/packet"
)

// envelope is a queued packet with the compression state at enqueue time.
type envelope struct {
	pkt       packet.Packet
	phase     packet.Phase
	compress  bool
	threshold int
}

// Conn is one outbound session. Create it with NewConn, start it with
// Initialize and end it with Stop or Dispose.
type Conn struct {
	cfg       *Cfg
	addr      string
	handler   handler.PhaseHandler
	registry  *packet.Registry
	publisher *event.Publisher
	dial      DialFunc

	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc

	initialized atomic.Bool
	stopped     atomic.Bool
	closed      atomic.Bool // disconnect guard
	disposed    atomic.Bool
	connected   atomic.Bool

	phase       atomic.Int32
	compression atomic.Bool
	threshold   atomic.Int32

	sockLock  sync.Mutex // guards sock, stream and started
	sock      net.Conn
	stream    *crypt.Conn
	started   bool
	queue     *Queue[envelope]
	startTime time.Time
	latency   atomic.Int64

	lastRecv atomic.Int32
	lastSent atomic.Int32

	stats     counters
	trail     *trail
	unhandled *unhandledTable

	lock     sync.Mutex
	onClosed []func(ClosedEvent)

	pumps    sync.WaitGroup
	done     chan struct{}
	doneOnce sync.Once
}

// NewConn returns a connection to addr in the Handshake phase. ctx bounds its
// whole life: cancelling it stops the connection. cfg may be nil.
func NewConn(ctx context.Context, addr string, cfg *Cfg, opt Option) (*Conn, error) {
	if cfg == nil {
		cfg = DefaultCfg()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transport cfg: %w", err)
	}
	if opt.Handler == nil {
		return nil, fmt.Errorf("transport: nil handler")
	}
	if addr == "" {
		addr = cfg.Addr
	}
	if addr == "" {
		return nil, fmt.Errorf("transport: empty address")
	}
	c := &Conn{
		cfg:       cfg,
		addr:      addr,
		handler:   opt.Handler,
		registry:  opt.Registry,
		publisher: opt.Publisher,
		dial:      opt.Dial,
		parent:    ctx,
		queue:     NewQueue[envelope](),
		trail:     newTrail(cfg.SentTrailSize),
		unhandled: newUnhandledTable(),
		done:      make(chan struct{}),
	}
	if c.registry == nil {
		c.registry = packet.Default
	}
	if c.dial == nil {
		d := &net.Dialer{}
		c.dial = d.DialContext
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.phase.Store(int32(packet.Handshake))
	c.threshold.Store(int32(cfg.CompressionThreshold))
	c.lastRecv.Store(packet.NoID)
	c.lastSent.Store(packet.NoID)
	return c, nil
}

// Initialize connects and starts both pumps. It returns false if the dial
// fails or the connection was initialized before. Use Open for the reason.
func (c *Conn) Initialize() bool {
	if err := c.Open(); err != nil {
		log.Warn().Err(err).Str("remote", c.addr).Msg("connection initialize failed")
		return false
	}
	return true
}

// Open is Initialize reporting why it failed.
func (c *Conn) Open() error {
	if !c.initialized.CompareAndSwap(false, true) {
		return ErrAlreadyInitialized
	}

	dctx, cancel := context.WithTimeout(c.ctx, c.cfg.DialTimeout())
	sock, err := c.dial(dctx, "tcp", c.addr)
	cancel()
	if err != nil {
		// Run the normal teardown so OnClosed owners release the connection.
		c.stopped.Store(true)
		c.Disconnect(false)
		return fmt.Errorf("%w: dial %s: %w", ErrNotConnected, c.addr, err)
	}

	c.sockLock.Lock()
	if c.closed.Load() {
		c.sockLock.Unlock()
		_ = sock.Close()
		c.closeDone()
		return fmt.Errorf("%w: stopped while dialing %s", ErrNotConnected, c.addr)
	}
	c.sock = sock
	c.stream = crypt.NewConn(sock)
	c.started = true
	c.startTime = time.Now()
	c.connected.Store(true)
	c.pumps.Add(2)
	go c.readPump()
	go c.writePump()
	c.sockLock.Unlock()

	go func() {
		c.pumps.Wait()
		c.closeDone()
	}()
	context.AfterFunc(c.ctx, c.Stop)

	metrics.IncrCounterWithGroup(metrics.NameConnOpenTotal, metrics.GroupNet, 1)
	log.Info().Str("remote", c.addr).Str("local", sock.LocalAddr().String()).Msg("connection established")
	return nil
}

// Stop cancels the connection and disconnects it. Only the first call has
// an effect.
func (c *Conn) Stop() {
	if !c.stopped.CompareAndSwap(false, true) {
		return
	}
	c.cancel()
	c.Disconnect(c.connected.Load())
}

// Disconnect tears the connection down exactly once, whoever calls it and
// however many race. graceful tells subscribers whether the close was asked
// for locally while the socket was still up.
func (c *Conn) Disconnect(graceful bool) {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.cancel()
	c.queue.Close()
	c.sockLock.Lock()
	if c.sock != nil {
		if err := c.sock.Close(); err != nil {
			log.Debug().Err(err).Str("remote", c.addr).Msg("socket close")
		}
	}
	started := c.started
	c.sockLock.Unlock()
	c.connected.Store(false)
	if !started {
		c.closeDone()
	}

	metrics.IncrCounterWithDimGroup(metrics.NameConnCloseTotal, metrics.GroupNet, 1, metrics.Dimension{
		metrics.DimGraceful: fmt.Sprint(graceful),
	})
	log.Info().Str("remote", c.addr).Str("phase", c.Phase().String()).Bool("graceful", graceful).
		Msg("connection closed")

	ev := ClosedEvent{Conn: c, Graceful: graceful}
	c.lock.Lock()
	cbs := slices.Clone(c.onClosed)
	c.lock.Unlock()
	for _, fn := range cbs {
		fn(ev)
	}
	if c.publisher != nil && c.publisher.HasTopic(event.ConnectionClosed) {
		if err := c.publisher.Publish(event.ConnectionClosed, ev); err != nil {
			log.Warn().Err(err).Str("remote", c.addr).Msg("publish connection closed")
		}
	}
}

// Dispose stops the connection, releases every queued packet and logs the
// unhandled table. It does not wait for the pumps; see Wait.
func (c *Conn) Dispose() {
	if !c.disposed.CompareAndSwap(false, true) {
		return
	}
	c.Stop()
	for _, env := range c.queue.Drain() {
		packet.Release(env.pkt)
	}
	for phase, ids := range c.unhandled.drain() {
		for id, n := range ids {
			log.Info().Str("remote", c.addr).Str("phase", phase.String()).
				Str("packet", c.registry.Name(phase, id)).Int32("id", id).Int64("count", n).
				Msg("unhandled packet summary")
		}
	}
}

// Wait blocks until both pumps have exited or ctx ends. For a connection
// whose dial failed, or that closed before dialing, it returns at once.
func (c *Conn) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when both pumps have exited.
func (c *Conn) Done() <-chan struct{} { return c.done }

func (c *Conn) closeDone() {
	c.doneOnce.Do(func() { close(c.done) })
}

func (c *Conn) cryptStream() *crypt.Conn {
	c.sockLock.Lock()
	defer c.sockLock.Unlock()
	return c.stream
}

// OnClosed registers fn to run with the ClosedEvent, on the goroutine that
// disconnects.
func (c *Conn) OnClosed(fn func(ClosedEvent)) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.onClosed = append(c.onClosed, fn)
}

// SendPacket queues p. The connection owns p from here on and returns it to
// its pool after the flush. A packet without an id is a programming error
// and panics. After Disconnect the packet is logged and dropped.
func (c *Conn) SendPacket(p packet.Packet) {
	if p == nil || p.ID() < 0 {
		panic(fmt.Sprintf("transport: send of %T without a packet id", p))
	}
	env := envelope{
		pkt:       p,
		phase:     c.Phase(),
		compress:  c.compression.Load(),
		threshold: int(c.threshold.Load()),
	}
	depth, err := c.queue.Put(env)
	if err != nil {
		log.Warn().Err(err).Str("remote", c.addr).Str("phase", env.phase.String()).
			Str("packet", c.registry.NameDir(env.phase, packet.Serverbound, p.ID())).
			Msg("dropping packet")
		metrics.IncrCounterWithGroup(metrics.NameSendDroppedTotal, metrics.GroupNet, 1)
		packet.Release(p)
		return
	}
	metrics.UpdateMaxGaugeWithGroup(metrics.NameQueueDepthMax, metrics.GroupNet, metrics.Value(depth))
}

// InitEncryption stores the shared secret. Encryption switches on for both
// directions right after the next key exchange packet is flushed, so call it
// before queueing that packet.
func (c *Conn) InitEncryption(secret []byte) error {
	stream := c.cryptStream()
	if stream == nil {
		return ErrNotConnected
	}
	if stream.Active() {
		return crypt.ErrAlreadyActive
	}
	stream.Prepare(secret)
	return nil
}

// Encrypted reports whether the stream cipher is active.
func (c *Conn) Encrypted() bool {
	stream := c.cryptStream()
	return stream != nil && stream.Active()
}

// EnableCompression turns the compression envelope on with threshold.
// Compression stays on for the life of the connection: a negative threshold
// after enabling is ignored.
func (c *Conn) EnableCompression(threshold int) {
	if threshold < 0 {
		if c.compression.Load() {
			log.Warn().Str("remote", c.addr).Int("threshold", threshold).
				Msg("ignoring request to disable compression")
		}
		return
	}
	c.threshold.Store(int32(threshold))
	c.compression.Store(true)
	log.Debug().Str("remote", c.addr).Int("threshold", threshold).Msg("compression enabled")
}

// Compression returns whether compression is on and its threshold.
func (c *Conn) Compression() (bool, int) {
	return c.compression.Load(), int(c.threshold.Load())
}

// Phase returns the current phase.
func (c *Conn) Phase() packet.Phase {
	return packet.Phase(c.phase.Load())
}

// SetPhase moves the connection to phase. The caller drives the order.
func (c *Conn) SetPhase(phase packet.Phase) {
	prev := packet.Phase(c.phase.Swap(int32(phase)))
	log.Debug().Str("remote", c.addr).Str("from", prev.String()).Str("to", phase.String()).Msg("phase change")
}

// Connected reports whether the socket is up.
func (c *Conn) Connected() bool { return c.connected.Load() }

// Addr returns the remote address the connection dials.
func (c *Conn) Addr() string { return c.addr }

// Cfg returns the validated configuration.
func (c *Conn) Cfg() *Cfg { return c.cfg }

// Registry returns the registry resolving inbound ids.
func (c *Conn) Registry() *packet.Registry { return c.registry }

// Context is cancelled when the connection stops.
func (c *Conn) Context() context.Context { return c.ctx }

// StartTime returns when Initialize succeeded.
func (c *Conn) StartTime() time.Time {
	c.sockLock.Lock()
	defer c.sockLock.Unlock()
	return c.startTime
}

// Latency returns the last latency set with SetLatency.
func (c *Conn) Latency() time.Duration { return time.Duration(c.latency.Load()) }

// SetLatency records a measured round trip.
func (c *Conn) SetLatency(d time.Duration) {
	c.latency.Store(int64(d))
	metrics.UpdateGaugeWithGroup(metrics.NameLatencyMS, metrics.GroupNet, metrics.Value(d.Milliseconds()))
}

// Stats returns the traffic since the previous call and resets the counters.
func (c *Conn) Stats() Stats { return c.stats.swap() }

// UnhandledCounts returns a copy of the unhandled table.
func (c *Conn) UnhandledCounts() map[packet.Phase]map[int32]int64 {
	return c.unhandled.snapshot()
}

// SentTrail returns the last sent ids, oldest first.
func (c *Conn) SentTrail() []int32 {
	s := c.trail.snapshot()
	ids := make([]int32, len(s))
	for i, e := range s {
		ids[i] = e.id
	}
	return ids
}

// QueueLen returns the packets waiting for the write pump.
func (c *Conn) QueueLen() int { return c.queue.Len() }
