package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/linchenxuan/craftnet/log"
	"github.com/linchenxuan/craftnet/network/handler"
	"github.com/linchenxuan/craftnet/network/packet"
	"github.com/linchenxuan/craftnet/network/protocol"
)

// PingResult is the answer of a status query.
type PingResult struct {
	Addr    string
	Status  *protocol.StatusInfo
	Latency time.Duration
}

// pinger holds the state of one status exchange. Its fields are written by
// the read pump and read once the exchange ends.
type pinger struct {
	lock       sync.Mutex
	status     *protocol.StatusInfo
	requested  time.Time
	answered   time.Time
	pingSent   time.Time
	payload    int64
	latency    time.Duration
	result     chan error
	resultOnce sync.Once
}

func (pg *pinger) finish(err error) {
	pg.resultOnce.Do(func() { pg.result <- err })
}

// Ping queries the status of the server at addr: handshake, status request,
// then a ping whose round trip is the latency. A server that closes after
// the status answer yields the latency of the status request instead.
func Ping(ctx context.Context, addr string, cfg *Cfg, opt Option) (*PingResult, error) {
	if cfg == nil {
		cfg = DefaultCfg()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client cfg: %w", err)
	}
	hostport, host, port, err := splitAddr(addr)
	if err != nil {
		return nil, err
	}

	pg := &pinger{result: make(chan error, 1)}
	mux := handler.NewMux()
	conn, err := opt.connect(ctx, hostport, optionFor(mux))
	if err != nil {
		return nil, err
	}
	defer conn.Dispose()

	handler.Handle(mux, packet.Status, func(p *protocol.StatusResponse) error {
		info, err := p.Info()
		if err != nil {
			pg.finish(err)
			return err
		}
		now := time.Now()
		pg.lock.Lock()
		pg.status = info
		pg.answered = now
		pg.pingSent = now
		pg.payload = now.UnixMilli()
		pg.lock.Unlock()

		ping := packet.Acquire[protocol.StatusPing]()
		ping.Payload = now.UnixMilli()
		conn.SendPacket(ping)
		return nil
	})
	handler.Handle(mux, packet.Status, func(p *protocol.StatusPong) error {
		pg.lock.Lock()
		pg.latency = time.Since(pg.pingSent)
		if p.Payload != pg.payload {
			log.Warn().Str("remote", hostport).Int64("sent", pg.payload).Int64("got", p.Payload).
				Msg("pong payload mismatch")
		}
		pg.lock.Unlock()
		pg.finish(nil)
		return nil
	})

	if err := conn.Open(); err != nil {
		return nil, err
	}

	hs := packet.Acquire[protocol.Handshake]()
	hs.ProtocolVersion = cfg.ProtocolVersion
	hs.ServerAddress = host
	hs.ServerPort = port
	hs.NextState = protocol.NextStatus
	next := hs.Phase()
	conn.SendPacket(hs)
	conn.SetPhase(next)

	pg.lock.Lock()
	pg.requested = time.Now()
	pg.lock.Unlock()
	conn.SendPacket(packet.Acquire[protocol.StatusRequest]())

	select {
	case err = <-pg.result:
	case <-conn.Done():
		select {
		case err = <-pg.result:
		default:
			err = ErrClosed
		}
	case <-ctx.Done():
		err = ctx.Err()
	}
	conn.Stop()

	pg.lock.Lock()
	defer pg.lock.Unlock()
	if pg.status == nil {
		if err == nil {
			err = ErrClosed
		}
		return nil, fmt.Errorf("ping %s: %w", hostport, err)
	}
	latency := pg.latency
	if latency == 0 {
		latency = pg.answered.Sub(pg.requested)
		log.Debug().Str("remote", hostport).Err(err).Msg("no pong, using the status round trip")
	}
	conn.SetLatency(latency)
	return &PingResult{Addr: hostport, Status: pg.status, Latency: latency}, nil
}
