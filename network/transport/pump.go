package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/klauspost/compress/zlib"

	"github.com/linchenxuan/craftnet/log"
	"github.com/linchenxuan/craftnet/metrics"
	"github.com/linchenxuan/craftnet/network/codec"
	"github.com/linchenxuan/craftnet/network/packet"
)

const _readBufferSize = 32 << 10

// readPump decodes one frame at a time and dispatches it in arrival order.
// The socket read blocks on the runtime netpoller, so an idle connection
// costs no CPU and Disconnect unblocks it by closing the socket.
func (c *Conn) readPump() {
	defer c.pumps.Done()

	err := c.recvLoop()
	if err == nil || c.ctx.Err() != nil {
		return
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		log.Info().Str("remote", c.addr).Str("phase", c.Phase().String()).Msg("connection closed by peer")
	} else {
		c.logFailure("read pump", err)
	}
	c.Disconnect(false)
}

func (c *Conn) recvLoop() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in read pump: %v", r)
		}
	}()

	dec := codec.NewFrameDecoder(bufio.NewReaderSize(c.stream, _readBufferSize), c.cfg.MaxFrameSize)
	r := codec.NewReader(nil)
	slow := c.cfg.SlowHandle()

	for {
		if c.ctx.Err() != nil {
			return nil
		}
		frame, wireLen, err := dec.Decode(c.compression.Load())
		if err != nil {
			return err
		}
		phase := c.Phase()
		c.lastRecv.Store(frame.ID)
		c.stats.statRecv(phase, wireLen)

		desc, ok := c.registry.Lookup(phase, frame.ID)
		if !ok {
			c.recordUnhandled(phase, frame.ID)
			continue
		}

		p := desc.New()
		r.Reset(frame.Payload)
		if err := p.Decode(r); err != nil {
			packet.Release(p)
			return fmt.Errorf("decode %s: %w", desc.Name, err)
		}
		if rest := r.Len(); rest > 0 {
			log.Debug().Str("remote", c.addr).Str("packet", desc.Name).Int("trailing", rest).
				Msg("packet left payload bytes unread")
		}

		start := time.Now()
		err = c.dispatch(phase, p)
		elapsed := time.Since(start)
		packet.Release(p)
		if elapsed > slow {
			metrics.IncrCounterWithDimGroup(metrics.NameSlowHandleTotal, metrics.GroupNet, 1, phaseDim(phase))
			log.Warn().Str("remote", c.addr).Str("phase", phase.String()).Str("packet", desc.Name).
				Dur("elapsed", elapsed).Msg("slow packet handling")
		}
		if err != nil {
			return fmt.Errorf("handle %s: %w", desc.Name, err)
		}
	}
}

func (c *Conn) dispatch(phase packet.Phase, p packet.Packet) error {
	switch phase {
	case packet.Handshake:
		return c.handler.HandleHandshake(p)
	case packet.Status:
		return c.handler.HandleStatus(p)
	case packet.Login:
		return c.handler.HandleLogin(p)
	case packet.Play:
		return c.handler.HandlePlay(p)
	}
	return fmt.Errorf("dispatch in invalid phase %d", phase)
}

func (c *Conn) recordUnhandled(phase packet.Phase, id int32) {
	metrics.IncrCounterWithDimGroup(metrics.NameUnhandledPacketTotal, metrics.GroupNet, 1, phaseDim(phase))
	if n := c.unhandled.record(phase, id); n == 1 && c.cfg.LogUnhandled {
		log.Debug().Str("remote", c.addr).Str("phase", phase.String()).Int32("id", id).
			Str("packet", c.registry.Name(phase, id)).Msg("unhandled packet")
	}
}

// writePump flushes envelopes in queue order until the queue closes or the
// connection is cancelled. Envelopes left in the queue are not flushed.
func (c *Conn) writePump() {
	defer c.pumps.Done()

	err := c.sendLoop()
	if err == nil || c.ctx.Err() != nil {
		return
	}
	c.logFailure("write pump", err)
	c.Disconnect(false)
}

func (c *Conn) sendLoop() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in write pump: %v", r)
		}
	}()

	enc := codec.NewFrameEncoder(zlib.DefaultCompression)
	w := codec.NewWriter()

	for {
		env, ok := c.queue.Take(c.ctx)
		if !ok {
			return nil
		}
		err := c.flush(enc, w, env)
		packet.Release(env.pkt)
		if err != nil {
			return err
		}
	}
}

func (c *Conn) flush(enc *codec.FrameEncoder, w *codec.Writer, env envelope) error {
	id := env.pkt.ID()
	w.Reset()
	w.VarInt(id)
	if err := env.pkt.Encode(w); err != nil {
		return fmt.Errorf("encode 0x%02X: %w", id, err)
	}
	frame, err := enc.Encode(w.Bytes(), env.compress, env.threshold)
	if err != nil {
		return fmt.Errorf("frame 0x%02X: %w", id, err)
	}

	var n int
	if _, ok := env.pkt.(packet.KeyExchange); ok {
		var activated bool
		n, activated, err = c.stream.WriteThenActivate(frame)
		if activated {
			log.Debug().Str("remote", c.addr).Msg("encryption enabled")
		}
	} else {
		n, err = c.stream.Write(frame)
	}
	if err != nil {
		return fmt.Errorf("write 0x%02X: %w", id, err)
	}

	c.stats.statSend(env.phase, n)
	c.lastSent.Store(id)
	c.trail.push(env.phase, id)
	return nil
}

func (c *Conn) logFailure(pump string, err error) {
	phase := c.Phase()
	lastRecv, lastSent := c.lastRecv.Load(), c.lastSent.Load()
	log.Error().Err(err).Str("remote", c.addr).Str("pump", pump).Str("phase", phase.String()).
		Str("lastRecv", c.registry.Name(phase, lastRecv)).
		Str("lastSent", c.registry.NameDir(phase, packet.Serverbound, lastSent)).
		Str("sentTrail", c.trail.render(c.registry)).
		Msg("connection failed")
}
