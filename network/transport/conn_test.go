package transport

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linchenxuan/craftnet/event"
	"github.com/linchenxuan/craftnet/network/codec"
	"github.com/linchenxuan/craftnet/network/crypt"
	"github.com/linchenxuan/craftnet/network/handler"
	"github.com/linchenxuan/craftnet/network/packet"
)

func TestSendFIFO(t *testing.T) {
	env := newPipeEnv(t, handler.NewMux(), nil)

	const n = 50
	for i := 0; i < n; i++ {
		env.conn.SendPacket(&testBlob{id: int32(i), Data: []byte{byte(i)}})
	}
	for i := 0; i < n; i++ {
		f := env.readFrame(t, false)
		require.Equal(t, int32(i), f.ID)
		require.Equal(t, []byte{byte(i)}, f.Payload)
	}
}

func TestSendFIFOConcurrentCallers(t *testing.T) {
	env := newPipeEnv(t, handler.NewMux(), nil)

	// each caller sends its own ids in program order
	const callers, each = 4, 25
	var wg sync.WaitGroup
	for c := 0; c < callers; c++ {
		c := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				env.conn.SendPacket(&testBlob{id: int32(c), Data: []byte{byte(i)}})
			}
		}()
	}

	next := make([]byte, callers)
	for i := 0; i < callers*each; i++ {
		f := env.readFrame(t, false)
		require.Equal(t, []byte{next[f.ID]}, f.Payload, "caller %d out of order", f.ID)
		next[f.ID]++
	}
	wg.Wait()
}

func TestInitializeTwice(t *testing.T) {
	env := newPipeEnv(t, handler.NewMux(), nil)
	assert.False(t, env.conn.Initialize())
	assert.ErrorIs(t, env.conn.Open(), ErrAlreadyInitialized)
}

func TestInitializeRefused(t *testing.T) {
	refused := errors.New("connection refused")
	c, err := NewConn(context.Background(), "127.0.0.1:1", nil, Option{
		Handler: handler.NewMux(),
		Dial: func(context.Context, string, string) (net.Conn, error) {
			return nil, refused
		},
	})
	require.NoError(t, err)
	var closed []ClosedEvent
	c.OnClosed(func(ev ClosedEvent) { closed = append(closed, ev) })
	assert.False(t, c.Initialize())
	assert.False(t, c.Connected())
	assert.NoError(t, c.Wait(context.Background()))
	require.Len(t, closed, 1)
	assert.False(t, closed[0].Graceful)
	assert.Same(t, c, closed[0].Conn)

	c.Stop()
	assert.Len(t, closed, 1)

	err = c.Open()
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestOpenReportsDialError(t *testing.T) {
	refused := errors.New("connection refused")
	c, err := NewConn(context.Background(), "127.0.0.1:1", nil, Option{
		Handler: handler.NewMux(),
		Dial: func(context.Context, string, string) (net.Conn, error) {
			return nil, refused
		},
	})
	require.NoError(t, err)
	err = c.Open()
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, err, refused)
}

func TestNewConnValidates(t *testing.T) {
	_, err := NewConn(context.Background(), "x:1", nil, Option{})
	assert.Error(t, err)
	_, err = NewConn(context.Background(), "", nil, Option{Handler: handler.NewMux()})
	assert.Error(t, err)
	_, err = NewConn(context.Background(), "x:1", &Cfg{MaxFrameSize: codec.MaxFrameSize + 1}, Option{Handler: handler.NewMux()})
	assert.Error(t, err)

	c, err := NewConn(context.Background(), "", &Cfg{Addr: "example.org:25565"}, Option{Handler: handler.NewMux()})
	require.NoError(t, err)
	assert.Equal(t, "example.org:25565", c.Addr())
	assert.Equal(t, packet.Handshake, c.Phase())
	assert.Equal(t, packet.Default, c.Registry())
}

func TestDisconnectOnce(t *testing.T) {
	pub := event.NewPublisher()
	require.NoError(t, pub.NewTopic(event.ConnectionClosed, time.Second))
	var published atomic.Int32
	require.NoError(t, pub.RegisterSubscriber(event.ConnectionClosed, func(any) { published.Add(1) }))

	client, server := net.Pipe()
	defer server.Close()
	cc := &closeCounter{Conn: client}
	c, err := NewConn(context.Background(), "pipe:1", nil, Option{
		Handler:   handler.NewMux(),
		Registry:  testRegistry(),
		Publisher: pub,
		Dial:      func(context.Context, string, string) (net.Conn, error) { return cc, nil },
	})
	require.NoError(t, err)

	var closed atomic.Int32
	var graceful atomic.Bool
	c.OnClosed(func(ev ClosedEvent) {
		closed.Add(1)
		graceful.Store(ev.Graceful)
		assert.Same(t, c, ev.Conn)
	})
	require.True(t, c.Initialize())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); c.Stop() }()
		go func() { defer wg.Done(); c.Disconnect(false) }()
	}
	wg.Wait()

	assert.Equal(t, int32(1), closed.Load())
	assert.Equal(t, int32(1), published.Load())
	assert.Equal(t, int32(1), cc.closes.Load())
	assert.False(t, c.Connected())
	require.NoError(t, c.Wait(context.Background()))
}

func TestStopIsGraceful(t *testing.T) {
	env := newPipeEnv(t, handler.NewMux(), nil)
	var graceful atomic.Bool
	env.conn.OnClosed(func(ev ClosedEvent) { graceful.Store(ev.Graceful) })
	env.conn.Stop()
	assert.True(t, graceful.Load())
	assert.Error(t, env.conn.Context().Err())
}

func TestParentCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client, server := net.Pipe()
	defer server.Close()
	c, err := NewConn(ctx, "pipe:1", nil, Option{
		Handler: handler.NewMux(),
		Dial:    func(context.Context, string, string) (net.Conn, error) { return client, nil },
	})
	require.NoError(t, err)
	require.True(t, c.Initialize())

	cancel()
	wctx, wcancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer wcancel()
	require.NoError(t, c.Wait(wctx))
	assert.False(t, c.Connected())
}

func TestPeerCloseDisconnects(t *testing.T) {
	env := newPipeEnv(t, handler.NewMux(), nil)
	closed := make(chan ClosedEvent, 1)
	env.conn.OnClosed(func(ev ClosedEvent) { closed <- ev })

	require.NoError(t, env.server.Close())
	select {
	case ev := <-closed:
		assert.False(t, ev.Graceful)
	case <-time.After(2 * time.Second):
		t.Fatal("no close after peer hang up")
	}
}

func TestUnhandledTally(t *testing.T) {
	logs := captureLog(t)
	mux := handler.NewMux()
	got := make(chan int64, 1)
	handler.Handle(mux, packet.Play, func(p *testKeepAlive) error {
		got <- p.V
		return nil
	})
	env := newPipeEnv(t, mux, nil)
	env.conn.SetPhase(packet.Play)

	const n = 7
	for i := 0; i < n; i++ {
		env.writeFrame(t, 0x20, []byte{1, 2, 3}, false)
	}
	env.writeFrame(t, 0x1F, keepAlivePayload(99), false)

	select {
	case v := <-got:
		assert.Equal(t, int64(99), v)
	case <-time.After(2 * time.Second):
		t.Fatal("keep alive not dispatched")
	}
	assert.Equal(t, map[packet.Phase]map[int32]int64{packet.Play: {0x20: n}}, env.conn.UnhandledCounts())
	assert.Equal(t, 1, logs.count("unhandled packet"))

	env.conn.Dispose()
	assert.Equal(t, 1, logs.count("unhandled packet summary"))
	assert.Empty(t, env.conn.UnhandledCounts())
}

func TestUnknownIDInOtherPhase(t *testing.T) {
	mux := handler.NewMux()
	env := newPipeEnv(t, mux, nil)
	env.conn.SetPhase(packet.Login)

	// 0x1F only has a codec in Play
	env.writeFrame(t, 0x1F, keepAlivePayload(1), false)
	require.Eventually(t, func() bool {
		return env.conn.UnhandledCounts()[packet.Login][0x1F] == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.True(t, env.conn.Connected())
}

func TestHandlerErrorDisconnects(t *testing.T) {
	mux := handler.NewMux()
	handler.Handle(mux, packet.Play, func(*testKeepAlive) error { return errors.New("bad state") })
	env := newPipeEnv(t, mux, nil)
	env.conn.SetPhase(packet.Play)
	env.writeFrame(t, 0x1F, keepAlivePayload(1), false)

	wctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, env.conn.Wait(wctx))
	assert.False(t, env.conn.Connected())
}

func TestHandlerPanicDisconnects(t *testing.T) {
	mux := handler.NewMux()
	handler.Handle(mux, packet.Play, func(*testKeepAlive) error { panic("boom") })
	env := newPipeEnv(t, mux, nil)
	env.conn.SetPhase(packet.Play)
	env.writeFrame(t, 0x1F, keepAlivePayload(1), false)

	wctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, env.conn.Wait(wctx))
}

func TestMalformedFrameDisconnects(t *testing.T) {
	env := newPipeEnv(t, handler.NewMux(), nil)
	env.conn.SetPhase(packet.Play)
	// keep alive payload is 8 bytes; send 3
	env.writeFrame(t, 0x1F, []byte{1, 2, 3}, false)

	wctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, env.conn.Wait(wctx))
}

func TestSlowHandleWarns(t *testing.T) {
	logs := captureLog(t)
	mux := handler.NewMux()
	done := make(chan struct{})
	handler.Handle(mux, packet.Play, func(*testKeepAlive) error {
		time.Sleep(30 * time.Millisecond)
		close(done)
		return nil
	})
	cfg := DefaultCfg()
	cfg.SlowHandleMs = 5
	env := newPipeEnv(t, mux, cfg)
	env.conn.SetPhase(packet.Play)
	env.writeFrame(t, 0x1F, keepAlivePayload(1), false)

	<-done
	require.Eventually(t, func() bool { return logs.count("slow packet handling") == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, env.conn.Connected())
}

func TestSendPacketWithoutIDPanics(t *testing.T) {
	env := newPipeEnv(t, handler.NewMux(), nil)
	assert.Panics(t, func() { env.conn.SendPacket(&testBlob{id: packet.NoID}) })
	assert.Panics(t, func() { env.conn.SendPacket(nil) })
}

func TestSendAfterDisconnectDrops(t *testing.T) {
	env := newPipeEnv(t, handler.NewMux(), nil)
	env.conn.Stop()

	p := &testBlob{id: 5, Data: []byte("x")}
	assert.NotPanics(t, func() { env.conn.SendPacket(p) })
	assert.Zero(t, env.conn.QueueLen())
	assert.Nil(t, p.Data, "dropped packet is released")
}

func TestDisposeReleasesQueued(t *testing.T) {
	c, err := NewConn(context.Background(), "pipe:1", nil, Option{Handler: handler.NewMux()})
	require.NoError(t, err)

	queued := []*testBlob{{id: 1, Data: []byte("a")}, {id: 2, Data: []byte("b")}}
	for _, p := range queued {
		c.SendPacket(p)
	}
	assert.Equal(t, 2, c.QueueLen())

	c.Dispose()
	assert.Zero(t, c.QueueLen())
	for _, p := range queued {
		assert.Nil(t, p.Data)
	}
	assert.NoError(t, c.Wait(context.Background()))
	c.Dispose()
}

func TestCompressionSnapshot(t *testing.T) {
	env := newPipeEnv(t, handler.NewMux(), nil)
	big := make([]byte, 600)
	for i := range big {
		big[i] = byte(i % 7)
	}

	env.conn.SendPacket(&testBlob{id: 1, Data: big})
	env.conn.SendPacket(&testBlob{id: 2, Data: big})
	env.conn.EnableCompression(256)
	env.conn.SendPacket(&testBlob{id: 3, Data: big})

	assert.Equal(t, int32(1), env.readFrame(t, false).ID)
	assert.Equal(t, int32(2), env.readFrame(t, false).ID)
	f := env.readFrame(t, true)
	assert.Equal(t, int32(3), f.ID)
	assert.Equal(t, big, f.Payload)

	// compression is sticky
	env.conn.EnableCompression(-1)
	on, threshold := env.conn.Compression()
	assert.True(t, on)
	assert.Equal(t, 256, threshold)
}

func TestCompressedInbound(t *testing.T) {
	mux := handler.NewMux()
	got := make(chan int64, 2)
	var conn atomic.Pointer[Conn]
	handler.Handle(mux, packet.Play, func(p *testKeepAlive) error {
		// the first packet switches compression on, as Set Compression does
		conn.Load().EnableCompression(256)
		got <- p.V
		return nil
	})
	env := newPipeEnv(t, mux, nil)
	conn.Store(env.conn)
	env.conn.SetPhase(packet.Play)

	env.writeFrame(t, 0x1F, keepAlivePayload(1), false)
	env.writeFrame(t, 0x1F, keepAlivePayload(42), true)
	for _, want := range []int64{1, 42} {
		select {
		case v := <-got:
			assert.Equal(t, want, v)
		case <-time.After(2 * time.Second):
			t.Fatal("frame not dispatched")
		}
	}
}

func TestEncryptionActivation(t *testing.T) {
	mux := handler.NewMux()
	got := make(chan int64, 1)
	handler.Handle(mux, packet.Play, func(p *testKeepAlive) error {
		got <- p.V
		return nil
	})
	env := newPipeEnv(t, mux, nil)
	env.conn.SetPhase(packet.Play)

	secret, err := crypt.NewSharedSecret()
	require.NoError(t, err)

	// before the key exchange: plain
	env.conn.SendPacket(&testBlob{id: 0x10, Data: []byte("plain")})
	assert.Equal(t, []byte("plain"), env.readFrame(t, false).Payload)

	require.NoError(t, env.conn.InitEncryption(secret))
	assert.False(t, env.conn.Encrypted())
	env.conn.SendPacket(&testKeyExchange{Token: []byte{9, 9}})
	env.conn.SendPacket(&testBlob{id: 0x11, Data: []byte("secret")})

	// the key exchange packet itself is plain
	server := crypt.NewConn(env.server)
	dec := codec.NewFrameDecoder(server, 0)
	require.NoError(t, env.server.SetReadDeadline(time.Now().Add(2*time.Second)))
	f, _, err := dec.Decode(false)
	require.NoError(t, err)
	assert.Equal(t, int32(0x01), f.ID)
	assert.Equal(t, []byte{2, 9, 9}, f.Payload)

	require.NoError(t, server.Activate(secret))
	f, _, err = dec.Decode(false)
	require.NoError(t, err)
	assert.Equal(t, int32(0x11), f.ID)
	assert.Equal(t, []byte("secret"), f.Payload)
	assert.True(t, env.conn.Encrypted())

	// inbound is decrypted as well
	frame, err := env.enc.Encode(codec.AppendBody(nil, 0x1F, keepAlivePayload(77)), false, 0)
	require.NoError(t, err)
	_, err = server.Write(frame)
	require.NoError(t, err)
	select {
	case v := <-got:
		assert.Equal(t, int64(77), v)
	case <-time.After(2 * time.Second):
		t.Fatal("encrypted frame not dispatched")
	}

	assert.ErrorIs(t, env.conn.InitEncryption(secret), crypt.ErrAlreadyActive)
}

func TestInitEncryptionBeforeOpen(t *testing.T) {
	c, err := NewConn(context.Background(), "pipe:1", nil, Option{Handler: handler.NewMux()})
	require.NoError(t, err)
	assert.ErrorIs(t, c.InitEncryption(make([]byte, 16)), ErrNotConnected)
}

func TestStatsAndTrail(t *testing.T) {
	cfg := DefaultCfg()
	cfg.SentTrailSize = 3
	env := newPipeEnv(t, handler.NewMux(), cfg)

	for i := int32(1); i <= 5; i++ {
		env.conn.SendPacket(&testBlob{id: i, Data: []byte{1}})
	}
	for i := 0; i < 5; i++ {
		env.readFrame(t, false)
	}
	require.Eventually(t, func() bool {
		return len(env.conn.SentTrail()) == 3 && env.conn.SentTrail()[2] == 5
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []int32{3, 4, 5}, env.conn.SentTrail())

	s := env.conn.Stats()
	assert.Equal(t, int64(5), s.PacketsOut)
	// each frame: length, id, one payload byte
	assert.Equal(t, int64(15), s.BytesOut)
	assert.Zero(t, env.conn.Stats().PacketsOut)
}

func TestLatency(t *testing.T) {
	env := newPipeEnv(t, handler.NewMux(), nil)
	env.conn.SetLatency(35 * time.Millisecond)
	assert.Equal(t, 35*time.Millisecond, env.conn.Latency())
	assert.False(t, env.conn.StartTime().IsZero())
}
