package transport

import (
	"bytes"
	"context"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"

	"github.com/linchenxuan/craftnet/log"
	"github.com/linchenxuan/craftnet/network/codec"
	"github.com/linchenxuan/craftnet/network/handler"
	"github.com/linchenxuan/craftnet/network/packet"
)

type testBlob struct {
	id   int32
	Data []byte
}

func (p *testBlob) ID() int32 { return p.id }

func (p *testBlob) Decode(r *codec.Reader) error {
	p.Data = r.Rest()
	return r.Err()
}

func (p *testBlob) Encode(w *codec.Writer) error {
	w.Raw(p.Data)
	return nil
}

type testKeepAlive struct{ V int64 }

func (*testKeepAlive) ID() int32                      { return 0x1F }
func (p *testKeepAlive) Decode(r *codec.Reader) error { p.V = r.Int64(); return r.Err() }
func (p *testKeepAlive) Encode(w *codec.Writer) error { w.Int64(p.V); return nil }

type testKeyExchange struct{ Token []byte }

func (*testKeyExchange) ID() int32    { return 0x01 }
func (*testKeyExchange) KeyExchange() {}
func (p *testKeyExchange) Decode(r *codec.Reader) error {
	p.Token = r.ByteArray()
	return r.Err()
}
func (p *testKeyExchange) Encode(w *codec.Writer) error {
	w.ByteArray(p.Token)
	return nil
}

func testRegistry() *packet.Registry {
	reg := packet.NewRegistry()
	packet.Register[testKeepAlive](reg, packet.Play, packet.Clientbound, "Keep Alive")
	return reg
}

// closeCounter counts Close calls on the client end of the pipe.
type closeCounter struct {
	net.Conn
	closes atomic.Int32
}

func (c *closeCounter) Close() error {
	c.closes.Add(1)
	return c.Conn.Close()
}

type pipeEnv struct {
	conn   *Conn
	client *closeCounter
	server net.Conn
	dec    *codec.FrameDecoder
	enc    *codec.FrameEncoder
}

func newPipeEnv(t *testing.T, h handler.PhaseHandler, cfg *Cfg) *pipeEnv {
	t.Helper()
	client, server := net.Pipe()
	cc := &closeCounter{Conn: client}
	if cfg == nil {
		cfg = DefaultCfg()
	}
	c, err := NewConn(context.Background(), "pipe:25565", cfg, Option{
		Handler:  h,
		Registry: testRegistry(),
		Dial: func(context.Context, string, string) (net.Conn, error) {
			return cc, nil
		},
	})
	require.NoError(t, err)
	require.True(t, c.Initialize())
	t.Cleanup(func() {
		c.Dispose()
		_ = server.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = c.Wait(ctx)
	})
	return &pipeEnv{
		conn:   c,
		client: cc,
		server: server,
		dec:    codec.NewFrameDecoder(server, 0),
		enc:    codec.NewFrameEncoder(zlib.DefaultCompression),
	}
}

// readFrame reads one frame the client sent.
func (e *pipeEnv) readFrame(t *testing.T, compression bool) codec.Frame {
	t.Helper()
	require.NoError(t, e.server.SetReadDeadline(time.Now().Add(2*time.Second)))
	f, _, err := e.dec.Decode(compression)
	require.NoError(t, err)
	f.Payload = append([]byte(nil), f.Payload...)
	return f
}

// writeFrame sends one frame to the client.
func (e *pipeEnv) writeFrame(t *testing.T, id int32, payload []byte, compression bool) {
	t.Helper()
	frame, err := e.enc.Encode(codec.AppendBody(nil, id, payload), compression, codec.DefaultCompressionThreshold)
	require.NoError(t, err)
	require.NoError(t, e.server.SetWriteDeadline(time.Now().Add(2*time.Second)))
	_, err = e.server.Write(frame)
	require.NoError(t, err)
}

func keepAlivePayload(v int64) []byte {
	w := codec.NewWriter()
	w.Int64(v)
	return append([]byte(nil), w.Bytes()...)
}

// syncBuffer is a goroutine safe log sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) count(msg string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Count(b.buf.String(), `"message":"`+msg+`"`)
}

func captureLog(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	prev := log.Default()
	log.SetDefaultLogger(log.NewWriterLogger(buf, log.DebugLevel))
	t.Cleanup(func() { log.SetDefaultLogger(prev) })
	return buf
}
