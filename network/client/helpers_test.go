package client

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"

	"github.com/linchenxuan/craftnet/network/codec"
	"github.com/linchenxuan/craftnet/network/crypt"
	"github.com/linchenxuan/craftnet/network/packet"
	"github.com/linchenxuan/craftnet/network/transport"
)

// fakeServer plays the server end of a net.Pipe from the test goroutine.
type fakeServer struct {
	t         *testing.T
	conn      net.Conn
	stream    *crypt.Conn
	dec       *codec.FrameDecoder
	enc       *codec.FrameEncoder
	compress  bool
	threshold int
}

func newFakeServer(t *testing.T) (*fakeServer, transport.DialFunc) {
	t.Helper()
	client, server := net.Pipe()
	stream := crypt.NewConn(server)
	t.Cleanup(func() { _ = server.Close() })
	s := &fakeServer{
		t:      t,
		conn:   server,
		stream: stream,
		dec:    codec.NewFrameDecoder(stream, 0),
		enc:    codec.NewFrameEncoder(zlib.DefaultCompression),
	}
	dial := func(context.Context, string, string) (net.Conn, error) {
		return client, nil
	}
	return s, dial
}

func (s *fakeServer) send(p packet.Packet) {
	s.t.Helper()
	w := codec.NewWriter()
	require.NoError(s.t, p.Encode(w))
	body := codec.AppendBody(nil, p.ID(), w.Bytes())
	frame, err := s.enc.Encode(body, s.compress, s.threshold)
	require.NoError(s.t, err)
	require.NoError(s.t, s.conn.SetWriteDeadline(time.Now().Add(2*time.Second)))
	_, err = s.stream.Write(frame)
	require.NoError(s.t, err)
}

// expect reads the next frame and decodes it into p.
func (s *fakeServer) expect(p packet.Packet) {
	s.t.Helper()
	require.NoError(s.t, s.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	f, _, err := s.dec.Decode(s.compress)
	require.NoError(s.t, err)
	require.Equal(s.t, p.ID(), f.ID, "packet id of %T", p)
	require.NoError(s.t, p.Decode(codec.NewReader(f.Payload)))
}

func (s *fakeServer) enableCompression(threshold int) {
	s.compress = true
	s.threshold = threshold
}
