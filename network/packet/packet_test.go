package packet

import (
	"testing"

	"github.com/linchenxuan/craftnet/network/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPing struct {
	Payload int64
}

func (*testPing) ID() int32 { return 0x01 }

func (p *testPing) Decode(r *codec.Reader) error {
	p.Payload = r.Int64()
	return r.Err()
}

func (p *testPing) Encode(w *codec.Writer) error {
	w.Int64(p.Payload)
	return nil
}

type testChat struct {
	Text string
}

func (*testChat) ID() int32 { return 0x0E }

func (p *testChat) Decode(r *codec.Reader) error {
	p.Text = r.Str()
	return r.Err()
}

func (p *testChat) Encode(w *codec.Writer) error {
	w.Str(p.Text)
	return nil
}

// TestRegistryLookup checks resolution is per phase and direction and that
// unknown ids are not found rather than failing.
func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	d := Register[testPing](r, Status, Clientbound, "Pong")
	Register[testChat](r, Play, Clientbound, "ChatMessage")
	assert.Equal(t, 2, r.Len())

	got, ok := r.Lookup(Status, 0x01)
	require.True(t, ok)
	assert.Same(t, d, got)
	assert.Equal(t, "Pong", got.Name)

	_, ok = r.Lookup(Play, 0x01)
	assert.False(t, ok, "same id in another phase is a different packet")
	_, ok = r.LookupDir(Status, Serverbound, 0x01)
	assert.False(t, ok)
	_, ok = r.Lookup(Play, 0x7F)
	assert.False(t, ok)

	byType, ok := r.DescriptorOf(&testChat{})
	require.True(t, ok)
	assert.Equal(t, Play, byType.Phase)

	p := got.New()
	assert.IsType(t, &testPing{}, p)
}

// TestRegistryNames checks names for ids without codecs and the hex fallback.
func TestRegistryNames(t *testing.T) {
	r := NewRegistry()
	Register[testChat](r, Play, Clientbound, "ChatMessage")
	r.SetNames(Play, Clientbound, map[int32]string{0x21: "Particle"})

	assert.Equal(t, "ChatMessage", r.Name(Play, 0x0E))
	assert.Equal(t, "Particle", r.Name(Play, 0x21))
	assert.Equal(t, "0x7A", r.Name(Play, 0x7A))
	assert.Equal(t, "0x0E", r.NameDir(Play, Serverbound, 0x0E))
	assert.Equal(t, "none", r.Name(Login, NoID))
	assert.Equal(t, "none", r.NameDir(Play, Serverbound, NoID))
}

// TestRegistryDuplicate checks double registration is a programming error.
func TestRegistryDuplicate(t *testing.T) {
	r := NewRegistry()
	Register[testPing](r, Status, Clientbound, "Pong")
	assert.Panics(t, func() { Register[testPing](r, Status, Clientbound, "Pong") })
	assert.Panics(t, func() { Register[testPing](r, Login, Clientbound, "Pong") })
}

// TestPoolRelease checks released packets come back zeroed.
func TestPoolRelease(t *testing.T) {
	for i := 0; i < 3; i++ {
		p := Acquire[testChat]()
		assert.Empty(t, p.Text, "acquired packet must be zero")
		p.Text = "stale"
		Release(p)
		assert.Empty(t, p.Text, "release zeroes before pooling")
	}
	Release(nil)
	var nilChat *testChat
	Release(nilChat)
}

// TestPhase covers names and validity.
func TestPhase(t *testing.T) {
	assert.Equal(t, "handshake", Handshake.String())
	assert.Equal(t, "play", Play.String())
	assert.Equal(t, "unknown", Phase(9).String())
	assert.True(t, Login.Valid())
	assert.False(t, Phase(-1).Valid())
}
