// Package protocol holds the packet codecs of protocol version 754
// (Minecraft Java Edition 1.16.4 and 1.16.5) and registers them with
// packet.Default.
package protocol

import (
	"github.com/linchenxuan/craftnet/network/codec"
	"github.com/linchenxuan/craftnet/network/packet"
)

// Version is the protocol version these codecs implement.
const Version int32 = 754

// Next states carried by Handshake.
const (
	NextStatus int32 = 1
	NextLogin  int32 = 2
)

// Handshake opens every connection and selects Status or Login.
type Handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       int32
}

func (*Handshake) ID() int32 { return 0x00 }

func (p *Handshake) Decode(r *codec.Reader) error {
	p.ProtocolVersion = r.VarInt()
	p.ServerAddress = r.Str()
	p.ServerPort = r.UInt16()
	p.NextState = r.VarInt()
	return r.Err()
}

func (p *Handshake) Encode(w *codec.Writer) error {
	w.VarInt(p.ProtocolVersion)
	w.Str(p.ServerAddress)
	w.UInt16(p.ServerPort)
	w.VarInt(p.NextState)
	return nil
}

// Phase returns the phase NextState selects.
func (p *Handshake) Phase() packet.Phase {
	if p.NextState == NextStatus {
		return packet.Status
	}
	return packet.Login
}

// Raw carries an opaque payload under an explicit id. The zero Raw has no
// id and is rejected by the connection.
type Raw struct {
	id    int32
	valid bool
	Data  []byte
}

// NewRaw builds a Raw packet.
func NewRaw(id int32, data []byte) *Raw {
	return &Raw{id: id, valid: true, Data: data}
}

func (p *Raw) ID() int32 {
	if !p.valid {
		return packet.NoID
	}
	return p.id
}

func (p *Raw) Decode(r *codec.Reader) error {
	p.Data = r.Rest()
	return r.Err()
}

func (p *Raw) Encode(w *codec.Writer) error {
	w.Raw(p.Data)
	return nil
}
