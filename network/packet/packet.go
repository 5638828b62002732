// Package packet defines the packet contract, protocol phases and the
// registry that resolves (phase, id) pairs to packet kinds.
package packet

import (
	"github.com/linchenxuan/craftnet/network/codec"
)

// Phase is the protocol stage governing which packet ids are meaningful.
type Phase int32

const (
	Handshake Phase = iota
	Status
	Login
	Play
)

// String returns the lower case phase name.
func (p Phase) String() string {
	switch p {
	case Handshake:
		return "handshake"
	case Status:
		return "status"
	case Login:
		return "login"
	case Play:
		return "play"
	}
	return "unknown"
}

// Valid reports whether p is one of the four phases.
func (p Phase) Valid() bool {
	return p >= Handshake && p <= Play
}

// Direction tells which side sends a packet.
type Direction uint8

const (
	// Clientbound packets are sent by the server and decoded here.
	Clientbound Direction = iota
	// Serverbound packets are encoded here and sent to the server.
	Serverbound
)

// Packet is one unit of application data. Decode must consume only its own
// payload. Encode writes the payload, not the id.
type Packet interface {
	ID() int32
	Decode(r *codec.Reader) error
	Encode(w *codec.Writer) error
}

// KeyExchange marks the packet after whose flush encryption switches on.
type KeyExchange interface {
	Packet
	KeyExchange()
}

// NoID is returned by ID on a packet that has not been given one.
const NoID int32 = -1
