// Package handler routes resolved inbound packets. A PhaseHandler receives
// every packet the read pump resolves; Mux implements it with per kind
// routes and a filter chain.
package handler

import (
	"github.com/linchenxuan/craftnet/network/packet"
)

// PhaseHandler has one entry point per phase. Packets are only valid for
// the duration of the call: the connection returns them to their pool
// afterwards. A non-nil error is fatal to the connection.
type PhaseHandler interface {
	HandleHandshake(p packet.Packet) error
	HandleStatus(p packet.Packet) error
	HandleLogin(p packet.Packet) error
	HandlePlay(p packet.Packet) error
}

// HandleFunc processes one packet.
type HandleFunc func(p packet.Packet) error

// Filter intercepts a packet before its route and calls next to continue.
type Filter func(phase packet.Phase, p packet.Packet, next HandleFunc) error

// FilterChain runs filters in order, ending in the route.
type FilterChain []Filter

// Handle runs the chain for p and finally f.
func (fc FilterChain) Handle(phase packet.Phase, p packet.Packet, f HandleFunc) error {
	if len(fc) == 0 {
		return f(p)
	}
	return fc[0](phase, p, func(p packet.Packet) error {
		return fc[1:].Handle(phase, p, f)
	})
}
