package handler

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/linchenxuan/craftnet/log"
	"github.com/linchenxuan/craftnet/network/packet"
)

type route struct {
	phase packet.Phase
	typ   reflect.Type
}

// Mux routes packets by phase and concrete type. Resolved packets without a
// route go to the phase fallback, or are ignored.
type Mux struct {
	lock     sync.RWMutex
	routes   map[route]HandleFunc
	fallback map[packet.Phase]HandleFunc
	filters  FilterChain
}

var _ PhaseHandler = (*Mux)(nil)

// NewMux returns an empty Mux.
func NewMux() *Mux {
	return &Mux{
		routes:   map[route]HandleFunc{},
		fallback: map[packet.Phase]HandleFunc{},
	}
}

// Handle routes packets of kind T in phase to fn. A second route for the
// same kind and phase replaces the first.
func Handle[T any, PT interface {
	*T
	packet.Packet
}](m *Mux, phase packet.Phase, fn func(p PT) error) {
	typ := reflect.TypeOf((*T)(nil))
	m.lock.Lock()
	defer m.lock.Unlock()
	m.routes[route{phase: phase, typ: typ}] = func(p packet.Packet) error {
		return fn(p.(PT))
	}
}

// HandleFallback receives the resolved packets of phase that have no route.
func (m *Mux) HandleFallback(phase packet.Phase, fn HandleFunc) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.fallback[phase] = fn
}

// Use appends filters to the chain. Filters run in the order added.
func (m *Mux) Use(filters ...Filter) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.filters = append(m.filters, filters...)
}

func (m *Mux) HandleHandshake(p packet.Packet) error { return m.serve(packet.Handshake, p) }
func (m *Mux) HandleStatus(p packet.Packet) error    { return m.serve(packet.Status, p) }
func (m *Mux) HandleLogin(p packet.Packet) error     { return m.serve(packet.Login, p) }
func (m *Mux) HandlePlay(p packet.Packet) error      { return m.serve(packet.Play, p) }

func (m *Mux) serve(phase packet.Phase, p packet.Packet) error {
	if p == nil {
		return fmt.Errorf("handler: nil packet in %s", phase)
	}
	m.lock.RLock()
	fn, ok := m.routes[route{phase: phase, typ: reflect.TypeOf(p)}]
	if !ok {
		fn = m.fallback[phase]
	}
	filters := m.filters
	m.lock.RUnlock()

	if fn == nil {
		log.Trace().Str("phase", phase.String()).Str("type", fmt.Sprintf("%T", p)).Msg("no route")
		return nil
	}
	return filters.Handle(phase, p, fn)
}
