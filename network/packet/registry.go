package packet

import (
	"fmt"
	"reflect"
	"sync"
)

// Descriptor describes a registered packet kind.
type Descriptor struct {
	Phase     Phase
	Direction Direction
	ID        int32
	Name      string
	Type      reflect.Type // pointer type of the packet
	pool      *kindPool
}

// New takes an instance from the kind's pool.
func (d *Descriptor) New() Packet {
	return d.pool.get()
}

type key struct {
	phase Phase
	dir   Direction
	id    int32
}

// Registry maps (phase, direction, id) to packet kinds. Lookups are safe
// concurrently with each other; registration is expected at init time.
type Registry struct {
	lock   sync.RWMutex
	byKey  map[key]*Descriptor
	byType map[reflect.Type]*Descriptor
	names  map[key]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byKey:  map[key]*Descriptor{},
		byType: map[reflect.Type]*Descriptor{},
		names:  map[key]string{},
	}
}

// Register adds packet kind T under phase and direction. The id and name
// come from a zero T. Registering the same key or type twice panics.
func Register[T any, PT interface {
	*T
	Packet
}](r *Registry, phase Phase, dir Direction, name string) *Descriptor {
	proto := PT(new(T))
	typ := reflect.TypeOf(proto)
	k := key{phase: phase, dir: dir, id: proto.ID()}

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.byKey[k]; ok {
		panic(fmt.Sprintf("packet: %s %s id 0x%02X registered twice", phase, dirName(dir), k.id))
	}
	if _, ok := r.byType[typ]; ok {
		panic(fmt.Sprintf("packet: type %s registered twice", typ))
	}
	d := &Descriptor{
		Phase:     phase,
		Direction: dir,
		ID:        k.id,
		Name:      name,
		Type:      typ,
		pool:      kindPoolFor(typ, func() Packet { return PT(new(T)) }),
	}
	r.byKey[k] = d
	r.byType[typ] = d
	if _, ok := r.names[k]; !ok {
		r.names[k] = name
	}
	return d
}

// Lookup resolves a clientbound id in phase. ok is false for unknown ids,
// which are expected from newer servers and not an error.
func (r *Registry) Lookup(phase Phase, id int32) (*Descriptor, bool) {
	return r.LookupDir(phase, Clientbound, id)
}

// LookupDir is Lookup for an explicit direction.
func (r *Registry) LookupDir(phase Phase, dir Direction, id int32) (*Descriptor, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	d, ok := r.byKey[key{phase: phase, dir: dir, id: id}]
	return d, ok
}

// DescriptorOf returns the registration of p's concrete type.
func (r *Registry) DescriptorOf(p Packet) (*Descriptor, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	d, ok := r.byType[reflect.TypeOf(p)]
	return d, ok
}

// SetNames installs display names for ids that may have no codec.
func (r *Registry) SetNames(phase Phase, dir Direction, names map[int32]string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for id, n := range names {
		r.names[key{phase: phase, dir: dir, id: id}] = n
	}
}

// Name returns a display name for a clientbound id, or its hex form.
func (r *Registry) Name(phase Phase, id int32) string {
	return r.NameDir(phase, Clientbound, id)
}

// NameDir is Name for an explicit direction. NoID renders as "none".
func (r *Registry) NameDir(phase Phase, dir Direction, id int32) string {
	if id < 0 {
		return "none"
	}
	r.lock.RLock()
	n, ok := r.names[key{phase: phase, dir: dir, id: id}]
	r.lock.RUnlock()
	if ok {
		return n
	}
	return fmt.Sprintf("0x%02X", id)
}

// Len returns how many kinds are registered.
func (r *Registry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.byKey)
}

func dirName(d Direction) string {
	if d == Serverbound {
		return "serverbound"
	}
	return "clientbound"
}

// Default is the registry the protocol package fills at init.
var Default = NewRegistry()
