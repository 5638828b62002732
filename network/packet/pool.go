package packet

import (
	"reflect"
	"sync"

	"github.com/linchenxuan/craftnet/utils/pool"
)

// kindPool hands out instances of one packet kind.
type kindPool struct {
	typ  reflect.Type
	pool *pool.Pool[Packet]
}

func (k *kindPool) get() Packet {
	return k.pool.Get()
}

// put zeroes p and returns it. After put the caller must not use p.
func (k *kindPool) put(p Packet) {
	reflect.ValueOf(p).Elem().SetZero()
	k.pool.Put(p)
}

var (
	_kindPools     = map[reflect.Type]*kindPool{}
	_lockKindPools sync.RWMutex
)

func kindPoolFor(typ reflect.Type, newFunc func() Packet) *kindPool {
	_lockKindPools.RLock()
	kp, ok := _kindPools[typ]
	_lockKindPools.RUnlock()
	if ok {
		return kp
	}

	_lockKindPools.Lock()
	defer _lockKindPools.Unlock()
	if kp, ok = _kindPools[typ]; ok {
		return kp
	}
	kp = &kindPool{
		typ:  typ,
		pool: pool.New("packet."+typ.Elem().Name(), newFunc),
	}
	_kindPools[typ] = kp
	return kp
}

// Acquire takes a zeroed *T from its kind pool. Kinds need not be registered.
func Acquire[T any, PT interface {
	*T
	Packet
}]() PT {
	typ := reflect.TypeOf((*T)(nil))
	kp := kindPoolFor(typ, func() Packet { return PT(new(T)) })
	return kp.get().(PT)
}

// Release zeroes p and returns it to its kind pool. The caller gives up p:
// its fields are invalid until it is acquired again. nil is ignored.
func Release(p Packet) {
	if p == nil {
		return
	}
	v := reflect.ValueOf(p)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return
	}
	typ := v.Type()
	_lockKindPools.RLock()
	kp, ok := _kindPools[typ]
	_lockKindPools.RUnlock()
	if !ok {
		// built with new() or a literal; zero it so stale use shows up
		v.Elem().SetZero()
		return
	}
	kp.put(p)
}
