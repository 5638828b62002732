package transport

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/linchenxuan/craftnet/metrics"
	"github.com/linchenxuan/craftnet/network/packet"
)

// Stats is a point in time snapshot of the traffic counters.
type Stats struct {
	BytesIn    int64
	BytesOut   int64
	PacketsIn  int64
	PacketsOut int64
}

type counters struct {
	bytesIn    atomic.Int64
	bytesOut   atomic.Int64
	packetsIn  atomic.Int64
	packetsOut atomic.Int64
}

// swap returns the counters and resets them to zero.
func (c *counters) swap() Stats {
	return Stats{
		BytesIn:    c.bytesIn.Swap(0),
		BytesOut:   c.bytesOut.Swap(0),
		PacketsIn:  c.packetsIn.Swap(0),
		PacketsOut: c.packetsOut.Swap(0),
	}
}

var _phaseDims = map[packet.Phase]metrics.Dimension{
	packet.Handshake: {metrics.DimPhase: packet.Handshake.String()},
	packet.Status:    {metrics.DimPhase: packet.Status.String()},
	packet.Login:     {metrics.DimPhase: packet.Login.String()},
	packet.Play:      {metrics.DimPhase: packet.Play.String()},
}

func phaseDim(p packet.Phase) metrics.Dimension {
	if d, ok := _phaseDims[p]; ok {
		return d
	}
	return metrics.Dimension{metrics.DimPhase: p.String()}
}

func (c *counters) statRecv(phase packet.Phase, wireLen int) {
	c.bytesIn.Add(int64(wireLen))
	c.packetsIn.Add(1)
	metrics.IncrCounterWithDimGroup(metrics.NamePacketInTotal, metrics.GroupNet, 1, phaseDim(phase))
	metrics.IncrCounterWithGroup(metrics.NameByteInTotal, metrics.GroupNet, metrics.Value(wireLen))
}

func (c *counters) statSend(phase packet.Phase, wireLen int) {
	c.bytesOut.Add(int64(wireLen))
	c.packetsOut.Add(1)
	metrics.IncrCounterWithDimGroup(metrics.NamePacketOutTotal, metrics.GroupNet, 1, phaseDim(phase))
	metrics.IncrCounterWithGroup(metrics.NameByteOutTotal, metrics.GroupNet, metrics.Value(wireLen))
}

type sentID struct {
	phase packet.Phase
	id    int32
}

// trail keeps the last n sent ids.
type trail struct {
	mu   sync.Mutex
	ring []sentID
	next int
	full bool
}

func newTrail(n int) *trail {
	return &trail{ring: make([]sentID, n)}
}

func (t *trail) push(phase packet.Phase, id int32) {
	if len(t.ring) == 0 {
		return
	}
	t.mu.Lock()
	t.ring[t.next] = sentID{phase: phase, id: id}
	t.next++
	if t.next == len(t.ring) {
		t.next = 0
		t.full = true
	}
	t.mu.Unlock()
}

// snapshot returns the ids oldest first.
func (t *trail) snapshot() []sentID {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.full {
		return append([]sentID(nil), t.ring[:t.next]...)
	}
	out := make([]sentID, 0, len(t.ring))
	out = append(out, t.ring[t.next:]...)
	return append(out, t.ring[:t.next]...)
}

func (t *trail) render(r *packet.Registry) string {
	ids := t.snapshot()
	parts := make([]string, len(ids))
	for i, s := range ids {
		parts[i] = fmt.Sprintf("%s/%s", s.phase, r.NameDir(s.phase, packet.Serverbound, s.id))
	}
	return strings.Join(parts, ",")
}

// unhandledTable counts frames whose id had no codec, per phase.
type unhandledTable struct {
	mu     sync.Mutex
	counts map[packet.Phase]map[int32]int64
}

func newUnhandledTable() *unhandledTable {
	return &unhandledTable{counts: map[packet.Phase]map[int32]int64{}}
}

// record tallies one sighting and returns the count including it.
func (u *unhandledTable) record(phase packet.Phase, id int32) int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	m, ok := u.counts[phase]
	if !ok {
		m = map[int32]int64{}
		u.counts[phase] = m
	}
	m[id]++
	return m[id]
}

func (u *unhandledTable) snapshot() map[packet.Phase]map[int32]int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make(map[packet.Phase]map[int32]int64, len(u.counts))
	for phase, m := range u.counts {
		cp := make(map[int32]int64, len(m))
		for id, n := range m {
			cp[id] = n
		}
		out[phase] = cp
	}
	return out
}

// drain returns the table and empties it.
func (u *unhandledTable) drain() map[packet.Phase]map[int32]int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := u.counts
	u.counts = map[packet.Phase]map[int32]int64{}
	return out
}
