package provider

import (
	"time"

	"github.com/linchenxuan/craftnet/event"
	"github.com/linchenxuan/craftnet/log"
	"github.com/linchenxuan/craftnet/metrics"
)

// ConnectionInfo is the traffic of one report window.
type ConnectionInfo struct {
	StartTime  time.Time
	Latency    time.Duration
	BytesIn    int64
	BytesOut   int64
	PacketsIn  int64
	PacketsOut int64
	Window     time.Duration
}

// KBInPerSecond returns the inbound throughput of the window.
func (i ConnectionInfo) KBInPerSecond() float64 {
	return perSecondKB(i.BytesIn, i.Window)
}

// KBOutPerSecond returns the outbound throughput of the window.
func (i ConnectionInfo) KBOutPerSecond() float64 {
	return perSecondKB(i.BytesOut, i.Window)
}

func perSecondKB(n int64, window time.Duration) float64 {
	if window <= 0 {
		return 0
	}
	return float64(n) / metrics.KB / window.Seconds()
}

// report swaps the counters of the connection into a new ConnectionInfo.
func (p *Provider) report() {
	s := p.conn.Stats()
	info := ConnectionInfo{
		StartTime:  p.conn.StartTime(),
		Latency:    p.conn.Latency(),
		BytesIn:    s.BytesIn,
		BytesOut:   s.BytesOut,
		PacketsIn:  s.PacketsIn,
		PacketsOut: s.PacketsOut,
		Window:     p.interval,
	}
	p.info.Store(&info)

	metrics.UpdateGaugeWithGroup(metrics.NameByteInRateKB, metrics.GroupNet, metrics.Value(info.KBInPerSecond()))
	metrics.UpdateGaugeWithGroup(metrics.NameByteOutRateKB, metrics.GroupNet, metrics.Value(info.KBOutPerSecond()))

	if p.onInfo != nil {
		p.onInfo(info)
	}
	if p.publisher != nil && p.publisher.HasTopic(event.ConnectionInfo) {
		if err := p.publisher.Publish(event.ConnectionInfo, info); err != nil {
			log.Warn().Err(err).Str("remote", p.conn.Addr()).Msg("publish connection info")
		}
	}
}
