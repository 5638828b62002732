// Package tcp provides the transport plugin that dials TCP connections and
// tracks them until they close.
package tcp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/linchenxuan/craftnet/log"
	"github.com/linchenxuan/craftnet/network/transport"
	"github.com/linchenxuan/craftnet/plugin"
)

const _factoryName = "tcp"

type factory struct{}

var _ plugin.Factory = (*factory)(nil)

// NewFactory creates the TCP dialer plugin factory.
func NewFactory() plugin.Factory {
	return &factory{}
}

// Type returns the plugin type.
func (f *factory) Type() plugin.Type {
	return plugin.Transport
}

// Name returns the factory name used by plugin config.
func (f *factory) Name() string {
	return _factoryName
}

// ConfigType returns the config the manager decodes into, defaults filled.
func (f *factory) ConfigType() any {
	return transport.DefaultCfg()
}

// Setup validates the config and returns a Dialer.
func (f *factory) Setup(cfgAny any) (plugin.Plugin, error) {
	cfg, ok := cfgAny.(*transport.Cfg)
	if !ok {
		return nil, errors.New("tcp setup failed: invalid config type")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("tcp setup failed: %w", err)
	}
	return NewDialer(cfg), nil
}

// Destroy stops every connection the dialer still tracks.
func (f *factory) Destroy(p plugin.Plugin) {
	if d, ok := p.(*Dialer); ok && d != nil {
		d.StopAll()
	}
}

// Dialer creates connections sharing one Cfg and keeps the live ones.
type Dialer struct {
	cfg   *transport.Cfg
	lock  sync.RWMutex
	conns map[*transport.Conn]struct{}
}

// NewDialer returns a Dialer for cfg.
func NewDialer(cfg *transport.Cfg) *Dialer {
	return &Dialer{cfg: cfg, conns: map[*transport.Conn]struct{}{}}
}

// FactoryName implements plugin.Plugin.
func (d *Dialer) FactoryName() string {
	return _factoryName
}

// Cfg returns the shared configuration.
func (d *Dialer) Cfg() *transport.Cfg {
	return d.cfg
}

// NewConn creates a connection to addr, or to the configured address when
// addr is empty. The connection is tracked until it closes.
func (d *Dialer) NewConn(ctx context.Context, addr string, opt transport.Option) (*transport.Conn, error) {
	c, err := transport.NewConn(ctx, addr, d.cfg, opt)
	if err != nil {
		return nil, err
	}
	d.lock.Lock()
	d.conns[c] = struct{}{}
	d.lock.Unlock()
	c.OnClosed(func(ev transport.ClosedEvent) {
		d.lock.Lock()
		delete(d.conns, ev.Conn)
		d.lock.Unlock()
	})
	return c, nil
}

// Len returns the number of tracked connections.
func (d *Dialer) Len() int {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return len(d.conns)
}

// StopAll disposes every tracked connection.
func (d *Dialer) StopAll() {
	d.lock.RLock()
	conns := make([]*transport.Conn, 0, len(d.conns))
	for c := range d.conns {
		conns = append(conns, c)
	}
	d.lock.RUnlock()

	for _, c := range conns {
		c.Dispose()
	}
	log.Info().Int("connections", len(conns)).Msg("tcp dialer stopped")
}
