package handler

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/linchenxuan/craftnet/network/packet"
)

// MuxCfg configures the built in filters.
type MuxCfg struct {
	// RecvRateLimit caps dispatched packets per second. 0 disables the limiter.
	RecvRateLimit int `mapstructure:"recvRateLimit"`
	// TokenBurst is the limiter burst.
	TokenBurst int `mapstructure:"tokenBurst"`
	// Drop lists packet names that are never dispatched, e.g. "Time Update".
	Drop []string `mapstructure:"drop"`
}

// GetName returns the configuration section of MuxCfg.
func (c *MuxCfg) GetName() string {
	return "handler"
}

// Validate checks the limiter settings.
func (c *MuxCfg) Validate() error {
	if c.RecvRateLimit < 0 {
		return fmt.Errorf("recvRateLimit must not be negative")
	}
	if c.RecvRateLimit > 0 && c.TokenBurst <= 0 {
		c.TokenBurst = c.RecvRateLimit
	}
	if c.RecvRateLimit > 1000000 {
		return fmt.Errorf("recvRateLimit cannot exceed 1,000,000 packets per second")
	}
	return nil
}

// ContextFunc yields the context a blocking filter waits under. It is
// called per packet so a Mux built before its connection can follow it.
type ContextFunc func() context.Context

// Apply installs the filters c enables on m.
func (c *MuxCfg) Apply(ctx ContextFunc, m *Mux, reg *packet.Registry) {
	if len(c.Drop) > 0 {
		m.Use(DropFilter(reg, c.Drop))
	}
	if c.RecvRateLimit > 0 {
		m.Use(NewRecvLimiter(c.RecvRateLimit, c.TokenBurst).Filter(ctx))
	}
}

// DropFilter swallows packets whose registered name is in names.
func DropFilter(reg *packet.Registry, names []string) Filter {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	return func(phase packet.Phase, p packet.Packet, next HandleFunc) error {
		if d, ok := reg.DescriptorOf(p); ok {
			if _, hit := drop[d.Name]; hit {
				return nil
			}
		}
		return next(p)
	}
}

// RecvLimiter is a token bucket in front of the routes. It blocks the read
// pump while the bucket is empty.
type RecvLimiter struct {
	limiter atomic.Pointer[rate.Limiter]
}

// NewRecvLimiter allows limit packets per second with the given burst.
func NewRecvLimiter(limit int, burst int) *RecvLimiter {
	l := &RecvLimiter{}
	l.limiter.Store(rate.NewLimiter(rate.Limit(limit), burst))
	return l
}

// Reload swaps the rate and burst.
func (l *RecvLimiter) Reload(limit int, burst int) {
	l.limiter.Store(rate.NewLimiter(rate.Limit(limit), burst))
}

// Filter returns the chain element. Waiting ends with an error when the
// context from ctx is done.
func (l *RecvLimiter) Filter(ctx ContextFunc) Filter {
	return func(phase packet.Phase, p packet.Packet, next HandleFunc) error {
		if err := l.limiter.Load().Wait(ctx()); err != nil {
			return err
		}
		return next(p)
	}
}
