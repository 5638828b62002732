package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"

	"github.com/linchenxuan/craftnet/log"
	"github.com/linchenxuan/craftnet/network/handler"
	"github.com/linchenxuan/craftnet/network/packet"
	"github.com/linchenxuan/craftnet/network/protocol"
	"github.com/linchenxuan/craftnet/network/provider"
	"github.com/linchenxuan/craftnet/network/transport"
)

func optionFor(h handler.PhaseHandler) transport.Option {
	return transport.Option{Handler: h}
}

// Position is the last position the server placed the player at.
type Position struct {
	X, Y, Z    float64
	Yaw, Pitch float32
}

// Client is one player session. Join logs it in; afterwards it answers
// keep alives and teleports until the connection closes.
type Client struct {
	cfg *Cfg
	opt Option
	mux *handler.Mux

	conn     *transport.Conn
	provider *provider.Provider

	lock     sync.RWMutex
	uuid     uuid.UUID
	username string
	entityID int32
	pos      Position
	reason   string
	joined   chan struct{}
	joinOnce sync.Once
}

// New returns a client for cfg. The username is required.
func New(cfg *Cfg, opt Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("client: nil cfg")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client cfg: %w", err)
	}
	if cfg.Username == "" {
		return nil, fmt.Errorf("invalid client cfg: %w", ValidUsername(cfg.Username))
	}
	c := &Client{
		cfg:    cfg,
		opt:    opt,
		mux:    handler.NewMux(),
		joined: make(chan struct{}),
	}
	c.routeLogin()
	c.routePlay()
	return c, nil
}

// Mux returns the router of inbound packets so callers can add routes for
// the kinds the client does not handle itself.
func (c *Client) Mux() *handler.Mux { return c.mux }

// Join connects to addr and logs in. It returns once the server moved the
// session to Play, or with the reason the login failed. ctx bounds the
// whole session, not only the login.
func (c *Client) Join(ctx context.Context, addr string) error {
	if c.conn != nil {
		return transport.ErrAlreadyInitialized
	}
	hostport, host, port, err := splitAddr(addr)
	if err != nil {
		return err
	}
	conn, err := c.opt.connect(ctx, hostport, optionFor(c.mux))
	if err != nil {
		return err
	}
	c.conn = conn
	c.provider = provider.New(conn, provider.Option{
		Interval:  conn.Cfg().ReportInterval(),
		OnInfo:    c.opt.OnInfo,
		Publisher: c.opt.Publisher,
	})
	conn.OnClosed(func(transport.ClosedEvent) { c.provider.Close() })

	if err := conn.Open(); err != nil {
		return err
	}

	hs := packet.Acquire[protocol.Handshake]()
	hs.ProtocolVersion = c.cfg.ProtocolVersion
	hs.ServerAddress = host
	hs.ServerPort = port
	hs.NextState = protocol.NextLogin
	conn.SendPacket(hs)
	conn.SetPhase(packet.Login)

	start := packet.Acquire[protocol.LoginStart]()
	start.Name = c.cfg.Username
	conn.SendPacket(start)

	timeout := time.NewTimer(time.Duration(c.cfg.LoginTimeoutMs) * time.Millisecond)
	defer timeout.Stop()

	select {
	case <-c.joined:
		c.provider.Start(conn.Context())
		log.Info().Str("remote", hostport).Str("username", c.Username()).Str("uuid", c.UUID().String()).
			Msg("joined")
		return nil
	case <-conn.Done():
		if reason := c.DisconnectReason(); reason != "" {
			return fmt.Errorf("%w: %s", ErrLoginRejected, reason)
		}
		return fmt.Errorf("join %s: %w", hostport, ErrClosed)
	case <-timeout.C:
		conn.Stop()
		return fmt.Errorf("join %s: login timed out", hostport)
	case <-ctx.Done():
		conn.Stop()
		return ctx.Err()
	}
}

// Conn returns the connection, nil before Join.
func (c *Client) Conn() *transport.Conn { return c.conn }

// Provider returns the action helpers of the session, nil before Join.
func (c *Client) Provider() *provider.Provider { return c.provider }

// Wait blocks until the session ends or ctx is done.
func (c *Client) Wait(ctx context.Context) error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Wait(ctx)
}

// Close ends the session and frees its resources.
func (c *Client) Close() {
	if c.conn == nil {
		return
	}
	c.conn.Dispose()
	c.provider.Close()
}

// UUID returns the id the server assigned at login.
func (c *Client) UUID() uuid.UUID {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.uuid
}

// Username returns the name the server confirmed at login.
func (c *Client) Username() string {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.username
}

// EntityID returns the player entity id from JoinGame.
func (c *Client) EntityID() int32 {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.entityID
}

// Position returns the last position set by the server.
func (c *Client) Position() Position {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.pos
}

// DisconnectReason returns the flattened reason of a server side kick.
func (c *Client) DisconnectReason() string {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.reason
}

func (c *Client) kicked(raw string) {
	reason := protocol.ChatText(raw)
	c.lock.Lock()
	c.reason = reason
	c.lock.Unlock()
	log.Warn().Str("remote", c.conn.Addr()).Str("phase", c.conn.Phase().String()).Str("reason", reason).
		Msg("disconnected by server")
	if c.opt.OnDisconnect != nil {
		c.opt.OnDisconnect(reason)
	}
	c.conn.Stop()
}
