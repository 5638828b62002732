// Package client drives a connection through the login and status flows:
// it sends the handshake, answers the login sequence and keeps a joined
// player alive.
package client

import (
	"context"
	"errors"

	"github.com/gofrs/uuid"

	"github.com/linchenxuan/craftnet/event"
	"github.com/linchenxuan/craftnet/network/provider"
	"github.com/linchenxuan/craftnet/network/transport"
)

var (
	ErrLoginRejected = errors.New("login rejected")
	ErrClosed        = errors.New("connection closed")
)

// ConnectFunc creates the connection to addr. transport/tcp.Dialer.NewConn
// has this shape.
type ConnectFunc func(ctx context.Context, addr string, opt transport.Option) (*transport.Conn, error)

// Authenticator joins the session server for online mode logins. serverHash
// is the digest of server id, shared secret and server key.
type Authenticator interface {
	JoinServer(ctx context.Context, serverHash string) error
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, serverHash string) error

func (f AuthenticatorFunc) JoinServer(ctx context.Context, serverHash string) error {
	return f(ctx, serverHash)
}

// Chat is a received chat line with the markup flattened.
type Chat struct {
	Text     string
	JSON     string
	Position int8
	Sender   uuid.UUID
}

// Option carries the collaborators of a Client or a Ping.
type Option struct {
	// Transport configures connections made without Connect.
	Transport *transport.Cfg

	// Connect replaces transport.NewConn.
	Connect ConnectFunc

	// Dial is passed to the transport, mostly for tests.
	Dial transport.DialFunc

	Publisher     *event.Publisher
	Authenticator Authenticator

	OnChat       func(Chat)
	OnInfo       func(provider.ConnectionInfo)
	OnDisconnect func(reason string)
}

func (o *Option) connect(ctx context.Context, addr string, topt transport.Option) (*transport.Conn, error) {
	topt.Dial = o.Dial
	topt.Publisher = o.Publisher
	if o.Connect != nil {
		return o.Connect(ctx, addr, topt)
	}
	return transport.NewConn(ctx, addr, o.Transport, topt)
}
