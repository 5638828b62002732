package client

import (
	"fmt"

	"github.com/linchenxuan/craftnet/log"
	"github.com/linchenxuan/craftnet/network/crypt"
	"github.com/linchenxuan/craftnet/network/handler"
	"github.com/linchenxuan/craftnet/network/packet"
	"github.com/linchenxuan/craftnet/network/protocol"
)

func (c *Client) routeLogin() {
	handler.Handle(c.mux, packet.Login, c.onSetCompression)
	handler.Handle(c.mux, packet.Login, c.onEncryptionRequest)
	handler.Handle(c.mux, packet.Login, c.onLoginSuccess)
	handler.Handle(c.mux, packet.Login, c.onLoginPluginRequest)
	handler.Handle(c.mux, packet.Login, func(p *protocol.LoginDisconnect) error {
		c.kicked(p.Reason)
		return nil
	})
}

func (c *Client) onSetCompression(p *protocol.SetCompression) error {
	c.conn.EnableCompression(int(p.Threshold))
	return nil
}

// onEncryptionRequest answers the key exchange. The secret is installed
// before the response is queued so the cipher switches on right after the
// response leaves.
func (c *Client) onEncryptionRequest(p *protocol.EncryptionRequest) error {
	secret, err := crypt.NewSharedSecret()
	if err != nil {
		return err
	}
	pub, err := crypt.ParsePublicKey(p.PublicKey)
	if err != nil {
		return err
	}
	enc, err := crypt.EncryptPKCS1(pub, secret, p.VerifyToken)
	if err != nil {
		return err
	}

	hash := crypt.ServerHash(p.ServerID, secret, p.PublicKey)
	if c.opt.Authenticator != nil {
		if err := c.opt.Authenticator.JoinServer(c.conn.Context(), hash); err != nil {
			return fmt.Errorf("session join: %w", err)
		}
	} else {
		log.Warn().Str("remote", c.conn.Addr()).Msg("server requests encryption without an authenticator, the login may be refused")
	}

	if err := c.conn.InitEncryption(secret); err != nil {
		return err
	}
	resp := packet.Acquire[protocol.EncryptionResponse]()
	resp.SharedSecret = enc[0]
	resp.VerifyToken = enc[1]
	c.conn.SendPacket(resp)
	return nil
}

func (c *Client) onLoginSuccess(p *protocol.LoginSuccess) error {
	c.lock.Lock()
	c.uuid = p.UUID
	c.username = p.Username
	c.lock.Unlock()
	if p.UUID != OfflineUUID(p.Username) {
		log.Debug().Str("remote", c.conn.Addr()).Str("uuid", p.UUID.String()).Msg("server assigned an online uuid")
	}
	c.conn.SetPhase(packet.Play)
	c.joinOnce.Do(func() { close(c.joined) })
	return nil
}

// onLoginPluginRequest refuses every login plugin channel.
func (c *Client) onLoginPluginRequest(p *protocol.LoginPluginRequest) error {
	log.Debug().Str("remote", c.conn.Addr()).Str("channel", p.Channel).Int32("message", p.MessageID).
		Msg("refusing login plugin request")
	resp := packet.Acquire[protocol.LoginPluginResponse]()
	resp.MessageID = p.MessageID
	resp.Successful = false
	c.conn.SendPacket(resp)
	return nil
}
