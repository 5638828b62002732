package client

import (
	"github.com/linchenxuan/craftnet/log"
	"github.com/linchenxuan/craftnet/network/handler"
	"github.com/linchenxuan/craftnet/network/packet"
	"github.com/linchenxuan/craftnet/network/protocol"
)

// Values of ClientSettings the client always sends.
const (
	chatModeEnabled = 0
	allSkinParts    = 0x7F
	mainHandRight   = 1
)

func (c *Client) routePlay() {
	handler.Handle(c.mux, packet.Play, c.onKeepAlive)
	handler.Handle(c.mux, packet.Play, c.onJoinGame)
	handler.Handle(c.mux, packet.Play, c.onPositionAndLook)
	handler.Handle(c.mux, packet.Play, c.onChat)
	handler.Handle(c.mux, packet.Play, func(p *protocol.PlayDisconnect) error {
		c.kicked(p.Reason)
		return nil
	})
}

func (c *Client) onKeepAlive(p *protocol.KeepAliveClientbound) error {
	resp := packet.Acquire[protocol.KeepAliveServerbound]()
	resp.KeepAliveID = p.KeepAliveID
	c.conn.SendPacket(resp)
	return nil
}

// onJoinGame records the entity id and announces the client settings, which
// the server waits for before sending chunks.
func (c *Client) onJoinGame(p *protocol.JoinGame) error {
	c.lock.Lock()
	c.entityID = p.EntityID
	c.lock.Unlock()
	log.Info().Str("remote", c.conn.Addr()).Int32("entity", p.EntityID).Str("world", p.WorldName).
		Uint8("gamemode", p.GameMode).Bool("hardcore", p.IsHardcore).Msg("join game")

	s := packet.Acquire[protocol.ClientSettings]()
	s.Locale = c.cfg.Locale
	s.ViewDistance = c.cfg.ViewDistance
	s.ChatMode = chatModeEnabled
	s.ChatColors = c.cfg.ChatColors
	s.DisplayedSkinParts = allSkinParts
	s.MainHand = mainHandRight
	c.conn.SendPacket(s)
	return nil
}

// onPositionAndLook moves the player where the server says and confirms the
// teleport.
func (c *Client) onPositionAndLook(p *protocol.PlayerPositionAndLook) error {
	c.lock.Lock()
	pos := c.pos
	pos.X, pos.Y, pos.Z, pos.Yaw, pos.Pitch = p.Apply(pos.X, pos.Y, pos.Z, pos.Yaw, pos.Pitch)
	c.pos = pos
	c.lock.Unlock()

	confirm := packet.Acquire[protocol.TeleportConfirm]()
	confirm.TeleportID = p.TeleportID
	c.conn.SendPacket(confirm)
	return nil
}

func (c *Client) onChat(p *protocol.ChatMessage) error {
	if c.opt.OnChat == nil {
		return nil
	}
	c.opt.OnChat(Chat{
		Text:     p.Text(),
		JSON:     p.JSON,
		Position: p.Position,
		Sender:   p.Sender,
	})
	return nil
}
