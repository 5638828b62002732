package provider

import (
	"fmt"
	"unicode/utf8"

	"github.com/linchenxuan/craftnet/network/packet"
	"github.com/linchenxuan/craftnet/network/protocol"
)

// Action is a player action. ActionJump only exists client side.
type Action int32

const (
	ActionJump Action = iota - 1
	ActionStartSneaking
	ActionStopSneaking
	ActionLeaveBed
	ActionStartSprinting
	ActionStopSprinting
	ActionStartHorseJump
	ActionStopHorseJump
	ActionOpenHorseWindow
	ActionStartElytra
)

// Animation is an arm swing.
type Animation int

const (
	SwingRightArm Animation = iota
	SwingLeftArm
)

func clampHand(hand int) protocol.Hand {
	if hand <= 0 {
		return protocol.MainHand
	}
	return protocol.OffHand
}

// SetOnGround sends a PlayerMovement. Outside Play nothing is sent.
func (p *Provider) SetOnGround(onGround bool) {
	if p.conn.Phase() != packet.Play {
		return
	}
	pkt := packet.Acquire[protocol.PlayerMovement]()
	pkt.OnGround = onGround
	p.conn.SendPacket(pkt)
}

// MoveTo sends the feet position of the player.
func (p *Provider) MoveTo(x, feetY, z float64, onGround bool) {
	pkt := packet.Acquire[protocol.PlayerPosition]()
	pkt.X, pkt.FeetY, pkt.Z = x, feetY, z
	pkt.OnGround = onGround
	p.conn.SendPacket(pkt)
}

// EntityAction sends action for entityID. Jumps are not sent: the server
// infers them from movement.
func (p *Provider) EntityAction(entityID int32, action Action) {
	if action == ActionJump {
		return
	}
	pkt := packet.Acquire[protocol.EntityAction]()
	pkt.EntityID = entityID
	pkt.ActionID = int32(action)
	pkt.JumpBoost = 0
	p.conn.SendPacket(pkt)
}

// SwingArm sends the arm animation.
func (p *Provider) SwingArm(a Animation) {
	pkt := packet.Acquire[protocol.Animation]()
	if a == SwingLeftArm {
		pkt.Hand = protocol.OffHand
	} else {
		pkt.Hand = protocol.MainHand
	}
	p.conn.SendPacket(pkt)
}

// Chat sends a chat line or a command. Lines longer than the server accepts
// and lines over the chat rate are refused.
func (p *Provider) Chat(msg string) error {
	if p.conn.Phase() != packet.Play {
		return ErrNotPlaying
	}
	if n := utf8.RuneCountInString(msg); n > protocol.MaxChatLen {
		return fmt.Errorf("%w: %d characters, max %d", ErrChatTooLong, n, protocol.MaxChatLen)
	}
	if !p.chat.Allow() {
		return ErrChatRateLimited
	}
	pkt := packet.Acquire[protocol.ChatMessageServerbound]()
	pkt.Message = msg
	p.conn.SendPacket(pkt)
	return nil
}

// PlaceBlock places the held block against face of pos. hand is clamped to
// the main or off hand.
func (p *Provider) PlaceBlock(pos protocol.BlockPos, face protocol.Face, hand int, cursor [3]float32, insideBlock bool) {
	pkt := packet.Acquire[protocol.PlayerBlockPlacement]()
	pkt.Hand = clampHand(hand)
	pkt.Location = pos
	pkt.Face = face
	pkt.CursorX, pkt.CursorY, pkt.CursorZ = cursor[0], cursor[1], cursor[2]
	pkt.InsideBlock = insideBlock
	p.conn.SendPacket(pkt)
}

// Dig sends a digging status for pos.
func (p *Provider) Dig(status int32, pos protocol.BlockPos, face protocol.Face) {
	pkt := packet.Acquire[protocol.PlayerDigging]()
	pkt.Status = status
	pkt.Location = pos
	pkt.Face = face
	p.conn.SendPacket(pkt)
}

// DropItem drops one item of the held stack, or all of it.
func (p *Provider) DropItem(pos protocol.BlockPos, face protocol.Face, fullStack bool) {
	status := protocol.DropItemOne
	if fullStack {
		status = protocol.DropItemAll
	}
	p.Dig(status, pos, face)
}

// Interact uses the held item on an entity.
func (p *Provider) Interact(entityID int32, hand int, sneaking bool) {
	p.interact(entityID, protocol.InteractUse, hand, sneaking)
}

// Attack hits an entity.
func (p *Provider) Attack(entityID int32, sneaking bool) {
	p.interact(entityID, protocol.InteractAttack, 0, sneaking)
}

func (p *Provider) interact(entityID, typ int32, hand int, sneaking bool) {
	pkt := packet.Acquire[protocol.InteractEntity]()
	pkt.EntityID = entityID
	pkt.Type = typ
	pkt.Hand = clampHand(hand)
	pkt.Sneaking = sneaking
	p.conn.SendPacket(pkt)
}

// UseItem uses the item in hand, clamped to the main or off hand.
func (p *Provider) UseItem(hand int) {
	pkt := packet.Acquire[protocol.UseItem]()
	pkt.Hand = clampHand(hand)
	p.conn.SendPacket(pkt)
}

// HeldItemChanged selects hotbar slot 0..8.
func (p *Provider) HeldItemChanged(slot int16) error {
	if slot < 0 || slot > 8 {
		return fmt.Errorf("hotbar slot %d out of range 0..8", slot)
	}
	pkt := packet.Acquire[protocol.HeldItemChange]()
	pkt.Slot = slot
	p.conn.SendPacket(pkt)
	return nil
}
