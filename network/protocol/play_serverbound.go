package protocol

import (
	"github.com/linchenxuan/craftnet/network/codec"
)

// TeleportConfirm acknowledges PlayerPositionAndLook.
type TeleportConfirm struct {
	TeleportID int32
}

func (*TeleportConfirm) ID() int32 { return 0x00 }

func (p *TeleportConfirm) Decode(r *codec.Reader) error {
	p.TeleportID = r.VarInt()
	return r.Err()
}

func (p *TeleportConfirm) Encode(w *codec.Writer) error {
	w.VarInt(p.TeleportID)
	return nil
}

// MaxChatLen is the longest message the server accepts.
const MaxChatLen = 256

// ChatMessageServerbound sends a chat line or a command.
type ChatMessageServerbound struct {
	Message string
}

func (*ChatMessageServerbound) ID() int32 { return 0x03 }

func (p *ChatMessageServerbound) Decode(r *codec.Reader) error {
	p.Message = r.Str()
	return r.Err()
}

func (p *ChatMessageServerbound) Encode(w *codec.Writer) error {
	w.Str(p.Message)
	return nil
}

// ClientSettings announces locale, view distance and skin options.
type ClientSettings struct {
	Locale             string
	ViewDistance       int8
	ChatMode           int32
	ChatColors         bool
	DisplayedSkinParts uint8
	MainHand           int32
}

func (*ClientSettings) ID() int32 { return 0x05 }

func (p *ClientSettings) Decode(r *codec.Reader) error {
	p.Locale = r.Str()
	p.ViewDistance = r.Int8()
	p.ChatMode = r.VarInt()
	p.ChatColors = r.Bool()
	p.DisplayedSkinParts = r.UInt8()
	p.MainHand = r.VarInt()
	return r.Err()
}

func (p *ClientSettings) Encode(w *codec.Writer) error {
	w.Str(p.Locale)
	w.Int8(p.ViewDistance)
	w.VarInt(p.ChatMode)
	w.Bool(p.ChatColors)
	w.UInt8(p.DisplayedSkinParts)
	w.VarInt(p.MainHand)
	return nil
}

// InteractEntity uses or attacks an entity. Target is only sent for
// InteractUseAt, Hand for InteractUse and InteractUseAt.
type InteractEntity struct {
	EntityID                  int32
	Type                      int32
	TargetX, TargetY, TargetZ float32
	Hand                      Hand
	Sneaking                  bool
}

func (*InteractEntity) ID() int32 { return 0x0E }

func (p *InteractEntity) Decode(r *codec.Reader) error {
	p.EntityID = r.VarInt()
	p.Type = r.VarInt()
	if p.Type == InteractUseAt {
		p.TargetX = r.Float32()
		p.TargetY = r.Float32()
		p.TargetZ = r.Float32()
	}
	if p.Type != InteractAttack {
		p.Hand = Hand(r.VarInt())
	}
	p.Sneaking = r.Bool()
	return r.Err()
}

func (p *InteractEntity) Encode(w *codec.Writer) error {
	w.VarInt(p.EntityID)
	w.VarInt(p.Type)
	if p.Type == InteractUseAt {
		w.Float32(p.TargetX)
		w.Float32(p.TargetY)
		w.Float32(p.TargetZ)
	}
	if p.Type != InteractAttack {
		w.VarInt(int32(p.Hand))
	}
	w.Bool(p.Sneaking)
	return nil
}

// KeepAliveServerbound echoes KeepAliveClientbound.
type KeepAliveServerbound struct {
	KeepAliveID int64
}

func (*KeepAliveServerbound) ID() int32 { return 0x10 }

func (p *KeepAliveServerbound) Decode(r *codec.Reader) error {
	p.KeepAliveID = r.Int64()
	return r.Err()
}

func (p *KeepAliveServerbound) Encode(w *codec.Writer) error {
	w.Int64(p.KeepAliveID)
	return nil
}

// PlayerPosition reports the feet position.
type PlayerPosition struct {
	X, FeetY, Z float64
	OnGround    bool
}

func (*PlayerPosition) ID() int32 { return 0x12 }

func (p *PlayerPosition) Decode(r *codec.Reader) error {
	p.X = r.Float64()
	p.FeetY = r.Float64()
	p.Z = r.Float64()
	p.OnGround = r.Bool()
	return r.Err()
}

func (p *PlayerPosition) Encode(w *codec.Writer) error {
	w.Float64(p.X)
	w.Float64(p.FeetY)
	w.Float64(p.Z)
	w.Bool(p.OnGround)
	return nil
}

// PlayerMovement reports only the on ground flag.
type PlayerMovement struct {
	OnGround bool
}

func (*PlayerMovement) ID() int32 { return 0x15 }

func (p *PlayerMovement) Decode(r *codec.Reader) error {
	p.OnGround = r.Bool()
	return r.Err()
}

func (p *PlayerMovement) Encode(w *codec.Writer) error {
	w.Bool(p.OnGround)
	return nil
}

// PlayerDigging starts, cancels or finishes digging, or drops items.
type PlayerDigging struct {
	Status   int32
	Location BlockPos
	Face     Face
}

func (*PlayerDigging) ID() int32 { return 0x1B }

func (p *PlayerDigging) Decode(r *codec.Reader) error {
	p.Status = r.VarInt()
	p.Location.X, p.Location.Y, p.Location.Z = r.Position()
	p.Face = Face(r.Int8())
	return r.Err()
}

func (p *PlayerDigging) Encode(w *codec.Writer) error {
	w.VarInt(p.Status)
	w.Position(p.Location.X, p.Location.Y, p.Location.Z)
	w.Int8(int8(p.Face))
	return nil
}

// EntityAction toggles sneaking, sprinting and similar states.
type EntityAction struct {
	EntityID  int32
	ActionID  int32
	JumpBoost int32
}

func (*EntityAction) ID() int32 { return 0x1C }

func (p *EntityAction) Decode(r *codec.Reader) error {
	p.EntityID = r.VarInt()
	p.ActionID = r.VarInt()
	p.JumpBoost = r.VarInt()
	return r.Err()
}

func (p *EntityAction) Encode(w *codec.Writer) error {
	w.VarInt(p.EntityID)
	w.VarInt(p.ActionID)
	w.VarInt(p.JumpBoost)
	return nil
}

// HeldItemChange selects a hotbar slot, 0 to 8.
type HeldItemChange struct {
	Slot int16
}

func (*HeldItemChange) ID() int32 { return 0x25 }

func (p *HeldItemChange) Decode(r *codec.Reader) error {
	p.Slot = r.Int16()
	return r.Err()
}

func (p *HeldItemChange) Encode(w *codec.Writer) error {
	w.Int16(p.Slot)
	return nil
}

// Animation swings an arm.
type Animation struct {
	Hand Hand
}

func (*Animation) ID() int32 { return 0x2C }

func (p *Animation) Decode(r *codec.Reader) error {
	p.Hand = Hand(r.VarInt())
	return r.Err()
}

func (p *Animation) Encode(w *codec.Writer) error {
	w.VarInt(int32(p.Hand))
	return nil
}

// PlayerBlockPlacement places a block against a face.
type PlayerBlockPlacement struct {
	Hand                      Hand
	Location                  BlockPos
	Face                      Face
	CursorX, CursorY, CursorZ float32
	InsideBlock               bool
}

func (*PlayerBlockPlacement) ID() int32 { return 0x2E }

func (p *PlayerBlockPlacement) Decode(r *codec.Reader) error {
	p.Hand = Hand(r.VarInt())
	p.Location.X, p.Location.Y, p.Location.Z = r.Position()
	p.Face = Face(r.VarInt())
	p.CursorX = r.Float32()
	p.CursorY = r.Float32()
	p.CursorZ = r.Float32()
	p.InsideBlock = r.Bool()
	return r.Err()
}

func (p *PlayerBlockPlacement) Encode(w *codec.Writer) error {
	w.VarInt(int32(p.Hand))
	w.Position(p.Location.X, p.Location.Y, p.Location.Z)
	w.VarInt(int32(p.Face))
	w.Float32(p.CursorX)
	w.Float32(p.CursorY)
	w.Float32(p.CursorZ)
	w.Bool(p.InsideBlock)
	return nil
}

// UseItem uses the item held in a hand.
type UseItem struct {
	Hand Hand
}

func (*UseItem) ID() int32 { return 0x2F }

func (p *UseItem) Decode(r *codec.Reader) error {
	p.Hand = Hand(r.VarInt())
	return r.Err()
}

func (p *UseItem) Encode(w *codec.Writer) error {
	w.VarInt(int32(p.Hand))
	return nil
}
