package protocol

import (
	"github.com/Tnze/go-mc/nbt"
	"github.com/gofrs/uuid"

	"github.com/linchenxuan/craftnet/network/codec"
)

// AcknowledgePlayerDigging confirms or rejects a PlayerDigging.
type AcknowledgePlayerDigging struct {
	Location   BlockPos
	Block      int32
	Status     int32
	Successful bool
}

func (*AcknowledgePlayerDigging) ID() int32 { return 0x07 }

func (p *AcknowledgePlayerDigging) Decode(r *codec.Reader) error {
	p.Location.X, p.Location.Y, p.Location.Z = r.Position()
	p.Block = r.VarInt()
	p.Status = r.VarInt()
	p.Successful = r.Bool()
	return r.Err()
}

func (p *AcknowledgePlayerDigging) Encode(w *codec.Writer) error {
	w.Position(p.Location.X, p.Location.Y, p.Location.Z)
	w.VarInt(p.Block)
	w.VarInt(p.Status)
	w.Bool(p.Successful)
	return nil
}

// Chat positions.
const (
	ChatPositionChat   int8 = 0
	ChatPositionSystem int8 = 1
	ChatPositionHotbar int8 = 2
)

// ChatMessage is a chat line from the server.
type ChatMessage struct {
	JSON     string
	Position int8
	Sender   uuid.UUID
}

func (*ChatMessage) ID() int32 { return 0x0E }

func (p *ChatMessage) Decode(r *codec.Reader) error {
	p.JSON = r.Str()
	p.Position = r.Int8()
	p.Sender = r.UUID()
	return r.Err()
}

func (p *ChatMessage) Encode(w *codec.Writer) error {
	w.Str(p.JSON)
	w.Int8(p.Position)
	w.UUID(p.Sender)
	return nil
}

// Text returns the plain text of the message.
func (p *ChatMessage) Text() string { return ChatText(p.JSON) }

// NamedSoundEffect plays a sound by identifier. Coordinates are fixed point
// with 3 fractional bits.
type NamedSoundEffect struct {
	Sound    string
	Category int32
	X, Y, Z  int32
	Volume   float32
	Pitch    float32
}

func (*NamedSoundEffect) ID() int32 { return 0x18 }

func (p *NamedSoundEffect) Decode(r *codec.Reader) error {
	p.Sound = r.Str()
	p.Category = r.VarInt()
	p.X = r.Int32()
	p.Y = r.Int32()
	p.Z = r.Int32()
	p.Volume = r.Float32()
	p.Pitch = r.Float32()
	return r.Err()
}

func (p *NamedSoundEffect) Encode(w *codec.Writer) error {
	w.Str(p.Sound)
	w.VarInt(p.Category)
	w.Int32(p.X)
	w.Int32(p.Y)
	w.Int32(p.Z)
	w.Float32(p.Volume)
	w.Float32(p.Pitch)
	return nil
}

// Position returns the effect position in blocks.
func (p *NamedSoundEffect) Position() (x, y, z float64) {
	return float64(p.X) / 8, float64(p.Y) / 8, float64(p.Z) / 8
}

// PlayDisconnect closes a Play connection with a reason.
type PlayDisconnect struct {
	Reason string
}

func (*PlayDisconnect) ID() int32 { return 0x19 }

func (p *PlayDisconnect) Decode(r *codec.Reader) error {
	p.Reason = r.Str()
	return r.Err()
}

func (p *PlayDisconnect) Encode(w *codec.Writer) error {
	w.Str(p.Reason)
	return nil
}

// ChangeGameState reasons.
const (
	GameStateBeginRain   uint8 = 1
	GameStateEndRain     uint8 = 2
	GameStateChangeMode  uint8 = 3
	GameStateWinGame     uint8 = 4
	GameStateRainLevel   uint8 = 7
	GameStateThunderLvl  uint8 = 8
	GameStateImmediateRS uint8 = 11
)

// ChangeGameState reports weather, game mode and similar switches.
type ChangeGameState struct {
	Reason uint8
	Value  float32
}

func (*ChangeGameState) ID() int32 { return 0x1D }

func (p *ChangeGameState) Decode(r *codec.Reader) error {
	p.Reason = r.UInt8()
	p.Value = r.Float32()
	return r.Err()
}

func (p *ChangeGameState) Encode(w *codec.Writer) error {
	w.UInt8(p.Reason)
	w.Float32(p.Value)
	return nil
}

// KeepAliveClientbound must be echoed with the same id.
type KeepAliveClientbound struct {
	KeepAliveID int64
}

func (*KeepAliveClientbound) ID() int32 { return 0x1F }

func (p *KeepAliveClientbound) Decode(r *codec.Reader) error {
	p.KeepAliveID = r.Int64()
	return r.Err()
}

func (p *KeepAliveClientbound) Encode(w *codec.Writer) error {
	w.Int64(p.KeepAliveID)
	return nil
}

// JoinGame is the first Play packet.
type JoinGame struct {
	EntityID            int32
	IsHardcore          bool
	GameMode            uint8
	PreviousGameMode    int8
	WorldNames          []string
	DimensionCodec      nbt.RawMessage
	Dimension           nbt.RawMessage
	WorldName           string
	HashedSeed          int64
	MaxPlayers          int32
	ViewDistance        int32
	ReducedDebugInfo    bool
	EnableRespawnScreen bool
	IsDebug             bool
	IsFlat              bool
}

func (*JoinGame) ID() int32 { return 0x24 }

func (p *JoinGame) Decode(r *codec.Reader) error {
	p.EntityID = r.Int32()
	p.IsHardcore = r.Bool()
	p.GameMode = r.UInt8()
	p.PreviousGameMode = r.Int8()
	n := r.VarInt()
	if n < 0 {
		return codec.ErrNegativeLength
	}
	if int(n) > r.Len() {
		return codec.ErrShortPayload
	}
	p.WorldNames = make([]string, 0, n)
	for i := int32(0); i < n && r.Err() == nil; i++ {
		p.WorldNames = append(p.WorldNames, r.Str())
	}
	if err := r.Err(); err != nil {
		return err
	}
	if err := decodeNBT(r, &p.DimensionCodec); err != nil {
		return err
	}
	if err := decodeNBT(r, &p.Dimension); err != nil {
		return err
	}
	p.WorldName = r.Str()
	p.HashedSeed = r.Int64()
	p.MaxPlayers = r.VarInt()
	p.ViewDistance = r.VarInt()
	p.ReducedDebugInfo = r.Bool()
	p.EnableRespawnScreen = r.Bool()
	p.IsDebug = r.Bool()
	p.IsFlat = r.Bool()
	return r.Err()
}

func (p *JoinGame) Encode(w *codec.Writer) error {
	w.Int32(p.EntityID)
	w.Bool(p.IsHardcore)
	w.UInt8(p.GameMode)
	w.Int8(p.PreviousGameMode)
	w.VarInt(int32(len(p.WorldNames)))
	for _, n := range p.WorldNames {
		w.Str(n)
	}
	if err := encodeNBT(w, p.DimensionCodec); err != nil {
		return err
	}
	if err := encodeNBT(w, p.Dimension); err != nil {
		return err
	}
	w.Str(p.WorldName)
	w.Int64(p.HashedSeed)
	w.VarInt(p.MaxPlayers)
	w.VarInt(p.ViewDistance)
	w.Bool(p.ReducedDebugInfo)
	w.Bool(p.EnableRespawnScreen)
	w.Bool(p.IsDebug)
	w.Bool(p.IsFlat)
	return nil
}

// DimensionType is the subset of the dimension compound the client reads.
type DimensionType struct {
	PiglinSafe         int8    `nbt:"piglin_safe"`
	Natural            int8    `nbt:"natural"`
	AmbientLight       float32 `nbt:"ambient_light"`
	Infiniburn         string  `nbt:"infiniburn"`
	RespawnAnchorWorks int8    `nbt:"respawn_anchor_works"`
	HasSkylight        int8    `nbt:"has_skylight"`
	BedWorks           int8    `nbt:"bed_works"`
	Effects            string  `nbt:"effects"`
	HasRaids           int8    `nbt:"has_raids"`
	LogicalHeight      int32   `nbt:"logical_height"`
	CoordinateScale    float64 `nbt:"coordinate_scale"`
	Ultrawarm          int8    `nbt:"ultrawarm"`
	HasCeiling         int8    `nbt:"has_ceiling"`
}

// DimensionType decodes the Dimension compound.
func (p *JoinGame) DimensionType() (DimensionType, error) {
	var d DimensionType
	err := p.Dimension.Unmarshal(&d)
	return d, err
}

func decodeNBT(r *codec.Reader, m *nbt.RawMessage) error {
	if _, err := nbt.NewDecoder(r).Decode(m); err != nil {
		return err
	}
	return r.Err()
}

func encodeNBT(w *codec.Writer, m nbt.RawMessage) error {
	if m.Type == 0 {
		// TAG_End stands in for an absent compound.
		return w.WriteByte(0)
	}
	return nbt.NewEncoder(w).Encode(m, "")
}

// Teleport flags: a set bit makes the field relative.
const (
	RelativeX     uint8 = 0x01
	RelativeY     uint8 = 0x02
	RelativeZ     uint8 = 0x04
	RelativeYaw   uint8 = 0x08
	RelativePitch uint8 = 0x10
)

// PlayerPositionAndLook teleports the player. The client must answer with
// TeleportConfirm.
type PlayerPositionAndLook struct {
	X, Y, Z    float64
	Yaw, Pitch float32
	Flags      uint8
	TeleportID int32
}

func (*PlayerPositionAndLook) ID() int32 { return 0x34 }

func (p *PlayerPositionAndLook) Decode(r *codec.Reader) error {
	p.X = r.Float64()
	p.Y = r.Float64()
	p.Z = r.Float64()
	p.Yaw = r.Float32()
	p.Pitch = r.Float32()
	p.Flags = r.UInt8()
	p.TeleportID = r.VarInt()
	return r.Err()
}

func (p *PlayerPositionAndLook) Encode(w *codec.Writer) error {
	w.Float64(p.X)
	w.Float64(p.Y)
	w.Float64(p.Z)
	w.Float32(p.Yaw)
	w.Float32(p.Pitch)
	w.UInt8(p.Flags)
	w.VarInt(p.TeleportID)
	return nil
}

// Apply resolves the teleport against the current position.
func (p *PlayerPositionAndLook) Apply(x, y, z float64, yaw, pitch float32) (float64, float64, float64, float32, float32) {
	rel := func(bit uint8, cur, v float64) float64 {
		if p.Flags&bit != 0 {
			return cur + v
		}
		return v
	}
	return rel(RelativeX, x, p.X), rel(RelativeY, y, p.Y), rel(RelativeZ, z, p.Z),
		float32(rel(RelativeYaw, float64(yaw), float64(p.Yaw))),
		float32(rel(RelativePitch, float64(pitch), float64(p.Pitch)))
}

// BlockRecord is one entry of MultiBlockChange, relative to its section.
type BlockRecord struct {
	State   int32
	X, Y, Z uint8
}

// MultiBlockChange updates several blocks in one 16x16x16 chunk section.
type MultiBlockChange struct {
	SectionX, SectionY, SectionZ int32
	SuppressLightUpdates         bool
	Blocks                       []BlockRecord
}

func (*MultiBlockChange) ID() int32 { return 0x3B }

func (p *MultiBlockChange) Decode(r *codec.Reader) error {
	sec := r.Int64()
	p.SectionX = int32(sec >> 42)
	p.SectionY = int32(sec << 44 >> 44)
	p.SectionZ = int32(sec << 22 >> 42)
	p.SuppressLightUpdates = r.Bool()
	n := r.VarInt()
	if n < 0 {
		return codec.ErrNegativeLength
	}
	if int(n) > r.Len() {
		return codec.ErrShortPayload
	}
	p.Blocks = make([]BlockRecord, 0, n)
	for i := int32(0); i < n && r.Err() == nil; i++ {
		v := r.VarLong()
		p.Blocks = append(p.Blocks, BlockRecord{
			State: int32(v >> 12),
			X:     uint8(v >> 8 & 0xF),
			Z:     uint8(v >> 4 & 0xF),
			Y:     uint8(v & 0xF),
		})
	}
	return r.Err()
}

func (p *MultiBlockChange) Encode(w *codec.Writer) error {
	sec := (int64(p.SectionX)&0x3FFFFF)<<42 | (int64(p.SectionZ)&0x3FFFFF)<<20 | int64(p.SectionY)&0xFFFFF
	w.Int64(sec)
	w.Bool(p.SuppressLightUpdates)
	w.VarInt(int32(len(p.Blocks)))
	for _, b := range p.Blocks {
		w.VarLong(int64(b.State)<<12 | int64(b.X&0xF)<<8 | int64(b.Z&0xF)<<4 | int64(b.Y&0xF))
	}
	return nil
}

// Position returns the absolute coordinate of record b.
func (p *MultiBlockChange) Position(b BlockRecord) BlockPos {
	return BlockPos{
		X: p.SectionX*16 + int32(b.X),
		Y: p.SectionY*16 + int32(b.Y),
		Z: p.SectionZ*16 + int32(b.Z),
	}
}

// UpdateViewPosition moves the chunk the client is centred on.
type UpdateViewPosition struct {
	ChunkX, ChunkZ int32
}

func (*UpdateViewPosition) ID() int32 { return 0x40 }

func (p *UpdateViewPosition) Decode(r *codec.Reader) error {
	p.ChunkX = r.VarInt()
	p.ChunkZ = r.VarInt()
	return r.Err()
}

func (p *UpdateViewPosition) Encode(w *codec.Writer) error {
	w.VarInt(p.ChunkX)
	w.VarInt(p.ChunkZ)
	return nil
}

// TimeUpdate carries world age and time of day in ticks.
type TimeUpdate struct {
	WorldAge  int64
	TimeOfDay int64
}

func (*TimeUpdate) ID() int32 { return 0x4E }

func (p *TimeUpdate) Decode(r *codec.Reader) error {
	p.WorldAge = r.Int64()
	p.TimeOfDay = r.Int64()
	return r.Err()
}

func (p *TimeUpdate) Encode(w *codec.Writer) error {
	w.Int64(p.WorldAge)
	w.Int64(p.TimeOfDay)
	return nil
}
