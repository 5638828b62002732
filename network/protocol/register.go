package protocol

import (
	"github.com/linchenxuan/craftnet/network/packet"
)

func init() {
	Register(packet.Default)
}

// Register installs every codec of this package and the Play display names
// into r. It panics if r already holds any of them.
func Register(r *packet.Registry) {
	c, s := packet.Clientbound, packet.Serverbound

	packet.Register[Handshake](r, packet.Handshake, s, "Handshake")

	packet.Register[StatusResponse](r, packet.Status, c, "Response")
	packet.Register[StatusPong](r, packet.Status, c, "Pong")
	packet.Register[StatusRequest](r, packet.Status, s, "Request")
	packet.Register[StatusPing](r, packet.Status, s, "Ping")

	packet.Register[LoginDisconnect](r, packet.Login, c, "Disconnect")
	packet.Register[EncryptionRequest](r, packet.Login, c, "Encryption Request")
	packet.Register[LoginSuccess](r, packet.Login, c, "Login Success")
	packet.Register[SetCompression](r, packet.Login, c, "Set Compression")
	packet.Register[LoginPluginRequest](r, packet.Login, c, "Login Plugin Request")
	packet.Register[LoginStart](r, packet.Login, s, "Login Start")
	packet.Register[EncryptionResponse](r, packet.Login, s, "Encryption Response")
	packet.Register[LoginPluginResponse](r, packet.Login, s, "Login Plugin Response")

	packet.Register[AcknowledgePlayerDigging](r, packet.Play, c, playClientboundNames[0x07])
	packet.Register[ChatMessage](r, packet.Play, c, playClientboundNames[0x0E])
	packet.Register[NamedSoundEffect](r, packet.Play, c, playClientboundNames[0x18])
	packet.Register[PlayDisconnect](r, packet.Play, c, playClientboundNames[0x19])
	packet.Register[ChangeGameState](r, packet.Play, c, playClientboundNames[0x1D])
	packet.Register[KeepAliveClientbound](r, packet.Play, c, playClientboundNames[0x1F])
	packet.Register[JoinGame](r, packet.Play, c, playClientboundNames[0x24])
	packet.Register[PlayerPositionAndLook](r, packet.Play, c, playClientboundNames[0x34])
	packet.Register[MultiBlockChange](r, packet.Play, c, playClientboundNames[0x3B])
	packet.Register[UpdateViewPosition](r, packet.Play, c, playClientboundNames[0x40])
	packet.Register[TimeUpdate](r, packet.Play, c, playClientboundNames[0x4E])

	packet.Register[TeleportConfirm](r, packet.Play, s, "Teleport Confirm")
	packet.Register[ChatMessageServerbound](r, packet.Play, s, "Chat Message")
	packet.Register[ClientSettings](r, packet.Play, s, "Client Settings")
	packet.Register[InteractEntity](r, packet.Play, s, "Interact Entity")
	packet.Register[KeepAliveServerbound](r, packet.Play, s, "Keep Alive")
	packet.Register[PlayerPosition](r, packet.Play, s, "Player Position")
	packet.Register[PlayerMovement](r, packet.Play, s, "Player Movement")
	packet.Register[PlayerDigging](r, packet.Play, s, "Player Digging")
	packet.Register[EntityAction](r, packet.Play, s, "Entity Action")
	packet.Register[HeldItemChange](r, packet.Play, s, "Held Item Change")
	packet.Register[Animation](r, packet.Play, s, "Animation")
	packet.Register[PlayerBlockPlacement](r, packet.Play, s, "Player Block Placement")
	packet.Register[UseItem](r, packet.Play, s, "Use Item")

	r.SetNames(packet.Play, c, playClientboundNames)
}
