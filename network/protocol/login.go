package protocol

import (
	"github.com/gofrs/uuid"

	"github.com/linchenxuan/craftnet/network/codec"
)

// LoginDisconnect ends the login with a chat component reason.
type LoginDisconnect struct {
	Reason string
}

func (*LoginDisconnect) ID() int32 { return 0x00 }

func (p *LoginDisconnect) Decode(r *codec.Reader) error {
	p.Reason = r.Str()
	return r.Err()
}

func (p *LoginDisconnect) Encode(w *codec.Writer) error {
	w.Str(p.Reason)
	return nil
}

// EncryptionRequest starts the key exchange.
type EncryptionRequest struct {
	ServerID    string
	PublicKey   []byte // DER encoded SubjectPublicKeyInfo
	VerifyToken []byte
}

func (*EncryptionRequest) ID() int32 { return 0x01 }

func (p *EncryptionRequest) Decode(r *codec.Reader) error {
	p.ServerID = r.Str()
	p.PublicKey = r.ByteArray()
	p.VerifyToken = r.ByteArray()
	return r.Err()
}

func (p *EncryptionRequest) Encode(w *codec.Writer) error {
	w.Str(p.ServerID)
	w.ByteArray(p.PublicKey)
	w.ByteArray(p.VerifyToken)
	return nil
}

// LoginSuccess moves the connection to Play.
type LoginSuccess struct {
	UUID     uuid.UUID
	Username string
}

func (*LoginSuccess) ID() int32 { return 0x02 }

func (p *LoginSuccess) Decode(r *codec.Reader) error {
	p.UUID = r.UUID()
	p.Username = r.Str()
	return r.Err()
}

func (p *LoginSuccess) Encode(w *codec.Writer) error {
	w.UUID(p.UUID)
	w.Str(p.Username)
	return nil
}

// SetCompression enables the compressed envelope. A negative threshold
// keeps it off.
type SetCompression struct {
	Threshold int32
}

func (*SetCompression) ID() int32 { return 0x03 }

func (p *SetCompression) Decode(r *codec.Reader) error {
	p.Threshold = r.VarInt()
	return r.Err()
}

func (p *SetCompression) Encode(w *codec.Writer) error {
	w.VarInt(p.Threshold)
	return nil
}

// LoginPluginRequest is a custom query during login.
type LoginPluginRequest struct {
	MessageID int32
	Channel   string
	Data      []byte
}

func (*LoginPluginRequest) ID() int32 { return 0x04 }

func (p *LoginPluginRequest) Decode(r *codec.Reader) error {
	p.MessageID = r.VarInt()
	p.Channel = r.Str()
	p.Data = r.Rest()
	return r.Err()
}

func (p *LoginPluginRequest) Encode(w *codec.Writer) error {
	w.VarInt(p.MessageID)
	w.Str(p.Channel)
	w.Raw(p.Data)
	return nil
}

// LoginStart names the player.
type LoginStart struct {
	Name string
}

func (*LoginStart) ID() int32 { return 0x00 }

func (p *LoginStart) Decode(r *codec.Reader) error {
	p.Name = r.Str()
	return r.Err()
}

func (p *LoginStart) Encode(w *codec.Writer) error {
	w.Str(p.Name)
	return nil
}

// EncryptionResponse carries the RSA encrypted secret and token. Encryption
// switches on right after it is flushed.
type EncryptionResponse struct {
	SharedSecret []byte
	VerifyToken  []byte
}

func (*EncryptionResponse) ID() int32    { return 0x01 }
func (*EncryptionResponse) KeyExchange() {}

func (p *EncryptionResponse) Decode(r *codec.Reader) error {
	p.SharedSecret = r.ByteArray()
	p.VerifyToken = r.ByteArray()
	return r.Err()
}

func (p *EncryptionResponse) Encode(w *codec.Writer) error {
	w.ByteArray(p.SharedSecret)
	w.ByteArray(p.VerifyToken)
	return nil
}

// LoginPluginResponse answers LoginPluginRequest. Unknown channels are
// answered with Successful false and no data.
type LoginPluginResponse struct {
	MessageID  int32
	Successful bool
	Data       []byte
}

func (*LoginPluginResponse) ID() int32 { return 0x02 }

func (p *LoginPluginResponse) Decode(r *codec.Reader) error {
	p.MessageID = r.VarInt()
	p.Successful = r.Bool()
	p.Data = r.Rest()
	return r.Err()
}

func (p *LoginPluginResponse) Encode(w *codec.Writer) error {
	w.VarInt(p.MessageID)
	w.Bool(p.Successful)
	if p.Successful {
		w.Raw(p.Data)
	}
	return nil
}
