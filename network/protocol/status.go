package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/linchenxuan/craftnet/network/codec"
)

// StatusRequest asks for the server list entry.
type StatusRequest struct{}

func (*StatusRequest) ID() int32                    { return 0x00 }
func (*StatusRequest) Decode(r *codec.Reader) error { return r.Err() }
func (*StatusRequest) Encode(*codec.Writer) error   { return nil }

// StatusPing carries a value the server echoes in StatusPong.
type StatusPing struct {
	Payload int64
}

func (*StatusPing) ID() int32 { return 0x01 }

func (p *StatusPing) Decode(r *codec.Reader) error {
	p.Payload = r.Int64()
	return r.Err()
}

func (p *StatusPing) Encode(w *codec.Writer) error {
	w.Int64(p.Payload)
	return nil
}

// StatusResponse carries the server list entry as JSON.
type StatusResponse struct {
	JSON string
}

func (*StatusResponse) ID() int32 { return 0x00 }

func (p *StatusResponse) Decode(r *codec.Reader) error {
	p.JSON = r.Str()
	return r.Err()
}

func (p *StatusResponse) Encode(w *codec.Writer) error {
	w.Str(p.JSON)
	return nil
}

// StatusInfo is the decoded server list entry.
type StatusInfo struct {
	Version struct {
		Name     string `json:"name"`
		Protocol int32  `json:"protocol"`
	} `json:"version"`
	Players struct {
		Max    int `json:"max"`
		Online int `json:"online"`
		Sample []struct {
			Name string `json:"name"`
			ID   string `json:"id"`
		} `json:"sample,omitempty"`
	} `json:"players"`
	Description json.RawMessage `json:"description"`
	Favicon     string          `json:"favicon,omitempty"`
}

// MOTD returns the plain text of the description.
func (s *StatusInfo) MOTD() string {
	return ChatText(string(s.Description))
}

// Info parses the JSON body.
func (p *StatusResponse) Info() (*StatusInfo, error) {
	var info StatusInfo
	if err := json.Unmarshal([]byte(p.JSON), &info); err != nil {
		return nil, fmt.Errorf("status json: %w", err)
	}
	return &info, nil
}

// StatusPong echoes StatusPing.
type StatusPong struct {
	Payload int64
}

func (*StatusPong) ID() int32 { return 0x01 }

func (p *StatusPong) Decode(r *codec.Reader) error {
	p.Payload = r.Int64()
	return r.Err()
}

func (p *StatusPong) Encode(w *codec.Writer) error {
	w.Int64(p.Payload)
	return nil
}
