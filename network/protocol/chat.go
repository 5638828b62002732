package protocol

import (
	"encoding/json"
	"strings"
)

type chatComponent struct {
	Text      string            `json:"text"`
	Translate string            `json:"translate"`
	With      []json.RawMessage `json:"with"`
	Extra     []json.RawMessage `json:"extra"`
}

// ChatText flattens a chat component to plain text. Input that is not JSON
// is returned unchanged.
func ChatText(raw string) string {
	var sb strings.Builder
	if !appendChat(&sb, json.RawMessage(raw)) {
		return raw
	}
	return sb.String()
}

func appendChat(sb *strings.Builder, raw json.RawMessage) bool {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		sb.WriteString(s)
		return true
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			appendChat(sb, item)
		}
		return true
	}
	var c chatComponent
	if err := json.Unmarshal(raw, &c); err != nil {
		return false
	}
	sb.WriteString(c.Text)
	if c.Translate != "" {
		sb.WriteString(c.Translate)
		for i, w := range c.With {
			if i == 0 {
				sb.WriteString(" ")
			} else {
				sb.WriteString(", ")
			}
			appendChat(sb, w)
		}
	}
	for _, e := range c.Extra {
		appendChat(sb, e)
	}
	return true
}
