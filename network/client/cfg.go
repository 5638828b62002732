package client

import (
	"fmt"

	"github.com/linchenxuan/craftnet/network/protocol"
)

const maxUsernameLen = 16

// Cfg is the [client] section.
type Cfg struct {
	Username        string `mapstructure:"username"`
	ProtocolVersion int32  `mapstructure:"protocolVersion"`
	ViewDistance    int8   `mapstructure:"viewDistance"`
	Locale          string `mapstructure:"locale"`
	ChatColors      bool   `mapstructure:"chatColors"`
	LoginTimeoutMs  uint32 `mapstructure:"loginTimeoutMs"`
}

// DefaultCfg returns a Cfg with every default filled except the username.
func DefaultCfg() *Cfg {
	return &Cfg{
		ProtocolVersion: protocol.Version,
		ViewDistance:    8,
		Locale:          "en_US",
		ChatColors:      true,
		LoginTimeoutMs:  10000,
	}
}

// GetName returns the configuration section of Cfg.
func (c *Cfg) GetName() string {
	return "client"
}

// Validate fills zero values with defaults. The username must be given when
// joining; Ping does not need one.
func (c *Cfg) Validate() error {
	def := DefaultCfg()
	if c.ProtocolVersion == 0 {
		c.ProtocolVersion = def.ProtocolVersion
	}
	if c.ViewDistance == 0 {
		c.ViewDistance = def.ViewDistance
	}
	if c.Locale == "" {
		c.Locale = def.Locale
	}
	if c.LoginTimeoutMs == 0 {
		c.LoginTimeoutMs = def.LoginTimeoutMs
	}
	if c.ViewDistance < 2 || c.ViewDistance > 32 {
		return fmt.Errorf("viewDistance must be in 2..32, got %d", c.ViewDistance)
	}
	if c.Username != "" {
		return ValidUsername(c.Username)
	}
	return nil
}

// ValidUsername checks name the way offline servers do: 1..16 characters
// out of letters, digits and underscore.
func ValidUsername(name string) error {
	if name == "" || len(name) > maxUsernameLen {
		return fmt.Errorf("username must be 1..%d characters, got %q", maxUsernameLen, name)
	}
	for _, r := range name {
		ok := r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !ok {
			return fmt.Errorf("username %q has invalid character %q", name, r)
		}
	}
	return nil
}
