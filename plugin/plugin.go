// Package plugin builds optional components from the [plugin] table of the
// config file. Each table plugin.<type>.<name> is decoded into the config
// struct of the factory registered under that type and name.
package plugin

// Type groups factories whose instances serve the same role.
type Type string

const (
	// Metrics instances are metric reporters such as prometheus.
	Metrics Type = "metrics"
	// Transport instances dial servers and own the resulting connections.
	Transport Type = "transport"
)

// Factory creates and releases instances of one implementation.
type Factory interface {
	Type() Type
	Name() string
	// ConfigType returns a fresh pointer to the config struct. The manager
	// decodes the plugin table into it before calling Setup.
	ConfigType() any
	// Setup receives the decoded value returned by ConfigType.
	Setup(cfg any) (Plugin, error)
	// Destroy releases p. It is called once per instance by DestroyAll.
	Destroy(p Plugin)
}

// Plugin is a running instance.
type Plugin interface {
	FactoryName() string
}
