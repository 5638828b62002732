package plugin

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/linchenxuan/craftnet/config"
	"github.com/linchenxuan/craftnet/log"
)

const (
	// DefaultInsName is the tag for the default plugin instance.
	DefaultInsName = "default"
)

var (
	ErrPluginNotFound      = errors.New("plugin not found")
	ErrDuplicatePlugin     = errors.New("duplicate plugin")
	ErrInvalidConfigFormat = errors.New("invalid config format")
	ErrConfigDecode        = errors.New("config decode error")
	ErrFactorySetup        = errors.New("factory setup error")
)

type instance struct {
	plugin  Plugin
	factory Factory
}

// Manager is responsible for managing all plugins in the framework.
type Manager struct {
	factories map[Type]map[string]Factory
	plugins   map[Type]map[string]instance
	lock      sync.RWMutex
}

// NewManager creates and returns a new Manager instance.
func NewManager() *Manager {
	return &Manager{
		factories: make(map[Type]map[string]Factory),
		plugins:   make(map[Type]map[string]instance),
	}
}

// RegisterFactory registers a plugin factory with the manager.
func (m *Manager) RegisterFactory(f Factory) {
	m.lock.Lock()
	defer m.lock.Unlock()

	factories, ok := m.factories[f.Type()]
	if !ok {
		factories = make(map[string]Factory)
		m.factories[f.Type()] = factories
	}
	factories[f.Name()] = f
}

// SetupPlugins sets up every plugin named in the `[plugin]` table.
// The table layout is plugin.<type>.<name> = { ...config }.
func (m *Manager) SetupPlugins(pluginConf map[string]any) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	for typeName, plugins := range pluginConf {
		pluginType := Type(typeName)
		factories, ok := m.factories[pluginType]
		if !ok {
			log.Debug().Str("type", typeName).Msg("no factory registered for plugin type")
			continue
		}

		pluginsMap, ok := plugins.(map[string]any)
		if !ok {
			return fmt.Errorf("%w for plugin type '%s'", ErrInvalidConfigFormat, pluginType)
		}

		for name, cfg := range pluginsMap {
			factory, ok := factories[name]
			if !ok {
				return fmt.Errorf("%w: plugin factory not found for type '%s' and name '%s'", ErrPluginNotFound, pluginType, name)
			}

			configMap, ok := cfg.(map[string]any)
			if !ok {
				return fmt.Errorf("%w for plugin '%s':'%s'", ErrInvalidConfigFormat, pluginType, name)
			}

			targetConfig := factory.ConfigType()
			if targetConfig == nil {
				return fmt.Errorf("%w: plugin factory '%s':'%s' did not provide a configuration type", ErrInvalidConfigFormat, pluginType, name)
			}
			if err := config.Decode(configMap, targetConfig); err != nil {
				return fmt.Errorf("%w: failed to decode config for plugin '%s':'%s': %v", ErrConfigDecode, pluginType, name, err)
			}

			key := name
			if tag, ok := configMap["tag"].(string); ok && tag != "" {
				key = tag
			}
			if _, exists := m.plugins[pluginType][key]; exists {
				return fmt.Errorf("%w: duplicate plugin tag/name '%s' for type '%s'", ErrDuplicatePlugin, key, pluginType)
			}

			ins, err := factory.Setup(targetConfig)
			if err != nil {
				return fmt.Errorf("%w: failed to setup plugin '%s':'%s': %v", ErrFactorySetup, pluginType, name, err)
			}

			if _, ok := m.plugins[pluginType]; !ok {
				m.plugins[pluginType] = make(map[string]instance)
			}
			m.plugins[pluginType][key] = instance{plugin: ins, factory: factory}
			log.Info().Str("type", typeName).Str("name", name).Str("tag", key).Msg("plugin setup")
		}
	}
	return nil
}

// GetPlugin gets an initialized plugin instance. `name` is the plugin's tag,
// or its factory name when no tag was configured.
func (m *Manager) GetPlugin(typ Type, name string) (Plugin, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	plugins, ok := m.plugins[typ]
	if !ok {
		return nil, fmt.Errorf("%w: no plugins found for type '%s'", ErrPluginNotFound, typ)
	}

	ins, ok := plugins[name]
	if !ok {
		return nil, fmt.Errorf("%w: plugin '%s' not found for type '%s'", ErrPluginNotFound, name, typ)
	}
	return ins.plugin, nil
}

// GetDefaultPlugin gets the default plugin instance of the specified type.
func (m *Manager) GetDefaultPlugin(typ Type) (Plugin, error) {
	return m.GetPlugin(typ, DefaultInsName)
}

// Names lists the instance keys set up for typ, sorted.
func (m *Manager) Names(typ Type) []string {
	m.lock.RLock()
	defer m.lock.RUnlock()

	names := make([]string, 0, len(m.plugins[typ]))
	for k := range m.plugins[typ] {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DestroyAll hands every instance back to its factory and forgets it.
func (m *Manager) DestroyAll() {
	m.lock.Lock()
	defer m.lock.Unlock()

	for typ, plugins := range m.plugins {
		for key, ins := range plugins {
			ins.factory.Destroy(ins.plugin)
			log.Info().Str("type", string(typ)).Str("tag", key).Msg("plugin destroyed")
		}
	}
	m.plugins = make(map[Type]map[string]instance)
}
