package plugin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dialerCfg struct {
	Addr          string `mapstructure:"addr"`
	DialTimeoutMs int    `mapstructure:"dialTimeoutMs"`
	Tag           string `mapstructure:"tag"`
}

type fakeDialer struct {
	factory string
	cfg     dialerCfg
}

func (d *fakeDialer) FactoryName() string { return d.factory }

type fakeFactory struct {
	name      string
	setupErr  error
	setups    int
	destroyed []Plugin
}

func (f *fakeFactory) Type() Type      { return Transport }
func (f *fakeFactory) Name() string    { return f.name }
func (f *fakeFactory) ConfigType() any { return &dialerCfg{} }

func (f *fakeFactory) Setup(cfg any) (Plugin, error) {
	f.setups++
	if f.setupErr != nil {
		return nil, f.setupErr
	}
	return &fakeDialer{factory: f.name, cfg: *cfg.(*dialerCfg)}, nil
}

func (f *fakeFactory) Destroy(p Plugin) { f.destroyed = append(f.destroyed, p) }

func transportConf(instances map[string]any) map[string]any {
	return map[string]any{string(Transport): instances}
}

func TestSetupDecodesConfig(t *testing.T) {
	m := NewManager()
	tcp := &fakeFactory{name: "tcp"}
	m.RegisterFactory(tcp)

	err := m.SetupPlugins(transportConf(map[string]any{
		"tcp": map[string]any{"addr": "mc.example.net:25565", "dialTimeoutMs": 750},
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, tcp.setups)

	p, err := m.GetPlugin(Transport, "tcp")
	require.NoError(t, err)
	d := p.(*fakeDialer)
	assert.Equal(t, "tcp", d.FactoryName())
	assert.Equal(t, "mc.example.net:25565", d.cfg.Addr)
	assert.Equal(t, 750, d.cfg.DialTimeoutMs)
}

func TestTagSelectsInstanceKey(t *testing.T) {
	m := NewManager()
	m.RegisterFactory(&fakeFactory{name: "tcp"})
	m.RegisterFactory(&fakeFactory{name: "proxy"})

	err := m.SetupPlugins(transportConf(map[string]any{
		"tcp":   map[string]any{"tag": DefaultInsName},
		"proxy": map[string]any{"addr": "127.0.0.1:1080"},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultInsName, "proxy"}, m.Names(Transport))

	def, err := m.GetDefaultPlugin(Transport)
	require.NoError(t, err)
	assert.Equal(t, "tcp", def.FactoryName())

	_, err = m.GetPlugin(Transport, "tcp")
	assert.ErrorIs(t, err, ErrPluginNotFound)
}

func TestSetupErrors(t *testing.T) {
	tests := []struct {
		name string
		conf map[string]any
		want error
	}{
		{
			name: "duplicate tag",
			conf: transportConf(map[string]any{
				"tcp":   map[string]any{"tag": "main"},
				"proxy": map[string]any{"tag": "main"},
			}),
			want: ErrDuplicatePlugin,
		},
		{
			name: "unknown factory",
			conf: transportConf(map[string]any{"udp": map[string]any{}}),
			want: ErrPluginNotFound,
		},
		{
			name: "wrong field type",
			conf: transportConf(map[string]any{"tcp": map[string]any{"dialTimeoutMs": "soon"}}),
			want: ErrConfigDecode,
		},
		{
			name: "unknown field",
			conf: transportConf(map[string]any{"tcp": map[string]any{"retries": 3}}),
			want: ErrConfigDecode,
		},
		{
			name: "type table not a map",
			conf: map[string]any{string(Transport): "tcp"},
			want: ErrInvalidConfigFormat,
		},
		{
			name: "instance table not a map",
			conf: transportConf(map[string]any{"tcp": 1}),
			want: ErrInvalidConfigFormat,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager()
			m.RegisterFactory(&fakeFactory{name: "tcp"})
			m.RegisterFactory(&fakeFactory{name: "proxy"})
			assert.ErrorIs(t, m.SetupPlugins(tt.conf), tt.want)
		})
	}
}

func TestSetupFailure(t *testing.T) {
	m := NewManager()
	m.RegisterFactory(&fakeFactory{name: "tcp", setupErr: errors.New("no route")})
	err := m.SetupPlugins(transportConf(map[string]any{"tcp": map[string]any{}}))
	assert.ErrorIs(t, err, ErrFactorySetup)
	assert.Empty(t, m.Names(Transport))
}

func TestUnregisteredTypeIgnored(t *testing.T) {
	m := NewManager()
	err := m.SetupPlugins(map[string]any{"tracer": map[string]any{"zipkin": map[string]any{}}})
	assert.NoError(t, err)
}

func TestDestroyAll(t *testing.T) {
	m := NewManager()
	tcp := &fakeFactory{name: "tcp"}
	m.RegisterFactory(tcp)
	require.NoError(t, m.SetupPlugins(transportConf(map[string]any{"tcp": map[string]any{"tag": "a"}})))

	p, err := m.GetPlugin(Transport, "a")
	require.NoError(t, err)

	m.DestroyAll()
	assert.Equal(t, []Plugin{p}, tcp.destroyed)
	_, err = m.GetPlugin(Transport, "a")
	assert.ErrorIs(t, err, ErrPluginNotFound)
	assert.Empty(t, m.Names(Transport))
}
