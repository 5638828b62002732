// Package craftnet assembles the client stack: configuration, the default
// logger, the plugin manager with the built in factories and the event
// publisher every connection reports to.
package craftnet

import (
	"context"
	"fmt"
	"time"

	"github.com/linchenxuan/craftnet/config"
	"github.com/linchenxuan/craftnet/event"
	"github.com/linchenxuan/craftnet/log"
	"github.com/linchenxuan/craftnet/metrics/prometheus"
	"github.com/linchenxuan/craftnet/network/client"
	"github.com/linchenxuan/craftnet/network/handler"
	"github.com/linchenxuan/craftnet/network/packet"
	"github.com/linchenxuan/craftnet/network/transport"
	"github.com/linchenxuan/craftnet/network/transport/tcp"
	"github.com/linchenxuan/craftnet/plugin"
	"github.com/linchenxuan/craftnet/runtime"
)

const _eventTimeout = time.Second

// App is the assembled application.
type App struct {
	Config        *config.File
	Log           *log.LogCfg
	Transport     *transport.Cfg
	Client        *client.Cfg
	Handler       *handler.MuxCfg
	PluginManager *plugin.Manager
	Publisher     *event.Publisher

	dialer *tcp.Dialer
}

// New builds an App from file. A nil file runs on defaults. The default
// logger is replaced by the one [log] describes.
func New(file *config.File) (*App, error) {
	if file == nil {
		file = config.Empty()
	}
	a := &App{
		Config:    file,
		Log:       log.DefaultCfg(),
		Transport: transport.DefaultCfg(),
		Client:    client.DefaultCfg(),
		Handler:   &handler.MuxCfg{},
	}
	for name, section := range map[string]any{
		"log":       a.Log,
		"transport": a.Transport,
		"client":    a.Client,
		"handler":   a.Handler,
	} {
		if err := file.Section(name, section); err != nil {
			return nil, err
		}
	}
	if err := log.Initialize(a.Log); err != nil {
		return nil, fmt.Errorf("init log: %w", err)
	}

	a.PluginManager = plugin.NewManager()
	a.PluginManager.RegisterFactory(prometheus.NewFactory())
	a.PluginManager.RegisterFactory(tcp.NewFactory())
	if file.Has("plugin") {
		raw, err := file.Raw("plugin")
		if err != nil {
			return nil, err
		}
		if err := a.PluginManager.SetupPlugins(raw); err != nil {
			a.PluginManager.DestroyAll()
			return nil, err
		}
	}

	a.Publisher = event.NewPublisher()
	for _, topic := range []string{event.ConnectionClosed, event.ConnectionInfo} {
		if err := a.Publisher.NewTopic(topic, _eventTimeout); err != nil {
			return nil, err
		}
	}

	a.dialer = a.resolveDialer()
	log.Info().Str("version", runtime.String()).Str("config", file.Path).Msg("craftnet initialized")
	return a, nil
}

// resolveDialer picks the configured tcp plugin, the default tag first, or
// falls back to a dialer over [transport].
func (a *App) resolveDialer() *tcp.Dialer {
	names := a.PluginManager.Names(plugin.Transport)
	for _, name := range append([]string{plugin.DefaultInsName}, names...) {
		p, err := a.PluginManager.GetPlugin(plugin.Transport, name)
		if err != nil {
			continue
		}
		if d, ok := p.(*tcp.Dialer); ok {
			log.Debug().Str("tag", name).Msg("using configured tcp dialer")
			return d
		}
	}
	return tcp.NewDialer(a.Transport)
}

// Dialer returns the dialer every connection of the app goes through.
func (a *App) Dialer() *tcp.Dialer { return a.dialer }

// ClientOption returns the client collaborators wired to the app.
func (a *App) ClientOption() client.Option {
	return client.Option{
		Transport: a.dialer.Cfg(),
		Connect:   a.dialer.NewConn,
		Publisher: a.Publisher,
	}
}

// NewClient returns a client for username with [client] defaults and the
// [handler] filters installed. Blocking filters wait under the context of
// the client's current connection, or ctx before Join.
func (a *App) NewClient(ctx context.Context, username string, opt client.Option) (*client.Client, error) {
	cfg := *a.Client
	if username != "" {
		cfg.Username = username
	}
	base := a.ClientOption()
	if opt.Transport == nil {
		opt.Transport = base.Transport
	}
	if opt.Connect == nil {
		opt.Connect = base.Connect
	}
	if opt.Publisher == nil {
		opt.Publisher = base.Publisher
	}
	c, err := client.New(&cfg, opt)
	if err != nil {
		return nil, err
	}
	a.Handler.Apply(func() context.Context {
		if conn := c.Conn(); conn != nil {
			return conn.Context()
		}
		return ctx
	}, c.Mux(), packet.Default)
	return c, nil
}

// Ping queries addr through the app dialer.
func (a *App) Ping(ctx context.Context, addr string) (*client.PingResult, error) {
	return client.Ping(ctx, addr, a.Client, a.ClientOption())
}

// Stop disposes the remaining connections, destroys the plugins and flushes
// the logger.
func (a *App) Stop() error {
	log.Info().Int("connections", a.dialer.Len()).Msg("craftnet shutting down")
	a.dialer.StopAll()
	a.PluginManager.DestroyAll()
	return log.Close()
}
