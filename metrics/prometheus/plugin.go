package prometheus

import (
	"fmt"

	"github.com/linchenxuan/craftnet/metrics"
	"github.com/linchenxuan/craftnet/plugin"
)

const _factoryName = "prometheus"

type factory struct{}

// NewFactory returns the plugin factory for the Prometheus reporter.
func NewFactory() plugin.Factory {
	return &factory{}
}

// Type returns the plugin type.
func (f *factory) Type() plugin.Type {
	return plugin.Metrics
}

// Name returns the name of the plugin implementation.
func (f *factory) Name() string {
	return _factoryName
}

// ConfigType returns the struct the manager decodes the plugin table into.
func (f *factory) ConfigType() any {
	return &Cfg{}
}

// Setup starts a reporter and registers it with the metrics package.
func (f *factory) Setup(cfgAny any) (plugin.Plugin, error) {
	cfg, ok := cfgAny.(*Cfg)
	if !ok {
		return nil, fmt.Errorf("prometheus setup: unexpected config type %T", cfgAny)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := NewReporter(cfg)
	if err := r.Start(); err != nil {
		return nil, err
	}
	metrics.AddReporter(r)
	return r, nil
}

// Destroy unregisters and stops the reporter.
func (f *factory) Destroy(p plugin.Plugin) {
	r, ok := p.(*Reporter)
	if !ok {
		return
	}
	metrics.RemoveReporter(r)
	r.Stop()
}
