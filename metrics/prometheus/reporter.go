// Package prometheus exposes craftnet metrics records on a Prometheus registry
// served over HTTP.
package prometheus

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/linchenxuan/craftnet/log"
	"github.com/linchenxuan/craftnet/metrics"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	_defaultListenAddr = "127.0.0.1:0"
	_defaultMetricPath = "/metrics"
)

// Cfg contains configuration for the Prometheus reporter.
type Cfg struct {
	Tag            string            `mapstructure:"tag"`
	ListenAddr     string            `mapstructure:"listenAddr"`
	MetricPath     string            `mapstructure:"metricPath"`
	ExtLabels      map[string]string `mapstructure:"extLabels"`
	RuntimeMetrics bool              `mapstructure:"runtimeMetrics"`
}

// Validate fills defaults and rejects unusable values.
func (c *Cfg) Validate() error {
	if c.ListenAddr == "" {
		c.ListenAddr = _defaultListenAddr
	}
	if c.MetricPath == "" {
		c.MetricPath = _defaultMetricPath
	}
	if !strings.HasPrefix(c.MetricPath, "/") {
		return fmt.Errorf("metricPath must start with '/', got %q", c.MetricPath)
	}
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return fmt.Errorf("invalid listenAddr %q: %w", c.ListenAddr, err)
	}
	return nil
}

type counterVec struct {
	vec    *promclient.CounterVec
	labels []string
}

type gaugeVec struct {
	vec    *promclient.GaugeVec
	labels []string
}

// Reporter implements metrics.Reporter on top of a private Prometheus registry.
type Reporter struct {
	cfg      *Cfg
	registry *promclient.Registry

	lock     sync.Mutex
	counters map[string]*counterVec
	gauges   map[string]*gaugeVec
	maxVals  map[string]metrics.Value

	svr  *http.Server
	addr net.Addr
}

// NewReporter creates a reporter. Start must be called to serve HTTP.
func NewReporter(cfg *Cfg) *Reporter {
	r := &Reporter{
		cfg:      cfg,
		registry: promclient.NewRegistry(),
		counters: map[string]*counterVec{},
		gauges:   map[string]*gaugeVec{},
		maxVals:  map[string]metrics.Value{},
	}
	if cfg.RuntimeMetrics {
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return r
}

// FactoryName implements plugin.Plugin.
func (x *Reporter) FactoryName() string {
	return _factoryName
}

// Registry returns the registry records are merged into.
func (x *Reporter) Registry() *promclient.Registry {
	return x.registry
}

// Addr returns the listening address once Start succeeded.
func (x *Reporter) Addr() net.Addr {
	return x.addr
}

// Start listens on the configured address and serves the metric path.
func (x *Reporter) Start() error {
	if x.svr != nil {
		return errors.New("prometheus reporter already started")
	}
	l, err := net.Listen("tcp", x.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("prometheus listen: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(x.cfg.MetricPath, promhttp.HandlerFor(x.registry, promhttp.HandlerOpts{}))
	x.svr = &http.Server{Handler: mux} //nolint:gosec
	x.addr = l.Addr()

	go func() {
		if err := x.svr.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("prometheus http serve")
		}
	}()
	log.Info().Str("addr", l.Addr().String()).Str("path", x.cfg.MetricPath).Msg("prometheus http start listen on")
	return nil
}

// Stop closes the HTTP server.
func (x *Reporter) Stop() {
	if x.svr == nil {
		return
	}
	if err := x.svr.Close(); err != nil {
		log.Error().Err(err).Msg("stop prometheus http server")
	}
	x.svr = nil
}

// Report merges one record into the registry.
func (x *Reporter) Report(rc metrics.Record) {
	m := rc.Metrics()
	if m == nil {
		return
	}
	x.lock.Lock()
	defer x.lock.Unlock()

	fqName := promclient.BuildFQName("", sanitize(m.Group()), sanitize(m.Name()))
	dims := rc.Dimensions()

	switch m.Policy() {
	case metrics.Policy_Sum:
		c := x.counters[fqName]
		if c == nil {
			labels := labelNames(dims)
			c = &counterVec{
				vec: promclient.NewCounterVec(promclient.CounterOpts{
					Name:        fqName,
					Help:        fqName,
					ConstLabels: x.cfg.ExtLabels,
				}, labels),
				labels: labels,
			}
			if err := x.registry.Register(c.vec); err != nil {
				log.Error().Err(err).Str("metric", fqName).Msg("prometheus register counter")
				return
			}
			x.counters[fqName] = c
		}
		values, ok := labelValues(c.labels, dims)
		if !ok {
			log.Warn().Str("metric", fqName).Msg("prometheus dimension mismatch")
			return
		}
		c.vec.WithLabelValues(values...).Add(float64(rc.Value()))
	case metrics.Policy_Set, metrics.Policy_Max:
		g := x.gauges[fqName]
		if g == nil {
			labels := labelNames(dims)
			g = &gaugeVec{
				vec: promclient.NewGaugeVec(promclient.GaugeOpts{
					Name:        fqName,
					Help:        fqName,
					ConstLabels: x.cfg.ExtLabels,
				}, labels),
				labels: labels,
			}
			if err := x.registry.Register(g.vec); err != nil {
				log.Error().Err(err).Str("metric", fqName).Msg("prometheus register gauge")
				return
			}
			x.gauges[fqName] = g
		}
		values, ok := labelValues(g.labels, dims)
		if !ok {
			log.Warn().Str("metric", fqName).Msg("prometheus dimension mismatch")
			return
		}
		v := rc.Value()
		if m.Policy() == metrics.Policy_Max {
			series := fqName + "|" + strings.Join(values, ",")
			if prev, seen := x.maxVals[series]; seen {
				if v = metrics.Fold(metrics.Policy_Max, prev, v); v == prev {
					return
				}
			}
			x.maxVals[series] = v
		}
		g.vec.WithLabelValues(values...).Set(float64(v))
	default:
		log.Error().Str("metric", fqName).Int("policy", int(m.Policy())).Msg("prometheus merge unknown policy")
	}
}

func labelNames(dims map[string]string) []string {
	names := make([]string, 0, len(dims))
	for k := range dims {
		names = append(names, sanitize(k))
	}
	sort.Strings(names)
	return names
}

// labelValues orders dims by labels. A missing dimension reports as empty,
// an unknown one fails the lookup.
func labelValues(labels []string, dims map[string]string) ([]string, bool) {
	values := make([]string, len(labels))
	matched := 0
	for i, l := range labels {
		for k, v := range dims {
			if sanitize(k) == l {
				values[i] = v
				matched++
				break
			}
		}
	}
	return values, matched == len(dims)
}

func sanitize(s string) string {
	return strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(s)
}
