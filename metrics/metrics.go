package metrics

import (
	"sync"
)

// Metrics describes a metric series. A reporter receives it with every
// Record and uses Policy to decide how values combine.
type Metrics interface {
	Name() string
	Group() string
	Policy() Policy
}

// Counter accumulates deltas.
type Counter interface {
	Metrics
	Incr(delta Value)
	IncrWithDim(delta Value, dimensions Dimension)
}

// Gauge reports absolute values. A max gauge reports the same way and leaves
// keeping the peak to the reporter.
type Gauge interface {
	Metrics
	Update(value Value)
	UpdateWithDim(value Value, dimensions Dimension)
}

// series is the single implementation behind every counter and gauge.
type series struct {
	name   string
	group  string
	policy Policy
}

func (s *series) Name() string   { return s.name }
func (s *series) Group() string  { return s.group }
func (s *series) Policy() Policy { return s.policy }

func (s *series) Incr(delta Value) { s.emit(delta, nil) }

func (s *series) IncrWithDim(delta Value, dimensions Dimension) { s.emit(delta, dimensions) }

func (s *series) Update(value Value) { s.emit(value, nil) }

func (s *series) UpdateWithDim(value Value, dimensions Dimension) { s.emit(value, dimensions) }

func (s *series) emit(v Value, dimensions Dimension) {
	report(Record{metrics: s, value: v, dimensions: dimensions})
}

type seriesKey struct {
	policy Policy
	group  string
	name   string
}

var (
	_seriesLock sync.RWMutex
	_series     = map[seriesKey]*series{}
)

// lookup returns the series for key, creating it on first use. Counters and
// gauges of the same name live side by side because the policy is part of
// the key.
func lookup(name, group string, policy Policy) *series {
	key := seriesKey{policy: policy, group: group, name: name}
	_seriesLock.RLock()
	s := _series[key]
	_seriesLock.RUnlock()
	if s != nil {
		return s
	}

	_seriesLock.Lock()
	defer _seriesLock.Unlock()
	if s = _series[key]; s == nil {
		s = &series{name: name, group: group, policy: policy}
		_series[key] = s
	}
	return s
}

// GetCounter returns the counter name in group.
func GetCounter(name, group string) Counter { return lookup(name, group, Policy_Sum) }

// GetGauge returns the last-value gauge name in group.
func GetGauge(name, group string) Gauge { return lookup(name, group, Policy_Set) }

// GetMaxGauge returns the peak-value gauge name in group.
func GetMaxGauge(name, group string) Gauge { return lookup(name, group, Policy_Max) }

// IncrCounterWithGroup adds value to a counter.
func IncrCounterWithGroup(key string, group string, value Value) {
	GetCounter(key, group).Incr(value)
}

// IncrCounterWithDimGroup adds value to one dimension set of a counter.
func IncrCounterWithDimGroup(key string, group string, value Value, dimensions Dimension) {
	GetCounter(key, group).IncrWithDim(value, dimensions)
}

// UpdateGaugeWithGroup sets a gauge.
func UpdateGaugeWithGroup(key string, group string, value Value) {
	GetGauge(key, group).Update(value)
}

// UpdateGaugeWithDimGroup sets one dimension set of a gauge.
func UpdateGaugeWithDimGroup(key string, group string, value Value, dimensions Dimension) {
	GetGauge(key, group).UpdateWithDim(value, dimensions)
}

// UpdateMaxGaugeWithGroup offers value to a max gauge.
func UpdateMaxGaugeWithGroup(key string, group string, value Value) {
	GetMaxGauge(key, group).Update(value)
}
