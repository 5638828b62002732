package metrics

import "sync"

var (
	_reporters     []Reporter
	_lockReporters sync.RWMutex
)

// Reporter defines the interface for metric reporting implementations.
type Reporter interface {
	Report(r Record)
}

// SetMetricsReporters replaces the global list of metric reporters.
func SetMetricsReporters(reports []Reporter) {
	_lockReporters.Lock()
	defer _lockReporters.Unlock()
	_reporters = reports
}

// AddReporter appends a reporter to the global list.
func AddReporter(r Reporter) {
	_lockReporters.Lock()
	defer _lockReporters.Unlock()
	_reporters = append(_reporters, r)
}

// RemoveReporter drops r from the global list if present.
func RemoveReporter(r Reporter) {
	_lockReporters.Lock()
	defer _lockReporters.Unlock()
	for i, cur := range _reporters {
		if cur == r {
			_reporters = append(_reporters[:i:i], _reporters[i+1:]...)
			return
		}
	}
}

func report(r Record) {
	_lockReporters.RLock()
	defer _lockReporters.RUnlock()
	for _, reporter := range _reporters {
		reporter.Report(r)
	}
}
