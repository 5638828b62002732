package metrics

// Record is one reported value. Reporters may keep a Record past Report only
// through Clone, because the dimension map belongs to the caller.
type Record struct {
	metrics    Metrics
	value      Value
	dimensions Dimension
}

// NewRecord builds a record, mostly for reporters and tests.
func NewRecord(m Metrics, v Value, d Dimension) Record {
	return Record{metrics: m, value: v, dimensions: d}
}

// Metrics returns the series the value belongs to.
func (r Record) Metrics() Metrics { return r.metrics }

// Value returns the reported value.
func (r Record) Value() Value { return r.value }

// Dimensions returns the label set, possibly nil.
func (r Record) Dimensions() Dimension { return r.dimensions }

// Clone copies r including its dimensions.
func (r Record) Clone() Record {
	if r.dimensions != nil {
		d := make(Dimension, len(r.dimensions))
		for k, v := range r.dimensions {
			d[k] = v
		}
		r.dimensions = d
	}
	return r
}

// Fold combines a later value of the same series into acc following policy.
// Policy_None keeps the later value.
func Fold(policy Policy, acc, next Value) Value {
	switch policy {
	case Policy_Sum:
		return acc + next
	case Policy_Max:
		if next > acc {
			return next
		}
		return acc
	default:
		return next
	}
}
