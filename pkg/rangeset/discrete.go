package rangeset

import "math"

// Discrete is a value domain in which every value has a well-defined
// successor, such as the integers.
type Discrete[C any] interface {
	// Next returns the value following v, or false when v is the greatest
	// value of the domain.
	Next(v C) (C, bool)
}

// Int64s is the discrete domain of int64 values.
type Int64s struct{}

func (Int64s) Next(v int64) (int64, bool) {
	if v == math.MaxInt64 {
		return 0, false
	}
	return v + 1, true
}

// Canonical rewrites r in the closed-open form [a‥b) of domain d, so that
// ranges covering adjacent values, like [1‥3] and [4‥6], become connected
// and coalesce when added to a RangeSet.
func Canonical[C any](r Range[C], d Discrete[C]) Range[C] {
	r.lower = canonicalCut(r.lower, d)
	r.upper = canonicalCut(r.upper, d)
	return r
}

func canonicalCut[C any](c cut[C], d Discrete[C]) cut[C] {
	if c.kind != aboveValue {
		return c
	}
	if next, ok := d.Next(c.value); ok {
		return below(next)
	}
	return top[C]()
}
