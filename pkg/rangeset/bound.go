package rangeset

import "cmp"

// BoundType indicates whether an endpoint of a Range is contained in the
// Range itself ("closed") or not ("open"). If a range is unbounded on a side,
// it is neither open nor closed on that side; the bound simply does not
// exist.
type BoundType uint8

const (
	// BoundTypeOpen indicates that the endpoint value is not part of the Range.
	BoundTypeOpen BoundType = iota
	// BoundTypeClosed indicates that the endpoint value is part of the Range.
	BoundTypeClosed
)

func (b BoundType) String() string {
	if b == BoundTypeClosed {
		return "closed"
	}
	return "open"
}

// Order is a total order over C. It returns a negative number when a < b,
// zero when a == b and a positive number when a > b.
type Order[C any] func(a, b C) int

// Ordered returns the natural order of a cmp.Ordered type.
func Ordered[C cmp.Ordered]() Order[C] {
	return cmp.Compare[C]
}

// cutKind tags the position of a cut in the value space.
type cutKind uint8

const (
	belowAll cutKind = iota
	belowValue
	aboveValue
	aboveAll
)

// cut is a point between values. A closed lower bound v is the cut just below
// v, an open lower bound v the cut just above v; for upper bounds it is the
// other way around. Ordering cuts instead of endpoints gives a single total
// order for both sides of a range.
type cut[C any] struct {
	kind  cutKind
	value C
}

func below[C any](v C) cut[C] { return cut[C]{kind: belowValue, value: v} }
func above[C any](v C) cut[C] { return cut[C]{kind: aboveValue, value: v} }

func bottom[C any]() cut[C] { return cut[C]{kind: belowAll} }
func top[C any]() cut[C]    { return cut[C]{kind: aboveAll} }

func (c cut[C]) bounded() bool {
	return c.kind == belowValue || c.kind == aboveValue
}

// lessThan reports whether the cut lies below v.
func (c cut[C]) lessThan(o Order[C], v C) bool {
	switch c.kind {
	case belowAll:
		return true
	case belowValue:
		return o(c.value, v) <= 0
	case aboveValue:
		return o(c.value, v) < 0
	default:
		return false
	}
}

func compareCuts[C any](o Order[C], a, b cut[C]) int {
	if a.bounded() && b.bounded() {
		if c := o(a.value, b.value); c != 0 {
			return c
		}
		return cmp.Compare(a.kind, b.kind)
	}
	return cmp.Compare(rank(a.kind), rank(b.kind))
}

// rank collapses bounded cuts into the middle so that unbounded cuts sort
// before or after every value.
func rank(k cutKind) int {
	switch k {
	case belowAll:
		return -1
	case aboveAll:
		return 1
	}
	return 0
}

func minCut[C any](o Order[C], a, b cut[C]) cut[C] {
	if compareCuts(o, a, b) <= 0 {
		return a
	}
	return b
}

func maxCut[C any](o Order[C], a, b cut[C]) cut[C] {
	if compareCuts(o, a, b) >= 0 {
		return a
	}
	return b
}

func lowerBoundType(k cutKind) BoundType {
	if k == belowValue {
		return BoundTypeClosed
	}
	return BoundTypeOpen
}

func upperBoundType(k cutKind) BoundType {
	if k == aboveValue {
		return BoundTypeClosed
	}
	return BoundTypeOpen
}

func lowerCut[C any](v C, bt BoundType) cut[C] {
	if bt == BoundTypeClosed {
		return below(v)
	}
	return above(v)
}

func upperCut[C any](v C, bt BoundType) cut[C] {
	if bt == BoundTypeClosed {
		return above(v)
	}
	return below(v)
}
