package rangeset

import (
	"cmp"
	"fmt"
	"strings"
)

// Range defines the boundaries around a contiguous span of values, e.g.
// "integers from 1 to 100 inclusive".
//
// Each side of a Range is either unbounded, open or closed:
//
//	Notation        Definition          Factory method
//	(a‥b)           {x | a < x < b}     Open
//	[a‥b]           {x | a <= x <= b}   Closed
//	(a‥b]           {x | a < x <= b}    OpenClosed
//	[a‥b)           {x | a <= x < b}    ClosedOpen
//	(a‥+∞)          {x | x > a}         GreaterThan
//	[a‥+∞)          {x | x >= a}        AtLeast
//	(-∞‥b)          {x | x < b}         LessThan
//	(-∞‥b]          {x | x <= b}        AtMost
//	(-∞‥+∞)         {x}                 All
//
// A Range is immutable. The zero value is not a valid range; it stands for
// "no range" and is rejected by every RangeSet mutator.
type Range[C any] struct {
	lower cut[C]
	upper cut[C]
	order Order[C]
}

// Open returns the range (lower‥upper).
func (o Order[C]) Open(lower, upper C) Range[C] {
	return Range[C]{lower: above(lower), upper: below(upper), order: o}
}

// Closed returns the range [lower‥upper].
func (o Order[C]) Closed(lower, upper C) Range[C] {
	return Range[C]{lower: below(lower), upper: above(upper), order: o}
}

// OpenClosed returns the range (lower‥upper].
func (o Order[C]) OpenClosed(lower, upper C) Range[C] {
	return Range[C]{lower: above(lower), upper: above(upper), order: o}
}

// ClosedOpen returns the range [lower‥upper).
func (o Order[C]) ClosedOpen(lower, upper C) Range[C] {
	return Range[C]{lower: below(lower), upper: below(upper), order: o}
}

// GreaterThan returns the range (lower‥+∞).
func (o Order[C]) GreaterThan(lower C) Range[C] {
	return Range[C]{lower: above(lower), upper: top[C](), order: o}
}

// AtLeast returns the range [lower‥+∞).
func (o Order[C]) AtLeast(lower C) Range[C] {
	return Range[C]{lower: below(lower), upper: top[C](), order: o}
}

// LessThan returns the range (-∞‥upper).
func (o Order[C]) LessThan(upper C) Range[C] {
	return Range[C]{lower: bottom[C](), upper: below(upper), order: o}
}

// AtMost returns the range (-∞‥upper].
func (o Order[C]) AtMost(upper C) Range[C] {
	return Range[C]{lower: bottom[C](), upper: above(upper), order: o}
}

// All returns the range that contains every value.
func (o Order[C]) All() Range[C] {
	return Range[C]{lower: bottom[C](), upper: top[C](), order: o}
}

// Singleton returns the range [v‥v].
func (o Order[C]) Singleton(v C) Range[C] {
	return o.Closed(v, v)
}

// NewRange returns the range between lower and upper with the given bound types.
func (o Order[C]) NewRange(lower C, lowerType BoundType, upper C, upperType BoundType) Range[C] {
	return Range[C]{lower: lowerCut(lower, lowerType), upper: upperCut(upper, upperType), order: o}
}

// UpTo returns the range below upper, unbounded on the lower side.
func (o Order[C]) UpTo(upper C, bt BoundType) Range[C] {
	return Range[C]{lower: bottom[C](), upper: upperCut(upper, bt), order: o}
}

// DownTo returns the range above lower, unbounded on the upper side.
func (o Order[C]) DownTo(lower C, bt BoundType) Range[C] {
	return Range[C]{lower: lowerCut(lower, bt), upper: top[C](), order: o}
}

func Open[C cmp.Ordered](lower, upper C) Range[C]       { return Ordered[C]().Open(lower, upper) }
func Closed[C cmp.Ordered](lower, upper C) Range[C]     { return Ordered[C]().Closed(lower, upper) }
func OpenClosed[C cmp.Ordered](lower, upper C) Range[C] { return Ordered[C]().OpenClosed(lower, upper) }
func ClosedOpen[C cmp.Ordered](lower, upper C) Range[C] { return Ordered[C]().ClosedOpen(lower, upper) }
func GreaterThan[C cmp.Ordered](lower C) Range[C]       { return Ordered[C]().GreaterThan(lower) }
func AtLeast[C cmp.Ordered](lower C) Range[C]           { return Ordered[C]().AtLeast(lower) }
func LessThan[C cmp.Ordered](upper C) Range[C]          { return Ordered[C]().LessThan(upper) }
func AtMost[C cmp.Ordered](upper C) Range[C]            { return Ordered[C]().AtMost(upper) }
func All[C cmp.Ordered]() Range[C]                      { return Ordered[C]().All() }
func Singleton[C cmp.Ordered](v C) Range[C]             { return Ordered[C]().Singleton(v) }

func NewRange[C cmp.Ordered](lower C, lowerType BoundType, upper C, upperType BoundType) Range[C] {
	return Ordered[C]().NewRange(lower, lowerType, upper, upperType)
}

// IsValid reports whether r was built by one of the constructors and its
// lower endpoint does not exceed its upper endpoint. Degenerate ranges such
// as (5‥5) are valid and empty.
func (r Range[C]) IsValid() bool {
	if r.order == nil || r.lower.kind == aboveAll || r.upper.kind == belowAll {
		return false
	}
	if r.lower.bounded() && r.upper.bounded() {
		return r.order(r.lower.value, r.upper.value) <= 0
	}
	return true
}

// IsEmpty reports whether r contains no values, e.g. [5‥5) or (5‥5).
func (r Range[C]) IsEmpty() bool {
	if r.order == nil {
		return true
	}
	return compareCuts(r.order, r.lower, r.upper) >= 0
}

// Contains reports whether v lies within r.
func (r Range[C]) Contains(v C) bool {
	if r.order == nil {
		return false
	}
	return r.lower.lessThan(r.order, v) && !r.upper.lessThan(r.order, v)
}

// IsConnected reports whether there is no value strictly between r and o:
// they overlap or abut. [1‥3] and (3‥5] are connected, [1‥3) and (3‥5]
// are not.
func (r Range[C]) IsConnected(o Range[C]) bool {
	return compareCuts(r.order, r.lower, o.upper) <= 0 &&
		compareCuts(r.order, o.lower, r.upper) <= 0
}

// Span returns the minimal range that encloses both r and o. The ranges do
// not need to be connected.
func (r Range[C]) Span(o Range[C]) Range[C] {
	return Range[C]{
		lower: minCut(r.order, r.lower, o.lower),
		upper: maxCut(r.order, r.upper, o.upper),
		order: r.order,
	}
}

// Encloses reports whether every bound of o lies within the bounds of r.
func (r Range[C]) Encloses(o Range[C]) bool {
	return compareCuts(r.order, r.lower, o.lower) <= 0 &&
		compareCuts(r.order, o.upper, r.upper) <= 0
}

// Intersection returns the maximal range enclosed by both r and o. The
// result may be empty when the ranges only touch. ok is false when the
// ranges are not connected.
func (r Range[C]) Intersection(o Range[C]) (Range[C], bool) {
	if !r.IsConnected(o) {
		return Range[C]{}, false
	}
	return Range[C]{
		lower: maxCut(r.order, r.lower, o.lower),
		upper: minCut(r.order, r.upper, o.upper),
		order: r.order,
	}, true
}

// Equal reports whether r and o have the same bounds.
func (r Range[C]) Equal(o Range[C]) bool {
	if r.order == nil || o.order == nil {
		return r.order == nil && o.order == nil
	}
	return compareCuts(r.order, r.lower, o.lower) == 0 &&
		compareCuts(r.order, r.upper, o.upper) == 0
}

// CompareLower orders r and o by their lower bound.
func (r Range[C]) CompareLower(o Range[C]) int {
	return compareCuts(r.order, r.lower, o.lower)
}

// HasLowerBound reports whether r has a lower endpoint.
func (r Range[C]) HasLowerBound() bool { return r.lower.bounded() }

// HasUpperBound reports whether r has an upper endpoint.
func (r Range[C]) HasUpperBound() bool { return r.upper.bounded() }

// LowerEndpoint returns the lower endpoint value, ok is false when r is
// unbounded below.
func (r Range[C]) LowerEndpoint() (v C, ok bool) {
	return r.lower.value, r.lower.bounded()
}

// UpperEndpoint returns the upper endpoint value, ok is false when r is
// unbounded above.
func (r Range[C]) UpperEndpoint() (v C, ok bool) {
	return r.upper.value, r.upper.bounded()
}

// LowerBoundType is only meaningful when HasLowerBound is true.
func (r Range[C]) LowerBoundType() BoundType { return lowerBoundType(r.lower.kind) }

// UpperBoundType is only meaningful when HasUpperBound is true.
func (r Range[C]) UpperBoundType() BoundType { return upperBoundType(r.upper.kind) }

// Order returns the order r was built with.
func (r Range[C]) Order() Order[C] { return r.order }

func (r Range[C]) String() string {
	if r.order == nil {
		return "<nil>"
	}
	var sb strings.Builder
	switch r.lower.kind {
	case belowAll:
		sb.WriteString("(-∞")
	case belowValue:
		fmt.Fprintf(&sb, "[%v", r.lower.value)
	case aboveValue:
		fmt.Fprintf(&sb, "(%v", r.lower.value)
	}
	sb.WriteString("‥")
	switch r.upper.kind {
	case belowValue:
		fmt.Fprintf(&sb, "%v)", r.upper.value)
	case aboveValue:
		fmt.Fprintf(&sb, "%v]", r.upper.value)
	case aboveAll:
		sb.WriteString("+∞)")
	}
	return sb.String()
}

// withOrder rebinds r to o so that every range stored in a set compares with
// the set's own order.
func (r Range[C]) withOrder(o Order[C]) Range[C] {
	r.order = o
	return r
}

// between returns the range spanning the cuts lower and upper.
func between[C any](o Order[C], lower, upper cut[C]) Range[C] {
	return Range[C]{lower: lower, upper: upper, order: o}
}
