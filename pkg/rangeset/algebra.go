package rangeset

import (
	"fmt"
	"strings"
)

// Union returns a new set holding every value of a or b. Like the other set
// operations it clones a, so a must not be in concurrent use.
func Union[C any](a, b RangeSet[C]) (RangeSet[C], error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: nil range set", ErrInvalidArgument)
	}
	u := a.Clone()
	return u, u.AddAll(b)
}

// Difference returns a new set holding the values of a that are not in b.
func Difference[C any](a, b RangeSet[C]) (RangeSet[C], error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: nil range set", ErrInvalidArgument)
	}
	d := a.Clone()
	return d, d.RemoveAll(b)
}

// Intersection returns a new set holding the values in both a and b.
func Intersection[C any](a, b RangeSet[C]) (RangeSet[C], error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: nil range set", ErrInvalidArgument)
	}
	i := a.Clone()
	return i, i.RemoveAll(b.Complement())
}

func enclosesAll[C any](rs, other RangeSet[C]) bool {
	if other == nil {
		return true
	}
	for _, r := range other.AsRanges().Slice() {
		if !rs.Encloses(r) {
			return false
		}
	}
	return true
}

// equalSets compares member ranges pairwise. Both sides are maximally
// coalesced, so equal ranges mean equal values.
func equalSets[C any](a, b RangeSet[C]) bool {
	if b == nil {
		return false
	}
	ita, itb := a.AsRanges().Iterate(), b.AsRanges().Iterate()
	for {
		na, nb := ita.Next(), itb.Next()
		if na != nb {
			return false
		}
		if !na {
			return ita.Err() == nil && itb.Err() == nil
		}
		if !ita.Value().Equal(itb.Value()) {
			return false
		}
	}
}

func formatSet[C any](rs RangeSet[C]) string {
	var sb strings.Builder
	it := rs.AsRanges().Iterate()
	for it.Next() {
		sb.WriteString(it.Value().String())
	}
	if sb.Len() == 0 {
		return "{}"
	}
	return sb.String()
}
