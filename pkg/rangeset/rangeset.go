package rangeset

import (
	"cmp"
	"errors"
	"fmt"

	"github.com/google/btree"
)

// RangeSet is a set of values made up of zero or more disjoint ranges.
//
// Connected ranges are always coalesced together and empty ranges are never
// held, so the member ranges returned by AsRanges are the unique minimal
// representation of the covered values.
//
// A RangeSet is not safe for concurrent use; it is meant to be mutated by a
// single owner.
type RangeSet[C any] interface {
	// Contains reports whether any member range contains v.
	Contains(v C) bool
	// RangeContaining returns the member range that contains v.
	RangeContaining(v C) (Range[C], bool)
	IsEmpty() bool
	// Span returns the minimal range enclosing every member range, or
	// ErrNoSuchElement when the set is empty.
	Span() (Range[C], error)

	// Add coalesces r with every member range connected to it. Adding an
	// empty range is a no-op.
	Add(r Range[C]) error
	// Remove removes every value of r from the set, splitting member ranges
	// where needed. Removing an empty range is a no-op.
	Remove(r Range[C]) error
	AddAll(other RangeSet[C]) error
	RemoveAll(other RangeSet[C]) error
	Clear() error

	// Encloses reports whether a single member range encloses r.
	Encloses(r Range[C]) bool
	// EnclosesAll reports whether every member range of other is enclosed.
	// It is true when other is empty.
	EnclosesAll(other RangeSet[C]) bool
	// Intersects reports whether some value of r is in the set.
	Intersects(r Range[C]) bool

	// AsRanges returns a live view of the member ranges in increasing order.
	AsRanges() View[C]
	// Complement returns a live view of every value not in the set.
	// Mutating the view mutates the set.
	Complement() RangeSet[C]
	// Clone returns a mutable copy that shares nothing with the set. The
	// copy is copy-on-write, so Clone marks the receiver's storage shared and
	// must not run concurrently with any other use of the set, reads
	// included. ImmutableCopy only reads the set.
	Clone() RangeSet[C]

	Order() Order[C]
	ReadOnly() bool
	Equal(other RangeSet[C]) bool
	String() string
}

const btreeDegree = 32

// New returns a RangeSet over a cmp.Ordered type, initialised with the
// union of the given ranges. Invalid initial ranges are skipped and reported
// in the returned error.
func New[C cmp.Ordered](init ...Range[C]) (RangeSet[C], error) {
	return NewWithOrder(Ordered[C](), init...)
}

// NewWithOrder returns a RangeSet ordered by o, initialised with the union of
// the given ranges.
func NewWithOrder[C any](o Order[C], init ...Range[C]) (RangeSet[C], error) {
	if o == nil {
		return nil, fmt.Errorf("%w: nil order", ErrInvalidArgument)
	}
	r := newTreeRangeSet(o)

	var errm error
	for _, rng := range init {
		if err := r.add(rng); err != nil {
			errm = errors.Join(errm, err)
		}
	}
	return r, errm
}

// ImmutableCopy returns a read-only copy of rs. Its mutators, and those of
// its complement, fail with ErrReadOnly. rs is only read, so concurrent
// ImmutableCopy calls on the same set are safe.
func ImmutableCopy[C any](rs RangeSet[C]) RangeSet[C] {
	t := newTreeRangeSet(rs.Order())
	// member ranges are already disjoint and coalesced
	for _, r := range rs.AsRanges().Slice() {
		t.ranges.ReplaceOrInsert(r)
	}
	t.readOnly = true
	return t
}

// treeRangeSet keeps its member ranges in a btree ordered by lower bound.
type treeRangeSet[C any] struct {
	order    Order[C]
	ranges   *btree.BTreeG[Range[C]]
	readOnly bool
	// version is bumped on every mutation so iterators can detect changes.
	version uint64
}

func newTreeRangeSet[C any](o Order[C]) *treeRangeSet[C] {
	return &treeRangeSet[C]{
		order: o,
		ranges: btree.NewG[Range[C]](btreeDegree, func(a, b Range[C]) bool {
			return compareCuts(o, a.lower, b.lower) < 0
		}),
	}
}

// pivot returns a key that sorts at cut c.
func (s *treeRangeSet[C]) pivot(c cut[C]) Range[C] {
	return Range[C]{lower: c, order: s.order}
}

// floor returns the member with the greatest lower bound <= c.
func (s *treeRangeSet[C]) floor(c cut[C]) (found Range[C], ok bool) {
	s.ranges.DescendLessOrEqual(s.pivot(c), func(r Range[C]) bool {
		found, ok = r, true
		return false
	})
	return found, ok
}

// lowerEntry returns the member with the greatest lower bound < c.
func (s *treeRangeSet[C]) lowerEntry(c cut[C]) (found Range[C], ok bool) {
	s.ranges.DescendLessOrEqual(s.pivot(c), func(r Range[C]) bool {
		if compareCuts(s.order, r.lower, c) == 0 {
			return true
		}
		found, ok = r, true
		return false
	})
	return found, ok
}

// ceiling returns the member with the smallest lower bound >= c.
func (s *treeRangeSet[C]) ceiling(c cut[C]) (found Range[C], ok bool) {
	s.ranges.AscendGreaterOrEqual(s.pivot(c), func(r Range[C]) bool {
		found, ok = r, true
		return false
	})
	return found, ok
}

// higher returns the member with the smallest lower bound > c.
func (s *treeRangeSet[C]) higher(c cut[C]) (found Range[C], ok bool) {
	s.ranges.AscendGreaterOrEqual(s.pivot(c), func(r Range[C]) bool {
		if compareCuts(s.order, r.lower, c) == 0 {
			return true
		}
		found, ok = r, true
		return false
	})
	return found, ok
}

// replace stores r under its lower bound, or drops the member with that
// lower bound when r is empty.
func (s *treeRangeSet[C]) replace(r Range[C]) {
	if r.IsEmpty() {
		s.ranges.Delete(s.pivot(r.lower))
		return
	}
	s.ranges.ReplaceOrInsert(r)
}

// clearBetween drops every member whose lower bound is in [lower, upper).
func (s *treeRangeSet[C]) clearBetween(lower, upper cut[C]) {
	var drop []Range[C]
	s.ranges.AscendRange(s.pivot(lower), s.pivot(upper), func(r Range[C]) bool {
		drop = append(drop, r)
		return true
	})
	for _, r := range drop {
		s.ranges.Delete(r)
	}
}

func (s *treeRangeSet[C]) validate(r Range[C]) error {
	if s.readOnly {
		return ErrReadOnly
	}
	if !r.IsValid() {
		return fmt.Errorf("%w: %v", ErrInvalidRange, r)
	}
	return nil
}

func (s *treeRangeSet[C]) Contains(v C) bool {
	_, ok := s.RangeContaining(v)
	return ok
}

func (s *treeRangeSet[C]) RangeContaining(v C) (Range[C], bool) {
	m, ok := s.floor(below(v))
	if ok && m.Contains(v) {
		return m, true
	}
	return Range[C]{}, false
}

func (s *treeRangeSet[C]) IsEmpty() bool {
	return s.ranges.Len() == 0
}

func (s *treeRangeSet[C]) Span() (Range[C], error) {
	first, ok := s.ranges.Min()
	if !ok {
		return Range[C]{}, ErrNoSuchElement
	}
	last, _ := s.ranges.Max()
	return first.Span(last), nil
}

func (s *treeRangeSet[C]) Add(r Range[C]) error {
	return s.add(r)
}

func (s *treeRangeSet[C]) add(r Range[C]) error {
	if err := s.validate(r); err != nil {
		return err
	}
	if r.IsEmpty() {
		return nil
	}
	s.version++

	lower, upper := r.lower, r.upper

	// A member starting before r that reaches r extends the merged range
	// to the left, and possibly to the right when it encloses r's end.
	if m, ok := s.lowerEntry(lower); ok && compareCuts(s.order, m.upper, lower) >= 0 {
		if compareCuts(s.order, m.upper, upper) >= 0 {
			upper = m.upper
		}
		lower = m.lower
	}
	// The last member starting at or before r's end may extend it further.
	if m, ok := s.floor(upper); ok && compareCuts(s.order, m.upper, upper) >= 0 {
		upper = m.upper
	}

	// Everything starting inside the merged range is absorbed.
	s.clearBetween(lower, upper)
	s.replace(between(s.order, lower, upper))
	return nil
}

func (s *treeRangeSet[C]) Remove(r Range[C]) error {
	if err := s.validate(r); err != nil {
		return err
	}
	if r.IsEmpty() {
		return nil
	}
	s.version++

	if m, ok := s.lowerEntry(r.lower); ok && compareCuts(s.order, m.upper, r.lower) >= 0 {
		// m overlaps the start of r; keep what lies on either side.
		if r.HasUpperBound() && compareCuts(s.order, m.upper, r.upper) >= 0 {
			s.replace(between(s.order, r.upper, m.upper))
		}
		s.replace(between(s.order, m.lower, r.lower))
	}
	if m, ok := s.floor(r.upper); ok && r.HasUpperBound() && compareCuts(s.order, m.upper, r.upper) >= 0 {
		s.replace(between(s.order, r.upper, m.upper))
	}

	s.clearBetween(r.lower, r.upper)
	return nil
}

func (s *treeRangeSet[C]) AddAll(other RangeSet[C]) error {
	if other == nil {
		return fmt.Errorf("%w: nil range set", ErrInvalidArgument)
	}
	if s.readOnly {
		return ErrReadOnly
	}
	// Snapshot first: other may be a view of s.
	var errm error
	for _, r := range other.AsRanges().Slice() {
		if err := s.add(r.withOrder(s.order)); err != nil {
			errm = errors.Join(errm, err)
		}
	}
	return errm
}

func (s *treeRangeSet[C]) RemoveAll(other RangeSet[C]) error {
	if other == nil {
		return fmt.Errorf("%w: nil range set", ErrInvalidArgument)
	}
	if s.readOnly {
		return ErrReadOnly
	}
	var errm error
	for _, r := range other.AsRanges().Slice() {
		if err := s.Remove(r.withOrder(s.order)); err != nil {
			errm = errors.Join(errm, err)
		}
	}
	return errm
}

func (s *treeRangeSet[C]) Clear() error {
	if s.readOnly {
		return ErrReadOnly
	}
	s.version++
	s.ranges.Clear(false)
	return nil
}

func (s *treeRangeSet[C]) Encloses(r Range[C]) bool {
	if !r.IsValid() {
		return false
	}
	m, ok := s.floor(r.lower)
	return ok && m.Encloses(r.withOrder(s.order))
}

func (s *treeRangeSet[C]) EnclosesAll(other RangeSet[C]) bool {
	return enclosesAll[C](s, other)
}

func (s *treeRangeSet[C]) Intersects(r Range[C]) bool {
	if !r.IsValid() || r.IsEmpty() {
		return false
	}
	r = r.withOrder(s.order)
	if m, ok := s.ceiling(r.lower); ok && overlaps(m, r) {
		return true
	}
	m, ok := s.lowerEntry(r.lower)
	return ok && overlaps(m, r)
}

// overlaps reports whether a and b share at least one value.
func overlaps[C any](a, b Range[C]) bool {
	i, ok := a.Intersection(b)
	return ok && !i.IsEmpty()
}

func (s *treeRangeSet[C]) AsRanges() View[C] {
	return View[C]{
		len:     s.ranges.Len,
		iterate: s.iterate,
	}
}

func (s *treeRangeSet[C]) iterate() *Iterator[C] {
	version := s.version
	var last Range[C]
	started := false
	return newIterator(func() (Range[C], bool, error) {
		if s.version != version {
			return Range[C]{}, false, ErrConcurrentModification
		}
		var next Range[C]
		var ok bool
		if !started {
			started = true
			next, ok = s.ranges.Min()
		} else {
			next, ok = s.higher(last.lower)
		}
		if ok {
			last = next
		}
		return next, ok, nil
	})
}

func (s *treeRangeSet[C]) Complement() RangeSet[C] {
	return &complementView[C]{s: s}
}

func (s *treeRangeSet[C]) Clone() RangeSet[C] {
	return &treeRangeSet[C]{
		order:  s.order,
		ranges: s.ranges.Clone(),
	}
}

func (s *treeRangeSet[C]) Order() Order[C] { return s.order }

func (s *treeRangeSet[C]) ReadOnly() bool { return s.readOnly }

func (s *treeRangeSet[C]) Equal(other RangeSet[C]) bool {
	return equalSets[C](s, other)
}

func (s *treeRangeSet[C]) String() string {
	return formatSet[C](s)
}
