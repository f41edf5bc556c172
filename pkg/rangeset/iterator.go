package rangeset

import "iter"

// View is a read-through view of the member ranges of a RangeSet, in
// increasing order of lower bound (equivalently, of upper bound). Every call
// observes the current state of the set; the ranges themselves are
// immutable and safe to retain.
type View[C any] struct {
	len     func() int
	iterate func() *Iterator[C]
}

// Len returns the current number of ranges in the view.
func (v View[C]) Len() int {
	if v.len == nil {
		return 0
	}
	return v.len()
}

// Iterate starts a new traversal of the view.
func (v View[C]) Iterate() *Iterator[C] {
	if v.iterate == nil {
		return newIterator(func() (Range[C], bool, error) { return Range[C]{}, false, nil })
	}
	return v.iterate()
}

// All returns the ranges as an iter.Seq.
//
// All panics with ErrConcurrentModification if the set is mutated while the
// sequence is being ranged over. Use Iterate to handle the error instead.
func (v View[C]) All() iter.Seq[Range[C]] {
	return func(yield func(Range[C]) bool) {
		it := v.Iterate()
		for it.Next() {
			if !yield(it.Value()) {
				return
			}
		}
		if err := it.Err(); err != nil {
			panic(err)
		}
	}
}

// Slice returns a snapshot of the ranges.
func (v View[C]) Slice() []Range[C] {
	out := make([]Range[C], 0, v.Len())
	it := v.Iterate()
	for it.Next() {
		out = append(out, it.Value())
	}
	return out
}

// Iterator walks the ranges of a View.
//
//	it := rs.AsRanges().Iterate()
//	for it.Next() {
//		r := it.Value()
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
type Iterator[C any] struct {
	next    func() (Range[C], bool, error)
	current Range[C]
	err     error
	done    bool
}

func newIterator[C any](next func() (Range[C], bool, error)) *Iterator[C] {
	return &Iterator[C]{next: next}
}

// Next advances to the following range. It returns false at the end of the
// view or when the set changed since the iterator was created.
func (r *Iterator[C]) Next() bool {
	if r.done {
		return false
	}
	rng, ok, err := r.next()
	if err != nil {
		r.err = err
	}
	if err != nil || !ok {
		r.done = true
		r.current = Range[C]{}
		return false
	}
	r.current = rng
	return true
}

// Value returns the range at the current position.
func (r *Iterator[C]) Value() Range[C] {
	return r.current
}

// Err returns ErrConcurrentModification when the traversal was cut short by a
// mutation of the set.
func (r *Iterator[C]) Err() error {
	return r.err
}
