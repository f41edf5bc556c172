package rangeset

// complementView is the set of values not covered by s. It holds no ranges of
// its own: every query is answered from s, and its gaps are computed on
// demand, so it never goes stale.
type complementView[C any] struct {
	s *treeRangeSet[C]
}

func (c *complementView[C]) Contains(v C) bool {
	return !c.s.Contains(v)
}

func (c *complementView[C]) RangeContaining(v C) (Range[C], bool) {
	if c.s.Contains(v) {
		return Range[C]{}, false
	}
	return c.gapAt(below(v)), true
}

// gapAt returns the gap that starts after the last member with a lower bound
// at or below k, or the leading gap when there is no such member.
func (c *complementView[C]) gapAt(k cut[C]) Range[C] {
	lower, upper := bottom[C](), top[C]()
	if m, ok := c.s.floor(k); ok {
		lower = m.upper
		if n, ok := c.s.higher(m.lower); ok {
			upper = n.lower
		}
	} else if n, ok := c.s.ranges.Min(); ok {
		upper = n.lower
	}
	return between(c.s.order, lower, upper)
}

func (c *complementView[C]) IsEmpty() bool {
	return c.s.Encloses(c.s.order.All())
}

func (c *complementView[C]) Span() (Range[C], error) {
	if c.IsEmpty() {
		return Range[C]{}, ErrNoSuchElement
	}
	first, ok := c.s.ranges.Min()
	if !ok {
		return c.s.order.All(), nil
	}
	last, _ := c.s.ranges.Max()

	lower, upper := bottom[C](), top[C]()
	if first.lower.kind == belowAll {
		lower = first.upper
	}
	if last.upper.kind == aboveAll {
		upper = last.lower
	}
	return between(c.s.order, lower, upper), nil
}

func (c *complementView[C]) Add(r Range[C]) error    { return c.s.Remove(r) }
func (c *complementView[C]) Remove(r Range[C]) error { return c.s.Add(r) }

func (c *complementView[C]) AddAll(other RangeSet[C]) error    { return c.s.RemoveAll(other) }
func (c *complementView[C]) RemoveAll(other RangeSet[C]) error { return c.s.AddAll(other) }

func (c *complementView[C]) Clear() error {
	return c.s.Add(c.s.order.All())
}

func (c *complementView[C]) Encloses(r Range[C]) bool {
	if !r.IsValid() {
		return false
	}
	g := c.gapAt(r.lower)
	return !g.IsEmpty() && g.Encloses(r.withOrder(c.s.order))
}

func (c *complementView[C]) EnclosesAll(other RangeSet[C]) bool {
	return enclosesAll[C](c, other)
}

func (c *complementView[C]) Intersects(r Range[C]) bool {
	if !r.IsValid() || r.IsEmpty() {
		return false
	}
	return !c.s.Encloses(r)
}

func (c *complementView[C]) AsRanges() View[C] {
	return View[C]{
		len:     c.gapCount,
		iterate: c.iterate,
	}
}

func (c *complementView[C]) gapCount() int {
	n := c.s.ranges.Len()
	if n == 0 {
		return 1
	}
	first, _ := c.s.ranges.Min()
	last, _ := c.s.ranges.Max()
	gaps := n - 1
	if first.lower.kind != belowAll {
		gaps++
	}
	if last.upper.kind != aboveAll {
		gaps++
	}
	return gaps
}

// iterate walks the members of s and yields the non-empty gaps around them.
func (c *complementView[C]) iterate() *Iterator[C] {
	members := c.s.iterate()
	lower := bottom[C]()
	finished := false
	return newIterator(func() (Range[C], bool, error) {
		for !finished {
			if members.Next() {
				m := members.Value()
				gap := between(c.s.order, lower, m.lower)
				lower = m.upper
				if !gap.IsEmpty() {
					return gap, true, nil
				}
				continue
			}
			if err := members.Err(); err != nil {
				return Range[C]{}, false, err
			}
			finished = true
			if gap := between(c.s.order, lower, top[C]()); !gap.IsEmpty() {
				return gap, true, nil
			}
		}
		return Range[C]{}, false, nil
	})
}

// Complement returns the set this view was taken from.
func (c *complementView[C]) Complement() RangeSet[C] {
	return c.s
}

func (c *complementView[C]) Clone() RangeSet[C] {
	t := newTreeRangeSet(c.s.order)
	for _, r := range c.AsRanges().Slice() {
		t.ranges.ReplaceOrInsert(r)
	}
	return t
}

func (c *complementView[C]) Order() Order[C] { return c.s.order }

func (c *complementView[C]) ReadOnly() bool { return c.s.readOnly }

func (c *complementView[C]) Equal(other RangeSet[C]) bool {
	return equalSets[C](c, other)
}

func (c *complementView[C]) String() string {
	return formatSet[C](c)
}
