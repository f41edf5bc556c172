package rangeset

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type op struct {
	remove bool
	r      Range[int]
}

func add(r Range[int]) op    { return op{r: r} }
func remove(r Range[int]) op { return op{remove: true, r: r} }

func build(t *testing.T, ops ...op) RangeSet[int] {
	t.Helper()
	rs, err := New[int]()
	require.NoError(t, err)
	for _, o := range ops {
		if o.remove {
			require.NoError(t, rs.Remove(o.r))
		} else {
			require.NoError(t, rs.Add(o.r))
		}
	}
	return rs
}

// verify checks that the member ranges are non-empty, pairwise disconnected
// and sorted.
func verify[C any](t *testing.T, rs RangeSet[C]) {
	t.Helper()
	ranges := rs.AsRanges().Slice()
	for i, r := range ranges {
		assert.False(t, r.IsEmpty(), "member %s is empty", r)
		if i == 0 {
			continue
		}
		prev := ranges[i-1]
		assert.Negative(t, prev.CompareLower(r), "%s not sorted before %s", prev, r)
		assert.False(t, prev.IsConnected(r), "%s is connected to %s", prev, r)
		assert.Negative(t, compareCuts(rs.Order(), prev.upper, r.upper))
	}
	assert.Equal(t, len(ranges), rs.AsRanges().Len())
}

func TestAddRemove(t *testing.T) {
	cases := map[string]struct {
		ops          []op
		expected     []Range[int]
		contains     []int
		containsNot  []int
		expectedText string
	}{
		"Coalesce": {
			ops:          []op{add(Closed(1, 3)), add(Closed(3, 5))},
			expected:     []Range[int]{Closed(1, 5)},
			expectedText: "[1‥5]",
		},
		"CoalesceOpenClosed": {
			ops:      []op{add(ClosedOpen(1, 3)), add(Closed(3, 5))},
			expected: []Range[int]{Closed(1, 5)},
		},
		"NoCoalesceBothOpen": {
			ops:         []op{add(ClosedOpen(1, 3)), add(OpenClosed(3, 5))},
			expected:    []Range[int]{ClosedOpen(1, 3), OpenClosed(3, 5)},
			containsNot: []int{3},
		},
		"GapPreserved": {
			ops:          []op{add(Closed(1, 2)), add(Closed(4, 5))},
			expected:     []Range[int]{Closed(1, 2), Closed(4, 5)},
			contains:     []int{1, 2, 4, 5},
			containsNot:  []int{0, 3, 6},
			expectedText: "[1‥2][4‥5]",
		},
		"BridgeMany": {
			ops: []op{
				add(Closed(1, 2)), add(Closed(4, 5)), add(Closed(7, 8)), add(Closed(10, 11)),
				add(Open(2, 10)),
			},
			expected: []Range[int]{Closed(1, 11)},
		},
		"EnclosedAddIsNoop": {
			ops:      []op{add(Closed(1, 10)), add(Open(3, 4))},
			expected: []Range[int]{Closed(1, 10)},
		},
		"ExtendLeftOnly": {
			ops:      []op{add(Closed(5, 10)), add(Closed(1, 6))},
			expected: []Range[int]{Closed(1, 10)},
		},
		"Unbounded": {
			ops:          []op{add(Closed(1, 3)), add(GreaterThan(4))},
			expected:     []Range[int]{Closed(1, 3), GreaterThan(4)},
			expectedText: "[1‥3](4‥+∞)",
		},
		"AddEmptyIsNoop": {
			ops:      []op{add(Closed(1, 3)), add(Open(7, 7)), add(ClosedOpen(3, 3))},
			expected: []Range[int]{Closed(1, 3)},
		},
		"RemoveSplits": {
			ops:         []op{add(Closed(1, 10)), remove(Open(4, 6))},
			expected:    []Range[int]{Closed(1, 4), Closed(6, 10)},
			contains:    []int{1, 4, 6, 10},
			containsNot: []int{5},
		},
		"RemoveClosedSplits": {
			ops:         []op{add(Closed(1, 10)), remove(Closed(4, 6))},
			expected:    []Range[int]{ClosedOpen(1, 4), OpenClosed(6, 10)},
			containsNot: []int{4, 5, 6},
		},
		"RemoveAcrossMembers": {
			ops: []op{
				add(Closed(1, 3)), add(Closed(5, 7)), add(Closed(9, 11)),
				remove(Closed(2, 10)),
			},
			expected: []Range[int]{ClosedOpen(1, 2), OpenClosed(10, 11)},
		},
		"RemoveExactMember": {
			ops:      []op{add(Closed(1, 3)), add(Closed(5, 7)), remove(Closed(5, 7))},
			expected: []Range[int]{Closed(1, 3)},
		},
		"RemoveUnboundedUpper": {
			ops:      []op{add(Closed(1, 10)), remove(AtLeast(5))},
			expected: []Range[int]{ClosedOpen(1, 5)},
		},
		"RemoveUnboundedLower": {
			ops:      []op{add(All[int]()), remove(AtMost(5))},
			expected: []Range[int]{GreaterThan(5)},
		},
		"RemoveTouchingKeepsMember": {
			ops:      []op{add(Closed(1, 3)), remove(Open(3, 5))},
			expected: []Range[int]{Closed(1, 3)},
		},
		"RemoveEmptyIsNoop": {
			ops:      []op{add(Closed(1, 3)), remove(Open(2, 2))},
			expected: []Range[int]{Closed(1, 3)},
		},
		"Empty": {
			expected:     []Range[int]{},
			expectedText: "{}",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rs := build(t, tc.ops...)
			verify(t, rs)

			if diff := cmp.Diff(tc.expected, rs.AsRanges().Slice()); diff != "" {
				t.Errorf("%s: -want, +got:\n%s", name, diff)
			}
			for _, v := range tc.contains {
				assert.True(t, rs.Contains(v), "expected %d in %s", v, rs)
			}
			for _, v := range tc.containsNot {
				assert.False(t, rs.Contains(v), "expected %d not in %s", v, rs)
			}
			if tc.expectedText != "" {
				assert.Equal(t, tc.expectedText, rs.String())
			}
		})
	}
}

func TestIdempotentAdd(t *testing.T) {
	once := build(t, add(Closed(1, 3)), add(Open(5, 9)))
	twice := build(t, add(Closed(1, 3)), add(Open(5, 9)), add(Open(5, 9)), add(Closed(1, 3)))
	assert.True(t, once.Equal(twice), "%s != %s", once, twice)
}

func TestOrderIndependence(t *testing.T) {
	ranges := []Range[int]{
		Closed(1, 3), Closed(3, 5), ClosedOpen(0, 1), OpenClosed(5, 6),
		Open(7, 9), Closed(9, 9), LessThan(-2), GreaterThan(20), Open(4, 4),
	}
	for _, r1 := range ranges {
		for _, r2 := range ranges {
			a := build(t, add(r1), add(r2))
			b := build(t, add(r2), add(r1))
			assert.True(t, a.Equal(b), "add(%s).add(%s) = %s, reversed = %s", r1, r2, a, b)
		}
	}
}

// TestRandomOperations compares the set against a brute force model sampled
// at every half step, so open and closed endpoints are both exercised.
func TestRandomOperations(t *testing.T) {
	const limit = 20
	rnd := rand.New(rand.NewSource(1))
	randomRange := func() Range[float64] {
		a, b := float64(rnd.Intn(limit)), float64(rnd.Intn(limit))
		if a > b {
			a, b = b, a
		}
		bt := func() BoundType { return BoundType(rnd.Intn(2)) }
		switch rnd.Intn(10) {
		case 0:
			return Ordered[float64]().DownTo(a, bt())
		case 1:
			return Ordered[float64]().UpTo(b, bt())
		}
		return NewRange(a, bt(), b, bt())
	}

	rs, err := New[float64]()
	require.NoError(t, err)
	model := map[float64]bool{}
	points := []float64{}
	for v := -1.0; v <= limit+1; v += 0.5 {
		points = append(points, v)
	}

	for i := 0; i < 2000; i++ {
		r := randomRange()
		removing := rnd.Intn(3) == 0
		if removing {
			require.NoError(t, rs.Remove(r))
		} else {
			require.NoError(t, rs.Add(r))
		}
		for _, v := range points {
			if r.Contains(v) {
				model[v] = !removing
			}
		}
		verify(t, rs)
		for _, v := range points {
			if rs.Contains(v) != model[v] {
				t.Fatalf("step %d (%v %s): contains(%v) = %v, want %v; set %s", i, removing, r, v, rs.Contains(v), model[v], rs)
			}
			if rs.Complement().Contains(v) == model[v] {
				t.Fatalf("step %d: complement contains(%v) disagrees; set %s", i, v, rs)
			}
			if m, ok := rs.RangeContaining(v); ok {
				assert.True(t, m.Contains(v))
			}
		}
	}
}

func TestSpan(t *testing.T) {
	rs := build(t)
	_, err := rs.Span()
	assert.ErrorIs(t, err, ErrNoSuchElement)

	rs = build(t, add(Open(5, 9)), add(Closed(1, 3)), add(Closed(12, 14)))
	span, err := rs.Span()
	assert.NoError(t, err)
	assert.True(t, span.Equal(Closed(1, 14)), "got %s", span)
}

func TestRangeContaining(t *testing.T) {
	rs := build(t, add(Closed(1, 3)), add(Open(5, 9)))

	r, ok := rs.RangeContaining(2)
	assert.True(t, ok)
	assert.True(t, r.Equal(Closed(1, 3)))

	_, ok = rs.RangeContaining(5)
	assert.False(t, ok)
	_, ok = rs.RangeContaining(4)
	assert.False(t, ok)
	_, ok = build(t).RangeContaining(4)
	assert.False(t, ok)
}

func TestEncloses(t *testing.T) {
	rs := build(t, add(Closed(1, 3)), add(Closed(5, 9)))

	cases := map[string]struct {
		r    Range[int]
		want bool
	}{
		"Member":       {r: Closed(1, 3), want: true},
		"Inside":       {r: Open(5, 9), want: true},
		"SpansGap":     {r: Closed(2, 6), want: false},
		"OutsideRight": {r: Closed(8, 10), want: false},
		"Unbounded":    {r: AtLeast(5), want: false},
		"Invalid":      {r: Range[int]{}, want: false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, rs.Encloses(tc.r))
		})
	}

	// each half enclosed, the whole is not
	assert.True(t, rs.Encloses(Closed(2, 3)))
	assert.True(t, rs.Encloses(Closed(5, 6)))
	assert.False(t, rs.Encloses(Closed(2, 6)))

	assert.True(t, rs.EnclosesAll(build(t)), "empty set is always enclosed")
	assert.True(t, build(t).EnclosesAll(build(t)))
	assert.True(t, rs.EnclosesAll(build(t, add(Closed(1, 2)), add(Closed(6, 7)))))
	assert.False(t, rs.EnclosesAll(build(t, add(Closed(1, 2)), add(Closed(6, 10)))))
	assert.True(t, rs.EnclosesAll(nil))
}

func TestIntersects(t *testing.T) {
	rs := build(t, add(Closed(1, 3)), add(Closed(5, 9)))

	assert.True(t, rs.Intersects(Closed(3, 4)))
	assert.True(t, rs.Intersects(Open(4, 6)))
	assert.True(t, rs.Intersects(AtLeast(8)))
	assert.True(t, rs.Intersects(All[int]()))
	assert.False(t, rs.Intersects(Open(3, 5)))
	assert.False(t, rs.Intersects(GreaterThan(9)))
	assert.False(t, rs.Intersects(ClosedOpen(2, 2)))

	c := rs.Complement()
	assert.True(t, c.Intersects(Closed(3, 4)))
	assert.False(t, c.Intersects(Closed(5, 9)))
	assert.True(t, c.Intersects(LessThan(2)))
}

func TestAddAllRemoveAll(t *testing.T) {
	rs := build(t, add(Closed(1, 3)))
	other := build(t, add(Closed(3, 6)), add(Closed(10, 12)))

	require.NoError(t, rs.AddAll(other))
	assert.Equal(t, "[1‥6][10‥12]", rs.String())

	require.NoError(t, rs.RemoveAll(build(t, add(Open(2, 11)))))
	assert.Equal(t, "[1‥2][11‥12]", rs.String())

	// self and self-views are snapshotted before mutating
	require.NoError(t, rs.AddAll(rs))
	assert.Equal(t, "[1‥2][11‥12]", rs.String())
	require.NoError(t, rs.AddAll(rs.Complement()))
	assert.Equal(t, "(-∞‥+∞)", rs.String())
	require.NoError(t, rs.RemoveAll(rs))
	assert.True(t, rs.IsEmpty())

	assert.ErrorIs(t, rs.AddAll(nil), ErrInvalidArgument)
	assert.ErrorIs(t, rs.RemoveAll(nil), ErrInvalidArgument)
}

func TestInvalidArguments(t *testing.T) {
	rs := build(t)
	assert.ErrorIs(t, rs.Add(Range[int]{}), ErrInvalidRange)
	assert.ErrorIs(t, rs.Add(Closed(5, 3)), ErrInvalidRange)
	assert.ErrorIs(t, rs.Remove(Range[int]{}), ErrInvalidRange)
	assert.ErrorIs(t, rs.Complement().Add(Range[int]{}), ErrInvalidRange)
	assert.ErrorIs(t, rs.Add(Range[int]{}), ErrInvalidArgument)
	assert.ErrorIs(t, rs.Remove(Closed(5, 3)), ErrInvalidArgument)

	_, err := NewWithOrder[int](nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	rs, err = New(Closed(1, 3), Closed(7, 5), Closed(3, 4))
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Equal(t, "[1‥4]", rs.String())
}

func TestImmutableCopy(t *testing.T) {
	rs := build(t, add(Closed(1, 3)))
	ro := ImmutableCopy(rs)
	assert.True(t, ro.ReadOnly())
	assert.True(t, ro.Equal(rs))

	assert.ErrorIs(t, ro.Add(Closed(5, 6)), ErrReadOnly)
	assert.ErrorIs(t, ro.Remove(Closed(1, 2)), ErrReadOnly)
	assert.ErrorIs(t, ro.AddAll(rs), ErrReadOnly)
	assert.ErrorIs(t, ro.RemoveAll(rs), ErrReadOnly)
	assert.ErrorIs(t, ro.Clear(), ErrReadOnly)
	assert.ErrorIs(t, ro.Add(Closed(5, 6)), errors.ErrUnsupported)

	c := ro.Complement()
	assert.True(t, c.ReadOnly())
	assert.ErrorIs(t, c.Add(Closed(5, 6)), ErrReadOnly)
	assert.ErrorIs(t, c.Remove(Closed(5, 6)), ErrReadOnly)
	assert.ErrorIs(t, c.Clear(), ErrReadOnly)

	// copies are independent of the source
	require.NoError(t, rs.Add(Closed(10, 11)))
	assert.Equal(t, "[1‥3]", ro.String())

	clone := ro.Clone()
	assert.False(t, clone.ReadOnly())
	assert.NoError(t, clone.Add(Closed(5, 6)))
	assert.Equal(t, "[1‥3]", ro.String())
}

func TestImmutableCopyOfComplement(t *testing.T) {
	rs := build(t, add(Closed(1, 3)), add(OpenClosed(7, 9)))
	ro := ImmutableCopy(rs.Complement())
	assert.True(t, ro.ReadOnly())
	assert.True(t, ro.Equal(rs.Complement()))
	assert.Equal(t, 3, ro.AsRanges().Len())
	assert.ErrorIs(t, ro.Add(Closed(1, 2)), ErrReadOnly)

	// the copy does not follow the source
	require.NoError(t, rs.Add(Closed(20, 30)))
	assert.Equal(t, 3, ro.AsRanges().Len())
	assert.False(t, ro.Equal(rs.Complement()))
}

func TestClear(t *testing.T) {
	rs := build(t, add(Closed(1, 3)), add(Closed(5, 6)))
	require.NoError(t, rs.Clear())
	assert.True(t, rs.IsEmpty())

	rs = build(t, add(Closed(1, 3)))
	require.NoError(t, rs.Complement().Clear())
	assert.True(t, rs.Equal(build(t, add(All[int]()))))
}

func TestAlgebra(t *testing.T) {
	a := build(t, add(Closed(1, 5)), add(Closed(10, 15)))
	b := build(t, add(Closed(4, 11)))

	u, err := Union(a, b)
	require.NoError(t, err)
	assert.Equal(t, "[1‥15]", u.String())

	d, err := Difference(a, b)
	require.NoError(t, err)
	assert.Equal(t, "[1‥4)(11‥15]", d.String())

	i, err := Intersection(a, b)
	require.NoError(t, err)
	assert.Equal(t, "[4‥5][10‥11]", i.String())

	// inputs are untouched
	assert.Equal(t, "[1‥5][10‥15]", a.String())
	assert.Equal(t, "[4‥11]", b.String())

	_, err = Union(a, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestViewIsLive(t *testing.T) {
	rs := build(t, add(Closed(1, 3)))
	view := rs.AsRanges()
	assert.Equal(t, 1, view.Len())

	require.NoError(t, rs.Add(Closed(5, 6)))
	assert.Equal(t, 2, view.Len())
	if diff := cmp.Diff([]Range[int]{Closed(1, 3), Closed(5, 6)}, view.Slice()); diff != "" {
		t.Errorf("-want, +got:\n%s", diff)
	}

	var got []Range[int]
	for r := range view.All() {
		got = append(got, r)
	}
	assert.Len(t, got, 2)

	// a view is restartable
	assert.Len(t, view.Slice(), 2)
	assert.Equal(t, 0, View[int]{}.Len())
	assert.Empty(t, View[int]{}.Slice())
}

func TestIteratorFailsFast(t *testing.T) {
	rs := build(t, add(Closed(1, 3)), add(Closed(5, 6)), add(Closed(8, 9)))

	it := rs.AsRanges().Iterate()
	require.True(t, it.Next())
	assert.True(t, it.Value().Equal(Closed(1, 3)))
	require.NoError(t, rs.Add(Closed(20, 21)))
	assert.False(t, it.Next())
	assert.ErrorIs(t, it.Err(), ErrConcurrentModification)
	assert.False(t, it.Next())

	cit := rs.Complement().AsRanges().Iterate()
	require.True(t, cit.Next())
	require.NoError(t, rs.Remove(Closed(1, 1)))
	assert.False(t, cit.Next())
	assert.ErrorIs(t, cit.Err(), ErrConcurrentModification)

	assert.PanicsWithError(t, ErrConcurrentModification.Error(), func() {
		for r := range rs.AsRanges().All() {
			_ = rs.Remove(r)
		}
	})
}
