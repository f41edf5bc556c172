package rangetable

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/google/btree"
	"github.com/henderiw/rangeset/pkg/rangeset"
	"k8s.io/apimachinery/pkg/labels"
)

// Table keeps labelled claims over a bounded pool of a discrete value
// domain. Claims never overlap; every claim is held in the closed-open form
// of the domain.
type Table[C any] interface {
	Get(id C) (Entry[C], error)
	Claim(id C, l labels.Set) error
	ClaimRange(r rangeset.Range[C], l labels.Set) error
	ClaimDynamic(l labels.Set) (C, error)
	Release(id C) error
	ReleaseRange(r rangeset.Range[C]) error
	Update(id C, l labels.Set) error
	UpdateRange(r rangeset.Range[C], l labels.Set) error

	Count() int
	Has(id C) bool

	IsFree(id C) bool
	FindFree() (C, error)

	Pool() rangeset.Range[C]
	// Claimed returns a read-only snapshot of the claimed values.
	Claimed() rangeset.RangeSet[C]
	// Free returns a read-only snapshot of the unclaimed values of the pool.
	Free() rangeset.RangeSet[C]

	GetAll() Entries[C]
	GetByLabel(selector labels.Selector) Entries[C]
}

// ValidationFn rejects claims a table must never hand out. Initial entries
// bypass it.
type ValidationFn[C any] func(r rangeset.Range[C]) error

type Config[C any] struct {
	Name        string
	Pool        rangeset.Range[C]
	Domain      rangeset.Discrete[C]
	InitEntries Entries[C]
	Validate    ValidationFn[C]
	Logger      logr.Logger
}

func New[C any](cfg Config[C]) (Table[C], error) {
	if cfg.Domain == nil {
		return nil, fmt.Errorf("table %q: %w: nil domain", cfg.Name, rangeset.ErrInvalidArgument)
	}
	if !cfg.Pool.IsValid() || !cfg.Pool.HasLowerBound() {
		return nil, fmt.Errorf("table %q: pool %s must be a valid range with a lower bound", cfg.Name, cfg.Pool)
	}
	pool := rangeset.Canonical(cfg.Pool, cfg.Domain)
	if pool.IsEmpty() {
		return nil, fmt.Errorf("table %q: pool %s is empty", cfg.Name, cfg.Pool)
	}
	claimed, err := rangeset.NewWithOrder(pool.Order())
	if err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	r := &table[C]{
		m:       new(sync.RWMutex),
		pool:    pool,
		domain:  cfg.Domain,
		claimed: claimed,
		entries: btree.NewG(btreeDegree, func(a, b Entry[C]) bool {
			return a.Range.CompareLower(b.Range) < 0
		}),
		validateFn: cfg.Validate,
		log:        log.WithName("rangetable").WithValues("table", cfg.Name),
	}

	var errm error
	for _, e := range cfg.InitEntries {
		if err := r.add(e.Range, e.Labels, true); err != nil {
			errm = errors.Join(errm, err)
		}
	}
	return r, errm
}

const btreeDegree = 16

type table[C any] struct {
	m          *sync.RWMutex
	pool       rangeset.Range[C]
	domain     rangeset.Discrete[C]
	claimed    rangeset.RangeSet[C]
	entries    *btree.BTreeG[Entry[C]]
	validateFn ValidationFn[C]
	log        logr.Logger
}

// validate returns r in canonical form once it is known to fit the pool.
func (r *table[C]) validate(rng rangeset.Range[C], init bool) (rangeset.Range[C], error) {
	if !rng.IsValid() {
		return rng, fmt.Errorf("%w: %s", rangeset.ErrInvalidRange, rng)
	}
	c := rangeset.Canonical(rng, r.domain)
	if c.IsEmpty() {
		return c, fmt.Errorf("%w: %s is empty", rangeset.ErrInvalidRange, rng)
	}
	if !r.pool.Encloses(c) {
		return c, fmt.Errorf("range %s %w %s", rng, ErrOutOfPool, r.pool)
	}
	if r.validateFn != nil && !init {
		if err := r.validateFn(c); err != nil {
			return c, err
		}
	}
	return c, nil
}

func (r *table[C]) singleton(id C) rangeset.Range[C] {
	return r.pool.Order().Singleton(id)
}

func (r *table[C]) Get(id C) (Entry[C], error) {
	r.m.RLock()
	defer r.m.RUnlock()

	if _, err := r.validate(r.singleton(id), true); err != nil {
		return Entry[C]{}, err
	}
	e, ok := r.entryContaining(id)
	if !ok {
		return Entry[C]{}, fmt.Errorf("%w for: %v", ErrNotFound, id)
	}
	return e, nil
}

func (r *table[C]) entryContaining(id C) (found Entry[C], ok bool) {
	r.entries.DescendLessOrEqual(Entry[C]{Range: r.singleton(id)}, func(e Entry[C]) bool {
		found, ok = e, e.Range.Contains(id)
		return false
	})
	return found, ok
}

func (r *table[C]) Claim(id C, l labels.Set) error {
	return r.ClaimRange(r.singleton(id), l)
}

func (r *table[C]) ClaimRange(rng rangeset.Range[C], l labels.Set) error {
	r.m.Lock()
	defer r.m.Unlock()

	return r.add(rng, l, false)
}

func (r *table[C]) ClaimDynamic(l labels.Set) (C, error) {
	r.m.Lock()
	defer r.m.Unlock()

	var zero C
	free, err := r.free()
	if err != nil {
		return zero, err
	}
	// the validation function may reject some free values
	for rng := range free.AsRanges().All() {
		for id, ok := rng.LowerEndpoint(); ok && rng.Contains(id); id, ok = r.domain.Next(id) {
			if err := r.add(r.singleton(id), l, false); err == nil {
				return id, nil
			}
		}
	}
	return zero, ErrNoFree
}

func (r *table[C]) add(rng rangeset.Range[C], l labels.Set, init bool) error {
	c, err := r.validate(rng, init)
	if err != nil {
		return err
	}
	if r.claimed.Intersects(c) {
		return fmt.Errorf("range %s %w", rng, ErrAlreadyClaimed)
	}
	if err := r.claimed.Add(c); err != nil {
		return err
	}
	r.entries.ReplaceOrInsert(Entry[C]{Range: c, Labels: l})
	r.log.V(1).Info("claimed", "range", c.String(), "labels", l.String())
	return nil
}

func (r *table[C]) Release(id C) error {
	return r.ReleaseRange(r.singleton(id))
}

// ReleaseRange releases every claimed value of rng. Claims that only partly
// overlap rng keep their remaining values and labels.
func (r *table[C]) ReleaseRange(rng rangeset.Range[C]) error {
	r.m.Lock()
	defer r.m.Unlock()

	c, err := r.validate(rng, false)
	if err != nil {
		return err
	}
	if err := r.cut(c); err != nil {
		return err
	}
	if err := r.claimed.Remove(c); err != nil {
		return err
	}
	r.log.V(1).Info("released", "range", c.String())
	return nil
}

func (r *table[C]) Update(id C, l labels.Set) error {
	return r.UpdateRange(r.singleton(id), l)
}

// UpdateRange relabels rng, which must be fully claimed. Claims that only
// partly overlap rng are split.
func (r *table[C]) UpdateRange(rng rangeset.Range[C], l labels.Set) error {
	r.m.Lock()
	defer r.m.Unlock()

	c, err := r.validate(rng, false)
	if err != nil {
		return err
	}
	if !r.claimed.Encloses(c) {
		return fmt.Errorf("range %s %w", rng, ErrNotClaimed)
	}
	if err := r.cut(c); err != nil {
		return err
	}
	r.entries.ReplaceOrInsert(Entry[C]{Range: c, Labels: l})
	r.log.V(1).Info("updated", "range", c.String(), "labels", l.String())
	return nil
}

// cut removes the values of c from every entry overlapping it.
func (r *table[C]) cut(c rangeset.Range[C]) error {
	for _, e := range r.overlapping(c) {
		r.entries.Delete(e)
		rest, err := rangeset.NewWithOrder(c.Order(), e.Range)
		if err != nil {
			return err
		}
		if err := rest.Remove(c); err != nil {
			return err
		}
		for rem := range rest.AsRanges().All() {
			r.entries.ReplaceOrInsert(Entry[C]{Range: rangeset.Canonical(rem, r.domain), Labels: e.Labels})
		}
	}
	return nil
}

func (r *table[C]) overlapping(c rangeset.Range[C]) Entries[C] {
	var out Entries[C]
	pivot := Entry[C]{Range: c}
	r.entries.DescendLessOrEqual(pivot, func(e Entry[C]) bool {
		if overlaps(e.Range, c) {
			out = append(out, e)
		}
		return false
	})
	r.entries.AscendGreaterOrEqual(pivot, func(e Entry[C]) bool {
		if e.Range.CompareLower(c) == 0 {
			return true
		}
		if !overlaps(e.Range, c) {
			return false
		}
		out = append(out, e)
		return true
	})
	return out
}

func overlaps[C any](a, b rangeset.Range[C]) bool {
	i, ok := a.Intersection(b)
	return ok && !i.IsEmpty()
}

func (r *table[C]) Count() int {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.entries.Len()
}

func (r *table[C]) Has(id C) bool {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.claimed.Contains(id)
}

func (r *table[C]) IsFree(id C) bool {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.pool.Contains(id) && !r.claimed.Contains(id)
}

func (r *table[C]) FindFree() (C, error) {
	r.m.RLock()
	defer r.m.RUnlock()

	var zero C
	free, err := r.free()
	if err != nil {
		return zero, err
	}
	it := free.AsRanges().Iterate()
	if !it.Next() {
		return zero, ErrNoFree
	}
	id, _ := it.Value().LowerEndpoint()
	return id, nil
}

func (r *table[C]) Pool() rangeset.Range[C] { return r.pool }

func (r *table[C]) Claimed() rangeset.RangeSet[C] {
	r.m.RLock()
	defer r.m.RUnlock()

	return rangeset.ImmutableCopy(r.claimed)
}

func (r *table[C]) Free() rangeset.RangeSet[C] {
	r.m.RLock()
	defer r.m.RUnlock()

	free, err := r.free()
	if err != nil {
		r.log.Error(err, "cannot compute free values")
		empty, _ := rangeset.NewWithOrder(r.pool.Order())
		return rangeset.ImmutableCopy(empty)
	}
	return rangeset.ImmutableCopy(free)
}

// free is the pool minus the claimed values.
func (r *table[C]) free() (rangeset.RangeSet[C], error) {
	pool, err := rangeset.NewWithOrder(r.pool.Order(), r.pool)
	if err != nil {
		return nil, err
	}
	return rangeset.Intersection(pool, r.claimed.Complement())
}

func (r *table[C]) GetAll() Entries[C] {
	r.m.RLock()
	defer r.m.RUnlock()

	entries := make(Entries[C], 0, r.entries.Len())
	r.entries.Ascend(func(e Entry[C]) bool {
		entries = append(entries, e)
		return true
	})
	return entries
}

func (r *table[C]) GetByLabel(selector labels.Selector) Entries[C] {
	r.m.RLock()
	defer r.m.RUnlock()

	var entries Entries[C]
	r.entries.Ascend(func(e Entry[C]) bool {
		if selector.Matches(e.Labels) {
			entries = append(entries, e)
		}
		return true
	})
	return entries
}
