package vlantable

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/henderiw/rangeset/pkg/rangeset"
	"github.com/henderiw/rangeset/pkg/rangetable"
	"k8s.io/apimachinery/pkg/labels"
)

type VLANTable interface {
	Get(id int64) (labels.Set, error)
	Claim(id int64, d labels.Set) error
	ClaimDynamic(d labels.Set) (int64, error)
	ClaimRange(start, size int64, d labels.Set) error
	ClaimSize(size int64, d labels.Set) (rangeset.Range[int64], error)
	Release(id int64) error
	ReleaseRange(start, size int64) error
	Update(id int64, d labels.Set) error

	Count() int
	Has(id int64) bool

	IsFree(id int64) bool
	FindFree() (int64, error)
	FindFreeSize(size int64) (rangeset.Range[int64], error)
	Free() rangeset.RangeSet[int64]

	GetAll() rangetable.Entries[int64]
	GetByLabel(selector labels.Selector) rangetable.Entries[int64]
}

const (
	untaggedVLAN = 0
	defaultVLAN  = 1
	maxVLAN      = 4095
)

var reservedLabels = labels.Set{"type": "untagged", "status": "reserved"}

var initEntries = rangetable.Entries[int64]{
	rangetable.NewEntry(rangeset.Singleton[int64](untaggedVLAN), reservedLabels),
	rangetable.NewEntry(rangeset.Singleton[int64](defaultVLAN), reservedLabels),
	rangetable.NewEntry(rangeset.Singleton[int64](maxVLAN), reservedLabels),
}

func New(log logr.Logger) (VLANTable, error) {
	t, err := rangetable.New(rangetable.Config[int64]{
		Name:        "vlan",
		Pool:        rangeset.Closed[int64](0, maxVLAN),
		Domain:      rangeset.Int64s{},
		InitEntries: initEntries,
		Validate:    validate,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}
	return &vlanTable{table: t}, nil
}

func validate(r rangeset.Range[int64]) error {
	switch {
	case r.Contains(untaggedVLAN):
		return fmt.Errorf("VLAN %d is the untagged VLAN, cannot be added to the database", untaggedVLAN)
	case r.Contains(defaultVLAN):
		return fmt.Errorf("VLAN %d is the default VLAN, cannot be added to the database", defaultVLAN)
	case r.Contains(maxVLAN):
		return fmt.Errorf("VLAN %d is reserved, cannot be added to the database", maxVLAN)
	}
	return nil
}

type vlanTable struct {
	table rangetable.Table[int64]
}

func (r *vlanTable) Get(id int64) (labels.Set, error) {
	e, err := r.table.Get(id)
	if err != nil {
		return nil, err
	}
	return e.Labels, nil
}

func (r *vlanTable) Claim(id int64, d labels.Set) error {
	return r.table.Claim(id, d)
}

func (r *vlanTable) ClaimDynamic(d labels.Set) (int64, error) {
	return r.table.ClaimDynamic(d)
}

func (r *vlanTable) ClaimRange(start, size int64, d labels.Set) error {
	rng, err := sizedRange(start, size)
	if err != nil {
		return err
	}
	return r.table.ClaimRange(rng, d)
}

// ClaimSize claims the first free block of size consecutive VLANs.
func (r *vlanTable) ClaimSize(size int64, d labels.Set) (rangeset.Range[int64], error) {
	rng, err := r.FindFreeSize(size)
	if err != nil {
		return rng, err
	}
	return rng, r.table.ClaimRange(rng, d)
}

func (r *vlanTable) Release(id int64) error {
	return r.table.Release(id)
}

func (r *vlanTable) ReleaseRange(start, size int64) error {
	rng, err := sizedRange(start, size)
	if err != nil {
		return err
	}
	return r.table.ReleaseRange(rng)
}

func (r *vlanTable) Update(id int64, d labels.Set) error {
	return r.table.Update(id, d)
}

func (r *vlanTable) Count() int {
	return r.table.Count()
}

func (r *vlanTable) Has(id int64) bool {
	return r.table.Has(id)
}

func (r *vlanTable) IsFree(id int64) bool {
	return r.table.IsFree(id)
}

func (r *vlanTable) FindFree() (int64, error) {
	id, err := r.table.FindFree()
	if err != nil {
		return -1, err
	}
	return id, nil
}

func (r *vlanTable) FindFreeSize(size int64) (rangeset.Range[int64], error) {
	if size < 1 {
		return rangeset.Range[int64]{}, fmt.Errorf("%w: size %d", rangeset.ErrInvalidArgument, size)
	}
	for free := range r.table.Free().AsRanges().All() {
		// free ranges are canonical [lower‥upper)
		lower, _ := free.LowerEndpoint()
		upper, _ := free.UpperEndpoint()
		if upper-lower >= size {
			return rangeset.ClosedOpen(lower, lower+size), nil
		}
	}
	return rangeset.Range[int64]{}, fmt.Errorf("%w with size %d", rangetable.ErrNoFree, size)
}

func (r *vlanTable) Free() rangeset.RangeSet[int64] {
	return r.table.Free()
}

func (r *vlanTable) GetAll() rangetable.Entries[int64] {
	return r.table.GetAll()
}

func (r *vlanTable) GetByLabel(selector labels.Selector) rangetable.Entries[int64] {
	return r.table.GetByLabel(selector)
}

func sizedRange(start, size int64) (rangeset.Range[int64], error) {
	if size < 1 {
		return rangeset.Range[int64]{}, fmt.Errorf("%w: size %d", rangeset.ErrInvalidArgument, size)
	}
	return rangeset.ClosedOpen(start, start+size), nil
}
