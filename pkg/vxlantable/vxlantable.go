package vxlantable

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/henderiw/rangeset/pkg/rangeset"
	"github.com/henderiw/rangeset/pkg/rangetable"
	"k8s.io/apimachinery/pkg/labels"
)

// MaxVNI is the largest 24 bit VXLAN network identifier.
const MaxVNI = 1<<24 - 1

type VXLANTable interface {
	Get(id int64) (labels.Set, error)
	Claim(id int64, d labels.Set) error
	ClaimDynamic(d labels.Set) (int64, error)
	Release(id int64) error
	Update(id int64, d labels.Set) error

	Count() int
	Has(id int64) bool

	IsFree(id int64) bool
	FindFree() (int64, error)
	Free() rangeset.RangeSet[int64]

	GetAll() rangetable.Entries[int64]
	GetByLabel(selector labels.Selector) rangetable.Entries[int64]
}

// New returns a table handing out the VNIs in [offset‥max).
func New(offset, max int64, log logr.Logger) (VXLANTable, error) {
	if offset < 0 || max > MaxVNI+1 {
		return nil, fmt.Errorf("vni range [%d‥%d) does not fit in [0‥%d]", offset, max, MaxVNI)
	}
	t, err := rangetable.New(rangetable.Config[int64]{
		Name:   "vxlan",
		Pool:   rangeset.ClosedOpen(offset, max),
		Domain: rangeset.Int64s{},
		Logger: log,
	})
	if err != nil {
		return nil, err
	}
	return &vxlanTable{table: t}, nil
}

type vxlanTable struct {
	table rangetable.Table[int64]
}

func (r *vxlanTable) Get(id int64) (labels.Set, error) {
	e, err := r.table.Get(id)
	if err != nil {
		return nil, err
	}
	return e.Labels, nil
}

func (r *vxlanTable) Claim(id int64, d labels.Set) error {
	return r.table.Claim(id, d)
}

func (r *vxlanTable) ClaimDynamic(d labels.Set) (int64, error) {
	return r.table.ClaimDynamic(d)
}

func (r *vxlanTable) Release(id int64) error {
	return r.table.Release(id)
}

func (r *vxlanTable) Update(id int64, d labels.Set) error {
	return r.table.Update(id, d)
}

func (r *vxlanTable) Count() int {
	return r.table.Count()
}

func (r *vxlanTable) Has(id int64) bool {
	return r.table.Has(id)
}

func (r *vxlanTable) IsFree(id int64) bool {
	return r.table.IsFree(id)
}

func (r *vxlanTable) FindFree() (int64, error) {
	id, err := r.table.FindFree()
	if err != nil {
		return -1, err
	}
	return id, nil
}

func (r *vxlanTable) Free() rangeset.RangeSet[int64] {
	return r.table.Free()
}

func (r *vxlanTable) GetAll() rangetable.Entries[int64] {
	return r.table.GetAll()
}

func (r *vxlanTable) GetByLabel(selector labels.Selector) rangetable.Entries[int64] {
	return r.table.GetByLabel(selector)
}
