package rangetable

import (
	"fmt"

	"github.com/henderiw/rangeset/pkg/rangeset"
	"k8s.io/apimachinery/pkg/labels"
)

// Entry is a claimed range and the labels it was claimed with.
type Entry[C any] struct {
	Range  rangeset.Range[C]
	Labels labels.Set
}

type Entries[C any] []Entry[C]

func NewEntry[C any](r rangeset.Range[C], l labels.Set) Entry[C] {
	return Entry[C]{Range: r, Labels: l}
}

func (r Entry[C]) String() string {
	return fmt.Sprintf("range: %s, labels: %s", r.Range, r.Labels.String())
}

// Ranges returns the ranges of the entries, in order.
func (r Entries[C]) Ranges() []rangeset.Range[C] {
	out := make([]rangeset.Range[C], 0, len(r))
	for _, e := range r {
		out = append(out, e.Range)
	}
	return out
}
