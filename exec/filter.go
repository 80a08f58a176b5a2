package exec

import "relcore/storage/table"

// Predicate tests one row of a PCI-backed batch.
type Predicate func(pci *table.PCI, row int) bool

// FilterManager chains predicates over a PCI batch, letting the compiler
// emit one intrinsic call per WHERE clause term instead of folding them
// into a single opaque closure (spec §4.3 "Filter manager"): each Filter
// call composes with prior ones exactly like table.PCI.Filter, which this
// wraps to give the compiled pipeline a named intrinsic surface.
type FilterManager struct {
	preds []Predicate
}

func NewFilterManager() *FilterManager { return &FilterManager{} }

func (f *FilterManager) AddPredicate(p Predicate) { f.preds = append(f.preds, p) }

// RunFilters applies every registered predicate to pci's current
// selection, narrowing it in registration order.
func (f *FilterManager) RunFilters(pci *table.PCI) {
	for _, p := range f.preds {
		pred := p
		pci.Filter(func(row int) bool { return pred(pci, row) })
	}
}
