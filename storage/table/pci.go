package table

import "relcore/types"

// PCI is the Projected-Columns Iterator: a per-tuple cursor over one batch
// of a ProjectedColumns buffer, carrying a selection vector so a scan
// predicate can filter rows without compacting the underlying buffer
// (spec GLOSSARY "PCI"). It is the runtime primitive the VM's table-vector
// iterator opcodes advance one tuple at a time.
type PCI struct {
	buf       *ProjectedColumns
	selection []int // indices into buf that are "selected"; nil means all rows
	cursor    int
}

func NewPCI(buf *ProjectedColumns) *PCI {
	return &PCI{buf: buf}
}

// Reset rebinds the PCI to a freshly-refilled buffer and clears filtering.
func (p *PCI) Reset(buf *ProjectedColumns) {
	p.buf = buf
	p.selection = nil
	p.cursor = 0
}

func (p *PCI) NumRows() int { return p.buf.NumRows() }

// Filter narrows the selection vector to rows for which keep returns true.
// Successive calls compose (a later Filter only sees already-selected rows),
// matching the filter-manager's chained-predicate model (spec §4.3).
func (p *PCI) Filter(keep func(row int) bool) {
	var next []int
	if p.selection == nil {
		for i := 0; i < p.buf.NumRows(); i++ {
			if keep(i) {
				next = append(next, i)
			}
		}
	} else {
		for _, i := range p.selection {
			if keep(i) {
				next = append(next, i)
			}
		}
	}
	p.selection = next
	if p.selection == nil {
		p.selection = []int{}
	}
}

func (p *PCI) selectedCount() int {
	if p.selection == nil {
		return p.buf.NumRows()
	}
	return len(p.selection)
}

// Advance moves the cursor to the next selected row, returning false when
// exhausted.
func (p *PCI) Advance() bool {
	if p.cursor >= p.selectedCount() {
		return false
	}
	p.cursor++
	return true
}

func (p *PCI) currentRow() int {
	if p.selection == nil {
		return p.cursor - 1
	}
	return p.selection[p.cursor-1]
}

func (p *PCI) Value(col types.ColumnID) (types.Value, bool) {
	return p.buf.Value(p.currentRow(), col)
}

// ValueAt reads column col of an arbitrary buffer row, independent of the
// cursor — used by Filter predicates, which receive raw row indices before
// any row is "current".
func (p *PCI) ValueAt(row int, col types.ColumnID) (types.Value, bool) {
	return p.buf.Value(row, col)
}

func (p *PCI) Slot() types.TupleSlot { return p.buf.Slot(p.currentRow()) }
