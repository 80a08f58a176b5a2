// Package table implements SqlTable — the storage-layer view onto a block
// store with MVCC visibility applied — plus the projected-row and
// projected-columns buffers used to move tuples in and out of it. Grounded
// on the teacher's heapfile_manager row_ops (external/internal split,
// RWMutex-guarded), generalized from opaque row blobs to per-column typed
// values over a chosen column subset (spec §3 "Projected columns").
package table

import "relcore/types"

// ProjectedRow is a single-row view over a subset of columns, used for
// inserts and index key material (spec §3).
type ProjectedRow struct {
	Columns []types.ColumnID
	Values  []types.Value
}

func NewProjectedRow(columns []types.ColumnID) *ProjectedRow {
	return &ProjectedRow{Columns: columns, Values: make([]types.Value, len(columns))}
}

func (r *ProjectedRow) Set(col types.ColumnID, v types.Value) {
	for i, c := range r.Columns {
		if c == col {
			r.Values[i] = v
			return
		}
	}
}

func (r *ProjectedRow) Get(col types.ColumnID) (types.Value, bool) {
	for i, c := range r.Columns {
		if c == col {
			return r.Values[i], true
		}
	}
	return types.Value{}, false
}

func (r *ProjectedRow) ToMap() map[types.ColumnID]types.Value {
	m := make(map[types.ColumnID]types.Value, len(r.Columns))
	for i, c := range r.Columns {
		m[c] = r.Values[i]
	}
	return m
}

// ProjectedColumns is a vectorized buffer for up to B rows over a subset of
// columns, owning its own storage and a per-row null bitmap. Invariant:
// populated tuple count never exceeds Capacity, and Columns' order is
// stable for the buffer's lifetime (spec §3).
type ProjectedColumns struct {
	Columns  []types.ColumnID
	Capacity int
	numRows  int
	data     [][]types.Value // column-major: data[colIdx][row]
	nulls    [][]bool
	slots    []types.TupleSlot
}

func NewProjectedColumns(columns []types.ColumnID, capacity int) *ProjectedColumns {
	pc := &ProjectedColumns{Columns: columns, Capacity: capacity}
	pc.data = make([][]types.Value, len(columns))
	pc.nulls = make([][]bool, len(columns))
	for i := range columns {
		pc.data[i] = make([]types.Value, capacity)
		pc.nulls[i] = make([]bool, capacity)
	}
	pc.slots = make([]types.TupleSlot, capacity)
	return pc
}

func (pc *ProjectedColumns) Reset() { pc.numRows = 0 }

func (pc *ProjectedColumns) NumRows() int { return pc.numRows }

// AppendRow writes one row's worth of values (already in Columns order)
// plus its slot, returning false if the buffer is full.
func (pc *ProjectedColumns) AppendRow(slot types.TupleSlot, values []types.Value, isNull []bool) bool {
	if pc.numRows >= pc.Capacity {
		return false
	}
	row := pc.numRows
	for i := range pc.Columns {
		pc.data[i][row] = values[i]
		pc.nulls[i][row] = isNull[i]
	}
	pc.slots[row] = slot
	pc.numRows++
	return true
}

func (pc *ProjectedColumns) colIndex(col types.ColumnID) int {
	for i, c := range pc.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Value returns the value of column col at row, and whether it's null.
func (pc *ProjectedColumns) Value(row int, col types.ColumnID) (types.Value, bool) {
	idx := pc.colIndex(col)
	if idx < 0 || row < 0 || row >= pc.numRows {
		return types.Value{}, true
	}
	return pc.data[idx][row], pc.nulls[idx][row]
}

func (pc *ProjectedColumns) Slot(row int) types.TupleSlot { return pc.slots[row] }
