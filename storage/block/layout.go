// Package block implements the fixed-size block store that backs SqlTable:
// per-column offsets, a null bitmap, and a ristretto-fronted block cache.
// Grounded on the teacher's storage_engine/page and storage_engine/bufferpool,
// generalized from a single fixed-format heap page to a layout-described,
// column-projected block (spec §3 "Block layout").
package block

import "relcore/types"

// ColumnSlot describes where one column lives inside a block: its fixed
// byte width and offset from the start of the column-data region.
type ColumnSlot struct {
	Column types.ColumnID
	Type   types.TypeID
	Width  int
	Offset int
}

// Layout is a description of a fixed-size tuple block, immutable after
// table creation (spec §3 "Block layout" invariant).
type Layout struct {
	Table       types.TableID
	Slots       []ColumnSlot
	TupleWidth  int // sum of column widths
	NullBitmapBytes int
	TuplesPerBlock  int
}

// NewLayout computes column offsets and how many tuples fit in a block of
// types.BlockSize bytes, after the header and null bitmap.
func NewLayout(table types.TableID, columns []types.ColumnDef) *Layout {
	l := &Layout{Table: table}
	offset := 0
	for _, c := range columns {
		w := c.Type.Width()
		if w < 0 {
			w = types.VarlenEntrySize
		}
		l.Slots = append(l.Slots, ColumnSlot{Column: c.ID, Type: c.Type, Width: w, Offset: offset})
		offset += w
	}
	l.TupleWidth = offset
	l.NullBitmapBytes = (len(columns) + 7) / 8

	available := types.BlockSize - types.BlockHeaderSize
	perTupleCost := l.TupleWidth + l.NullBitmapBytes
	if perTupleCost <= 0 {
		l.TuplesPerBlock = 0
		return l
	}
	l.TuplesPerBlock = available / perTupleCost
	return l
}

func (l *Layout) SlotFor(col types.ColumnID) (ColumnSlot, bool) {
	for _, s := range l.Slots {
		if s.Column == col {
			return s, true
		}
	}
	return ColumnSlot{}, false
}
