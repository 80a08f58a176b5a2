package table

import (
	"relcore/storage/mvcc"
	"relcore/types"
)

// SlotIterator yields slots in block-then-offset order (spec §4.6 "Slot
// iterator"). It is stateful and single-use, matching the teacher's
// GetAllRowPointers-then-range pattern but streamed instead of
// materialized all at once.
type SlotIterator struct {
	t        *SqlTable
	blockIDs []uint64
	bi       int
	offset   int
}

func (t *SqlTable) NewSlotIterator() *SlotIterator {
	return &SlotIterator{t: t, blockIDs: t.store.BlockIDs()}
}

// Scan populates buf with up to its capacity of rows visible to txn,
// starting where the iterator last left off, and reports whether it is
// exhausted (spec §4.6: "Scan populates a projected-columns buffer with up
// to its capacity of visible rows in one call; caller loops until the
// iterator reports exhausted and the buffer is empty").
func (it *SlotIterator) Scan(txn *mvcc.Txn, buf *ProjectedColumns) (exhausted bool) {
	buf.Reset()
	for {
		if buf.numRows >= buf.Capacity {
			return false
		}
		if it.bi >= len(it.blockIDs) {
			return true
		}
		blk, ok := it.t.store.Get(it.blockIDs[it.bi])
		if !ok {
			it.bi++
			it.offset = 0
			continue
		}
		if it.offset >= blk.Capacity() {
			it.bi++
			it.offset = 0
			continue
		}
		slot := types.TupleSlot{BlockID: blk.ID, Offset: uint16(it.offset)}
		it.offset++
		if !blk.IsOccupied(int(slot.Offset)) {
			continue
		}
		v, visible := it.t.mvcc.Visible(txn, it.t.Schema.OID, slot)
		if !visible {
			continue
		}
		values := make([]types.Value, len(buf.Columns))
		isNull := make([]bool, len(buf.Columns))
		for i, c := range buf.Columns {
			if val, ok := v.Values[c]; ok {
				values[i] = val
			} else {
				values[i] = types.NullValue(types.Null)
				isNull[i] = true
			}
		}
		buf.AppendRow(slot, values, isNull)
	}
}
