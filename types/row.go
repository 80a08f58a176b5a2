package types

// TupleSlot is a pair (block, offset) uniquely identifying a physical row
// location. It is stable across non-compacting updates. Generalizes the
// teacher's heap-file RowPointer (FileID, PageNumber, SlotIndex) to the
// block-organized layout of spec §3.
type TupleSlot struct {
	BlockID uint64
	Offset  uint16
}

func (s TupleSlot) IsZero() bool { return s.BlockID == 0 && s.Offset == 0 }
