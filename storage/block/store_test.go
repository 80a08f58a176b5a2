package block

import (
	"testing"

	"relcore/types"
)

func testSchema() []types.ColumnDef {
	return []types.ColumnDef{
		{ID: 0, Name: "id", Type: types.Integer, IsPrimaryKey: true},
		{ID: 1, Name: "name", Type: types.Varchar},
	}
}

func TestStoreAllocateAndReadBack(t *testing.T) {
	layout := NewLayout(1, testSchema())
	if layout.TuplesPerBlock <= 0 {
		t.Fatalf("expected positive tuple capacity, got %d", layout.TuplesPerBlock)
	}
	store := NewStore(layout, nil)

	slot, blk, err := store.AllocateRow()
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if err := blk.WriteColumn(int(slot.Offset), 0, []byte{7, 0, 0, 0}, false); err != nil {
		t.Fatalf("write column: %v", err)
	}
	raw, isNull, err := blk.ReadColumn(int(slot.Offset), 0)
	if err != nil || isNull {
		t.Fatalf("read column: raw=%v isNull=%v err=%v", raw, isNull, err)
	}
	if raw[0] != 7 {
		t.Fatalf("expected byte 7, got %v", raw)
	}
}

func TestStoreSpillsToNewBlockWhenFull(t *testing.T) {
	layout := NewLayout(1, testSchema())
	store := NewStore(layout, nil)

	seen := map[uint64]bool{}
	for i := 0; i < layout.TuplesPerBlock+1; i++ {
		slot, _, err := store.AllocateRow()
		if err != nil {
			t.Fatalf("allocate %d: %v", i, err)
		}
		seen[slot.BlockID] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected allocation to spill into a second block, saw %d blocks", len(seen))
	}
}

func TestFreeRowAllowsReuse(t *testing.T) {
	layout := NewLayout(1, testSchema())
	store := NewStore(layout, nil)

	slot, _, err := store.AllocateRow()
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if err := store.FreeRow(slot); err != nil {
		t.Fatalf("free: %v", err)
	}
	blk, ok := store.Get(slot.BlockID)
	if !ok {
		t.Fatalf("expected block to still exist")
	}
	if blk.IsOccupied(int(slot.Offset)) {
		t.Fatalf("expected slot to be free after FreeRow")
	}
}
