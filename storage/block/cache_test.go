package block

import "testing"

func TestCacheAdmitsAllocatedBlocks(t *testing.T) {
	c, err := NewCache(16)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	defer c.Close()

	layout := NewLayout(1, testSchema())
	store := NewStore(layout, c)

	slot, _, err := store.AllocateRow()
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	c.c.Wait()

	if _, ok := store.Get(slot.BlockID); !ok {
		t.Fatalf("expected block %d to be retrievable via store", slot.BlockID)
	}
}
