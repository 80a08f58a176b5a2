package gc

import (
	"testing"

	"relcore/storage/mvcc"
	"relcore/types"
)

// TestCollectorDeallocatesOneCycleAfterUnlinking pins spec §4.8's two-phase
// contract: a superseded version is spliced out of its chain on the cycle
// that decides it's no longer needed, and only actually deallocated one
// cycle later, so a scanner mid-traversal when the unlink happens can never
// be handed a freed record.
func TestCollectorDeallocatesOneCycleAfterUnlinking(t *testing.T) {
	m := mvcc.NewManager()
	table := types.TableID(1)
	slot := types.TupleSlot{BlockID: 1, Offset: 0}

	t1 := m.Begin()
	if err := m.Install(t1, table, slot, map[types.ColumnID]types.Value{1: types.IntValue(1)}, false); err != nil {
		t.Fatalf("install v1: %v", err)
	}
	if err := m.Commit(t1); err != nil {
		t.Fatalf("commit v1: %v", err)
	}

	t2 := m.Begin()
	if err := m.Install(t2, table, slot, map[types.ColumnID]types.Value{1: types.IntValue(2)}, false); err != nil {
		t.Fatalf("install v2: %v", err)
	}
	if err := m.Commit(t2); err != nil {
		t.Fatalf("commit v2: %v", err)
	}

	c := NewCollector(m)

	c.RunCycle()
	if c.freed != 0 {
		t.Fatalf("expected nothing deallocated on the unlink cycle, freed=%d", c.freed)
	}
	if len(c.pending) != 1 {
		t.Fatalf("expected the superseded version queued for next cycle, got %d pending", len(c.pending))
	}

	c.RunCycle()
	if c.freed != 1 {
		t.Fatalf("expected the queued version deallocated on the second cycle, freed=%d", c.freed)
	}
	if len(c.pending) != 0 {
		t.Fatalf("expected pending queue drained after deallocation, got %d", len(c.pending))
	}
}

// TestCollectorNeverUnlinksTheBaseVersion pins the "never remove the only
// surviving version" guard: a slot with a single committed version must
// still be readable through arbitrarily many GC cycles.
func TestCollectorNeverUnlinksTheBaseVersion(t *testing.T) {
	m := mvcc.NewManager()
	table := types.TableID(1)
	slot := types.TupleSlot{BlockID: 1, Offset: 0}

	t1 := m.Begin()
	if err := m.Install(t1, table, slot, map[types.ColumnID]types.Value{1: types.IntValue(7)}, false); err != nil {
		t.Fatalf("install: %v", err)
	}
	if err := m.Commit(t1); err != nil {
		t.Fatalf("commit: %v", err)
	}

	c := NewCollector(m)
	c.RunCycle()
	c.RunCycle()

	reader := m.Begin()
	v, ok := m.Visible(reader, table, slot)
	if !ok {
		t.Fatalf("expected the base version to survive GC")
	}
	if v.Values[1].AsInt64() != 7 {
		t.Fatalf("expected base version's value preserved, got %v", v.Values[1])
	}
}
