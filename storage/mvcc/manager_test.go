package mvcc

import (
	"errors"
	"testing"

	"relcore/types"
)

func TestVisibilitySnapshotIsolation(t *testing.T) {
	m := NewManager()
	table := types.TableID(1)
	slot := types.TupleSlot{BlockID: 1, Offset: 0}
	col := types.ColumnID(0)

	writer := m.Begin()
	if err := m.Install(writer, table, slot, map[types.ColumnID]types.Value{col: types.IntValue(1)}, false); err != nil {
		t.Fatalf("install: %v", err)
	}

	reader := m.Begin() // snapshot started before writer commits
	if _, ok := m.Visible(reader, table, slot); ok {
		t.Fatalf("reader should not see uncommitted write")
	}

	if err := m.Commit(writer); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if _, ok := m.Visible(reader, table, slot); ok {
		t.Fatalf("reader's snapshot predates the commit, must still not see it")
	}

	late := m.Begin()
	v, ok := m.Visible(late, table, slot)
	if !ok {
		t.Fatalf("later snapshot should see the committed write")
	}
	if v.Values[col].AsInt64() != 1 {
		t.Fatalf("expected value 1, got %v", v.Values[col])
	}
}

func TestWriteWriteConflict(t *testing.T) {
	m := NewManager()
	table := types.TableID(1)
	slot := types.TupleSlot{BlockID: 1, Offset: 0}

	t1 := m.Begin()
	t2 := m.Begin()

	if err := m.Install(t1, table, slot, map[types.ColumnID]types.Value{0: types.IntValue(1)}, false); err != nil {
		t.Fatalf("t1 install: %v", err)
	}
	err := m.Install(t2, table, slot, map[types.ColumnID]types.Value{0: types.IntValue(2)}, false)
	if !errors.Is(err, ErrWriteWriteConflict) {
		t.Fatalf("expected write-write conflict, got %v", err)
	}
}

func TestAbortRestoresVisibility(t *testing.T) {
	m := NewManager()
	table := types.TableID(1)
	slot := types.TupleSlot{BlockID: 1, Offset: 0}

	base := m.Begin()
	if err := m.Install(base, table, slot, map[types.ColumnID]types.Value{0: types.IntValue(1)}, false); err != nil {
		t.Fatalf("install base: %v", err)
	}
	if err := m.Commit(base); err != nil {
		t.Fatalf("commit base: %v", err)
	}

	updater := m.Begin()
	if err := m.Install(updater, table, slot, map[types.ColumnID]types.Value{0: types.IntValue(2)}, false); err != nil {
		t.Fatalf("install update: %v", err)
	}
	if err := m.Abort(updater); err != nil {
		t.Fatalf("abort: %v", err)
	}

	reader := m.Begin()
	v, ok := m.Visible(reader, table, slot)
	if !ok || v.Values[0].AsInt64() != 1 {
		t.Fatalf("expected base value 1 after abort, got %+v ok=%v", v, ok)
	}
}

func TestDeleteHidesRow(t *testing.T) {
	m := NewManager()
	table := types.TableID(1)
	slot := types.TupleSlot{BlockID: 1, Offset: 0}

	w := m.Begin()
	_ = m.Install(w, table, slot, map[types.ColumnID]types.Value{0: types.IntValue(1)}, false)
	_ = m.Commit(w)

	d := m.Begin()
	if err := m.Install(d, table, slot, nil, true); err != nil {
		t.Fatalf("install delete: %v", err)
	}
	_ = m.Commit(d)

	reader := m.Begin()
	if _, ok := m.Visible(reader, table, slot); ok {
		t.Fatalf("row should be hidden after committed delete")
	}
}
