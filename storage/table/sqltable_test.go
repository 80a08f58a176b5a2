package table

import (
	"testing"

	"relcore/storage/block"
	"relcore/storage/mvcc"
	"relcore/types"
)

func newTestTable(t *testing.T) (*SqlTable, *mvcc.Manager) {
	t.Helper()
	schema := &types.TableSchema{
		OID:  1,
		Name: "widgets",
		Columns: []types.ColumnDef{
			{ID: 0, Name: "id", Type: types.Integer},
			{ID: 1, Name: "name", Type: types.Varchar},
		},
	}
	layout := block.NewLayout(schema.OID, schema.Columns)
	store := block.NewStore(layout, nil)
	m := mvcc.NewManager()
	return NewSqlTable(schema, store, m), m
}

func TestInsertSelectRoundTrip(t *testing.T) {
	tbl, m := newTestTable(t)
	txn := m.Begin()

	row := NewProjectedRow([]types.ColumnID{0, 1})
	row.Set(0, types.IntValue(42))
	row.Set(1, types.VarcharValue("widget"))

	slot, err := tbl.Insert(txn, row)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := m.Commit(txn); err != nil {
		t.Fatalf("commit: %v", err)
	}

	reader := m.Begin()
	got, ok, err := tbl.Select(reader, slot, []types.ColumnID{0, 1})
	if err != nil || !ok {
		t.Fatalf("select: ok=%v err=%v", ok, err)
	}
	if v, _ := got.Get(0); v.AsInt64() != 42 {
		t.Fatalf("expected id 42, got %v", v)
	}
	if v, _ := got.Get(1); v.AsString() != "widget" {
		t.Fatalf("expected name widget, got %v", v)
	}
}

func TestUpdatePreservesUntouchedColumns(t *testing.T) {
	tbl, m := newTestTable(t)
	txn := m.Begin()
	row := NewProjectedRow([]types.ColumnID{0, 1})
	row.Set(0, types.IntValue(1))
	row.Set(1, types.VarcharValue("a"))
	slot, err := tbl.Insert(txn, row)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	_ = m.Commit(txn)

	upd := m.Begin()
	patch := NewProjectedRow([]types.ColumnID{1})
	patch.Set(1, types.VarcharValue("b"))
	if err := tbl.Update(upd, slot, patch); err != nil {
		t.Fatalf("update: %v", err)
	}
	_ = m.Commit(upd)

	reader := m.Begin()
	got, ok, err := tbl.Select(reader, slot, []types.ColumnID{0, 1})
	if err != nil || !ok {
		t.Fatalf("select: ok=%v err=%v", ok, err)
	}
	if v, _ := got.Get(0); v.AsInt64() != 1 {
		t.Fatalf("id should be unchanged, got %v", v)
	}
	if v, _ := got.Get(1); v.AsString() != "b" {
		t.Fatalf("name should be updated to b, got %v", v)
	}
}

func TestSlotIteratorScansAllVisibleRows(t *testing.T) {
	tbl, m := newTestTable(t)
	txn := m.Begin()
	for i := 0; i < 5; i++ {
		row := NewProjectedRow([]types.ColumnID{0})
		row.Set(0, types.IntValue(int32(i)))
		if _, err := tbl.Insert(txn, row); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	_ = m.Commit(txn)

	reader := m.Begin()
	it := tbl.NewSlotIterator()
	buf := NewProjectedColumns([]types.ColumnID{0}, 2)
	total := 0
	for {
		exhausted := it.Scan(reader, buf)
		total += buf.NumRows()
		if exhausted {
			break
		}
	}
	if total != 5 {
		t.Fatalf("expected 5 rows scanned, got %d", total)
	}
}
