package catalog

import (
	"testing"

	"relcore/storage/mvcc"
	"relcore/types"
)

func TestCreateAndResolveTable(t *testing.T) {
	c := New()
	m := mvcc.NewManager()
	cols := []types.ColumnDef{
		{ID: 0, Name: "id", Type: types.Integer, IsPrimaryKey: true},
	}
	entry, err := c.CreateTable("accounts", cols, nil, m)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	oid, err := c.GetTableOid("accounts")
	if err != nil {
		t.Fatalf("get oid: %v", err)
	}
	if oid != entry.Schema.OID {
		t.Fatalf("oid mismatch: %d != %d", oid, entry.Schema.OID)
	}

	got, err := c.GetTable(oid)
	if err != nil || got.Table == nil {
		t.Fatalf("get table: %v", err)
	}
}

func TestCreateTableRejectsDuplicateName(t *testing.T) {
	c := New()
	m := mvcc.NewManager()
	cols := []types.ColumnDef{{ID: 0, Name: "id", Type: types.Integer}}
	if _, err := c.CreateTable("t", cols, nil, m); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := c.CreateTable("t", cols, nil, m); err == nil {
		t.Fatalf("expected error creating duplicate table name")
	}
}

func TestCreateIndexAndLookup(t *testing.T) {
	c := New()
	m := mvcc.NewManager()
	cols := []types.ColumnDef{{ID: 0, Name: "id", Type: types.Integer}}
	entry, err := c.CreateTable("t", cols, nil, m)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	idx, err := c.CreateIndex(entry.Schema.OID, []types.ColumnID{0}, true)
	if err != nil {
		t.Fatalf("create index: %v", err)
	}

	got, err := c.GetIndex(idx.OID)
	if err != nil || got.Index == nil {
		t.Fatalf("get index: %v", err)
	}

	all := c.IndexesForTable(entry.Schema.OID)
	if len(all) != 1 || all[0].OID != idx.OID {
		t.Fatalf("expected one index for table, got %v", all)
	}
}
