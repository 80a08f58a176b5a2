// Package catalog is the metadata directory that the execution core treats
// as an external collaborator (spec §1): given a table or index identifier,
// it resolves the schema or index handle needed to run a plan. On-disk
// persistence of catalog metadata is a non-goal here (spec §1 lists "the
// catalog directory" itself as external, and durability formats are
// out of scope per §9), so this keeps everything in memory and drops the
// teacher's JSON-file persistence entirely — grounded on the shape of
// storage_engine/catalog's CatalogManager (name/OID maps, RegisterNewTable)
// but with the disk round-trip removed.
package catalog

import (
	"fmt"
	"sync"

	"relcore/index"
	"relcore/storage/block"
	"relcore/storage/mvcc"
	"relcore/storage/table"
	"relcore/types"
)

// Catalog resolves table and index identifiers to live handles. One Catalog
// is shared by every pipeline compiled against a given database instance.
type Catalog struct {
	mu sync.RWMutex

	nextTableID types.TableID
	nextIndexID types.IndexID

	tables    map[types.TableID]*TableEntry
	nameToOID map[string]types.TableID

	indexes map[types.IndexID]*IndexEntry
}

// TableEntry bundles a schema with the live storage handle backing it.
type TableEntry struct {
	Schema *types.TableSchema
	Table  *table.SqlTable
	Store  *block.Store
}

// IndexEntry bundles an index handle with the table and columns it covers.
type IndexEntry struct {
	OID     types.IndexID
	Table   types.TableID
	Columns []types.ColumnID
	Unique  bool
	Index   *index.Index
}

func New() *Catalog {
	return &Catalog{
		nextTableID: 1,
		nextIndexID: 1,
		tables:      make(map[types.TableID]*TableEntry),
		nameToOID:   make(map[string]types.TableID),
		indexes:     make(map[types.IndexID]*IndexEntry),
	}
}

// CreateTable registers a new table with an in-memory block-backed store and
// returns its assigned OID. columns defines both the schema and the block
// layout (spec §3 "Layout" is derived once from a table's ColumnDef list).
func (c *Catalog) CreateTable(name string, columns []types.ColumnDef, cache *block.Cache, m *mvcc.Manager) (*TableEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.nameToOID[name]; exists {
		return nil, fmt.Errorf("catalog: table %q already exists", name)
	}

	oid := c.nextTableID
	c.nextTableID++

	schema := &types.TableSchema{OID: oid, Name: name, Columns: columns}
	layout := block.NewLayout(oid, columns)
	store := block.NewStore(layout, cache)
	tbl := table.NewSqlTable(schema, store, m)

	entry := &TableEntry{Schema: schema, Table: tbl, Store: store}
	c.tables[oid] = entry
	c.nameToOID[name] = oid
	return entry, nil
}

// GetTable resolves a table OID to its schema and live handle.
func (c *Catalog) GetTable(oid types.TableID) (*TableEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.tables[oid]
	if !ok {
		return nil, fmt.Errorf("catalog: unknown table oid %d", oid)
	}
	return e, nil
}

// GetTableOid resolves a table name to its OID.
func (c *Catalog) GetTableOid(name string) (types.TableID, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	oid, ok := c.nameToOID[name]
	if !ok {
		return types.InvalidTableID, fmt.Errorf("catalog: unknown table %q", name)
	}
	return oid, nil
}

// CreateIndex builds a fresh empty ordered index over columns of table oid
// and registers it, returning the assigned index OID.
func (c *Catalog) CreateIndex(tableOID types.TableID, columns []types.ColumnID, unique bool) (*IndexEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tables[tableOID]; !ok {
		return nil, fmt.Errorf("catalog: cannot index unknown table oid %d", tableOID)
	}

	oid := c.nextIndexID
	c.nextIndexID++

	entry := &IndexEntry{
		OID:     oid,
		Table:   tableOID,
		Columns: columns,
		Unique:  unique,
		Index:   index.New(),
	}
	c.indexes[oid] = entry
	return entry, nil
}

// GetIndex resolves an index OID to its live handle.
func (c *Catalog) GetIndex(oid types.IndexID) (*IndexEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.indexes[oid]
	if !ok {
		return nil, fmt.Errorf("catalog: unknown index oid %d", oid)
	}
	return e, nil
}

// IndexesForTable returns every index registered against oid, in
// registration order by OID.
func (c *Catalog) IndexesForTable(oid types.TableID) []*IndexEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*IndexEntry
	for id := types.IndexID(1); id < c.nextIndexID; id++ {
		if e, ok := c.indexes[id]; ok && e.Table == oid {
			out = append(out, e)
		}
	}
	return out
}
