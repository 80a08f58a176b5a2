package types

// TableID and ColumnID are opaque handles assigned by the catalog. They are
// never interpreted by storage, index, or execution code, only compared and
// used as map keys.
type TableID uint32

type ColumnID uint32

// IndexID identifies a BwTree index registered with the catalog.
type IndexID uint32

const InvalidTableID TableID = 0
const InvalidColumnID ColumnID = 0
