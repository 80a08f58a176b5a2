package types

// BlockSize is the fixed size in bytes of every storage block (spec §3
// "Block layout"). Mirrors the teacher's PageSize.
const BlockSize = 4096

// BlockHeaderSize is the fixed header every block carries before its
// per-column null bitmap and column arrays. Mirrors the teacher's
// HeapPageHeaderSize.
const BlockHeaderSize = 32

// VarlenInlineThreshold is the byte length under which a varlen value is
// stored inline in the block rather than indirected through a pointer.
const VarlenInlineThreshold = 12

// VarlenEntrySize is the fixed in-block footprint of a varlen entry: either
// the inline bytes plus a length prefix, or a (ptr, len) indirection cell.
const VarlenEntrySize = 16

type BlockKind uint8

const (
	BlockKindUnknown BlockKind = iota
	BlockKindData
	BlockKindIndexNode
)
