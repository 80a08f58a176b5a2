package block

import (
	"fmt"
	"sync"

	"relcore/types"
)

// Block is one fixed-size tuple block: a header, a per-row occupied bitmap,
// a per-row per-column null bitmap, and the column arrays themselves laid
// out per Layout. Mirrors the teacher's page.Page, minus on-disk framing
// (persistence formats are out of scope per spec §1).
type Block struct {
	ID       uint64
	Layout   *Layout
	occupied []bool // len == Layout.TuplesPerBlock
	nulls    [][]bool
	data     []byte
	numRows  int
	mu       sync.RWMutex
}

func newBlock(id uint64, layout *Layout) *Block {
	nulls := make([][]bool, layout.TuplesPerBlock)
	for i := range nulls {
		nulls[i] = make([]bool, len(layout.Slots))
	}
	return &Block{
		ID:       id,
		Layout:   layout,
		occupied: make([]bool, layout.TuplesPerBlock),
		nulls:    nulls,
		data:     make([]byte, layout.TuplesPerBlock*layout.TupleWidth),
	}
}

// Full reports whether the block has no free row slot left.
func (b *Block) Full() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.numRows >= len(b.occupied)
}

// allocRow finds a free row offset and marks it occupied. Returns -1 if full.
func (b *Block) allocRow() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, occ := range b.occupied {
		if !occ {
			b.occupied[i] = true
			b.numRows++
			return i
		}
	}
	return -1
}

func (b *Block) freeRow(offset int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if offset < 0 || offset >= len(b.occupied) {
		return
	}
	if b.occupied[offset] {
		b.occupied[offset] = false
		b.numRows--
	}
}

func (b *Block) IsOccupied(offset int) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if offset < 0 || offset >= len(b.occupied) {
		return false
	}
	return b.occupied[offset]
}

// WriteColumn writes a fixed-width column value for the row at offset.
func (b *Block) WriteColumn(offset int, col types.ColumnID, raw []byte, isNull bool) error {
	slot, ok := b.Layout.SlotFor(col)
	if !ok {
		return fmt.Errorf("block: column %d not present in layout", col)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if offset < 0 || offset >= len(b.occupied) {
		return fmt.Errorf("block: row offset %d out of range", offset)
	}
	b.nulls[offset][b.slotIndex(col)] = isNull
	if isNull {
		return nil
	}
	base := offset*b.Layout.TupleWidth + slot.Offset
	if len(raw) != slot.Width {
		return fmt.Errorf("block: column %d expects %d bytes, got %d", col, slot.Width, len(raw))
	}
	copy(b.data[base:base+slot.Width], raw)
	return nil
}

// ReadColumn reads the raw bytes for a fixed-width column at offset, and
// whether it is null.
func (b *Block) ReadColumn(offset int, col types.ColumnID) ([]byte, bool, error) {
	slot, ok := b.Layout.SlotFor(col)
	if !ok {
		return nil, false, fmt.Errorf("block: column %d not present in layout", col)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if offset < 0 || offset >= len(b.occupied) {
		return nil, false, fmt.Errorf("block: row offset %d out of range", offset)
	}
	if b.nulls[offset][b.slotIndex(col)] {
		return nil, true, nil
	}
	base := offset*b.Layout.TupleWidth + slot.Offset
	out := make([]byte, slot.Width)
	copy(out, b.data[base:base+slot.Width])
	return out, false, nil
}

func (b *Block) slotIndex(col types.ColumnID) int {
	for i, s := range b.Layout.Slots {
		if s.Column == col {
			return i
		}
	}
	return -1
}

// NumRows returns the current occupied row count, used by the scan
// iterator to size batches and by cost estimation in higher layers.
func (b *Block) NumRows() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.numRows
}

// Capacity is the number of row slots the block was laid out for.
func (b *Block) Capacity() int {
	return len(b.occupied)
}
