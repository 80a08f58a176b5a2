package block

import (
	"fmt"
	"sync"

	"relcore/types"
)

// Store allocates and owns the sequence of blocks for a single table under
// a given layout. Mirrors the teacher's DiskManager + HeapFileManager pair,
// collapsed into one type since block persistence is out of scope here
// (spec Non-goals: on-disk durability formats) — everything the teacher
// split across disk_manager/heapfile_manager is in-memory allocation only.
type Store struct {
	layout   *Layout
	cache    *Cache
	mu       sync.RWMutex
	blocks   []*Block
	nextID   uint64
}

func NewStore(layout *Layout, cache *Cache) *Store {
	return &Store{layout: layout, cache: cache, nextID: 1}
}

func (s *Store) Layout() *Layout { return s.layout }

// AllocateRow finds (or creates) a block with a free row slot and returns
// its (blockID, offset). This is the block-layer half of SqlTable.Insert.
func (s *Store) AllocateRow() (types.TupleSlot, *Block, error) {
	s.mu.Lock()
	for _, b := range s.blocks {
		if !b.Full() {
			s.mu.Unlock()
			off := b.allocRow()
			if off < 0 {
				continue
			}
			return types.TupleSlot{BlockID: b.ID, Offset: uint16(off)}, b, nil
		}
	}
	if s.layout.TuplesPerBlock <= 0 {
		s.mu.Unlock()
		return types.TupleSlot{}, nil, fmt.Errorf("block store: layout has zero tuple capacity per block")
	}
	nb := newBlock(s.nextID, s.layout)
	s.nextID++
	s.blocks = append(s.blocks, nb)
	blocksSnapshot := len(s.blocks)
	s.mu.Unlock()

	off := nb.allocRow()
	if s.cache != nil {
		s.cache.onAllocate(nb, blocksSnapshot)
	}
	return types.TupleSlot{BlockID: nb.ID, Offset: uint16(off)}, nb, nil
}

// Get fetches a block by ID, consulting the cache first for access
// accounting (spec §4.6 "Block store"), then falling back to the owned
// slice (blocks are never removed from that slice, so a cache miss still
// finds them).
func (s *Store) Get(id uint64) (*Block, bool) {
	if s.cache != nil {
		if b, ok := s.cache.Get(id); ok {
			return b, true
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.blocks {
		if b.ID == id {
			if s.cache != nil {
				s.cache.onFetch(b)
			}
			return b, true
		}
	}
	return nil, false
}

// FreeRow marks a row slot free, used by rollback and by compaction (not
// implemented; compaction is not required by spec §3's TupleSlot stability
// invariant for non-compacting updates).
func (s *Store) FreeRow(slot types.TupleSlot) error {
	b, ok := s.Get(slot.BlockID)
	if !ok {
		return fmt.Errorf("block store: unknown block %d", slot.BlockID)
	}
	b.freeRow(int(slot.Offset))
	return nil
}

// BlockIDs returns a stable snapshot of block IDs in allocation order, used
// by the slot iterator (spec §4.6 "Slot iterator").
func (s *Store) BlockIDs() []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uint64, len(s.blocks))
	for i, b := range s.blocks {
		ids[i] = b.ID
	}
	return ids
}
