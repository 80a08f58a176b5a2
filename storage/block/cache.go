package block

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/dustin/go-humanize"
)

// Cache is a ristretto-backed admission cache fronting the block store.
// The teacher declared github.com/dgraph-io/ristretto/v2 in go.mod but
// never wired it, using a hand-rolled map+slice LRU in
// storage_engine/bufferpool instead; this replaces that LRU with a real
// admission-counted cache (spec §4.6 "Block store").
//
// The Store keeps every block in its own slice, so a block ristretto drops
// is still reachable there; the cache only records accesses and prints the
// hit/miss/alloc log lines the teacher's BufferPool printed on every
// FetchPage.
type Cache struct {
	c        *ristretto.Cache[uint64, *Block]
	verbose  bool
	byteSize int64
}

// NewCache builds a cache sized for approximately capacityBlocks resident
// blocks, mirroring the teacher's NewBufferPool(capacity, ...) signature.
func NewCache(capacityBlocks int) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[uint64, *Block]{
		NumCounters: int64(capacityBlocks) * 10,
		MaxCost:     int64(capacityBlocks),
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("block cache: %w", err)
	}
	return &Cache{c: c, verbose: true}, nil
}

func (c *Cache) Get(id uint64) (*Block, bool) {
	b, ok := c.c.Get(id)
	if !ok {
		return nil, false
	}
	if c.verbose {
		fmt.Printf("[BlockCache] HIT  block=%d\n", id)
	}
	return b, true
}

func (c *Cache) onFetch(b *Block) {
	c.c.Set(b.ID, b, 1)
	if c.verbose {
		fmt.Printf("[BlockCache] MISS block=%d — admitted\n", b.ID)
	}
}

func (c *Cache) onAllocate(b *Block, totalBlocks int) {
	c.c.Set(b.ID, b, 1)
	c.byteSize += int64(len(b.data))
	if c.verbose {
		fmt.Printf("[BlockCache] alloc block=%d (resident bytes=%s, blocks=%d)\n",
			b.ID, humanize.Bytes(uint64(c.byteSize)), totalBlocks)
	}
}

// Close waits for pending ristretto set buffers to drain and releases the
// cache's background goroutines.
func (c *Cache) Close() {
	c.c.Close()
}
