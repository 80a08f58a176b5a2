// Package gc implements the two-phase transaction-epoch garbage collector
// of spec §4.8: unlink committed undo records older than every active
// txn's snapshot, then deallocate them one cycle later so no in-flight
// scanner can be mid-traversal of a record being freed. Grounded on the
// rollback bookkeeping in the teacher's transaction_manager (which frees
// nothing itself — MVCC readers there never free either) and on
// dustin/go-humanize for the cycle summary log line, mirroring the
// storage_engine's habit of printing after every buffer-pool operation.
package gc

import (
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"

	"relcore/storage/mvcc"
	"relcore/types"
)

// Collector runs on a dedicated cooperative goroutine (spec §4.8: "Runs on
// a dedicated cooperative thread").
type Collector struct {
	m *mvcc.Manager

	mu      sync.Mutex
	pending []unlinked // records unlinked last cycle, awaiting deallocation
	freed   uint64

	stopCh chan struct{}
	doneCh chan struct{}
}

type unlinked struct {
	table types.TableID
	slot  types.TupleSlot
	rec   *mvcc.UndoRecord
}

func NewCollector(m *mvcc.Manager) *Collector {
	return &Collector{m: m, stopCh: make(chan struct{}), doneCh: make(chan struct{})}
}

// RunCycle executes one unlink-then-deallocate cycle synchronously, so
// tests can drive GC deterministically instead of racing a goroutine.
func (c *Collector) RunCycle() {
	c.mu.Lock()
	toFree := c.pending
	c.pending = nil
	c.mu.Unlock()

	freedBytes := uint64(0)
	for _, u := range toFree {
		freedBytes += approxSize(u.rec)
		c.freed++
	}

	minActive, hasActive := c.m.MinActiveStartTS()
	var newlyUnlinked []unlinked
	c.m.GC().Walk(func(table types.TableID, slot types.TupleSlot, head *mvcc.UndoRecord) {
		for v := head; v != nil; v = v.Next {
			if v.CommitTS == 0 {
				continue // still pending, owning txn hasn't committed
			}
			if hasActive && v.CommitTS >= minActive {
				continue // some active txn's snapshot might still need it
			}
			// v is visible to every active and future snapshot, so every
			// older version behind it is superseded. v itself stays, which
			// also keeps a slot's only committed version readable.
			for old := v.Next; old != nil; {
				next := old.Next
				c.m.GC().Unlink(table, slot, old)
				newlyUnlinked = append(newlyUnlinked, unlinked{table, slot, old})
				old = next
			}
			return
		}
	})

	c.mu.Lock()
	c.pending = append(c.pending, newlyUnlinked...)
	c.mu.Unlock()

	if freedBytes > 0 || len(newlyUnlinked) > 0 {
		fmt.Printf("[GC] cycle: unlinked=%d deallocated=%s freed_total=%d\n",
			len(newlyUnlinked), humanize.Bytes(freedBytes), c.freed)
	}
}

func approxSize(v *mvcc.UndoRecord) uint64 {
	return uint64(64 + 32*len(v.Values))
}

// Start launches the cooperative GC loop, running one cycle every
// interval until Stop is called.
func (c *Collector) Start(interval func() <-chan struct{}) {
	go func() {
		defer close(c.doneCh)
		tick := interval()
		for {
			select {
			case <-c.stopCh:
				return
			case <-tick:
				c.RunCycle()
			}
		}
	}()
}

func (c *Collector) Stop() {
	close(c.stopCh)
	<-c.doneCh
}
