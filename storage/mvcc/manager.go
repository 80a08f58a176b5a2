package mvcc

import (
	"fmt"
	"sync"
	"sync/atomic"

	"relcore/types"
)

// Manager is the MVCC txn-context and version-chain authority for a
// database: it hands out transactions, tracks per-slot undo chains, and
// answers the visibility predicate for Scan/Select. Grounded on the
// teacher's transaction_manager.TxnManager, generalized from "list of
// active txns for rollback bookkeeping" to full undo-chain ownership,
// since block storage here keeps no on-disk redo/undo log of its own.
type Manager struct {
	clock  uint64 // monotonic logical timestamp source for start_ts/commit_ts
	nextID uint64

	mu     sync.RWMutex
	active map[uint64]*Txn

	chainsMu sync.Mutex
	chains   map[chainKey]*versionChain
}

type chainKey struct {
	table types.TableID
	slot  types.TupleSlot
}

func NewManager() *Manager {
	return &Manager{
		nextID: 1,
		active: make(map[uint64]*Txn),
		chains: make(map[chainKey]*versionChain),
	}
}

// Begin starts a new transaction, assigning it a start timestamp from the
// shared logical clock (spec §3 Transaction context).
func (m *Manager) Begin() *Txn {
	t := &Txn{
		ID:      atomic.AddUint64(&m.nextID, 1) - 1,
		StartTS: atomic.AddUint64(&m.clock, 1),
		State:   TxnActive,
	}
	m.mu.Lock()
	m.active[t.ID] = t
	m.mu.Unlock()
	return t
}

// MinActiveStartTS returns the minimum start_ts among currently active
// transactions, used by the garbage collector's unlink phase (spec §4.8).
// Returns (0, false) if no transaction is active.
func (m *Manager) MinActiveStartTS() (uint64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	min := uint64(0)
	found := false
	for _, t := range m.active {
		if !found || t.StartTS < min {
			min = t.StartTS
			found = true
		}
	}
	return min, found
}

// Commit stamps every version this transaction installed with a fresh
// commit timestamp and marks it committed.
func (m *Manager) Commit(t *Txn) error {
	m.mu.Lock()
	if _, ok := m.active[t.ID]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("mvcc: commit: %w", ErrTxnNotActive)
	}
	delete(m.active, t.ID)
	m.mu.Unlock()

	ts := atomic.AddUint64(&m.clock, 1)
	for _, v := range t.undoChain {
		v.CommitTS = ts
	}
	t.CommitTS = ts
	t.State = TxnCommitted
	return nil
}

// Abort unlinks every version this transaction installed, in LIFO order,
// restoring each slot's chain to the state before the transaction touched
// it (spec §7 "abort txn").
func (m *Manager) Abort(t *Txn) error {
	m.mu.Lock()
	if _, ok := m.active[t.ID]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("mvcc: abort: %w", ErrTxnNotActive)
	}
	delete(m.active, t.ID)
	m.mu.Unlock()

	for i := len(t.undoChain) - 1; i >= 0; i-- {
		m.unlinkOwn(t.undoChain[i])
	}
	t.State = TxnAborted
	return nil
}

// unlinkOwn removes a still-pending record this manager tracks, looking it
// up by scanning chains is avoided by having the caller already know
// (table, slot); Abort doesn't retain that, so records carry enough
// identity for a direct splice against the head across all chains touched
// by this txn is unnecessary — pending records are always installed at the
// head of their own chain, so a linear scan of all chains this manager
// owns finds it in O(chains).
func (m *Manager) unlinkOwn(v *UndoRecord) {
	m.chainsMu.Lock()
	defer m.chainsMu.Unlock()
	for _, c := range m.chains {
		if c.head == v {
			c.head = v.Next
			return
		}
		for p := c.head; p != nil; p = p.Next {
			if p.Next == v {
				p.Next = v.Next
				return
			}
		}
	}
}

func (m *Manager) chainFor(table types.TableID, slot types.TupleSlot) *versionChain {
	key := chainKey{table, slot}
	m.chainsMu.Lock()
	defer m.chainsMu.Unlock()
	c, ok := m.chains[key]
	if !ok {
		c = &versionChain{}
		m.chains[key] = c
	}
	return c
}

// Install pushes a new pending version for (table, slot) written by txn,
// returning ErrWriteWriteConflict if another not-yet-committed transaction
// already holds a pending version there (spec §4.6).
func (m *Manager) Install(txn *Txn, table types.TableID, slot types.TupleSlot, values map[types.ColumnID]types.Value, deleted bool) error {
	c := m.chainFor(table, slot)
	m.chainsMu.Lock()
	defer m.chainsMu.Unlock()

	if c.head != nil && c.head.CommitTS == 0 && c.head.OwnerTxn != txn.ID {
		return fmt.Errorf("mvcc: install slot=%v: %w", slot, ErrWriteWriteConflict)
	}

	rec := &UndoRecord{OwnerTxn: txn.ID, Values: values, Deleted: deleted, Next: c.head}
	c.head = rec
	txn.installed(rec)
	txn.logRedo(table, slot, values)
	return nil
}

func (m *Manager) unlink(table types.TableID, slot types.TupleSlot, v *UndoRecord) {
	c := m.chainFor(table, slot)
	m.chainsMu.Lock()
	defer m.chainsMu.Unlock()
	if c.head == v {
		c.head = v.Next
		return
	}
	for p := c.head; p != nil; p = p.Next {
		if p.Next == v {
			p.Next = v.Next
			return
		}
	}
}

// Visible returns the version of (table, slot) visible to txn under
// snapshot isolation, or ok=false if no such version exists (the row does
// not yet exist, or was deleted, as of txn's snapshot).
func (m *Manager) Visible(txn *Txn, table types.TableID, slot types.TupleSlot) (*UndoRecord, bool) {
	c := m.chainFor(table, slot)
	m.chainsMu.Lock()
	head := c.head
	m.chainsMu.Unlock()
	v, ok := visibleTo(head, txn)
	if !ok || v.Deleted {
		return nil, false
	}
	return v, true
}

// GC exposes chain unlink for the garbage collector (storage/gc), which
// needs to splice out undo records whose commit_ts predates every active
// txn's start_ts (spec §4.8 phase 1).
func (m *Manager) GC() *gcView { return (*gcView)(m) }

type gcView Manager

// Unlink removes v from (table, slot)'s chain.
func (g *gcView) Unlink(table types.TableID, slot types.TupleSlot, v *UndoRecord) {
	(*Manager)(g).unlink(table, slot, v)
}

// Walk visits every (table, slot) chain currently tracked, oldest write
// first is not guaranteed — callers should walk each chain themselves via
// the returned head.
func (g *gcView) Walk(fn func(table types.TableID, slot types.TupleSlot, head *UndoRecord)) {
	m := (*Manager)(g)
	m.chainsMu.Lock()
	snapshot := make(map[chainKey]*UndoRecord, len(m.chains))
	for k, c := range m.chains {
		snapshot[k] = c.head
	}
	m.chainsMu.Unlock()
	for k, head := range snapshot {
		fn(k.table, k.slot, head)
	}
}
