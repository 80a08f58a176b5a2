package mvcc

import "relcore/types"

type TxnState uint8

const (
	TxnActive TxnState = iota
	TxnCommitted
	TxnAborted
)

// RedoRecord is a logical, in-memory record of a write a transaction made,
// kept for the SUPPLEMENTED FEATURES redo_buffer_chain field named in
// spec §3's TransactionContext. No wire/disk format is implemented for it
// (write-ahead logging format is an explicit Non-goal); it exists only so
// a caller could replay a transaction's writes within the same process.
type RedoRecord struct {
	Table  types.TableID
	Slot   types.TupleSlot
	Values map[types.ColumnID]types.Value
}

// Txn is the transaction context of spec §3: {start_ts, commit_ts, txn_id,
// undo_buffer_chain, redo_buffer_chain}. Grounded on the teacher's
// storage_engine/transaction_manager.Transaction, generalized from
// heap-file RowPointer bookkeeping to the version-chain bookkeeping MVCC
// needs for rollback and for own-write visibility.
type Txn struct {
	ID       uint64
	StartTS  uint64
	CommitTS uint64
	State    TxnState

	undoChain []*UndoRecord
	redoChain []RedoRecord
}

// installed records that this transaction pushed a new version onto slot's
// chain, in LIFO order, so Abort can unlink them and Commit can stamp them.
func (t *Txn) installed(r *UndoRecord) {
	t.undoChain = append(t.undoChain, r)
}

func (t *Txn) logRedo(table types.TableID, slot types.TupleSlot, values map[types.ColumnID]types.Value) {
	t.redoChain = append(t.redoChain, RedoRecord{Table: table, Slot: slot, Values: values})
}

// RedoChain exposes the transaction's logical write log, e.g. for tests
// asserting the supplemented redo-chain feature is populated.
func (t *Txn) RedoChain() []RedoRecord { return t.redoChain }
