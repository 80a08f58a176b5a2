package mvcc

import "relcore/types"

// UndoRecord is a reverse-delta version of one tuple slot, as described in
// spec's GLOSSARY. Chains are newest-first: Next points to the
// progressively older version. A record with CommitTS == 0 is "pending" —
// visible only to its OwnerTxn until commit stamps a CommitTS.
type UndoRecord struct {
	OwnerTxn  uint64
	CommitTS  uint64 // 0 while pending
	Deleted   bool
	Values    map[types.ColumnID]types.Value
	Next      *UndoRecord
}

// visibleTo implements the snapshot-isolation predicate of spec §3:
// "v.begin_ts ≤ T.start_ts < v.end_ts, with writes by T itself always
// visible." Because the chain is newest-first and every record's implicit
// end_ts is the next-older visible commit, the first record encountered
// while walking from the head that is either T's own write or committed
// at-or-before T's start is exactly the version visible to T.
func visibleTo(head *UndoRecord, txn *Txn) (*UndoRecord, bool) {
	for v := head; v != nil; v = v.Next {
		if v.OwnerTxn == txn.ID {
			return v, true
		}
		if v.CommitTS != 0 && v.CommitTS <= txn.StartTS {
			return v, true
		}
	}
	return nil, false
}

// versionChain is the per-slot mutable head. It has no lock of its own:
// Manager.chainsMu guards installs against concurrent writers (spec §4.6
// "write-write conflict").
type versionChain struct {
	head *UndoRecord
}
