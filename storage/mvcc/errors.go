package mvcc

import "errors"

// Sentinel errors for the conflict/abort policy of spec §7. Storage and
// index code returns these (wrapped with fmt.Errorf %w) rather than the
// teacher's plain fmt.Errorf strings, so callers can branch with errors.Is
// the way the generated pipeline is required to (spec §7 "Propagation").
var (
	ErrWriteWriteConflict   = errors.New("mvcc: write-write conflict")
	ErrUniqueViolation      = errors.New("mvcc: unique key violation")
	ErrSerializationFailure = errors.New("mvcc: serialization failure")
	ErrCancelled            = errors.New("mvcc: cancelled")
	ErrTxnNotActive         = errors.New("mvcc: transaction not active")
)
