package index

import "errors"

// ErrDuplicateKey is returned by InsertUnique when a pending version or a
// committed non-deleted version already occupies the key.
var ErrDuplicateKey = errors.New("index: duplicate key")
