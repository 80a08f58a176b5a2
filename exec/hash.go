// Package exec implements the operator primitives the compiled bytecode's
// intrinsic calls dispatch into: the aggregation hash table, the sorter,
// the join hash table, and the filter manager (spec §4.4-§4.6). These are
// the data-structure-shaped pieces of the execution core that a bytecode
// opcode by itself can't express — exactly the role NoisePage's execution
// runtime plays behind TPL's builtin calls.
//
// Grounded on the teacher's query_executor/joins.go and
// query_executor/index.go for the hash-join/index-lookup shape, and on
// cespare/xxhash/v2 (declared transitively in the teacher's go.mod via
// ristretto, never itself imported) for the hash function every hash
// table here uses.
package exec

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"relcore/types"
)

// HashRow hashes a row's chosen key columns into a single uint64, in
// column order, for use as an aggregation or join hash table bucket key.
func HashRow(values []types.Value) uint64 {
	h := xxhash.New()
	var buf [8]byte
	for _, v := range values {
		if v.IsNull {
			h.Write([]byte{0})
			continue
		}
		switch v.Type {
		case types.Boolean:
			if v.AsBool() {
				h.Write([]byte{1, 1})
			} else {
				h.Write([]byte{1, 0})
			}
		case types.SmallInt, types.Integer, types.BigInt, types.Date:
			binary.LittleEndian.PutUint64(buf[:], uint64(v.AsInt64()))
			h.Write(buf[:])
		case types.Real, types.Double:
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v.AsFloat64()))
			h.Write(buf[:])
		case types.Varchar:
			h.Write([]byte(v.AsString()))
		default:
			h.Write([]byte{0xff})
		}
	}
	return h.Sum64()
}

func rowsEqual(a, b []types.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].IsNull != b[i].IsNull {
			return false
		}
		if a[i].IsNull {
			continue
		}
		if a[i].Compare(b[i]) != 0 {
			return false
		}
	}
	return true
}
