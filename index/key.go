package index

import (
	"math"

	"relcore/types"
)

// EncodeKey packs a sequence of column values into a single memcmp-
// comparable byte string, so range scans can compare index keys with a
// plain bytes.Compare instead of decoding every entry (spec §5 "Packed key
// encoding"). Grounded on the teacher's bplustree key comparator, which
// already assumed byte-comparable keys ([][]byte + a cmp func); this
// generalizes that assumption into the encoder that produces such keys from
// typed column values instead of requiring the caller to build them by
// hand.
//
// Integers are big-endian with the sign bit flipped so two's-complement
// ordering matches unsigned byte ordering. Varchars are length-prefixed and
// truncated to 255 bytes (the range of the one-byte prefix), which bounds key
// width at the cost of not distinguishing keys that differ only past that
// prefix — acceptable for an execution-core index that never itself
// enforces uniqueness beyond what InsertUnique checks on the encoded form.
func EncodeKey(values []types.Value) []byte {
	out := make([]byte, 0, 16*len(values))
	for _, v := range values {
		out = append(out, encodeKeyPart(v)...)
	}
	return out
}

func encodeKeyPart(v types.Value) []byte {
	if v.IsNull {
		return []byte{0x00}
	}
	switch v.Type {
	case types.Boolean:
		b := byte(0)
		if v.AsBool() {
			b = 1
		}
		return []byte{0x01, b}
	case types.SmallInt:
		return append([]byte{0x02}, beSigned(v.AsInt64(), 2)...)
	case types.Integer:
		return append([]byte{0x02}, beSigned(v.AsInt64(), 4)...)
	case types.BigInt, types.Date:
		return append([]byte{0x02}, beSigned(v.AsInt64(), 8)...)
	case types.Real, types.Double:
		return append([]byte{0x02}, beFloat(v.AsFloat64())...)
	case types.Varchar:
		s := v.AsString()
		if len(s) > 255 {
			s = s[:255]
		}
		out := make([]byte, 0, 2+len(s))
		out = append(out, 0x03, byte(len(s)))
		out = append(out, s...)
		return out
	default:
		return []byte{0xff}
	}
}

// beSigned encodes val as width big-endian bytes with the sign bit flipped,
// so ordinary byte comparison matches signed integer ordering.
func beSigned(val int64, width int) []byte {
	u := uint64(val)
	out := make([]byte, width)
	for i := 0; i < width; i++ {
		out[width-1-i] = byte(u >> (8 * i))
	}
	out[0] ^= 0x80
	return out
}

// beFloat encodes an IEEE-754 double as 8 big-endian bytes such that
// ordinary byte comparison matches float ordering: for non-negative floats
// the sign bit is flipped high, for negative floats every bit is flipped.
// This is the usual monotonic transform for putting floats in a memcmp key
// (positive values then sort above negative ones, and within each sign
// byte order tracks magnitude order).
func beFloat(f float64) []byte {
	bits := math.Float64bits(f)
	if bits&(1<<63) == 0 {
		bits |= 1 << 63
	} else {
		bits = ^bits
	}
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[7-i] = byte(bits >> (8 * i))
	}
	return out
}
